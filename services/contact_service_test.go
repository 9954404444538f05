package services

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/t-hirai03/webmaka/email"
	"github.com/t-hirai03/webmaka/global"
	"github.com/t-hirai03/webmaka/ratelimit"
	"github.com/t-hirai03/webmaka/types"
)

const validBody = `{"name":"Taro","email":"taro@example.com","inquiryType":"website","phone":"","message":"Hello","sourceUrl":"https://webmaka.com/contact"}`

// fakeSender records sends and fails the send with index failAt (1 based, 0 = never)
type fakeSender struct {
	mu     sync.Mutex
	sent   []*types.OutgoingEmail
	failAt int
}

func (f *fakeSender) Send(ctx context.Context, msg *types.OutgoingEmail) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAt == len(f.sent)+1 {
		return "", errors.New("provider down")
	}
	f.sent = append(f.sent, msg)
	return "id", nil
}

func staticSecrets(apiKey, contactEmail string) SecretsResolver {
	return func() types.ContactSecrets {
		return types.ContactSecrets{APIKey: apiKey, ContactEmail: contactEmail}
	}
}

func newTestService(sender *fakeSender, secrets SecretsResolver) *ContactService {
	limiter := ratelimit.New(ratelimit.DefaultConfig)
	composer := email.NewComposer(global.DefaultFromAddress, "webmaka", "https://webmaka.com")
	return NewContactService(limiter, composer, "fake", secrets).WithSenderFactory(func(apiKey string) (email.Sender, error) {
		return sender, nil
	})
}

func submit(cs *ContactService, body string) types.ContactOutcome {
	return cs.Submit(context.Background(), "192.168.1.1", strings.NewReader(body))
}

func TestSubmitSuccess(t *testing.T) {
	sender := &fakeSender{}
	cs := newTestService(sender, staticSecrets("re_key", "owner@webmaka.com"))

	outcome := submit(cs, validBody)
	assert.Equal(t, http.StatusOK, outcome.Status)
	assert.Equal(t, types.ContactResponse{Success: true}, outcome.Response)

	require.Len(t, sender.sent, 2)
	assert.Equal(t, []string{"owner@webmaka.com"}, sender.sent[0].To)
	assert.Contains(t, sender.sent[0].HTML, "https://webmaka.com/contact")
	assert.Equal(t, []string{"taro@example.com"}, sender.sent[1].To)
	assert.NotContains(t, sender.sent[1].HTML, "https://webmaka.com/contact")
}

func TestSubmitInvalidJSON(t *testing.T) {
	sender := &fakeSender{}
	cs := newTestService(sender, staticSecrets("re_key", "owner@webmaka.com"))

	outcome := submit(cs, `{"name":`)
	assert.Equal(t, http.StatusBadRequest, outcome.Status)
	assert.Equal(t, types.MsgInvalidRequest, outcome.Response.Error)
	assert.Nil(t, outcome.Response.Errors)
	assert.Empty(t, sender.sent)
}

func TestSubmitValidationFailure(t *testing.T) {
	sender := &fakeSender{}
	cs := newTestService(sender, staticSecrets("re_key", "owner@webmaka.com"))

	outcome := submit(cs, `{"name":"","email":"invalid","message":""}`)
	assert.Equal(t, http.StatusBadRequest, outcome.Status)
	assert.False(t, outcome.Response.Success)
	assert.Equal(t, types.MsgFillRequired, outcome.Response.Error)
	require.NotNil(t, outcome.Response.Errors)
	assert.Equal(t, 3, outcome.Response.Errors.Len())
	assert.Empty(t, sender.sent)

	outcome = submit(cs, `null`)
	assert.Equal(t, http.StatusBadRequest, outcome.Status)
	assert.Equal(t, 3, outcome.Response.Errors.Len())
}

func TestSubmitNotConfigured(t *testing.T) {
	for _, secrets := range []SecretsResolver{
		staticSecrets("", "owner@webmaka.com"),
		staticSecrets("re_key", ""),
	} {
		sender := &fakeSender{}
		cs := newTestService(sender, secrets)

		// configuration is checked before the body is parsed
		outcome := submit(cs, `not json`)
		assert.Equal(t, http.StatusInternalServerError, outcome.Status)
		assert.Equal(t, types.MsgServerNotConfigured, outcome.Response.Error)
		assert.Empty(t, sender.sent)
	}
}

func TestSubmitRateLimited(t *testing.T) {
	sender := &fakeSender{}
	cs := newTestService(sender, staticSecrets("re_key", "owner@webmaka.com"))

	for i := 0; i < 3; i++ {
		// bad bodies count too
		assert.Equal(t, http.StatusBadRequest, submit(cs, `{}`).Status)
	}
	outcome := submit(cs, validBody)
	assert.Equal(t, http.StatusTooManyRequests, outcome.Status)
	assert.Equal(t, types.MsgTooManyRequests, outcome.Response.Error)
	assert.Empty(t, sender.sent)

	other := cs.Submit(context.Background(), "10.0.0.2", strings.NewReader(validBody))
	assert.Equal(t, http.StatusOK, other.Status)
}

func TestSubmitRateLimitedBeforeConfigCheck(t *testing.T) {
	cs := newTestService(&fakeSender{}, staticSecrets("", ""))
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusInternalServerError, submit(cs, validBody).Status)
	}
	assert.Equal(t, http.StatusTooManyRequests, submit(cs, validBody).Status)
}

func TestSubmitEmptyClientIsUnknown(t *testing.T) {
	cs := newTestService(&fakeSender{}, staticSecrets("", ""))
	for i := 0; i < 3; i++ {
		cs.Submit(context.Background(), "", strings.NewReader(validBody))
	}
	assert.Equal(t, http.StatusTooManyRequests, cs.Submit(context.Background(), UnknownClient, strings.NewReader(validBody)).Status)
}

func TestSubmitAdminSendFailureSkipsAck(t *testing.T) {
	sender := &fakeSender{failAt: 1}
	cs := newTestService(sender, staticSecrets("re_key", "owner@webmaka.com"))

	outcome := submit(cs, validBody)
	assert.Equal(t, http.StatusInternalServerError, outcome.Status)
	assert.Equal(t, types.MsgSendFailed, outcome.Response.Error)
	assert.Empty(t, sender.sent)
}

func TestSubmitAckSendFailure(t *testing.T) {
	sender := &fakeSender{failAt: 2}
	cs := newTestService(sender, staticSecrets("re_key", "owner@webmaka.com"))

	outcome := submit(cs, validBody)
	assert.Equal(t, http.StatusInternalServerError, outcome.Status)
	assert.Equal(t, types.MsgSendFailed, outcome.Response.Error)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"owner@webmaka.com"}, sender.sent[0].To)
}

func TestSubmitUnknownProvider(t *testing.T) {
	limiter := ratelimit.New(ratelimit.DefaultConfig)
	composer := email.NewComposer(global.DefaultFromAddress, "webmaka", "https://webmaka.com")
	cs := NewContactService(limiter, composer, "does-not-exist", staticSecrets("re_key", "owner@webmaka.com"))

	outcome := submit(cs, validBody)
	assert.Equal(t, http.StatusInternalServerError, outcome.Status)
	assert.Equal(t, types.MsgSendFailed, outcome.Response.Error)
}

func TestSubmitCleansUpExpiredRecords(t *testing.T) {
	now := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	limiter := ratelimit.New(ratelimit.DefaultConfig, ratelimit.WithClock(func() time.Time { return now }))
	composer := email.NewComposer(global.DefaultFromAddress, "webmaka", "https://webmaka.com")
	cs := NewContactService(limiter, composer, "fake", staticSecrets("", ""))

	cs.Submit(context.Background(), "a", strings.NewReader(validBody))
	cs.Submit(context.Background(), "b", strings.NewReader(validBody))
	assert.Equal(t, 2, limiter.Size())

	now = now.Add(61 * time.Second)
	cs.Submit(context.Background(), "c", strings.NewReader(validBody))
	assert.Equal(t, 1, cs.Limiter().Size())
}

func TestEnvSecrets(t *testing.T) {
	conf := &global.EmailConfig{APIKey: "conf_key", ContactEmail: "conf@webmaka.com"}
	resolve := EnvSecrets(conf)

	t.Setenv(EnvResendAPIKey, "")
	t.Setenv(EnvContactEmail, "")
	os.Unsetenv(EnvResendAPIKey)
	os.Unsetenv(EnvContactEmail)
	assert.Equal(t, types.ContactSecrets{APIKey: "conf_key", ContactEmail: "conf@webmaka.com"}, resolve())

	t.Setenv(EnvResendAPIKey, "env_key")
	t.Setenv(EnvContactEmail, "env@webmaka.com")
	assert.Equal(t, types.ContactSecrets{APIKey: "env_key", ContactEmail: "env@webmaka.com"}, resolve())

	t.Setenv(EnvResendAPIKey, "")
	assert.False(t, resolve().Complete())
}
