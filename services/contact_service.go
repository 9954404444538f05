package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/t-hirai03/webmaka/email"
	"github.com/t-hirai03/webmaka/global"
	"github.com/t-hirai03/webmaka/metrics"
	"github.com/t-hirai03/webmaka/ratelimit"
	"github.com/t-hirai03/webmaka/types"
	"github.com/t-hirai03/webmaka/util"
)

const (
	EnvResendAPIKey = "RESEND_API_KEY"
	EnvContactEmail = "CONTACT_EMAIL"

	UnknownClient = "unknown"
)

// SecretsResolver returns the email API key and the destination mailbox. It is
// called on every submission.
type SecretsResolver func() types.ContactSecrets

// EnvSecrets prefers the process environment and falls back to the config file.
// A variable that is set but empty is not replaced by the config value.
func EnvSecrets(conf *global.EmailConfig) SecretsResolver {
	return func() types.ContactSecrets {
		secrets := types.ContactSecrets{APIKey: conf.APIKey, ContactEmail: conf.ContactEmail}
		if v, ok := os.LookupEnv(EnvResendAPIKey); ok {
			secrets.APIKey = v
		}
		if v, ok := os.LookupEnv(EnvContactEmail); ok {
			secrets.ContactEmail = v
		}
		return secrets
	}
}

// ContactService runs a contact submission: rate limiting, configuration check,
// parsing, validation and the two notification emails
type ContactService struct {
	limiter   *ratelimit.RateLimiter
	composer  *email.Composer
	secrets   SecretsResolver
	provider  string
	newSender email.SenderFactory
}

func NewContactService(limiter *ratelimit.RateLimiter, composer *email.Composer, provider string, secrets SecretsResolver) *ContactService {
	return &ContactService{
		limiter:  limiter,
		composer: composer,
		secrets:  secrets,
		provider: provider,
		newSender: func(apiKey string) (email.Sender, error) {
			return email.NewSender(provider, apiKey)
		},
	}
}

// WithSenderFactory overrides provider lookup (tests)
func (cs *ContactService) WithSenderFactory(f email.SenderFactory) *ContactService {
	cs.newSender = f
	return cs
}

func (cs *ContactService) Limiter() *ratelimit.RateLimiter {
	return cs.limiter
}

func (cs *ContactService) Provider() string {
	return cs.provider
}

// Configured reports whether the email API key and the destination mailbox resolve right now
func (cs *ContactService) Configured() bool {
	return cs.secrets().Complete()
}

func failure(status int, msg string) types.ContactOutcome {
	return types.ContactOutcome{Status: status, Response: types.ContactResponse{Success: false, Error: msg}}
}

// Submit handles one request body from clientID. Every path returns an outcome,
// errors are reported through the status and the message.
func (cs *ContactService) Submit(ctx context.Context, clientID string, body io.Reader) types.ContactOutcome {
	cs.limiter.Cleanup()
	defer func() {
		metrics.RateLimiterKeys.Set(float64(cs.limiter.Size()))
	}()

	if clientID == "" {
		clientID = UnknownClient
	}
	// limiter and logs only ever see the hashed identity
	client := util.HashKey(clientID)
	if cs.limiter.IsLimited(client) {
		level.Warn(global.Logger).Log("msg", "contact submission rate limited", "client", client)
		metrics.ContactSubmissionsTotal.WithLabelValues("rate_limited").Inc()
		return failure(http.StatusTooManyRequests, types.MsgTooManyRequests)
	}

	secrets := cs.secrets()
	if !secrets.Complete() {
		level.Error(global.Logger).Log("msg", "email api key or contact email missing", "error", types.ErrNotConfigured)
		metrics.ContactSubmissionsTotal.WithLabelValues("not_configured").Inc()
		return failure(http.StatusInternalServerError, types.MsgServerNotConfigured)
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		metrics.ContactSubmissionsTotal.WithLabelValues("invalid_request").Inc()
		return failure(http.StatusBadRequest, types.MsgInvalidRequest)
	}
	var payload interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		metrics.ContactSubmissionsTotal.WithLabelValues("invalid_request").Inc()
		return failure(http.StatusBadRequest, types.MsgInvalidRequest)
	}

	result := util.ValidateContactForm(payload)
	if !result.Valid {
		metrics.ContactSubmissionsTotal.WithLabelValues("invalid_form").Inc()
		outcome := failure(http.StatusBadRequest, types.MsgFillRequired)
		outcome.Response.Errors = &result.Errors
		return outcome
	}
	form, ok := util.AsContactFormData(payload)
	if !ok {
		metrics.ContactSubmissionsTotal.WithLabelValues("invalid_form").Inc()
		return failure(http.StatusBadRequest, types.MsgFillRequired)
	}

	ref := uuid.NewString()
	if err := cs.dispatch(ctx, &form, secrets); err != nil {
		level.Error(global.Logger).Log("msg", "failed to send contact emails", "ref", ref, "client", client, "error", err)
		metrics.ContactSubmissionsTotal.WithLabelValues("send_failed").Inc()
		return failure(http.StatusInternalServerError, types.MsgSendFailed)
	}

	level.Info(global.Logger).Log("msg", "contact submission delivered", "ref", ref, "client", client)
	metrics.ContactSubmissionsTotal.WithLabelValues("ok").Inc()
	return types.ContactOutcome{Status: http.StatusOK, Response: types.ContactResponse{Success: true}}
}

// dispatch sends the admin notification first and the acknowledgment second.
// The first failure stops the sequence.
func (cs *ContactService) dispatch(ctx context.Context, form *types.ContactFormData, secrets types.ContactSecrets) error {
	adminMsg, err := cs.composer.AdminNotification(form, secrets.ContactEmail)
	if err != nil {
		return err
	}
	ackMsg, err := cs.composer.Acknowledgment(form)
	if err != nil {
		return err
	}

	sender, err := cs.newSender(secrets.APIKey)
	if err != nil {
		return err
	}
	if err := send(ctx, sender, "admin", adminMsg); err != nil {
		return err
	}
	return send(ctx, sender, "ack", ackMsg)
}

func send(ctx context.Context, sender email.Sender, kind string, msg *types.OutgoingEmail) error {
	start := time.Now()
	id, err := sender.Send(ctx, msg)
	metrics.ContactEmailSendLatency.Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.ContactEmailsTotal.WithLabelValues(kind, "error").Inc()
		return err
	}
	metrics.ContactEmailsTotal.WithLabelValues(kind, "ok").Inc()
	level.Debug(global.Logger).Log("msg", "email sent", "kind", kind, "id", id)
	return nil
}
