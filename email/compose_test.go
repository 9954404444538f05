package email

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/t-hirai03/webmaka/types"
)

func testComposer() *Composer {
	return NewComposer("webmaka <admin@webmaka.com>", "webmaka", "https://webmaka.com")
}

func TestAdminNotification(t *testing.T) {
	form := &types.ContactFormData{
		Name:        "Taro",
		Email:       "taro@example.com",
		InquiryType: "lp",
		Phone:       "090-1234-5678",
		Message:     "line1\nline2",
		SourceURL:   "https://webmaka.com/contact",
	}
	msg, err := testComposer().AdminNotification(form, "owner@webmaka.com")
	require.NoError(t, err)

	assert.Equal(t, "webmaka <admin@webmaka.com>", msg.From)
	assert.Equal(t, []string{"owner@webmaka.com"}, msg.To)
	assert.Equal(t, "[Contact] Inquiry from Taro", msg.Subject)
	assert.Contains(t, msg.HTML, "Source: https://webmaka.com/contact")
	assert.Contains(t, msg.HTML, "Landing page production")
	assert.NotContains(t, msg.HTML, ">lp<")
	assert.Contains(t, msg.HTML, "090-1234-5678")
	assert.Contains(t, msg.HTML, "white-space: pre-wrap;\">line1\nline2</td>")
	assert.Contains(t, msg.Text, "Inquiry type Landing page production")
}

func TestAdminNotificationDefaults(t *testing.T) {
	form := &types.ContactFormData{Name: "Taro", Email: "taro@example.com", Message: "hi"}
	msg, err := testComposer().AdminNotification(form, "owner@webmaka.com")
	require.NoError(t, err)

	assert.Contains(t, msg.HTML, "Source: unknown")
	assert.Contains(t, msg.HTML, ">not provided</td>")
	assert.Contains(t, msg.HTML, ">Not selected</td>")
}

func TestComposeEscapesUserInput(t *testing.T) {
	form := &types.ContactFormData{
		Name:      `<script>alert("x")</script>`,
		Email:     "a@b.co",
		Phone:     "<b>1</b>",
		Message:   "Tom & Jerry's <img src=x>",
		SourceURL: `https://evil.test/"><script>`,
	}
	admin, err := testComposer().AdminNotification(form, "owner@webmaka.com")
	require.NoError(t, err)
	ack, err := testComposer().Acknowledgment(form)
	require.NoError(t, err)

	for _, body := range []string{admin.HTML, ack.HTML} {
		assert.NotContains(t, body, "<script>")
		assert.NotContains(t, body, "<img")
		assert.NotContains(t, body, "<b>1</b>")
		assert.Contains(t, body, "&lt;script&gt;alert(&quot;x&quot;)&lt;/script&gt;")
		assert.Contains(t, body, "Tom &amp; Jerry&#039;s &lt;img src=x&gt;")
	}
	assert.Contains(t, admin.HTML, "https://evil.test/&quot;&gt;&lt;script&gt;")
}

func TestAcknowledgment(t *testing.T) {
	form := &types.ContactFormData{
		Name:        "Taro",
		Email:       "taro@example.com",
		InquiryType: "website",
		Message:     "hello",
		SourceURL:   "https://webmaka.com/contact",
	}
	msg, err := testComposer().Acknowledgment(form)
	require.NoError(t, err)

	assert.Equal(t, []string{"taro@example.com"}, msg.To)
	assert.Equal(t, "[webmaka] Thank you for your inquiry", msg.Subject)
	assert.Contains(t, msg.HTML, "Dear Taro,")
	assert.Contains(t, msg.HTML, "Website production")
	assert.Contains(t, msg.HTML, "https://webmaka.com<br>")
	assert.NotContains(t, msg.HTML, "https://webmaka.com/contact")
	assert.NotContains(t, msg.HTML, "Source:")
	assert.True(t, strings.HasPrefix(msg.Text, "Dear Taro,"))
}
