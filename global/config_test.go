package global

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults(t *testing.T) {
	var c Config
	c.ApplyDefaults()

	assert.Equal(t, int64(60000), c.RateLimit.WindowMs)
	assert.Equal(t, 3, c.RateLimit.MaxRequests)
	assert.Equal(t, "resend", c.Email.Provider)
	assert.Equal(t, DefaultResendURL, c.Email.ResendURL)
	assert.Equal(t, int64(DefaultMaxBodyBytes), c.Contact.MaxBodyBytes)
	assert.Equal(t, "memory", c.Site.SessionStore)
	assert.Equal(t, "", c.Contact.PlatformHeader)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	c := Config{
		RateLimit: RateLimitConfig{WindowMs: 1000, MaxRequests: 1},
		Email:     EmailConfig{Provider: "smtp", From: "a <a@b.co>"},
		Site:      SiteConfig{SessionStore: "redis", SessionTTLMinutes: 5},
	}
	c.ApplyDefaults()

	assert.Equal(t, int64(1000), c.RateLimit.WindowMs)
	assert.Equal(t, 1, c.RateLimit.MaxRequests)
	assert.Equal(t, "smtp", c.Email.Provider)
	assert.Equal(t, "a <a@b.co>", c.Email.From)
	assert.Equal(t, "redis", c.Site.SessionStore)
	assert.Equal(t, 5, c.Site.SessionTTLMinutes)
}

func TestValidate(t *testing.T) {
	var c Config
	c.ApplyDefaults()
	assert.NoError(t, c.Validate())

	c.Site.SweepEvery = "@every 1h"
	assert.NoError(t, c.Validate())

	c.Site.SweepEvery = "every 10 minutes"
	assert.ErrorContains(t, c.Validate(), "site.sweepEvery")

	c.Site.SweepEvery = DefaultSweepEvery
	c.Site.SessionStore = "couchdb"
	assert.ErrorContains(t, c.Validate(), "site.sessionStore")
}
