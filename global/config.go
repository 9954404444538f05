package global

import (
	"fmt"

	cfg "github.com/mailio/go-web3-kit/config"
	"github.com/robfig/cron/v3"
)

// Conf global config
var Conf Config

const (
	DefaultRateLimitWindowMs    = 60 * 1000 // 1 minute
	DefaultRateLimitMaxRequests = 3
	DefaultMaxBodyBytes         = 64 * 1024
	DefaultSessionTTLMinutes    = 60
	DefaultSweepEvery           = "@every 10m"
	DefaultPlatformHeader       = "X-Real-IP" // used when forwarding to a remote contact API
	DefaultResendURL            = "https://api.resend.com"
	DefaultEmailTimeoutSeconds  = 10
	DefaultFromAddress          = "webmaka <admin@webmaka.com>"
)

type Config struct {
	cfg.YamlConfig `yaml:",inline"`
	Prometheus     PrometheusConfig `yaml:"prometheus"`
	Redis          RedisConfig      `yaml:"redis"`
	RateLimit      RateLimitConfig  `yaml:"ratelimit"`
	Email          EmailConfig      `yaml:"email"`
	Contact        ContactConfig    `yaml:"contact"`
	Site           SiteConfig       `yaml:"site"`
	Cors           CorsConfig       `yaml:"cors"`
}

type PrometheusConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	Username string `yaml:"username"`
	DB       int    `yaml:"db"`
}

// RateLimitConfig configures the contact endpoint fixed window limiter
type RateLimitConfig struct {
	WindowMs    int64 `yaml:"windowMs"`
	MaxRequests int   `yaml:"maxRequests"`
}

type EmailConfig struct {
	Provider       string     `yaml:"provider"` // resend or smtp
	From           string     `yaml:"from"`
	APIKey         string     `yaml:"apiKey"`       // overridden by RESEND_API_KEY
	ContactEmail   string     `yaml:"contactEmail"` // overridden by CONTACT_EMAIL
	ResendURL      string     `yaml:"resendUrl"`
	TimeoutSeconds int        `yaml:"timeoutSeconds"`
	Smtp           SmtpConfig `yaml:"smtp"`
}

type SmtpConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
}

type ContactConfig struct {
	// header set by the hosting platform with the real client address
	// (empty means the connection's remote address is used)
	PlatformHeader string `yaml:"platformHeader"`
	MaxBodyBytes   int64  `yaml:"maxBodyBytes"`
}

type SiteConfig struct {
	Name              string `yaml:"name"`
	URL               string `yaml:"url"`
	APIBaseURL        string `yaml:"apiBaseUrl"`   // remote contact API, empty for in-process submission
	SessionStore      string `yaml:"sessionStore"` // memory or redis
	SessionTTLMinutes int    `yaml:"sessionTtlMinutes"`
	SweepEvery        string `yaml:"sweepEvery"` // cron spec for the memory store sweep
	CookieSecure      bool   `yaml:"cookieSecure"`
}

type CorsConfig struct {
	AllowOrigins []string `yaml:"allowOrigins"`
}

// ApplyDefaults fills every zero value with its default
func (c *Config) ApplyDefaults() {
	if c.RateLimit.WindowMs <= 0 {
		c.RateLimit.WindowMs = DefaultRateLimitWindowMs
	}
	if c.RateLimit.MaxRequests <= 0 {
		c.RateLimit.MaxRequests = DefaultRateLimitMaxRequests
	}
	if c.Email.Provider == "" {
		c.Email.Provider = "resend"
	}
	if c.Email.From == "" {
		c.Email.From = DefaultFromAddress
	}
	if c.Email.ResendURL == "" {
		c.Email.ResendURL = DefaultResendURL
	}
	if c.Email.TimeoutSeconds <= 0 {
		c.Email.TimeoutSeconds = DefaultEmailTimeoutSeconds
	}
	if c.Email.Smtp.Port == 0 {
		c.Email.Smtp.Port = 587
	}
	if c.Contact.MaxBodyBytes <= 0 {
		c.Contact.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Site.Name == "" {
		c.Site.Name = "webmaka"
	}
	if c.Site.URL == "" {
		c.Site.URL = "https://webmaka.com"
	}
	if c.Site.SessionStore == "" {
		c.Site.SessionStore = "memory"
	}
	if c.Site.SessionTTLMinutes <= 0 {
		c.Site.SessionTTLMinutes = DefaultSessionTTLMinutes
	}
	if c.Site.SweepEvery == "" {
		c.Site.SweepEvery = DefaultSweepEvery
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
}

// Validate rejects values ApplyDefaults can't repair
func (c *Config) Validate() error {
	if _, err := cron.ParseStandard(c.Site.SweepEvery); err != nil {
		return fmt.Errorf("site.sweepEvery %q: %w", c.Site.SweepEvery, err)
	}
	if c.Site.SessionStore != "memory" && c.Site.SessionStore != "redis" {
		return fmt.Errorf("site.sessionStore %q: expected memory or redis", c.Site.SessionStore)
	}
	return nil
}
