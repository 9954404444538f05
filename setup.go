package main

import (
	"fmt"
	"time"

	"github.com/go-kit/log/level"
	"github.com/robfig/cron/v3"
	"github.com/t-hirai03/webmaka/email"
	"github.com/t-hirai03/webmaka/flow"
	"github.com/t-hirai03/webmaka/global"
	"github.com/t-hirai03/webmaka/metrics"
	"github.com/t-hirai03/webmaka/pages"
	"github.com/t-hirai03/webmaka/ratelimit"
	"github.com/t-hirai03/webmaka/repository"
	"github.com/t-hirai03/webmaka/services"
	"github.com/t-hirai03/webmaka/types"
	"github.com/t-hirai03/webmaka/util"
)

// Register the email providers. The API key is resolved per submission and
// handed to the factory of the configured provider.
func RegisterEmailSenders(conf *global.Config) {
	timeout := time.Duration(conf.Email.TimeoutSeconds) * time.Second
	email.RegisterSender(email.ProviderResend, func(apiKey string) (email.Sender, error) {
		return email.NewResendSender(conf.Email.ResendURL, apiKey, timeout), nil
	})
	// for smtp the key is the account password
	email.RegisterSender(email.ProviderSmtp, func(apiKey string) (email.Sender, error) {
		smtpConf := conf.Email.Smtp
		return email.NewSmtpSender(smtpConf.Host, smtpConf.Port, smtpConf.Username, apiKey), nil
	})
}

func ConfigContactService(conf *global.Config) *services.ContactService {
	limiter := ratelimit.New(ratelimit.Config{
		Window:      time.Duration(conf.RateLimit.WindowMs) * time.Millisecond,
		MaxRequests: conf.RateLimit.MaxRequests,
	})
	composer := email.NewComposer(conf.Email.From, conf.Site.Name, conf.Site.URL)
	return services.NewContactService(limiter, composer, conf.Email.Provider, services.EnvSecrets(&conf.Email))
}

func configSnapshotStore(conf *global.Config, environment *types.Environment) repository.SnapshotStore {
	ttl := time.Duration(conf.Site.SessionTTLMinutes) * time.Minute
	if conf.Site.SessionStore == repository.StoreRedis {
		return repository.NewRedisSnapshotStore(environment.RedisClient, ttl)
	}

	memStore := repository.NewMemorySnapshotStore(ttl)
	scheduleSweep(environment.Cron, conf.Site.SweepEvery, "snapshots", func() {
		removed := memStore.Sweep()
		metrics.SnapshotsSweptTotal.Add(float64(removed))
		if removed > 0 {
			level.Debug(global.Logger).Log("msg", "expired snapshots removed", "count", removed)
		}
	})
	return memStore
}

// ConfigContactPages builds the three screen flow. Submissions go to the remote
// contact API when one is configured, otherwise straight to the contact service.
func ConfigContactPages(conf *global.Config, contactService *services.ContactService, environment *types.Environment) *pages.ContactPages {
	store := configSnapshotStore(conf, environment)

	var submitter flow.Submitter
	if conf.Site.APIBaseURL != "" {
		timeout := time.Duration(conf.Email.TimeoutSeconds) * time.Second * 3
		submitter = services.NewHttpContactClient(conf.Site.APIBaseURL, util.OrDefault(conf.Contact.PlatformHeader, global.DefaultPlatformHeader), timeout)
	} else {
		submitter = services.NewLocalContactClient(contactService)
	}

	f := flow.New(store, submitter)
	idle := time.Duration(conf.Site.SessionTTLMinutes) * time.Minute
	scheduleSweep(environment.Cron, conf.Site.SweepEvery, "sessions", func() {
		forgotten := f.Sweep(idle)
		if forgotten > 0 {
			level.Debug(global.Logger).Log("msg", "idle contact sessions forgotten", "count", forgotten)
		}
	})
	environment.Cron.Start()

	return pages.NewContactPages(f, conf.Site.Name, conf.Site.CookieSecure)
}

// scheduleSweep adds a cron job. The spec is checked by Config.Validate at
// startup, so a failure here is a programming error.
func scheduleSweep(c *cron.Cron, spec string, name string, job func()) {
	if _, err := c.AddFunc(spec, job); err != nil {
		level.Error(global.Logger).Log("msg", "failed to schedule sweep", "sweep", name, "spec", spec, "error", err)
		panic(fmt.Sprintf("failed to schedule %s sweep: %v", name, err))
	}
}
