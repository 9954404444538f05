package email

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/t-hirai03/webmaka/types"
)

// Sender delivers a single transactional email and returns the provider message id
type Sender interface {
	Send(ctx context.Context, msg *types.OutgoingEmail) (string, error)
}

// SenderFactory builds a sender for the given secret (API key or SMTP password).
// The secret is resolved on every submission, so senders are built per request.
type SenderFactory func(apiKey string) (Sender, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]SenderFactory)
)

// RegisterSender makes an email provider available by the provided name.
// If RegisterSender is called twice with the same name or if factory is nil,
// it panics.
func RegisterSender(name string, factory SenderFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if factory == nil {
		panic("email: Register sender factory is nil")
	}
	if _, dup := factories[name]; dup {
		panic("email: Register called twice for sender " + name)
	}
	factories[name] = factory
}

// for tests only
func UnregisterAllSenders() {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories = make(map[string]SenderFactory)
}

// Senders returns a sorted list of the names of the registered providers.
func Senders() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	list := make([]string, 0, len(factories))
	for name := range factories {
		list = append(list, name)
	}
	sort.Strings(list)
	return list
}

func GetSenderFactory(name string) SenderFactory {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	if f, ok := factories[name]; ok {
		return f
	}
	return nil
}

// NewSender builds a sender of the named provider
func NewSender(name string, apiKey string) (Sender, error) {
	factory := GetSenderFactory(name)
	if factory == nil {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownProvider, name)
	}
	return factory(apiKey)
}
