package repository

import (
	"context"

	"github.com/t-hirai03/webmaka/types"
)

// SnapshotKey is the fixed per-session key the contact form snapshot is stored under
const SnapshotKey = "contactFormData"

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// SnapshotStore keeps one contact form snapshot per browser session. Snapshots
// are never deleted by the flow, they expire after the store TTL.
type SnapshotStore interface {
	// Get returns types.ErrNotFound when the session has no (unexpired) snapshot
	Get(ctx context.Context, sessionID string) (*types.ContactFormData, error)
	Save(ctx context.Context, sessionID string, data *types.ContactFormData) error
}
