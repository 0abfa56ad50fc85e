// Package gateway holds the persistence collaborators the study core talks
// to: a local snapshot store, a remote snapshot store and a broadcast bus
// for cross-context sync events.
package gateway

import (
	"context"

	"github.com/grevocab/api/internal/model"
)

// EventType classifies a sync event.
type EventType string

const (
	EventLogin        EventType = "login"
	EventLogout       EventType = "logout"
	EventRemoteUpdate EventType = "remote-update"
)

// Event is a cross-context sync notification. Delivery is fire-and-forget:
// events can be dropped or duplicated and carry no ordering guarantee, so
// consumers must be idempotent. OriginID identifies the publishing context
// so it can skip its own broadcasts.
type Event struct {
	Type     EventType `json:"type"`
	UserID   int64     `json:"userId"`
	OriginID string    `json:"originId"`
}

// LocalStore persists snapshots for a single execution context. Load
// returns (nil, nil) when nothing was stored yet.
type LocalStore interface {
	Load(clientID string) (*model.Snapshot, error)
	Save(clientID string, snap *model.Snapshot) error
}

// RemoteStore persists snapshots in the shared cloud store. Load returns
// (nil, nil) for a user with no stored snapshot.
type RemoteStore interface {
	Load(ctx context.Context, userID int64) (*model.Snapshot, error)
	Save(ctx context.Context, userID int64, snap *model.Snapshot) error
}

// Bus broadcasts sync events to every execution context sharing the same
// persisted identity.
type Bus interface {
	Publish(ctx context.Context, ev Event) error
	Subscribe(ctx context.Context, fn func(Event)) (func(), error)
}
