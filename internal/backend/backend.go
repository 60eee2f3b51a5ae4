// Package backend abstracts the hosted services the chat core talks to:
// identity, object storage, realtime delivery and server procedures.
// The local implementations run everything against the on-disk store so
// the client works offline and in tests.
package backend

import (
	"context"

	"github.com/naviohq/navio/internal/types"
)

// Identity resolves the signed-in user.
type Identity interface {
	CurrentUser(ctx context.Context) (*types.User, error)
}

// Objects stores uploaded files and hands back stable URLs.
type Objects interface {
	Upload(ctx context.Context, name string, data []byte) (url string, err error)
}

// Procedures are the server-side compound operations the client calls
// instead of composing raw writes.
type Procedures interface {
	// GetOrCreateDirectRoom finds the 1:1 chat room between two users,
	// creating it on first contact.
	GetOrCreateDirectRoom(ctx context.Context, userA, userB types.Member) (*types.Room, error)
	// CreateGroupRoom creates a named room with the given members.
	CreateGroupRoom(ctx context.Context, name string, kind types.RoomKind, members []types.Member) (*types.Room, error)
}

// Backend bundles the service surfaces.
type Backend struct {
	Identity   Identity
	Objects    Objects
	Procedures Procedures
}
