package notify

import (
	"context"
	"strings"

	"github.com/gen2brain/beeep"
	"github.com/naviohq/navio/internal/logging"
	"github.com/naviohq/navio/internal/types"
	"go.uber.org/zap"
)

const bodyLimit = 100

// Store is the durable queue notifications land in.
type Store interface {
	InsertNotification(ctx context.Context, n types.Notification) error
}

// Queue persists fan-out notifications and raises a desktop banner for
// the locally signed-in recipient. Both legs are best-effort.
type Queue struct {
	store Store

	// LocalUser is this device's signed-in user; only their
	// notifications surface as desktop banners.
	LocalUser string

	// banner is swappable for tests; defaults to beeep.
	banner func(title, body string) error
}

func NewQueue(store Store, localUser string) *Queue {
	return &Queue{
		store:     store,
		LocalUser: localUser,
		banner:    func(title, body string) error { return beeep.Notify(title, body, "") },
	}
}

func (q *Queue) Notify(n types.Notification) {
	if err := q.store.InsertNotification(context.Background(), n); err != nil {
		logging.Warn("notification insert failed", zap.String("user", n.UserID), zap.Error(err))
	}
	if q.LocalUser == "" || n.UserID != q.LocalUser {
		return
	}
	if err := q.banner(bannerTitle(n.Kind), truncate(n.Body, bodyLimit)); err != nil {
		logging.Debug("desktop banner failed", zap.Error(err))
	}
}

func bannerTitle(kind string) string {
	switch kind {
	case "mention":
		return "Navio · mentioned you"
	case "task_assigned":
		return "Navio · task assigned"
	case "approval_reminder":
		return "Navio · approval pending"
	default:
		return "Navio"
	}
}

// truncate collapses whitespace and caps the banner body at maxLen
// runes, never splitting a multibyte rune at the boundary.
func truncate(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}
