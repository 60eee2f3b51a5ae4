package composer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/naviohq/navio/internal/backend"
	"github.com/naviohq/navio/internal/codec"
	"github.com/naviohq/navio/internal/core"
	"github.com/naviohq/navio/internal/logging"
	"github.com/naviohq/navio/internal/realtime"
	"github.com/naviohq/navio/internal/types"
	"go.uber.org/zap"
)

// editWindow bounds how old a message may be and still accept an edit.
const editWindow = 10 * time.Minute

// MessageStore is the durable surface the submitter writes through.
type MessageStore interface {
	CreateMessage(m types.Message) (types.Message, error)
	UpdateMessageBody(id, body string) (bool, error)
	AppendEvent(ev types.Event) (types.Event, error)
	GetMembers(roomID string) ([]types.Member, error)
}

// Notifier delivers best-effort notifications to room members.
type Notifier interface {
	Notify(n types.Notification)
}

// Submitter runs the send pipeline: upload staged files, encode the
// envelope, then deliver through the room-kind-appropriate path.
type Submitter struct {
	Identity   backend.Identity
	Objects    backend.Objects
	Store      MessageStore
	Bus        *realtime.Bus
	Notifier   Notifier
	Reconciler *Reconciler

	// OnEcho surfaces an optimistic echo to the view. OnSendError
	// reports a failed persist after the echo was already shown.
	OnEcho      func(types.Message)
	OnSendError func(tempID string, err error)

	Now func() time.Time
}

func (s *Submitter) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Submit sends the composer's staged state into the room. An empty
// composer is a no-op. Staged state is cleared once a send path has been
// initiated; a rejected edit window also clears, matching a discard.
func (s *Submitter) Submit(ctx context.Context, room types.Room, c *Composer) (*types.Message, error) {
	if !c.CanSubmit() {
		return nil, nil
	}
	user, err := s.Identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("submit: not signed in")
	}

	attachments := s.uploadAll(ctx, c.Files())

	env := types.Envelope{
		VisibleText: c.Text(),
		Attachments: attachments,
		Cards:       c.Cards(),
		Mentions:    c.Mentions(),
	}
	if target := c.ReplyTo(); target != nil {
		env.ReplyTo = &target.ID
	}

	if target := c.Editing(); target != nil {
		msg, err := s.submitEdit(target, env)
		c.Reset()
		return msg, err
	}

	body := codec.Encode(env)
	var msg, durable *types.Message
	if room.Kind == types.RoomKindShipment {
		msg, durable, err = s.submitOptimistic(room, user.ID, body)
	} else {
		msg, err = s.submitBroadcast(room, user.ID, body)
		durable = msg
	}
	if err != nil {
		return nil, err
	}

	c.Reset()
	s.fanOut(room, user.ID, *durable, env)
	return msg, nil
}

// uploadAll uploads staged files concurrently. A failed upload degrades
// to a name-only attachment instead of aborting the send.
func (s *Submitter) uploadAll(ctx context.Context, files []StagedFile) []types.Attachment {
	if len(files) == 0 {
		return nil
	}
	attachments := make([]types.Attachment, len(files))
	var wg sync.WaitGroup
	for i, f := range files {
		wg.Add(1)
		go func(i int, f StagedFile) {
			defer wg.Done()
			url, err := s.Objects.Upload(ctx, f.Name, f.Data)
			if err != nil {
				logging.Warn("attachment upload failed", zap.String("name", f.Name), zap.Error(err))
				attachments[i] = codec.NewAttachment(f.Name, "")
				return
			}
			attachments[i] = codec.NewAttachment(f.Name, url)
		}(i, f)
	}
	wg.Wait()
	return attachments
}

// submitEdit rewrites a message in place. Edits outside the recency
// window are dropped silently; the composer still clears.
func (s *Submitter) submitEdit(target *types.Message, env types.Envelope) (*types.Message, error) {
	created := core.ParseISO(target.CreatedAt)
	if created.IsZero() || s.now().Sub(created) > editWindow {
		logging.Debug("edit window expired", zap.String("message", target.ID))
		return nil, nil
	}

	// Preserve the original reply reference; an edit never changes it.
	original := codec.Decode(target.Body)
	env.ReplyTo = original.ReplyTo
	env.Edited = true
	body := codec.Encode(env)

	ok, err := s.Store.UpdateMessageBody(target.ID, body)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("edit: message %s vanished", target.ID)
	}

	updated := *target
	updated.Body = body
	s.Bus.Publish(realtime.Change{Kind: realtime.ChangeMessage, Topic: updated.RoomID, Message: &updated})
	return &updated, nil
}

// submitBroadcast is the chat-room path: the message goes out on the
// broadcast channel immediately and persists with the same id, so the
// aggregator's dedup collapses the two deliveries.
func (s *Submitter) submitBroadcast(room types.Room, author, body string) (*types.Message, error) {
	msg := types.Message{
		ID:        core.MustGUID("msg"),
		RoomID:    room.ID,
		Author:    author,
		Body:      body,
		CreatedAt: core.FormatISO(s.now()),
	}

	s.Bus.Publish(realtime.Change{Kind: realtime.ChangeMessage, Topic: room.ID, Message: &msg})

	if _, err := s.Store.CreateMessage(msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// submitOptimistic is the shipment-room path: persistence alone is
// authoritative, the view shows a temporary echo until the durable feed
// (or the fallback query) confirms it. Returns the echo for the caller
// and the durable copy for the fan-out.
func (s *Submitter) submitOptimistic(room types.Room, author, body string) (*types.Message, *types.Message, error) {
	echo := NewTempMessage(room.ID, author, body, s.now())
	if s.OnEcho != nil {
		s.OnEcho(echo)
	}
	if s.Reconciler != nil {
		s.Reconciler.Track(echo)
	}

	persisted := echo
	persisted.ID = ""
	persisted.Pending = false
	stored, err := s.Store.CreateMessage(persisted)
	if err != nil {
		if s.Reconciler != nil {
			s.Reconciler.Abandon(echo.ID)
		}
		if s.OnSendError != nil {
			s.OnSendError(echo.ID, err)
		}
		return nil, nil, err
	}

	s.Bus.Publish(realtime.Change{Kind: realtime.ChangeMessage, Topic: room.ID, Message: &stored})
	return &echo, &stored, nil
}

// fanOut queues notifications for the other room members and records
// the sender's own receipt. Both are best-effort.
func (s *Submitter) fanOut(room types.Room, sender string, msg types.Message, env types.Envelope) {
	if _, err := s.Store.AppendEvent(types.Event{
		MessageID: msg.ID,
		Actor:     sender,
		Kind:      types.EventReceipt,
		CreatedAt: s.now().UnixMilli(),
	}); err != nil {
		logging.Warn("self receipt failed", zap.Error(err))
	}

	if s.Notifier == nil {
		return
	}
	members, err := s.Store.GetMembers(room.ID)
	if err != nil {
		logging.Warn("notification fan-out failed", zap.Error(err))
		return
	}
	mentioned := make(map[string]struct{}, len(env.Mentions))
	for _, id := range env.Mentions {
		mentioned[id] = struct{}{}
	}
	for _, member := range members {
		if member.UserID == sender {
			continue
		}
		kind := "message"
		if _, ok := mentioned[member.UserID]; ok {
			kind = "mention"
		}
		s.Notifier.Notify(types.Notification{
			UserID:    member.UserID,
			Kind:      kind,
			Body:      env.VisibleText,
			CreatedAt: s.now().UnixMilli(),
		})
	}
}
