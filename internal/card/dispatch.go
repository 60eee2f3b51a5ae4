package card

import (
	"context"
	"fmt"
	"time"

	"github.com/naviohq/navio/internal/core"
	"github.com/naviohq/navio/internal/logging"
	"github.com/naviohq/navio/internal/types"
	"go.uber.org/zap"
)

// EntityStore mutates the business entities card actions target.
type EntityStore interface {
	UpdateOfferStatus(ctx context.Context, offerID, status string) error
	CounterOffer(ctx context.Context, offerID string, amount float64) error
	UpdateInvoiceStatus(ctx context.Context, invoiceID, status string) error
	UpdateTaskStatus(ctx context.Context, taskID, status string) error
	ReassignTask(ctx context.Context, taskID, assignee string) error
	UpdateApprovalStatus(ctx context.Context, approvalID, status string) error
	AppendEvent(ctx context.Context, ev types.Event) error
	InsertNotification(ctx context.Context, n types.Notification) error
}

// Identity resolves the acting user at dispatch time.
type Identity interface {
	CurrentUser(ctx context.Context) (*types.User, error)
}

// Navigator moves the viewer to an app path.
type Navigator interface {
	NavigateTo(path string)
}

// Payload carries optional action parameters.
type Payload struct {
	MessageID string
	Amount    float64
	Assignee  string
	Note      string
}

type handlerFunc func(ctx context.Context, d *Dispatcher, c types.Card, p Payload) error

// Dispatcher executes card actions. Errors never propagate to the caller:
// a broken action must not crash the chat surface, so every failure ends
// at this boundary with a log line and an audit attempt.
type Dispatcher struct {
	identity Identity
	store    EntityStore
	nav      Navigator
	handlers map[string]handlerFunc
}

// NewDispatcher wires the dispatch table.
func NewDispatcher(identity Identity, store EntityStore, nav Navigator) *Dispatcher {
	d := &Dispatcher{identity: identity, store: store, nav: nav}
	d.handlers = map[string]handlerFunc{
		ActionOpenShipment:    navigate(func(c types.Card) string { return "/shipments/" + shipmentID(c) }),
		ActionTrackShipment:   navigate(func(c types.Card) string { return "/shipments/" + shipmentID(c) + "/tracking" }),
		ActionShareShipment:   handleShareShipment,
		ActionCancelShipment:  handleCancelShipment,
		ActionCopyRef:         func(context.Context, *Dispatcher, types.Card, Payload) error { return nil },
		ActionAcceptOffer:     offerStatus("accepted"),
		ActionCounterOffer:    handleCounterOffer,
		ActionWithdrawOffer:   offerStatus("withdrawn"),
		ActionDeclineOffer:    offerStatus("declined"),
		ActionOpenOffers:      navigate(func(c types.Card) string { return "/offers/" + offerID(c) }),
		ActionPayInvoice:      invoiceStatus("paid"),
		ActionDisputeInvoice:  invoiceStatus("disputed"),
		ActionApprovePayment:  invoiceStatus("payment_approved"),
		ActionMarkInvoicePaid: invoiceStatus("paid"),
		ActionRetryPayment:    invoiceStatus("payment_pending"),
		ActionConfirmReceived: invoiceStatus("received"),
		ActionDownloadInvoice: navigate(func(c types.Card) string { return "/invoices/" + invoiceID(c) + "/pdf" }),
		ActionOpenInvoice:     navigate(func(c types.Card) string { return "/invoices/" + invoiceID(c) }),
		ActionCompleteTask:    taskStatus("done"),
		ActionAcceptTask:      taskStatus("accepted"),
		ActionReassignTask:    handleReassignTask,
		ActionDuplicateTask:   navigate(func(c types.Card) string { return "/tasks/new?from=" + taskID(c) }),
		ActionOpenTask:        navigate(func(c types.Card) string { return "/tasks/" + taskID(c) }),
		ActionAcceptSlot:      func(context.Context, *Dispatcher, types.Card, Payload) error { return nil },
		ActionProposeSlot:     func(context.Context, *Dispatcher, types.Card, Payload) error { return nil },
		ActionAddToCalendar:   navigate(func(c types.Card) string { return "/calendar" }),
		ActionOpenCalendar:    navigate(func(c types.Card) string { return "/calendar" }),
		ActionApprove:         approvalStatus("approved"),
		ActionReject:          approvalStatus("rejected"),
		ActionRequestChanges:  approvalStatus("changes_requested"),
		ActionRemindApproval:  handleRemindApproval,
		ActionOpenApproval:    navigate(func(c types.Card) string { return "/approvals/" + approvalID(c) }),
		ActionCopyNote:        func(context.Context, *Dispatcher, types.Card, Payload) error { return nil },
		ActionPinNote:         eventAction(types.EventPin),
		ActionStarNote:        eventAction(types.EventStar),
	}
	return d
}

// Dispatch runs one card action. Unauthenticated dispatch is a no-op.
// Whatever happens inside a handler, Dispatch returns normally.
func (d *Dispatcher) Dispatch(ctx context.Context, action string, c types.Card, p Payload) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("card action panic", zap.String("action", action), zap.Any("panic", r))
		}
	}()

	user, err := d.identity.CurrentUser(ctx)
	if err != nil || user == nil {
		return
	}

	h, ok := d.handlers[action]
	if !ok {
		logging.Warn("unknown card action", zap.String("action", action), zap.String("card", c.CardType()))
		return
	}

	if err := h(ctx, d, c, p); err != nil {
		logging.Error("card action failed",
			zap.String("action", action),
			zap.String("card", c.CardType()),
			zap.Error(err))
		d.audit(ctx, user.ID, p.MessageID, action+":failed")
		return
	}
	d.audit(ctx, user.ID, p.MessageID, action)
}

// audit is best-effort; a failed audit write is logged and dropped.
func (d *Dispatcher) audit(ctx context.Context, actor, messageID, action string) {
	ev := types.Event{
		ID:        core.MustGUID("evt"),
		MessageID: messageID,
		Actor:     actor,
		Kind:      types.EventCardAction,
		Payload:   action,
		CreatedAt: time.Now().UnixMilli(),
	}
	if err := d.store.AppendEvent(ctx, ev); err != nil {
		logging.Warn("card action audit failed", zap.String("action", action), zap.Error(err))
	}
}

func navigate(path func(types.Card) string) handlerFunc {
	return func(_ context.Context, d *Dispatcher, c types.Card, _ Payload) error {
		d.nav.NavigateTo(path(c))
		return nil
	}
}

func eventAction(kind types.EventKind) handlerFunc {
	return func(ctx context.Context, d *Dispatcher, _ types.Card, p Payload) error {
		user, err := d.identity.CurrentUser(ctx)
		if err != nil || user == nil {
			return err
		}
		return d.store.AppendEvent(ctx, types.Event{
			ID:        core.MustGUID("evt"),
			MessageID: p.MessageID,
			Actor:     user.ID,
			Kind:      kind,
			CreatedAt: time.Now().UnixMilli(),
		})
	}
}

func offerStatus(status string) handlerFunc {
	return func(ctx context.Context, d *Dispatcher, c types.Card, _ Payload) error {
		id := offerID(c)
		if id == "" {
			return fmt.Errorf("card %s has no offer id", c.CardType())
		}
		return d.store.UpdateOfferStatus(ctx, id, status)
	}
}

func invoiceStatus(status string) handlerFunc {
	return func(ctx context.Context, d *Dispatcher, c types.Card, _ Payload) error {
		id := invoiceID(c)
		if id == "" {
			return fmt.Errorf("card %s has no invoice id", c.CardType())
		}
		return d.store.UpdateInvoiceStatus(ctx, id, status)
	}
}

func taskStatus(status string) handlerFunc {
	return func(ctx context.Context, d *Dispatcher, c types.Card, _ Payload) error {
		id := taskID(c)
		if id == "" {
			return fmt.Errorf("card %s has no task id", c.CardType())
		}
		return d.store.UpdateTaskStatus(ctx, id, status)
	}
}

func approvalStatus(status string) handlerFunc {
	return func(ctx context.Context, d *Dispatcher, c types.Card, _ Payload) error {
		id := approvalID(c)
		if id == "" {
			return fmt.Errorf("card %s has no approval id", c.CardType())
		}
		return d.store.UpdateApprovalStatus(ctx, id, status)
	}
}

func handleCounterOffer(ctx context.Context, d *Dispatcher, c types.Card, p Payload) error {
	id := offerID(c)
	if id == "" {
		return fmt.Errorf("card %s has no offer id", c.CardType())
	}
	return d.store.CounterOffer(ctx, id, p.Amount)
}

// handleRemindApproval nudges the pending approver with a notification.
func handleRemindApproval(ctx context.Context, d *Dispatcher, c types.Card, p Payload) error {
	ac, ok := c.(ApprovalCard)
	if !ok || ac.ApprovalID == "" {
		return fmt.Errorf("remind_approval on %s", c.CardType())
	}
	if p.Assignee == "" {
		return fmt.Errorf("remind_approval: no recipient")
	}
	return d.store.InsertNotification(ctx, types.Notification{
		ID:        core.MustGUID("ntf"),
		UserID:    p.Assignee,
		Kind:      "approval_reminder",
		Body:      ac.Subject,
		CreatedAt: time.Now().UnixMilli(),
	})
}

func handleShareShipment(_ context.Context, d *Dispatcher, c types.Card, _ Payload) error {
	d.nav.NavigateTo("/shipments/" + shipmentID(c) + "/share")
	return nil
}

func handleCancelShipment(ctx context.Context, d *Dispatcher, c types.Card, _ Payload) error {
	// Shipment cancellation rides the offer status of the underlying request.
	sc, ok := c.(ShipmentCard)
	if !ok || sc.ShipmentID == "" {
		return fmt.Errorf("cancel_shipment on %s", c.CardType())
	}
	d.nav.NavigateTo("/shipments/" + sc.ShipmentID + "/cancel")
	return nil
}

// handleReassignTask reassigns and, when the new assignee is someone else,
// queues them a notification.
func handleReassignTask(ctx context.Context, d *Dispatcher, c types.Card, p Payload) error {
	tc, ok := c.(TaskCard)
	if !ok || tc.TaskID == "" {
		return fmt.Errorf("reassign_task on %s", c.CardType())
	}
	if p.Assignee == "" {
		return fmt.Errorf("reassign_task: no assignee")
	}
	if err := d.store.ReassignTask(ctx, tc.TaskID, p.Assignee); err != nil {
		return err
	}

	user, err := d.identity.CurrentUser(ctx)
	if err != nil || user == nil {
		return nil
	}
	if p.Assignee == user.ID {
		return nil
	}
	n := types.Notification{
		ID:        core.MustGUID("ntf"),
		UserID:    p.Assignee,
		Kind:      "task_assigned",
		Body:      tc.Title,
		CreatedAt: time.Now().UnixMilli(),
	}
	if err := d.store.InsertNotification(ctx, n); err != nil {
		logging.Warn("task reassign notification failed", zap.Error(err))
	}
	return nil
}

func shipmentID(c types.Card) string {
	switch card := c.(type) {
	case ShipmentCard:
		return card.ShipmentID
	case RequestCard:
		return card.ShipmentID
	}
	return ""
}

func offerID(c types.Card) string {
	switch card := c.(type) {
	case RequestCard:
		return card.OfferID
	case NegotiationCard:
		return card.OfferID
	}
	return ""
}

func invoiceID(c types.Card) string {
	switch card := c.(type) {
	case InvoiceCard:
		return card.InvoiceID
	case PaymentStatusCard:
		return card.InvoiceID
	}
	return ""
}

func taskID(c types.Card) string {
	if card, ok := c.(TaskCard); ok {
		return card.TaskID
	}
	return ""
}

func approvalID(c types.Card) string {
	if card, ok := c.(ApprovalCard); ok {
		return card.ApprovalID
	}
	return ""
}
