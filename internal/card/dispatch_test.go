package card

import (
	"context"
	"errors"
	"testing"

	"github.com/naviohq/navio/internal/types"
)

type fakeIdentity struct {
	user *types.User
	err  error
}

func (f *fakeIdentity) CurrentUser(context.Context) (*types.User, error) { return f.user, f.err }

type fakeStore struct {
	offerStatus    map[string]string
	invoiceStatus  map[string]string
	taskStatus     map[string]string
	approvalStatus map[string]string
	reassigned     map[string]string
	events         []types.Event
	notifications  []types.Notification
	failAll        bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		offerStatus:    map[string]string{},
		invoiceStatus:  map[string]string{},
		taskStatus:     map[string]string{},
		approvalStatus: map[string]string{},
		reassigned:     map[string]string{},
	}
}

func (f *fakeStore) UpdateOfferStatus(_ context.Context, id, status string) error {
	if f.failAll {
		return errors.New("store down")
	}
	f.offerStatus[id] = status
	return nil
}

func (f *fakeStore) CounterOffer(_ context.Context, id string, amount float64) error {
	if f.failAll {
		return errors.New("store down")
	}
	f.offerStatus[id] = "countered"
	return nil
}

func (f *fakeStore) UpdateInvoiceStatus(_ context.Context, id, status string) error {
	if f.failAll {
		return errors.New("store down")
	}
	f.invoiceStatus[id] = status
	return nil
}

func (f *fakeStore) UpdateTaskStatus(_ context.Context, id, status string) error {
	if f.failAll {
		return errors.New("store down")
	}
	f.taskStatus[id] = status
	return nil
}

func (f *fakeStore) ReassignTask(_ context.Context, id, assignee string) error {
	if f.failAll {
		return errors.New("store down")
	}
	f.reassigned[id] = assignee
	return nil
}

func (f *fakeStore) UpdateApprovalStatus(_ context.Context, id, status string) error {
	if f.failAll {
		return errors.New("store down")
	}
	f.approvalStatus[id] = status
	return nil
}

func (f *fakeStore) AppendEvent(_ context.Context, ev types.Event) error {
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeStore) InsertNotification(_ context.Context, n types.Notification) error {
	f.notifications = append(f.notifications, n)
	return nil
}

type fakeNav struct{ paths []string }

func (f *fakeNav) NavigateTo(path string) { f.paths = append(f.paths, path) }

func newTestDispatcher(user *types.User) (*Dispatcher, *fakeStore, *fakeNav) {
	store := newFakeStore()
	nav := &fakeNav{}
	return NewDispatcher(&fakeIdentity{user: user}, store, nav), store, nav
}

func TestDispatchUnauthenticatedIsNoOp(t *testing.T) {
	d, store, nav := newTestDispatcher(nil)
	d.Dispatch(context.Background(), ActionAcceptOffer, RequestCard{RequestID: "req-1", OfferID: "off-1"}, Payload{MessageID: "msg-1"})
	if len(store.offerStatus) != 0 || len(store.events) != 0 || len(nav.paths) != 0 {
		t.Fatal("unauthenticated dispatch must not touch anything")
	}
}

func TestDispatchUpdatesEntityAndAudits(t *testing.T) {
	user := &types.User{ID: "usr-1"}
	d, store, _ := newTestDispatcher(user)

	d.Dispatch(context.Background(), ActionAcceptOffer, RequestCard{RequestID: "req-1", OfferID: "off-1"}, Payload{MessageID: "msg-1"})

	if store.offerStatus["off-1"] != "accepted" {
		t.Fatalf("offer status: %v", store.offerStatus)
	}
	if len(store.events) != 1 {
		t.Fatalf("events: %#v", store.events)
	}
	ev := store.events[0]
	if ev.Kind != types.EventCardAction || ev.Payload != ActionAcceptOffer || ev.Actor != "usr-1" || ev.MessageID != "msg-1" {
		t.Fatalf("audit event: %#v", ev)
	}
}

func TestDispatchFailureSwallowedAndAudited(t *testing.T) {
	d, store, _ := newTestDispatcher(&types.User{ID: "usr-1"})
	store.failAll = true

	// Must return normally even though the store errors.
	d.Dispatch(context.Background(), ActionPayInvoice, InvoiceCard{InvoiceID: "inv-1"}, Payload{MessageID: "msg-2"})

	if len(store.invoiceStatus) != 0 {
		t.Fatal("invoice must stay untouched")
	}
	if len(store.events) != 1 || store.events[0].Payload != ActionPayInvoice+":failed" {
		t.Fatalf("failure audit: %#v", store.events)
	}
}

func TestDispatchUnknownActionIgnored(t *testing.T) {
	d, store, _ := newTestDispatcher(&types.User{ID: "usr-1"})
	d.Dispatch(context.Background(), "launch_rocket", NoteCard{Text: "x"}, Payload{})
	if len(store.events) != 0 {
		t.Fatalf("unknown action audited: %#v", store.events)
	}
}

type panicIdentity struct{}

func (panicIdentity) CurrentUser(context.Context) (*types.User, error) {
	return &types.User{ID: "usr-1"}, nil
}

type panicNav struct{}

func (panicNav) NavigateTo(string) { panic("renderer gone") }

func TestDispatchRecoversFromPanic(t *testing.T) {
	d := NewDispatcher(panicIdentity{}, newFakeStore(), panicNav{})
	// Must not propagate the panic.
	d.Dispatch(context.Background(), ActionOpenShipment, ShipmentCard{ShipmentID: "shp-1"}, Payload{})
}

func TestDispatchNavigation(t *testing.T) {
	d, _, nav := newTestDispatcher(&types.User{ID: "usr-1"})
	d.Dispatch(context.Background(), ActionTrackShipment, ShipmentCard{ShipmentID: "shp-9"}, Payload{MessageID: "msg-3"})
	if len(nav.paths) != 1 || nav.paths[0] != "/shipments/shp-9/tracking" {
		t.Fatalf("paths: %v", nav.paths)
	}
}

func TestReassignTaskNotifiesNewAssignee(t *testing.T) {
	d, store, _ := newTestDispatcher(&types.User{ID: "usr-1"})

	d.Dispatch(context.Background(), ActionReassignTask,
		TaskCard{TaskID: "tsk-1", Title: "Upload CMR"},
		Payload{MessageID: "msg-4", Assignee: "usr-2"})

	if store.reassigned["tsk-1"] != "usr-2" {
		t.Fatalf("reassigned: %v", store.reassigned)
	}
	if len(store.notifications) != 1 {
		t.Fatalf("notifications: %#v", store.notifications)
	}
	n := store.notifications[0]
	if n.UserID != "usr-2" || n.Kind != "task_assigned" || n.Body != "Upload CMR" {
		t.Fatalf("notification: %#v", n)
	}
}

func TestReassignTaskToSelfSkipsNotification(t *testing.T) {
	d, store, _ := newTestDispatcher(&types.User{ID: "usr-1"})

	d.Dispatch(context.Background(), ActionReassignTask,
		TaskCard{TaskID: "tsk-1", Title: "Upload CMR"},
		Payload{MessageID: "msg-5", Assignee: "usr-1"})

	if store.reassigned["tsk-1"] != "usr-1" {
		t.Fatalf("reassigned: %v", store.reassigned)
	}
	if len(store.notifications) != 0 {
		t.Fatalf("self-assign notified: %#v", store.notifications)
	}
}
