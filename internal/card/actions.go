package card

import (
	"strconv"

	"github.com/naviohq/navio/internal/types"
)

// Role is the viewer's role in the room; it scopes the action set a
// rendered card exposes.
type Role string

const (
	RoleShipper Role = "shipper"
	RoleCarrier Role = "carrier"
	RoleOps     Role = "ops"
	RoleFinance Role = "finance"
	RoleViewer  Role = "viewer"
)

// Action names understood by the dispatcher.
const (
	ActionOpenShipment    = "open_shipment"
	ActionTrackShipment   = "track_shipment"
	ActionShareShipment   = "share_shipment"
	ActionCancelShipment  = "cancel_shipment"
	ActionCopyRef         = "copy_ref"
	ActionAcceptOffer     = "accept_offer"
	ActionCounterOffer    = "counter_offer"
	ActionWithdrawOffer   = "withdraw_offer"
	ActionDeclineOffer    = "decline_offer"
	ActionOpenOffers      = "open_offers"
	ActionPayInvoice      = "pay_invoice"
	ActionDisputeInvoice  = "dispute_invoice"
	ActionApprovePayment  = "approve_payment"
	ActionMarkInvoicePaid = "mark_invoice_paid"
	ActionDownloadInvoice = "download_invoice"
	ActionOpenInvoice     = "open_invoice"
	ActionRetryPayment    = "retry_payment"
	ActionConfirmReceived = "confirm_received"
	ActionCompleteTask    = "complete_task"
	ActionReassignTask    = "reassign_task"
	ActionAcceptTask      = "accept_task"
	ActionDuplicateTask   = "duplicate_task"
	ActionOpenTask        = "open_task"
	ActionAcceptSlot      = "accept_slot"
	ActionProposeSlot     = "propose_slot"
	ActionAddToCalendar   = "add_to_calendar"
	ActionOpenCalendar    = "open_calendar"
	ActionApprove         = "approve"
	ActionReject          = "reject"
	ActionRequestChanges  = "request_changes"
	ActionRemindApproval  = "remind_approval"
	ActionOpenApproval    = "open_approval"
	ActionCopyNote        = "copy_note"
	ActionPinNote         = "pin_note"
	ActionStarNote        = "star_note"
)

type actionRule struct {
	action string
	roles  []Role // nil = every role, including viewer
}

var actionTable = map[string][]actionRule{
	TypeShipment: {
		{ActionOpenShipment, nil},
		{ActionTrackShipment, nil},
		{ActionShareShipment, []Role{RoleShipper, RoleCarrier, RoleOps}},
		{ActionCancelShipment, []Role{RoleOps}},
		{ActionCopyRef, nil},
	},
	TypeRequest: {
		{ActionAcceptOffer, []Role{RoleShipper, RoleOps}},
		{ActionCounterOffer, []Role{RoleShipper, RoleCarrier, RoleOps}},
		{ActionWithdrawOffer, []Role{RoleCarrier}},
		{ActionOpenOffers, nil},
	},
	TypeNegotiation: {
		{ActionAcceptOffer, []Role{RoleShipper, RoleOps}},
		{ActionCounterOffer, []Role{RoleShipper, RoleCarrier, RoleOps}},
		{ActionDeclineOffer, []Role{RoleShipper, RoleCarrier, RoleOps}},
		{ActionOpenOffers, nil},
	},
	TypeInvoice: {
		{ActionPayInvoice, []Role{RoleFinance}},
		{ActionDisputeInvoice, []Role{RoleShipper, RoleOps, RoleFinance}},
		{ActionApprovePayment, []Role{RoleFinance}},
		{ActionDownloadInvoice, nil},
		{ActionOpenInvoice, nil},
	},
	TypePaymentStatus: {
		{ActionOpenInvoice, nil},
		{ActionRetryPayment, []Role{RoleFinance}},
		{ActionConfirmReceived, []Role{RoleCarrier, RoleFinance}},
		{ActionMarkInvoicePaid, []Role{RoleFinance}},
	},
	TypeTask: {
		{ActionCompleteTask, []Role{RoleShipper, RoleCarrier, RoleOps, RoleFinance}},
		{ActionReassignTask, []Role{RoleOps}},
		{ActionAcceptTask, []Role{RoleShipper, RoleCarrier, RoleOps, RoleFinance}},
		{ActionDuplicateTask, []Role{RoleOps}},
		{ActionOpenTask, nil},
	},
	TypeCalendar: {
		{ActionAcceptSlot, []Role{RoleShipper, RoleCarrier, RoleOps}},
		{ActionProposeSlot, []Role{RoleShipper, RoleCarrier, RoleOps}},
		{ActionAddToCalendar, nil},
		{ActionOpenCalendar, nil},
	},
	TypeApproval: {
		{ActionApprove, []Role{RoleOps, RoleFinance}},
		{ActionReject, []Role{RoleOps, RoleFinance}},
		{ActionRequestChanges, []Role{RoleOps, RoleFinance}},
		{ActionRemindApproval, []Role{RoleShipper, RoleOps}},
		{ActionOpenApproval, nil},
	},
	TypeNote: {
		{ActionCopyNote, nil},
		{ActionPinNote, []Role{RoleShipper, RoleCarrier, RoleOps, RoleFinance}},
		{ActionStarNote, nil},
	},
}

// ActionsFor returns the ordered action names a viewer with the given role
// may take on a card. A card's type alone fixes the vocabulary; role only
// filters it.
func ActionsFor(c types.Card, role Role) []string {
	rules := actionTable[c.CardType()]
	actions := make([]string, 0, len(rules))
	for _, rule := range rules {
		if rule.roles == nil || containsRole(rule.roles, role) {
			actions = append(actions, rule.action)
		}
	}
	return actions
}

func containsRole(roles []Role, role Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// View is the render-ready model for a card.
type View struct {
	Type    string
	Title   string
	Detail  string
	Actions []string
}

// Render maps a card plus viewer role to its view model.
func Render(c types.Card, role Role) View {
	v := View{Type: c.CardType(), Actions: ActionsFor(c, role)}
	switch card := c.(type) {
	case ShipmentCard:
		v.Title = "Shipment " + card.Ref
		v.Detail = card.Origin + " → " + card.Destination
	case RequestCard:
		v.Title = "Transport request"
		v.Detail = money(card.Amount, card.Currency)
	case NegotiationCard:
		v.Title = "Offer"
		v.Detail = money(card.Amount, card.Currency)
	case InvoiceCard:
		v.Title = "Invoice " + card.InvoiceID
		v.Detail = money(card.Amount, card.Currency)
	case PaymentStatusCard:
		v.Title = "Payment " + card.Status
		v.Detail = card.InvoiceID
	case TaskCard:
		v.Title = card.Title
		v.Detail = "@" + card.Assignee
	case CalendarCard:
		v.Title = card.Title
		v.Detail = card.StartsAt
	case ApprovalCard:
		v.Title = "Approval requested"
		v.Detail = card.Subject
	case NoteCard:
		v.Title = "Note"
		v.Detail = card.Text
	}
	return v
}

func money(amount float64, currency string) string {
	if amount == 0 {
		return ""
	}
	if currency == "" {
		currency = "EUR"
	}
	return currency + " " + strconv.FormatFloat(amount, 'f', -1, 64)
}
