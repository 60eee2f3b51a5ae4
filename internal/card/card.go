package card

import (
	"encoding/json"

	"github.com/naviohq/navio/internal/types"
)

// Card type discriminators as they appear in the wire JSON.
const (
	TypeShipment      = "shipment_card"
	TypeRequest       = "request_card"
	TypeNegotiation   = "negotiation_card"
	TypeInvoice       = "invoice_card"
	TypePaymentStatus = "payment_status_card"
	TypeTask          = "task_card"
	TypeCalendar      = "calendar_card"
	TypeApproval      = "approval_card"
	TypeNote          = "note_card"
)

// ShipmentCard references a shipment.
type ShipmentCard struct {
	ShipmentID  string `json:"shipment_id"`
	Ref         string `json:"ref,omitempty"`
	Origin      string `json:"origin,omitempty"`
	Destination string `json:"destination,omitempty"`
	Status      string `json:"status,omitempty"`
}

// RequestCard is a transport request with an open offer.
type RequestCard struct {
	RequestID  string  `json:"request_id"`
	ShipmentID string  `json:"shipment_id,omitempty"`
	OfferID    string  `json:"offer_id,omitempty"`
	Amount     float64 `json:"amount,omitempty"`
	Currency   string  `json:"currency,omitempty"`
}

// NegotiationCard is one round of an offer negotiation.
type NegotiationCard struct {
	OfferID  string  `json:"offer_id"`
	Amount   float64 `json:"amount,omitempty"`
	Currency string  `json:"currency,omitempty"`
	Round    int     `json:"round,omitempty"`
}

// InvoiceCard references an invoice.
type InvoiceCard struct {
	InvoiceID string  `json:"invoice_id"`
	Amount    float64 `json:"amount,omitempty"`
	Currency  string  `json:"currency,omitempty"`
	DueDate   string  `json:"due_date,omitempty"`
}

// PaymentStatusCard reports payment progress on an invoice.
type PaymentStatusCard struct {
	InvoiceID string `json:"invoice_id"`
	Status    string `json:"status,omitempty"`
}

// TaskCard references an assignable task.
type TaskCard struct {
	TaskID   string `json:"task_id"`
	Title    string `json:"title,omitempty"`
	Assignee string `json:"assignee,omitempty"`
	DueDate  string `json:"due_date,omitempty"`
}

// CalendarCard proposes or confirms a scheduled slot.
type CalendarCard struct {
	EventID  string `json:"event_id"`
	Title    string `json:"title,omitempty"`
	StartsAt string `json:"starts_at,omitempty"`
	EndsAt   string `json:"ends_at,omitempty"`
}

// ApprovalCard requests an approval decision.
type ApprovalCard struct {
	ApprovalID string `json:"approval_id"`
	Subject    string `json:"subject,omitempty"`
}

// NoteCard is a free-form pinned note.
type NoteCard struct {
	Text string `json:"text"`
}

func (ShipmentCard) CardType() string      { return TypeShipment }
func (RequestCard) CardType() string       { return TypeRequest }
func (NegotiationCard) CardType() string   { return TypeNegotiation }
func (InvoiceCard) CardType() string       { return TypeInvoice }
func (PaymentStatusCard) CardType() string { return TypePaymentStatus }
func (TaskCard) CardType() string          { return TypeTask }
func (CalendarCard) CardType() string      { return TypeCalendar }
func (ApprovalCard) CardType() string      { return TypeApproval }
func (NoteCard) CardType() string          { return TypeNote }

// Decode parses one fenced-block JSON payload. A missing or unknown type,
// or malformed JSON, yields (nil, false) — the caller drops the block
// silently.
func Decode(raw []byte) (types.Card, bool) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil || head.Type == "" {
		return nil, false
	}

	var c types.Card
	var err error
	switch head.Type {
	case TypeShipment:
		c, err = decodeInto[ShipmentCard](raw)
	case TypeRequest:
		c, err = decodeInto[RequestCard](raw)
	case TypeNegotiation:
		c, err = decodeInto[NegotiationCard](raw)
	case TypeInvoice:
		c, err = decodeInto[InvoiceCard](raw)
	case TypePaymentStatus:
		c, err = decodeInto[PaymentStatusCard](raw)
	case TypeTask:
		c, err = decodeInto[TaskCard](raw)
	case TypeCalendar:
		c, err = decodeInto[CalendarCard](raw)
	case TypeApproval:
		c, err = decodeInto[ApprovalCard](raw)
	case TypeNote:
		c, err = decodeInto[NoteCard](raw)
	default:
		return nil, false
	}
	if err != nil {
		return nil, false
	}
	return c, true
}

func decodeInto[T types.Card](raw []byte) (types.Card, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Encode serializes a card to its canonical wire JSON: the payload fields
// plus the "type" discriminator, keys sorted. Deterministic, so re-encoding
// an unchanged card is byte-equivalent.
func Encode(c types.Card) ([]byte, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, err
	}
	fields["type"] = json.RawMessage(`"` + c.CardType() + `"`)
	return json.Marshal(fields)
}
