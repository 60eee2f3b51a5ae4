package types

// RoomKind distinguishes lightweight chat rooms from shipment rooms.
// Shipment rooms use optimistic echo + reconciliation on send; chat rooms
// broadcast and persist concurrently.
type RoomKind string

const (
	RoomKindChat     RoomKind = "chat"
	RoomKindShipment RoomKind = "shipment"
)

// Room represents a conversation room.
type Room struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Kind      RoomKind `json:"kind"`
	CreatedAt string   `json:"created_at"`
}

// TempIDPrefix marks client-generated message ids awaiting reconciliation.
const TempIDPrefix = "tmp-"

// Message represents a room message. Body carries the wire envelope
// (see internal/codec); CreatedAt is an ISO-8601 timestamp whose string
// order matches chronological order.
type Message struct {
	ID        string `json:"id"`
	RoomID    string `json:"room_id"`
	Author    string `json:"author"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
	Pending   bool   `json:"pending,omitempty"`
}

// IsTemp reports whether the message is an unreconciled optimistic echo.
func (m Message) IsTemp() bool {
	return len(m.ID) >= len(TempIDPrefix) && m.ID[:len(TempIDPrefix)] == TempIDPrefix
}

// AttachmentType classifies an attachment by file extension.
type AttachmentType string

const (
	AttachmentPDF     AttachmentType = "pdf"
	AttachmentImage   AttachmentType = "image"
	AttachmentVideo   AttachmentType = "video"
	AttachmentArchive AttachmentType = "archive"
	AttachmentDoc     AttachmentType = "doc"
	AttachmentSheet   AttachmentType = "sheet"
	AttachmentSlides  AttachmentType = "slides"
	AttachmentFile    AttachmentType = "file"
)

// Attachment is a file reference embedded in a message body.
// Immutable once a message is sent.
type Attachment struct {
	Name     string         `json:"name"`
	URL      string         `json:"url,omitempty"`
	Type     AttachmentType `json:"type"`
	Provider string         `json:"provider,omitempty"`
}

// Card is the discriminated union of business cards embedded in message
// bodies. Concrete payloads live in internal/card; the set is closed.
type Card interface {
	CardType() string
}

// Envelope is the decoded structured form of a message body.
type Envelope struct {
	ReplyTo     *string
	Edited      bool
	VisibleText string
	Attachments []Attachment
	Cards       []Card
	Mentions    map[string]string // label -> user id
}

// EventKind discriminates append-only per-message events.
type EventKind string

const (
	EventEmoji      EventKind = "emoji"
	EventReceipt    EventKind = "receipt"
	EventPin        EventKind = "pin"
	EventStar       EventKind = "star"
	EventCardAction EventKind = "card_action"
)

// Event is an append-only record attached to a message.
type Event struct {
	ID        string    `json:"id"`
	MessageID string    `json:"message_id"`
	Actor     string    `json:"actor"`
	Kind      EventKind `json:"kind"`
	Payload   string    `json:"payload,omitempty"`
	CreatedAt int64     `json:"created_at"`
}

// Actor pairs a user id with its resolved display name.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// User is the current signed-in identity.
type User struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	EmailConfirmed bool   `json:"email_confirmed"`
}

// Member is a room member as seen by autocomplete and fan-out.
type Member struct {
	RoomID      string `json:"room_id"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// Profile is the per-user profile row; TabState holds the serialized
// workspace state (whole-document, last writer wins).
type Profile struct {
	UserID         string `json:"user_id"`
	Email          string `json:"email"`
	EmailConfirmed bool   `json:"email_confirmed"`
	DisplayName    string `json:"display_name"`
	TabState       string `json:"tab_state,omitempty"`
}

// Notification is a queued in-app notification row.
type Notification struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Kind      string `json:"kind"`
	Body      string `json:"body"`
	CreatedAt int64  `json:"created_at"`
}

// MessageQueryOptions controls message queries.
type MessageQueryOptions struct {
	RoomID  string
	Author  string
	After   string // CreatedAt strictly greater
	Limit   int
	Descend bool
}
