package chat

import (
	"github.com/naviohq/navio/internal/card"
	"github.com/naviohq/navio/internal/composer"
	"github.com/naviohq/navio/internal/core"
	"github.com/naviohq/navio/internal/types"
)

// cardCommands are the slash commands offered by the composer popup.
// Each stages a card skeleton the sender fills before submitting.
var cardCommands = []composer.Command{
	{Name: "/shipment", Desc: "Attach a shipment card", CardType: card.TypeShipment},
	{Name: "/request", Desc: "Attach a transport request", CardType: card.TypeRequest},
	{Name: "/offer", Desc: "Attach a rate offer", CardType: card.TypeNegotiation},
	{Name: "/invoice", Desc: "Attach an invoice card", CardType: card.TypeInvoice},
	{Name: "/task", Desc: "Attach a task card", CardType: card.TypeTask},
	{Name: "/calendar", Desc: "Attach a calendar entry", CardType: card.TypeCalendar},
	{Name: "/approval", Desc: "Request an approval", CardType: card.TypeApproval},
	{Name: "/note", Desc: "Attach a pinned note", CardType: card.TypeNote},
}

// cardSkeleton builds the card a slash command stages, with a fresh
// entity id so later card actions have something to target.
func cardSkeleton(cardType, author string) types.Card {
	switch cardType {
	case card.TypeShipment:
		return card.ShipmentCard{ShipmentID: core.MustGUID("shp")}
	case card.TypeRequest:
		return card.RequestCard{RequestID: core.MustGUID("req"), OfferID: core.MustGUID("ofr")}
	case card.TypeNegotiation:
		return card.NegotiationCard{OfferID: core.MustGUID("ofr"), Round: 1}
	case card.TypeInvoice:
		return card.InvoiceCard{InvoiceID: core.MustGUID("inv")}
	case card.TypeTask:
		return card.TaskCard{TaskID: core.MustGUID("tsk"), Assignee: author}
	case card.TypeCalendar:
		return card.CalendarCard{EventID: core.MustGUID("cal")}
	case card.TypeApproval:
		return card.ApprovalCard{ApprovalID: core.MustGUID("apv")}
	default:
		return card.NoteCard{}
	}
}
