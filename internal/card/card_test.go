package card

import (
	"bytes"
	"reflect"
	"testing"
)

func TestEncodeDecodeAllTypes(t *testing.T) {
	cards := []struct {
		name string
		card interface{ CardType() string }
	}{
		{"shipment", ShipmentCard{ShipmentID: "shp-1", Ref: "NV-1042", Origin: "Rotterdam", Destination: "Milano", Status: "in_transit"}},
		{"request", RequestCard{RequestID: "req-1", ShipmentID: "shp-1", OfferID: "off-1", Amount: 1250.50, Currency: "EUR"}},
		{"negotiation", NegotiationCard{OfferID: "off-1", Amount: 1100, Currency: "EUR", Round: 2}},
		{"invoice", InvoiceCard{InvoiceID: "inv-1", Amount: 990, Currency: "EUR", DueDate: "2026-09-15"}},
		{"payment", PaymentStatusCard{InvoiceID: "inv-1", Status: "pending"}},
		{"task", TaskCard{TaskID: "tsk-1", Title: "Upload CMR", Assignee: "usr-2", DueDate: "2026-09-01"}},
		{"calendar", CalendarCard{EventID: "cal-1", Title: "Loading slot", StartsAt: "2026-09-01T08:00:00Z", EndsAt: "2026-09-01T09:00:00Z"}},
		{"approval", ApprovalCard{ApprovalID: "apr-1", Subject: "Extra charge EUR 120"}},
		{"note", NoteCard{Text: "gate code 4411"}},
	}
	for _, tc := range cards {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := Encode(tc.card)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			got, ok := Decode(raw)
			if !ok {
				t.Fatalf("decode failed for %s", raw)
			}
			if !reflect.DeepEqual(got, tc.card) {
				t.Fatalf("round trip changed card:\n got %#v\nwant %#v", got, tc.card)
			}
		})
	}
}

func TestEncodeDeterministic(t *testing.T) {
	c := RequestCard{RequestID: "req-1", OfferID: "off-1", Amount: 1250, Currency: "EUR"}
	a, err := Encode(c)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Encode(c)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("encode not deterministic:\n%s\n%s", a, b)
	}
	if !bytes.Contains(a, []byte(`"type":"request_card"`)) {
		t.Fatalf("missing discriminator: %s", a)
	}
}

func TestDecodeRejectsBadPayloads(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"not json", "{nope"},
		{"no type", `{"text":"hi"}`},
		{"unknown type", `{"type":"mystery_card"}`},
		{"wrong field type", `{"type":"invoice_card","amount":"abc"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if c, ok := Decode([]byte(tc.raw)); ok {
				t.Fatalf("decoded %#v from %q", c, tc.raw)
			}
		})
	}
}

func TestActionsForRoleFiltering(t *testing.T) {
	inv := InvoiceCard{InvoiceID: "inv-1"}

	finance := ActionsFor(inv, RoleFinance)
	if !contains(finance, ActionPayInvoice) || !contains(finance, ActionApprovePayment) {
		t.Fatalf("finance actions: %v", finance)
	}

	viewer := ActionsFor(inv, RoleViewer)
	if contains(viewer, ActionPayInvoice) {
		t.Fatalf("viewer may not pay: %v", viewer)
	}
	if !contains(viewer, ActionOpenInvoice) || !contains(viewer, ActionDownloadInvoice) {
		t.Fatalf("viewer keeps open actions: %v", viewer)
	}

	// Same card type, same role, same set: the vocabulary is fixed.
	again := ActionsFor(InvoiceCard{InvoiceID: "inv-2", Amount: 500}, RoleViewer)
	if !reflect.DeepEqual(viewer, again) {
		t.Fatalf("action set varies by payload: %v vs %v", viewer, again)
	}
}

func TestActionsForCancelShipmentOpsOnly(t *testing.T) {
	shp := ShipmentCard{ShipmentID: "shp-1"}
	for _, role := range []Role{RoleShipper, RoleCarrier, RoleFinance, RoleViewer} {
		if contains(ActionsFor(shp, role), ActionCancelShipment) {
			t.Fatalf("role %s may cancel", role)
		}
	}
	if !contains(ActionsFor(shp, RoleOps), ActionCancelShipment) {
		t.Fatal("ops may cancel")
	}
}

func TestRender(t *testing.T) {
	v := Render(ShipmentCard{ShipmentID: "shp-1", Ref: "NV-1042", Origin: "Rotterdam", Destination: "Milano"}, RoleViewer)
	if v.Type != TypeShipment {
		t.Fatalf("type: %q", v.Type)
	}
	if v.Title != "Shipment NV-1042" {
		t.Fatalf("title: %q", v.Title)
	}
	if len(v.Actions) == 0 {
		t.Fatal("no actions for viewer")
	}

	v = Render(InvoiceCard{InvoiceID: "inv-1", Amount: 1250.5, Currency: "EUR"}, RoleFinance)
	if v.Detail != "EUR 1250.5" {
		t.Fatalf("money detail: %q", v.Detail)
	}
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
