package domain

import (
	"encoding/json"
	"testing"
)

func TestActiveItemCount(t *testing.T) {
	var nilOrder *Order
	if got := nilOrder.ActiveItemCount(); got != 0 {
		t.Errorf("nil order: expected 0, got %d", got)
	}

	order := &Order{
		LineItems: []LineItem{
			{ID: "li-1", Status: LineItemStatusReserved},
			{ID: "li-2", Status: LineItemStatusRemoved},
			{ID: "li-3", Status: LineItemStatusReturned},
			{ID: "li-4", Status: LineItemStatusPending},
			{ID: "li-5", Status: LineItemStatusCompleted},
		},
	}
	if got := order.ActiveItemCount(); got != 3 {
		t.Errorf("expected 3 active items, got %d", got)
	}
}

func TestOrderDecodesMixedLineItems(t *testing.T) {
	raw := []byte(`{
		"id": "order-1",
		"status": "reserved",
		"totalPrice": 25,
		"totalTax": 2.1,
		"lineItems": [
			{"id":"li-1","type":"access","status":"reserved","price":12.5,
			 "currency":{"code":"EUR","exponent":2},
			 "accessId":"acc-1","capacityLocationPath":"hall/row-1",
			 "event":{"id":"event-1","eventManagerId":"em-1","name":"Evening show","start":"2026-09-01T20:00:00Z","end":"2026-09-01T22:00:00Z"}},
			{"id":"li-2","type":"product","status":"reserved","price":12.5,
			 "currency":{"code":"EUR","exponent":2},
			 "productId":"prod-1","productDefinition":{"id":"pd-1","name":"Popcorn"}}
		]
	}`)

	var order Order
	if err := json.Unmarshal(raw, &order); err != nil {
		t.Fatalf("unmarshal order: %v", err)
	}

	if order.Status != OrderStatusReserved {
		t.Errorf("expected reserved status, got %s", order.Status)
	}
	access := order.LineItems[0]
	if access.Type != LineItemTypeAccess || access.Event == nil || access.Event.Name != "Evening show" {
		t.Errorf("access item decoded incorrectly: %+v", access)
	}
	product := order.LineItems[1]
	if product.Type != LineItemTypeProduct || product.ProductDefinition == nil || product.ProductDefinition.Name != "Popcorn" {
		t.Errorf("product item decoded incorrectly: %+v", product)
	}
}
