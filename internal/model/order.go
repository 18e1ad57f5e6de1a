package model

import "time"

// Payment status of a purchase order.
const (
	StatusUnpaid = "unpaid"
	StatusPaid   = "paid"
)

// Delivery status track, orthogonal to payment status.
const (
	DeliveryPending   = "pending"
	DeliveryConfirmed = "confirmed"
)

// PurchaseOrder records one checkout of a catalog item.
//
// Lifecycle: created unpaid → patched to paid with a transaction reference
// once the client reports payment completion → delivery status transitions
// independently at any point after creation.
type PurchaseOrder struct {
	ID            string    `json:"id,omitempty"`
	ToolID        string    `json:"toolId"`
	ToolName      string    `json:"toolName,omitempty"`
	Quantity      int64     `json:"quantity"`
	UnitPrice     float64   `json:"unitPrice,omitempty"`
	Email         string    `json:"email"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transactionId,omitempty"`
	Delivery      string    `json:"delivery"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Document converts the order to its stored form.
func (o PurchaseOrder) Document() Document {
	doc := Document{
		"toolId":    o.ToolID,
		"toolName":  o.ToolName,
		"quantity":  o.Quantity,
		"unitPrice": o.UnitPrice,
		"email":     o.Email,
		"status":    o.Status,
		"delivery":  o.Delivery,
		"createdAt": o.CreatedAt,
	}
	if o.TransactionID != "" {
		doc["transactionId"] = o.TransactionID
	}
	return doc
}
