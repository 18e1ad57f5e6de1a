package service

import (
	"context"
	"errors"
	"time"

	"toolforge-rest-api/internal/model"
	"toolforge-rest-api/internal/repository"

	"toolforge-rest-api/pkg/apierror"
)

// PurchaseService runs the one multi-step mutation in the system: decrement
// catalog quantity, insert the purchase record, later patch it with payment
// and delivery status. The decrement is atomic at the store layer; the
// decrement and insert remain two independent operations.
type PurchaseService struct {
	store   repository.DocumentStore
	catalog *CatalogService
}

// NewPurchaseService creates a new purchase service.
func NewPurchaseService(store repository.DocumentStore, catalog *CatalogService) *PurchaseService {
	if store == nil {
		return nil
	}
	return &PurchaseService{
		store:   store,
		catalog: catalog,
	}
}

// Checkout reserves stock and records the order as unpaid.
func (s *PurchaseService) Checkout(ctx context.Context, order model.PurchaseOrder) (repository.InsertResult, model.PurchaseOrder, error) {
	if order.ToolID == "" {
		return repository.InsertResult{}, order, apierror.BadRequest("toolId is required")
	}
	if order.Email == "" {
		return repository.InsertResult{}, order, apierror.BadRequest("email is required")
	}
	if order.Quantity <= 0 {
		return repository.InsertResult{}, order, apierror.BadRequest("quantity must be positive")
	}

	item, err := s.store.Get(ctx, repository.ToolsCollection, order.ToolID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.InsertResult{}, order, apierror.NotFound("tool not found")
	}
	if err != nil {
		return repository.InsertResult{}, order, err
	}

	if min, ok := model.Int64(item["minOrderQuantity"]); ok && order.Quantity < min {
		return repository.InsertResult{}, order, apierror.BadRequest("quantity is below the minimum order quantity")
	}

	err = s.store.DecrementField(ctx, repository.ToolsCollection, order.ToolID, "quantity", order.Quantity)
	if errors.Is(err, repository.ErrInsufficientStock) {
		return repository.InsertResult{}, order, apierror.InsufficientStock("")
	}
	if errors.Is(err, repository.ErrNotFound) {
		return repository.InsertResult{}, order, apierror.NotFound("tool not found")
	}
	if err != nil {
		return repository.InsertResult{}, order, err
	}
	if s.catalog != nil {
		s.catalog.Invalidate(ctx)
	}

	if order.ToolName == "" {
		order.ToolName = model.String(item["name"])
	}
	if order.UnitPrice == 0 {
		order.UnitPrice, _ = model.Float64(item["price"])
	}
	order.Status = model.StatusUnpaid
	if order.Delivery == "" {
		order.Delivery = model.DeliveryPending
	}
	order.TransactionID = ""
	order.CreatedAt = time.Now().UTC()

	result, err := s.store.Insert(ctx, repository.PurchasedCollection, order.Document())
	if err != nil {
		return repository.InsertResult{}, order, err
	}
	order.ID = result.ID
	return result, order, nil
}

// RecordPayment marks the order paid with the client-reported transaction
// reference. The transaction id is not verified against the payment
// provider; the caller is the trust boundary here.
func (s *PurchaseService) RecordPayment(ctx context.Context, orderID, transactionID, delivery string) (repository.UpdateResult, error) {
	if transactionID == "" {
		return repository.UpdateResult{}, apierror.BadRequest("transactionId is required")
	}

	fields := model.Partial{
		"status":        model.StatusPaid,
		"transactionId": transactionID,
	}
	if delivery != "" {
		fields["delivery"] = delivery
	}

	result, err := s.store.UpdateByID(ctx, repository.PurchasedCollection, orderID, fields)
	if err != nil {
		return repository.UpdateResult{}, err
	}
	if result.Matched == 0 {
		return result, apierror.NotFound("order not found")
	}
	return result, nil
}

// SetDelivery patches delivery status only, independent of payment state.
func (s *PurchaseService) SetDelivery(ctx context.Context, orderID, delivery string) (repository.UpdateResult, error) {
	if delivery == "" {
		return repository.UpdateResult{}, apierror.BadRequest("delivery is required")
	}

	result, err := s.store.UpdateByID(ctx, repository.PurchasedCollection, orderID,
		model.Partial{"delivery": delivery})
	if err != nil {
		return repository.UpdateResult{}, err
	}
	if result.Matched == 0 {
		return result, apierror.NotFound("order not found")
	}
	return result, nil
}

// List returns orders matching the filter, newest-first.
func (s *PurchaseService) List(ctx context.Context, filter model.Filter) ([]model.Document, error) {
	if err := checkFields(filter, model.PurchaseOrderFields); err != nil {
		return nil, err
	}
	return s.store.List(ctx, repository.PurchasedCollection, filter)
}

// Delete removes an order. Allowed for the buyer or an admin at any point.
func (s *PurchaseService) Delete(ctx context.Context, orderID string) (repository.DeleteResult, error) {
	return s.store.DeleteByID(ctx, repository.PurchasedCollection, orderID)
}
