package services

import (
	"context"
	"errors"

	"voicebook-backend/models"

	"go.uber.org/zap"
)

// PlaceholderFirstName is used when a customer identity must be created
// before any name was captured (a voice call that has not asked yet).
const PlaceholderFirstName = "Guest"

// CustomerHints carries optional identity fields supplied by the channel
// that triggered resolution. They only matter when a new customer is
// created, or to fill fields an existing row never had.
type CustomerHints struct {
	FirstName string
	LastName  string
	Email     string
}

// CustomerResolver maps a canonical phone to exactly one customer row,
// creating it when absent. It is the only component that writes customers.
type CustomerResolver struct {
	store  CustomerStore
	logger *zap.Logger
}

func NewCustomerResolver(store CustomerStore, logger *zap.Logger) *CustomerResolver {
	return &CustomerResolver{store: store, logger: logger}
}

// FindByPhone looks up a customer by canonical phone. The phone must already
// be normalized; raw input belongs in NormalizePhone first.
func (r *CustomerResolver) FindByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	customer, err := r.store.CustomerByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, ErrStoreNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, persistErr("find customer by phone", err)
	}
	return customer, nil
}

// FindOrCreate returns the customer for the canonical phone, creating one
// when absent. An existing identity always wins: hints never overwrite a
// known name, they only fill fields that were never captured. Safe under
// concurrent invocation for the same phone; the loser of a create race
// recovers through the unique index and re-resolves.
func (r *CustomerResolver) FindOrCreate(ctx context.Context, phone string, hints CustomerHints) (*models.Customer, error) {
	existing, err := r.FindByPhone(ctx, phone)
	if err == nil {
		return r.fillMissing(ctx, existing, hints)
	}
	if !errors.Is(err, ErrCustomerNotFound) {
		return nil, err
	}

	customer := &models.Customer{
		Phone:     phone,
		FirstName: hints.FirstName,
		LastName:  hints.LastName,
		Email:     hints.Email,
	}
	if customer.FirstName == "" {
		customer.FirstName = PlaceholderFirstName
	}

	if err := r.store.CreateCustomer(ctx, customer); err != nil {
		if errors.Is(err, ErrStoreConflict) {
			// Lost a concurrent create for the same phone; the winner's
			// row is the identity now.
			r.logger.Info("customer create race lost, re-resolving",
				zap.String("phone", phone))
			return r.FindByPhone(ctx, phone)
		}
		return nil, persistErr("create customer", err)
	}

	r.logger.Info("customer created",
		zap.String("phone", phone),
		zap.String("customer_id", customer.ID.String()))
	return customer, nil
}

// fillMissing writes hint values into fields the existing row never had.
// A placeholder first name counts as never captured.
func (r *CustomerResolver) fillMissing(ctx context.Context, customer *models.Customer, hints CustomerHints) (*models.Customer, error) {
	changed := false
	if hints.FirstName != "" && (customer.FirstName == "" || customer.FirstName == PlaceholderFirstName) {
		customer.FirstName = hints.FirstName
		changed = true
	}
	if hints.LastName != "" && customer.LastName == "" {
		customer.LastName = hints.LastName
		changed = true
	}
	if hints.Email != "" && customer.Email == "" {
		customer.Email = hints.Email
		changed = true
	}
	if !changed {
		return customer, nil
	}

	if err := r.store.UpdateCustomer(ctx, customer); err != nil {
		return nil, persistErr("update customer", err)
	}
	return customer, nil
}
