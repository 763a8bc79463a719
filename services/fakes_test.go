package services

import (
	"context"
	"sync"
	"time"

	"voicebook-backend/models"

	"github.com/google/uuid"
)

// fakeStore is an in-memory implementation of the three store interfaces
// with the same conflict semantics as the SQL layer. The mutex matters:
// the resolver race test hits it from multiple goroutines.
type fakeStore struct {
	mu         sync.Mutex
	customers  map[string]*models.Customer // canonical phone -> row
	businesses map[uuid.UUID]models.Business
	rels       []*models.CustomerBusinessRelationship // creation order
	logs       []*models.DiscoveryLog

	failWith error // when set, every operation fails with it
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		customers:  map[string]*models.Customer{},
		businesses: map[uuid.UUID]models.Business{},
	}
}

func (f *fakeStore) addBusiness(name, status string) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := models.Business{
		ID:                 uuid.New(),
		Name:               name,
		Slug:               name,
		SubscriptionStatus: status,
	}
	f.businesses[b.ID] = b
	return b.ID
}

func (f *fakeStore) CustomerByPhone(_ context.Context, phone string) (*models.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	customer, ok := f.customers[phone]
	if !ok {
		return nil, ErrStoreNotFound
	}
	cp := *customer
	return &cp, nil
}

func (f *fakeStore) CreateCustomer(_ context.Context, customer *models.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	if _, exists := f.customers[customer.Phone]; exists {
		return ErrStoreConflict
	}
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	cp := *customer
	f.customers[customer.Phone] = &cp
	return nil
}

func (f *fakeStore) UpdateCustomer(_ context.Context, customer *models.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	if _, exists := f.customers[customer.Phone]; !exists {
		return ErrStoreNotFound
	}
	cp := *customer
	f.customers[customer.Phone] = &cp
	return nil
}

func (f *fakeStore) RelationshipsForCustomer(_ context.Context, customerID uuid.UUID) ([]models.CustomerBusinessRelationship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	var out []models.CustomerBusinessRelationship
	for _, rel := range f.rels {
		if rel.CustomerID != customerID {
			continue
		}
		cp := *rel
		cp.Business = f.businesses[rel.BusinessID]
		out = append(out, cp)
	}
	return out, nil
}

func (f *fakeStore) UpsertVisit(_ context.Context, customerID, businessID uuid.UUID, visitDate time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	for _, rel := range f.rels {
		if rel.CustomerID == customerID && rel.BusinessID == businessID {
			rel.TotalVisits++
			if visitDate.After(rel.LastVisitDate) {
				rel.LastVisitDate = visitDate
			}
			return nil
		}
	}
	f.rels = append(f.rels, &models.CustomerBusinessRelationship{
		ID:             uuid.New(),
		CustomerID:     customerID,
		BusinessID:     businessID,
		FirstVisitDate: visitDate,
		LastVisitDate:  visitDate,
		TotalVisits:    1,
	})
	return nil
}

func (f *fakeStore) SetPreferred(_ context.Context, customerID, businessID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	var target *models.CustomerBusinessRelationship
	for _, rel := range f.rels {
		if rel.CustomerID == customerID && rel.BusinessID == businessID {
			target = rel
			break
		}
	}
	if target == nil {
		return ErrStoreNotFound
	}
	for _, rel := range f.rels {
		if rel.CustomerID == customerID {
			rel.IsPreferred = rel == target
		}
	}
	return nil
}

func (f *fakeStore) LogDiscovery(_ context.Context, entry *models.DiscoveryLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, entry)
	return nil
}

// preferredCount reports how many of the customer's relationships carry the
// preferred flag.
func (f *fakeStore) preferredCount(customerID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, rel := range f.rels {
		if rel.CustomerID == customerID && rel.IsPreferred {
			n++
		}
	}
	return n
}
