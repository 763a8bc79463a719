package services

import (
	"context"
	"errors"
	"time"

	"voicebook-backend/models"

	"github.com/google/uuid"
)

// Storage-level sentinels, translated into the caller-facing taxonomy by the
// resolver and engine. Every store implementation, including test fakes,
// must honor them.
var (
	ErrStoreNotFound = errors.New("store: record not found")
	ErrStoreConflict = errors.New("store: unique constraint violation")
)

// CustomerStore is the persistence surface the resolver needs. The resolver
// is the sole writer of customer rows.
type CustomerStore interface {
	// CustomerByPhone looks up by exact canonical-phone equality.
	// Returns ErrStoreNotFound when no row exists.
	CustomerByPhone(ctx context.Context, phone string) (*models.Customer, error)

	// CreateCustomer inserts a new customer. Returns ErrStoreConflict when
	// the phone unique index rejects the row (concurrent create race).
	CreateCustomer(ctx context.Context, customer *models.Customer) error

	// UpdateCustomer persists changed identity fields on an existing row.
	UpdateCustomer(ctx context.Context, customer *models.Customer) error
}

// RelationshipStore is the persistence surface the discovery engine needs.
// The engine is the sole writer of relationship rows.
type RelationshipStore interface {
	// RelationshipsForCustomer returns every relationship row for the
	// customer with its Business loaded, in creation order.
	RelationshipsForCustomer(ctx context.Context, customerID uuid.UUID) ([]models.CustomerBusinessRelationship, error)

	// UpsertVisit records one completed interaction as a single atomic
	// statement: insert with total_visits=1, or increment total_visits and
	// advance last_visit_date to max(existing, visitDate).
	UpsertVisit(ctx context.Context, customerID, businessID uuid.UUID, visitDate time.Time) error

	// SetPreferred atomically clears is_preferred on the customer's other
	// relationships and sets it on the target. Returns ErrStoreNotFound
	// when the (customer, business) pair has no relationship row.
	SetPreferred(ctx context.Context, customerID, businessID uuid.UUID) error
}

// DiscoveryLogStore records discovery decisions for later audit. Writes are
// best-effort; a failed audit write never fails the lookup itself.
type DiscoveryLogStore interface {
	LogDiscovery(ctx context.Context, entry *models.DiscoveryLog) error
}

// BusinessMatch is one ranked discovery candidate: the business plus the
// relationship summary the ranking was computed from.
type BusinessMatch struct {
	Business       models.Business `json:"business"`
	TotalVisits    int             `json:"totalVisits"`
	FirstVisitDate time.Time       `json:"firstVisitDate"`
	LastVisitDate  time.Time       `json:"lastVisitDate"`
	IsPreferred    bool            `json:"isPreferred"`
}

// DiscoveryResult is the outcome of a phone lookup. A nil Customer with an
// empty Matches list means the phone has never interacted with any business;
// that is a valid answer, not an error.
type DiscoveryResult struct {
	Phone    string           `json:"phone"`
	Customer *models.Customer `json:"customer,omitempty"`
	Matches  []BusinessMatch  `json:"matches"`
}
