package services

import (
	"context"
	"testing"
	"time"

	"voicebook-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine(store *fakeStore) *DiscoveryEngine {
	logger := zap.NewNop()
	resolver := NewCustomerResolver(store, logger)
	return NewDiscoveryEngine(resolver, store, store, logger)
}

func seedCustomer(t *testing.T, store *fakeStore, phone string) *models.Customer {
	t.Helper()
	customer, err := NewCustomerResolver(store, zap.NewNop()).
		FindOrCreate(context.Background(), phone, CustomerHints{FirstName: "Dana"})
	require.NoError(t, err)
	return customer
}

func day(n int) time.Time {
	return time.Date(2026, time.March, n, 0, 0, 0, 0, time.UTC)
}

func TestDiscoverForPhoneUnknownNumber(t *testing.T) {
	engine := newTestEngine(newFakeStore())

	result, err := engine.DiscoverForPhone(context.Background(), "999-999-9999", SourceAPI)
	require.NoError(t, err, "unknown phone is a valid outcome, not an error")

	assert.Nil(t, result.Customer)
	assert.Empty(t, result.Matches)
}

func TestDiscoverForPhoneDoesNotCreateCustomer(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store)

	_, err := engine.DiscoverForPhone(context.Background(), "999-999-9999", SourceAPI)
	require.NoError(t, err)
	assert.Empty(t, store.customers)
}

func TestDiscoverForPhoneMalformedNumber(t *testing.T) {
	engine := newTestEngine(newFakeStore())

	_, err := engine.DiscoverForPhone(context.Background(), "123", SourceAPI)
	assert.ErrorIs(t, err, ErrInvalidPhoneFormat)
}

func TestDiscoverForPhoneFiltersInactiveBusinesses(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	customer := seedCustomer(t, store, "5551234567")
	active := store.addBusiness("Lotus Nails", models.StatusActive)
	churned := store.addBusiness("Gone Spa", models.StatusCancelled)

	require.NoError(t, engine.RecordInteraction(ctx, customer.ID, active, day(1)))
	require.NoError(t, engine.RecordInteraction(ctx, customer.ID, churned, day(2)))

	result, err := engine.DiscoverForPhone(ctx, "5551234567", SourceAPI)
	require.NoError(t, err)

	require.Len(t, result.Matches, 1)
	assert.Equal(t, active, result.Matches[0].Business.ID)
}

func TestDiscoverForPhoneRanking(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	customer := seedCustomer(t, store, "5551234567")
	oneVisit := store.addBusiness("One Visit", models.StatusActive)
	manyVisits := store.addBusiness("Many Visits", models.StatusActive)
	preferred := store.addBusiness("Preferred", models.StatusActive)

	require.NoError(t, engine.RecordInteraction(ctx, customer.ID, oneVisit, day(9)))
	for n := 1; n <= 5; n++ {
		require.NoError(t, engine.RecordInteraction(ctx, customer.ID, manyVisits, day(n)))
	}
	require.NoError(t, engine.RecordInteraction(ctx, customer.ID, preferred, day(1)))
	require.NoError(t, engine.SetPreferredBusiness(ctx, customer.ID, preferred))

	result, err := engine.DiscoverForPhone(ctx, "5551234567", SourceAPI)
	require.NoError(t, err)

	require.Len(t, result.Matches, 3)
	assert.Equal(t, preferred, result.Matches[0].Business.ID, "preferred ranks first regardless of visits")
	assert.Equal(t, manyVisits, result.Matches[1].Business.ID)
	assert.Equal(t, oneVisit, result.Matches[2].Business.ID)
}

func TestDiscoverForPhoneRankingTiebreakers(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	customer := seedCustomer(t, store, "5551234567")
	older := store.addBusiness("Older Visit", models.StatusActive)
	recent := store.addBusiness("Recent Visit", models.StatusActive)

	// Same visit count, different recency.
	require.NoError(t, engine.RecordInteraction(ctx, customer.ID, older, day(1)))
	require.NoError(t, engine.RecordInteraction(ctx, customer.ID, recent, day(20)))

	result, err := engine.DiscoverForPhone(ctx, "5551234567", SourceAPI)
	require.NoError(t, err)

	require.Len(t, result.Matches, 2)
	assert.Equal(t, recent, result.Matches[0].Business.ID)
	assert.Equal(t, older, result.Matches[1].Business.ID)
}

func TestResolveSingleBusinessSingleMatch(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	customer := seedCustomer(t, store, "5551234567")
	businessA := store.addBusiness("A", models.StatusActive)
	require.NoError(t, engine.RecordInteraction(ctx, customer.ID, businessA, day(1)))

	// Different formatting of the same number resolves identically.
	business, err := engine.ResolveSingleBusiness(ctx, "555-123-4567", SourceAPI)
	require.NoError(t, err)
	assert.Equal(t, businessA, business.ID)
}

func TestResolveSingleBusinessAmbiguous(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	customer := seedCustomer(t, store, "5551234567")
	businessA := store.addBusiness("A", models.StatusActive)
	businessB := store.addBusiness("B", models.StatusActive)

	require.NoError(t, engine.RecordInteraction(ctx, customer.ID, businessA, day(1)))
	for n := 1; n <= 3; n++ {
		require.NoError(t, engine.RecordInteraction(ctx, customer.ID, businessB, day(n)))
	}

	_, err := engine.ResolveSingleBusiness(ctx, "5551234567", SourceAPI)

	var ambiguous *AmbiguousError
	require.ErrorAs(t, err, &ambiguous)
	require.Len(t, ambiguous.Matches, 2)
	assert.Equal(t, businessB, ambiguous.Matches[0].Business.ID, "higher visit count ranks first")
	assert.Equal(t, businessA, ambiguous.Matches[1].Business.ID)
}

func TestResolveSingleBusinessNotFound(t *testing.T) {
	engine := newTestEngine(newFakeStore())

	_, err := engine.ResolveSingleBusiness(context.Background(), "999-999-9999", SourceAPI)
	assert.ErrorIs(t, err, ErrNoBusinessFound)
}

func TestRecordInteractionCounts(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	customer := seedCustomer(t, store, "5551234567")
	business := store.addBusiness("A", models.StatusActive)

	require.NoError(t, engine.RecordInteraction(ctx, customer.ID, business, day(5)))

	rels, err := store.RelationshipsForCustomer(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, 1, rels[0].TotalVisits)
	assert.Equal(t, day(5), rels[0].FirstVisitDate)
	assert.Equal(t, day(5), rels[0].LastVisitDate)

	// Each call increments by exactly one; an out-of-order older visit
	// date never moves last_visit_date backwards.
	require.NoError(t, engine.RecordInteraction(ctx, customer.ID, business, day(10)))
	require.NoError(t, engine.RecordInteraction(ctx, customer.ID, business, day(2)))

	rels, err = store.RelationshipsForCustomer(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, 3, rels[0].TotalVisits)
	assert.Equal(t, day(5), rels[0].FirstVisitDate)
	assert.Equal(t, day(10), rels[0].LastVisitDate)
}

func TestSetPreferredBusinessExclusive(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	customer := seedCustomer(t, store, "5551234567")
	businessA := store.addBusiness("A", models.StatusActive)
	businessB := store.addBusiness("B", models.StatusActive)
	businessC := store.addBusiness("C", models.StatusActive)

	for _, id := range []uuid.UUID{businessA, businessB, businessC} {
		require.NoError(t, engine.RecordInteraction(ctx, customer.ID, id, day(1)))
	}

	assert.Equal(t, 0, store.preferredCount(customer.ID))

	// Any sequence of preference flips leaves exactly one flag set.
	for _, id := range []uuid.UUID{businessA, businessB, businessC, businessA} {
		require.NoError(t, engine.SetPreferredBusiness(ctx, customer.ID, id))
		assert.Equal(t, 1, store.preferredCount(customer.ID))
	}

	rels, err := store.RelationshipsForCustomer(ctx, customer.ID)
	require.NoError(t, err)
	for _, rel := range rels {
		assert.Equal(t, rel.BusinessID == businessA, rel.IsPreferred)
	}
}

func TestSetPreferredBusinessRequiresRelationship(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	customer := seedCustomer(t, store, "5551234567")
	stranger := store.addBusiness("Never Visited", models.StatusActive)

	err := engine.SetPreferredBusiness(ctx, customer.ID, stranger)
	assert.ErrorIs(t, err, ErrRelationshipNotFound)
}

func TestDiscoveryAuditLog(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	customer := seedCustomer(t, store, "5551234567")
	business := store.addBusiness("A", models.StatusActive)
	require.NoError(t, engine.RecordInteraction(ctx, customer.ID, business, day(1)))

	_, err := engine.DiscoverForPhone(ctx, "5551234567", SourceVoice)
	require.NoError(t, err)
	_, err = engine.DiscoverForPhone(ctx, "9999999999", SourceAPI)
	require.NoError(t, err)

	require.Len(t, store.logs, 2)
	assert.Equal(t, models.DiscoveryOutcomeSingle, store.logs[0].Outcome)
	assert.Equal(t, SourceVoice, store.logs[0].Source)
	assert.Equal(t, models.DiscoveryOutcomeNotFound, store.logs[1].Outcome)
	assert.Nil(t, store.logs[1].CustomerID)
}
