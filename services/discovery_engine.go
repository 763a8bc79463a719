package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"voicebook-backend/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Channels a discovery call can originate from, recorded in the audit log.
const (
	SourceAPI     = "api"
	SourceVoice   = "voice"
	SourceBooking = "booking"
)

// DiscoveryEngine answers "which business does this phone number belong to"
// and owns every write to the customer-business relationship table. All call
// sites (booking, login, voice webhook) share this one implementation; none
// of them re-derive the lookup or the active filter themselves.
type DiscoveryEngine struct {
	resolver      *CustomerResolver
	relationships RelationshipStore
	audit         DiscoveryLogStore
	logger        *zap.Logger
}

func NewDiscoveryEngine(resolver *CustomerResolver, relationships RelationshipStore, audit DiscoveryLogStore, logger *zap.Logger) *DiscoveryEngine {
	return &DiscoveryEngine{
		resolver:      resolver,
		relationships: relationships,
		audit:         audit,
		logger:        logger,
	}
}

// DiscoverForPhone returns the ranked set of active businesses the phone's
// customer has a relationship with. An unknown phone yields an empty match
// list, never an error, and never creates a customer: whether "nobody knows
// this number" means "offer registration" or "reject" is the caller's
// business decision.
//
// Ranking: preferred relationship first, then most visits, then most recent
// visit, ties broken by relationship creation order.
func (e *DiscoveryEngine) DiscoverForPhone(ctx context.Context, rawPhone, source string) (*DiscoveryResult, error) {
	phone, err := NormalizePhone(rawPhone)
	if err != nil {
		return nil, err
	}

	result := &DiscoveryResult{Phone: phone, Matches: []BusinessMatch{}}

	customer, err := e.resolver.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			e.logDecision(ctx, result, source)
			return result, nil
		}
		return nil, err
	}
	result.Customer = customer

	rels, err := e.relationships.RelationshipsForCustomer(ctx, customer.ID)
	if err != nil {
		return nil, persistErr("load relationships", err)
	}

	for _, rel := range rels {
		if !rel.Business.IsActive() {
			continue
		}
		result.Matches = append(result.Matches, BusinessMatch{
			Business:       rel.Business,
			TotalVisits:    rel.TotalVisits,
			FirstVisitDate: rel.FirstVisitDate,
			LastVisitDate:  rel.LastVisitDate,
			IsPreferred:    rel.IsPreferred,
		})
	}

	// Stable sort keeps creation order as the final tiebreak, since the
	// store returns rows in creation order.
	sort.SliceStable(result.Matches, func(i, j int) bool {
		a, b := result.Matches[i], result.Matches[j]
		if a.IsPreferred != b.IsPreferred {
			return a.IsPreferred
		}
		if a.TotalVisits != b.TotalVisits {
			return a.TotalVisits > b.TotalVisits
		}
		return a.LastVisitDate.After(b.LastVisitDate)
	})

	e.logDecision(ctx, result, source)
	return result, nil
}

// ResolveSingleBusiness narrows discovery to one business or an explicit
// refusal. More than one active match is surfaced as AmbiguousError so the
// caller can ask the human to choose; it is never silently collapsed to the
// top-ranked row.
func (e *DiscoveryEngine) ResolveSingleBusiness(ctx context.Context, rawPhone, source string) (*models.Business, error) {
	result, err := e.DiscoverForPhone(ctx, rawPhone, source)
	if err != nil {
		return nil, err
	}

	switch len(result.Matches) {
	case 0:
		return nil, ErrNoBusinessFound
	case 1:
		business := result.Matches[0].Business
		return &business, nil
	default:
		return nil, &AmbiguousError{Matches: result.Matches}
	}
}

// RecordInteraction records exactly one completed interaction between a
// customer and a business. First interaction creates the relationship;
// subsequent ones bump the visit counter by one and advance the last visit
// date. Callers must call this once per completed interaction, not per
// retry.
func (e *DiscoveryEngine) RecordInteraction(ctx context.Context, customerID, businessID uuid.UUID, visitDate time.Time) error {
	if err := e.relationships.UpsertVisit(ctx, customerID, businessID, visitDate); err != nil {
		return persistErr("record interaction", err)
	}
	e.logger.Debug("interaction recorded",
		zap.String("customer_id", customerID.String()),
		zap.String("business_id", businessID.String()))
	return nil
}

// SetPreferredBusiness marks one business as the customer's default,
// clearing the flag everywhere else in the same transaction. A customer
// cannot prefer a business they have no recorded relationship with.
func (e *DiscoveryEngine) SetPreferredBusiness(ctx context.Context, customerID, businessID uuid.UUID) error {
	if err := e.relationships.SetPreferred(ctx, customerID, businessID); err != nil {
		if errors.Is(err, ErrStoreNotFound) {
			return ErrRelationshipNotFound
		}
		return persistErr("set preferred business", err)
	}
	e.logger.Info("preferred business set",
		zap.String("customer_id", customerID.String()),
		zap.String("business_id", businessID.String()))
	return nil
}

func (e *DiscoveryEngine) logDecision(ctx context.Context, result *DiscoveryResult, source string) {
	entry := &models.DiscoveryLog{
		Phone:      result.Phone,
		MatchCount: len(result.Matches),
		Source:     source,
		ResolvedAt: time.Now(),
	}
	if result.Customer != nil {
		id := result.Customer.ID
		entry.CustomerID = &id
	}
	switch len(result.Matches) {
	case 0:
		entry.Outcome = models.DiscoveryOutcomeNotFound
	case 1:
		entry.Outcome = models.DiscoveryOutcomeSingle
	default:
		entry.Outcome = models.DiscoveryOutcomeAmbiguous
	}

	if err := e.audit.LogDiscovery(ctx, entry); err != nil {
		e.logger.Warn("discovery audit write failed", zap.Error(err))
	}
}
