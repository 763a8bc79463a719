package services

import (
	"context"
	"errors"
	"time"

	"voicebook-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements CustomerStore, RelationshipStore and
// DiscoveryLogStore against Postgres. Requires the connection to be opened
// with TranslateError so unique violations surface as gorm.ErrDuplicatedKey
// (see config.ConnectDB).
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CustomerByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.WithContext(ctx).Where("phone = ?", phone).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return &customer, nil
}

func (s *GormStore) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	if err := s.db.WithContext(ctx).Create(customer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrStoreConflict
		}
		return err
	}
	return nil
}

func (s *GormStore) UpdateCustomer(ctx context.Context, customer *models.Customer) error {
	return s.db.WithContext(ctx).Save(customer).Error
}

func (s *GormStore) RelationshipsForCustomer(ctx context.Context, customerID uuid.UUID) ([]models.CustomerBusinessRelationship, error) {
	var rels []models.CustomerBusinessRelationship
	err := s.db.WithContext(ctx).
		Preload("Business").
		Where("customer_id = ?", customerID).
		Order("created_at ASC").
		Find(&rels).Error
	if err != nil {
		return nil, err
	}
	return rels, nil
}

// UpsertVisit is a single INSERT ... ON CONFLICT statement so two concurrent
// first visits for the same pair cannot create two rows; the loser's insert
// turns into the increment.
func (s *GormStore) UpsertVisit(ctx context.Context, customerID, businessID uuid.UUID, visitDate time.Time) error {
	rel := models.CustomerBusinessRelationship{
		CustomerID:     customerID,
		BusinessID:     businessID,
		FirstVisitDate: visitDate,
		LastVisitDate:  visitDate,
		TotalVisits:    1,
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "customer_id"}, {Name: "business_id"}},
		DoUpdates: clause.Set{
			{
				Column: clause.Column{Name: "total_visits"},
				Value:  gorm.Expr("customer_business_relationships.total_visits + 1"),
			},
			{
				Column: clause.Column{Name: "last_visit_date"},
				Value:  gorm.Expr("GREATEST(customer_business_relationships.last_visit_date, excluded.last_visit_date)"),
			},
			{
				Column: clause.Column{Name: "updated_at"},
				Value:  gorm.Expr("NOW()"),
			},
		},
	}).Create(&rel).Error
}

// SetPreferred runs both updates in one transaction: the target row is
// flipped first (which doubles as the existence check), then every other
// row for the customer is cleared. Two racing calls serialize on the row
// locks, so the one-preferred-per-customer invariant holds at commit.
func (s *GormStore) SetPreferred(ctx context.Context, customerID, businessID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		target := tx.Model(&models.CustomerBusinessRelationship{}).
			Where("customer_id = ? AND business_id = ?", customerID, businessID).
			Update("is_preferred", true)
		if target.Error != nil {
			return target.Error
		}
		if target.RowsAffected == 0 {
			return ErrStoreNotFound
		}

		return tx.Model(&models.CustomerBusinessRelationship{}).
			Where("customer_id = ? AND business_id <> ?", customerID, businessID).
			Update("is_preferred", false).Error
	})
}

func (s *GormStore) LogDiscovery(ctx context.Context, entry *models.DiscoveryLog) error {
	return s.db.WithContext(ctx).Create(entry).Error
}
