// services/reconciler_service.go
package services

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReconcilerService is a nightly sweep over relationship rows. The
// preference invariant (at most one preferred business per customer) is
// enforced on every write, but rows created before this code existed, or
// touched by out-of-band admin edits, can still violate it. The sweep
// detects those customers and keeps only the most recently updated preferred
// row.
type ReconcilerService struct {
	db     *gorm.DB
	logger *zap.Logger
	cron   *cron.Cron
}

func NewReconcilerService(db *gorm.DB, logger *zap.Logger) *ReconcilerService {
	return &ReconcilerService{db: db, logger: logger, cron: cron.New()}
}

// StartScheduler runs the sweep every night at 3 AM.
func (s *ReconcilerService) StartScheduler() {
	if _, err := s.cron.AddFunc("0 3 * * *", s.RepairPreferredFlags); err != nil {
		s.logger.Error("failed to schedule reconciler", zap.Error(err))
		return
	}
	s.cron.Start()
	s.logger.Info("preference reconciler scheduled")
}

func (s *ReconcilerService) Stop() {
	s.cron.Stop()
}

// RepairPreferredFlags finds customers with more than one preferred
// relationship and clears all but the most recently updated one.
func (s *ReconcilerService) RepairPreferredFlags() {
	var customerIDs []string
	err := s.db.Raw(`
		SELECT customer_id FROM customer_business_relationships
		WHERE is_preferred = true AND deleted_at IS NULL
		GROUP BY customer_id
		HAVING COUNT(*) > 1
	`).Scan(&customerIDs).Error
	if err != nil {
		s.logger.Error("preference sweep query failed", zap.Error(err))
		return
	}

	if len(customerIDs) == 0 {
		s.logger.Info("preference sweep clean")
		return
	}

	repaired := 0
	for _, customerID := range customerIDs {
		res := s.db.Exec(`
			UPDATE customer_business_relationships
			SET is_preferred = false
			WHERE customer_id = ? AND is_preferred = true AND deleted_at IS NULL
			AND id <> (
				SELECT id FROM customer_business_relationships
				WHERE customer_id = ? AND is_preferred = true AND deleted_at IS NULL
				ORDER BY updated_at DESC LIMIT 1
			)
		`, customerID, customerID)
		if res.Error != nil {
			s.logger.Error("preference repair failed",
				zap.String("customer_id", customerID), zap.Error(res.Error))
			continue
		}
		repaired++
	}

	s.logger.Warn("preference sweep repaired customers",
		zap.Int("violations", len(customerIDs)),
		zap.Int("repaired", repaired))
}
