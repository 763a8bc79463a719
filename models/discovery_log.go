package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Discovery outcomes recorded per lookup.
const (
	DiscoveryOutcomeSingle    = "single"
	DiscoveryOutcomeAmbiguous = "ambiguous"
	DiscoveryOutcomeNotFound  = "not_found"
)

// DiscoveryLog is an audit row written for every discovery decision, so that
// "wrong business" reports can be traced back to what the engine actually saw
// at the time of the call.
type DiscoveryLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key"`
	Phone      string     `gorm:"index;not null"`
	CustomerID *uuid.UUID `gorm:"type:uuid;index"`

	MatchCount int    `gorm:"not null"`
	Outcome    string `gorm:"type:varchar(20);not null"`
	Source     string `gorm:"type:varchar(20);not null"` // 'api', 'voice', 'booking'

	ResolvedAt time.Time `gorm:"not null"`

	gorm.Model
}

func (l *DiscoveryLog) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return
}
