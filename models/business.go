package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscription statuses a business can be in. Discovery only surfaces
// businesses whose status is active.
const (
	StatusActive    = "active"
	StatusTrial     = "trial"
	StatusCancelled = "cancelled"
)

type Business struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name string    `gorm:"not null" json:"name"`
	Slug string    `gorm:"not null;uniqueIndex" json:"slug"`

	SubscriptionStatus string `gorm:"type:varchar(20);not null;default:'active'" json:"subscriptionStatus"`

	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Timezone string `gorm:"default:'America/New_York'" json:"timezone"`

	Users         []User                         `gorm:"foreignKey:BusinessID" json:"-"`
	Relationships []CustomerBusinessRelationship `gorm:"foreignKey:BusinessID" json:"-"`

	gorm.Model
}

func (b *Business) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}

// IsActive reports whether the business should appear in discovery results.
func (b *Business) IsActive() bool {
	return b.SubscriptionStatus == StatusActive
}
