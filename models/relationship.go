package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomerBusinessRelationship links a customer to a business they have
// interacted with and tracks their visit history there. The composite unique
// index guarantees at most one row per (customer, business) pair; concurrent
// first-visit upserts resolve against it with ON CONFLICT.
//
// IsPreferred is a soft invariant: at most one true per customer across all
// their relationships. The database does not enforce it; the discovery
// engine's SetPreferredBusiness does, inside a transaction.
type CustomerBusinessRelationship struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_customer_business,priority:1" json:"customerId"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_customer_business,priority:2" json:"businessId"`

	FirstVisitDate time.Time `gorm:"not null" json:"firstVisitDate"`
	LastVisitDate  time.Time `gorm:"not null" json:"lastVisitDate"`
	TotalVisits    int       `gorm:"not null;default:1" json:"totalVisits"`
	IsPreferred    bool      `gorm:"not null;default:false" json:"isPreferred"`

	Customer Customer `gorm:"foreignKey:CustomerID" json:"-"`
	Business Business `gorm:"foreignKey:BusinessID" json:"-"`

	gorm.Model
}

func (r *CustomerBusinessRelationship) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}

func (CustomerBusinessRelationship) TableName() string {
	return "customer_business_relationships"
}
