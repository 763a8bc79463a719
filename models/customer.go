package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is a global identity keyed by canonical phone. Unlike businesses
// and users, customers are not scoped to one tenant: the same person calling
// two different salons is one row here, linked to each salon through
// CustomerBusinessRelationship.
type Customer struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`

	// Phone holds the 10-digit canonical form produced by
	// services.NormalizePhone. The unique index is what makes concurrent
	// find-or-create safe.
	Phone     string `gorm:"not null;uniqueIndex:idx_customers_phone" json:"phone"`
	FirstName string `gorm:"not null" json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`

	Relationships []CustomerBusinessRelationship `gorm:"foreignKey:CustomerID" json:"-"`

	gorm.Model
}

func (c *Customer) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

// FullName joins first and last name, tolerating a missing last name.
func (c *Customer) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
