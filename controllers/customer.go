package controllers

import (
	"errors"
	"net/http"

	"voicebook-backend/models"
	"voicebook-backend/services"
	"voicebook-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomerController serves the customer views of the authenticated
// business. A business only ever sees customers it has a relationship with;
// there is no cross-tenant listing.
type CustomerController struct {
	db     *gorm.DB
	engine *services.DiscoveryEngine
}

func NewCustomerController(db *gorm.DB, engine *services.DiscoveryEngine) *CustomerController {
	return &CustomerController{db: db, engine: engine}
}

func businessFromContext(c *gin.Context) (uuid.UUID, bool) {
	businessID, exists := c.Get("businessId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "Business ID not found in context")
		return uuid.Nil, false
	}
	businessUUID, err := uuid.Parse(businessID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid business ID format")
		return uuid.Nil, false
	}
	return businessUUID, true
}

// GetCustomers lists customers related to the authenticated business, most
// recently seen first.
func (cc *CustomerController) GetCustomers(c *gin.Context) {
	businessUUID, ok := businessFromContext(c)
	if !ok {
		return
	}

	var rels []models.CustomerBusinessRelationship
	if err := cc.db.Preload("Customer").
		Where("business_id = ?", businessUUID).
		Order("last_visit_date DESC").
		Find(&rels).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve customers")
		return
	}

	out := make([]gin.H, 0, len(rels))
	for _, rel := range rels {
		out = append(out, gin.H{
			"id":             rel.Customer.ID,
			"phone":          rel.Customer.Phone,
			"firstName":      rel.Customer.FirstName,
			"lastName":       rel.Customer.LastName,
			"email":          rel.Customer.Email,
			"totalVisits":    rel.TotalVisits,
			"firstVisitDate": rel.FirstVisitDate,
			"lastVisitDate":  rel.LastVisitDate,
			"isPreferred":    rel.IsPreferred,
		})
	}

	c.JSON(http.StatusOK, out)
}

// GetCustomer retrieves one customer, scoped through the relationship so a
// business cannot read a customer it has never interacted with.
func (cc *CustomerController) GetCustomer(c *gin.Context) {
	businessUUID, ok := businessFromContext(c)
	if !ok {
		return
	}

	customerUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	var rel models.CustomerBusinessRelationship
	if err := cc.db.Preload("Customer").
		Where("business_id = ? AND customer_id = ?", businessUUID, customerUUID).
		First(&rel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":             rel.Customer.ID,
		"phone":          rel.Customer.Phone,
		"firstName":      rel.Customer.FirstName,
		"lastName":       rel.Customer.LastName,
		"email":          rel.Customer.Email,
		"totalVisits":    rel.TotalVisits,
		"firstVisitDate": rel.FirstVisitDate,
		"lastVisitDate":  rel.LastVisitDate,
		"isPreferred":    rel.IsPreferred,
	})
}

// SetPreferredBusiness marks the authenticated business as the customer's
// preferred one. Fails when the customer has never interacted with this
// business.
func (cc *CustomerController) SetPreferredBusiness(c *gin.Context) {
	businessUUID, ok := businessFromContext(c)
	if !ok {
		return
	}

	customerUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	if err := cc.engine.SetPreferredBusiness(c.Request.Context(), customerUUID, businessUUID); err != nil {
		if errors.Is(err, services.ErrRelationshipNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer has no relationship with this business")
			return
		}
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Failed to update preference")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Preferred business updated"})
}
