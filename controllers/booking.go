package controllers

import (
	"errors"
	"net/http"
	"time"

	"voicebook-backend/models"
	"voicebook-backend/services"
	"voicebook-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateBookingInput struct {
	Phone       string    `json:"phone" binding:"required"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	ScheduledAt time.Time `json:"scheduledAt" binding:"required"`
}

// BookingController handles appointment bookings for the authenticated
// business. The booking itself is the interaction the discovery engine
// tracks; appointment details (service, duration, pricing) live in the
// scheduling system outside this backend.
type BookingController struct {
	db       *gorm.DB
	resolver *services.CustomerResolver
	engine   *services.DiscoveryEngine
	notifier *services.NotificationService
}

func NewBookingController(db *gorm.DB, resolver *services.CustomerResolver, engine *services.DiscoveryEngine, notifier *services.NotificationService) *BookingController {
	return &BookingController{db: db, resolver: resolver, engine: engine, notifier: notifier}
}

// CreateBooking resolves the caller to a customer identity, records the
// interaction against the authenticated business and sends a confirmation
// text. The business comes from the jwt claim, never from any stored
// "current business" the client might hold.
func (bc *BookingController) CreateBooking(c *gin.Context) {
	businessID, exists := c.Get("businessId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "Business ID not found in context")
		return
	}

	businessUUID, err := uuid.Parse(businessID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid business ID format")
		return
	}

	var input CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.Email != "" && !utils.ValidateEmail(input.Email) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid email format")
		return
	}

	phone, err := services.NormalizePhone(input.Phone)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Please provide a valid phone number")
		return
	}

	var business models.Business
	if err := bc.db.Where("id = ?", businessUUID).First(&business).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Business not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	ctx := c.Request.Context()
	customer, err := bc.resolver.FindOrCreate(ctx, phone, services.CustomerHints{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Failed to resolve customer")
		return
	}

	visitDate := utils.BeginningOfDay(input.ScheduledAt)
	if err := bc.engine.RecordInteraction(ctx, customer.ID, business.ID, visitDate); err != nil {
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Failed to record booking")
		return
	}

	bc.notifier.SendBookingConfirmation(customer, &business, input.ScheduledAt)

	c.JSON(http.StatusCreated, gin.H{
		"customer": gin.H{
			"id":    customer.ID,
			"phone": customer.Phone,
			"name":  customer.FullName(),
		},
		"businessId":  business.ID,
		"scheduledAt": input.ScheduledAt,
	})
}
