package controllers

import (
	"errors"
	"net/http"

	"voicebook-backend/services"
	"voicebook-backend/utils"

	"github.com/gin-gonic/gin"
)

type DiscoveryInput struct {
	Phone string `json:"phone" binding:"required"`
}

// DiscoveryController exposes phone-based business discovery over HTTP.
// It is glue only: every decision lives in the engine.
type DiscoveryController struct {
	engine *services.DiscoveryEngine
}

func NewDiscoveryController(engine *services.DiscoveryEngine) *DiscoveryController {
	return &DiscoveryController{engine: engine}
}

// DiscoverByPhone returns the full ranked match list for a phone number.
// An unknown number is a 200 with an empty list.
func (dc *DiscoveryController) DiscoverByPhone(c *gin.Context) {
	var input DiscoveryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	result, err := dc.engine.DiscoverForPhone(c.Request.Context(), input.Phone, services.SourceAPI)
	if err != nil {
		respondDiscoveryError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ResolveBusiness narrows a phone number to a single business. Multiple
// matches come back as 300 with the ranked candidates so the client can ask
// the caller to choose.
func (dc *DiscoveryController) ResolveBusiness(c *gin.Context) {
	var input DiscoveryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	business, err := dc.engine.ResolveSingleBusiness(c.Request.Context(), input.Phone, services.SourceAPI)
	if err != nil {
		var ambiguous *services.AmbiguousError
		switch {
		case errors.As(err, &ambiguous):
			c.JSON(http.StatusMultipleChoices, gin.H{
				"status":  "ambiguous",
				"matches": ambiguous.Matches,
			})
		case errors.Is(err, services.ErrNoBusinessFound):
			c.JSON(http.StatusNotFound, gin.H{"status": "not_found"})
		default:
			respondDiscoveryError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "resolved",
		"business": business,
	})
}

func respondDiscoveryError(c *gin.Context, err error) {
	var persistence *services.PersistenceError
	switch {
	case errors.Is(err, services.ErrInvalidPhoneFormat):
		utils.RespondWithError(c, http.StatusBadRequest, "Please provide a valid phone number")
	case errors.As(err, &persistence):
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Datastore unavailable")
	default:
		utils.RespondWithError(c, http.StatusInternalServerError, "Unexpected error")
	}
}
