package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"voicebook-backend/services"
	"voicebook-backend/utils"

	"github.com/gin-gonic/gin"
)

// VoiceWebhookInput mirrors the shape the voice platform posts on an
// inbound call: the caller id lives under message.call.customer.number.
type VoiceWebhookInput struct {
	Message struct {
		Type string `json:"type"`
		Call struct {
			ID       string `json:"id"`
			Customer struct {
				Number string `json:"number"`
			} `json:"customer"`
		} `json:"call"`
	} `json:"message"`
}

// VoiceController translates inbound voice-platform webhooks into discovery
// decisions shaped for the voice agent: greet by name and auto-select when
// one business matches, read out a choice list when several do, and branch
// to new-caller intake when none do.
type VoiceController struct {
	engine *services.DiscoveryEngine
}

func NewVoiceController(engine *services.DiscoveryEngine) *VoiceController {
	return &VoiceController{engine: engine}
}

// HandleInboundCall resolves the caller's number. It never creates a
// customer: a caller who has never booked anywhere goes down the intake
// branch, and identity creation waits until they complete a booking.
func (vc *VoiceController) HandleInboundCall(c *gin.Context) {
	var input VoiceWebhookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid webhook payload")
		return
	}

	number := input.Message.Call.Customer.Number
	if number == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Missing caller number")
		return
	}

	result, err := vc.engine.DiscoverForPhone(c.Request.Context(), number, services.SourceVoice)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPhoneFormat) {
			// Withheld or non-NANP caller id; treat as unknown rather
			// than failing the call.
			c.JSON(http.StatusOK, gin.H{
				"action": "intake",
				"prompt": "Thanks for calling! Which salon are you trying to reach?",
			})
			return
		}
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Lookup failed")
		return
	}

	switch len(result.Matches) {
	case 0:
		c.JSON(http.StatusOK, gin.H{
			"action": "intake",
			"prompt": "Thanks for calling! Which salon are you trying to reach?",
		})
	case 1:
		match := result.Matches[0]
		c.JSON(http.StatusOK, gin.H{
			"action":     "auto_select",
			"businessId": match.Business.ID,
			"prompt": fmt.Sprintf("Hi %s, welcome back to %s!",
				result.Customer.FirstName, match.Business.Name),
		})
	default:
		names := make([]string, 0, len(result.Matches))
		for _, m := range result.Matches {
			names = append(names, m.Business.Name)
		}
		c.JSON(http.StatusOK, gin.H{
			"action":  "choose",
			"matches": result.Matches,
			"prompt": fmt.Sprintf("Hi %s! Are you calling about %s?",
				result.Customer.FirstName, strings.Join(names, ", or ")),
		})
	}
}
