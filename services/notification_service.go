// services/notification_service.go
package services

import (
	"fmt"
	"os"
	"time"

	"voicebook-backend/models"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// NotificationService sends transactional SMS through Twilio. When the
// Twilio env vars are missing it degrades to logging only, so local
// development does not need a Twilio account.
type NotificationService struct {
	client  *twilio.RestClient
	from    string
	enabled bool
	logger  *zap.Logger
}

func NewNotificationService(logger *zap.Logger) *NotificationService {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	from := os.Getenv("TWILIO_PHONE_NUMBER")

	enabled := accountSid != "" && authToken != "" && from != ""
	if !enabled {
		logger.Warn("twilio not configured, SMS notifications disabled")
	}

	return &NotificationService{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
		from:    from,
		enabled: enabled,
		logger:  logger,
	}
}

// SendBookingConfirmation texts the customer after a completed booking.
// Failures are logged and swallowed; a booking never fails because the
// confirmation text did not go out.
func (s *NotificationService) SendBookingConfirmation(customer *models.Customer, business *models.Business, visitDate time.Time) {
	message := fmt.Sprintf("Hi %s, your appointment at %s on %s is confirmed. See you then!",
		customer.FirstName, business.Name, visitDate.Format("Mon Jan 2, 3:04 PM"))
	s.send(customer.Phone, message)
}

func (s *NotificationService) send(toCanonical, body string) {
	if !s.enabled {
		s.logger.Debug("sms suppressed", zap.String("to", toCanonical))
		return
	}

	// Canonical phones are bare 10-digit NANP; Twilio wants E.164.
	to := "+1" + toCanonical

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		s.logger.Error("failed to send sms", zap.String("to", to), zap.Error(err))
		return
	}
	if resp.Sid != nil {
		s.logger.Info("sms sent", zap.String("to", to), zap.String("sid", *resp.Sid))
	} else {
		s.logger.Info("sms sent, no sid returned", zap.String("to", to))
	}
}
