package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"github.com/visitordesk/visitor-service/internal/config"
)

const whatsappScheme = "whatsapp:"

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// WhatsAppSender sends approved content templates through Twilio.
type WhatsAppSender struct {
	api    messageCreator
	from   string
	logger *zap.Logger
}

func NewWhatsAppSender(cfg config.WhatsAppConfig, logger *zap.Logger) *WhatsAppSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &WhatsAppSender{api: client.Api, from: whatsappAddress(cfg.From), logger: logger}
}

// SendWhatsApp ignores ctx; the Twilio client has no context-aware variant.
func (w *WhatsAppSender) SendWhatsApp(_ context.Context, to, templateID string, params map[string]string) error {
	if strings.TrimSpace(to) == "" {
		return ErrMissingRecipient
	}
	variables, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encode template variables: %w", err)
	}

	req := &twilioApi.CreateMessageParams{}
	req.SetTo(whatsappAddress(to))
	req.SetFrom(w.from)
	req.SetContentSid(templateID)
	req.SetContentVariables(string(variables))

	resp, err := w.api.CreateMessage(req)
	if err != nil {
		return fmt.Errorf("send whatsapp: %w", err)
	}
	sid := ""
	if resp != nil && resp.Sid != nil {
		sid = *resp.Sid
	}
	w.logger.Info("whatsapp sent", zap.String("to", to), zap.String("sid", sid))
	return nil
}

// whatsappAddress formats a phone number as a Twilio WhatsApp address.
func whatsappAddress(phone string) string {
	phone = strings.TrimSpace(strings.TrimPrefix(phone, whatsappScheme))
	replacer := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
	phone = replacer.Replace(phone)
	if phone != "" && !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}
	return whatsappScheme + phone
}
