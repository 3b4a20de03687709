package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/visitordesk/visitor-service/internal/config"
)

type fakeDialer struct {
	sent []*mail.Msg
	err  error
}

func (f *fakeDialer) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	f.sent = append(f.sent, messages...)
	return f.err
}

type fakeCreator struct {
	params []*twilioApi.CreateMessageParams
	err    error
}

func (f *fakeCreator) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM123"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

type recordingChannel struct {
	emails   []string
	whatsapp []string
}

func (r *recordingChannel) SendEmail(_ context.Context, to, _, _ string) error {
	r.emails = append(r.emails, to)
	return nil
}

func (r *recordingChannel) SendWhatsApp(_ context.Context, to, _ string, _ map[string]string) error {
	r.whatsapp = append(r.whatsapp, to)
	return nil
}

func TestEmailSenderBuildsMessage(t *testing.T) {
	dialer := &fakeDialer{}
	sender := &EmailSender{client: dialer, from: "no-reply@example.com", logger: zap.NewNop()}

	require.NoError(t, sender.SendEmail(context.Background(), "host@example.com", "Visitor arrival", "<p>hi</p>"))
	require.Len(t, dialer.sent, 1)
	to := dialer.sent[0].GetToString()
	require.Len(t, to, 1)
	assert.Contains(t, to[0], "host@example.com")
	assert.Equal(t, []string{"Visitor arrival"}, dialer.sent[0].GetGenHeader(mail.HeaderSubject))
}

func TestEmailSenderErrors(t *testing.T) {
	dialer := &fakeDialer{err: errors.New("smtp down")}
	sender := &EmailSender{client: dialer, from: "no-reply@example.com", logger: zap.NewNop()}

	assert.ErrorIs(t, sender.SendEmail(context.Background(), "", "s", "b"), ErrMissingRecipient)
	assert.ErrorContains(t, sender.SendEmail(context.Background(), "host@example.com", "s", "b"), "smtp down")
}

func TestNewEmailSender(t *testing.T) {
	sender, err := NewEmailSender(config.MailConfig{Host: "smtp.example.com", Port: 2525, FromName: "desk", FromDomain: "example.com"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "desk@example.com", sender.from)
}

func TestWhatsAppSenderUsesTemplate(t *testing.T) {
	creator := &fakeCreator{}
	sender := &WhatsAppSender{api: creator, from: whatsappAddress("+14155238886"), logger: zap.NewNop()}

	err := sender.SendWhatsApp(context.Background(), "0812 3456-789", "HX123", map[string]string{"1": "Dana", "2": "Alice"})
	require.NoError(t, err)
	require.Len(t, creator.params, 1)

	p := creator.params[0]
	assert.Equal(t, "whatsapp:+08123456789", *p.To)
	assert.Equal(t, "whatsapp:+14155238886", *p.From)
	assert.Equal(t, "HX123", *p.ContentSid)

	var vars map[string]string
	require.NoError(t, json.Unmarshal([]byte(*p.ContentVariables), &vars))
	assert.Equal(t, "Alice", vars["2"])
}

func TestWhatsAppAddress(t *testing.T) {
	assert.Equal(t, "whatsapp:+6281234", whatsappAddress("whatsapp:+62 (812) 34"))
	assert.Equal(t, "whatsapp:+6281234", whatsappAddress("6281234"))
}

func TestNotifierSkipsUnconfiguredChannels(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewNotifier(nil, nil, zap.New(core))
	ctx := context.Background()

	assert.NoError(t, n.SendEmail(ctx, "host@example.com", "s", "b"))
	assert.NoError(t, n.SendWhatsApp(ctx, "+62812", "HX1", nil))
	assert.Equal(t, 2, logs.Len())

	assert.ErrorIs(t, n.SendEmail(ctx, " ", "s", "b"), ErrMissingRecipient)
	assert.ErrorIs(t, n.SendWhatsApp(ctx, "", "HX1", nil), ErrMissingRecipient)
}

func TestNotifierDelegates(t *testing.T) {
	ch := &recordingChannel{}
	n := NewNotifier(ch, ch, nil)
	ctx := context.Background()

	require.NoError(t, n.SendEmail(ctx, "host@example.com", "s", "b"))
	require.NoError(t, n.SendWhatsApp(ctx, "+62812", "HX1", nil))
	require.NoError(t, n.SendWhatsApp(ctx, "+62812", "", nil))

	assert.Equal(t, []string{"host@example.com"}, ch.emails)
	assert.Equal(t, []string{"+62812"}, ch.whatsapp, "missing template id skips the send")
}

func TestRenderTemplatesEscapeInput(t *testing.T) {
	subject, body, err := RenderCheckIn(CheckInEmail{
		StaffName:      "Dana",
		VisitorName:    "<script>x</script>",
		VisitorProfile: "Player",
		CheckedInAt:    time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "Visitor arrival: <script>x</script>", subject)
	assert.Contains(t, body, "&lt;script&gt;")
	assert.Contains(t, body, "01 May 2024 09:30")
	assert.NotContains(t, body, "Contact:")

	_, body, err = RenderPasswordReset(PasswordResetEmail{Username: "ops", ResetBy: "root", ResetAt: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Contains(t, body, "reset by root")
}
