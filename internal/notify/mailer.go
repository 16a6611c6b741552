// server/internal/notify/mailer.go
package notify

import (
	"fmt"

	"courier-track-api-server/config"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer sends transactional HTML emails. Every send is fire-and-forget:
// failures are logged and swallowed, they never block or fail the
// triggering request or scan.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	log    *zap.Logger
}

func NewMailer(cfg config.SMTPConfig, log *zap.Logger) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		log:    log,
	}
}

func (m *Mailer) send(to, subject, htmlBody string) {
	if to == "" {
		return
	}
	go func() {
		msg := gomail.NewMessage()
		msg.SetHeader("From", m.from)
		msg.SetHeader("To", to)
		msg.SetHeader("Subject", subject)
		msg.SetBody("text/html", htmlBody)

		if err := m.dialer.DialAndSend(msg); err != nil {
			m.log.Warn("failed to send email",
				zap.String("to", to),
				zap.String("subject", subject),
				zap.Error(err))
		}
	}()
}

// SendStatusUpdate notifies the receiver that their shipment moved.
func (m *Mailer) SendStatusUpdate(to, trackingID, status, location string) {
	subject := fmt.Sprintf("Shipment %s update: %s", trackingID, status)
	body := fmt.Sprintf(
		"<h2>Shipment Update</h2><p>Your shipment <b>%s</b> is now <b>%s</b>.</p><p>Current location: %s</p>",
		trackingID, status, location)
	m.send(to, subject, body)
}

// SendRefundDecision notifies the sender about the admin's refund decision.
func (m *Mailer) SendRefundDecision(to, trackingID string, approved bool, response string) {
	decision := "rejected"
	if approved {
		decision = "approved"
	}
	subject := fmt.Sprintf("Refund %s for shipment %s", decision, trackingID)
	body := fmt.Sprintf(
		"<h2>Refund %s</h2><p>Your refund request for shipment <b>%s</b> has been %s.</p><p>%s</p>",
		decision, trackingID, decision, response)
	m.send(to, subject, body)
}

// SendPartnerApproval notifies a partner about their account decision.
func (m *Mailer) SendPartnerApproval(to, name string, approved bool) {
	if approved {
		m.send(to, "Your partner account has been approved",
			fmt.Sprintf("<h2>Welcome, %s!</h2><p>Your delivery partner account is approved. You can now go online and receive deliveries.</p>", name))
		return
	}
	m.send(to, "Your partner application was not approved",
		fmt.Sprintf("<p>Hi %s, unfortunately your delivery partner application was not approved.</p>", name))
}
