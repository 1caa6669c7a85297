package mailingservices

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

const sendTimeout = time.Second * 30

// Mailgun wraps the mailgun client for transactional mail
type Mailgun struct {
	Client *mailgun.MailgunImpl
	From   string
}

// Init configures the client from the mailgun credentials
func (m *Mailgun) Init(domain, apiKey, from string) {
	m.Client = mailgun.NewMailgun(domain, apiKey)
	m.From = from
}

// SendResetPassword mails the password reset link to the user
func (m *Mailgun) SendResetPassword(userEmail, link string) error {
	if m.Client == nil {
		return fmt.Errorf("mailgun client not initialized")
	}
	subject := "Reset your RepairHub password"
	body := fmt.Sprintf("Hello,\n\nWe received a request to reset your password. "+
		"Follow this link to choose a new one:\n\n%s\n\n"+
		"The link expires in 20 minutes. If you didn't ask for this, ignore this email.", link)

	message := m.Client.NewMessage(m.From, subject, body, userEmail)

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	_, id, err := m.Client.Send(ctx, message)
	if err != nil {
		return err
	}
	log.Printf("reset password mail queued for %s, id: %s", userEmail, id)
	return nil
}
