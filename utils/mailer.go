package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

// TicketEmail is the registration confirmation sent to a participant.
type TicketEmail struct {
	To            string
	EventName     string
	TicketID      string
	EventType     string
	OrganizerName string
	QRCodeDataURL string
}

// SendTicketEmail delivers the confirmation over SMTP. Without mail
// credentials it logs the would-be delivery instead, which keeps
// registration working in environments with no mail account.
func SendTicketEmail(mail TicketEmail) error {
	user := os.Getenv("EMAIL_USER")
	pass := os.Getenv("EMAIL_PASS")
	if user == "" || pass == "" {
		log.Printf("[MOCK EMAIL] Would send ticket %s for %q to %s", mail.TicketID, mail.EventName, mail.To)
		return nil
	}

	subject := fmt.Sprintf("Registration Confirmation: %s", mail.EventName)
	html := fmt.Sprintf(
		"<h1>Registration Successful!</h1>"+
			"<p>Hi there,</p>"+
			"<p>You have successfully registered for <strong>%s</strong>.</p>"+
			"<p><strong>Ticket ID:</strong> %s</p>"+
			"<p><strong>Event Type:</strong> %s</p>"+
			"<p><strong>Organizer:</strong> %s</p>"+
			"<p>Your QR code is available on the My Events dashboard.</p>",
		mail.EventName, mail.TicketID, mail.EventType, mail.OrganizerName,
	)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", user)
	fmt.Fprintf(&msg, "To: %s\r\n", mail.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(html)

	auth := smtp.PlainAuth("", user, pass, "smtp.gmail.com")
	if err := smtp.SendMail("smtp.gmail.com:587", auth, user, []string{mail.To}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	log.Printf("📧 Email sent to %s for ticket %s", mail.To, mail.TicketID)
	return nil
}
