// FILE: internal/pkg/mailer/email_service.go
package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendReviewAlert(toEmail, route, answerPath, comment string, rating int) error
	SendRejectionDigestEntry(toEmail, reason string, trustScore float64) error
}

// emailService delivers review-inbox mail. Expert feedback lands in a
// reviewer's mailbox so corrections to published answers are not missed
// between websocket sessions.
type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

func (s *emailService) SendReviewAlert(toEmail, route, answerPath, comment string, rating int) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("New %s feedback awaiting review", route))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Feedback awaiting review</h2>
			<p><b>Route:</b> %s</p>
			<p><b>Answer path:</b> %s</p>
			<p><b>Rating:</b> %d/5</p>
			<p><b>Comment:</b></p>
			<blockquote style="border-left: 3px solid #ccc; padding-left: 10px;">%s</blockquote>
			<p>Open the review desk to act on it.</p>
		</div>
	`, route, answerPath, rating, comment)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send review alert to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Review alert sent to %s\n", toEmail)
	return nil
}

func (s *emailService) SendRejectionDigestEntry(toEmail, reason string, trustScore float64) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Expert feedback rejected at trust gate")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Trust gate rejection</h2>
			<p><b>Reason:</b> %s</p>
			<p><b>Trust score:</b> %.2f</p>
			<p>The submission content was discarded; only this audit entry remains.</p>
		</div>
	`, reason, trustScore)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send rejection notice to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Rejection notice sent to %s\n", toEmail)
	return nil
}
