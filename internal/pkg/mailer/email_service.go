package mailer

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendConfirmation(toEmail, confirmLink string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderName string) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: username,
		senderName:  senderName,
	}
}

func (s *emailService) SendConfirmation(toEmail, confirmLink string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Confirm your Oracle Support Assistant account")

	link := html.EscapeString(confirmLink)
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Confirm your email</h2>
			<p>Click the button below to finish signing up:</p>
			<a href="%s" style="background-color: #C74634; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Confirm Email</a>
			<p>Or copy this link:</p>
			<p>%s</p>
			<p>If you didn't sign up, please ignore this email.</p>
		</div>
	`, link, link)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send confirmation to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Confirmation sent to %s\n", toEmail)
	return nil
}
