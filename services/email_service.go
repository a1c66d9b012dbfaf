// File: /services/email_service.go
package services

import (
	"fmt"
	"html"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
	"vanlife-api/config"
)

// MailJob is one outbound HTML message.
type MailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type Mailer interface {
	Send(job MailJob) error
}

type EmailService struct {
	config *config.Config
	dialer *gomail.Dialer
	log    logrus.FieldLogger
}

func NewEmailService(cfg *config.Config, log logrus.FieldLogger) *EmailService {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)

	return &EmailService{
		config: cfg,
		dialer: dialer,
		log:    log,
	}
}

func (es *EmailService) Send(job MailJob) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(es.config.FromEmail, es.config.FromName))
	m.SetHeader("To", job.To)
	m.SetHeader("Subject", job.Subject)
	m.SetBody("text/html", job.HTML)

	if err := es.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send %q email: %w", job.Subject, err)
	}

	es.log.WithField("to", job.To).WithField("subject", job.Subject).Info("email sent")
	return nil
}

const (
	RegistrationSubject = "VanLife: Successful Registration"
	ResetSubject        = "VanLife: Password Reset Requested"
)

func RegistrationMail(email, name, surname string) MailJob {
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Welcome to VanLife</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #161616; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { text-align: center; background: #FF8C38; color: white; padding: 20px; border-radius: 10px 10px 0 0; }
        .content { background: #FFF7ED; padding: 30px; border-radius: 0 0 10px 10px; }
        .footer { text-align: center; margin-top: 20px; color: #4D4D4D; font-size: 14px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>#VANLIFE</h1>
        </div>
        <div class="content">
            <h2>Hello %s %s!</h2>
            <p>Your VanLife account has been created. You can now log in, list your own vans and keep track of your rentals and reviews.</p>
            <p>Happy travels!</p>
            <p><strong>The VanLife Team</strong></p>
        </div>
        <div class="footer">
            <p>This is an automated email, please do not reply.</p>
        </div>
    </div>
</body>
</html>`, html.EscapeString(name), html.EscapeString(surname))

	return MailJob{To: email, Subject: RegistrationSubject, HTML: body}
}

func ResetMail(email, resetURL string) MailJob {
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Password Reset</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #161616; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .content { background: #FFF7ED; padding: 30px; border-radius: 10px; }
        .btn { display: inline-block; background: #FF8C38; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin: 10px 0; }
        .warning { background: #fff3cd; border-left: 4px solid #ffc107; padding: 15px; margin: 20px 0; }
    </style>
</head>
<body>
    <div class="container">
        <div class="content">
            <h2>Password reset requested</h2>
            <p>Follow the link below to choose a new password. The link can be used once and expires shortly.</p>
            <p><a class="btn" href="%[1]s">Reset password</a></p>
            <p>%[1]s</p>
            <div class="warning">
                If you didn't request a password reset, please ignore this email. Your password will remain unchanged.
            </div>
        </div>
    </div>
</body>
</html>`, html.EscapeString(resetURL))

	return MailJob{To: email, Subject: ResetSubject, HTML: body}
}
