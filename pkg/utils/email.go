package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

var (
	emailFrom     = os.Getenv("EMAIL_FROM")
	emailPassword = os.Getenv("EMAIL_PASSWORD")
	smtpHost      = os.Getenv("SMTP_HOST")
	smtpPort      = os.Getenv("SMTP_PORT")
	companyName   = "ZapShift Limited"
	baseURL       = os.Getenv("BASE_URL")
)

// Common header template for all emails
const emailHeader = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<div style="text-align: center; margin-bottom: 30px; background-color: #f9f9f9; padding: 20px;">
			<h2 style="color: #CAEB66; margin: 0;">ZapShift</h2>
		</div>
`

// Common footer template for all emails
const emailFooter = `
		<div style="text-align: center; margin-top: 20px; font-size: 12px; color: #666; border-top: 1px solid #eee; padding-top: 20px;">
			<p>This is an automated message, please do not reply to this email.</p>
			<p>© 2026 ZapShift Limited. All rights reserved.</p>
		</div>
	</div>
</body>
</html>
`

func sendEmail(to []string, subject, body string) error {
	if emailFrom == "" || emailPassword == "" || smtpHost == "" || smtpPort == "" {
		return fmt.Errorf("email configuration not set")
	}

	// Headers
	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("%s <%s>", companyName, emailFrom)
	headers["To"] = strings.Join(to, ",")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"
	headers["X-Mailer"] = "ZapShift-Mailer"

	// Build message
	message := ""
	for key, value := range headers {
		message += fmt.Sprintf("%s: %s\r\n", key, value)
	}
	message += "\r\n" + body

	// Authentication
	auth := smtp.PlainAuth("", emailFrom, emailPassword, smtpHost)

	// Send email
	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, emailFrom, to, []byte(message))
	if err != nil {
		log.Printf("Failed to send email: %v", err)
		return err
	}

	log.Printf("Successfully sent email to recipients: %v", to)
	return nil
}

func SendRiderApprovedEmail(riderEmail, riderName string) error {
	subject := "Rider Application Approved - ZapShift"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Welcome Aboard!</h1>
					<p>Hello %s,</p>
					<p>Congratulations! Your rider application has been approved. You can now log in and start accepting deliveries.</p>
					<div style="text-align: center; margin: 30px 0;">
						<a href="%s/login" style="background-color: #CAEB66; color: #333; padding: 12px 25px; text-decoration: none; border-radius: 5px;">Login to ZapShift</a>
					</div>
					<p>Best regards,<br>The ZapShift Team</p>
				</div>`+emailFooter,
		riderName, baseURL)

	return sendEmail([]string{riderEmail}, subject, body)
}

func SendRiderRejectedEmail(riderEmail, riderName string) error {
	subject := "Rider Application Update - ZapShift"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Application Update</h1>
					<p>Hello %s,</p>
					<p>Thank you for your interest in riding with ZapShift. Unfortunately, we are unable to approve your application at this time.</p>
					<p>You are welcome to apply again in the future.</p>
					<p>Best regards,<br>The ZapShift Team</p>
				</div>`+emailFooter,
		riderName)

	return sendEmail([]string{riderEmail}, subject, body)
}

func SendPaymentReceiptEmail(payerEmail, trackingID, transactionID string, amount int64) error {
	subject := "Payment Receipt - ZapShift"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Payment Received</h1>
					<p>Hello,</p>
					<p>We have received your payment of <strong>%.2f</strong> for parcel <strong>%s</strong>.</p>
					<p>Transaction reference: <strong>%s</strong></p>
					<div style="text-align: center; margin: 30px 0;">
						<a href="%s/tracking/%s" style="background-color: #CAEB66; color: #333; padding: 12px 25px; text-decoration: none; border-radius: 5px;">Track Your Parcel</a>
					</div>
					<p>Best regards,<br>The ZapShift Team</p>
				</div>`+emailFooter,
		float64(amount)/100, trackingID, transactionID, baseURL, trackingID)

	return sendEmail([]string{payerEmail}, subject, body)
}
