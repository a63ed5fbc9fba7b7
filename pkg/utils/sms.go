package utils

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
)

var (
	atUsername = os.Getenv("AT_USERNAME")
	atAPIKey   = os.Getenv("AT_API_KEY")
)

func sendSMS(message string, recipients []string) error {
	if atUsername == "" {
		return fmt.Errorf("africa's talking username not set")
	}

	if atAPIKey == "" {
		return fmt.Errorf("africa's talking API key not set")
	}

	endpoint := "https://api.africastalking.com/version1/messaging"

	data := url.Values{}
	data.Set("username", atUsername)
	data.Set("to", strings.Join(recipients, ","))
	data.Set("message", message)

	req, err := http.NewRequest("POST", endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create SMS request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apiKey", atAPIKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("SMS gateway returned %d: %s", resp.StatusCode, string(body))
	}

	log.Printf("Successfully sent SMS to recipients: %v", recipients)
	return nil
}

// SendDeliveryNotificationSMS notifies a receiver that their parcel arrived
func SendDeliveryNotificationSMS(phone, trackingID string) error {
	if phone == "" {
		return nil
	}

	message := fmt.Sprintf("ZapShift: your parcel %s has been delivered. Thank you for using ZapShift!", trackingID)
	return sendSMS(message, []string{phone})
}

// SendOutForDeliverySMS notifies a receiver that a rider picked up the parcel
func SendOutForDeliverySMS(phone, trackingID string) error {
	if phone == "" {
		return nil
	}

	message := fmt.Sprintf("ZapShift: your parcel %s is out for delivery.", trackingID)
	return sendSMS(message, []string{phone})
}
