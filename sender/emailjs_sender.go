package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultEmailJSURL = "https://api.emailjs.com/api/v1.0/email/send"

// EmailJSSender delivers mail through the EmailJS REST API. Recipient and
// content both live in the template parameters, so messages must carry a
// template ID.
type EmailJSSender struct {
	serviceID  string
	userID     string
	origin     string
	apiURL     string
	httpClient *http.Client
}

func NewEmailJSSender(serviceID, userID, origin string) (*EmailJSSender, error) {
	if serviceID == "" {
		return nil, fmt.Errorf("EMAILJS_SERVICE_ID not set")
	}
	if userID == "" {
		return nil, fmt.Errorf("EMAILJS_USER_ID not set")
	}

	return &EmailJSSender{
		serviceID:  serviceID,
		userID:     userID,
		origin:     origin,
		apiURL:     defaultEmailJSURL,
		httpClient: &http.Client{Timeout: 6 * time.Second},
	}, nil
}

func (e *EmailJSSender) SendEmail(ctx context.Context, msg Message) (SendResult, error) {
	if msg.TemplateID == "" {
		return SendResult{}, fmt.Errorf("no EmailJS template configured for message")
	}

	payload := map[string]any{
		"service_id":      e.serviceID,
		"template_id":     msg.TemplateID,
		"user_id":         e.userID,
		"template_params": msg.TemplateParams,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return SendResult{}, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.apiURL, bytes.NewReader(body))
	if err != nil {
		return SendResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// EmailJS validates the Origin header against the account's allowed list.
	req.Header.Set("Origin", e.origin)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return SendResult{}, fmt.Errorf("emailjs request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return SendResult{}, fmt.Errorf("emailjs error %s: %s", resp.Status, string(respBody))
	}

	return SendResult{
		MessageID: fmt.Sprintf("emailjs-%d", time.Now().UnixNano()),
		SentAt:    time.Now(),
	}, nil
}
