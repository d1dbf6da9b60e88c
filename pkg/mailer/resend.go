package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/replydesk/responder/environments"
	"github.com/replydesk/responder/pkg/logger"
)

// Client delivers replies through the Resend email API.
type Client struct {
	httpClient  *resty.Client
	defaultFrom string
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
}

type sendResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func NewClient(cfg environments.MailerConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(3).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetAuthToken(cfg.APIKey)

	return &Client{
		httpClient:  client,
		defaultFrom: cfg.From,
	}
}

// Send delivers one email and returns the provider message ID. A rejected or
// undeliverable message comes back as an error distinguishable from success;
// the caller decides whether that consumes the job.
func (c *Client) Send(ctx context.Context, to, subject, html, text, from string) (string, error) {
	if from == "" {
		from = c.defaultFrom
	}
	if from == "" {
		return "", fmt.Errorf("no sender address configured")
	}

	payload := sendRequest{
		From:    from,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
		Text:    text,
	}

	var sendResp sendResponse
	var errResp errorResponse

	startTime := time.Now()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&sendResp).
		SetError(&errResp).
		Post("/emails")

	duration := time.Since(startTime)

	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}

	logger.Infof("Resend request completed in %v (status: %d)", duration, resp.StatusCode())

	if resp.IsError() {
		return "", fmt.Errorf("send failed with status %d: %s %s", resp.StatusCode(), errResp.Name, errResp.Message)
	}

	return sendResp.ID, nil
}
