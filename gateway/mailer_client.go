package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"pousada/entity"
)

// MailerClient talks to the transactional mail service's HTTP API.
type MailerClient struct {
	httpClient *resty.Client
}

func NewMailerClient(baseURL string) *MailerClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(time.Second).
		SetHeader("Content-Type", "application/json")

	return &MailerClient{httpClient: client}
}

func (c *MailerClient) Send(ctx context.Context, mail entity.Mail) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(mail).
		Post("/messages")
	if err != nil {
		return fmt.Errorf("could not send mail: %w", err)
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusAccepted {
		return fmt.Errorf("unexpected status code: %v", resp.StatusCode())
	}

	return nil
}
