package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/t-hirai03/webmaka/types"
)

const ProviderResend = "resend"

type resendResponse struct {
	ID string `json:"id"`
}

type resendError struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

// ResendSender sends emails through the Resend HTTPS API
type ResendSender struct {
	client *resty.Client
}

func NewResendSender(baseURL string, apiKey string, timeout time.Duration) *ResendSender {
	cl := resty.New().SetBaseURL(strings.TrimSuffix(baseURL, "/")).SetTimeout(timeout)
	cl.SetHeader("Content-Type", "application/json")
	cl.SetHeader("Accept", "application/json")
	cl.SetHeader("User-Agent", "webmaka/1.0.0")
	cl.SetAuthToken(apiKey)
	return &ResendSender{client: cl}
}

// Client exposes the underlying resty client (mocking)
func (s *ResendSender) Client() *resty.Client {
	return s.client
}

func (s *ResendSender) Send(ctx context.Context, msg *types.OutgoingEmail) (string, error) {
	var result resendResponse
	var apiErr resendError
	response, err := s.client.R().SetContext(ctx).SetBody(msg).SetResult(&result).SetError(&apiErr).Post("/emails")
	if err != nil {
		return "", fmt.Errorf("%w: %s", types.ErrSendFailed, err.Error())
	}
	if response.IsError() {
		if apiErr.Message != "" {
			return "", fmt.Errorf("%w: %s (%d %s)", types.ErrSendFailed, apiErr.Message, response.StatusCode(), apiErr.Name)
		}
		return "", fmt.Errorf("%w: status %d", types.ErrSendFailed, response.StatusCode())
	}
	return result.ID, nil
}
