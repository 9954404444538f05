package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/t-hirai03/webmaka/types"
)

// LocalContactClient submits forms to an in-process ContactService
type LocalContactClient struct {
	service *ContactService
}

func NewLocalContactClient(service *ContactService) *LocalContactClient {
	return &LocalContactClient{service: service}
}

func (l *LocalContactClient) SubmitForm(ctx context.Context, clientID string, form *types.ContactFormData) (types.ContactOutcome, error) {
	body, err := json.Marshal(form)
	if err != nil {
		return types.ContactOutcome{}, err
	}
	return l.service.Submit(ctx, clientID, bytes.NewReader(body)), nil
}

// HttpContactClient submits forms to a remote /api/contact endpoint. The client
// address is forwarded in the platform header so the remote limiter keys on
// the browser, not on this server.
type HttpContactClient struct {
	client         *resty.Client
	platformHeader string
}

func NewHttpContactClient(baseURL string, platformHeader string, timeout time.Duration) *HttpContactClient {
	cl := resty.New().SetBaseURL(strings.TrimSuffix(baseURL, "/")).SetTimeout(timeout)
	cl.SetHeader("Content-Type", "application/json")
	cl.SetHeader("Accept", "application/json")
	cl.SetHeader("User-Agent", "webmaka/1.0.0")
	return &HttpContactClient{client: cl, platformHeader: platformHeader}
}

// Client exposes the underlying resty client (mocking)
func (h *HttpContactClient) Client() *resty.Client {
	return h.client
}

// SubmitForm returns the endpoint's status and body. A transport failure or an
// unreadable body is an error.
func (h *HttpContactClient) SubmitForm(ctx context.Context, clientID string, form *types.ContactFormData) (types.ContactOutcome, error) {
	var body types.ContactResponse
	req := h.client.R().SetContext(ctx).SetBody(form)
	if h.platformHeader != "" && clientID != "" {
		req.SetHeader(h.platformHeader, clientID)
	}
	response, err := req.Post("/api/contact")
	if err != nil {
		return types.ContactOutcome{}, err
	}
	if uErr := json.Unmarshal(response.Body(), &body); uErr != nil {
		return types.ContactOutcome{}, fmt.Errorf("%w: unexpected response (status %d)", types.ErrInvalidRequest, response.StatusCode())
	}
	return types.ContactOutcome{Status: response.StatusCode(), Response: body}, nil
}
