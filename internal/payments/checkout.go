package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Lazermagma/ZoraFramerSupabase/internal/config"
)

const defaultAPIBase = "https://api.stripe.com"

// CheckoutSession is the slice of the provider's session object the API
// consumes: the hosted URL on creation, and the paid/metadata state on
// retrieval.
type CheckoutSession struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	PaymentStatus string            `json:"payment_status"`
	Subscription  string            `json:"subscription"`
	Customer      string            `json:"customer"`
	Metadata      map[string]string `json:"metadata"`
}

// Paid reports whether the session's payment completed.
func (s *CheckoutSession) Paid() bool {
	return s != nil && s.PaymentStatus == "paid"
}

// CheckoutParams describes a hosted subscription checkout to create.
type CheckoutParams struct {
	PriceID       string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// IClient defines the operations delegated to the payments provider. Session
// mechanics (card collection, SCA, webhooks) are entirely the provider's; the
// API only creates sessions and reads back their final state.
type IClient interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
}

// client implements IClient against the provider's form-encoded REST API.
type client struct {
	apiBase    string
	secretKey  string
	httpClient *http.Client
}

// NewClient creates a payments provider client.
func NewClient(cfg *config.Config) IClient {
	return &client{
		apiBase:    defaultAPIBase,
		secretKey:  cfg.StripeSecretKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// NewClientWithBase creates a client pointed at a non-default API base. Used
// by tests.
func NewClientWithBase(cfg *config.Config, apiBase string) IClient {
	c := NewClient(cfg).(*client)
	c.apiBase = apiBase
	return c
}

type providerError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *client) do(ctx context.Context, method, path string, form url.Values, out interface{}) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiBase+path, body)
	if err != nil {
		return fmt.Errorf("failed to create payments request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("Error calling payments provider %s %s: %v", method, path, err)
		return fmt.Errorf("failed to contact payments provider")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read payments response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var pErr providerError
		_ = json.Unmarshal(respBody, &pErr)
		msg := pErr.Error.Message
		if msg == "" {
			msg = "payments provider request failed"
		}
		return fmt.Errorf("payments provider returned status %d: %s", resp.StatusCode, msg)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse payments response: %w", err)
		}
	}
	return nil
}

// CreateCheckoutSession creates a hosted subscription checkout session.
func (c *client) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][price]", params.PriceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("customer_email", params.CustomerEmail)
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	for k, v := range params.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var session CheckoutSession
	if err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", form, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetCheckoutSession retrieves a session's current state.
func (c *client) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	var session CheckoutSession
	path := "/v1/checkout/sessions/" + url.PathEscape(sessionID)
	if err := c.do(ctx, http.MethodGet, path, nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}
