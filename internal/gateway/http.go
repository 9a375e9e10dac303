package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"carshare/internal/domain"
)

// HTTPGateway talks to a Stripe-compatible payment intents API.
type HTTPGateway struct {
	baseURL   string
	secretKey string
	client    *http.Client
	logger    *logrus.Logger
}

// NewHTTPGateway creates a new HTTPGateway.
func NewHTTPGateway(baseURL, secretKey string, timeout time.Duration, logger *logrus.Logger) *HTTPGateway {
	return &HTTPGateway{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

// IsConfigured reports whether a secret key is set.
func (g *HTTPGateway) IsConfigured() bool {
	return g.secretKey != "" && g.baseURL != ""
}

type intentResponse struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"client_secret"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Status       string            `json:"status"`
	Metadata     map[string]string `json:"metadata"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateAuthorization creates a payment intent for amount.
func (g *HTTPGateway) CreateAuthorization(ctx context.Context, amount int64, currency string, metadata map[string]string) (*domain.PaymentIntent, error) {
	if !g.IsConfigured() {
		return nil, ErrNotConfigured
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", currency)
	form.Set("automatic_payment_methods[enabled]", "true")
	for k, v := range metadata {
		form.Set("metadata["+k+"]", v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return g.do(req)
}

// GetAuthorization retrieves a payment intent by id.
func (g *HTTPGateway) GetAuthorization(ctx context.Context, id string) (*domain.PaymentIntent, error) {
	if !g.IsConfigured() {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/v1/payment_intents/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	return g.do(req)
}

func (g *HTTPGateway) do(req *http.Request) (*domain.PaymentIntent, error) {
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.WithError(err).WithField("path", req.URL.Path).Error("Failed to call payment gateway")
		return nil, fmt.Errorf("failed to call payment gateway: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	g.logger.WithFields(logrus.Fields{
		"method":      req.Method,
		"path":        req.URL.Path,
		"status_code": resp.StatusCode,
	}).Debug("Payment gateway response received")

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrIntentNotFound
	}
	if resp.StatusCode != http.StatusOK {
		var gwErr errorResponse
		if json.Unmarshal(body, &gwErr) == nil && gwErr.Error.Message != "" {
			return nil, fmt.Errorf("payment gateway returned status %d: %s", resp.StatusCode, gwErr.Error.Message)
		}
		return nil, fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	var ir intentResponse
	if err := json.Unmarshal(body, &ir); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if ir.ID == "" {
		return nil, fmt.Errorf("payment gateway response has no intent id")
	}

	return &domain.PaymentIntent{
		ID:           ir.ID,
		ClientSecret: ir.ClientSecret,
		Amount:       ir.Amount,
		Currency:     ir.Currency,
		Status:       mapStatus(ir.Status),
		Metadata:     ir.Metadata,
	}, nil
}

// mapStatus folds the gateway's intent lifecycle into created, succeeded or failed.
func mapStatus(status string) domain.PaymentStatus {
	switch status {
	case "succeeded":
		return domain.PaymentStatusSucceeded
	case "canceled":
		return domain.PaymentStatusFailed
	default:
		return domain.PaymentStatusCreated
	}
}
