package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"
	"github.com/speedwaysuk/speedwaysukireland-sub005/pkg/logger"
)

// HTTPProvider talks to the processor's REST API. Amounts cross the wire in
// minor units; intents are created confirmed so the hold is placed in one
// round trip.
type HTTPProvider struct {
	baseURL    string
	apiKey     string
	currency   string
	httpClient *http.Client
	log        logger.Logger
}

func NewHTTPProvider(baseURL, apiKey, currency string, timeout time.Duration, log logger.Logger) *HTTPProvider {
	return &HTTPProvider{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		currency: currency,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

type intentResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount int64  `json:"amount"`
}

type customerResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *HTTPProvider) CreateCustomer(ctx context.Context, email string) (string, error) {
	form := url.Values{}
	form.Set("email", email)

	var resp customerResponse
	if err := p.post(ctx, "/customers", form, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (p *HTTPProvider) AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error {
	form := url.Values{}
	form.Set("customer", customerID)

	path := fmt.Sprintf("/payment_methods/%s/attach", paymentMethodID)
	return p.post(ctx, path, form, &struct{}{})
}

func (p *HTTPProvider) CreateAuthorization(ctx context.Context, customerID, paymentMethodID string, amount float64, metadata map[string]string) (*domain.ProviderIntent, error) {
	form := p.intentForm(customerID, paymentMethodID, amount, metadata)
	form.Set("capture_method", "manual")

	var resp intentResponse
	if err := p.post(ctx, "/payment_intents", form, &resp); err != nil {
		return nil, err
	}
	return toProviderIntent(&resp), nil
}

func (p *HTTPProvider) CaptureAuthorization(ctx context.Context, intentID string, amount float64) (*domain.ProviderIntent, error) {
	form := url.Values{}
	form.Set("amount_to_capture", strconv.FormatInt(toMinorUnits(amount), 10))

	var resp intentResponse
	path := fmt.Sprintf("/payment_intents/%s/capture", intentID)
	if err := p.post(ctx, path, form, &resp); err != nil {
		return nil, err
	}
	return toProviderIntent(&resp), nil
}

func (p *HTTPProvider) CancelAuthorization(ctx context.Context, intentID string) error {
	path := fmt.Sprintf("/payment_intents/%s/cancel", intentID)
	return p.post(ctx, path, url.Values{}, &struct{}{})
}

func (p *HTTPProvider) CreateCharge(ctx context.Context, customerID, paymentMethodID string, amount float64, metadata map[string]string) (*domain.ProviderIntent, error) {
	form := p.intentForm(customerID, paymentMethodID, amount, metadata)

	var resp intentResponse
	if err := p.post(ctx, "/payment_intents", form, &resp); err != nil {
		return nil, err
	}
	return toProviderIntent(&resp), nil
}

func (p *HTTPProvider) intentForm(customerID, paymentMethodID string, amount float64, metadata map[string]string) url.Values {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(toMinorUnits(amount), 10))
	form.Set("currency", p.currency)
	form.Set("customer", customerID)
	form.Set("payment_method", paymentMethodID)
	form.Set("confirm", "true")
	for key, value := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
	}
	return form
}

func (p *HTTPProvider) post(ctx context.Context, path string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("payment provider request failed: %w", err)
	}
	defer resp.Body.Close()

	p.log.Debug("Provider call", "path", path, "status", resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var errResp errorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
			return fmt.Errorf("payment provider error (%d): %s", resp.StatusCode, errResp.Error.Message)
		}
		return fmt.Errorf("payment provider error (%d)", resp.StatusCode)
	}

	return json.Unmarshal(body, out)
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func toProviderIntent(resp *intentResponse) *domain.ProviderIntent {
	return &domain.ProviderIntent{
		ID:     resp.ID,
		Status: resp.Status,
		Amount: float64(resp.Amount) / 100,
	}
}
