package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/oyvindfi/bjorkvang/internal/domain"
	"github.com/oyvindfi/bjorkvang/pkg/utils"
)

// Payment states reported by the provider.
const (
	StateCreated    = "CREATED"
	StateAuthorized = "AUTHORIZED"
	StateCaptured   = "CAPTURED"
	StateTerminated = "TERMINATED"
)

type InitiateRequest struct {
	AmountMinor int64  // øre
	PhoneNumber string // optional, pre-fills the app
	ReturnURL   string
	OrderID     string // doubles as the provider idempotency key
	Description string
}

type InitiateResponse struct {
	RedirectURL string
	OrderID     string
}

type StatusResponse struct {
	State       string
	AmountMinor int64
}

// Gateway is the narrow surface the lifecycle layer consumes.
type Gateway interface {
	Initiate(ctx context.Context, req InitiateRequest) (*InitiateResponse, error)
	// Status reports the current payment state. An AUTHORIZED payment is
	// captured before CAPTURED is reported; a failed capture is logged and
	// the pre-capture state returned so the caller can re-check later.
	Status(ctx context.Context, orderID string) (*StatusResponse, error)
	Capture(ctx context.Context, orderID string, amountMinor int64) error
}

// Client implements Gateway against the Vipps ecomm v2 API.
type Client struct {
	cfg     utils.VippsConfig
	baseURL string
	client  *http.Client
	log     *zap.Logger

	// callbackPrefix is advertised to the provider for server callbacks.
	callbackPrefix string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewClient(cfg utils.VippsConfig, publicBaseURL string, log *zap.Logger) *Client {
	return &Client{
		cfg:            cfg,
		baseURL:        cfg.BaseURL,
		client:         &http.Client{Timeout: 15 * time.Second},
		log:            log.With(zap.String("service", "vipps")),
		callbackPrefix: publicBaseURL + "/api/vipps/callback",
	}
}

// Configured reports whether the merchant credentials are present.
func (c *Client) Configured() bool {
	return c.cfg.ClientID != "" && c.cfg.ClientSecret != "" && c.cfg.SubscriptionKey != ""
}

// token fetches (or reuses) the OAuth token. Provider tokens are valid for
// about an hour; refresh a little early.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	if !c.Configured() {
		return "", domain.ConfigurationError{Setting: "VIPPS_CLIENT_ID/VIPPS_CLIENT_SECRET/VIPPS_SUBSCRIPTION_KEY"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/accessToken/get", nil)
	if err != nil {
		return "", domain.PaymentError{Op: "token", Err: err}
	}
	req.Header.Set("client_id", c.cfg.ClientID)
	req.Header.Set("client_secret", c.cfg.ClientSecret)
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.SubscriptionKey)
	req.Header.Set("Merchant-Serial-Number", c.cfg.MerchantSerialNumber)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", domain.PaymentError{Op: "token", Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode != http.StatusOK {
		return "", domain.PaymentError{
			Op:         "token",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("access token: %d %s", resp.StatusCode, string(body)),
		}
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   any    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", domain.PaymentError{Op: "token", Err: err}
	}

	c.accessToken = parsed.AccessToken
	c.tokenExpiry = time.Now().Add(50 * time.Minute)
	return c.accessToken, nil
}

func (c *Client) merchantHeaders(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.SubscriptionKey)
	req.Header.Set("Merchant-Serial-Number", c.cfg.MerchantSerialNumber)
	req.Header.Set("Content-Type", "application/json")
}

func (c *Client) Initiate(ctx context.Context, initReq InitiateRequest) (*InitiateResponse, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	customerInfo := map[string]any{}
	if initReq.PhoneNumber != "" {
		customerInfo["mobileNumber"] = initReq.PhoneNumber
	}

	payload := map[string]any{
		"merchantInfo": map[string]any{
			"merchantSerialNumber": c.cfg.MerchantSerialNumber,
			"callbackPrefix":       c.callbackPrefix,
			"fallBack":             initReq.ReturnURL,
		},
		"customerInfo": customerInfo,
		"transaction": map[string]any{
			"orderId":         initReq.OrderID,
			"amount":          initReq.AmountMinor,
			"transactionText": initReq.Description,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, domain.PaymentError{Op: "initiate", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ecomm/v2/payments", bytes.NewReader(body))
	if err != nil {
		return nil, domain.PaymentError{Op: "initiate", Err: err}
	}
	c.merchantHeaders(req, token)
	// The provider de-duplicates retried initiations on this key
	req.Header.Set("Idempotency-Key", initReq.OrderID)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, domain.PaymentError{Op: "initiate", Err: err}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode != http.StatusOK {
		return nil, domain.PaymentError{
			Op:         "initiate",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("initiate payment: %d %s", resp.StatusCode, string(respBody)),
		}
	}

	var parsed struct {
		URL      string `json:"url"`
		Redirect string `json:"redirectUrl"`
		OrderID  string `json:"orderId"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, domain.PaymentError{Op: "initiate", Err: err}
	}

	redirect := parsed.Redirect
	if redirect == "" {
		redirect = parsed.URL
	}

	c.log.Info("Payment initiated",
		zap.String("order_id", initReq.OrderID),
		zap.Int64("amount_minor", initReq.AmountMinor),
	)

	return &InitiateResponse{RedirectURL: redirect, OrderID: initReq.OrderID}, nil
}

func (c *Client) Status(ctx context.Context, orderID string) (*StatusResponse, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/ecomm/v2/payments/%s/details", c.baseURL, orderID), nil)
	if err != nil {
		return nil, domain.PaymentError{Op: "status", Err: err}
	}
	c.merchantHeaders(req, token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, domain.PaymentError{Op: "status", Err: err}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode != http.StatusOK {
		return nil, domain.PaymentError{
			Op:         "status",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("payment details: %d %s", resp.StatusCode, string(respBody)),
		}
	}

	var parsed struct {
		State  string `json:"state"`
		Amount struct {
			Value int64 `json:"value"`
		} `json:"amount"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, domain.PaymentError{Op: "status", Err: err}
	}

	status := &StatusResponse{State: parsed.State, AmountMinor: parsed.Amount.Value}

	// Complete an authorized payment before reporting it; a failed capture
	// keeps the pre-capture state so the caller can re-check later.
	if status.State == StateAuthorized {
		if err := c.Capture(ctx, orderID, status.AmountMinor); err != nil {
			c.log.Error("Capture after authorization failed",
				zap.Error(err),
				zap.String("order_id", orderID),
			)
		} else {
			status.State = StateCaptured
		}
	}

	return status, nil
}

func (c *Client) Capture(ctx context.Context, orderID string, amountMinor int64) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	payload := map[string]any{
		"merchantInfo": map[string]any{
			"merchantSerialNumber": c.cfg.MerchantSerialNumber,
		},
		"transaction": map[string]any{
			"amount":          amountMinor,
			"transactionText": "Bjørkvang booking",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return domain.PaymentError{Op: "capture", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/ecomm/v2/payments/%s/capture", c.baseURL, orderID), bytes.NewReader(body))
	if err != nil {
		return domain.PaymentError{Op: "capture", Err: err}
	}
	c.merchantHeaders(req, token)
	req.Header.Set("X-Request-Id", orderID+"-capture")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.PaymentError{Op: "capture", Err: err}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode != http.StatusOK {
		return domain.PaymentError{
			Op:         "capture",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("capture payment: %d %s", resp.StatusCode, string(respBody)),
		}
	}

	c.log.Info("Payment captured",
		zap.String("order_id", orderID),
		zap.Int64("amount_minor", amountMinor),
	)
	return nil
}
