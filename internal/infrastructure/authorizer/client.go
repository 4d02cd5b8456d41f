package authorizer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/rcarvalho-pb/payment_gateway-go/internal/domain/payment"
	"github.com/rcarvalho-pb/payment_gateway-go/internal/infra/logging"
)

// ErrUnavailable wraps every failure to obtain a verdict: transport errors,
// timeouts, cancellation, non-2xx replies and unparsable bodies.
var ErrUnavailable = errors.New("authorizer unavailable")

type Request struct {
	CardNumber string `json:"card_number"`
	ExpiryDate string `json:"expiry_date"`
	Currency   string `json:"currency"`
	Amount     int64  `json:"amount"`
	CVV        string `json:"cvv"`
}

type Response struct {
	Authorized        bool   `json:"authorized"`
	AuthorizationCode string `json:"authorization_code"`
}

func NewRequest(req payment.Request) Request {
	return Request{
		CardNumber: req.CardNumber,
		ExpiryDate: fmt.Sprintf("%02d/%d", req.ExpiryMonth, req.ExpiryYear),
		Currency:   string(req.Currency),
		Amount:     req.Amount,
		CVV:        req.CVV,
	}
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     logging.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger logging.Logger) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 50,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		Logger: logger,
	}
}

func (c *Client) Authorize(ctx context.Context, req payment.Request) (*payment.AuthorizationVerdict, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err)
	}

	body, err := json.Marshal(NewRequest(req))
	if err != nil {
		return nil, unavailable(fmt.Errorf("encode request: %w", err))
	}

	url := c.BaseURL + "/payments"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, unavailable(fmt.Errorf("build request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		c.Logger.Error("authorizer call failed", map[string]any{
			"url":         url,
			"duration-ms": time.Since(start).Milliseconds(),
			"error":       err.Error(),
		})
		return nil, unavailable(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, unavailable(fmt.Errorf("read response: %w", err))
	}

	fields := map[string]any{
		"url":         url,
		"status-code": resp.StatusCode,
		"duration-ms": time.Since(start).Milliseconds(),
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.Logger.Error("authorizer call failed", fields)
		return nil, unavailable(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var out *Response
	if err := json.Unmarshal(raw, &out); err != nil {
		c.Logger.Error("authorizer reply unparsable", fields)
		return nil, unavailable(fmt.Errorf("decode response: %w", err))
	}

	if out == nil {
		fields["verdict"] = "absent"
		c.Logger.Info("authorizer call", fields)
		return nil, nil
	}

	fields["authorized"] = out.Authorized
	c.Logger.Info("authorizer call", fields)

	return &payment.AuthorizationVerdict{
		Authorized: out.Authorized,
		Code:       out.AuthorizationCode,
	}, nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
