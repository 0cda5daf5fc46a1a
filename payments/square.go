package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

const defaultBaseURL = "https://connect.squareup.com"

var ErrMissingAccessToken = errors.New("missing square access token")

// Order is the processor-side order created alongside a payment link. The
// ReferenceID is the caller-supplied correlation token; the processor's own
// order id is not known until events arrive.
type Order struct {
	LocationID  string
	ReferenceID string
	LineItems   []OrderLineItem
}

type OrderLineItem struct {
	Name        string
	Quantity    string
	AmountCents int64
}

// RetrievedOrder is the subset of the processor's order object needed to map
// its order id back to the original reference.
type RetrievedOrder struct {
	ID          string `json:"id"`
	ReferenceID string `json:"reference_id"`
}

// Cents converts a dollar amount to the integer cents the processor expects.
func Cents(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
}

func NewClient(accessToken, baseURL string) (*Client, error) {
	if accessToken == "" {
		return nil, ErrMissingAccessToken
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     baseURL,
		accessToken: accessToken,
	}, nil
}

type moneyPayload struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type lineItemPayload struct {
	Name           string       `json:"name"`
	Quantity       string       `json:"quantity"`
	BasePriceMoney moneyPayload `json:"base_price_money"`
}

type orderPayload struct {
	LocationID  string            `json:"location_id"`
	ReferenceID string            `json:"reference_id"`
	LineItems   []lineItemPayload `json:"line_items"`
}

// GeneratePaymentLink creates a hosted checkout link for the order. The
// idempotency key dedupes retried calls on the processor side.
func (c *Client) GeneratePaymentLink(ctx context.Context, idempotencyKey string, order Order) (string, error) {
	items := make([]lineItemPayload, 0, len(order.LineItems))
	for _, li := range order.LineItems {
		qty := li.Quantity
		if qty == "" {
			qty = "1"
		}
		items = append(items, lineItemPayload{
			Name:     li.Name,
			Quantity: qty,
			BasePriceMoney: moneyPayload{
				Amount:   li.AmountCents,
				Currency: "USD",
			},
		})
	}

	reqBody := struct {
		IdempotencyKey string       `json:"idempotency_key"`
		Order          orderPayload `json:"order"`
	}{
		IdempotencyKey: idempotencyKey,
		Order: orderPayload{
			LocationID:  order.LocationID,
			ReferenceID: order.ReferenceID,
			LineItems:   items,
		},
	}

	var respBody struct {
		PaymentLink struct {
			URL string `json:"url"`
		} `json:"payment_link"`
	}
	if err := c.post(ctx, "/v2/online-checkout/payment-links", reqBody, &respBody); err != nil {
		return "", err
	}
	return respBody.PaymentLink.URL, nil
}

// BatchRetrieveOrders fetches processor orders by their own ids so the caller
// can read back the reference_id set at creation.
func (c *Client) BatchRetrieveOrders(ctx context.Context, orderIDs []string) ([]RetrievedOrder, error) {
	reqBody := struct {
		OrderIDs []string `json:"order_ids"`
	}{OrderIDs: orderIDs}

	var respBody struct {
		Orders []RetrievedOrder `json:"orders"`
	}
	if err := c.post(ctx, "/v2/orders/batch-retrieve", reqBody, &respBody); err != nil {
		return nil, err
	}
	return respBody.Orders, nil
}

func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("square %s: status %d: %s", path, resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, out)
}
