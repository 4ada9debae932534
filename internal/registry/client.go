package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"freshops/internal"
	"freshops/internal/config"
)

// Client pulls the customer registry and product catalog from the hosted
// backoffice API using its scroll-paged endpoints.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

type productScrollPayload struct {
	Products []map[string]any `json:"products"`
	ScrollID *string          `json:"scrollId"`
}

type customerScrollPayload struct {
	Customers []map[string]any `json:"customers"`
	ScrollID  *string          `json:"scrollId"`
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.BackofficeTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.BackofficeRateRPS),
	}
}

func (c *Client) GetProductsAll(ctx context.Context) ([]internal.ProductRecord, error) {
	all := make([]internal.ProductRecord, 0)
	err := c.scroll(ctx, "product/scroll", func(data json.RawMessage) (*string, error) {
		var payload productScrollPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		for _, raw := range payload.Products {
			product, err := toProductRecord(raw)
			if err != nil {
				continue
			}
			all = append(all, product)
		}
		if len(payload.Products) == 0 {
			return nil, nil
		}
		return payload.ScrollID, nil
	})
	return all, err
}

func (c *Client) GetCustomersAll(ctx context.Context) ([]internal.CustomerRecord, error) {
	all := make([]internal.CustomerRecord, 0)
	err := c.scroll(ctx, "customer/scroll", func(data json.RawMessage) (*string, error) {
		var payload customerScrollPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		for _, raw := range payload.Customers {
			customer, err := toCustomerRecord(raw)
			if err != nil {
				continue
			}
			all = append(all, customer)
		}
		if len(payload.Customers) == 0 {
			return nil, nil
		}
		return payload.ScrollID, nil
	})
	return all, err
}

func (c *Client) scroll(ctx context.Context, endpoint string, page func(json.RawMessage) (*string, error)) error {
	seen := map[string]struct{}{}
	var scrollID string

	for {
		query := map[string]string{}
		if scrollID != "" {
			query["scrollId"] = scrollID
		}

		body, err := c.fetchJSON(ctx, endpoint, query)
		if err != nil {
			return err
		}

		next, err := page(body)
		if err != nil {
			return err
		}
		if next == nil || *next == "" {
			return nil
		}
		if _, ok := seen[*next]; ok {
			return nil
		}
		seen[*next] = struct{}{}
		scrollID = *next
	}
}

func (c *Client) fetchJSON(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	if strings.TrimSpace(c.cfg.BackofficeAPIToken) == "" {
		return nil, errors.New("missing BACKOFFICE_API_TOKEN")
	}

	baseURL := strings.TrimRight(c.cfg.BackofficeAPIBaseURL, "/") + "/"
	u, err := url.Parse(baseURL + endpoint)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	for k, v := range params {
		if strings.TrimSpace(v) != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	var lastErr error
	for attempt := 1; attempt <= 5; attempt++ {
		c.limiter.WaitTurn()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.BackofficeAPIToken)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < 5 {
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				time.Sleep(backoff)
				lastErr = fmt.Errorf("backoffice status %d", resp.StatusCode)
				continue
			}
			return nil, fmt.Errorf("backoffice api error: status=%d body=%s", resp.StatusCode, string(body))
		}

		var apiResp apiResponse
		if err := json.Unmarshal(body, &apiResp); err != nil {
			return nil, err
		}
		if !apiResp.Success {
			return nil, fmt.Errorf("backoffice api unsuccessful: %s", string(apiResp.Errors))
		}
		return apiResp.Data, nil
	}

	if lastErr == nil {
		lastErr = errors.New("backoffice request failed")
	}
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func toProductRecord(raw map[string]any) (internal.ProductRecord, error) {
	code := trimmedString(raw["code"])
	name := trimmedString(raw["name"])
	if code == "" || name == "" {
		return internal.ProductRecord{}, errors.New("missing code or name")
	}

	return internal.ProductRecord{
		Code:        code,
		Name:        name,
		BaseUOM:     strings.ToLower(trimmedString(raw["baseUom"])),
		AllowedUOMs: toStringSlice(raw["allowedUoms"]),
	}, nil
}

func toCustomerRecord(raw map[string]any) (internal.CustomerRecord, error) {
	name := trimmedString(raw["companyName"])
	if name == "" {
		return internal.CustomerRecord{}, errors.New("missing companyName")
	}
	id, ok := toInt64(raw["id"])
	if !ok {
		return internal.CustomerRecord{}, errors.New("missing id")
	}

	return internal.CustomerRecord{
		ID:              id,
		CompanyName:     name,
		Branch:          trimmedString(raw["branch"]),
		ContactPerson:   trimmedString(raw["contactPerson"]),
		ContactNumber:   trimmedString(raw["contactNumber"]),
		DeliveryAddress: trimmedString(raw["deliveryAddress"]),
	}, nil
}

func toInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int64:
		return t, true
	case float64:
		return int64(t), true
	case json.Number:
		i, err := t.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}

func trimmedString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func toStringSlice(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		s, ok := item.(string)
		if ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.ToLower(strings.TrimSpace(s)))
		}
	}
	return out
}
