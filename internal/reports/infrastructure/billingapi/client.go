package billingapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"billing-reports/internal/reports/application"
)

const pageSize = 200

// Client is a minimal REST client for the upstream billing API. It
// returns raw payload maps; all shape knowledge lives in the normalizer.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient constructs a billing API client.
func NewClient(baseURL, token string) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("billingapi: empty base url")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type billsPage struct {
	Data    []map[string]any `json:"data"`
	HasNext bool             `json:"hasNext"`
}

// FetchBills retrieves every bill record matching the query, walking the
// paged list endpoint until exhausted.
func (c *Client) FetchBills(ctx context.Context, query application.BillQuery) ([]map[string]any, error) {
	params := url.Values{}
	params.Set("report", query.Kind)
	if !query.From.IsZero() {
		params.Set("from", query.From.Full())
	}
	if !query.To.IsZero() {
		params.Set("to", query.To.Full())
	}
	if query.Service != "" {
		params.Set("service", query.Service)
	}
	params.Set("pageSize", strconv.Itoa(pageSize))

	var records []map[string]any
	for page := 0; ; page++ {
		params.Set("page", strconv.Itoa(page))
		var resp billsPage
		if err := c.doJSON(ctx, http.MethodGet, "/api/bills?"+params.Encode(), &resp); err != nil {
			if errors.Is(err, errNotFound) {
				return nil, nil
			}
			return nil, err
		}
		records = append(records, resp.Data...)
		if !resp.HasNext {
			break
		}
	}
	return records, nil
}

// FetchAccounts retrieves account/beneficiary payloads for a cost center,
// or all accounts when costCenter is empty.
func (c *Client) FetchAccounts(ctx context.Context, costCenter string) ([]map[string]any, error) {
	params := url.Values{}
	if costCenter != "" {
		params.Set("cost_center", costCenter)
	}
	params.Set("pageSize", strconv.Itoa(pageSize))

	var accounts []map[string]any
	for page := 0; ; page++ {
		params.Set("page", strconv.Itoa(page))
		var resp billsPage
		if err := c.doJSON(ctx, http.MethodGet, "/api/accounts?"+params.Encode(), &resp); err != nil {
			if errors.Is(err, errNotFound) {
				return nil, nil
			}
			return nil, err
		}
		accounts = append(accounts, resp.Data...)
		if !resp.HasNext {
			break
		}
	}
	return accounts, nil
}

var errNotFound = errors.New("billingapi: not found")

func (c *Client) doJSON(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("billingapi: http %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
