package discom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"chainfly/internal/domain"
	"chainfly/internal/port"
)

const maxResponseBytes = 1 << 20

// Client implements port.DiscomTariffClient against a discom's tariff endpoint.
type Client struct {
	http *http.Client
	now  func() time.Time
}

// NewClient creates a discom tariff client with the given request timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{http: &http.Client{Timeout: timeout}, now: time.Now}
}

var _ port.DiscomTariffClient = (*Client)(nil)

// tariffResponse is the tariff-of-record document a discom returns.
type tariffResponse struct {
	BaseRate  float64          `json:"base_rate"`
	ValidFrom *time.Time       `json:"valid_from"`
	ValidTo   *time.Time       `json:"valid_to"`
	Slabs     []domain.Slab    `json:"slabs"`
	TOURates  []domain.TOURate `json:"tou_rates"`
	Reference string           `json:"order_reference"`
}

// FetchTariff asks the discom for the tariff applicable to the request's
// category and customer type on the request date.
func (c *Client) FetchTariff(ctx context.Context, d *domain.Discom, req domain.TariffRequest) (*domain.TariffStructure, error) {
	endpoint, err := tariffURL(d.APIEndpoint, req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if d.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+d.APIKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling discom %s: %w", d.Name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading discom response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discom %s API error (status %d): %s", d.Name, resp.StatusCode, truncate(string(body), 200))
	}

	var parsed tariffResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshaling discom response: %w", err)
	}

	validFrom := req.ContractDate
	if parsed.ValidFrom != nil {
		validFrom = *parsed.ValidFrom
	}
	return &domain.TariffStructure{
		ID:           uuid.New(),
		DiscomID:     d.ID,
		Category:     req.Category,
		CustomerType: req.CustomerType,
		BaseRate:     parsed.BaseRate,
		ValidFrom:    validFrom,
		ValidTo:      parsed.ValidTo,
		Slabs:        parsed.Slabs,
		TOURates:     parsed.TOURates,
		Source:       domain.TariffSourceDiscomAPI,
		Reference:    parsed.Reference,
		CreatedAt:    c.now(),
	}, nil
}

func tariffURL(base string, req domain.TariffRequest) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/") + "/tariffs")
	if err != nil {
		return "", fmt.Errorf("invalid discom endpoint %q: %w", base, err)
	}
	q := u.Query()
	q.Set("category", req.Category)
	q.Set("customer_type", req.CustomerType)
	q.Set("date", req.ContractDate.Format("2006-01-02"))
	if req.Consumption > 0 {
		q.Set("consumption_kwh", fmt.Sprintf("%.2f", req.Consumption))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
