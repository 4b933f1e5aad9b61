// Package gse provides a client for the GSE market data API
package gse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/accraquant/sika/internal/common"
	"github.com/accraquant/sika/internal/interfaces"
	"github.com/accraquant/sika/internal/models"
)

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

const (
	DefaultBaseURL   = "https://dev.kwayisi.org/apis/gse"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Client implements the MarketFeedClient interface
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new GSE feed client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("GSE API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", reqURL).Msg("GSE API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// liveResponse is the wire format of the live board feed.
type liveResponse struct {
	Name   string      `json:"name"`
	Price  flexFloat64 `json:"price"`
	Change flexFloat64 `json:"change"`
	Volume int64       `json:"volume"`
}

func (r *liveResponse) toModel() *models.LiveQuote {
	return &models.LiveQuote{
		Ticker: models.NormalizeTicker(r.Name),
		Price:  float64(r.Price),
		Change: float64(r.Change),
		Volume: r.Volume,
	}
}

// equityResponse is the wire format of a full equity listing record.
type equityResponse struct {
	Name    string      `json:"name"`
	Price   flexFloat64 `json:"price"`
	Capital flexFloat64 `json:"capital"`
	Shares  int64       `json:"shares"`
	EPS     flexFloat64 `json:"eps"`
	DPS     flexFloat64 `json:"dps"`
	Company struct {
		Name     string `json:"name"`
		Sector   string `json:"sector"`
		Industry string `json:"industry"`
	} `json:"company"`
}

func (r *equityResponse) toModel() *models.EquityDetail {
	return &models.EquityDetail{
		Ticker:            models.NormalizeTicker(r.Name),
		Name:              r.Company.Name,
		Sector:            r.Company.Sector,
		Industry:          r.Company.Industry,
		Price:             float64(r.Price),
		MarketCap:         float64(r.Capital),
		SharesOutstanding: r.Shares,
		EPS:               float64(r.EPS),
		DPS:               float64(r.DPS),
	}
}

// GetLiveQuotes retrieves the current live board for all listed equities
func (c *Client) GetLiveQuotes(ctx context.Context) ([]*models.LiveQuote, error) {
	var raw []liveResponse
	if err := c.get(ctx, "/live", &raw); err != nil {
		return nil, err
	}

	quotes := make([]*models.LiveQuote, 0, len(raw))
	for i := range raw {
		if raw[i].Name == "" {
			continue
		}
		quotes = append(quotes, raw[i].toModel())
	}
	return quotes, nil
}

// GetLiveQuote retrieves the live quote for a single ticker
func (c *Client) GetLiveQuote(ctx context.Context, ticker string) (*models.LiveQuote, error) {
	ticker = models.NormalizeTicker(ticker)

	var raw liveResponse
	if err := c.get(ctx, "/live/"+ticker, &raw); err != nil {
		return nil, err
	}
	if raw.Name == "" {
		return nil, fmt.Errorf("no live quote for %s", ticker)
	}
	return raw.toModel(), nil
}

// ListEquities retrieves the full listing records for all equities
func (c *Client) ListEquities(ctx context.Context) ([]*models.EquityDetail, error) {
	var raw []equityResponse
	if err := c.get(ctx, "/equities", &raw); err != nil {
		return nil, err
	}

	equities := make([]*models.EquityDetail, 0, len(raw))
	for i := range raw {
		if raw[i].Name == "" {
			continue
		}
		equities = append(equities, raw[i].toModel())
	}
	return equities, nil
}

// GetEquity retrieves the full listing record for one equity
func (c *Client) GetEquity(ctx context.Context, ticker string) (*models.EquityDetail, error) {
	ticker = models.NormalizeTicker(ticker)

	var raw equityResponse
	if err := c.get(ctx, "/equities/"+ticker, &raw); err != nil {
		return nil, err
	}
	if raw.Name == "" {
		return nil, fmt.Errorf("no equity record for %s", ticker)
	}
	return raw.toModel(), nil
}

// Compile-time check
var _ interfaces.MarketFeedClient = (*Client)(nil)
