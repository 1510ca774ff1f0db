// Package nominatim is a reverse geocoding client for the OpenStreetMap Nominatim API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/postcode-finder/internal/domain"
	"github.com/postcode-finder/internal/domain/repository"
)

const DefaultBaseURL = "https://nominatim.openstreetmap.org"

type client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	email       string
	minInterval time.Duration
	logger      *zap.Logger

	mu          sync.Mutex
	lastRequest time.Time
}

// Option configures the client
type Option func(*client)

func WithBaseURL(baseURL string) Option {
	return func(c *client) {
		if strings.TrimSpace(baseURL) != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *client) {
		c.userAgent = userAgent
	}
}

// WithEmail identifies heavy users to the Nominatim operators.
func WithEmail(email string) Option {
	return func(c *client) {
		c.email = email
	}
}

// WithMinInterval spaces requests; the public instance allows one per second.
func WithMinInterval(interval time.Duration) Option {
	return func(c *client) {
		c.minInterval = interval
	}
}

// NewClient - create Nominatim reverse geocoder
func NewClient(logger *zap.Logger, opts ...Option) repository.ReverseGeocoder {
	c := &client{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		baseURL:     DefaultBaseURL,
		userAgent:   "postcode-finder/1.0",
		minInterval: time.Second,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type reverseResponse struct {
	Error   string `json:"error"`
	Address struct {
		Postcode string `json:"postcode"`
		Suburb   string `json:"suburb"`
		City     string `json:"city"`
		Town     string `json:"town"`
		State    string `json:"state"`
	} `json:"address"`
}

// Reverse looks up the address at lat/lon. The postcode may be empty when
// Nominatim has none for the location.
func (c *client) Reverse(ctx context.Context, lat, lon float64) (*domain.Address, error) {
	if err := c.waitRateLimit(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("zoom", "18")
	params.Set("addressdetails", "1")
	if c.email != "" {
		params.Set("email", c.email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug("Calling Nominatim reverse",
		zap.Float64("lat", lat),
		zap.Float64("lon", lon))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to execute request", zap.Error(err))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Error("Nominatim returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, fmt.Errorf("nominatim error: status %d", resp.StatusCode)
	}

	var decoded reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if decoded.Error != "" {
		return nil, fmt.Errorf("nominatim: %s", decoded.Error)
	}

	city := decoded.Address.City
	if city == "" {
		city = decoded.Address.Town
	}
	return &domain.Address{
		Postcode: strings.TrimSpace(decoded.Address.Postcode),
		Suburb:   decoded.Address.Suburb,
		City:     city,
		State:    decoded.Address.State,
	}, nil
}

func (c *client) waitRateLimit(ctx context.Context) error {
	if c.minInterval <= 0 {
		return nil
	}
	c.mu.Lock()
	now := time.Now()
	next := c.lastRequest.Add(c.minInterval)
	if !next.After(now) {
		c.lastRequest = now
		c.mu.Unlock()
		return nil
	}
	c.lastRequest = next
	c.mu.Unlock()

	timer := time.NewTimer(time.Until(next))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
