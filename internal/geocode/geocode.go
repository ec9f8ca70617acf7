// Package geocode turns shared Telegram locations into a country and city
// through a Nominatim compatible reverse geocoding service.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/m3rciful/datebot/core/logger"
	"github.com/m3rciful/datebot/core/telegram/netutil"
	"github.com/m3rciful/datebot/internal/forms"
)

const component = "service.geo"

// ErrService reports that the geocoding service could not answer.
var ErrService = errors.New("geocode: service unavailable")

// Config configures Client.
type Config struct {
	BaseURL   string        `yaml:"base_url" envconfig:"GEOCODER_BASE_URL"`
	UserAgent string        `yaml:"user_agent" envconfig:"GEOCODER_USER_AGENT"`
	Language  string        `yaml:"language" envconfig:"GEOCODER_LANGUAGE"`
	Timeout   time.Duration `yaml:"timeout" envconfig:"GEOCODER_TIMEOUT"`
}

// Client calls the /reverse endpoint.
type Client struct {
	base  *url.URL
	agent string
	lang  string
	http  *http.Client
}

// New builds a Client. httpClient may be nil.
func New(cfg Config, httpClient *http.Client) (*Client, error) {
	raw := cfg.BaseURL
	if raw == "" {
		raw = "https://nominatim.openstreetmap.org"
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("geocode: base url: %w", err)
	}
	if httpClient == nil {
		httpClient = netutil.NewClient(netutil.ClientOptions{Timeout: cfg.Timeout, Retries: 1, Backoff: 500 * time.Millisecond})
	}
	agent := cfg.UserAgent
	if agent == "" {
		agent = "datebot"
	}
	return &Client{base: base, agent: agent, lang: cfg.Language, http: httpClient}, nil
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// Reverse returns the display address of the point. Transport failures,
// non-2xx answers and service errors all wrap ErrService.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	u := c.base.JoinPath("reverse")
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', 6, 64))
	q.Set("zoom", "10")
	if c.lang != "" {
		q.Set("accept-language", c.lang)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("geocode: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.agent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: status %s", ErrService, resp.Status)
	}
	var body reverseResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: decode: %w", ErrService, err)
	}
	if body.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrService, body.Error)
	}
	logger.Debug(ctx, component, "geo.reverse",
		slog.String("status", "ok"),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return body.DisplayName, nil
}

// Locate resolves the point to a country and city.
func (c *Client) Locate(ctx context.Context, lat, lon float64) (string, string, error) {
	addr, err := c.Reverse(ctx, lat, lon)
	if err != nil {
		return "", "", err
	}
	return ParseAddress(addr)
}

// ParseAddress reads country and city from a comma separated address whose
// last segment is the country and the one before it the city.
func ParseAddress(addr string) (country, city string, err error) {
	parts := strings.Split(addr, ",")
	if len(parts) < 2 {
		return "", "", forms.ErrBadLocation
	}
	country = strings.TrimSpace(parts[len(parts)-1])
	city = strings.TrimSpace(parts[len(parts)-2])
	if country == "" || city == "" {
		return "", "", forms.ErrBadLocation
	}
	return country, city, nil
}
