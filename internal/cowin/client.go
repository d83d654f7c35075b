package cowin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"log/slog"
)

const (
	defaultBaseURL   = "https://cdn-api.co-vin.in/api"
	defaultUserAgent = "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:88.0) Gecko/20100101 Firefox/88.0"
	defaultTimeout   = 15 * time.Second

	// DateLayout is the DD-MM-YYYY layout the calendar endpoints expect.
	DateLayout = "02-01-2006"
)

// Config controls how the CoWIN client behaves.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
	UserAgent  string
}

// Client reads the public CoWIN appointment and location endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string
}

// New creates a Client with sane defaults.
func New(cfg Config) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
		userAgent:  userAgent,
	}
}

// SessionsByDistrict returns the centers of a district with sessions in the
// week starting at date.
func (c *Client) SessionsByDistrict(ctx context.Context, districtID int, date time.Time) ([]Center, error) {
	q := url.Values{}
	q.Set("district_id", strconv.Itoa(districtID))
	q.Set("date", date.Format(DateLayout))
	return c.calendar(ctx, "/v2/appointment/sessions/public/calendarByDistrict", q)
}

// SessionsByPin returns the centers of a PIN code area with sessions in the
// week starting at date.
func (c *Client) SessionsByPin(ctx context.Context, pincode string, date time.Time) ([]Center, error) {
	q := url.Values{}
	q.Set("pincode", strings.TrimSpace(pincode))
	q.Set("date", date.Format(DateLayout))
	return c.calendar(ctx, "/v2/appointment/sessions/public/calendarByPin", q)
}

// States lists the states known to CoWIN.
func (c *Client) States(ctx context.Context) ([]State, error) {
	var resp statesResponse
	if err := c.getJSON(ctx, "states", c.baseURL+"/v2/admin/location/states", &resp); err != nil {
		return nil, err
	}
	return resp.States, nil
}

// Districts lists the districts of a state.
func (c *Client) Districts(ctx context.Context, stateID int) ([]District, error) {
	var resp districtsResponse
	endpoint := fmt.Sprintf("%s/v2/admin/location/districts/%d", c.baseURL, stateID)
	if err := c.getJSON(ctx, "districts", endpoint, &resp); err != nil {
		return nil, err
	}
	return resp.Districts, nil
}

func (c *Client) calendar(ctx context.Context, path string, q url.Values) ([]Center, error) {
	endpoint := c.baseURL + path + "?" + q.Encode()
	var resp calendarResponse
	if err := c.getJSON(ctx, "calendar", endpoint, &resp); err != nil {
		return nil, err
	}
	centers, err := resp.toCenters()
	if err != nil {
		return nil, &FetchError{Op: "calendar", URL: endpoint, Err: err}
	}
	c.logger.Debug("cowin: calendar fetched", "url", endpoint, "centers", len(centers))
	return centers, nil
}

func (c *Client) getJSON(ctx context.Context, op, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &FetchError{Op: op, URL: endpoint, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "hi_IN")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &FetchError{Op: op, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &FetchError{Op: op, URL: endpoint, Err: fmt.Errorf("status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(payload)))}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &FetchError{Op: op, URL: endpoint, Err: fmt.Errorf("read response: %w", err)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &FetchError{Op: op, URL: endpoint, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
