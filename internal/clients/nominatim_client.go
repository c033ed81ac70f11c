package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/spacesedan/ideiamap/internal/models"
)

const NOMINATIM_ENDPOINT = "https://nominatim.openstreetmap.org"

var (
	// ErrGeocodeTimeout marks a lookup that may succeed when retried.
	ErrGeocodeTimeout = errors.New("geocode request timed out")
	// ErrGeocodeCancelled marks a lookup abandoned because of the caller's
	// context, including a deadline too short to wait for the rate limiter.
	ErrGeocodeCancelled = errors.New("geocode request cancelled")
)

type NominatimConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// RequestsPerSecond defaults to 1, the public instance's usage policy.
	RequestsPerSecond float64
}

type NominatimClient struct {
	Client    *http.Client
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func NewNominatimClient(cfg NominatimConfig) *NominatimClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = NOMINATIM_ENDPOINT
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = GEOCODE_USER_AGENT
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}

	return &NominatimClient{
		Client:    &http.Client{Timeout: cfg.Timeout},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}
}

// Geocode resolves a free-form query to its first match. A query with no
// match returns an absent point and no error.
func (n *NominatimClient) Geocode(ctx context.Context, query string) (models.GeoPoint, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return models.AbsentGeoPoint(), fmt.Errorf("%w: %v", ErrGeocodeCancelled, err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return models.AbsentGeoPoint(), fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		return models.AbsentGeoPoint(), classifyTransportError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGatewayTimeout || resp.StatusCode == http.StatusRequestTimeout:
		return models.AbsentGeoPoint(), fmt.Errorf("%w: status code %d", ErrGeocodeTimeout, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return models.AbsentGeoPoint(), fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.AbsentGeoPoint(), classifyTransportError(err)
	}

	var places []nominatimPlace
	if err := json.Unmarshal(body, &places); err != nil {
		slog.Error("[NominatimClient] Failed to unmarshal response",
			slog.String("error", err.Error()),
			getPreview(body))
		return models.AbsentGeoPoint(), fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(places) == 0 {
		return models.AbsentGeoPoint(), nil
	}

	lat, latErr := strconv.ParseFloat(places[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(places[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return models.AbsentGeoPoint(), fmt.Errorf("invalid coordinates %q,%q", places[0].Lat, places[0].Lon)
	}

	return models.NewGeoPoint(lat, lon), nil
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrGeocodeCancelled, err)
	}
	if IsTimeout(err) {
		return fmt.Errorf("%w: %v", ErrGeocodeTimeout, err)
	}
	return err
}

// IsTimeout reports whether err is a timeout-class failure.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrGeocodeTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
