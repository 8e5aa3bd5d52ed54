package mapdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/turfline/server/geo"
	"go.uber.org/zap"
)

// RawRecord is one facility row as returned by the external map-data source.
type RawRecord struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Location geo.Point `json:"location"`
}

// Provider fetches raw facility records for a bounding region.
type Provider interface {
	FetchRegion(ctx context.Context, bounds geo.Bounds) ([]RawRecord, error)
}

// HTTPProvider fetches records from a JSON endpoint:
// GET {endpoint}?min_lat=..&min_lng=..&max_lat=..&max_lng=.. → {"records":[...]}.
type HTTPProvider struct {
	endpoint string
	client   *http.Client
}

// NewHTTPProvider creates an HTTPProvider with the given request timeout.
func NewHTTPProvider(endpoint string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProvider{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *HTTPProvider) FetchRegion(ctx context.Context, bounds geo.Bounds) ([]RawRecord, error) {
	q := url.Values{}
	q.Set("min_lat", fmt.Sprintf("%f", bounds.MinLat))
	q.Set("min_lng", fmt.Sprintf("%f", bounds.MinLng))
	q.Set("max_lat", fmt.Sprintf("%f", bounds.MaxLat))
	q.Set("max_lng", fmt.Sprintf("%f", bounds.MaxLng))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mapdata: upstream status %d", resp.StatusCode)
	}

	var body struct {
		Records []RawRecord `json:"records"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body.Records, nil
}

// SafeFetch wraps a Provider fetch so callers degrade gracefully: a failure
// is logged and an empty result set returned, never an error. No automatic
// retry; the next map-bounds change triggers a fresh fetch.
func SafeFetch(ctx context.Context, p Provider, bounds geo.Bounds, logger *zap.Logger) []RawRecord {
	records, err := p.FetchRegion(ctx, bounds)
	if err != nil {
		logger.Warn("map data fetch failed, no facilities added this cycle", zap.Error(err))
		return nil
	}
	return records
}

// Static is a fixed-record Provider for tests and offline mode.
type Static struct {
	Records []RawRecord
	Err     error
}

func (s *Static) FetchRegion(_ context.Context, bounds geo.Bounds) ([]RawRecord, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []RawRecord
	for _, r := range s.Records {
		if bounds.Contains(r.Location) {
			out = append(out, r)
		}
	}
	return out, nil
}
