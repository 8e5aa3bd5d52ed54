package mapdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turfline/server/geo"
	"go.uber.org/zap"
)

var testBounds = geo.Bounds{MinLat: 52.0, MinLng: 4.0, MaxLat: 53.0, MaxLng: 5.0}

func TestStaticFiltersByBounds(t *testing.T) {
	p := &Static{Records: []RawRecord{
		{ID: "in", Category: "bar", Location: geo.Point{Lat: 52.5, Lng: 4.5}},
		{ID: "out", Category: "bar", Location: geo.Point{Lat: 51.0, Lng: 4.5}},
	}}

	records, err := p.FetchRegion(context.Background(), testBounds)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "in", records[0].ID)
}

func TestSafeFetchDegradesToEmpty(t *testing.T) {
	p := &Static{Err: errors.New("upstream down")}
	records := SafeFetch(context.Background(), p, testBounds, zap.NewNop())
	assert.Empty(t, records)
}

func TestHTTPProviderFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "52.000000", r.URL.Query().Get("min_lat"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"records":[{"id":"b1","name":"Golden Dragon","category":"restaurant","location":{"lat":52.4,"lng":4.4}}]}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, 5*time.Second)
	records, err := p.FetchRegion(context.Background(), testBounds)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Golden Dragon", records[0].Name)
	assert.Equal(t, "restaurant", records[0].Category)
}

func TestHTTPProviderUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, 5*time.Second)
	_, err := p.FetchRegion(context.Background(), testBounds)
	assert.Error(t, err)
}
