package routing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/ski-spot/internal/geo"
)

var (
	denver = geo.Point{Lat: 39.7392, Lng: -104.9903}
	vail   = geo.Point{Lat: 39.6403, Lng: -106.3742}
	breck  = geo.Point{Lat: 39.4817, Lng: -106.0384}
	keystn = geo.Point{Lat: 39.6064, Lng: -105.9519}
)

func jsonServer(t *testing.T, status int, body string, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTable(t *testing.T) {
	var gotPath, gotQuery string
	srv := jsonServer(t, http.StatusOK, `{
		"code": "Ok",
		"distances": [[160934.4, 128747.5]],
		"durations": [[5400, 7261]]
	}`, func(r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
	})

	c := NewClient(srv.URL)
	legs := c.Table(context.Background(), denver, []geo.Point{vail, breck})

	require.Len(t, legs, 2)
	assert.Equal(t, Leg{DistanceMiles: 100.0, DurationHours: 1.5, Available: true}, legs[0])
	assert.Equal(t, Leg{DistanceMiles: 80.0, DurationHours: 2.02, Available: true}, legs[1])

	assert.Equal(t, "/table/v1/driving/-104.990300,39.739200;-106.374200,39.640300;-106.038400,39.481700", gotPath)
	assert.Contains(t, gotQuery, "sources=0")
	assert.Contains(t, gotQuery, "destinations=1;2")
	assert.Contains(t, gotQuery, "annotations=distance,duration")
}

func TestTable_PartialResults(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{
		"code": "Ok",
		"distances": [[16093.44, null, 32186.88]],
		"durations": [[600, null, 1800]]
	}`, nil)

	legs := NewClient(srv.URL).Table(context.Background(), denver, []geo.Point{vail, breck, keystn})

	require.Len(t, legs, 3)
	assert.True(t, legs[0].Available)
	assert.Equal(t, 10.0, legs[0].DistanceMiles)
	assert.False(t, legs[1].Available)
	assert.True(t, legs[2].Available)
	assert.Equal(t, 0.5, legs[2].DurationHours)
}

func TestTable_Degrades(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"provider error code", http.StatusOK, `{"code":"NoTable","message":"no table"}`},
		{"http error", http.StatusBadRequest, `{"code":"InvalidQuery"}`},
		{"server error", http.StatusInternalServerError, `oops`},
		{"malformed payload", http.StatusOK, `{"code":"Ok","distances":`},
		{"empty matrix", http.StatusOK, `{"code":"Ok","distances":[],"durations":[]}`},
		{"short row", http.StatusOK, `{"code":"Ok","distances":[[1000]],"durations":[[60]]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := jsonServer(t, tt.status, tt.body, nil)

			legs := NewClient(srv.URL).Table(context.Background(), denver, []geo.Point{vail, breck})

			require.Len(t, legs, 2)
			assert.False(t, legs[1].Available)
			if tt.name != "short row" {
				assert.False(t, legs[0].Available)
			}
		})
	}
}

func TestTable_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	legs := NewClient(url).Table(context.Background(), denver, []geo.Point{vail})
	require.Len(t, legs, 1)
	assert.Equal(t, Unavailable, legs[0])
}

func TestTable_NoDestinations(t *testing.T) {
	var calls int32
	srv := jsonServer(t, http.StatusOK, `{}`, func(*http.Request) { atomic.AddInt32(&calls, 1) })

	legs := NewClient(srv.URL).Table(context.Background(), denver, nil)
	assert.Empty(t, legs)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestRoute(t *testing.T) {
	var gotPath string
	srv := jsonServer(t, http.StatusOK, `{"code":"Ok","routes":[{"distance":193121.28,"duration":9000}]}`,
		func(r *http.Request) {
			gotPath = r.URL.Path
			assert.Equal(t, "false", r.URL.Query().Get("overview"))
			assert.True(t, strings.HasPrefix(r.Header.Get("User-Agent"), "ski-spot"))
		})

	leg := NewClient(srv.URL).Route(context.Background(), denver, vail)

	assert.Equal(t, Leg{DistanceMiles: 120.0, DurationHours: 2.5, Available: true}, leg)
	assert.Equal(t, "/route/v1/driving/-104.990300,39.739200;-106.374200,39.640300", gotPath)
}

func TestRoute_Degrades(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"no route", http.StatusOK, `{"code":"NoRoute","routes":[]}`},
		{"ok without routes", http.StatusOK, `{"code":"Ok","routes":[]}`},
		{"http error", http.StatusServiceUnavailable, `{}`},
		{"malformed", http.StatusOK, `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := jsonServer(t, tt.status, tt.body, nil)
			assert.Equal(t, Unavailable, NewClient(srv.URL).Route(context.Background(), denver, vail))
		})
	}
}

func TestPerLeg(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.Path, "-106.038400") {
			_, _ = w.Write([]byte(`{"code":"NoRoute"}`))
			return
		}
		_, _ = w.Write([]byte(`{"code":"Ok","routes":[{"distance":16093.44,"duration":3600}]}`))
	}))
	defer srv.Close()

	p := PerLeg{Client: NewClient(srv.URL), Concurrency: 2}
	legs := p.Table(context.Background(), denver, []geo.Point{vail, breck, keystn})

	require.Len(t, legs, 3)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.True(t, legs[0].Available)
	assert.False(t, legs[1].Available)
	assert.Equal(t, 1.0, legs[2].DurationHours)
}

func TestConvert(t *testing.T) {
	leg := convert(1609.344*12.345, 3600*1.23456)
	assert.Equal(t, 12.3, leg.DistanceMiles)
	assert.Equal(t, 1.23, leg.DurationHours)
	assert.True(t, leg.Available)
}
