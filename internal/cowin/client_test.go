package cowin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(Config{BaseURL: server.URL, Timeout: 2 * time.Second})
}

func TestSessionsByDistrict(t *testing.T) {
	payload := mustLoadFixture(t, "calendar_by_district.json")
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/appointment/sessions/public/calendarByDistrict", r.URL.Path)
		assert.Equal(t, "140", r.URL.Query().Get("district_id"))
		assert.Equal(t, "17-10-2026", r.URL.Query().Get("date"))
		assert.Equal(t, "hi_IN", r.Header.Get("Accept-Language"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(payload)
	})

	date := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	centers, err := client.SessionsByDistrict(context.Background(), 140, date)
	require.NoError(t, err)
	require.Len(t, centers, 2)

	first := centers[0]
	assert.Equal(t, "UPHC Sadar", first.Name)
	assert.Equal(t, "Near Civil Lines", first.Address)
	assert.Equal(t, "Nagpur Urban", first.BlockName)
	assert.Equal(t, 440001, first.Pincode)
	assert.Equal(t, "Free", first.FeeType)
	require.Len(t, first.Sessions, 2)
	assert.Equal(t, 5, first.Sessions[0].Capacity())
	assert.Equal(t, 45, first.Sessions[0].MinAgeLimit)
	assert.Equal(t, "COVAXIN", first.Sessions[1].Vaccine)
	assert.Empty(t, centers[1].Sessions)
}

func TestSessionsByPin(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/appointment/sessions/public/calendarByPin", r.URL.Path)
		assert.Equal(t, "440001", r.URL.Query().Get("pincode"))
		_, _ = w.Write([]byte(`{"centers":[]}`))
	})

	centers, err := client.SessionsByPin(context.Background(), " 440001 ", time.Now())
	require.NoError(t, err)
	assert.Empty(t, centers)
}

func TestCalendarFailuresAreFetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"forbidden", http.StatusForbidden, "Forbidden", nil},
		{"not json", http.StatusOK, "<html>maintenance</html>", nil},
		{"missing centers", http.StatusOK, `{"sessions":[]}`, ErrMissingCenters},
		{"missing sessions", http.StatusOK, `{"centers":[{"name":"A"}]}`, nil},
		{"missing capacity", http.StatusOK, `{"centers":[{"name":"A","sessions":[{"min_age_limit":18}]}]}`, nil},
		{"missing age limit", http.StatusOK, `{"centers":[{"name":"A","sessions":[{"available_capacity":3}]}]}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := client.SessionsByDistrict(context.Background(), 1, time.Now())
			require.Error(t, err)
			assert.True(t, IsFetchError(err), "expected FetchError, got %T", err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestMalformedErrorNamesField(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"centers":[{"name":"PHC","sessions":[{"available_capacity":3}]}]}`))
	})
	_, err := client.SessionsByDistrict(context.Background(), 1, time.Now())

	var malformed *MalformedError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "min_age_limit", malformed.Field)
	assert.Equal(t, "PHC", malformed.Center)
}

func TestTransportFailureIsFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := New(Config{BaseURL: server.URL})
	_, err := client.SessionsByDistrict(context.Background(), 1, time.Now())
	require.Error(t, err)
	assert.True(t, IsFetchError(err))
}

func TestStatesAndDistricts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/admin/location/states":
			_, _ = w.Write([]byte(`{"states":[{"state_id":21,"state_name":"Maharashtra"}],"ttl":24}`))
		case "/v2/admin/location/districts/21":
			_, _ = w.Write([]byte(`{"districts":[{"district_id":365,"district_name":"Nagpur"}],"ttl":24}`))
		default:
			http.NotFound(w, r)
		}
	})

	states, err := client.States(context.Background())
	require.NoError(t, err)
	require.Equal(t, []State{{StateID: 21, StateName: "Maharashtra"}}, states)

	districts, err := client.Districts(context.Background(), 21)
	require.NoError(t, err)
	require.Equal(t, []District{{DistrictID: 365, DistrictName: "Nagpur"}}, districts)

	_, err = client.Districts(context.Background(), 99)
	require.Error(t, err)
}

func TestNewDefaults(t *testing.T) {
	client := New(Config{})
	assert.Equal(t, defaultBaseURL, client.baseURL)
	assert.Equal(t, defaultTimeout, client.httpClient.Timeout)
	assert.Equal(t, defaultUserAgent, client.userAgent)

	client = New(Config{BaseURL: "http://example.test/api/", Timeout: time.Second})
	assert.Equal(t, "http://example.test/api", client.baseURL)
	assert.Equal(t, time.Second, client.httpClient.Timeout)
}
