package distance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medtransit/internal/platform/config"
	dErrors "medtransit/pkg/domain-errors"
)

const okMatrix = `{
  "status": "OK",
  "rows": [{"elements": [{
    "status": "OK",
    "duration": {"text": "18 min", "value": 1080},
    "distance": {"text": "7,4 km", "value": 7400},
    "duration_in_traffic": {"text": "24 min", "value": 1440}
  }]}]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.Distance{BaseURL: srv.URL, APIKey: "secret"}, srv.Client())
}

func TestClientLookup(t *testing.T) {
	t.Run("parses the first element", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "Av. Colón 1200, Córdoba", q.Get("origins"))
			assert.Equal(t, "Hospital Privado, Córdoba", q.Get("destinations"))
			assert.Equal(t, "secret", q.Get("key"))
			assert.Equal(t, "now", q.Get("departure_time"))
			_, _ = w.Write([]byte(okMatrix))
		})

		route, err := client.Lookup(context.Background(), "Av. Colón 1200, Córdoba", "Hospital Privado, Córdoba")
		require.NoError(t, err)
		assert.Equal(t, 1080, route.DurationSeconds)
		assert.Equal(t, "18 min", route.DurationText)
		assert.Equal(t, 7400, route.DistanceMeters)
		assert.Equal(t, "24 min", route.TrafficText)
	})

	t.Run("traffic falls back to duration", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":"OK","rows":[{"elements":[{"status":"OK","duration":{"text":"9 min","value":540},"distance":{"text":"3 km","value":3000}}]}]}`))
		})
		route, err := client.Lookup(context.Background(), "a", "b")
		require.NoError(t, err)
		assert.Equal(t, "9 min", route.TrafficText)
	})

	cases := []struct {
		name string
		body string
		code int
		want dErrors.Code
	}{
		{"unknown address", `{"status":"OK","rows":[{"elements":[{"status":"NOT_FOUND"}]}]}`, http.StatusOK, dErrors.CodeInvalidInput},
		{"no route", `{"status":"OK","rows":[{"elements":[{"status":"ZERO_RESULTS"}]}]}`, http.StatusOK, dErrors.CodeInvalidInput},
		{"denied", `{"status":"REQUEST_DENIED","error_message":"bad key"}`, http.StatusOK, dErrors.CodeUpstreamUnavailable},
		{"server error", `oops`, http.StatusInternalServerError, dErrors.CodeUpstreamUnavailable},
		{"garbage", `not json`, http.StatusOK, dErrors.CodeUpstreamUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.code)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := client.Lookup(context.Background(), "a", "b")
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, tc.want), "got %v", err)
		})
	}

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		client := NewClient(config.Distance{BaseURL: srv.URL}, nil)
		_, err := client.Lookup(context.Background(), "a", "b")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUpstreamUnavailable))
	})
}

func TestCompleteAddress(t *testing.T) {
	const locality = "Córdoba, Argentina"
	cases := map[string]string{
		"Av. Colón 1200":               "Av. Colón 1200, Córdoba, Argentina",
		"  Bv. San Juan 45 ":           "Bv. San Juan 45, Córdoba, Argentina",
		"Obispo Trejo 242, CORDOBA":    "Obispo Trejo 242, CORDOBA",
		"Ruta 9 km 5, córdoba":         "Ruta 9 km 5, córdoba",
		"Rosario, Santa Fe, Argentina": "Rosario, Santa Fe, Argentina",
		"":                             "",
	}
	for in, want := range cases {
		assert.Equal(t, want, CompleteAddress(in, locality), in)
	}
	assert.Equal(t, "Av. Colón 1200", CompleteAddress("Av. Colón 1200", ""))
}

func TestCacheKeyIgnoresCaseAndAccents(t *testing.T) {
	a := cacheKey("Av. Colón 1200, Córdoba", "Hospital Privado")
	b := cacheKey("av. colon  1200, CORDOBA", "hospital privado")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, cacheKey("Hospital Privado", "Av. Colón 1200, Córdoba"))
	assert.Contains(t, a, "medtransit:distance:")
}
