// Package distance estimates travel time between a schedule's origin and
// destination using a Distance Matrix style HTTP API.
package distance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"medtransit/internal/platform/config"
	dErrors "medtransit/pkg/domain-errors"
)

//go:generate mockgen -source=client.go -destination=mocks/mocks.go -package=mocks

// Lookup resolves the route between two addresses.
type Lookup interface {
	Lookup(ctx context.Context, origin, destination string) (*Route, error)
}

// Route is the first route the API returned.
type Route struct {
	Origin          string `json:"origen"`
	Destination     string `json:"destino"`
	DurationSeconds int    `json:"duracionSegundos"`
	DurationText    string `json:"duracionTexto"`
	DistanceMeters  int    `json:"distanciaMetros"`
	DistanceText    string `json:"distanciaTexto"`
	TrafficText     string `json:"duracionConTrafico"`
}

// Client calls the Distance Matrix API. It does not cache or complete addresses.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

func NewClient(cfg config.Distance, httpClient *http.Client) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{http: httpClient, baseURL: cfg.BaseURL, apiKey: cfg.APIKey}
}

type matrixResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Rows         []struct {
		Elements []matrixElement `json:"elements"`
	} `json:"rows"`
}

type matrixElement struct {
	Status            string     `json:"status"`
	Duration          *textValue `json:"duration"`
	Distance          *textValue `json:"distance"`
	DurationInTraffic *textValue `json:"duration_in_traffic"`
}

type textValue struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

// Lookup queries one origin/destination pair. Transport failures and API level
// errors are upstream_unavailable; addresses the API cannot resolve are
// invalid_input.
func (c *Client) Lookup(ctx context.Context, origin, destination string) (*Route, error) {
	q := url.Values{}
	q.Set("origins", origin)
	q.Set("destinations", destination)
	q.Set("key", c.apiKey)
	q.Set("language", "es")
	q.Set("departure_time", "now")
	q.Set("traffic_model", "best_guess")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build distance request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "distance service unreachable")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, dErrors.New(dErrors.CodeUpstreamUnavailable,
			fmt.Sprintf("distance service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var out matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "invalid distance service response")
	}
	if out.Status != "OK" {
		return nil, dErrors.New(dErrors.CodeUpstreamUnavailable, "distance service status "+out.Status)
	}
	if len(out.Rows) == 0 || len(out.Rows[0].Elements) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "no route found")
	}

	el := out.Rows[0].Elements[0]
	switch el.Status {
	case "OK":
	case "NOT_FOUND":
		return nil, dErrors.New(dErrors.CodeInvalidInput, "one of the addresses could not be found")
	case "ZERO_RESULTS":
		return nil, dErrors.New(dErrors.CodeInvalidInput, "no route between the addresses")
	default:
		return nil, dErrors.New(dErrors.CodeUpstreamUnavailable, "route could not be computed: "+el.Status)
	}
	if el.Duration == nil || el.Distance == nil {
		return nil, dErrors.New(dErrors.CodeUpstreamUnavailable, "route is missing duration or distance")
	}

	route := &Route{
		Origin:          origin,
		Destination:     destination,
		DurationSeconds: el.Duration.Value,
		DurationText:    el.Duration.Text,
		DistanceMeters:  el.Distance.Value,
		DistanceText:    el.Distance.Text,
		TrafficText:     el.Duration.Text,
	}
	if el.DurationInTraffic != nil {
		route.TrafficText = el.DurationInTraffic.Text
	}
	return route, nil
}
