package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/ride-booking/internal/models"
)

// Candidate is one geocoding result.
type Candidate struct {
	PlaceName string
	Center    models.Coord
	Country   string
}

// Provider is the geocoding backend used by the resolver and the
// suggestions endpoint.
type Provider interface {
	Forward(ctx context.Context, query string) ([]Candidate, error)
	Reverse(ctx context.Context, c models.Coord) ([]Candidate, error)
}

// MapboxClient performs forward/reverse lookups against the Mapbox
// geocoding HTTP API.
type MapboxClient struct {
	Endpoint string
	Token    string
	Client   *http.Client
}

func NewMapboxClient(endpoint, token string) *MapboxClient {
	if endpoint == "" {
		endpoint = "https://api.mapbox.com"
	}
	return &MapboxClient{Endpoint: endpoint, Token: token, Client: &http.Client{Timeout: 5 * time.Second}}
}

type mapboxFeature struct {
	PlaceName string     `json:"place_name"`
	Center    [2]float64 `json:"center"` // lon, lat
	Context   []struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"context"`
}

func (m *MapboxClient) Forward(ctx context.Context, query string) ([]Candidate, error) {
	u := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json?access_token=%s",
		m.Endpoint, url.PathEscape(query), url.QueryEscape(m.Token))
	return m.fetch(ctx, u)
}

func (m *MapboxClient) Reverse(ctx context.Context, c models.Coord) ([]Candidate, error) {
	u := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%.6f,%.6f.json?access_token=%s",
		m.Endpoint, c.Lon, c.Lat, url.QueryEscape(m.Token))
	return m.fetch(ctx, u)
}

func (m *MapboxClient) fetch(ctx context.Context, u string) ([]Candidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := m.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding status %d", resp.StatusCode)
	}
	var out struct {
		Features []mapboxFeature `json:"features"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	cands := make([]Candidate, 0, len(out.Features))
	for _, f := range out.Features {
		c := Candidate{
			PlaceName: f.PlaceName,
			Center:    models.Coord{Lon: f.Center[0], Lat: f.Center[1]},
		}
		for _, cx := range f.Context {
			if strings.HasPrefix(cx.ID, "country") {
				c.Country = cx.Text
				break
			}
		}
		cands = append(cands, c)
	}
	return cands, nil
}
