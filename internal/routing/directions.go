package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/example/ride-booking/internal/models"
)

// Path is one candidate driving route returned by the provider.
type Path struct {
	DistanceMeters float64
	Geometry       []models.Coord
}

// DirectionsClient performs route lookups against the Mapbox directions
// HTTP API.
type DirectionsClient struct {
	Endpoint string
	Token    string
	Client   *http.Client
}

func NewDirectionsClient(endpoint, token string) *DirectionsClient {
	if endpoint == "" {
		endpoint = "https://api.mapbox.com"
	}
	return &DirectionsClient{Endpoint: endpoint, Token: token, Client: &http.Client{Timeout: 5 * time.Second}}
}

// Route queries /directions/v5/mapbox/driving/{lon1},{lat1};{lon2},{lat2}
// and returns the candidate paths with GeoJSON geometry.
func (d *DirectionsClient) Route(ctx context.Context, from, to models.Coord) ([]Path, error) {
	u := fmt.Sprintf("%s/directions/v5/mapbox/driving/%.6f,%.6f;%.6f,%.6f?geometries=geojson&access_token=%s",
		d.Endpoint, from.Lon, from.Lat, to.Lon, to.Lat, url.QueryEscape(d.Token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var out struct {
		Routes []struct {
			Distance float64 `json:"distance"`
			Geometry struct {
				Coordinates [][2]float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"routes"`
		Code string `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.Code != "Ok" {
		return nil, fmt.Errorf("directions code: %v", out.Code)
	}
	paths := make([]Path, 0, len(out.Routes))
	for _, rt := range out.Routes {
		p := Path{DistanceMeters: rt.Distance}
		for _, c := range rt.Geometry.Coordinates {
			p.Geometry = append(p.Geometry, models.Coord{Lon: c[0], Lat: c[1]})
		}
		paths = append(paths, p)
	}
	return paths, nil
}
