package routing

import (
	"context"
	"errors"
	"testing"

	"github.com/example/ride-booking/internal/models"
)

type fakeGeocoder struct {
	coords    map[string]models.Coord
	countries map[models.Coord]string
}

func (g *fakeGeocoder) Resolve(ctx context.Context, placeName string) (models.Coord, error) {
	c, ok := g.coords[placeName]
	if !ok {
		return models.Coord{}, errors.New("no candidates")
	}
	return c, nil
}

func (g *fakeGeocoder) CountryAt(ctx context.Context, c models.Coord) (string, error) {
	country, ok := g.countries[c]
	if !ok {
		return "", errors.New("no candidates")
	}
	return country, nil
}

type fakeRouter struct {
	paths []Path
	err   error
	calls int
}

func (r *fakeRouter) Route(ctx context.Context, from, to models.Coord) ([]Path, error) {
	r.calls++
	return r.paths, r.err
}

var (
	hyderabad = models.Coord{Lon: 78.4867, Lat: 17.385}
	warangal  = models.Coord{Lon: 79.5941, Lat: 17.9689}
	karachi   = models.Coord{Lon: 67.0011, Lat: 24.8607}
)

func newGeocoder() *fakeGeocoder {
	return &fakeGeocoder{
		coords: map[string]models.Coord{
			"Hyderabad": hyderabad,
			"Warangal":  warangal,
			"Karachi":   karachi,
		},
		countries: map[models.Coord]string{
			hyderabad: "India",
			warangal:  "India",
			karachi:   "Pakistan",
		},
	}
}

func TestPlanRouteHappyPath(t *testing.T) {
	router := &fakeRouter{paths: []Path{{
		DistanceMeters: 145500,
		Geometry:       []models.Coord{hyderabad, {Lon: 79.0, Lat: 17.6}, warangal},
	}}}
	r := &Resolver{Geocoder: newGeocoder(), Router: router, MaxDistanceKm: 500}

	q, err := r.PlanRoute(context.Background(), "Hyderabad", "Warangal")
	if err != nil {
		t.Fatalf("PlanRoute: %v", err)
	}
	if q.DistanceKm != 146 {
		t.Fatalf("expected 146 km (rounded), got %d", q.DistanceKm)
	}
	if len(q.Geometry) != 3 {
		t.Fatalf("expected geometry passthrough, got %d points", len(q.Geometry))
	}
	wantLon := (hyderabad.Lon + warangal.Lon) / 2
	if q.Viewport.Center.Lon != wantLon {
		t.Fatalf("viewport center lon: got %f, want %f", q.Viewport.Center.Lon, wantLon)
	}
	if q.Viewport.Zoom > MaxZoom {
		t.Fatalf("zoom exceeds cap: %f", q.Viewport.Zoom)
	}
}

func TestPlanRouteInvalidLocation(t *testing.T) {
	router := &fakeRouter{}
	r := &Resolver{Geocoder: newGeocoder(), Router: router, MaxDistanceKm: 500}

	if _, err := r.PlanRoute(context.Background(), "Hyderabad", "Atlantis"); !errors.Is(err, ErrInvalidLocation) {
		t.Fatalf("expected ErrInvalidLocation, got %v", err)
	}
	if router.calls != 0 {
		t.Fatalf("router called despite failed geocode")
	}
}

func TestPlanRouteCrossBorder(t *testing.T) {
	router := &fakeRouter{paths: []Path{{DistanceMeters: 1000}}}
	r := &Resolver{Geocoder: newGeocoder(), Router: router, MaxDistanceKm: 500}

	if _, err := r.PlanRoute(context.Background(), "Hyderabad", "Karachi"); !errors.Is(err, ErrCrossBorder) {
		t.Fatalf("expected ErrCrossBorder, got %v", err)
	}
	if router.calls != 0 {
		t.Fatalf("router called for a cross-border pair")
	}
}

func TestPlanRouteNoRoute(t *testing.T) {
	r := &Resolver{Geocoder: newGeocoder(), Router: &fakeRouter{paths: nil}, MaxDistanceKm: 500}
	if _, err := r.PlanRoute(context.Background(), "Hyderabad", "Warangal"); !errors.Is(err, ErrNoRoute) {
		t.Fatalf("expected ErrNoRoute on empty paths, got %v", err)
	}

	r.Router = &fakeRouter{err: errors.New("provider down")}
	if _, err := r.PlanRoute(context.Background(), "Hyderabad", "Warangal"); !errors.Is(err, ErrNoRoute) {
		t.Fatalf("expected ErrNoRoute on provider error, got %v", err)
	}
}

func TestPlanRouteDistanceExceeded(t *testing.T) {
	router := &fakeRouter{paths: []Path{{
		DistanceMeters: 501_400,
		Geometry:       []models.Coord{hyderabad, warangal},
	}}}
	r := &Resolver{Geocoder: newGeocoder(), Router: router, MaxDistanceKm: 500}

	_, err := r.PlanRoute(context.Background(), "Hyderabad", "Warangal")
	if !errors.Is(err, ErrDistanceExceeded) {
		t.Fatalf("expected ErrDistanceExceeded, got %v", err)
	}
}

func TestPlanRouteBoundaryDistanceAllowed(t *testing.T) {
	router := &fakeRouter{paths: []Path{{
		DistanceMeters: 500_000,
		Geometry:       []models.Coord{hyderabad, warangal},
	}}}
	r := &Resolver{Geocoder: newGeocoder(), Router: router, MaxDistanceKm: 500}

	q, err := r.PlanRoute(context.Background(), "Hyderabad", "Warangal")
	if err != nil {
		t.Fatalf("500 km exactly should be allowed: %v", err)
	}
	if q.DistanceKm != 500 {
		t.Fatalf("expected 500 km, got %d", q.DistanceKm)
	}
}

func TestFrameClampsZoomForTinySpans(t *testing.T) {
	v := frame([]models.Coord{hyderabad, hyderabad})
	if v.Zoom != MaxZoom {
		t.Fatalf("expected zoom clamped to %d for a zero-width box, got %f", MaxZoom, v.Zoom)
	}
	if v.Center != hyderabad {
		t.Fatalf("expected center at the single point, got %+v", v.Center)
	}
}
