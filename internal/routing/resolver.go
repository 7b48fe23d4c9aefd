package routing

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/example/ride-booking/internal/models"
	"github.com/example/ride-booking/internal/observability"
)

var (
	ErrInvalidLocation  = errors.New("invalid location")
	ErrCrossBorder      = errors.New("pickup and destination must be in the same country")
	ErrNoRoute          = errors.New("no available route")
	ErrDistanceExceeded = errors.New("distance exceeds the maximum allowed")
)

// Geocoder resolves place names and reverse-resolves countries.
type Geocoder interface {
	Resolve(ctx context.Context, placeName string) (models.Coord, error)
	CountryAt(ctx context.Context, c models.Coord) (string, error)
}

// Router fetches candidate driving paths between two coordinates.
type Router interface {
	Route(ctx context.Context, from, to models.Coord) ([]Path, error)
}

// MaxZoom caps the derived viewport zoom for short routes.
const MaxZoom = 15

// Resolver turns two free-text locations into a RouteQuote.
type Resolver struct {
	Geocoder      Geocoder
	Router        Router
	MaxDistanceKm int
}

// PlanRoute geocodes both endpoints, enforces the same-country and
// maximum-distance constraints, and derives the path plus a camera
// framing for display. Provider failures are normalized into the
// user-facing sentinels; no raw provider error escapes.
func (r *Resolver) PlanRoute(ctx context.Context, pickupName, destName string) (*models.RouteQuote, error) {
	pickup, dest, err := r.resolvePair(ctx, pickupName, destName)
	if err != nil {
		return nil, err
	}

	pickupCountry, destCountry, err := r.countryPair(ctx, pickup, dest)
	if err != nil {
		return nil, err
	}
	if pickupCountry != destCountry {
		return nil, ErrCrossBorder
	}

	paths, err := r.Router.Route(ctx, pickup, dest)
	if err != nil || len(paths) == 0 {
		return nil, ErrNoRoute
	}
	path := paths[0]

	distanceKm := int(math.Round(path.DistanceMeters / 1000))
	if distanceKm > r.MaxDistanceKm {
		return nil, fmt.Errorf("%w: %d km > %d km", ErrDistanceExceeded, distanceKm, r.MaxDistanceKm)
	}

	observability.QuotesTotal.Inc()
	return &models.RouteQuote{
		DistanceKm: distanceKm,
		Geometry:   path.Geometry,
		Viewport:   frame(path.Geometry),
	}, nil
}

// resolvePair geocodes both endpoints concurrently and joins the results.
// Either failure fails the whole call.
func (r *Resolver) resolvePair(ctx context.Context, pickupName, destName string) (models.Coord, models.Coord, error) {
	type result struct {
		c   models.Coord
		err error
	}
	pickupCh := make(chan result, 1)
	go func() {
		c, err := r.Geocoder.Resolve(ctx, pickupName)
		pickupCh <- result{c, err}
	}()
	dest, destErr := r.Geocoder.Resolve(ctx, destName)
	p := <-pickupCh
	if p.err != nil || destErr != nil {
		return models.Coord{}, models.Coord{}, ErrInvalidLocation
	}
	return p.c, dest, nil
}

func (r *Resolver) countryPair(ctx context.Context, pickup, dest models.Coord) (string, string, error) {
	type result struct {
		country string
		err     error
	}
	pickupCh := make(chan result, 1)
	go func() {
		c, err := r.Geocoder.CountryAt(ctx, pickup)
		pickupCh <- result{c, err}
	}()
	destCountry, destErr := r.Geocoder.CountryAt(ctx, dest)
	p := <-pickupCh
	if p.err != nil || destErr != nil {
		return "", "", ErrInvalidLocation
	}
	return p.country, destCountry, nil
}

// frame computes the bounding box over all path vertices and maps it to a
// center plus zoom, zoom = log2(360 / boxWidthDegrees) capped at MaxZoom.
func frame(geometry []models.Coord) models.Viewport {
	if len(geometry) == 0 {
		return models.Viewport{Zoom: MaxZoom}
	}
	minLon, minLat := math.Inf(1), math.Inf(1)
	maxLon, maxLat := math.Inf(-1), math.Inf(-1)
	for _, c := range geometry {
		minLon = math.Min(minLon, c.Lon)
		minLat = math.Min(minLat, c.Lat)
		maxLon = math.Max(maxLon, c.Lon)
		maxLat = math.Max(maxLat, c.Lat)
	}
	zoom := math.Log2(360 / (maxLon - minLon))
	if zoom > MaxZoom || math.IsInf(zoom, 1) {
		zoom = MaxZoom
	}
	return models.Viewport{
		Center: models.Coord{Lon: (minLon + maxLon) / 2, Lat: (minLat + maxLat) / 2},
		Zoom:   zoom,
	}
}
