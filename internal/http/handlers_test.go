package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/ride-booking/internal/config"
	"github.com/example/ride-booking/internal/models"
	"github.com/example/ride-booking/internal/routing"
)

type stubGeocoder struct{}

func (stubGeocoder) Resolve(ctx context.Context, placeName string) (models.Coord, error) {
	switch placeName {
	case "Hyderabad":
		return models.Coord{Lon: 78.4867, Lat: 17.385}, nil
	case "Warangal":
		return models.Coord{Lon: 79.5941, Lat: 17.9689}, nil
	case "Karachi":
		return models.Coord{Lon: 67.0011, Lat: 24.8607}, nil
	}
	return models.Coord{}, errors.New("no candidates")
}

func (stubGeocoder) CountryAt(ctx context.Context, c models.Coord) (string, error) {
	if c.Lon < 70 {
		return "Pakistan", nil
	}
	return "India", nil
}

type stubRouter struct{}

func (stubRouter) Route(ctx context.Context, from, to models.Coord) ([]routing.Path, error) {
	return []routing.Path{{DistanceMeters: 120_000, Geometry: []models.Coord{from, to}}}, nil
}

func newTestServer() *Server {
	cfg := config.ServerConfig{MaxDistanceKm: 500, RouteDebounce: time.Millisecond}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(cfg, logger)
	s.resolver.Geocoder = stubGeocoder{}
	s.resolver.Router = stubRouter{}
	return s
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func TestFareEndpoint(t *testing.T) {
	s := newTestServer()

	w := do(t, s, "GET", "/api/v1/fare?class=economy&distance_km=120", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 1250 {
		t.Fatalf("expected 1250, got %d", resp.Total)
	}

	if w := do(t, s, "GET", "/api/v1/fare?class=rickshaw&distance_km=10", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown class: status %d", w.Code)
	}
	if w := do(t, s, "GET", "/api/v1/fare/split?class=economy_shared&distance_km=30&party=0", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("party=0: status %d", w.Code)
	}
}

func TestQuoteEndpoint(t *testing.T) {
	s := newTestServer()

	w := do(t, s, "POST", "/api/v1/routes/quote", `{"pickup":"Hyderabad","destination":"Warangal"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Quote models.RouteQuote `json:"quote"`
		Fares map[string]string `json:"fares"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Quote.DistanceKm != 120 {
		t.Fatalf("expected 120 km, got %d", resp.Quote.DistanceKm)
	}
	if resp.Fares["economy"] != "₹1250" {
		t.Fatalf("unexpected fares: %+v", resp.Fares)
	}

	if w := do(t, s, "POST", "/api/v1/routes/quote", `{"pickup":"Hyderabad","destination":"Karachi"}`); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("cross-border: status %d, body %s", w.Code, w.Body.String())
	}
	if w := do(t, s, "POST", "/api/v1/routes/quote", `{"pickup":"Hyderabad","destination":"Atlantis"}`); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown place: status %d", w.Code)
	}
}

func TestRideLifecycleOverHTTP(t *testing.T) {
	s := newTestServer()

	// Booking without a quote fails.
	if w := do(t, s, "POST", "/api/v1/rides", `{"pickup":"Hyderabad","destination":"Warangal","class":"economy"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("book without quote: status %d", w.Code)
	}

	if w := do(t, s, "POST", "/api/v1/routes/quote", `{"pickup":"Hyderabad","destination":"Warangal"}`); w.Code != http.StatusOK {
		t.Fatalf("quote: status %d", w.Code)
	}

	w := do(t, s, "POST", "/api/v1/rides", `{"pickup":"Hyderabad","destination":"Warangal","class":"economy"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("book: status %d, body %s", w.Code, w.Body.String())
	}
	var rec models.RideRecord
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Cost != 1250 || rec.Status != models.StatusOngoing || rec.Driver == nil {
		t.Fatalf("unexpected record: %+v", rec)
	}

	// Second booking collides with the ongoing ride.
	if w := do(t, s, "POST", "/api/v1/rides", `{"pickup":"Hyderabad","destination":"Warangal","class":"premium"}`); w.Code != http.StatusConflict {
		t.Fatalf("double book: status %d", w.Code)
	}

	// Cash payment completes without a gateway.
	if w := do(t, s, "POST", "/api/v1/rides/complete", `{"method":"cash"}`); w.Code != http.StatusOK {
		t.Fatalf("complete: status %d, body %s", w.Code, w.Body.String())
	}

	if w := do(t, s, "POST", "/api/v1/rides/"+rec.ID+"/feedback", `{"rating":5,"feedback":"great"}`); w.Code != http.StatusOK {
		t.Fatalf("feedback: status %d, body %s", w.Code, w.Body.String())
	}
	if w := do(t, s, "POST", "/api/v1/rides/"+rec.ID+"/feedback", `{"rating":0}`); w.Code != http.StatusBadRequest {
		t.Fatalf("rating 0: status %d", w.Code)
	}

	w = do(t, s, "GET", "/api/v1/rides/completed", "")
	if w.Code != http.StatusOK {
		t.Fatalf("completed list: status %d", w.Code)
	}
	var done []models.RideRecord
	if err := json.Unmarshal(w.Body.Bytes(), &done); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(done) != 1 || done[0].DriverRating != 5 {
		t.Fatalf("unexpected completed list: %+v", done)
	}

	// Nothing ongoing anymore.
	if w := do(t, s, "POST", "/api/v1/rides/cancel", ""); w.Code != http.StatusConflict {
		t.Fatalf("cancel after complete: status %d", w.Code)
	}

	if w := do(t, s, "POST", "/api/v1/rides/clear", ""); w.Code != http.StatusNoContent {
		t.Fatalf("clear: status %d", w.Code)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest("POST", "/api/v1/routes/quote", strings.NewReader(`{"pickup":"Hyderabad","destination":"Warangal"}`))
	req.Header.Set(sessionHeader, "rider-a")
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("quote: status %d", w.Code)
	}

	// rider-b never quoted, so its booking is incomplete.
	req = httptest.NewRequest("POST", "/api/v1/rides", strings.NewReader(`{"pickup":"Hyderabad","destination":"Warangal","class":"economy"}`))
	req.Header.Set(sessionHeader, "rider-b")
	w = httptest.NewRecorder()
	s.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected rider-b booking rejected, got %d", w.Code)
	}
}

type countingCharger struct {
	calls int
	ok    bool
}

func (c *countingCharger) Charge(ctx context.Context, amount int64, currency, method string) (bool, error) {
	c.calls++
	return c.ok, nil
}

func TestCompleteChargesOnlyWhileOngoing(t *testing.T) {
	s := newTestServer()
	pay := &countingCharger{ok: true}
	s.payments = pay

	if w := do(t, s, "POST", "/api/v1/routes/quote", `{"pickup":"Hyderabad","destination":"Warangal"}`); w.Code != http.StatusOK {
		t.Fatalf("quote: status %d", w.Code)
	}
	if w := do(t, s, "POST", "/api/v1/rides", `{"pickup":"Hyderabad","destination":"Warangal","class":"economy"}`); w.Code != http.StatusCreated {
		t.Fatalf("book: status %d", w.Code)
	}

	if w := do(t, s, "POST", "/api/v1/rides/complete", `{"method":"gpay"}`); w.Code != http.StatusOK {
		t.Fatalf("complete: status %d, body %s", w.Code, w.Body.String())
	}
	if pay.calls != 1 {
		t.Fatalf("expected one charge, got %d", pay.calls)
	}

	// The completed ride stays visible, but a repeat request must be
	// rejected before it reaches the payment gateway.
	if w := do(t, s, "POST", "/api/v1/rides/complete", `{"method":"gpay"}`); w.Code != http.StatusConflict {
		t.Fatalf("repeat complete: status %d", w.Code)
	}
	if pay.calls != 1 {
		t.Fatalf("repeat complete charged again: %d calls", pay.calls)
	}

	if w := do(t, s, "POST", "/api/v1/rides/clear", ""); w.Code != http.StatusNoContent {
		t.Fatalf("clear: status %d", w.Code)
	}
	if w := do(t, s, "POST", "/api/v1/rides/complete", `{"method":"gpay"}`); w.Code != http.StatusConflict {
		t.Fatalf("complete with no ride: status %d", w.Code)
	}
	if pay.calls != 1 {
		t.Fatalf("charge issued with no active ride: %d calls", pay.calls)
	}
}

func TestDebouncedLocationFlow(t *testing.T) {
	s := newTestServer()

	if w := do(t, s, "GET", "/api/v1/routes/latest", ""); w.Code != http.StatusNotFound {
		t.Fatalf("latest before planning: status %d", w.Code)
	}

	if w := do(t, s, "POST", "/api/v1/locations", `{"field":"pickup","value":"Hyderabad"}`); w.Code != http.StatusAccepted {
		t.Fatalf("set pickup: status %d", w.Code)
	}
	if w := do(t, s, "POST", "/api/v1/locations", `{"field":"seat","value":"x"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("bad field: status %d", w.Code)
	}
	if w := do(t, s, "POST", "/api/v1/locations", `{"field":"destination","value":"Warangal"}`); w.Code != http.StatusAccepted {
		t.Fatalf("set destination: status %d", w.Code)
	}

	// Wait out the debounce window plus the async plan.
	deadline := time.Now().Add(time.Second)
	for {
		w := do(t, s, "GET", "/api/v1/routes/latest", "")
		if w.Code == http.StatusOK {
			var resp struct {
				Quote models.RouteQuote `json:"quote"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Quote.DistanceKm != 120 {
				t.Fatalf("expected 120 km, got %d", resp.Quote.DistanceKm)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("planned quote never became available")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// The planned quote is the one in force for booking.
	if w := do(t, s, "POST", "/api/v1/rides", `{"pickup":"Hyderabad","destination":"Warangal","class":"economy"}`); w.Code != http.StatusCreated {
		t.Fatalf("book from planned quote: status %d, body %s", w.Code, w.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer()
	if w := do(t, s, "GET", "/healthz", ""); w.Code != http.StatusOK {
		t.Fatalf("healthz: status %d", w.Code)
	}
}
