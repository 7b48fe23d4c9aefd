package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/ride-booking/internal/chat"
	"github.com/example/ride-booking/internal/config"
	"github.com/example/ride-booking/internal/dispatch"
	"github.com/example/ride-booking/internal/fare"
	"github.com/example/ride-booking/internal/geocode"
	"github.com/example/ride-booking/internal/ingest"
	"github.com/example/ride-booking/internal/models"
	"github.com/example/ride-booking/internal/payments"
	"github.com/example/ride-booking/internal/ride"
	"github.com/example/ride-booking/internal/routing"
)

const sessionHeader = "X-Session-ID"

// charger settles a fare with the chosen payment method.
type charger interface {
	Charge(ctx context.Context, amount int64, currency, method string) (bool, error)
}

type Server struct {
	cfg      config.ServerConfig
	logger   *slog.Logger
	geocoder *geocode.Resolver
	resolver *routing.Resolver
	sessions *ride.Registry
	store    ride.Store
	payments charger
	chatWS   *dispatch.ChatRegistry
	mux      *mux.Router

	plannerMu sync.Mutex
	planners  map[string]*routing.Planner
}

// New wires the booking API from config: Redis-backed geocoding cache and
// Postgres store when configured, in-memory fallbacks otherwise, optional
// Kafka ride-event producer.
func New(cfg config.ServerConfig, logger *slog.Logger) *Server {
	var cache geocode.Cache
	if cfg.RedisAddr != "" {
		cache = geocode.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.GeocodeCacheTTL)
	} else {
		cache = geocode.NewMemoryCache(cfg.GeocodeCacheTTL)
	}
	geocoder := geocode.NewResolver(geocode.NewMapboxClient(cfg.MapboxEndpoint, cfg.MapboxToken), cache)
	resolver := &routing.Resolver{
		Geocoder:      geocoder,
		Router:        routing.NewDirectionsClient(cfg.MapboxEndpoint, cfg.MapboxToken),
		MaxDistanceKm: cfg.MaxDistanceKm,
	}

	var store ride.Store
	if cfg.PGDSN != "" {
		if ps, err := ride.NewPostgresStore(cfg.PGDSN); err == nil {
			store = ps
		} else {
			logger.Warn("postgres unavailable, using memory store", "error", err)
		}
	}
	if store == nil {
		store = ride.NewMemoryStore()
	}

	var producer *ingest.EventProducer
	if len(cfg.KafkaBrokers) > 0 {
		producer = ingest.NewEventProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	}

	chatWS := dispatch.NewChatRegistry(logger)
	sessions := ride.NewRegistry(func(id string) *ride.Session {
		sim := chat.NewSimulator(nil)
		sim.OnAppend = func(room string, msg models.ChatMessage) {
			_ = chatWS.Push(room, msg)
		}
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		var events ride.EventPublisher
		if producer != nil {
			events = producer
		}
		return ride.NewSession(store, ride.DefaultRoster(), rng, sim, events)
	})

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		geocoder: geocoder,
		resolver: resolver,
		sessions: sessions,
		store:    store,
		payments: payments.NewProvider(cfg.StripeAPIKey),
		chatWS:   chatWS,
		mux:      mux.NewRouter(),
		planners: make(map[string]*routing.Planner),
	}
	s.registerMiddleware()
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/v1/locations/suggest", s.handleSuggest).Methods("GET")
	s.mux.HandleFunc("/api/v1/locations", s.handleSetLocation).Methods("POST")
	s.mux.HandleFunc("/api/v1/routes/quote", s.handleQuote).Methods("POST")
	s.mux.HandleFunc("/api/v1/routes/latest", s.handleLatestQuote).Methods("GET")
	s.mux.HandleFunc("/api/v1/fare", s.handleFare).Methods("GET")
	s.mux.HandleFunc("/api/v1/fare/split", s.handleSplitFare).Methods("GET")
	s.mux.HandleFunc("/api/v1/rides", s.handleBook).Methods("POST")
	s.mux.HandleFunc("/api/v1/rides", s.handleHistory).Methods("GET")
	s.mux.HandleFunc("/api/v1/rides/completed", s.handleCompletedRides).Methods("GET")
	s.mux.HandleFunc("/api/v1/rides/cancel", s.handleCancel).Methods("POST")
	s.mux.HandleFunc("/api/v1/rides/complete", s.handleComplete).Methods("POST")
	s.mux.HandleFunc("/api/v1/rides/clear", s.handleClear).Methods("POST")
	s.mux.HandleFunc("/api/v1/rides/{id}/feedback", s.handleFeedback).Methods("POST")
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) }).Methods("GET")
	s.mux.Handle("/metrics", promhttp.Handler())
	s.mux.HandleFunc("/ws/rides/{room}", s.handleChatWS)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

func (s *Server) session(r *http.Request) *ride.Session {
	return s.sessions.Get(sessionID(r))
}

func sessionID(r *http.Request) string {
	if id := r.Header.Get(sessionHeader); id != "" {
		return id
	}
	return "default"
}

// planner returns the session's debounced route planner, creating it on
// first use. Confirmed quotes flow into the session so a later booking
// commits the freshest price.
func (s *Server) planner(r *http.Request) *routing.Planner {
	id := sessionID(r)
	s.plannerMu.Lock()
	defer s.plannerMu.Unlock()
	if p, ok := s.planners[id]; ok {
		return p
	}
	sess := s.sessions.Get(id)
	p := routing.NewPlanner(s.resolver, s.cfg.RouteDebounce)
	p.OnQuote = func(q *models.RouteQuote) { sess.SetQuote(q) }
	s.planners[id] = p
	return p
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "missing query")
		return
	}
	cands, err := s.geocoder.Suggest(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusBadGateway, "suggestion lookup failed")
		return
	}
	type suggestion struct {
		PlaceName string       `json:"place_name"`
		Center    models.Coord `json:"center"`
	}
	out := make([]suggestion, 0, len(cands))
	for _, c := range cands {
		out = append(out, suggestion{PlaceName: c.PlaceName, Center: c.Center})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSetLocation feeds one endpoint edit into the debounced planner.
// Planning starts once both locations are set; rapid edits supersede the
// pending plan instead of queuing behind it.
func (s *Server) handleSetLocation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p := s.planner(r)
	switch req.Field {
	case "pickup":
		p.SetPickup(req.Value)
	case "destination":
		p.SetDestination(req.Value)
	default:
		writeError(w, http.StatusBadRequest, "field must be pickup or destination")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleLatestQuote(w http.ResponseWriter, r *http.Request) {
	quote := s.planner(r).Quote()
	if quote == nil {
		writeError(w, http.StatusNotFound, "no route planned yet")
		return
	}
	distance := quote.DistanceKm
	fares := make(map[models.RideClass]string, 4)
	for _, class := range fare.Classes() {
		fares[class] = fare.Display(class, &distance)
	}
	writeJSON(w, http.StatusOK, map[string]any{"quote": quote, "fares": fares})
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Pickup      string `json:"pickup"`
		Destination string `json:"destination"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Pickup == "" || req.Destination == "" {
		writeError(w, http.StatusBadRequest, "pickup and destination are required")
		return
	}
	quote, err := s.resolver.PlanRoute(r.Context(), req.Pickup, req.Destination)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.session(r).SetQuote(quote)

	distance := quote.DistanceKm
	fares := make(map[models.RideClass]string, 4)
	for _, class := range fare.Classes() {
		fares[class] = fare.Display(class, &distance)
	}
	writeJSON(w, http.StatusOK, map[string]any{"quote": quote, "fares": fares})
}

func (s *Server) handleFare(w http.ResponseWriter, r *http.Request) {
	class := models.RideClass(r.URL.Query().Get("class"))
	km, err := strconv.Atoi(r.URL.Query().Get("distance_km"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid distance_km")
		return
	}
	total, err := fare.Quote(class, km)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"class": class, "distance_km": km, "total": total})
}

func (s *Server) handleSplitFare(w http.ResponseWriter, r *http.Request) {
	class := models.RideClass(r.URL.Query().Get("class"))
	km, err := strconv.Atoi(r.URL.Query().Get("distance_km"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid distance_km")
		return
	}
	party, err := strconv.Atoi(r.URL.Query().Get("party"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid party")
		return
	}
	perPerson, err := fare.Split(class, km, party)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"class": class, "distance_km": km, "party": party, "per_person": perPerson})
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Pickup      string           `json:"pickup"`
		Destination string           `json:"destination"`
		Class       models.RideClass `json:"class"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec, err := s.session(r).Book(req.Pickup, req.Destination, req.Class)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.logger.Info("ride booked", "ride_id", rec.ID, "class", rec.RideClass, "cost", rec.Cost, "driver", rec.Driver.Name)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.session(r).Cancel(); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method string `json:"method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess := s.session(r)
	rec, ok := sess.Current()
	// A completed ride keeps Current set, so the ongoing check must gate
	// the charge or a repeat request would bill twice.
	if !ok || !sess.Ongoing() {
		writeDomainError(w, ride.ErrNoActiveRide)
		return
	}
	paid, err := s.payments.Charge(r.Context(), rec.Cost*100, "inr", req.Method)
	if err != nil {
		s.logger.Warn("payment failed", "ride_id", rec.ID, "method", req.Method, "error", err)
	}
	if err := sess.Complete(paid && err == nil); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.session(r).Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rating   int    `json:"rating"`
		Feedback string `json:"feedback"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rideID := mux.Vars(r)["id"]
	if err := s.session(r).RateAndReview(rideID, req.Rating, req.Feedback); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	rides, err := s.store.ListAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	writeJSON(w, http.StatusOK, rides)
}

func (s *Server) handleCompletedRides(w http.ResponseWriter, r *http.Request) {
	rides, err := s.session(r).Completed()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	writeJSON(w, http.StatusOK, rides)
}

var upgrader = websocket.Upgrader{}

// handleChatWS bridges the in-process chat simulator to a rider client.
// The client receives the backlog plus every appended message, and its
// writes feed the simulator's send path.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	room := mux.Vars(r)["room"]
	sess, ok := s.sessions.FindByRoom(room)
	if !ok {
		writeError(w, http.StatusNotFound, "no such chat room")
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.chatWS.Add(room, conn)
	for _, msg := range sess.Chat().Messages() {
		_ = s.chatWS.Push(room, msg)
	}

	defer func() {
		s.chatWS.Remove(room, conn)
		_ = conn.Close()
	}()
	for {
		var msg models.ChatMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Sender == "" {
			msg.Sender = "You"
		}
		if err := sess.Chat().Send(msg.Text, msg.Sender); err != nil {
			_ = s.chatWS.Push(room, models.ChatMessage{Sender: "System", Text: err.Error()})
		}
	}
}
