package ride

import (
	"errors"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/example/ride-booking/internal/chat"
	"github.com/example/ride-booking/internal/fare"
	"github.com/example/ride-booking/internal/models"
	"github.com/example/ride-booking/internal/observability"
)

var (
	ErrIncompleteBooking = errors.New("incomplete booking request")
	ErrActiveRide        = errors.New("a ride is already in progress")
	ErrNoActiveRide      = errors.New("no active ride")
	ErrRatingRequired    = errors.New("a driver rating is required")
	ErrNotCompleted      = errors.New("ride is not completed")
	ErrPaymentDeclined   = errors.New("payment was not confirmed")
)

// EventPublisher receives lifecycle events; best-effort, may be nil.
type EventPublisher interface {
	PublishRideEvent(ev models.RideEvent) error
}

// Session owns the active-ride state machine for one rider session:
// NoActiveRide -> Ongoing -> {Completed, Cancelled}, then NoActiveRide
// again once cleared. All record-store writes go through here.
type Session struct {
	mu      sync.Mutex
	store   Store
	roster  []models.Driver
	rng     *rand.Rand
	chat    *chat.Simulator
	events  EventPublisher
	quote   *models.RouteQuote
	current *models.RideRecord // most recent booked record
	ongoing bool
}

// NewSession wires a session over the shared record store. The random
// source drives driver assignment so bookings are reproducible in tests.
// An empty roster falls back to the default pool; Book always has a
// driver to assign.
func NewSession(store Store, roster []models.Driver, rng *rand.Rand, sim *chat.Simulator, events EventPublisher) *Session {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if len(roster) == 0 {
		roster = DefaultRoster()
	}
	return &Session{store: store, roster: roster, rng: rng, chat: sim, events: events}
}

// SetQuote installs the route quote in force. A later quote supersedes an
// earlier one; booked rides keep the cost they were committed with.
func (s *Session) SetQuote(q *models.RouteQuote) {
	s.mu.Lock()
	s.quote = q
	s.mu.Unlock()
}

func (s *Session) Quote() *models.RouteQuote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quote
}

// Book commits a ride: assigns a driver, fixes the cost from the quote in
// force, appends an Ongoing record and opens the chat room. Nothing is
// persisted when any precondition fails.
func (s *Session) Book(pickup, destination string, class models.RideClass) (models.RideRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pickup == "" || destination == "" || class == "" || s.quote == nil {
		return models.RideRecord{}, ErrIncompleteBooking
	}
	if s.ongoing {
		return models.RideRecord{}, ErrActiveRide
	}
	cost, err := fare.Quote(class, s.quote.DistanceKm)
	if err != nil {
		return models.RideRecord{}, ErrIncompleteBooking
	}

	driver := s.roster[s.rng.Intn(len(s.roster))]
	now := time.Now()
	rec := models.RideRecord{
		ID:          strconv.FormatInt(now.UnixNano(), 10),
		Pickup:      models.Location{PlaceName: pickup},
		Destination: models.Location{PlaceName: destination},
		RideClass:   class,
		Cost:        cost,
		Status:      models.StatusOngoing,
		CreatedAt:   now,
		Driver:      &driver,
	}
	if err := s.store.Append(&rec); err != nil {
		return models.RideRecord{}, err
	}
	s.current = &rec
	s.ongoing = true
	if s.chat != nil {
		s.chat.Join("ride-" + driver.Name)
	}
	s.publish("booked", &rec)
	observability.RidesBookedTotal.Inc()
	return rec, nil
}

// Cancel marks the active ride Cancelled and closes the chat room.
// Reports ErrNoActiveRide when nothing is ongoing; never a fatal fault.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ongoing {
		return ErrNoActiveRide
	}
	if err := s.store.UpdateLatest(func(r *models.RideRecord) {
		r.Status = models.StatusCancelled
	}); err != nil {
		return err
	}
	s.ongoing = false
	s.current.Status = models.StatusCancelled
	if s.chat != nil {
		s.chat.Leave()
	}
	s.publish("cancelled", s.current)
	observability.RidesCancelledTotal.Inc()
	s.current = nil
	return nil
}

// Complete marks the active ride Completed after a payment-success signal.
// The active-ride pointer is kept so the rider can stay on the driver/chat
// screen; Clear releases it.
func (s *Session) Complete(paid bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ongoing {
		return ErrNoActiveRide
	}
	if !paid {
		return ErrPaymentDeclined
	}
	if err := s.store.UpdateLatest(func(r *models.RideRecord) {
		r.Status = models.StatusCompleted
	}); err != nil {
		return err
	}
	s.ongoing = false
	s.current.Status = models.StatusCompleted
	s.publish("completed", s.current)
	observability.RidesCompletedTotal.Inc()
	return nil
}

// RateAndReview attaches a 1-5 rating plus feedback text to a completed
// ride. Resubmission overwrites the previous feedback for the same ride.
func (s *Session) RateAndReview(rideID string, rating int, feedback string) error {
	if rating < 1 || rating > 5 {
		return ErrRatingRequired
	}
	var wrongStatus bool
	err := s.store.UpdateByID(rideID, func(r *models.RideRecord) {
		if r.Status != models.StatusCompleted {
			wrongStatus = true
			return
		}
		r.DriverRating = rating
		r.Feedback = feedback
	})
	if err != nil {
		return err
	}
	if wrongStatus {
		return ErrNotCompleted
	}
	return nil
}

// Clear returns the session to NoActiveRide and discards the chat room.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ongoing = false
	s.current = nil
	s.quote = nil
	if s.chat != nil {
		s.chat.Leave()
	}
}

// Ongoing reports whether the session currently holds an Ongoing ride.
// A completed ride keeps Current populated but is no longer ongoing.
func (s *Session) Ongoing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ongoing
}

// Current returns a copy of the most recent booked record, if any.
func (s *Session) Current() (models.RideRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return models.RideRecord{}, false
	}
	return *s.current, true
}

func (s *Session) Chat() *chat.Simulator { return s.chat }

// History returns the store's records in append order.
func (s *Session) History() ([]models.RideRecord, error) {
	return s.store.ListAll()
}

// Completed returns rides eligible for feedback.
func (s *Session) Completed() ([]models.RideRecord, error) {
	all, err := s.store.ListAll()
	if err != nil {
		return nil, err
	}
	out := make([]models.RideRecord, 0, len(all))
	for _, r := range all {
		if r.Status == models.StatusCompleted && r.Driver != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Session) publish(event string, rec *models.RideRecord) {
	if s.events == nil {
		return
	}
	_ = s.events.PublishRideEvent(models.RideEvent{
		Event:     event,
		RideID:    rec.ID,
		Status:    rec.Status,
		Cost:      rec.Cost,
		Timestamp: time.Now(),
	})
}
