package routing

import (
	"context"
	"sync"
	"time"

	"github.com/example/ride-booking/internal/models"
)

// Debouncer coalesces rapid triggers into one call after a quiet period.
// A new trigger supersedes (not queues behind) any pending one.
type Debouncer struct {
	mu    sync.Mutex
	d     time.Duration
	timer *time.Timer
}

func NewDebouncer(d time.Duration) *Debouncer {
	return &Debouncer{d: d}
}

func (b *Debouncer) Trigger(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.d, fn)
}

// Planner re-plans the route whenever both locations are set, debounced so
// a user still typing does not burn provider calls. Results are delivered
// last-write-wins: a quote from a superseded input pair is discarded.
type Planner struct {
	resolver *Resolver
	debounce *Debouncer

	mu      sync.Mutex
	pickup  string
	dest    string
	seq     uint64
	quote   *models.RouteQuote
	OnQuote func(*models.RouteQuote)
	OnError func(error)
}

func NewPlanner(resolver *Resolver, delay time.Duration) *Planner {
	return &Planner{resolver: resolver, debounce: NewDebouncer(delay)}
}

func (p *Planner) SetPickup(name string)      { p.setInput(&p.pickup, name) }
func (p *Planner) SetDestination(name string) { p.setInput(&p.dest, name) }

func (p *Planner) setInput(field *string, name string) {
	p.mu.Lock()
	*field = name
	p.seq++
	pickup, dest, seq := p.pickup, p.dest, p.seq
	p.mu.Unlock()
	if pickup == "" || dest == "" {
		return
	}
	p.debounce.Trigger(func() { p.plan(pickup, dest, seq) })
}

func (p *Planner) plan(pickup, dest string, seq uint64) {
	q, err := p.resolver.PlanRoute(context.Background(), pickup, dest)

	p.mu.Lock()
	stale := seq != p.seq
	if !stale && err == nil {
		p.quote = q
	}
	onQuote, onErr := p.OnQuote, p.OnError
	p.mu.Unlock()
	if stale {
		return
	}
	if err != nil {
		if onErr != nil {
			onErr(err)
		}
		return
	}
	if onQuote != nil {
		onQuote(q)
	}
}

// Quote returns the latest confirmed quote, or nil when none exists.
func (p *Planner) Quote() *models.RouteQuote {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.quote
}
