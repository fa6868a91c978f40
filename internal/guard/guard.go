package guard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/order-widget/internal/domain"
	"go.uber.org/zap"
)

const (
	DefaultMinInterval     = 1500 * time.Millisecond
	DefaultMaxRows         = 50
	DefaultMaxPayloadBytes = 16000
)

// Limits bound what a single submission may look like.
type Limits struct {
	MinInterval     time.Duration
	MaxRows         int
	MaxPayloadBytes int
}

func DefaultLimits() Limits {
	return Limits{
		MinInterval:     DefaultMinInterval,
		MaxRows:         DefaultMaxRows,
		MaxPayloadBytes: DefaultMaxPayloadBytes,
	}
}

// Clock returns the current time. Tests swap it for a fake.
type Clock func() time.Time

// Submission is what the guard hands to the transport once every check passed.
type Submission struct {
	Rows    []domain.OrderRow
	Payload []byte
	At      time.Time
}

// Guard validates a cart before it is sent and keeps at most one
// submission in flight. The zero value is not usable; call New.
type Guard struct {
	mu       sync.Mutex
	state    domain.SubmissionState
	key      string
	limits   Limits
	now      Clock
	attempts AttemptLog
	location *time.Location
	logger   *zap.Logger
}

type Option func(*Guard)

func WithLimits(l Limits) Option {
	return func(g *Guard) { g.limits = l }
}

func WithClock(c Clock) Option {
	return func(g *Guard) { g.now = c }
}

func WithAttemptLog(a AttemptLog) Option {
	return func(g *Guard) { g.attempts = a }
}

func WithLocation(loc *time.Location) Option {
	return func(g *Guard) { g.location = loc }
}

func WithLogger(l *zap.Logger) Option {
	return func(g *Guard) { g.logger = l }
}

// New creates a guard for the session identified by key.
func New(key string, opts ...Option) *Guard {
	g := &Guard{
		state:    domain.SubmissionIdle,
		key:      key,
		limits:   DefaultLimits(),
		now:      time.Now,
		location: time.Local,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.attempts == nil {
		g.attempts = NewMemoryAttemptLog()
	}
	return g
}

func (g *Guard) State() domain.SubmissionState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// InFlight reports whether a submission is being sent.
func (g *Guard) InFlight() bool {
	return g.State() == domain.SubmissionSending
}

// Begin runs the checks in order: non-empty cart, cooldown, row count and
// payload size. The first failing check is returned and the guard goes
// back to idle. When all pass the attempt time is recorded, the guard moves
// to sending and the caller must call Finish once the transport returns.
func (g *Guard) Begin(ctx context.Context, lines []domain.CartLine, lang domain.Language) (*Submission, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != domain.SubmissionIdle {
		return nil, ErrSubmissionInFlight
	}
	g.transition(domain.SubmissionValidating)

	sub, err := g.validate(ctx, lines, lang)
	if err != nil {
		g.transition(domain.SubmissionIdle)
		g.logger.Debug("submission rejected", zap.String("session", g.key), zap.Error(err))
		return nil, err
	}

	g.transition(domain.SubmissionSending)
	return sub, nil
}

func (g *Guard) validate(ctx context.Context, lines []domain.CartLine, lang domain.Language) (*Submission, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	now := g.now()
	last, seen, err := g.attempts.LastAttempt(ctx, g.key)
	if err != nil {
		return nil, fmt.Errorf("read last attempt: %w", err)
	}
	if seen && now.Sub(last) < g.limits.MinInterval {
		return nil, ErrRetryTooSoon
	}

	rows := BuildRows(lines, lang, now, g.location)
	if len(rows) == 0 {
		return nil, ErrEmptyCart
	}
	if len(rows) > g.limits.MaxRows {
		return nil, ErrTooManyItems
	}

	payload, err := EncodeRows(rows)
	if err != nil {
		return nil, err
	}
	if len(payload) > g.limits.MaxPayloadBytes {
		return nil, ErrPayloadTooLarge
	}

	if err := g.attempts.RecordAttempt(ctx, g.key, now, g.limits.MinInterval); err != nil {
		return nil, fmt.Errorf("record attempt: %w", err)
	}

	return &Submission{Rows: rows, Payload: payload, At: now}, nil
}

// Finish releases the in-flight lock. It is safe to call when idle.
func (g *Guard) Finish() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == domain.SubmissionSending {
		g.transition(domain.SubmissionIdle)
	}
}

func (g *Guard) transition(next domain.SubmissionState) {
	if !domain.CanTransitionTo(g.state, next) {
		panic(fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, g.state, next))
	}
	g.state = next
}
