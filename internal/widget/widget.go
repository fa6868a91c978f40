package widget

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/fjod/order-widget/internal/cart"
	"github.com/fjod/order-widget/internal/catalog"
	"github.com/fjod/order-widget/internal/domain"
	"github.com/fjod/order-widget/internal/guard"
	"github.com/fjod/order-widget/internal/transport"
	"github.com/fjod/order-widget/internal/view"
	"go.uber.org/zap"
)

// Sender delivers an encoded order to the intake endpoint.
type Sender interface {
	Submit(ctx context.Context, payload []byte) (transport.Result, error)
}

// availability is implemented by senders that know, without a request,
// that the endpoint is shut off.
type availability interface {
	Available() bool
}

// Settings are shared by every widget a registry creates.
type Settings struct {
	Limits      guard.Limits
	PricePolicy cart.PricePolicy
	MaxQty      int
	Location    *time.Location
	AttemptLog  guard.AttemptLog
	Clock       guard.Clock
	Logger      *zap.Logger
}

func (s Settings) clock() guard.Clock {
	if s.Clock == nil {
		return time.Now
	}
	return s.Clock
}

func (s Settings) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// Widget is the state of one ordering session: language, theme, cart and
// the submission guard. All methods are safe for concurrent use; mutations
// are serialized by the widget lock, the network call is not.
type Widget struct {
	mu       sync.Mutex
	id       string
	lang     domain.Language
	theme    domain.Theme
	cart     *cart.Cart
	guard    *guard.Guard
	menu     *catalog.Catalog
	sender   Sender
	now      guard.Clock
	lastSeen time.Time
	logger   *zap.Logger
}

func New(id string, menu *catalog.Catalog, sender Sender, lang domain.Language, s Settings) *Widget {
	if _, ok := domain.ParseLanguage(string(lang)); !ok {
		lang = domain.DefaultLanguage
	}
	limits := s.Limits
	if limits == (guard.Limits{}) {
		limits = guard.DefaultLimits()
	}
	now := s.clock()
	logger := s.logger().With(zap.String("session", id))

	guardOpts := []guard.Option{
		guard.WithLimits(limits),
		guard.WithClock(now),
		guard.WithLogger(logger),
	}
	if s.Location != nil {
		guardOpts = append(guardOpts, guard.WithLocation(s.Location))
	}
	if s.AttemptLog != nil {
		guardOpts = append(guardOpts, guard.WithAttemptLog(s.AttemptLog))
	}

	return &Widget{
		id:       id,
		lang:     lang,
		theme:    domain.DefaultTheme,
		cart:     cart.New(cart.WithPricePolicy(s.PricePolicy), cart.WithMaxQty(s.MaxQty)),
		guard:    guard.New(id, guardOpts...),
		menu:     menu,
		sender:   sender,
		now:      now,
		lastSeen: now(),
		logger:   logger,
	}
}

func (w *Widget) ID() string {
	return w.id
}

func (w *Widget) Language() domain.Language {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lang
}

func (w *Widget) ToggleLanguage() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lang = w.lang.Toggle()
}

func (w *Widget) SetLanguage(lang domain.Language) error {
	parsed, ok := domain.ParseLanguage(string(lang))
	if !ok {
		return ErrUnknownLanguage
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lang = parsed
	return nil
}

func (w *Widget) ToggleTheme() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.theme = w.theme.Toggle()
}

// Act applies an add or remove control press. Unknown ids and actions are
// ignored. A notice is returned when the user has to be told something.
func (w *Widget) Act(id, action string) *Notice {
	if !domain.ValidItemID(id) || (action != view.ActionAdd && action != view.ActionRemove) {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	item, ok := w.resolve(id)
	if !ok {
		return nil
	}

	if action == view.ActionRemove {
		w.cart.Remove(item.ID)
		return nil
	}

	err := w.cart.Add(item)
	if errors.Is(err, cart.ErrQuantityLimitExceeded) {
		return newNotice(NoticeQuantityLimit, w.lang, w.cart.MaxQty())
	}
	if err != nil {
		w.logger.Warn("add to cart failed", zap.String("item", id), zap.Error(err))
	}
	return nil
}

// resolve looks an id up in the menu and then among the cart lines, so
// controls on a line keep working for items the menu no longer lists.
func (w *Widget) resolve(id string) (domain.CatalogItem, bool) {
	item, ok := w.menu.Lookup(id)
	if !ok {
		line, inCart := w.cart.Get(id)
		if !inCart {
			return domain.CatalogItem{}, false
		}
		item = domain.CatalogItem{ID: line.ID, Name: line.Name, PriceCents: line.PriceCents}
	}
	item.Name = item.Name.Map(stripMarkup)
	item.PriceCents = domain.SafePrice(item.PriceCents)
	return item, true
}

func stripMarkup(s string) string {
	return strings.NewReplacer("<", "", ">", "").Replace(s)
}

// View renders the current state.
func (w *Widget) View() view.ViewModel {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.viewLocked()
}

func (w *Widget) viewLocked() view.ViewModel {
	return view.Render(view.Input{
		Menu:       w.menu,
		Lines:      w.cart.Lines(),
		Lang:       w.lang,
		Theme:      w.theme,
		Submitting: w.guard.InFlight(),
	})
}

// Outcome is the result of a submit press.
type Outcome struct {
	OK     bool
	Notice *Notice
	Err    error
}

// Submit validates the cart and, when the guard allows it, sends the order.
// The cart is cleared only when the endpoint confirms the order. The guard
// is released on every path.
func (w *Widget) Submit(ctx context.Context) Outcome {
	w.mu.Lock()
	lang := w.lang
	if !w.cart.IsEmpty() && !w.senderAvailable() {
		w.mu.Unlock()
		return Outcome{Notice: newNotice(NoticeUnavailable, lang), Err: transport.ErrBreakerOpen}
	}
	sub, err := w.guard.Begin(ctx, w.cart.Lines(), lang)
	w.mu.Unlock()

	if err != nil {
		return Outcome{Notice: rejectionNotice(err, lang), Err: err}
	}
	defer w.guard.Finish()

	w.logger.Info("sending order", zap.Int("rows", len(sub.Rows)), zap.Int("bytes", len(sub.Payload)))

	if _, err := w.sender.Submit(ctx, sub.Payload); err != nil {
		w.logger.Error("order delivery failed", zap.Error(err))
		return Outcome{Notice: deliveryNotice(err, lang), Err: err}
	}

	w.mu.Lock()
	w.cart.Clear()
	w.mu.Unlock()

	w.logger.Info("order accepted", zap.Int("rows", len(sub.Rows)))
	return Outcome{OK: true, Notice: newNotice(NoticeOrderSent, lang)}
}

// senderAvailable is checked before the guard so a shut-off endpoint does
// not start the resubmit cooldown.
func (w *Widget) senderAvailable() bool {
	a, ok := w.sender.(availability)
	return !ok || a.Available()
}

func rejectionNotice(err error, lang domain.Language) *Notice {
	switch {
	case errors.Is(err, guard.ErrEmptyCart):
		return newNotice(NoticeEmptyCart, lang)
	case errors.Is(err, guard.ErrRetryTooSoon):
		return newNotice(NoticeRetryTooSoon, lang)
	case errors.Is(err, guard.ErrTooManyItems):
		return newNotice(NoticeTooManyItems, lang)
	case errors.Is(err, guard.ErrPayloadTooLarge):
		return newNotice(NoticePayloadTooBig, lang)
	case errors.Is(err, guard.ErrSubmissionInFlight):
		return newNotice(NoticeInFlight, lang)
	default:
		return newNotice(NoticeInternal, lang)
	}
}

func deliveryNotice(err error, lang domain.Language) *Notice {
	if errors.Is(err, transport.ErrBreakerOpen) {
		return newNotice(NoticeUnavailable, lang)
	}
	var de *transport.DeliveryError
	if errors.As(err, &de) {
		detail := de.Body
		if detail == "" {
			detail = noServerAnswer.In(lang)
		}
		return newNotice(NoticeDeliveryFailed, lang, detail)
	}
	return newNotice(NoticeUnreachable, lang, err.Error())
}

// Touch marks the widget as used now.
func (w *Widget) Touch() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastSeen = w.now()
}

func (w *Widget) idleSince(now time.Time) time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return now.Sub(w.lastSeen)
}

// Busy reports whether an order is being sent.
func (w *Widget) Busy() bool {
	return w.guard.InFlight()
}
