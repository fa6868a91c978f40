package widget

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/order-widget/internal/catalog"
	"github.com/fjod/order-widget/internal/domain"
	"github.com/fjod/order-widget/internal/transport"
)

// MockSender implements Sender for testing
type MockSender struct {
	mu       sync.Mutex
	payloads [][]byte
	result   transport.Result
	err      error
	block    chan struct{}
	entered  chan struct{}
	down     bool
}

func (m *MockSender) Available() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.down
}

func (m *MockSender) SetDown(down bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.down = down
}

func (m *MockSender) Submit(ctx context.Context, payload []byte) (transport.Result, error) {
	m.mu.Lock()
	m.payloads = append(m.payloads, payload)
	block, entered := m.block, m.entered
	m.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return transport.Result{}, ctx.Err()
		}
	}
	return m.result, m.err
}

func (m *MockSender) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.payloads)
}

func (m *MockSender) LastPayload() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.payloads) == 0 {
		return ""
	}
	return string(m.payloads[len(m.payloads)-1])
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 16, 8, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func okSender() *MockSender {
	return &MockSender{result: transport.Result{Status: 200, Body: "Success"}}
}

func newTestWidget(sender Sender, clock *fakeClock) *Widget {
	return New("w1", catalog.Default(), sender, domain.LangES, Settings{
		Clock:    clock.Now,
		Location: time.UTC,
	})
}

// bigMenu lists n extras priced at one unit each.
func bigMenu(n int) *catalog.Catalog {
	extras := make([]domain.CatalogItem, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("ex_%d", i)
		extras = append(extras, domain.CatalogItem{
			ID:         id,
			Name:       domain.LocalizedText{ES: id, EN: id},
			PriceCents: 100,
		})
	}
	return catalog.New(nil, extras)
}
