package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fjod/order-widget/internal/catalog"
	"github.com/fjod/order-widget/internal/domain"
	"github.com/fjod/order-widget/internal/transport"
	"github.com/fjod/order-widget/internal/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	api      *httptest.Server
	intake   *httptest.Server
	client   *http.Client
	clock    *testClock
	hits     *int32
	bodies   chan string
	registry *widget.Registry
}

// setupTestEnv wires the router to a real transport client that posts to a
// fake intake endpoint answering with reply.
func setupTestEnv(t *testing.T, reply string) *testEnv {
	t.Helper()

	var hits int32
	bodies := make(chan string, 10)
	intake := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		raw, _ := io.ReadAll(r.Body)
		bodies <- string(raw)
		_, _ = w.Write([]byte(reply))
	}))

	sender, err := transport.NewClient(transport.Config{Endpoint: intake.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)

	clock := &testClock{now: time.Date(2026, 10, 16, 7, 45, 0, 0, time.UTC)}
	factory := func(id string, lang domain.Language) *widget.Widget {
		return widget.New(id, catalog.Default(), sender, lang, widget.Settings{Clock: clock.Now, Location: time.UTC})
	}
	registry := widget.NewRegistry(factory, 0)

	router := NewRouter(RouterConfig{
		RequestTimeout: 5 * time.Second,
		MaxBodySize:    1 << 20,
		Cookie:         CookieConfig{Name: "order_session"},
	}, registry, zap.NewNop())
	api := httptest.NewServer(router)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		api.Close()
		intake.Close()
		registry.Close()
	})

	return &testEnv{
		api:      api,
		intake:   intake,
		client:   &http.Client{Jar: jar},
		clock:    clock,
		hits:     &hits,
		bodies:   bodies,
		registry: registry,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, e.api.URL+path, reader)
	require.NoError(t, err)
	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// start loads the widget, which opens the session the other endpoints need.
func (e *testEnv) start(t *testing.T) {
	t.Helper()
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/v1/widget", nil, nil))
}

func TestHealth(t *testing.T) {
	env := setupTestEnv(t, "Success")

	var body map[string]string
	status := env.do(t, http.MethodGet, "/health", nil, &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, 0, env.registry.Len(), "health does not start a session")
}

func TestGetWidget_StartsSession(t *testing.T) {
	env := setupTestEnv(t, "Success")

	var resp WidgetResponseDTO
	status := env.do(t, http.MethodGet, "/api/v1/widget", nil, &resp)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, domain.LangES, resp.View.Lang)
	assert.Equal(t, domain.ThemeLight, resp.View.Theme)
	assert.Len(t, resp.View.Options, 4)
	assert.Len(t, resp.View.Extras, 6)
	assert.Empty(t, resp.View.Lines)

	env.do(t, http.MethodGet, "/api/v1/widget", nil, nil)
	assert.Equal(t, 1, env.registry.Len(), "cookie keeps the same session")
}

func TestGetWidget_AcceptLanguage(t *testing.T) {
	env := setupTestEnv(t, "Success")

	req, err := http.NewRequest(http.MethodGet, env.api.URL+"/api/v1/widget", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := env.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body WidgetResponseDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, domain.LangEN, body.View.Lang)
	assert.Equal(t, "Option 1", body.View.Options[0].Title)
}

func TestAct_AddItems(t *testing.T) {
	env := setupTestEnv(t, "Success")
	env.start(t)

	env.do(t, http.MethodPost, "/api/v1/widget/actions", ActionRequestDTO{ID: "op1", Action: "add"}, nil)

	var resp WidgetResponseDTO
	status := env.do(t, http.MethodPost, "/api/v1/widget/actions", ActionRequestDTO{ID: "ex_cafe", Action: "add"}, &resp)

	require.Equal(t, http.StatusOK, status)
	require.Len(t, resp.View.Lines, 2)
	assert.Equal(t, "$3.90", resp.View.Totals.Subtotal)
	assert.Equal(t, "$0.59", resp.View.Totals.Tax)
	assert.Equal(t, "$4.49", resp.View.Totals.Total)
	assert.Nil(t, resp.Notice)
}

func TestAct_IgnoresUnknownInput(t *testing.T) {
	env := setupTestEnv(t, "Success")
	env.start(t)

	for _, req := range []ActionRequestDTO{
		{ID: "op1", Action: "delete"},
		{ID: "<script>", Action: "add"},
		{ID: "op9", Action: "add"},
	} {
		var resp WidgetResponseDTO
		status := env.do(t, http.MethodPost, "/api/v1/widget/actions", req, &resp)
		assert.Equal(t, http.StatusOK, status)
		assert.Empty(t, resp.View.Lines)
	}
}

func TestAct_InvalidJSON(t *testing.T) {
	env := setupTestEnv(t, "Success")
	env.start(t)

	var resp ErrorResponse
	status := env.do(t, http.MethodPost, "/api/v1/widget/actions", "{not json", &resp)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_request", resp.Code)
	assert.NotEmpty(t, resp.Details)
}

func TestLanguageAndTheme(t *testing.T) {
	env := setupTestEnv(t, "Success")
	env.start(t)

	var resp WidgetResponseDTO
	env.do(t, http.MethodPost, "/api/v1/widget/language", nil, &resp)
	assert.Equal(t, domain.LangEN, resp.View.Lang)
	assert.Equal(t, "EN", resp.View.LangLabel)

	env.do(t, http.MethodPost, "/api/v1/widget/language", LanguageRequestDTO{Lang: "es"}, &resp)
	assert.Equal(t, domain.LangES, resp.View.Lang)

	var errResp ErrorResponse
	status := env.do(t, http.MethodPost, "/api/v1/widget/language", LanguageRequestDTO{Lang: "fr"}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_language", errResp.Code)
	assert.Contains(t, errResp.Details, "oneof")

	env.do(t, http.MethodPost, "/api/v1/widget/theme", nil, &resp)
	assert.Equal(t, domain.ThemeDark, resp.View.Theme)
	assert.Equal(t, "Dark", resp.View.ThemeLabel)
}

func TestSubmitOrder_EmptyCart(t *testing.T) {
	env := setupTestEnv(t, "Success")
	env.start(t)

	var resp OrderResponseDTO
	status := env.do(t, http.MethodPost, "/api/v1/orders", nil, &resp)

	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.False(t, resp.OK)
	require.NotNil(t, resp.Notice)
	assert.Equal(t, "Carrito vacío", resp.Notice.Text)
	assert.Equal(t, int32(0), atomic.LoadInt32(env.hits))
}

func TestSubmitOrder_Success(t *testing.T) {
	env := setupTestEnv(t, "Success")
	env.start(t)
	env.do(t, http.MethodPost, "/api/v1/widget/actions", ActionRequestDTO{ID: "op1", Action: "add"}, nil)
	env.do(t, http.MethodPost, "/api/v1/widget/actions", ActionRequestDTO{ID: "ex_cafe", Action: "add"}, nil)

	var resp OrderResponseDTO
	status := env.do(t, http.MethodPost, "/api/v1/orders", nil, &resp)

	require.Equal(t, http.StatusCreated, status)
	assert.True(t, resp.OK)
	assert.Equal(t, "¡Pedido enviado con éxito!", resp.Notice.Text)
	assert.Empty(t, resp.View.Lines)
	assert.False(t, resp.View.Submitting)

	var rows []domain.OrderRow
	require.NoError(t, json.Unmarshal([]byte(<-env.bodies), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Café", rows[1].Item)
	assert.Equal(t, "10/16/2026 07:45", rows[1].Timestamp)

	// cooldown from the first dispatch
	env.do(t, http.MethodPost, "/api/v1/widget/actions", ActionRequestDTO{ID: "op2", Action: "add"}, nil)
	status = env.do(t, http.MethodPost, "/api/v1/orders", nil, &resp)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "Espera un momento antes de reenviar.", resp.Notice.Text)

	env.clock.Advance(2 * time.Second)
	status = env.do(t, http.MethodPost, "/api/v1/orders", nil, &resp)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, int32(2), atomic.LoadInt32(env.hits))
}

func TestSubmitOrder_EndpointRejects(t *testing.T) {
	env := setupTestEnv(t, "Error: quota exceeded")
	env.start(t)
	env.do(t, http.MethodPost, "/api/v1/widget/actions", ActionRequestDTO{ID: "op4", Action: "add"}, nil)

	var resp OrderResponseDTO
	status := env.do(t, http.MethodPost, "/api/v1/orders", nil, &resp)

	assert.Equal(t, http.StatusBadGateway, status)
	assert.False(t, resp.OK)
	assert.Equal(t, "Error al enviar: Error: quota exceeded", resp.Notice.Text)
	assert.Len(t, resp.View.Lines, 1, "cart kept for a retry")
}

func TestSessionsAreIsolated(t *testing.T) {
	env := setupTestEnv(t, "Success")
	env.start(t)
	env.do(t, http.MethodPost, "/api/v1/widget/actions", ActionRequestDTO{ID: "op1", Action: "add"}, nil)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	other := &testEnv{api: env.api, client: &http.Client{Jar: jar}}

	var resp WidgetResponseDTO
	other.do(t, http.MethodGet, "/api/v1/widget", nil, &resp)
	assert.Empty(t, resp.View.Lines)
	assert.Equal(t, 2, env.registry.Len())
}

func TestRequestsWithoutSessionDoNotCreateOne(t *testing.T) {
	env := setupTestEnv(t, "Success")

	for _, path := range []string{"/api/v1/orders", "/api/v1/widget/actions", "/api/v1/widget/language", "/api/v1/widget/theme"} {
		var resp ErrorResponse
		status := env.do(t, http.MethodPost, path, ActionRequestDTO{ID: "op1", Action: "add"}, &resp)

		assert.Equal(t, http.StatusUnauthorized, status, path)
		assert.Equal(t, "no_session", resp.Code)
	}
	assert.Equal(t, 0, env.registry.Len())
	assert.Equal(t, int32(0), atomic.LoadInt32(env.hits))
}

func TestStaleCookieOnlyRenewedByLoadingWidget(t *testing.T) {
	env := setupTestEnv(t, "Success")
	env.start(t)

	u, err := url.Parse(env.api.URL)
	require.NoError(t, err)
	env.client.Jar.SetCookies(u, []*http.Cookie{{Name: "order_session", Value: "expired", Path: "/"}})

	status := env.do(t, http.MethodPost, "/api/v1/widget/theme", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, 1, env.registry.Len())

	env.start(t)
	assert.Equal(t, 2, env.registry.Len())
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/v1/widget/theme", nil, nil))
}

func TestPreferredLanguage(t *testing.T) {
	assert.Equal(t, domain.LangES, preferredLanguage(""))
	assert.Equal(t, domain.LangEN, preferredLanguage("en-GB"))
	assert.Equal(t, domain.LangES, preferredLanguage("es-EC,es;q=0.9,en;q=0.8"))
	assert.Equal(t, domain.LangES, preferredLanguage("fr-FR"))
	assert.Equal(t, domain.LangES, preferredLanguage(";;;"))
}
