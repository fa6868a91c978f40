package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/order-widget/internal/domain"
	"github.com/fjod/order-widget/internal/widget"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	widgetKey
)

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = middleware.GetReqID(r.Context())
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// LoggerMiddleware writes one structured line per request.
func LoggerMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", getRequestID(r.Context())),
			)
		})
	}
}

type CookieConfig struct {
	Name   string
	Secure bool
}

// SessionMiddleware attaches the caller's widget to the request. With
// create set, a missing or stale cookie starts a new session; otherwise the
// request is refused with 401 so cookie-less clients cannot pile up sessions.
func SessionMiddleware(registry *widget.Registry, cookie CookieConfig, create bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(cookie.Name); err == nil {
				id = c.Value
			}

			var wg *widget.Widget
			if create {
				var created bool
				wg, created = registry.Resolve(id, preferredLanguage(r.Header.Get("Accept-Language")))
				if created {
					http.SetCookie(w, &http.Cookie{
						Name:     cookie.Name,
						Value:    wg.ID(),
						Path:     "/",
						HttpOnly: true,
						Secure:   cookie.Secure,
						SameSite: http.SameSiteLaxMode,
					})
				}
			} else {
				found, err := registry.Get(id)
				if err != nil {
					respondErrorDetails(w, http.StatusUnauthorized, "no_session", "session not found", "load the widget first")
					return
				}
				found.Touch()
				wg = found
			}

			ctx := context.WithValue(r.Context(), widgetKey, wg)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func getWidget(ctx context.Context) *widget.Widget {
	if w, ok := ctx.Value(widgetKey).(*widget.Widget); ok {
		return w
	}
	return nil
}

var supportedLanguages = []language.Tag{language.Spanish, language.English}

var languageMatcher = language.NewMatcher(supportedLanguages)

// preferredLanguage picks es or en from an Accept-Language header.
func preferredLanguage(header string) domain.Language {
	if header == "" {
		return domain.DefaultLanguage
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return domain.DefaultLanguage
	}
	_, idx, confidence := languageMatcher.Match(tags...)
	if confidence == language.No {
		return domain.DefaultLanguage
	}
	if supportedLanguages[idx] == language.English {
		return domain.LangEN
	}
	return domain.LangES
}
