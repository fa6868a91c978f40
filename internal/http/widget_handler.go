package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/fjod/order-widget/internal/domain"
	"github.com/fjod/order-widget/internal/guard"
	"github.com/fjod/order-widget/internal/transport"
	"github.com/fjod/order-widget/internal/view"
	"github.com/fjod/order-widget/internal/widget"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type WidgetHandler struct {
	timeout  time.Duration
	validate *validator.Validate
	logger   *zap.Logger
}

func NewWidgetHandler(timeout time.Duration, logger *zap.Logger) *WidgetHandler {
	return &WidgetHandler{
		timeout:  timeout,
		validate: newValidator(),
		logger:   logger,
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("itemid", func(fl validator.FieldLevel) bool {
		return domain.ValidItemID(fl.Field().String())
	})
	return v
}

type ActionRequestDTO struct {
	ID     string `json:"id" validate:"required,itemid"`
	Action string `json:"action" validate:"required,oneof=add rem"`
}

type LanguageRequestDTO struct {
	Lang string `json:"lang" validate:"omitempty,oneof=es en"`
}

type WidgetResponseDTO struct {
	View   view.ViewModel `json:"view"`
	Notice *widget.Notice `json:"notice,omitempty"`
}

type OrderResponseDTO struct {
	OK     bool           `json:"ok"`
	Notice *widget.Notice `json:"notice,omitempty"`
	View   view.ViewModel `json:"view"`
}

// GET /api/v1/widget
func (h *WidgetHandler) GetWidget(w http.ResponseWriter, r *http.Request) {
	wg := getWidget(r.Context())
	if wg == nil {
		respondError(w, http.StatusInternalServerError, "no_session", "session unavailable")
		return
	}
	respondJSON(w, http.StatusOK, WidgetResponseDTO{View: wg.View()})
}

// POST /api/v1/widget/actions
func (h *WidgetHandler) Act(w http.ResponseWriter, r *http.Request) {
	wg := getWidget(r.Context())
	if wg == nil {
		respondError(w, http.StatusInternalServerError, "no_session", "session unavailable")
		return
	}

	var req ActionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorDetails(w, http.StatusBadRequest, "invalid_request", "invalid JSON body", err.Error())
		return
	}

	// unknown ids and actions are ignored, not reported
	if err := h.validate.Struct(req); err != nil {
		h.logger.Debug("ignoring control press", zap.String("id", req.ID), zap.String("action", req.Action), zap.Error(err))
		respondJSON(w, http.StatusOK, WidgetResponseDTO{View: wg.View()})
		return
	}

	notice := wg.Act(req.ID, req.Action)
	respondJSON(w, http.StatusOK, WidgetResponseDTO{View: wg.View(), Notice: notice})
}

// POST /api/v1/widget/language
// An empty body toggles; {"lang":"en"} selects.
func (h *WidgetHandler) Language(w http.ResponseWriter, r *http.Request) {
	wg := getWidget(r.Context())
	if wg == nil {
		respondError(w, http.StatusInternalServerError, "no_session", "session unavailable")
		return
	}

	var req LanguageRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondErrorDetails(w, http.StatusBadRequest, "invalid_language", "lang must be es or en", err.Error())
		return
	}

	if req.Lang == "" {
		wg.ToggleLanguage()
	} else if err := wg.SetLanguage(domain.Language(req.Lang)); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_language", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, WidgetResponseDTO{View: wg.View()})
}

// POST /api/v1/widget/theme
func (h *WidgetHandler) Theme(w http.ResponseWriter, r *http.Request) {
	wg := getWidget(r.Context())
	if wg == nil {
		respondError(w, http.StatusInternalServerError, "no_session", "session unavailable")
		return
	}
	wg.ToggleTheme()
	respondJSON(w, http.StatusOK, WidgetResponseDTO{View: wg.View()})
}

// POST /api/v1/orders
func (h *WidgetHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	wg := getWidget(r.Context())
	if wg == nil {
		respondError(w, http.StatusInternalServerError, "no_session", "session unavailable")
		return
	}

	// a dispatched order is not aborted when the caller goes away
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.timeout)
	defer cancel()

	out := wg.Submit(ctx)
	if out.Err != nil {
		h.logger.Info("order not sent",
			zap.String("session", wg.ID()),
			zap.String("request_id", getRequestID(r.Context())),
			zap.Error(out.Err),
		)
	}

	respondJSON(w, orderStatus(out), OrderResponseDTO{
		OK:     out.OK,
		Notice: out.Notice,
		View:   wg.View(),
	})
}

func orderStatus(out widget.Outcome) int {
	switch {
	case out.OK:
		return http.StatusCreated
	case errors.Is(out.Err, transport.ErrBreakerOpen):
		return http.StatusServiceUnavailable
	case errors.Is(out.Err, guard.ErrRetryTooSoon):
		return http.StatusTooManyRequests
	case errors.Is(out.Err, guard.ErrSubmissionInFlight):
		return http.StatusConflict
	case errors.Is(out.Err, guard.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case guard.IsRejection(out.Err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}
