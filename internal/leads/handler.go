package leads

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Shravan4507/ise-elevators-website/internal/httpx"
	"github.com/Shravan4507/ise-elevators-website/internal/middleware"
	"github.com/Shravan4507/ise-elevators-website/internal/transport"
	"github.com/Shravan4507/ise-elevators-website/internal/validation"
	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

type Handler struct {
	registry *Registry
	val      *validation.Validator
	log      *slog.Logger
}

func NewHandler(registry *Registry, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{
		registry: registry,
		val:      val,
		log:      log,
	}
}

func (h *Handler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req CreateQuoteRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("quotes create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}

	if errs := h.val.Fields(validation.QuoteInput(req)); !errs.Valid() {
		log.Warn("quotes create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", errs)
		return
	}

	h.create(w, r, KindQuote, Fields{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		ElevatorType: req.ElevatorType,
		Floors:       req.Floors,
		Message:      req.Message,
	})
}

func (h *Handler) CreateEnquiry(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req CreateEnquiryRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("enquiries create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}

	if errs := h.val.Fields(validation.EnquiryInput(req)); !errs.Valid() {
		log.Warn("enquiries create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", errs)
		return
	}

	h.create(w, r, KindEnquiry, Fields{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, kind Kind, fields Fields) {
	log := h.logWithRequest(r)
	op := kind.Collection() + " create"

	service, err := h.registry.Service(kind)
	if err != nil {
		log.Error(op+": no service", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	lead, err := service.Create(ctx, fields)
	if err != nil {
		log.Error(op+": database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info(op+": ok", slog.String("lead_id", lead.ID))
	transport.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"id":      lead.ID,
	})
}

func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	kind, ok := h.kindParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	listing := h.registry.List(ctx, kind)

	log.Info("admin "+kind.Collection()+" list: ok",
		slog.Int("count", len(listing.Items)),
		slog.Bool("unavailable", listing.Unavailable),
	)
	transport.WriteJSON(w, http.StatusOK, listing)
}

func (h *Handler) AdminGetByID(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	kind, ok := h.kindParam(w, r)
	if !ok {
		return
	}
	op := "admin " + kind.Collection() + " get"

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		log.Warn(op + ": missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	lead, err := h.registry.Get(ctx, kind, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn(op+": not found", slog.String("lead_id", id))
			transport.WriteError(w, http.StatusNotFound, "lead not found", nil)
			return
		}
		log.Error(op+": database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info(op+": ok", slog.String("lead_id", id))
	transport.WriteJSON(w, http.StatusOK, lead)
}

func (h *Handler) AdminUpdateStatus(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	kind, ok := h.kindParam(w, r)
	if !ok {
		return
	}
	op := "admin " + kind.Collection() + " status"

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		log.Warn(op + ": missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	var req StatusUpdateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn(op + ": invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}

	if err := h.val.Struct(req); err != nil {
		log.Warn(op + ": validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"status": "oneof"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := Status(strings.ToLower(strings.TrimSpace(req.Status)))
	if err := h.registry.UpdateStatus(ctx, kind, id, status); err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"status": "oneof"})
			return
		}
		if errors.Is(err, ErrNotFound) {
			log.Warn(op+": not found", slog.String("lead_id", id))
			transport.WriteError(w, http.StatusNotFound, "lead not found", nil)
			return
		}
		log.Error(op+": database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info(op+": ok", slog.String("lead_id", id), slog.String("status", string(status)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"id":      id,
		"status":  status,
	})
}

func (h *Handler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	kind, ok := h.kindParam(w, r)
	if !ok {
		return
	}
	op := "admin " + kind.Collection() + " delete"

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		log.Warn(op + ": missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.registry.Delete(ctx, kind, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn(op+": not found", slog.String("lead_id", id))
			transport.WriteError(w, http.StatusNotFound, "lead not found", nil)
			return
		}
		log.Error(op+": database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info(op+": ok", slog.String("lead_id", id))
	w.WriteHeader(http.StatusNoContent)
}

type DashboardResponse struct {
	Quotes    Listing `json:"quotes"`
	Enquiries Listing `json:"enquiries"`
	Stats     Stats   `json:"stats"`
}

// AdminDashboard loads both collections concurrently and returns them with
// their counters.
func (h *Handler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	var resp DashboardResponse
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		resp.Quotes = h.registry.List(gctx, KindQuote)
		return nil
	})
	g.Go(func() error {
		resp.Enquiries = h.registry.List(gctx, KindEnquiry)
		return nil
	})
	_ = g.Wait()

	resp.Stats = Summarize(resp.Quotes.Items, resp.Enquiries.Items)

	log.Info("admin dashboard: ok", slog.Int("total", resp.Stats.Total), slog.Int("pending", resp.Stats.Pending))
	transport.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) kindParam(w http.ResponseWriter, r *http.Request) (Kind, bool) {
	kind, err := ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		h.logWithRequest(r).Warn("admin leads: unknown collection", slog.String("kind", chi.URLParam(r, "kind")))
		transport.WriteError(w, http.StatusNotFound, "unknown collection", nil)
		return "", false
	}
	return kind, true
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return h.log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
