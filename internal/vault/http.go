package vault

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// readCacheMaxAge is how long read responses may be cached; the catalog
// changes only via append and removal, both rare relative to reads.
const readCacheMaxAge = "public, max-age=30"

// HTTPHandler exposes the webhook, catalog, and live endpoints.
type HTTPHandler struct {
	service       *Service
	logger        *zap.Logger
	webhookSecret string
	live          http.Handler
	router        chi.Router
}

// NewHTTPHandler constructs the HTTP handler and wires routes. live may be
// nil when the deployment runs without the websocket fan-out.
func NewHTTPHandler(service *Service, logger *zap.Logger, webhookSecret string, live http.Handler) *HTTPHandler {
	h := &HTTPHandler{
		service:       service,
		logger:        logger,
		webhookSecret: webhookSecret,
		live:          live,
	}
	h.buildRouter()
	return h
}

func (h *HTTPHandler) buildRouter() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))

	r.Get("/healthz", h.handleHealth)
	r.Post("/telegram/webhook", h.handleWebhook)
	r.Get("/api/v1/history", h.handleHistory)
	r.Get("/api/v1/files", h.handleLocators)
	r.Get("/api/v1/stats", h.handleStats)
	r.Delete("/api/v1/media", h.handleDelete)
	if h.live != nil {
		r.Get("/ws", h.live.ServeHTTP)
	}

	h.router = r
}

// Router exposes the configured chi router.
func (h *HTTPHandler) Router() http.Handler {
	return h.router
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// handleWebhook ingests an inbound transport event. It acknowledges with
// 200 even when internal processing fails: the transport must never be
// told to re-deliver, since redelivery would duplicate storage and catalog
// writes.
func (h *HTTPHandler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if h.webhookSecret != "" &&
		r.Header.Get("X-Telegram-Bot-Api-Secret-Token") != h.webhookSecret {
		writeError(w, http.StatusUnauthorized, "invalid webhook secret")
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.logger.Warn("undecodable webhook body", zap.Error(err))
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}

	if update.Message != nil {
		if _, err := h.service.Ingest(r.Context(), update.Message); err != nil {
			h.logger.Error("ingestion failed",
				zap.Int("message_id", update.Message.MessageID), zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *HTTPHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.History(r.Context())
	if err != nil {
		h.logger.Error("history failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	w.Header().Set("Cache-Control", readCacheMaxAge)
	writeJSON(w, http.StatusOK, records)
}

func (h *HTTPHandler) handleLocators(w http.ResponseWriter, r *http.Request) {
	urls, err := h.service.Locators(r.Context())
	if err != nil {
		h.logger.Error("locator listing failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "listing unavailable")
		return
	}
	w.Header().Set("Cache-Control", readCacheMaxAge)
	writeJSON(w, http.StatusOK, urls)
}

func (h *HTTPHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.logger.Error("stats failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "stats unavailable")
		return
	}
	w.Header().Set("Cache-Control", readCacheMaxAge)
	writeJSON(w, http.StatusOK, stats)
}

func (h *HTTPHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		body.URL = ""
	}
	if body.URL == "" {
		body.URL = r.URL.Query().Get("url")
	}

	result, err := h.service.Delete(r.Context(), bearerToken(r), body.URL)
	switch {
	case errors.Is(err, ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "url is required")
	case err != nil:
		h.logger.Error("deletion failed", zap.String("url", body.URL), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "deletion failed")
	default:
		writeJSON(w, http.StatusOK, result)
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error": msg,
	})
}
