// Package api exposes the communication pipeline over HTTP: message
// writes, filtered reads, mark-read, full-text search, and health.
package api

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"

	"comms-hub/auth"
	"comms-hub/domain"
	"comms-hub/domain/event"
	"comms-hub/errors"
	"comms-hub/escalation"
	"comms-hub/observability"
	"comms-hub/ratelimit"
	"comms-hub/runtime/workers"
	"comms-hub/search"
	"comms-hub/store"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type Handler struct {
	log         *slog.Logger
	commLog     *store.CommLog
	limiter     *ratelimit.Limiter
	verifier    auth.Verifier
	engine      escalation.Engine
	escalations *workers.EscalationWorker
	fanout      *workers.EventFanout
	index       *search.Index
	monitoring  *observability.Monitor
	validate    *validator.Validate
	policy      Policy
}

func NewHandler(log *slog.Logger, commLog *store.CommLog, limiter *ratelimit.Limiter,
	verifier auth.Verifier, engine escalation.Engine, escalations *workers.EscalationWorker,
	fanout *workers.EventFanout, index *search.Index, monitoring *observability.Monitor,
	policy Policy) *Handler {
	return &Handler{
		log:         log,
		commLog:     commLog,
		limiter:     limiter,
		verifier:    verifier,
		engine:      engine,
		escalations: escalations,
		fanout:      fanout,
		index:       index,
		monitoring:  monitoring,
		validate:    validator.New(),
		policy:      policy,
	}
}

// Routes assembles the HTTP surface. Every route sits behind rate
// limiting; writes additionally require an authenticated caller.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /communication",
		h.rateLimited(h.policy.WriteMaxRequests, h.policy.WriteWindow,
			h.authenticated(h.handleWrite)))
	mux.HandleFunc("GET /communication",
		h.rateLimited(h.policy.ReadMaxRequests, h.policy.ReadWindow, h.handleRead))
	mux.HandleFunc("POST /communication/read",
		h.rateLimited(h.policy.WriteMaxRequests, h.policy.WriteWindow,
			h.authenticated(h.handleMarkRead)))
	mux.HandleFunc("GET /communication/search",
		h.rateLimited(h.policy.ReadMaxRequests, h.policy.ReadWindow, h.handleSearch))
	mux.HandleFunc("GET /healthz", h.handleHealthz)
	return corsMiddleware(mux)
}

type writeRequest struct {
	IncidentID string `json:"incidentId" validate:"required"`
	Message    string `json:"message" validate:"required"`
	Sender     string `json:"sender" validate:"required"`
	SenderType string `json:"senderType" validate:"required,oneof=responder dispatcher citizen"`
	Type       string `json:"type" validate:"required,oneof=voice text notification"`
}

type writeResponse struct {
	Success bool           `json:"success"`
	Log     domain.Message `json:"log"`
}

func (h *Handler) handleWrite(w http.ResponseWriter, r *http.Request) {
	var req writeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The oneof tags above already pinned the enums; parsing converts to
	// the typed values the store insists on.
	senderType, err := domain.ParseSenderType(req.SenderType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	channel, err := domain.ParseChannel(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	m, err := h.commLog.Append(req.IncidentID, req.Message, req.Sender, senderType, channel)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.monitoring.IncrMessagesLogged()
	h.fanout.Publish(event.MessageLogged{Message: m})

	if h.engine.ShouldEscalate(m) {
		h.monitoring.IncrEscalationsTriggered()
		h.escalations.Enqueue(m)
	}

	writeJSON(w, http.StatusCreated, writeResponse{Success: true, Log: m})
}

type readResponse struct {
	Logs  []domain.Message `json:"logs"`
	Total int              `json:"total"`
}

func (h *Handler) handleRead(w http.ResponseWriter, r *http.Request) {
	filter := domain.Filter{IncidentID: r.URL.Query().Get("incidentId")}

	if raw := r.URL.Query().Get("type"); raw != "" && raw != "all" {
		channel, err := domain.ParseChannel(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Channel = channel
	}

	logs, total := h.commLog.Query(filter)
	if logs == nil {
		logs = []domain.Message{}
	}
	writeJSON(w, http.StatusOK, readResponse{Logs: logs, Total: total})
}

type markReadRequest struct {
	ID string `json:"id" validate:"required"`
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	var req markReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid message id")
		return
	}
	if err := h.commLog.MarkRead(id); err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	terms := r.URL.Query().Get("q")
	if terms == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	ids, err := h.index.Search(r.Context(), terms, limit)
	if err != nil {
		h.respondError(w, err)
		return
	}

	// The index can briefly know messages the store already serves and
	// vice versa; unresolvable IDs are silently skipped.
	logs := lo.FilterMap(ids, func(id uuid.UUID, _ int) (domain.Message, bool) {
		return h.commLog.Get(id)
	})
	writeJSON(w, http.StatusOK, readResponse{Logs: logs, Total: len(logs)})
}

type healthResponse struct {
	Status          string              `json:"status"`
	LogSize         int                 `json:"log_size"`
	EscalationQueue int                 `json:"escalation_queue"`
	Stats           observability.Stats `json:"stats"`
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:          "ok",
		LogSize:         h.commLog.Len(),
		EscalationQueue: h.escalations.QueueDepth(),
		Stats:           h.monitoring.Snapshot(),
	})
}

// respondError maps the error taxonomy to HTTP statuses. Anything not
// recognized is an internal error and gets logged for operators.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case stderrors.Is(err, errors.ErrUnknownSenderType),
		stderrors.Is(err, errors.ErrUnknownChannel),
		stderrors.Is(err, errors.ErrEmptyBody):
		writeError(w, http.StatusBadRequest, err.Error())
	case stderrors.Is(err, errors.ErrMessageNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.log.Error("Internal error", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
