package claims

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/revara-health/platform/pkg/common/logger"
	"github.com/revara-health/platform/pkg/common/models"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/claims/generate", h.handleGenerate).Methods(http.MethodPost)
	router.HandleFunc("/claims/{org}/bundle", h.handleBundle).Methods(http.MethodGet)
	router.HandleFunc("/claims/{org}/headers", h.handleHeaders).Methods(http.MethodGet)
	router.HandleFunc("/claims/{org}/summary", h.handleSummary).Methods(http.MethodGet)
	router.HandleFunc("/claims/{claimKey}/events", h.handleStatusEvent).Methods(http.MethodPost)
}

func (h *HTTPHandler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Log.WithError(err).Warn("invalid generate payload")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	bundle, err := h.service.Generate(r.Context(), req)
	if err != nil {
		if IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if IsInvariantError(err) {
			// generation aborted; dataset for this org is unavailable
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		logger.Log.WithError(err).Error("failed to generate claims bundle")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := models.GenerateResponse{
		OrganizationID:   bundle.OrganizationID,
		ClaimCount:       len(bundle.Headers),
		LineCount:        len(bundle.Lines),
		StatusCount:      len(bundle.StatusHistory),
		RemittanceCount:  len(bundle.Remittances),
		PriorAuthCount:   len(bundle.PriorAuths),
		EligibilityCount: len(bundle.Eligibility),
		Seed:             bundle.Seed,
		GeneratedAt:      bundle.GeneratedAt,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

func (h *HTTPHandler) handleBundle(w http.ResponseWriter, r *http.Request) {
	orgID := mux.Vars(r)["org"]

	bundle, err := h.service.GetBundle(r.Context(), orgID)
	if err != nil {
		if errors.Is(err, ErrBundleNotFound) {
			http.Error(w, "no dataset for organization", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to load claims bundle")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(bundle)
}

func (h *HTTPHandler) handleHeaders(w http.ResponseWriter, r *http.Request) {
	orgID := mux.Vars(r)["org"]

	filter := HeaderFilter{
		Status:     r.URL.Query().Get("status"),
		PayerName:  r.URL.Query().Get("payer"),
		Department: r.URL.Query().Get("department"),
	}
	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			http.Error(w, "invalid from date", http.StatusBadRequest)
			return
		}
		filter.From = t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			http.Error(w, "invalid to date", http.StatusBadRequest)
			return
		}
		filter.To = t
	}

	headers, err := h.service.ListHeaders(r.Context(), orgID, filter)
	if err != nil {
		logger.Log.WithError(err).Error("failed to list claim headers")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(headers)
}

func (h *HTTPHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	orgID := mux.Vars(r)["org"]

	summary, err := h.service.Summary(r.Context(), orgID)
	if err != nil {
		if errors.Is(err, ErrBundleNotFound) {
			http.Error(w, "no dataset for organization", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to compute bundle summary")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

func (h *HTTPHandler) handleStatusEvent(w http.ResponseWriter, r *http.Request) {
	claimKey := mux.Vars(r)["claimKey"]

	var req models.StatusEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Event == "" {
		http.Error(w, "event is required", http.StatusBadRequest)
		return
	}

	header, err := h.service.ApplyStatusEvent(r.Context(), claimKey, Event(req.Event), req.Actor)
	if err != nil {
		switch {
		case errors.Is(err, ErrHeaderNotFound):
			http.Error(w, "claim not found", http.StatusNotFound)
		case errors.Is(err, ErrInvalidTransition):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, ErrVersionConflict):
			http.Error(w, "claim modified concurrently, retry", http.StatusConflict)
		default:
			logger.Log.WithError(err).Error("failed to apply status event")
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(header)
}
