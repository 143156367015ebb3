package controllers

import (
	"epd/internal/models"
	"epd/internal/providers"
	"epd/internal/services"
	"epd/internal/vault/interfaces"
	"errors"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/gookit/validate"
	"github.com/spf13/cast"
)

const maxRequestBodySize = 1 << 20 // 1 MB

var errNotFound = errors.New("not found")

type ApiController struct {
	logger    providers.Logger
	service   services.ProfileServiceInterface
	usageLog  interfaces.UsageLogInterface
	persister interfaces.SchedulerInterface
	cache     providers.CacheProviderInterface
}

func NewApiController(logger providers.Logger, service services.ProfileServiceInterface, usageLog interfaces.UsageLogInterface, persister interfaces.SchedulerInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:    logger,
		service:   service,
		usageLog:  usageLog,
		persister: persister,
		cache:     cache,
	}
}

func getChild(r *http.Request) string {
	return r.URL.Query().Get("child")
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		if errors.Is(err, errNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

// persistNow flushes the vault so persistence failures surface to the
// caller of the mutating request instead of being noticed at the next
// scheduled save.
func (ac *ApiController) persistNow(w http.ResponseWriter) bool {
	if err := ac.persister.Persist(); err != nil {
		ac.logger.Errorf(providers.TypePost, "Persistence failed: %s", err)
		http.Error(w, "Persistence Failure", http.StatusInternalServerError)
		return false
	}
	return true
}

func (ac *ApiController) StoreProfile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload models.EmergencyProfile
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	v := validate.Struct(&payload)
	if !v.Validate() {
		http.Error(w, v.Errors.One(), http.StatusBadRequest)
		return
	}

	if err := ac.service.StoreProfile(&payload); err != nil {
		if errors.Is(err, services.ErrTooManyContacts) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !ac.persistNow(w) {
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"childId": payload.ChildID})
}

func (ac *ApiController) GetProfile(w http.ResponseWriter, r *http.Request) {
	child := getChild(r)
	if child == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	ac.serveFromCacheOrCompute(w, "profile:"+child, func() (any, error) {
		p, ok := ac.service.GetProfile(child)
		if !ok {
			return nil, errNotFound
		}
		return p, nil
	})
}

func (ac *ApiController) ListProfiles(w http.ResponseWriter, r *http.Request) {
	limit := cast.ToInt(r.URL.Query().Get("limit"))
	ac.serveFromCacheOrCompute(w, "profiles:"+cast.ToString(limit), func() (any, error) {
		profiles := ac.service.GetAllProfiles()
		if limit > 0 && len(profiles) > limit {
			profiles = profiles[:limit]
		}
		return profiles, nil
	})
}

type contactsPayload struct {
	Contacts []models.EmergencyContact `json:"contacts" validate:"required"`
}

func (ac *ApiController) UpdateContacts(w http.ResponseWriter, r *http.Request) {
	child := getChild(r)
	if child == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload contactsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	outcome, err := ac.service.UpdateContacts(child, payload.Contacts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if outcome == models.OutcomeNotFound {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if !ac.persistNow(w) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": outcome.String()})
}

func (ac *ApiController) UpdateMedicalInfo(w http.ResponseWriter, r *http.Request) {
	child := getChild(r)
	if child == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload models.MedicalInfo
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if ac.service.UpdateMedicalInfo(child, payload) == models.OutcomeNotFound {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if !ac.persistNow(w) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (ac *ApiController) RecordContactUsage(w http.ResponseWriter, r *http.Request) {
	child := getChild(r)
	contact := r.URL.Query().Get("contact")
	if child == "" || contact == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	outcome, at := ac.service.RecordContactUsage(child, contact)
	if outcome == models.OutcomeNotFound {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	ac.usageLog.Record(child, contact, at)
	if !ac.persistNow(w) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recordedAt": at})
}

func (ac *ApiController) GetUsageStats(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, "usage-stats", func() (any, error) {
		return ac.usageLog.Stats(), nil
	})
}

func (ac *ApiController) GetQRPayload(w http.ResponseWriter, r *http.Request) {
	child := getChild(r)
	if child == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	ac.serveFromCacheOrCompute(w, "qr:"+child, func() (any, error) {
		payload, ok := ac.service.QRPayload(child)
		if !ok {
			return nil, errNotFound
		}
		return payload, nil
	})
}

func (ac *ApiController) ClearAll(w http.ResponseWriter, r *http.Request) {
	ac.service.ClearAll()
	ac.usageLog.Clear()
	if !ac.persistNow(w) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
