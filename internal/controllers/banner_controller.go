package controllers

import (
	"epd/internal/models"
	"epd/internal/providers"
	"net/http"

	json "github.com/goccy/go-json"
)

// BannerController exposes the subscription banner classifier. It is
// stateless: the caller supplies whatever subscription and trial records
// it has, and gets back the single banner to show.
type BannerController struct {
	logger providers.Logger
}

type bannerRequest struct {
	Subscription  *models.Subscription  `json:"subscription"`
	TrialProgress *models.TrialProgress `json:"trialProgress"`
	IsLoading     bool                  `json:"isLoading"`
	IsDismissed   bool                  `json:"isDismissed"`
}

type bannerResponse struct {
	Banner        models.BannerType `json:"banner"`
	DaysRemaining int               `json:"daysRemaining"`
	ShowBanner    bool              `json:"showBanner"`
}

func NewBannerController(logger providers.Logger) *BannerController {
	return &BannerController{logger: logger}
}

func (bc *BannerController) Classify(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload bannerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	resp := bannerResponse{
		Banner: models.DetermineBannerType(models.BannerState{
			Subscription:  payload.Subscription,
			TrialProgress: payload.TrialProgress,
		}),
		DaysRemaining: models.DaysRemaining(payload.TrialProgress),
		ShowBanner:    models.ShouldShowBanner(payload.IsLoading, payload.IsDismissed),
	}
	writeJSON(w, http.StatusOK, resp)
}
