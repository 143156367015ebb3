package models

type BannerType string

const (
	BannerFreeTrialUpgrade          BannerType = "free-trial-upgrade"
	BannerSubscribedTrialActivation BannerType = "subscribed-trial-activation"
	BannerTrialExpired              BannerType = "trial-expired"
	BannerNone                      BannerType = "none"
)

// BannerState is the full input to the classifier. Both records are
// optional; nil means the backend has no such record for the user.
type BannerState struct {
	Subscription  *Subscription  `json:"subscription"`
	TrialProgress *TrialProgress `json:"trialProgress"`
}

// DetermineBannerType maps the current subscription and trial-progress
// records to the single banner that should be shown. Evaluation order
// doubles as the priority order when a state satisfies more than one
// condition: a trial linked to a billing subscription wins over a free
// trial.
func DetermineBannerType(state BannerState) BannerType {
	sub := state.Subscription
	trial := state.TrialProgress

	if sub != nil && sub.Status == StatusTrialing && sub.HasProcessorHandle() &&
		trial != nil && trial.IsActive {
		return BannerSubscribedTrialActivation
	}

	if sub == nil && trial != nil && trial.IsActive {
		return BannerFreeTrialUpgrade
	}

	if trial != nil && !trial.IsActive && !sub.HasProcessorHandle() {
		return BannerTrialExpired
	}

	return BannerNone
}

// DaysRemaining returns the trial countdown, or 0 when no trial-progress
// record exists.
func DaysRemaining(trial *TrialProgress) int {
	if trial == nil {
		return 0
	}
	return trial.DaysRemaining
}

// ShouldShowBanner is the visibility gate. It is deliberately decoupled
// from classification so loading and dismissal state never leak into
// DetermineBannerType.
func ShouldShowBanner(isLoading, isDismissed bool) bool {
	return !isLoading && !isDismissed
}
