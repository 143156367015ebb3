package models

import "time"

type SubscriptionTier string

const (
	TierFree     SubscriptionTier = "free"
	TierStandard SubscriptionTier = "standard"
	TierPremium  SubscriptionTier = "premium"
)

type SubscriptionStatus string

const (
	StatusActive   SubscriptionStatus = "active"
	StatusTrialing SubscriptionStatus = "trialing"
	StatusPastDue  SubscriptionStatus = "past_due"
	StatusCanceled SubscriptionStatus = "canceled"
	StatusUnpaid   SubscriptionStatus = "unpaid"
)

// Subscription mirrors the billing record as last seen from the
// processor. ProcessorSubscriptionID is the opaque external handle; it
// is empty until the user actually links a paid subscription.
type Subscription struct {
	Tier                    SubscriptionTier   `json:"tier"`
	Status                  SubscriptionStatus `json:"status"`
	ProcessorSubscriptionID string             `json:"processorSubscriptionId"`
	TrialStart              *time.Time         `json:"trialStart"`
	TrialEnd                *time.Time         `json:"trialEnd"`
}

// HasProcessorHandle reports whether the subscription is linked to a
// record in the external billing processor.
func (s *Subscription) HasProcessorHandle() bool {
	return s != nil && s.ProcessorSubscriptionID != ""
}

// TrialProgress tracks the free-trial countdown independently of any
// billing record.
type TrialProgress struct {
	IsActive        bool `json:"isActive"`
	DaysRemaining   int  `json:"daysRemaining"`
	ConvertedToPaid bool `json:"convertedToPaid"`
	Canceled        bool `json:"canceled"`
}
