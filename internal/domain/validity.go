package domain

import "time"

// Validity window bounds, in days.
const (
	MinValidityDays = 30
	MaxValidityDays = 90
)

// expiringSoonWindow is how close to expiry a plan has to be before the
// trainee sees a warning banner.
const expiringSoonWindowDays = 7

// ValidityStatus classifies a plan entry's expiry relative to "today".
// The classification is informational: it never blocks plan viewing or
// session execution.
type ValidityStatus string

const (
	ValidityFresh        ValidityStatus = "fresh"
	ValidityExpiringSoon ValidityStatus = "expiring_soon"
	ValidityExpired      ValidityStatus = "expired"
)

// ComputeExpiry returns the expiration date for a plan created on createdOn
// with the given validity window.
func ComputeExpiry(createdOn time.Time, validityDays int) time.Time {
	return createdOn.AddDate(0, 0, validityDays)
}

// ClassifyValidity buckets an expiry date. A nil expiry means the plan never
// expires. daysRemaining counts whole days from today to expiresOn; a plan
// expiring today is already Expired.
func ClassifyValidity(expiresOn *time.Time, today time.Time) ValidityStatus {
	if expiresOn == nil {
		return ValidityFresh
	}
	daysRemaining := daysBetween(today, *expiresOn)
	switch {
	case daysRemaining <= 0:
		return ValidityExpired
	case daysRemaining <= expiringSoonWindowDays:
		return ValidityExpiringSoon
	default:
		return ValidityFresh
	}
}

// daysBetween returns the whole calendar days from a to b, ignoring the
// time-of-day component of both.
func daysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
