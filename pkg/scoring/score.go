// Package scoring grades an event's confidence from its evidence trust
// profile — a pure function with no I/O, unit-testable for every input
// combination the table covers.
package scoring

import "github.com/ai-roundtable/observatory/pkg/models"

// Score maps a TrustProfile to a (Confidence, Status) pair per the fixed
// table: any AUTHORITATIVE tier is HIGH regardless of count; beyond that,
// confidence rises with source count and the presence of a STANDARD tier.
// LOW confidence quarantines the event; MEDIUM and HIGH publish it.
func Score(profile models.TrustProfile) (models.Confidence, models.EventStatus) {
	confidence := confidenceFor(profile)
	status := models.StatusQuarantined
	if confidence == models.ConfidenceMedium || confidence == models.ConfidenceHigh {
		status = models.StatusPublished
	}
	return confidence, status
}

func confidenceFor(p models.TrustProfile) models.Confidence {
	switch {
	case p.HasTier(models.TrustTierAuthoritative):
		return models.ConfidenceHigh
	case p.SourceCount >= 3 && p.HasTier(models.TrustTierStandard):
		return models.ConfidenceHigh
	case p.SourceCount >= 2 && p.HasTier(models.TrustTierStandard):
		return models.ConfidenceMedium
	case p.SourceCount >= 2:
		// sourceCount >= 2, LOW-only (STANDARD already handled above).
		return models.ConfidenceMedium
	case p.SourceCount == 1 && p.HasTier(models.TrustTierStandard):
		return models.ConfidenceMedium
	case p.SourceCount == 1 && p.HasTier(models.TrustTierLow):
		return models.ConfidenceLow
	default:
		// sourceCount == 0, or any other unlisted combination.
		return models.ConfidenceLow
	}
}
