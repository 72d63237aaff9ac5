package scoring

import (
	"testing"

	"github.com/ai-roundtable/observatory/pkg/models"
	"github.com/stretchr/testify/require"
)

func TestScore_MatchesSpecTable(t *testing.T) {
	cases := []struct {
		name       string
		profile    models.TrustProfile
		confidence models.Confidence
		status     models.EventStatus
	}{
		{"any authoritative tier is high", models.TrustProfile{SourceCount: 1, Tiers: []models.TrustTier{models.TrustTierAuthoritative}}, models.ConfidenceHigh, models.StatusPublished},
		{"3+ sources with standard tier is high", models.TrustProfile{SourceCount: 3, Tiers: []models.TrustTier{models.TrustTierStandard}}, models.ConfidenceHigh, models.StatusPublished},
		{"2 sources with standard tier is medium", models.TrustProfile{SourceCount: 2, Tiers: []models.TrustTier{models.TrustTierStandard}}, models.ConfidenceMedium, models.StatusPublished},
		{"2 sources low-only is medium", models.TrustProfile{SourceCount: 2, Tiers: []models.TrustTier{models.TrustTierLow}}, models.ConfidenceMedium, models.StatusPublished},
		{"1 source standard is medium", models.TrustProfile{SourceCount: 1, Tiers: []models.TrustTier{models.TrustTierStandard}}, models.ConfidenceMedium, models.StatusPublished},
		{"1 source low is low", models.TrustProfile{SourceCount: 1, Tiers: []models.TrustTier{models.TrustTierLow}}, models.ConfidenceLow, models.StatusQuarantined},
		{"0 sources is low", models.TrustProfile{SourceCount: 0}, models.ConfidenceLow, models.StatusQuarantined},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			confidence, status := Score(tc.profile)
			require.Equal(t, tc.confidence, confidence)
			require.Equal(t, tc.status, status)
		})
	}
}

func TestScore_AuthoritativeDominatesRegardlessOfCount(t *testing.T) {
	confidence, status := Score(models.TrustProfile{SourceCount: 0, Tiers: []models.TrustTier{models.TrustTierAuthoritative}})
	require.Equal(t, models.ConfidenceHigh, confidence)
	require.Equal(t, models.StatusPublished, status)
}
