package safety

import (
	"testing"

	"github.com/ai-roundtable/observatory/pkg/models"
	"github.com/stretchr/testify/require"
)

func TestAdmit_LowRiskAlwaysApproved(t *testing.T) {
	d := Admit(Proposal{Type: models.RelationshipReleased, EvidenceTier: models.TrustProfile{SourceCount: 0}, ModelConfidence: 0})
	require.Equal(t, models.RelationshipApproved, d.Status)
}

func TestAdmit_HighRiskRequiresAuthoritativeOrTwoSources(t *testing.T) {
	quarantined := Admit(Proposal{
		Type:            models.RelationshipAcquired,
		EvidenceTier:    models.TrustProfile{SourceCount: 1, Tiers: []models.TrustTier{models.TrustTierLow}},
		ModelConfidence: 0.99,
	})
	require.Equal(t, models.RelationshipQuarantined, quarantined.Status)

	approvedByTier := Admit(Proposal{
		Type:            models.RelationshipAcquired,
		EvidenceTier:    models.TrustProfile{SourceCount: 1, Tiers: []models.TrustTier{models.TrustTierAuthoritative}},
		ModelConfidence: 0.01,
	})
	require.Equal(t, models.RelationshipApproved, approvedByTier.Status)

	approvedByCount := Admit(Proposal{
		Type:         models.RelationshipAcquired,
		EvidenceTier: models.TrustProfile{SourceCount: 2, Tiers: []models.TrustTier{models.TrustTierLow}},
	})
	require.Equal(t, models.RelationshipApproved, approvedByCount.Status)
}

func TestAdmit_MediumRiskFollowsSameRuleAsHigh(t *testing.T) {
	quarantined := Admit(Proposal{
		Type:         models.RelationshipPartnered,
		EvidenceTier: models.TrustProfile{SourceCount: 1, Tiers: []models.TrustTier{models.TrustTierStandard}},
	})
	require.Equal(t, models.RelationshipQuarantined, quarantined.Status)

	approved := Admit(Proposal{
		Type:         models.RelationshipFunded,
		EvidenceTier: models.TrustProfile{SourceCount: 2, Tiers: []models.TrustTier{models.TrustTierStandard}},
	})
	require.Equal(t, models.RelationshipApproved, approved.Status)
}

func TestAdmit_DecisionIsInvariantUnderModelConfidence(t *testing.T) {
	base := Proposal{
		Type:         models.RelationshipAcquired,
		EvidenceTier: models.TrustProfile{SourceCount: 1, Tiers: []models.TrustTier{models.TrustTierLow}},
	}
	confidences := []float64{0, 0.01, 0.5, 0.99, 1}
	var decisions []models.RelationshipStatus
	for _, c := range confidences {
		p := base
		p.ModelConfidence = c
		decisions = append(decisions, Admit(p).Status)
	}
	for _, d := range decisions {
		require.Equal(t, decisions[0], d)
	}
}
