// Package safety is the deterministic admission policy for relationship
// proposals. It never reads a model's self-reported confidence when
// deciding — that invariant is load-bearing, not incidental.
package safety

import "github.com/ai-roundtable/observatory/pkg/models"

// Proposal is one candidate relationship awaiting admission.
type Proposal struct {
	Type            models.RelationshipType
	SourceEntityID  string
	TargetEntityID  string
	EventID         string
	EvidenceTier    models.TrustProfile
	ModelConfidence float64 // logged by the caller only; never read below
}

// Decision is the gate's verdict plus the reason an auditor would want.
type Decision struct {
	Status models.RelationshipStatus
	Reason string
}

// Admit classifies p.Type into a risk class and applies the tier/count rule
// for that class. LOW risk is always approved. MEDIUM and HIGH risk require
// an AUTHORITATIVE source or at least 2 corroborating sources; otherwise
// the relationship is quarantined pending more evidence.
//
// ModelConfidence is intentionally never inspected here.
func Admit(p Proposal) Decision {
	risk, known := models.RiskClassOf(p.Type)
	if !known {
		return Decision{Status: models.RelationshipQuarantined, Reason: "unknown relationship type, failing closed"}
	}

	if risk == models.RiskLow {
		return Decision{Status: models.RelationshipApproved, Reason: "low risk type is always approved"}
	}

	if p.EvidenceTier.HasTier(models.TrustTierAuthoritative) || p.EvidenceTier.SourceCount >= 2 {
		return Decision{Status: models.RelationshipApproved, Reason: "authoritative source or corroborating evidence"}
	}

	return Decision{Status: models.RelationshipQuarantined, Reason: "insufficient evidence for a risky relationship type"}
}
