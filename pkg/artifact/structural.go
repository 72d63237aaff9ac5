package artifact

import (
	"fmt"

	"github.com/ai-roundtable/observatory/pkg/models"
)

// ValidateRoundtableStructure checks the turn-order and move-coverage rules
// the JSON schema alone can't express: first turn GM/SETUP, last turn
// GM/TAKEAWAY, at least one Engineer/TECH_READ, at least one Skeptic/RISK_CHECK,
// and every turn's eventRef pointing at one of the numEvents numbered events
// offered in the prompt.
func ValidateRoundtableStructure(p models.RoundtablePayload, numEvents int) error {
	if len(p.Turns) == 0 {
		return fmt.Errorf("artifact: roundtable has no turns")
	}

	for i, turn := range p.Turns {
		if turn.EventRef < 1 || turn.EventRef > numEvents {
			return fmt.Errorf("artifact: turn %d eventRef %d out of range [1, %d]", i, turn.EventRef, numEvents)
		}
	}

	first := p.Turns[0]
	if first.Persona != models.PersonaGM || first.Move != models.MoveSetup {
		return fmt.Errorf("artifact: first turn must be GM/SETUP, got %s/%s", first.Persona, first.Move)
	}

	last := p.Turns[len(p.Turns)-1]
	if last.Persona != models.PersonaGM || last.Move != models.MoveTakeaway {
		return fmt.Errorf("artifact: last turn must be GM/TAKEAWAY, got %s/%s", last.Persona, last.Move)
	}

	var hasTechRead, hasRiskCheck bool
	for _, turn := range p.Turns {
		if turn.Persona == models.PersonaEngineer && turn.Move == models.MoveTechRead {
			hasTechRead = true
		}
		if turn.Persona == models.PersonaSkeptic && turn.Move == models.MoveRiskCheck {
			hasRiskCheck = true
		}
	}
	if !hasTechRead {
		return fmt.Errorf("artifact: roundtable missing required Engineer/TECH_READ turn")
	}
	if !hasRiskCheck {
		return fmt.Errorf("artifact: roundtable missing required Skeptic/RISK_CHECK turn")
	}

	return nil
}
