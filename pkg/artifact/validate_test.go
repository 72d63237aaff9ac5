package artifact

import (
	"testing"

	"github.com/ai-roundtable/observatory/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidator_CompilesAllSchemas(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)
	assert.Len(t, v.schemas, len(allSchemas))
}

func TestValidateJSON_ClusterJudgeAcceptsValidPayload(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	_, err = v.ValidateJSON(SchemaClusterJudge, []byte(`{"matchedEventId":null,"confidence":0.4,"reason":"no close candidates"}`))
	assert.NoError(t, err)
}

func TestValidateJSON_ClusterJudgeRejectsMissingField(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	_, err = v.ValidateJSON(SchemaClusterJudge, []byte(`{"confidence":0.4}`))
	assert.Error(t, err)
}

func TestValidateJSON_HeadlineRejectsTooLong(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	long := make([]byte, 200)
	for i := range long {
		long[i] = 'a'
	}
	_, err = v.ValidateJSON(SchemaHeadline, []byte(`{"text":"`+string(long)+`"}`))
	assert.Error(t, err)
}

func TestValidateRoundtableStructure_RequiresSetupOpeningAndTakeawayClosing(t *testing.T) {
	payload := models.RoundtablePayload{
		Turns: []models.RoundtableTurn{
			{Persona: models.PersonaGM, Move: models.MoveSetup, Text: "Let's begin", EventRef: 1},
			{Persona: models.PersonaEngineer, Move: models.MoveTechRead, Text: "Technically...", EventRef: 1},
			{Persona: models.PersonaSkeptic, Move: models.MoveRiskCheck, Text: "But what about...", EventRef: 1},
			{Persona: models.PersonaGM, Move: models.MoveTakeaway, Text: "In summary", EventRef: 1},
		},
		Prediction: "More of the same",
	}
	assert.NoError(t, ValidateRoundtableStructure(payload, 1))
}

func TestValidateRoundtableStructure_RejectsMissingTechRead(t *testing.T) {
	payload := models.RoundtablePayload{
		Turns: []models.RoundtableTurn{
			{Persona: models.PersonaGM, Move: models.MoveSetup, Text: "Let's begin", EventRef: 1},
			{Persona: models.PersonaSkeptic, Move: models.MoveRiskCheck, Text: "But what about...", EventRef: 1},
			{Persona: models.PersonaGM, Move: models.MoveTakeaway, Text: "In summary", EventRef: 1},
		},
		Prediction: "More of the same",
	}
	assert.Error(t, ValidateRoundtableStructure(payload, 1))
}

func TestValidateRoundtableStructure_RejectsWrongClosingMove(t *testing.T) {
	payload := models.RoundtablePayload{
		Turns: []models.RoundtableTurn{
			{Persona: models.PersonaGM, Move: models.MoveSetup, Text: "Let's begin", EventRef: 1},
			{Persona: models.PersonaEngineer, Move: models.MoveTechRead, Text: "Technically...", EventRef: 1},
			{Persona: models.PersonaSkeptic, Move: models.MoveRiskCheck, Text: "But what about...", EventRef: 1},
			{Persona: models.PersonaGM, Move: models.MoveCut, Text: "Cutting it here", EventRef: 1},
		},
		Prediction: "More of the same",
	}
	assert.Error(t, ValidateRoundtableStructure(payload, 1))
}

func TestValidateRoundtableStructure_RejectsEventRefBeyondOfferedEvents(t *testing.T) {
	payload := models.RoundtablePayload{
		Turns: []models.RoundtableTurn{
			{Persona: models.PersonaGM, Move: models.MoveSetup, Text: "Let's begin", EventRef: 1},
			{Persona: models.PersonaEngineer, Move: models.MoveTechRead, Text: "Technically...", EventRef: 2},
			{Persona: models.PersonaSkeptic, Move: models.MoveRiskCheck, Text: "But what about...", EventRef: 1},
			{Persona: models.PersonaGM, Move: models.MoveTakeaway, Text: "In summary", EventRef: 1},
		},
		Prediction: "More of the same",
	}
	assert.Error(t, ValidateRoundtableStructure(payload, 1))
}
