package models

import (
	"encoding/json"
	"time"
)

// Persona identifies the speaker of a roundtable turn.
type Persona string

// Persona values.
const (
	PersonaGM        Persona = "GM"
	PersonaEngineer  Persona = "Engineer"
	PersonaSkeptic   Persona = "Skeptic"
)

// MoveType identifies the rhetorical function of a roundtable turn.
type MoveType string

// Move type values.
const (
	MoveSetup       MoveType = "SETUP"
	MoveTechRead    MoveType = "TECH_READ"
	MoveRiskCheck   MoveType = "RISK_CHECK"
	MoveCrossExam   MoveType = "CROSS_EXAM"
	MoveEvidence    MoveType = "EVIDENCE_CALL"
	MoveTakeaway    MoveType = "TAKEAWAY"
	MoveCut         MoveType = "CUT"
)

// RoundtableTurn is a single speaker turn in a daily briefing.
type RoundtableTurn struct {
	Persona  Persona  `json:"persona"`
	Move     MoveType `json:"move"`
	Text     string   `json:"text"`
	EventRef int      `json:"eventRef"`
}

// RoundtablePayload is the schema-validated shape of a DailyBriefing.payload.
type RoundtablePayload struct {
	Turns      []RoundtableTurn `json:"turns"`
	Prediction string           `json:"prediction"`
	Metadata   map[string]any   `json:"metadata,omitempty"`
}

// DailyBriefing is one per calendar day.
type DailyBriefing struct {
	ID          string
	Date        string // YYYY-MM-DD, unique
	Payload     json.RawMessage
	TopEventIDs []string
	CreatedAt   time.Time
}
