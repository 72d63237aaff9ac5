// Package artifact is the single JSON-schema validation boundary every LLM
// output crosses before it is trusted: cluster judge decisions, the four
// required event artifacts, entity/topic/relationship extraction payloads,
// and both briefing shapes. Every schema lives under schemas/ and is
// embedded into the binary.
package artifact

import (
	"bytes"
	"embed"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas
var schemaFS embed.FS

// Schema names, used both as the embedded filename stem and the compiler
// resource URL.
const (
	SchemaClusterJudge         = "cluster_judge"
	SchemaHeadline              = "headline"
	SchemaWhatHappened          = "what_happened"
	SchemaSummary               = "summary"
	SchemaWhyMatters            = "why_matters"
	SchemaGMTake                = "gm_take"
	SchemaEntityExtract         = "entity_extract"
	SchemaTopicAssign           = "topic_assign"
	SchemaRelationshipExtract   = "relationship_extract"
	SchemaBriefing              = "briefing"
	SchemaBriefingLegacy        = "briefing_legacy"
)

var allSchemas = []string{
	SchemaClusterJudge,
	SchemaHeadline,
	SchemaWhatHappened,
	SchemaSummary,
	SchemaWhyMatters,
	SchemaGMTake,
	SchemaEntityExtract,
	SchemaTopicAssign,
	SchemaRelationshipExtract,
	SchemaBriefing,
	SchemaBriefingLegacy,
}

// Validator compiles every embedded schema once and validates decoded JSON
// documents against them by name.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// NewValidator compiles all embedded schemas, failing fast on any that don't
// parse — a broken schema is a build-time defect, not a runtime one.
func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()

	for _, name := range allSchemas {
		data, err := schemaFS.ReadFile("schemas/" + name + ".json")
		if err != nil {
			return nil, fmt.Errorf("artifact: read schema %q: %w", name, err)
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("artifact: parse schema %q: %w", name, err)
		}
		if err := compiler.AddResource(name, doc); err != nil {
			return nil, fmt.Errorf("artifact: add schema %q: %w", name, err)
		}
	}

	v := &Validator{schemas: make(map[string]*jsonschema.Schema, len(allSchemas))}
	for _, name := range allSchemas {
		sch, err := compiler.Compile(name)
		if err != nil {
			return nil, fmt.Errorf("artifact: compile schema %q: %w", name, err)
		}
		v.schemas[name] = sch
	}
	return v, nil
}

// Validate checks decoded JSON (the result of json.Unmarshal into any, not
// raw bytes) against the named schema.
func (v *Validator) Validate(schemaName string, doc any) error {
	sch, ok := v.schemas[schemaName]
	if !ok {
		return fmt.Errorf("artifact: unknown schema %q", schemaName)
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("artifact: %s: %w", schemaName, err)
	}
	return nil
}

// ValidateJSON unmarshals raw bytes (an LLM response body) and validates the
// result against the named schema in one step, returning the decoded value
// for callers that want to avoid unmarshalling twice.
func (v *Validator) ValidateJSON(schemaName string, raw []byte) (any, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("artifact: %s: invalid json: %w", schemaName, err)
	}
	if err := v.Validate(schemaName, doc); err != nil {
		return nil, err
	}
	return doc, nil
}
