package config

import (
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/goap/domain/config"
	"github.com/felixgeelhaar/goap/domain/planning"
)

// JSONSchema represents a JSON Schema document.
type JSONSchema struct {
	Schema               string                 `json:"$schema,omitempty"`
	ID                   string                 `json:"$id,omitempty"`
	Title                string                 `json:"title,omitempty"`
	Description          string                 `json:"description,omitempty"`
	Type                 string                 `json:"type,omitempty"`
	Properties           map[string]*JSONSchema `json:"properties,omitempty"`
	Required             []string               `json:"required,omitempty"`
	Items                *JSONSchema            `json:"items,omitempty"`
	AdditionalProperties *JSONSchema            `json:"additionalProperties,omitempty"`
	Enum                 []string               `json:"enum,omitempty"`
	Default              any                    `json:"default,omitempty"`
	Minimum              *float64               `json:"minimum,omitempty"`
	ExclusiveMinimum     *float64               `json:"exclusiveMinimum,omitempty"`
	Maximum              *float64               `json:"maximum,omitempty"`
	MinItems             *int                   `json:"minItems,omitempty"`
	Ref                  string                 `json:"$ref,omitempty"`
	Definitions          map[string]*JSONSchema `json:"$defs,omitempty"`
	OneOf                []*JSONSchema          `json:"oneOf,omitempty"`
}

// GenerateSchema generates a JSON Schema for a planner configuration document.
func GenerateSchema() *JSONSchema {
	return &JSONSchema{
		Schema:      "https://json-schema.org/draft/2020-12/schema",
		ID:          "https://github.com/felixgeelhaar/goap/goap-config.schema.json",
		Title:       "Planner Configuration",
		Description: "Initial state, goals, actions and search settings for a goal-directed planner",
		Type:        "object",
		Required:    []string{"state", "goals", "actions"},
		Definitions: map[string]*JSONSchema{
			"goal": generateGoalSchema(),
		},
		Properties: map[string]*JSONSchema{
			"state": {
				Type:                 "object",
				Description:          "Initial property values; unlisted properties read as 0",
				AdditionalProperties: &JSONSchema{Type: "number"},
			},
			"goals": {
				Type:        "object",
				Description: "Goals keyed by property; a property may carry one goal or a list",
				AdditionalProperties: &JSONSchema{
					OneOf: []*JSONSchema{
						{Ref: "#/$defs/goal"},
						{Type: "array", Items: &JSONSchema{Ref: "#/$defs/goal"}, MinItems: intPtr(1)},
					},
				},
			},
			"actions": generateActionsSchema(),
			"plan":    generatePlanSchema(),
		},
	}
}

func generateGoalSchema() *JSONSchema {
	return &JSONSchema{
		Type:     "object",
		Required: []string{"target"},
		Properties: map[string]*JSONSchema{
			"target": {
				Type:        "number",
				Description: "Value the property is compared against",
			},
			"kind": {
				Type:        "string",
				Description: "Comparison used to measure the shortfall",
				Enum:        planning.KindNames(),
				Default:     config.DefaultKind,
			},
			"weight": {
				Type:        "number",
				Description: "Multiplier applied to the squared shortfall",
				Minimum:     floatPtr(0),
				Default:     config.DefaultWeight,
			},
		},
	}
}

func generateActionsSchema() *JSONSchema {
	return &JSONSchema{
		Type:        "object",
		Description: "Actions keyed by unique label",
		AdditionalProperties: &JSONSchema{
			Type:     "object",
			Required: []string{"duration"},
			Properties: map[string]*JSONSchema{
				"duration": {
					Type:             "number",
					Description:      "Cost of performing the action",
					ExclusiveMinimum: floatPtr(0),
				},
				"deltas": {
					Type:                 "object",
					Description:          "Amount added to each property",
					AdditionalProperties: &JSONSchema{Type: "number"},
				},
			},
		},
	}
}

func generatePlanSchema() *JSONSchema {
	schedule := planning.DefaultHybridSchedule()
	return &JSONSchema{
		Type:        "object",
		Description: "Search settings",
		Properties: map[string]*JSONSchema{
			"algorithm": {
				Type:    "string",
				Enum:    []string{"Traditional", "EfficiencyBased", "Efficiency", "Hybrid"},
				Default: config.DefaultAlgorithm,
			},
			"solution": {
				Type:    "string",
				Enum:    []string{"Best", "Fast"},
				Default: config.DefaultSolution,
			},
			"max_depth": {
				Type:        "integer",
				Description: "Maximum plan length",
				Minimum:     floatPtr(1),
				Default:     config.DefaultMaxDepth,
			},
			"max_steps": {
				Type:        "integer",
				Description: "Maximum node expansions; 0 means unlimited",
				Minimum:     floatPtr(0),
			},
			"hybrid": {
				Type:        "object",
				Description: "Blend schedule for the Hybrid algorithm",
				Properties: map[string]*JSONSchema{
					"alpha": {
						Type:    "number",
						Minimum: floatPtr(0),
						Maximum: floatPtr(1),
						Default: schedule.Alpha,
					},
					"knee": {
						Type:    "number",
						Minimum: floatPtr(0),
						Default: schedule.Knee,
					},
				},
			},
		},
	}
}

func floatPtr(f float64) *float64 {
	return &f
}

func intPtr(i int) *int {
	return &i
}

// SchemaJSON returns the JSON Schema as an indented JSON string.
func SchemaJSON() (string, error) {
	data, err := json.MarshalIndent(GenerateSchema(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: %v", config.ErrSchemaGenerationFailed, err)
	}
	return string(data), nil
}
