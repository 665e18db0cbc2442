package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	domainconfig "github.com/felixgeelhaar/goap/domain/config"
)

const survivalYAML = `
state:
  energy: 50
  health: 20
  num_apples: 2
goals:
  health:
    target: 100
    weight: 4
  energy:
    target: 100
actions:
  rest:
    duration: 8
    deltas: {energy: 20, health: 15}
  eat_apple:
    duration: 2
    deltas: {num_apples: -1, health: 20, energy: 5}
plan:
  algorithm: Traditional
  solution: Best
  max_depth: 10
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoader_LoadFile_YAML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "survival.yaml", survivalYAML)
	doc, err := NewLoader().LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if doc.State["energy"] != 50 {
		t.Errorf("State[energy] = %v, want 50", doc.State["energy"])
	}
	if got := doc.Goals["health"][0].EffectiveWeight(); got != 4 {
		t.Errorf("health weight = %v, want 4", got)
	}
	if got := doc.Goals["energy"][0].EffectiveWeight(); got != 1 {
		t.Errorf("energy weight = %v, want default 1", got)
	}
	if doc.Actions["eat_apple"].Deltas["num_apples"] != -1 {
		t.Errorf("eat_apple num_apples delta = %v, want -1", doc.Actions["eat_apple"].Deltas["num_apples"])
	}
	if doc.Plan.MaxDepth != 10 {
		t.Errorf("MaxDepth = %d, want 10", doc.Plan.MaxDepth)
	}
}

func TestLoader_LoadFile_JSON(t *testing.T) {
	t.Parallel()

	content := `{
  "state": {"hunger": 10},
  "goals": {"hunger": [{"target": 0, "kind": "LessThanOrEqualTo"}]},
  "actions": {"eat": {"duration": 1, "deltas": {"hunger": -5}}},
  "plan": {"solution": "Fast"}
}`
	path := writeFile(t, "config.json", content)

	doc, err := NewLoader().LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if doc.Goals["hunger"][0].EffectiveKind() != "LessThanOrEqualTo" {
		t.Errorf("kind = %q, want LessThanOrEqualTo", doc.Goals["hunger"][0].EffectiveKind())
	}
	if doc.Plan.Solution != "Fast" {
		t.Errorf("Solution = %q, want Fast", doc.Plan.Solution)
	}
}

func TestLoader_LoadFile_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tests := []struct {
		name string
		path string
		want error
	}{
		{name: "missing file", path: filepath.Join(dir, "missing.yaml"), want: domainconfig.ErrConfigNotFound},
		{name: "unsupported extension", path: writeFile(t, "config.toml", "state = {}"), want: domainconfig.ErrUnsupportedFormat},
		{name: "directory", path: dir, want: domainconfig.ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewLoader().LoadFile(tt.path)
			if !errors.Is(err, tt.want) {
				t.Errorf("LoadFile() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoader_LoadFile_Stdin(t *testing.T) {
	t.Parallel()

	loader := NewLoaderWithOptions(WithStdin(strings.NewReader(survivalYAML)))
	doc, err := loader.LoadFile(StdinPath)
	if err != nil {
		t.Fatalf("LoadFile(-) error = %v", err)
	}
	if len(doc.Actions) != 2 {
		t.Errorf("len(Actions) = %d, want 2", len(doc.Actions))
	}
}

func TestLoader_EnvExpansion(t *testing.T) {
	t.Setenv("GOAP_TEST_ENERGY", "75")

	content := strings.Replace(survivalYAML, "energy: 50", "energy: ${GOAP_TEST_ENERGY}", 1)
	doc, err := NewLoader().LoadString(content, FormatYAML)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	if doc.State["energy"] != 75 {
		t.Errorf("State[energy] = %v, want 75", doc.State["energy"])
	}
}

func TestLoader_EnvExpansionStrict(t *testing.T) {
	t.Parallel()

	content := strings.Replace(survivalYAML, "energy: 50", "energy: ${GOAP_TEST_NEVER_SET}", 1)
	loader := NewLoaderWithOptions(WithStrictEnv(true))
	if _, err := loader.LoadString(content, FormatYAML); !errors.Is(err, domainconfig.ErrMissingEnvVar) {
		t.Errorf("LoadString() error = %v, want ErrMissingEnvVar", err)
	}
}

func TestLoader_EnvExpansionDisabled(t *testing.T) {
	t.Parallel()

	content := strings.Replace(survivalYAML, "rest:", "${LABEL}:", 1)
	loader := NewLoaderWithOptions(WithEnvExpansion(false))
	doc, err := loader.LoadString(content, FormatYAML)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	if _, ok := doc.Actions["${LABEL}"]; !ok {
		t.Errorf("Actions = %v, want literal ${LABEL} label", doc.Actions)
	}
}

func TestLoader_Validation(t *testing.T) {
	t.Parallel()

	invalid := strings.Replace(survivalYAML, "duration: 8", "duration: 0", 1)

	if _, err := NewLoader().LoadString(invalid, FormatYAML); !errors.Is(err, domainconfig.ErrValidationFailed) {
		t.Errorf("LoadString() error = %v, want ErrValidationFailed", err)
	}

	loader := NewLoaderWithOptions(WithValidation(false))
	doc, err := loader.LoadString(invalid, FormatYAML)
	if err != nil {
		t.Fatalf("LoadString() without validation error = %v", err)
	}
	if doc.Actions["rest"].Duration != 0 {
		t.Errorf("rest duration = %v, want 0", doc.Actions["rest"].Duration)
	}
}

func TestLoader_DuplicateLabel(t *testing.T) {
	t.Parallel()

	content := survivalYAML + "  rest:\n    duration: 3\n"
	content = strings.Replace(content, "plan:\n  algorithm: Traditional\n  solution: Best\n  max_depth: 10\n", "", 1)
	if _, err := NewLoader().LoadString(content, FormatYAML); !errors.Is(err, domainconfig.ErrInvalidFormat) {
		t.Errorf("LoadString() error = %v, want ErrInvalidFormat", err)
	}
}

func TestLoader_DuplicateKeyJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		wantPath string
	}{
		{
			name:     "action label",
			content:  `{"goals": {"x": {"target": 3}}, "actions": {"up": {"duration": 1, "deltas": {"x": 1}}, "up": {"duration": 5, "deltas": {"x": 2}}}}`,
			wantPath: "actions.up",
		},
		{
			name:     "goal property",
			content:  `{"goals": {"x": {"target": 3}, "x": {"target": 9}}, "actions": {"up": {"duration": 1, "deltas": {"x": 1}}}}`,
			wantPath: "goals.x",
		},
		{
			name:     "delta inside action",
			content:  `{"goals": {"x": {"target": 3}}, "actions": {"up": {"duration": 1, "deltas": {"x": 1, "x": 2}}}}`,
			wantPath: "actions.up.deltas.x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewLoader().LoadString(tt.content, FormatJSON)
			if !errors.Is(err, domainconfig.ErrInvalidFormat) {
				t.Fatalf("LoadString() error = %v, want ErrInvalidFormat", err)
			}
			var errs domainconfig.ValidationErrors
			if !errors.As(err, &errs) || len(errs) != 1 {
				t.Fatalf("LoadString() error = %v, want one ValidationError", err)
			}
			if errs[0].Path != tt.wantPath || errs[0].Message != "duplicate key" {
				t.Errorf("ValidationError = %+v, want path %q", errs[0], tt.wantPath)
			}
		})
	}

	distinct := `{"goals": {"x": {"target": 3}}, "actions": {"up": {"duration": 1, "deltas": {"x": 1}}, "down": {"duration": 1, "deltas": {"x": -1}}}}`
	if _, err := NewLoader().LoadString(distinct, FormatJSON); err != nil {
		t.Errorf("LoadString() distinct labels error = %v", err)
	}
}

func TestLoader_StrictFields(t *testing.T) {
	t.Parallel()

	yamlDoc := survivalYAML + "extra: true\n"
	jsonDoc := `{"state": {}, "goals": {"x": {"target": 1}}, "actions": {"a": {"duration": 1, "deltas": {"x": 1}}}, "extra": 1}`

	strict := NewLoaderWithOptions(WithStrictFields(true))
	if _, err := strict.LoadString(yamlDoc, FormatYAML); !errors.Is(err, domainconfig.ErrInvalidFormat) {
		t.Errorf("strict YAML error = %v, want ErrInvalidFormat", err)
	}
	if _, err := strict.LoadString(jsonDoc, FormatJSON); !errors.Is(err, domainconfig.ErrInvalidFormat) {
		t.Errorf("strict JSON error = %v, want ErrInvalidFormat", err)
	}

	if _, err := NewLoader().LoadString(yamlDoc, FormatYAML); err != nil {
		t.Errorf("lenient YAML error = %v", err)
	}
	if _, err := NewLoader().LoadString(jsonDoc, FormatJSON); err != nil {
		t.Errorf("lenient JSON error = %v", err)
	}
}

func TestLoader_InvalidSyntax(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		format  Format
	}{
		{name: "yaml", content: "state: [unclosed", format: FormatYAML},
		{name: "json", content: `{"state": `, format: FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewLoader().LoadString(tt.content, tt.format)
			if !errors.Is(err, domainconfig.ErrInvalidFormat) {
				t.Errorf("LoadString() error = %v, want ErrInvalidFormat", err)
			}
		})
	}
}

func TestLoader_RequestRoundTrip(t *testing.T) {
	t.Parallel()

	doc, err := NewLoader().LoadBytes([]byte(survivalYAML), FormatYAML)
	if err != nil {
		t.Fatalf("LoadBytes() error = %v", err)
	}
	req, err := doc.Request()
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if got := req.Goals.Discontentment(req.Initial); got != 370 {
		t.Errorf("initial discontentment = %v, want 370", got)
	}
}
