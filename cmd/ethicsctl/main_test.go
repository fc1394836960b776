package main

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const testConfig = `
logging:
  level: error
pipeline:
  plugins:
    - id: collaboration
      type: adjust
      priority: 10
      params:
        attribute: selfishness
        op: subtract
        context_key: collaboration_level
        coefficient: 0.5
    - id: flag
      type: threshold
      priority: 20
      params:
        attribute: selfishness
        threshold: 0.8
        score_above: 0
        score_below: 1
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// execute runs ethicsctl in-process against a config in a temp dir.
func execute(t *testing.T, dir string, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{
		"--config", filepath.Join(dir, "ethics.yaml"),
		"--env-file", filepath.Join(dir, ".env"),
	}, args...))
	err := cmd.Execute()
	return out.String(), err
}

type resultDoc struct {
	Action struct {
		Kind       string         `json:"kind"`
		Attributes map[string]any `json:"attributes"`
	} `json:"action"`
	Verdicts []map[string]any `json:"verdicts"`
	Failures []map[string]any `json:"failures"`
	Score    *float64         `json:"score"`
}

func TestRun_SingleAction(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ethics.yaml", testConfig)
	action := writeFile(t, dir, "action.yaml", "kind: message\ncontent: hello\nselfishness: 0.9\n")
	env := writeFile(t, dir, "context.yaml", "collaboration_level: 0.1\n")

	out, err := execute(t, dir, "", "run", "--action", action, "--context", env)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var res resultDoc
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if got := res.Action.Attributes["selfishness"].(float64); math.Abs(got-0.85) > 1e-9 {
		t.Errorf("selfishness = %v, want 0.85", got)
	}
	if res.Action.Attributes["selfishness_above"] != true {
		t.Errorf("selfishness_above = %v, want true", res.Action.Attributes["selfishness_above"])
	}
	if len(res.Verdicts) != 2 || len(res.Failures) != 0 {
		t.Errorf("verdicts = %d, failures = %d", len(res.Verdicts), len(res.Failures))
	}
	if res.Score == nil || *res.Score != 0 {
		t.Errorf("score = %v, want 0", res.Score)
	}
}

func TestRun_MissingContextIsReported(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ethics.yaml", testConfig)

	out, err := execute(t, dir, `{"kind": "message", "selfishness": 0.5}`, "run", "--action", "-")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	var res resultDoc
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(res.Failures) != 1 || res.Failures[0]["plugin_id"] != "collaboration" {
		t.Errorf("failures = %v, want one for collaboration", res.Failures)
	}
}

func TestRun_Batch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ethics.yaml", testConfig)
	batch := writeFile(t, dir, "batch.yaml", `
- action: {kind: message, selfishness: 0.9}
  context: {collaboration_level: 0.1}
- action: {kind: message, selfishness: 0.2}
  context: {collaboration_level: 0}
`)

	out, err := execute(t, dir, "", "run", "--batch", batch)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	var res []resultDoc
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("got %d results, want 2", len(res))
	}
	if res[1].Action.Attributes["selfishness_above"] != false {
		t.Errorf("second result flag = %v, want false", res[1].Action.Attributes["selfishness_above"])
	}
}

func TestRun_RequiresInput(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ethics.yaml", testConfig)
	if _, err := execute(t, dir, "", "run"); err == nil {
		t.Error("expected error without --action or --batch")
	}
}

func TestPlugins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ethics.yaml", testConfig)

	out, err := execute(t, dir, "", "plugins", "--json")
	if err != nil {
		t.Fatalf("plugins failed: %v", err)
	}
	var types []typeInfo
	if err := json.Unmarshal([]byte(out), &types); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	var names []string
	for _, ti := range types {
		names = append(names, ti.Type)
	}
	if diff := cmp.Diff([]string{"adjust", "clamp", "rewrite", "threshold"}, names); diff != "" {
		t.Errorf("plugin types mismatch (-want +got):\n%s", diff)
	}

	out, err = execute(t, dir, "", "plugins", "--loaded")
	if err != nil {
		t.Fatalf("plugins --loaded failed: %v", err)
	}
	if !strings.Contains(out, "collaboration") || !strings.Contains(out, "flag") {
		t.Errorf("loaded plugins output = %q", out)
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ethics.yaml", testConfig)

	out, err := execute(t, dir, "", "validate")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if strings.TrimSpace(out) != "valid: 2 plugins" {
		t.Errorf("output = %q", out)
	}

	writeFile(t, dir, "ethics.yaml", `
pipeline:
  plugins:
    - id: a
      type: clamp
    - id: a
      type: clamp
`)
	out, err = execute(t, dir, "", "validate")
	if err == nil {
		t.Fatal("expected duplicate identifier error")
	}
	if !strings.Contains(out, "kind=duplicate_id plugin=a") {
		t.Errorf("output = %q", out)
	}
}

func TestImportAndRunFromStore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ethics.yaml", testConfig)
	db := filepath.Join(dir, "ethics.db")

	out, err := execute(t, dir, "", "import", "--db", db)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !strings.Contains(out, "imported 2 plugins") {
		t.Errorf("import output = %q", out)
	}

	// Load the pipeline from the store instead of the config file.
	writeFile(t, dir, "ethics.yaml", "logging:\n  level: error\nstore:\n  path: "+db+"\n")
	action := writeFile(t, dir, "action.yaml", "kind: message\nselfishness: 0.9\n")
	env := writeFile(t, dir, "context.yaml", "collaboration_level: 0.1\n")

	out, err = execute(t, dir, "", "run", "--action", action, "--context", env)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	var res resultDoc
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(res.Verdicts) != 2 || res.Verdicts[0]["plugin_id"] != "collaboration" {
		t.Errorf("verdicts = %v", res.Verdicts)
	}
}

func TestImport_RejectsInvalidPlugins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ethics.yaml", "pipeline:\n  plugins:\n    - type: nope\n")
	if _, err := execute(t, dir, "", "import", "--db", filepath.Join(dir, "ethics.db")); err == nil {
		t.Error("expected error for unknown plugin type")
	}
}

func TestStream(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ethics.yaml", testConfig)

	input := `{"action": {"kind": "message", "selfishness": 0.9}, "context": {"collaboration_level": 0.1}}

not json
`
	out, err := execute(t, dir, input, "stream")
	if err != nil {
		t.Fatalf("stream failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), out)
	}
	var first, second streamResult
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatal(err)
	}
	if first.Error != "" || first.Result == nil {
		t.Errorf("first line = %+v", first)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(second.Error, "invalid request") {
		t.Errorf("second line error = %q", second.Error)
	}
}

func TestRun_PluginsFromEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ethics.yaml", testConfig)
	t.Setenv("ETHICS_PLUGINS", "bounds=clamp")

	out, err := execute(t, dir, `{"kind": "message", "selfishness": 3}`, "run", "--plugins-from-env", "--action", "-")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	var res resultDoc
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got := res.Action.Attributes["selfishness"]; got != 1.0 {
		t.Errorf("selfishness = %v, want 1", got)
	}
	if len(res.Verdicts) != 1 || res.Verdicts[0]["plugin_id"] != "bounds" {
		t.Errorf("verdicts = %v", res.Verdicts)
	}
}
