package gizmo

import (
	"encoding/json"
	"fmt"
)

// testStep represents a single action in a test script.
type testStep struct {
	Action string   `json:"action"`
	Nodes  []string `json:"nodes,omitempty"`
	X      float64  `json:"x,omitempty"`
	Y      float64  `json:"y,omitempty"`
	FromX  float64  `json:"fromX,omitempty"`
	FromY  float64  `json:"fromY,omitempty"`
	ToX    float64  `json:"toX,omitempty"`
	ToY    float64  `json:"toY,omitempty"`
	Frames int      `json:"frames,omitempty"`
	Shift  bool     `json:"shift,omitempty"`
}

// testScript is the top-level JSON structure for a test script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

// TestRunner sequences selections and injected input events across frames
// for scripted editor sessions. Attach to an Editor via SetTestRunner.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
	errs      []error
}

// knownActions lists the actions a script may use.
var knownActions = map[string]bool{
	"select":   true,
	"unselect": true,
	"click":    true,
	"drag":     true,
	"wait":     true,
}

// LoadTestScript parses a JSON test script and returns a TestRunner ready
// to be attached to an Editor via SetTestRunner.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range script.Steps {
		if !knownActions[st.Action] {
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches a TestRunner to the editor. The runner's step
// method is called from Editor.Update before processInput each frame.
func (e *Editor) SetTestRunner(runner *TestRunner) {
	e.testRunner = runner
}

// Done reports whether all steps in the test script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// Errors returns the errors raised by select and unselect steps.
func (r *TestRunner) Errors() []error {
	return r.errs
}

// step advances the test runner by one frame. Called from Editor.Update.
func (r *TestRunner) step(e *Editor) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(e.injectQueue) > 0 {
		return
	}
	// Count down wait frames.
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	var mods KeyModifiers
	if st.Shift {
		mods = ModShift
	}

	switch st.Action {
	case "select":
		if err := e.Select(r.resolve(e, st.Nodes)...); err != nil {
			r.errs = append(r.errs, fmt.Errorf("step %d: %w", r.cursor-1, err))
		}
	case "unselect":
		nodes := r.resolve(e, st.Nodes)
		if len(st.Nodes) > 0 && len(nodes) == 0 {
			break
		}
		if err := e.Unselect(nodes...); err != nil {
			r.errs = append(r.errs, fmt.Errorf("step %d: %w", r.cursor-1, err))
		}
	case "click":
		e.InjectPressMods(st.X, st.Y, mods)
		e.InjectRelease(st.X, st.Y)
	case "drag":
		e.InjectDragMods(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames, mods)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	// Check if we've reached the end after executing.
	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(e.injectQueue) == 0 {
		r.done = true
	}
}

// resolve maps node names to nodes, recording unknown names as errors.
func (r *TestRunner) resolve(e *Editor, names []string) []*Node {
	nodes := make([]*Node, 0, len(names))
	for _, name := range names {
		n := e.Find(name)
		if n == nil {
			r.errs = append(r.errs, fmt.Errorf("step %d: no node named %q", r.cursor-1, name))
			continue
		}
		nodes = append(nodes, n)
	}
	return nodes
}
