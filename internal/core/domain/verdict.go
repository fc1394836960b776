package domain

// Verdict is one plugin's output for an action/context pair.
//
// Plugins fill in Action, Score and Rationale. A verdict whose Action is
// the zero value leaves the action unchanged, so a plugin that only scores
// can return &Verdict{Score: &s}. PluginID, Priority and Changed are
// stamped by the aggregator.
type Verdict struct {
	PluginID  string   `json:"plugin_id"`
	Priority  int      `json:"priority"`
	Action    Action   `json:"action"`
	Score     *float64 `json:"score,omitempty"`
	Rationale []string `json:"rationale,omitempty"`
	Changed   bool     `json:"changed"`
}

// NewVerdict returns a verdict carrying the given action.
func NewVerdict(action Action) *Verdict {
	return &Verdict{Action: action}
}

// WithScore sets the score contribution.
func (v *Verdict) WithScore(score float64) *Verdict {
	v.Score = &score
	return v
}

// WithRationale appends human-readable reasons.
func (v *Verdict) WithRationale(reasons ...string) *Verdict {
	v.Rationale = append(v.Rationale, reasons...)
	return v
}

// PluginFailure records a plugin that could not contribute to a run.
type PluginFailure struct {
	PluginID string `json:"plugin_id"`
	Priority int    `json:"priority"`
	Message  string `json:"error"`
	Err      error  `json:"-"`
}

// PipelineResult is the aggregated outcome of one pipeline run.
type PipelineResult struct {
	// Action is the final action after every successful plugin.
	Action Action `json:"action"`

	// Verdicts are in evaluation order, one per successful plugin.
	Verdicts []Verdict `json:"verdicts"`

	// Failures are in evaluation order, one per failed or skipped plugin.
	Failures []PluginFailure `json:"failures"`

	// Score is the combined score, nil when no plugin produced one.
	Score *float64 `json:"score,omitempty"`

	// Partial is set when the run stopped early because its context ended.
	Partial bool `json:"partial,omitempty"`
}

// Failed reports whether any plugin failed.
func (r *PipelineResult) Failed() bool {
	return len(r.Failures) > 0
}

// Verdict returns the verdict of the given plugin, if it succeeded.
func (r *PipelineResult) Verdict(pluginID string) (Verdict, bool) {
	for _, v := range r.Verdicts {
		if v.PluginID == pluginID {
			return v, true
		}
	}
	return Verdict{}, false
}

// Failure returns the failure of the given plugin, if it failed.
func (r *PipelineResult) Failure(pluginID string) (PluginFailure, bool) {
	for _, f := range r.Failures {
		if f.PluginID == pluginID {
			return f, true
		}
	}
	return PluginFailure{}, false
}
