// Package pipeline provides the evaluation engine.
//
// A pipeline is an ordered set of plugins. Each plugin receives the action
// as left by the plugins before it together with the caller's original
// context, and returns a verdict carrying a possibly modified action, an
// optional score and its rationale.
//
// # Ordering
//
// Plugins run in ascending priority. Plugins with the same priority run in
// the order their descriptors were registered.
//
// # Aggregation
//
// Attributes a plugin adds or changes are proposals. The configured merge
// policy decides the value the attribute takes:
//   - overwrite: the latest proposal wins (default)
//   - average: mean of every proposal made during the run
//   - weighted: mean weighted by each proposing plugin's weight
//
// Scores are combined by the score rule, sum (default) or weighted_sum.
//
// # Failures
//
// A plugin that returns an error, panics or returns no verdict is recorded
// in PipelineResult.Failures and the action passes on unchanged. When the
// caller's context ends mid-run, the remaining plugins are recorded as
// skipped failures and the result is marked partial.
//
// # Reloading
//
// Manager loads build a new Registry and replace the current one only on
// success:
//
//	m := pipeline.NewManager(pipeline.WithCatalog(catalog))
//	if err := m.LoadFromSource(ctx, src); err != nil {
//	    // previous pipeline, if any, is still active
//	}
//	result, err := m.ProcessAction(ctx, action, env)
package pipeline
