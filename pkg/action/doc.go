// Package action executes semantic browser actions against elements
// addressed by cross-boundary paths.
//
// A Request names a method, a target path and string arguments. Perform
// resolves the path through the locator package, dispatches to a
// handler with bounded timeouts and semantic fallbacks (scripted click,
// combobox commit sequences, dropdown verification), then runs
// navigation detection so callers observe a settled page. Method names
// outside the dispatch table are forwarded to native capabilities of
// the resolved element, gated by a glob allowlist.
//
// Failures are classified: ClickFailed and SelectCommitFailed mark
// semantic dead ends of their handlers, CommandFailed covers policy
// denials, bad arguments and substrate errors. Resolution failures
// surface unwrapped from the locator package.
package action
