// Package browser manages Playwright-backed browser sessions wired for
// cross-boundary element addressing.
//
// A SessionManager owns the shared driver. Initialize registers the
// shadow marker selector engine before any context exists; StartSession
// launches an isolated browser, installs the closed-root registry init
// script ahead of page scripts, and wires a locator.Resolver and
// action.Executor to the page. Sessions expose Navigate, Act, Resolve
// and text extraction, and are reaped when idle.
package browser
