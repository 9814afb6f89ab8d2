// Package locator resolves cross-boundary element paths to stable
// Playwright locators.
//
// Pages are not single DOM trees: iframes nest whole documents and web
// components hide subtrees behind shadow roots, some of them closed to
// standard platform APIs. This package accepts a pseudo-XPath dialect
// that names those crossings explicitly and turns it into a locator that
// survives them.
//
// # Path Dialect
//
// Paths are slash-delimited element steps, optionally ordinal-qualified:
//
//	/div/form/input[2]
//
// A step with an iframe tag descends into the frame's document, so later
// steps address elements inside it:
//
//	/div/iframe[2]/section/button
//
// An empty segment ("//") is a shadow hop: resolution crosses from a host
// element into its shadow root and resolves the following steps there.
// Hops compose with frames and with each other:
//
//	/div/iframe[2]//combo-widget/button
//	/main//x-panel//x-item[3]
//
// # Resolution Pipeline
//
// Parse splits a path into steps. plan compiles the steps into frame
// descents, shadow crossings and a final lookup, failing fast on
// malformed hops before any page work starts. The Resolver executes the
// plan against a live page.
//
// # Shadow Crossings and Markers
//
// No native selector syntax reaches through a shadow root, so a crossing
// runs an in-page probe in the host's execution context. The probe opens
// the root (the open shadowRoot property first, the closed-root registry
// second), queries the step run as a strict child chain and again as a
// loose descendant chain, and stamps the found node with a generated
// marker attribute. The registered "shadowmark" selector engine then
// re-addresses the node from outside, walking every reachable shadow
// root. Markers are reused when a node already carries one, so repeated
// resolutions of the same path converge on the same locator.
//
// Closed roots are reachable only because BackdoorScript, installed as a
// context init script before any page script runs, wraps
// Element.prototype.attachShadow and records closed roots in a
// non-enumerable WeakMap on the window. Init scripts re-run on every
// navigation, which keeps the registry alive for each new document.
package locator
