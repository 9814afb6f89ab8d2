package locator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// shadowProbeScript runs inside the host element's execution context. It
// opens the host's shadow root (open property first, closed-root registry
// second), tries the two candidate queries and stamps the found node with
// the marker attribute, reusing an existing stamp when present.
const shadowProbeScript = `(host, params) => {
  let root = host.shadowRoot;
  if (!root) {
    const registry = window[params.registry];
    if (registry && typeof registry.get === 'function') {
      root = registry.get(host);
    }
  }
  if (!root) {
    return { status: 'no-root' };
  }
  let el = null;
  try {
    el = root.querySelector(params.direct);
  } catch (e) {
    el = null;
  }
  if (!el) {
    try {
      el = root.querySelector(params.descendant);
    } catch (e) {
      el = null;
    }
  }
  if (!el) {
    return { status: 'not-found' };
  }
  const existing = el.getAttribute(params.attr);
  if (existing) {
    return { status: 'found', marker: existing };
  }
  el.setAttribute(params.attr, params.marker);
  return { status: 'found', marker: params.marker };
}`

// probe statuses returned by shadowProbeScript.
const (
	probeFound    = "found"
	probeNoRoot   = "no-root"
	probeNotFound = "not-found"
)

type probeResult struct {
	status string
	marker string
}

func parseProbeResult(v interface{}) probeResult {
	m, ok := v.(map[string]interface{})
	if !ok {
		return probeResult{}
	}
	var pr probeResult
	if s, ok := m["status"].(string); ok {
		pr.status = s
	}
	if s, ok := m["marker"].(string); ok {
		pr.marker = s
	}
	return pr
}

// cssCandidates renders the two query strings for a shadow step run: a
// strict child chain anchored at the root, and a loose descendant chain.
// Ordinals translate to :nth-of-type, which counts same-tag siblings the
// way a numeric XPath predicate does.
func cssCandidates(run []Step) (direct, descendant string) {
	parts := make([]string, len(run))
	for i, s := range run {
		sel := s.Tag
		if s.Index > 0 {
			sel = fmt.Sprintf("%s:nth-of-type(%d)", s.Tag, s.Index)
		}
		parts[i] = sel
	}
	direct = ":scope > " + strings.Join(parts, " > ")
	descendant = strings.Join(parts, " ")
	return direct, descendant
}

// resolveShadowRun locates the element addressed by op.run inside the
// host's shadow root and returns its marker id.
//
// A missing root fails immediately: the registry is installed before any
// page script runs, so a root that exists is visible on the first probe.
// A reachable root with no match is polled until the timeout, since the
// shadow tree may still be rendering.
func (r *Resolver) resolveShadowRun(ctx context.Context, host playwright.Locator, path string, op planOp) (string, error) {
	direct, descendant := cssCandidates(op.run)
	args := map[string]interface{}{
		"direct":     direct,
		"descendant": descendant,
		"marker":     NewMarker(),
		"attr":       MarkerAttribute,
		"registry":   closedRootsProperty,
	}

	r.opts.Logger.Debugf("shadow probe for %q: direct=%q descendant=%q", op.segment, direct, descendant)

	deadline := time.Now().Add(r.opts.ShadowTimeout)
	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return "", &ResolveError{Type: ShadowSegmentNotFound, Path: path, Segment: op.segment}
		}

		result, err := host.Evaluate(shadowProbeScript, args, playwright.LocatorEvaluateOptions{
			Timeout: playwright.Float(float64(remaining.Milliseconds()) + 1),
		})
		if err != nil {
			// The host itself could not be reached; substrate errors are
			// not part of the shadow taxonomy.
			return "", fmt.Errorf("shadow segment %q of path %q: probing host: %w", op.segment, path, err)
		}

		switch pr := parseProbeResult(result); pr.status {
		case probeFound:
			r.opts.Logger.Debugf("shadow segment %q resolved to marker %s", op.segment, pr.marker)
			return pr.marker, nil
		case probeNoRoot:
			return "", &ResolveError{Type: ShadowRootMissing, Path: path, Segment: op.segment}
		case probeNotFound:
			// Keep polling until the deadline.
		default:
			return "", fmt.Errorf("shadow segment %q of path %q: unexpected probe result %v", op.segment, path, result)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}
