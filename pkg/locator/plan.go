package locator

import (
	"fmt"
	"strings"
)

// opKind enumerates the operations a compiled plan is made of.
type opKind int

const (
	// opFrame descends into the document of the iframe addressed by the
	// buffered steps.
	opFrame opKind = iota

	// opShadow crosses a shadow boundary: locate the host, open its root
	// and resolve the step run inside it to a marker-tagged element.
	opShadow

	// opLocate resolves the remaining buffered steps to the final element.
	// Always the last op when present.
	opLocate
)

// planOp is a single resolution operation. Ops carry fully rendered
// selectors so executing a plan needs no further path interpretation.
type planOp struct {
	kind opKind

	// selector is the XPath selector for opFrame and opLocate. For
	// opShadow it locates the host element; empty means the host is the
	// element the previous op resolved.
	selector string

	// run holds the shadow-relative steps for opShadow.
	run []Step

	// segment is the raw path portion this op covers, for diagnostics.
	segment string
}

// plan compiles parsed steps into an ordered op list.
//
// DOM steps accumulate in a buffer. A frame step flushes the buffer
// (itself included) into a frame descent, except as the final step where
// it addresses the iframe element like a plain DOM step. A shadow hop
// consumes the contiguous run of DOM steps behind it: the host comes from
// the buffer, from the current element when one is already resolved, or
// from the run's first step when the hop sits directly on a document
// scope. A hop that leaves no steps to resolve inside the root is a
// malformed path and fails before any page work starts.
func plan(path string, steps []Step) ([]planOp, error) {
	var (
		ops           []planOp
		buffer        []Step
		elementScoped bool
	)

	for i := 0; i < len(steps); i++ {
		step := steps[i]
		switch step.Kind {
		case StepDOM:
			buffer = append(buffer, step)

		case StepFrame:
			buffer = append(buffer, step)
			if i == len(steps)-1 {
				// Trailing frame step: the iframe element itself is the
				// target, no descent happens.
				continue
			}
			ops = append(ops, planOp{
				kind:     opFrame,
				selector: renderXPath(buffer, elementScoped),
				segment:  rawJoin(buffer),
			})
			buffer = nil
			elementScoped = false

		case StepShadowHop:
			run := collectRun(steps, i+1)
			if len(run) == 0 && i+1 < len(steps) && steps[i+1].Kind == StepFrame {
				if i+1 == len(steps)-1 {
					// A trailing frame tag addresses the frame element
					// itself, which a CSS query inside the root can match.
					run = steps[i+1 : i+2]
				} else {
					return nil, fmt.Errorf("path %q: cannot descend into frame %q from inside a shadow segment", path, steps[i+1].Raw)
				}
			}
			consumed := len(run)
			segment := "//" + rawJoin(run)

			selector := ""
			switch {
			case len(buffer) > 0:
				selector = renderXPath(buffer, elementScoped)
			case elementScoped:
				// Host is the element the previous op resolved.
			default:
				// Hop directly on a document scope: the first run step
				// names the host in the light DOM.
				if len(run) == 0 {
					return nil, &ResolveError{Type: ShadowSegmentEmpty, Path: path, Segment: segment}
				}
				selector = renderXPath(run[:1], false)
				run = run[1:]
			}
			if len(run) == 0 {
				return nil, &ResolveError{Type: ShadowSegmentEmpty, Path: path, Segment: segment}
			}

			ops = append(ops, planOp{
				kind:     opShadow,
				selector: selector,
				run:      run,
				segment:  segment,
			})
			buffer = nil
			elementScoped = true
			i += consumed
		}
	}

	if len(buffer) > 0 {
		ops = append(ops, planOp{
			kind:     opLocate,
			selector: renderXPath(buffer, elementScoped),
			segment:  rawJoin(buffer),
		})
	}

	return ops, nil
}

// collectRun gathers the contiguous DOM steps starting at from.
func collectRun(steps []Step, from int) []Step {
	var run []Step
	for i := from; i < len(steps) && steps[i].Kind == StepDOM; i++ {
		run = append(run, steps[i])
	}
	return run
}

// renderXPath renders steps as a Playwright XPath selector. Document
// scopes render with a descendant prefix so abbreviated paths that skip
// html/body still match; element scopes render relative to the element.
func renderXPath(steps []Step, elementScoped bool) string {
	prefix := "xpath=//"
	if elementScoped {
		prefix = "xpath=.//"
	}
	return prefix + rawJoin(steps)
}

// rawJoin joins raw step texts with the path separator.
func rawJoin(steps []Step) string {
	parts := make([]string, len(steps))
	for i, s := range steps {
		parts[i] = s.Raw
	}
	return strings.Join(parts, "/")
}
