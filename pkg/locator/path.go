package locator

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html/atom"
)

// StepKind discriminates the three step classes found in a pseudo-XPath.
type StepKind int

const (
	// StepDOM is a plain element step, optionally ordinal-qualified.
	StepDOM StepKind = iota

	// StepFrame is a frame-owning element step. Resolution moves into the
	// document hosted by that frame.
	StepFrame

	// StepShadowHop marks a crossing into a shadow root. It is written as
	// an empty segment, i.e. "//" in the path text.
	StepShadowHop
)

// String returns a short label for logging.
func (k StepKind) String() string {
	switch k {
	case StepDOM:
		return "dom"
	case StepFrame:
		return "frame"
	case StepShadowHop:
		return "shadow-hop"
	default:
		return fmt.Sprintf("StepKind(%d)", int(k))
	}
}

// Step is one parsed path segment.
type Step struct {
	Kind StepKind

	// Raw is the original segment text including any predicate,
	// e.g. "iframe[2]" or "div[@id='main']". Empty for shadow hops.
	Raw string

	// Tag is the lowercase element name without predicate.
	Tag string

	// Index is the 1-based ordinal from a numeric [n] predicate,
	// 0 when the segment carries no ordinal.
	Index int
}

// Parse splits a pseudo-XPath into steps.
//
// The path is normalized to start with a separator before splitting.
// Empty segments produced by "//" become shadow hops. A single trailing
// empty segment, the artifact of a path ending in "/", carries no meaning
// and is dropped; any further empties are real hops and are kept so that
// resolution can reject them.
func Parse(path string) ([]Step, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("empty path")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	segments := strings.Split(path, "/")
	// segments[0] is always "" from the normalized leading separator.
	segments = segments[1:]
	if n := len(segments); n > 0 && segments[n-1] == "" {
		segments = segments[:n-1]
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("path %q has no steps", path)
	}

	steps := make([]Step, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			steps = append(steps, Step{Kind: StepShadowHop})
			continue
		}
		step, err := parseSegment(seg)
		if err != nil {
			return nil, fmt.Errorf("segment %q: %w", seg, err)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// parseSegment parses a single non-empty segment into a step.
func parseSegment(seg string) (Step, error) {
	tag := seg
	index := 0

	if i := strings.IndexByte(seg, '['); i >= 0 {
		if !strings.HasSuffix(seg, "]") {
			return Step{}, fmt.Errorf("unterminated predicate")
		}
		tag = seg[:i]
		pred := seg[i+1 : len(seg)-1]
		if pred == "" {
			return Step{}, fmt.Errorf("empty predicate")
		}
		// Numeric predicates are ordinals. Anything else (attribute
		// tests and the like) rides along in Raw and is honored by the
		// XPath renderer only.
		if n, err := strconv.Atoi(pred); err == nil {
			if n < 1 {
				return Step{}, fmt.Errorf("ordinal must be >= 1, got %d", n)
			}
			index = n
		}
	}

	if tag == "" {
		return Step{}, fmt.Errorf("missing element name")
	}
	tag = strings.ToLower(tag)

	kind := StepDOM
	if isFrameTag(tag) {
		kind = StepFrame
	}

	return Step{Kind: kind, Raw: seg, Tag: tag, Index: index}, nil
}

// isFrameTag reports whether the tag addresses a frame-owning element.
func isFrameTag(tag string) bool {
	switch atom.Lookup([]byte(tag)) {
	case atom.Iframe, atom.Frame:
		return true
	}
	return false
}
