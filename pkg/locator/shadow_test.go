package locator

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSSCandidates(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		wantDirect     string
		wantDescendant string
	}{
		{
			name:           "single step",
			path:           "/host//button",
			wantDirect:     ":scope > button",
			wantDescendant: "button",
		},
		{
			name:           "multi step with ordinal",
			path:           "/host//div[2]/button",
			wantDirect:     ":scope > div:nth-of-type(2) > button",
			wantDescendant: "div:nth-of-type(2) button",
		},
		{
			name:           "custom element tags",
			path:           "/host//x-list/x-item[3]",
			wantDirect:     ":scope > x-list > x-item:nth-of-type(3)",
			wantDescendant: "x-list x-item:nth-of-type(3)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops := mustPlan(t, tt.path)
			require.Len(t, ops, 1)
			require.Equal(t, opShadow, ops[0].kind)

			direct, descendant := cssCandidates(ops[0].run)
			assert.Equal(t, tt.wantDirect, direct)
			assert.Equal(t, tt.wantDescendant, descendant)
		})
	}
}

func TestNewMarkerUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		m := NewMarker()
		assert.False(t, seen[m], "marker %q generated twice", m)
		seen[m] = true
	}
}

func TestNewMarkerShape(t *testing.T) {
	m := NewMarker()

	assert.True(t, strings.HasPrefix(m, "deepact-"))
	// uuid plus a nanosecond timestamp: both components must be present.
	parts := strings.Split(m, "-")
	assert.GreaterOrEqual(t, len(parts), 7, "marker %q missing uuid or timestamp part", m)
}

func TestMarkerSelector(t *testing.T) {
	assert.Equal(t, "shadowmark=abc-123", MarkerSelector("abc-123"))
}

func TestParseProbeResult(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want probeResult
	}{
		{
			name: "found with marker",
			in:   map[string]interface{}{"status": "found", "marker": "m-1"},
			want: probeResult{status: probeFound, marker: "m-1"},
		},
		{
			name: "no root",
			in:   map[string]interface{}{"status": "no-root"},
			want: probeResult{status: probeNoRoot},
		},
		{
			name: "not found",
			in:   map[string]interface{}{"status": "not-found"},
			want: probeResult{status: probeNotFound},
		},
		{
			name: "nil result",
			in:   nil,
			want: probeResult{},
		},
		{
			name: "unexpected shape",
			in:   "boom",
			want: probeResult{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseProbeResult(tt.in))
		})
	}
}

func TestBackdoorScriptContents(t *testing.T) {
	script := BackdoorScript()

	assert.Contains(t, script, closedRootsProperty)
	assert.Contains(t, script, "attachShadow")
	assert.Contains(t, script, "WeakMap")
	assert.Contains(t, script, "enumerable: false")
	assert.Contains(t, script, "'closed'")
}

func TestMarkerEngineScriptContents(t *testing.T) {
	script := markerEngineScript()

	assert.Contains(t, script, MarkerAttribute)
	assert.Contains(t, script, closedRootsProperty)
	assert.Contains(t, script, "queryAll")
	assert.Contains(t, script, "shadowRoot")
}

func TestShadowProbeScriptContract(t *testing.T) {
	// The probe receives its inputs by name; keep script and Go side in sync.
	for _, param := range []string{"params.direct", "params.descendant", "params.marker", "params.attr", "params.registry"} {
		assert.Contains(t, shadowProbeScript, param)
	}
	for _, status := range []string{probeFound, probeNoRoot, probeNotFound} {
		assert.Contains(t, shadowProbeScript, fmt.Sprintf("'%s'", status))
	}
}

func TestResolveErrorFormatting(t *testing.T) {
	err := &ResolveError{
		Type:    ShadowSegmentNotFound,
		Path:    "/div//widget",
		Segment: "//widget",
	}

	msg := err.Error()
	assert.Contains(t, msg, "shadow_segment_not_found")
	assert.Contains(t, msg, "/div//widget")
	assert.Contains(t, msg, "//widget")
}

func TestResolveErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := &ResolveError{Type: ShadowRootMissing, Path: "/div//x", Err: cause}

	assert.ErrorIs(t, err, cause)

	re, ok := AsResolveError(fmt.Errorf("wrapped: %w", err))
	require.True(t, ok)
	assert.Equal(t, ShadowRootMissing, re.Type)
}

func TestAsResolveErrorRejectsOtherErrors(t *testing.T) {
	_, ok := AsResolveError(fmt.Errorf("plain"))
	assert.False(t, ok)
}
