package locator

import (
	"errors"
	"fmt"
)

// ResolveErrorType categorizes resolution failures.
type ResolveErrorType string

const (
	// ShadowRootMissing means the host element exposed no shadow root,
	// neither through the open shadowRoot property nor through the
	// closed-root registry. Not retried.
	ShadowRootMissing ResolveErrorType = "shadow_root_missing"

	// ShadowSegmentNotFound means the shadow root was reachable but the
	// relative steps matched nothing before the timeout elapsed.
	ShadowSegmentNotFound ResolveErrorType = "shadow_segment_not_found"

	// ShadowSegmentEmpty means the path contains a shadow hop with no
	// steps inside the root it opens. The path is malformed and the
	// failure is raised before any page work happens.
	ShadowSegmentEmpty ResolveErrorType = "shadow_segment_empty"
)

// ResolveError describes why a path could not be resolved to an element.
type ResolveError struct {
	Type    ResolveErrorType
	Path    string
	Segment string
	Err     error
}

// Error implements the error interface.
func (e *ResolveError) Error() string {
	msg := fmt.Sprintf("locator resolution failed (%s): path %q", e.Type, e.Path)
	if e.Segment != "" {
		msg += fmt.Sprintf(", segment %q", e.Segment)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *ResolveError) Unwrap() error {
	return e.Err
}

// AsResolveError unwraps err as a *ResolveError.
func AsResolveError(err error) (*ResolveError, bool) {
	var re *ResolveError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
