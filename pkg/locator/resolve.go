package locator

import (
	"context"
	"fmt"
	"time"

	"github.com/entrhq/deepact/pkg/logging"
	"github.com/playwright-community/playwright-go"
)

// Default resolution thresholds. Empirically chosen; override through
// Options when a page needs more headroom.
const (
	DefaultShadowTimeout = 1500 * time.Millisecond
	DefaultPollInterval  = 50 * time.Millisecond
)

// Scope is the querying surface one resolution step runs against. Pages,
// frame documents and already-resolved elements all expose the same two
// calls, which is all the executor needs.
type Scope interface {
	Locator(selector string) playwright.Locator
	FrameLocator(selector string) playwright.FrameLocator
}

type pageScope struct {
	page playwright.Page
}

func (s pageScope) Locator(selector string) playwright.Locator {
	return s.page.Locator(selector)
}

func (s pageScope) FrameLocator(selector string) playwright.FrameLocator {
	return s.page.FrameLocator(selector)
}

type frameScope struct {
	frame playwright.FrameLocator
}

func (s frameScope) Locator(selector string) playwright.Locator {
	return s.frame.Locator(selector)
}

func (s frameScope) FrameLocator(selector string) playwright.FrameLocator {
	return s.frame.FrameLocator(selector)
}

type elementScope struct {
	el playwright.Locator
}

func (s elementScope) Locator(selector string) playwright.Locator {
	return s.el.Locator(selector)
}

func (s elementScope) FrameLocator(selector string) playwright.FrameLocator {
	return s.el.FrameLocator(selector)
}

// Options tunes resolution behavior.
type Options struct {
	// ShadowTimeout bounds the resolution of one shadow segment,
	// including waiting for the host element to appear.
	ShadowTimeout time.Duration

	// PollInterval is the delay between in-page query retries while a
	// shadow segment has not matched yet.
	PollInterval time.Duration

	// Logger receives resolution traces. Defaults to a silent logger.
	Logger *logging.Logger
}

func (o Options) withDefaults() Options {
	if o.ShadowTimeout <= 0 {
		o.ShadowTimeout = DefaultShadowTimeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.Logger == nil {
		o.Logger = logging.Nop()
	}
	return o
}

// Resolver resolves pseudo-XPath paths to element locators. Stateless
// apart from its options, so one instance serves a whole session.
type Resolver struct {
	opts Options
}

// NewResolver creates a resolver with the given options.
func NewResolver(opts Options) *Resolver {
	return &Resolver{opts: opts.withDefaults()}
}

// Resolution is the product of resolving a path.
type Resolution struct {
	// Locator addresses the resolved element.
	Locator playwright.Locator

	// Scope is the document-level scope the element lives in. Follow-up
	// queries such as option lookups run against it.
	Scope Scope

	// Marker is the marker id when the element was reached through a
	// shadow boundary, empty otherwise.
	Marker string

	// Path is the original path text.
	Path string
}

// Resolve locates the element addressed by path, starting at the page's
// main document. Frame steps narrow the scope to nested documents, shadow
// hops cross into shadow roots via the marker scheme.
func (r *Resolver) Resolve(ctx context.Context, page playwright.Page, path string) (*Resolution, error) {
	steps, err := Parse(path)
	if err != nil {
		return nil, err
	}
	ops, err := plan(path, steps)
	if err != nil {
		return nil, err
	}
	return r.execute(ctx, page, path, ops)
}

func (r *Resolver) execute(ctx context.Context, page playwright.Page, path string, ops []planOp) (*Resolution, error) {
	var (
		docScope Scope = pageScope{page: page}
		scope    Scope = pageScope{page: page}
		current  playwright.Locator
		marker   string
	)

	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch op.kind {
		case opFrame:
			frame := scope.FrameLocator(op.selector).First()
			fs := frameScope{frame: frame}
			scope, docScope = fs, fs
			current, marker = nil, ""
			r.opts.Logger.Debugf("descended into frame %q", op.selector)

		case opShadow:
			host := current
			if op.selector != "" {
				host = scope.Locator(op.selector).First()
			}
			if host == nil {
				return nil, fmt.Errorf("path %q: shadow segment %q has no host", path, op.segment)
			}
			m, err := r.resolveShadowRun(ctx, host, path, op)
			if err != nil {
				return nil, err
			}
			marker = m
			current = docScope.Locator(MarkerSelector(m)).First()
			scope = elementScope{el: current}

		case opLocate:
			current = scope.Locator(op.selector).First()
			scope = elementScope{el: current}
			marker = ""
		}
	}

	if current == nil {
		return nil, fmt.Errorf("path %q resolved to no element", path)
	}

	return &Resolution{
		Locator: current,
		Scope:   docScope,
		Marker:  marker,
		Path:    path,
	}, nil
}
