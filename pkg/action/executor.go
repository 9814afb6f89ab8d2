package action

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/deepact/pkg/locator"
	"github.com/entrhq/deepact/pkg/logging"
)

// Default budgets for handlers and navigation detection.
const (
	DefaultClickTimeout  = 3500 * time.Millisecond
	DefaultSelectTimeout = 3500 * time.Millisecond
	DefaultScrollSettle  = 5 * time.Second
	DefaultRaceTimeout   = 1500 * time.Millisecond
	DefaultSettleTimeout = 30 * time.Second
	DefaultQuietWindow   = 500 * time.Millisecond
)

// Options tune the executor's budgets and policies. Zero values take
// the defaults above.
type Options struct {
	// ClickTimeout bounds the native attempt of click and the
	// individual steps of fill.
	ClickTimeout time.Duration

	// SelectTimeout bounds option matching and dropdown interaction.
	SelectTimeout time.Duration

	// ScrollSettle is the deadline for scroll stabilization.
	ScrollSettle time.Duration

	// RaceTimeout is how long to wait for a page-open event after a
	// handler before concluding nothing opened.
	RaceTimeout time.Duration

	// SettleTimeout bounds load-state and DOM-quiet waits.
	SettleTimeout time.Duration

	// QuietWindow is how long the DOM must stay still to count as
	// settled.
	QuietWindow time.Duration

	// Allowlist gates the fallback branch. Nil allows every native
	// capability.
	Allowlist *Allowlist

	Logger *logging.Logger
}

func (o Options) withDefaults() Options {
	if o.ClickTimeout <= 0 {
		o.ClickTimeout = DefaultClickTimeout
	}
	if o.SelectTimeout <= 0 {
		o.SelectTimeout = DefaultSelectTimeout
	}
	if o.ScrollSettle <= 0 {
		o.ScrollSettle = DefaultScrollSettle
	}
	if o.RaceTimeout <= 0 {
		o.RaceTimeout = DefaultRaceTimeout
	}
	if o.SettleTimeout <= 0 {
		o.SettleTimeout = DefaultSettleTimeout
	}
	if o.QuietWindow <= 0 {
		o.QuietWindow = DefaultQuietWindow
	}
	if o.Allowlist == nil {
		o.Allowlist = &Allowlist{}
	}
	if o.Logger == nil {
		o.Logger = logging.Nop()
	}
	return o
}

// Executor resolves request paths and runs the corresponding handlers
// against a single page.
type Executor struct {
	page     playwright.Page
	resolver *locator.Resolver
	watcher  *Watcher
	opts     Options
}

// NewExecutor wires an executor to a page. The watcher is created here
// so it is subscribed to the browsing context before the first action
// can open pages.
func NewExecutor(page playwright.Page, resolver *locator.Resolver, opts Options) *Executor {
	opts = opts.withDefaults()
	return &Executor{
		page:     page,
		resolver: resolver,
		watcher:  NewWatcher(page, opts),
		opts:     opts,
	}
}

// Perform executes one request end to end: resolve the path, dispatch
// the handler, then detect and settle any navigation the action caused.
// The returned Outcome always carries a message; the error classifies
// the failure for callers that branch on kind.
func (e *Executor) Perform(ctx context.Context, req Request) (Outcome, error) {
	method := ParseMethod(req.Method)
	beforeURL := e.page.URL()
	e.watcher.Drain()

	e.opts.Logger.Infof("Performing %s on %q", req.Method, req.Path)

	var res *locator.Resolution
	if req.Path != "" {
		var err error
		res, err = e.resolver.Resolve(ctx, e.page, req.Path)
		if err != nil {
			// Without an element there is nothing to act on and
			// nothing to settle.
			return failure(err), err
		}
	} else if method != MethodPressKey {
		err := commandFailed(req, "a target path is required", nil)
		return failure(err), err
	}

	description := ""
	if res != nil {
		description = e.describe(res.Locator)
	}

	err := e.dispatch(ctx, method, req, res)

	// Navigation detection runs after every handler, success or not.
	e.watcher.Settle(ctx, beforeURL)

	if err != nil {
		if _, ok := AsActionError(err); !ok {
			err = commandFailed(req, "handler failed", err)
		}
		out := failure(err)
		out.ResolvedDescription = description
		return out, err
	}

	return Outcome{
		Success:             true,
		Message:             fmt.Sprintf("%s performed successfully", req.Method),
		ResolvedDescription: description,
	}, nil
}

func (e *Executor) dispatch(ctx context.Context, method Method, req Request, res *locator.Resolution) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch method {
	case MethodClick:
		return e.performClick(req, res.Locator)
	case MethodFill:
		return e.performFill(req, res.Locator)
	case MethodSelectOption:
		return e.performSelect(req, res)
	case MethodScrollIntoView:
		return e.performScrollIntoView(res.Locator)
	case MethodScrollTo:
		return e.performScrollTo(req, res.Locator)
	case MethodNextChunk:
		return e.performChunk(res.Locator, 1)
	case MethodPrevChunk:
		return e.performChunk(res.Locator, -1)
	case MethodPressKey:
		return e.performPressKey(req)
	default:
		return e.performFallback(req, res.Locator)
	}
}

// probeBool evaluates a boolean script against the element. Probe
// failures are advisory and never abort the action.
func (e *Executor) probeBool(loc playwright.Locator, script string, arg interface{}) bool {
	result, err := loc.Evaluate(script, arg)
	if err != nil {
		e.opts.Logger.Debugf("Element probe failed: %v", err)
		return false
	}
	b, ok := result.(bool)
	return ok && b
}

// ms renders a duration as the substrate's millisecond float option.
func ms(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}
