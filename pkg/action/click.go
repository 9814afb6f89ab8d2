package action

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// performClick attempts a native click first, then a scripted click for
// elements the native path cannot reach (overlays, zero-size hit targets,
// hosts that swallow pointer events).
func (e *Executor) performClick(req Request, loc playwright.Locator) error {
	nativeErr := loc.Click(playwright.LocatorClickOptions{Timeout: ms(e.opts.ClickTimeout)})
	if nativeErr == nil {
		return nil
	}

	e.opts.Logger.Debugf("Native click failed, retrying with scripted click: %v", nativeErr)
	jsOpts := playwright.LocatorEvaluateOptions{Timeout: ms(e.opts.ClickTimeout)}
	if _, jsErr := loc.Evaluate("el => el.click()", nil, jsOpts); jsErr != nil {
		return &Error{
			Type:    ErrClickFailed,
			Method:  req.Method,
			Path:    req.Path,
			Args:    req.Args,
			Message: fmt.Sprintf("native click failed (%v) and scripted click failed", nativeErr),
			Err:     jsErr,
		}
	}
	return nil
}
