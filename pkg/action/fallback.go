package action

import (
	"fmt"

	"github.com/gobwas/glob"
	"github.com/playwright-community/playwright-go"
)

// Allowlist gates which fallback methods may be forwarded to the page.
// Denied patterns take precedence over allowed ones.
type Allowlist struct {
	allowedPatterns []glob.Glob
	deniedPatterns  []glob.Glob
}

// NewAllowlist compiles glob patterns for fallback method gating.
func NewAllowlist(allowed, denied []string) (*Allowlist, error) {
	al := &Allowlist{}

	for _, pattern := range allowed {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed pattern '%s': %w", pattern, err)
		}
		al.allowedPatterns = append(al.allowedPatterns, g)
	}

	for _, pattern := range denied {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid denied pattern '%s': %w", pattern, err)
		}
		al.deniedPatterns = append(al.deniedPatterns, g)
	}

	return al, nil
}

// IsAllowed returns true if the method name passes the pattern rules.
func (al *Allowlist) IsAllowed(method string) bool {
	for _, pattern := range al.deniedPatterns {
		if pattern.Match(method) {
			return false
		}
	}

	// No allowed patterns means everything not denied is allowed.
	if len(al.allowedPatterns) == 0 {
		return true
	}

	for _, pattern := range al.allowedPatterns {
		if pattern.Match(method) {
			return true
		}
	}

	return false
}

// nativeCapability forwards a request to one capability of the resolved
// locator. Arguments arrive as strings; capabilities that need one
// validate it themselves.
type nativeCapability func(loc playwright.Locator, args []string) error

// nativeCapabilities are the locator methods the fallback branch may
// invoke for request methods with no dedicated handler.
var nativeCapabilities = map[string]nativeCapability{
	"hover": func(loc playwright.Locator, _ []string) error {
		return loc.Hover()
	},
	"check": func(loc playwright.Locator, _ []string) error {
		return loc.Check()
	},
	"uncheck": func(loc playwright.Locator, _ []string) error {
		return loc.Uncheck()
	},
	"dblclick": func(loc playwright.Locator, _ []string) error {
		return loc.Dblclick()
	},
	"tap": func(loc playwright.Locator, _ []string) error {
		return loc.Tap()
	},
	"focus": func(loc playwright.Locator, _ []string) error {
		return loc.Focus()
	},
	"blur": func(loc playwright.Locator, _ []string) error {
		return loc.Blur()
	},
	"press": func(loc playwright.Locator, args []string) error {
		if len(args) == 0 || args[0] == "" {
			return fmt.Errorf("press requires a key argument")
		}
		return loc.Press(args[0])
	},
	"selectText": func(loc playwright.Locator, _ []string) error {
		return loc.SelectText()
	},
	"clear": func(loc playwright.Locator, _ []string) error {
		return loc.Clear()
	},
	"highlight": func(loc playwright.Locator, _ []string) error {
		return loc.Highlight()
	},
}

// performFallback dispatches a method outside the closed set onto a
// native locator capability, subject to the allowlist.
func (e *Executor) performFallback(req Request, loc playwright.Locator) error {
	capability, ok := nativeCapabilities[req.Method]
	if !ok {
		return commandFailed(req, "method is not supported", nil)
	}
	if !e.opts.Allowlist.IsAllowed(req.Method) {
		return commandFailed(req, "method is not permitted by the fallback policy", nil)
	}

	e.opts.Logger.Debugf("Forwarding %s to native capability", req.Method)
	if err := capability(loc, req.Args); err != nil {
		return commandFailed(req, "native capability failed", err)
	}
	return nil
}
