package browser

import (
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/deepact/pkg/action"
	"github.com/entrhq/deepact/pkg/locator"
)

// Session represents an active browser session with its associated
// resources and the engine wiring for acting on its page.
type Session struct {
	// Name is the unique identifier for this session
	Name string

	// Browser is the Playwright browser instance
	Browser playwright.Browser

	// Context is the browser context (isolated session)
	Context playwright.BrowserContext

	// Page is the current active page
	Page playwright.Page

	// Resolver turns cross-boundary paths into element handles
	Resolver *locator.Resolver

	// Executor performs semantic actions against the page
	Executor *action.Executor

	// Headless indicates if the browser is running without a window
	Headless bool

	// CreatedAt is the timestamp when the session was created
	CreatedAt time.Time

	// LastUsedAt is the timestamp of the last operation on this session
	LastUsedAt time.Time

	// CurrentURL is the URL of the current page
	CurrentURL string
}

// SessionOptions configures a new browser session.
type SessionOptions struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Viewport sets the initial viewport size; nil takes the configured
	// default
	Viewport *Viewport

	// Timeout sets the page's default timeout for operations (in
	// milliseconds)
	Timeout float64
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// NavigateOptions configures page navigation behavior.
type NavigateOptions struct {
	// WaitUntil specifies when to consider navigation successful
	// Valid values: "load", "domcontentloaded", "networkidle"
	WaitUntil string

	// Timeout in milliseconds (0 means default)
	Timeout float64
}

// Default values for session management
const (
	DefaultTimeout     = 30000.0 // 30 seconds in milliseconds
	DefaultMaxLength   = 10000   // 10,000 characters of extracted text
	DefaultMaxSessions = 5
	DefaultIdleTimeout = 300 // 5 minutes in seconds
)
