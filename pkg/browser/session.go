package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/deepact/pkg/action"
	"github.com/entrhq/deepact/pkg/locator"
)

// UpdateLastUsed updates the LastUsedAt timestamp to the current time.
func (s *Session) UpdateLastUsed() {
	s.LastUsedAt = time.Now()
}

// Navigate navigates the session's page to the specified URL.
func (s *Session) Navigate(url string, opts NavigateOptions) error {
	s.UpdateLastUsed()

	playwrightOpts := playwright.PageGotoOptions{}

	if opts.WaitUntil != "" {
		waitUntil := playwright.WaitUntilState(opts.WaitUntil)
		playwrightOpts.WaitUntil = &waitUntil
	}

	if opts.Timeout > 0 {
		playwrightOpts.Timeout = &opts.Timeout
	}

	_, err := s.Page.Goto(url, playwrightOpts)
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}

	s.CurrentURL = s.Page.URL()
	return nil
}

// Act performs one semantic action against the page. The outcome always
// carries a message; the error classifies the failure for callers that
// branch on kind.
func (s *Session) Act(ctx context.Context, req action.Request) (action.Outcome, error) {
	s.UpdateLastUsed()

	outcome, err := s.Executor.Perform(ctx, req)

	// Actions can navigate; keep the bookkeeping in step.
	s.CurrentURL = s.Page.URL()
	return outcome, err
}

// Resolve turns a cross-boundary path into an element handle without
// acting on it.
func (s *Session) Resolve(ctx context.Context, path string) (*locator.Resolution, error) {
	s.UpdateLastUsed()
	return s.Resolver.Resolve(ctx, s.Page, path)
}

// ExtractText returns the page's visible body text, truncated to
// maxLength characters (0 takes the default).
func (s *Session) ExtractText(maxLength int) (string, error) {
	s.UpdateLastUsed()

	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	text, err := s.Page.Locator("body").InnerText()
	if err != nil {
		return "", fmt.Errorf("text extraction failed: %w", err)
	}

	if len(text) > maxLength {
		truncated := text[:maxLength]
		warning := fmt.Sprintf("\n\n[Content truncated: %d of %d characters shown]", maxLength, len(text))
		return truncated + warning, nil
	}

	return text, nil
}

// GetMetadata returns current page metadata.
func (s *Session) GetMetadata() (map[string]string, error) {
	s.UpdateLastUsed()

	title, err := s.Page.Title()
	if err != nil {
		title = ""
	}

	return map[string]string{
		"title": title,
		"url":   s.Page.URL(),
	}, nil
}
