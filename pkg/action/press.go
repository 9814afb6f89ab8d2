package action

import "fmt"

// performPressKey dispatches a key press on the page-level keyboard.
// The press is global, so this is the one method that works without a
// target path.
func (e *Executor) performPressKey(req Request) error {
	key := req.Arg(0)
	if key == "" {
		return fmt.Errorf("pressKey requires a key argument")
	}
	if err := e.page.Keyboard().Press(key); err != nil {
		return fmt.Errorf("pressing key %q: %w", key, err)
	}
	return nil
}
