package action

// Request is the input contract from the decision layer: a semantic
// method name, the pseudo-XPath of the target and string arguments.
type Request struct {
	Method string   `json:"method"`
	Path   string   `json:"path"`
	Args   []string `json:"args,omitempty"`
}

// Arg returns the i-th argument or an empty string when absent.
func (r Request) Arg(i int) string {
	if i < 0 || i >= len(r.Args) {
		return ""
	}
	return r.Args[i]
}

// Outcome is the uniform result shape for all handlers.
type Outcome struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`

	// ResolvedDescription is a compact rendering of the element the path
	// resolved to, for the decision layer's transcripts.
	ResolvedDescription string `json:"resolvedDescription,omitempty"`
}

// failure builds an Outcome carrying an error message.
func failure(err error) Outcome {
	return Outcome{Success: false, Message: err.Error()}
}
