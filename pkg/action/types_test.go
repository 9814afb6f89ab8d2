package action

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestArg(t *testing.T) {
	req := Request{Method: "fill", Path: "/input", Args: []string{"hello", "world"}}

	assert.Equal(t, "hello", req.Arg(0))
	assert.Equal(t, "world", req.Arg(1))
	assert.Equal(t, "", req.Arg(2))
	assert.Equal(t, "", req.Arg(-1))

	empty := Request{}
	assert.Equal(t, "", empty.Arg(0))
}

func TestRequestJSONShape(t *testing.T) {
	raw := `{"method":"selectOption","path":"/div/select","args":["Option B"]}`

	var req Request
	require.NoError(t, json.Unmarshal([]byte(raw), &req))
	assert.Equal(t, "selectOption", req.Method)
	assert.Equal(t, "/div/select", req.Path)
	assert.Equal(t, []string{"Option B"}, req.Args)
}

func TestOutcomeJSONShape(t *testing.T) {
	out := Outcome{
		Success:             true,
		Message:             "click performed successfully",
		ResolvedDescription: `<button id="go">Go</button>`,
	}

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"success":true`)
	assert.Contains(t, string(data), `"resolvedDescription"`)

	// Empty optional fields stay off the wire.
	data, err = json.Marshal(Outcome{Success: false})
	require.NoError(t, err)
	assert.Equal(t, `{"success":false}`, string(data))
}

func TestFailureOutcome(t *testing.T) {
	out := failure(errors.New("nope"))
	assert.False(t, out.Success)
	assert.Equal(t, "nope", out.Message)
}
