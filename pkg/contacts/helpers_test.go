package contacts

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/hubcontacts/pkg/types"
)

// recordedCall is one request seen by scriptedConn.
type recordedCall struct {
	method string
	path   string
	params types.Params
	body   any
}

// reply is one scripted response: a raw body or an error.
type reply struct {
	body string
	err  error
}

// scriptedConn is a Connection that records requests and answers them
// from a queue of replies. An empty queue answers "{}".
type scriptedConn struct {
	calls   []recordedCall
	replies []reply
}

func newScriptedConn(replies ...reply) *scriptedConn {
	return &scriptedConn{replies: replies}
}

func (c *scriptedConn) next(method, path string, params types.Params, body any) (json.RawMessage, error) {
	c.calls = append(c.calls, recordedCall{method: method, path: path, params: params, body: body})
	if len(c.replies) == 0 {
		return json.RawMessage(`{}`), nil
	}
	r := c.replies[0]
	c.replies = c.replies[1:]
	if r.err != nil {
		return nil, r.err
	}
	return json.RawMessage(r.body), nil
}

func (c *scriptedConn) GetJSON(_ context.Context, path string, params types.Params) (json.RawMessage, error) {
	return c.next("GET", path, params, nil)
}

func (c *scriptedConn) PostJSON(_ context.Context, path string, params types.Params, body any) (json.RawMessage, error) {
	return c.next("POST", path, params, body)
}

func (c *scriptedConn) DeleteJSON(_ context.Context, path string, params types.Params) (json.RawMessage, error) {
	return c.next("DELETE", path, params, nil)
}

// bodyJSON marshals a recorded request body for comparison with JSONEq.
func bodyJSON(t *testing.T, body any) string {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	return string(data)
}

func vids(cs []*types.Contact) []int64 {
	out := make([]int64, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.VID)
	}
	return out
}
