package types

import (
	"context"
	"encoding/json"
)

// Params carries path placeholders and query parameters for a request.
// A value whose key matches a ":name" placeholder in the path is
// substituted there; the rest become query parameters. Slice values
// repeat the key. A "batch_" key prefix is dropped from the query name
// (batch_vid=1,2 becomes vid=1&vid=2).
type Params map[string]any

// ParamNoParse asks the Connection to skip decoding the response body.
// The returned message is nil.
const ParamNoParse = "no_parse"

// Connection issues JSON requests against the remote API.
//
// Implementations return the raw response body so callers can decode
// objects in document order. Non-2xx responses must yield an error whose
// message is human readable; *APIError is preferred because it carries
// the status code.
type Connection interface {
	GetJSON(ctx context.Context, path string, params Params) (json.RawMessage, error)
	PostJSON(ctx context.Context, path string, params Params, body any) (json.RawMessage, error)
	DeleteJSON(ctx context.Context, path string, params Params) (json.RawMessage, error)
}
