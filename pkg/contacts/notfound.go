package contacts

import (
	"errors"
	"net/http"
	"strings"

	"github.com/mesh-intelligence/hubcontacts/pkg/types"
)

// notExistMarker is the fragment of the API's message for a missing contact.
const notExistMarker = "not exist"

// IsContactNotFound reports whether err is the API's "contact does not
// exist" failure. The message must contain "not exist"; when the error
// carries an HTTP status, that status must also be 404. Every other
// failure, including 5xx responses, is a real error.
func IsContactNotFound(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *types.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode != 0 && apiErr.StatusCode != http.StatusNotFound {
			return false
		}
		return strings.Contains(apiErr.Error(), notExistMarker)
	}
	return strings.Contains(err.Error(), notExistMarker)
}
