package gmail_tools

import (
	"errors"

	"github.com/teemow/gmailmcp/internal/gmail"
	"github.com/teemow/gmailmcp/internal/tools/dispatch"
)

// Classify maps Gmail collaborator errors to envelope codes. Install it with
// dispatch.WithClassifier.
func Classify(err error) string {
	switch {
	case gmail.IsUnauthorized(err):
		return dispatch.CodeNotAuthenticated
	case gmail.IsNotFound(err):
		return dispatch.CodeNotFound
	case gmail.IsRateLimited(err):
		return dispatch.CodeRateLimited
	case gmail.IsUnavailable(err):
		return dispatch.CodeUnavailable
	}
	return ""
}

func invalid(msg string) error {
	return dispatch.NewError(dispatch.CodeValidation, errors.New(msg))
}

var errNoCredentials = errors.New("no OAuth client credentials configured")
