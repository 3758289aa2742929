package play

import (
	"errors"
	"strings"

	"google.golang.org/api/googleapi"
)

// DraftAppRejectionMessage is the text Google Play returns when a release
// with a status other than draft is submitted for an application that has
// never been published. The backend exposes no dedicated error reason for
// this case (it is a plain 400/403 "badRequest"), so the message text is
// the only signal.
const DraftAppRejectionMessage = "Only releases with status draft may be created on draft app"

// IsDraftAppRejection reports whether err is the draft-application
// rejection of a non-draft release. It depends only on the error text,
// so the same error always classifies the same way.
func IsDraftAppRejection(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), DraftAppRejectionMessage)
}

// HTTPStatus extracts the HTTP status code of a Google API error anywhere
// in err's chain. The second return value is false for transport errors
// that never produced a response.
func HTTPStatus(err error) (int, bool) {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	return 0, false
}
