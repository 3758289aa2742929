package play

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
	"pgregory.net/rapid"

	"github.com/ifautofab/play-deploy/internal/model"
)

// TestIsDraftAppRejection covers the error shapes the publisher sees in
// practice: raw API errors, CLIError wrappers and unrelated failures.
func TestIsDraftAppRejection(t *testing.T) {
	apiErr := &googleapi.Error{
		Code:    400,
		Message: "Only releases with status draft may be created on draft app.",
	}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "raw googleapi error",
			err:  apiErr,
			want: true,
		},
		{
			name: "wrapped in CLIError",
			err:  model.WrapCLIError(model.ExitBackendError, "failed to assign version(s) to internal track as completed", apiErr),
			want: true,
		},
		{
			name: "wrapped with fmt.Errorf",
			err:  fmt.Errorf("update track: %w", apiErr),
			want: true,
		},
		{
			name: "plain text error",
			err:  errors.New("googleapi: Error 400: Only releases with status draft may be created on draft app., badRequest"),
			want: true,
		},
		{
			name: "different business rule",
			err:  errors.New("googleapi: Error 403: APK specifies a version code that has already been used., forbidden"),
			want: false,
		},
		{
			name: "authentication failure",
			err:  &googleapi.Error{Code: 401, Message: "Request had invalid authentication credentials."},
			want: false,
		},
		{
			name: "case differs",
			err:  errors.New("only releases with status draft may be created on draft app"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDraftAppRejection(tt.err))
		})
	}
}

// TestIsDraftAppRejection_DependsOnlyOnText checks that classification is a
// pure function of the message: the same text always yields the same
// decision, however often it is asked and however it is wrapped.
func TestIsDraftAppRejection_DependsOnlyOnText(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		prefix := rapid.String().Draw(t, "prefix")
		suffix := rapid.String().Draw(t, "suffix")
		includeMessage := rapid.Bool().Draw(t, "includeMessage")

		text := prefix + suffix
		if includeMessage {
			text = prefix + DraftAppRejectionMessage + suffix
		}

		first := IsDraftAppRejection(errors.New(text))
		second := IsDraftAppRejection(errors.New(text))
		wrapped := IsDraftAppRejection(model.WrapCLIError(model.ExitBackendError, "update track", errors.New(text)))

		if first != second {
			t.Fatalf("classification changed between calls for %q", text)
		}
		if first != wrapped {
			t.Fatalf("wrapping changed classification for %q", text)
		}
		if first != strings.Contains(text, DraftAppRejectionMessage) {
			t.Fatalf("classification of %q does not match substring presence", text)
		}
	})
}

// TestHTTPStatus verifies status extraction through wrapper layers.
func TestHTTPStatus(t *testing.T) {
	t.Run("googleapi error", func(t *testing.T) {
		code, ok := HTTPStatus(model.WrapCLIError(model.ExitBackendError, "commit", &googleapi.Error{Code: 403}))
		assert.True(t, ok)
		assert.Equal(t, 403, code)
	})

	t.Run("transport error", func(t *testing.T) {
		_, ok := HTTPStatus(errors.New("dial tcp: connection refused"))
		assert.False(t, ok)
	})
}
