// Package play provides a wrapper around the Google Play Developer API
// (Android Publisher v3) client for publishing one artifact per run.
//
// The primary purpose of this package is to narrow the generated API
// surface down to the four edit operations the release publisher needs
// and to translate backend failures into model.CLIError values carrying
// the backend exit code.
package play

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/api/androidpublisher/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/ifautofab/play-deploy/internal/model"
)

// octetStream is the media type used for artifact uploads. Google Play
// sniffs the artifact itself, so a generic binary type is sufficient.
const octetStream = "application/octet-stream"

// Client wraps the generated Android Publisher service.
//
// Usage:
//
//	c, err := play.NewClient(ctx, "play-store-key.json")
//	if err != nil { /* handle */ }
//	edit, err := c.OpenEdit(ctx, "com.example.app")
type Client struct {
	// inner is the generated API service. We wrap it rather than
	// embedding it to keep the exposed surface to the edit workflow.
	inner *androidpublisher.Service
}

// NewClient creates a client authenticated with the service-account key
// at credentialsPath. Extra options are appended after the defaults, so
// callers can override the endpoint or HTTP client.
//
// Returns a model.CLIError with ExitConfigError if the key cannot be used
// to build a client (unreadable file, malformed JSON).
func NewClient(ctx context.Context, credentialsPath string, opts ...option.ClientOption) (*Client, error) {
	// An unreadable or malformed key is a configuration error, reported
	// before any token exchange.
	keyJSON, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitConfigError,
			fmt.Sprintf("failed to read service account key %s", credentialsPath),
			err,
		)
	}

	base := []option.ClientOption{
		option.WithCredentialsJSON(keyJSON),
		option.WithScopes(androidpublisher.AndroidpublisherScope),
	}
	c, err := newClientWithOptions(ctx, append(base, opts...)...)
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitConfigError,
			fmt.Sprintf("failed to create Google Play client from %s", credentialsPath),
			err,
		)
	}
	return c, nil
}

// newClientWithOptions builds the generated service from raw options.
// Tests use it directly with an httptest endpoint and no credentials.
func newClientWithOptions(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	svc, err := androidpublisher.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{inner: svc}, nil
}

// OpenEdit inserts a new edit for packageName and returns its id.
func (c *Client) OpenEdit(ctx context.Context, packageName string) (model.PublishSession, error) {
	edit, err := c.inner.Edits.Insert(packageName, &androidpublisher.AppEdit{}).Context(ctx).Do()
	if err != nil {
		return "", model.WrapCLIError(
			model.ExitBackendError,
			fmt.Sprintf("failed to create edit for %s", packageName),
			err,
		)
	}
	return model.PublishSession(edit.Id), nil
}

// UploadArtifact streams the artifact into the edit and returns the
// version code Google Play assigned to it.
//
// The media is sent as an octet stream. When the file is larger than
// chunkSize the generated client switches to a resumable upload and
// retries partial chunks at the transport layer; a chunkSize of 0 sends
// the whole file in a single request.
func (c *Client) UploadArtifact(ctx context.Context, packageName string, session model.PublishSession, artifact model.Artifact, chunkSize int) (model.ArtifactVersion, error) {
	f, err := os.Open(artifact.Path)
	if err != nil {
		return 0, model.WrapCLIError(
			model.ExitConfigError,
			fmt.Sprintf("failed to open artifact %s", artifact.Path),
			err,
		)
	}
	defer func() { _ = f.Close() }()

	media := []googleapi.MediaOption{
		googleapi.ContentType(octetStream),
		googleapi.ChunkSize(chunkSize),
	}

	var versionCode int64
	switch artifact.Kind {
	case model.KindAPK:
		apk, uploadErr := c.inner.Edits.Apks.Upload(packageName, session.String()).
			Media(f, media...).
			Context(ctx).
			Do()
		if uploadErr != nil {
			err = uploadErr
			break
		}
		versionCode = apk.VersionCode
	default:
		bundle, uploadErr := c.inner.Edits.Bundles.Upload(packageName, session.String()).
			Media(f, media...).
			Context(ctx).
			Do()
		if uploadErr != nil {
			err = uploadErr
			break
		}
		versionCode = bundle.VersionCode
	}
	if err != nil {
		return 0, model.WrapCLIError(
			model.ExitBackendError,
			fmt.Sprintf("failed to upload %s %s", artifact.Kind, artifact.Path),
			err,
		)
	}

	return model.ArtifactVersion(versionCode), nil
}

// UpdateTrack replaces the releases of a track inside the edit with the
// single release described by assignment.
func (c *Client) UpdateTrack(ctx context.Context, packageName string, session model.PublishSession, assignment model.ReleaseAssignment) error {
	track := toAPITrack(assignment)
	_, err := c.inner.Edits.Tracks.Update(packageName, session.String(), assignment.Track, track).Context(ctx).Do()
	if err != nil {
		return model.WrapCLIError(
			model.ExitBackendError,
			fmt.Sprintf("failed to assign version(s) to %s track as %s", assignment.Track, assignment.Status),
			err,
		)
	}
	return nil
}

// CommitEdit applies every change accumulated in the edit to the live
// application. When changesNotSentForReview is set, Google Play keeps the
// changes out of the review queue until they are sent from the Console.
func (c *Client) CommitEdit(ctx context.Context, packageName string, session model.PublishSession, changesNotSentForReview bool) error {
	call := c.inner.Edits.Commit(packageName, session.String()).Context(ctx)
	if changesNotSentForReview {
		call = call.ChangesNotSentForReview(true)
	}
	if _, err := call.Do(); err != nil {
		return model.WrapCLIError(
			model.ExitBackendError,
			fmt.Sprintf("failed to commit edit %s", session),
			err,
		)
	}
	return nil
}

// toAPITrack converts a domain assignment into the generated request type.
// Version codes travel as strings on the wire; googleapi.Int64s handles that.
func toAPITrack(assignment model.ReleaseAssignment) *androidpublisher.Track {
	codes := make(googleapi.Int64s, 0, len(assignment.VersionCodes))
	for _, v := range assignment.VersionCodes {
		codes = append(codes, int64(v))
	}

	release := &androidpublisher.TrackRelease{
		Name:         assignment.Name,
		Status:       assignment.Status.String(),
		VersionCodes: codes,
	}
	for _, note := range assignment.Notes {
		release.ReleaseNotes = append(release.ReleaseNotes, &androidpublisher.LocalizedText{
			Language: note.Language,
			Text:     note.Text,
		})
	}

	return &androidpublisher.Track{
		Track:    assignment.Track,
		Releases: []*androidpublisher.TrackRelease{release},
	}
}
