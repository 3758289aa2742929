package publisher

import (
	"context"

	"github.com/ifautofab/play-deploy/internal/model"
	"github.com/ifautofab/play-deploy/internal/play"
)

// Backend is the set of remote operations the publisher drives. Each call
// blocks until the backend responds. *play.Client implements it.
type Backend interface {
	// OpenEdit opens a new edit session for packageName.
	OpenEdit(ctx context.Context, packageName string) (model.PublishSession, error)

	// UploadArtifact uploads the artifact into the session and returns
	// the version the backend assigned to it.
	UploadArtifact(ctx context.Context, packageName string, session model.PublishSession, artifact model.Artifact, chunkSize int) (model.ArtifactVersion, error)

	// UpdateTrack submits a release assignment within the session.
	UpdateTrack(ctx context.Context, packageName string, session model.PublishSession, assignment model.ReleaseAssignment) error

	// CommitEdit finalizes the session.
	CommitEdit(ctx context.Context, packageName string, session model.PublishSession, changesNotSentForReview bool) error
}

// Dialer builds a Backend from the credentials file. It is called only
// after the local preconditions have passed.
type Dialer func(ctx context.Context, credentialsPath string) (Backend, error)

// DialPlay is the production Dialer backed by the Google Play Developer API.
func DialPlay(ctx context.Context, credentialsPath string) (Backend, error) {
	c, err := play.NewClient(ctx, credentialsPath)
	if err != nil {
		return nil, err
	}
	return c, nil
}
