// Package play provides Google Play Developer API wrappers for the
// play-deploy CLI.
//
// This package handles:
//   - Client construction from a service-account key file
//   - The edit workflow: insert, bundle/APK upload, track update, commit
//   - Classification of the draft-application rejection that triggers the
//     publisher's draft fallback
//
// The package uses google.golang.org/api/androidpublisher/v3 as the
// underlying client.
package play
