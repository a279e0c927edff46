// Package archive writes account snapshots to Google Cloud Storage before deletion.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/devconnector-api/internal/application"
	"github.com/oksasatya/devconnector-api/pkg/helpers"
)

// Uploader writes an object and returns its location.
type Uploader func(ctx context.Context, objectPath, contentType string, body []byte) (string, error)

type GCSArchiver struct {
	Prefix string
	upload Uploader
}

// NewGCSArchiver archives into bucket under prefix.
func NewGCSArchiver(client *storage.Client, bucket, prefix string) *GCSArchiver {
	return NewArchiver(prefix, func(ctx context.Context, objectPath, contentType string, body []byte) (string, error) {
		return helpers.UploadObject(ctx, client, bucket, objectPath, contentType, bytes.NewReader(body))
	})
}

// NewArchiver archives through an arbitrary uploader.
func NewArchiver(prefix string, upload Uploader) *GCSArchiver {
	return &GCSArchiver{Prefix: prefix, upload: upload}
}

// ObjectPath is where the snapshot of snap.User lands: <prefix>/<user id>/<unix nanos>.json.
func (a *GCSArchiver) ObjectPath(snap application.AccountSnapshot) string {
	return path.Join(a.Prefix, snap.User.ID, fmt.Sprintf("%d.json", snap.ArchivedAt.UnixNano()))
}

func (a *GCSArchiver) Archive(ctx context.Context, snap application.AccountSnapshot) (string, error) {
	if snap.User == nil {
		return "", fmt.Errorf("archive: snapshot has no user")
	}
	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", err
	}
	return a.upload(ctx, a.ObjectPath(snap), "application/json", body)
}
