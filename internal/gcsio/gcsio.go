// Package gcsio moves dataset CSV files between the local filesystem and
// Google Cloud Storage. Uses Application Default Credentials.
package gcsio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// The three files a dataset drop consists of.
var DatasetFiles = []string{"users.csv", "transactions.csv", "app_events.csv"}

// ParseURI splits a gs://bucket/path/to/object URI into bucket and object.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// ObjectName returns the filename part of a GCS URI, e.g.
// "gs://bucket/drops/2026-01/users.csv" yields "users.csv".
func ObjectName(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}

// UploadFile uploads one local file to the bucket under the given object name.
func UploadFile(ctx context.Context, bucketName, objectName, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open file %q: %w", filePath, err)
	}
	defer f.Close()

	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return fmt.Errorf("copy file to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize upload: %w", err)
	}
	return nil
}

// FetchObject downloads the bytes behind a gs:// URI.
func FetchObject(ctx context.Context, gcsURI string) ([]byte, error) {
	bucketName, objectPath, err := ParseURI(gcsURI)
	if err != nil {
		return nil, fmt.Errorf("FetchObject: %w", err)
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchObject: creating storage client: %w", err)
	}
	defer client.Close()

	rc, err := client.Bucket(bucketName).Object(objectPath).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchObject: reading object %s/%s: %w", bucketName, objectPath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("FetchObject: reading bytes: %w", err)
	}
	return data, nil
}

// UploadDataset uploads the three dataset CSVs from localDir to
// gs://bucket/prefix/. Missing files are an error: a partial drop would
// break the ingest that reads it.
func UploadDataset(ctx context.Context, bucketName, prefix, localDir string) error {
	for _, name := range DatasetFiles {
		local := filepath.Join(localDir, name)
		if _, err := os.Stat(local); err != nil {
			return fmt.Errorf("UploadDataset: %s: %w", name, err)
		}
	}
	for _, name := range DatasetFiles {
		object := path.Join(prefix, name)
		if err := UploadFile(ctx, bucketName, object, filepath.Join(localDir, name)); err != nil {
			return fmt.Errorf("UploadDataset: %s: %w", name, err)
		}
	}
	return nil
}

// DownloadDataset fetches the three dataset CSVs from gs://bucket/prefix/
// into localDir.
func DownloadDataset(ctx context.Context, bucketName, prefix, localDir string) error {
	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return fmt.Errorf("DownloadDataset: %w", err)
	}
	for _, name := range DatasetFiles {
		uri := fmt.Sprintf("gs://%s/%s", bucketName, path.Join(prefix, name))
		data, err := FetchObject(ctx, uri)
		if err != nil {
			return fmt.Errorf("DownloadDataset: %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(localDir, name), data, 0o644); err != nil {
			return fmt.Errorf("DownloadDataset: writing %s: %w", name, err)
		}
	}
	return nil
}
