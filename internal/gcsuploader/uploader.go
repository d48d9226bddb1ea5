package gcsuploader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/avast/retry-go"
	"github.com/dvloznov/finance-summary/internal/logger"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Upload retry policy.
var (
	uploadAttempts uint = 3
	uploadDelay         = 2 * time.Second
)

// ParseGCSURI splits gs://bucket/path/to/object into bucket and object path.
func ParseGCSURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}

	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// UploadFile uploads a local file to a GCS bucket under the given object name.
func UploadFile(ctx context.Context, bucketName, objectName, filePath string, opts ...option.ClientOption) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("open file %q: %w", filePath, err)
	}
	return UploadBytes(ctx, "gs://"+bucketName+"/"+objectName, data, contentTypeFor(filePath), opts...)
}

// UploadBytes writes data to gcsURI, retrying transient failures.
func UploadBytes(ctx context.Context, gcsURI string, data []byte, contentType string, opts ...option.ClientOption) error {
	bucketName, objectName, err := ParseGCSURI(gcsURI)
	if err != nil {
		return fmt.Errorf("UploadBytes: %w", err)
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return fmt.Errorf("UploadBytes: create storage client: %w", err)
	}
	defer client.Close()

	log := logger.FromContext(ctx)
	obj := client.Bucket(bucketName).Object(objectName)

	err = retry.Do(
		func() error {
			return writeObject(ctx, obj, data, contentType)
		},
		retry.RetryIf(func(err error) bool {
			if isTransient(err) {
				log.Warn().Err(err).Str("uri", gcsURI).Msg("Upload failed, will retry")
				return true
			}
			return false
		}),
		retry.Context(ctx),
		retry.Attempts(uploadAttempts),
		retry.Delay(uploadDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("UploadBytes: %s: %w", gcsURI, err)
	}

	log.Info().Str("uri", gcsURI).Int("bytes", len(data)).Msg("Uploaded object")
	return nil
}

func writeObject(ctx context.Context, obj *storage.ObjectHandle, data []byte, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := obj.NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("copy data to GCS writer: %w", err)
	}

	// Close finalizes the upload.
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize upload: %w", err)
	}
	return nil
}

// isTransient reports whether err is a rate limit or server-side failure.
func isTransient(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
}

func contentTypeFor(filePath string) string {
	switch strings.ToLower(path.Ext(filePath)) {
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// ExtractFilenameFromGCSURI extracts the filename from a GCS URI.
// e.g., "gs://bucket/folder/file.csv" → "file.csv"
func ExtractFilenameFromGCSURI(uri string) string {
	// Remove "gs://"
	trimmed := strings.TrimPrefix(uri, "gs://")

	// Remove bucket name
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}

	// Extract actual filename
	return path.Base(parts[1])
}
