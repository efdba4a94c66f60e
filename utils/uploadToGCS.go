package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// getGoogleClient initializes a Google Cloud Storage client
func getGoogleClient(ctx context.Context) (*storage.Client, error) {
	// Prefer ADC (Cloud Run service account / GOOGLE_APPLICATION_CREDENTIALS).
	// If you need to provide explicit JSON (e.g. locally), set GCS_CREDENTIALS_JSON.
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		return storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	}
	return storage.NewClient(ctx)
}

func contentTypeFor(name string, head []byte) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return "application/json"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return http.DetectContentType(head)
}

func uploadObject(ctx context.Context, bucket *storage.BucketHandle, objectName, localPath string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer file.Close()

	head := make([]byte, 512)
	n, _ := io.ReadFull(file, head)
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return err
	}

	wc := bucket.Object(objectName).NewWriter(ctx)
	wc.ContentType = contentTypeFor(localPath, head[:n])
	if _, err := io.Copy(wc, file); err != nil {
		_ = wc.Close()
		return fmt.Errorf("failed to upload %s: %v", objectName, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %v", err)
	}
	return nil
}

// UploadAuditFolder copies every regular file of localDir (the logs/<date> folder) to
// gs://bucketName/prefix/<file> and returns the object names in upload order.
func UploadAuditFolder(ctx context.Context, bucketName, localDir, prefix string) ([]string, error) {
	if bucketName == "" {
		return nil, errors.New("GCS_BUCKET is required")
	}

	entries, err := os.ReadDir(localDir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	client, err := getGoogleClient(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	bucket := client.Bucket(bucketName)
	if _, err := bucket.Attrs(ctx); err != nil {
		return nil, fmt.Errorf("gcs bucket %q not found or not accessible: %v", bucketName, err)
	}

	uploaded := make([]string, 0, len(names))
	for _, name := range names {
		objectName := path.Join(prefix, name)
		if err := uploadObject(ctx, bucket, objectName, filepath.Join(localDir, name)); err != nil {
			return uploaded, err
		}
		uploaded = append(uploaded, objectName)
	}
	return uploaded, nil
}
