package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/messicms/media-service/internal/config"
)

// MinIO stores files in an S3-compatible bucket.
type MinIO struct {
	client     *minio.Client
	bucketName string
	useSSL     bool
}

// NewMinIO creates a MinIO-backed storage backend and ensures the
// configured bucket exists.
func NewMinIO(cfg config.MinIO) (*MinIO, error) {
	if cfg.Endpoint == "" || cfg.BucketName == "" {
		return nil, ErrMisconfiguredBackend
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	b := &MinIO{
		client:     client,
		bucketName: cfg.BucketName,
		useSSL:     cfg.UseSSL,
	}

	if err := b.ensureBucket(); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return b, nil
}

// ensureBucket creates the bucket if it doesn't exist
func (m *MinIO) ensureBucket() error {
	ctx := context.Background()

	exists, err := m.client.BucketExists(ctx, m.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check if bucket exists: %w", err)
	}

	if !exists {
		err = m.client.MakeBucket(ctx, m.bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

func (m *MinIO) Write(ctx context.Context, p string, content []byte) error {
	contentType := mime.TypeByExtension(path.Ext(p))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := m.client.PutObject(ctx, m.bucketName, p,
		bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: contentType})
	return err
}

func (m *MinIO) Read(ctx context.Context, p string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.bucketName, p, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	return io.ReadAll(obj)
}

func (m *MinIO) Delete(ctx context.Context, paths ...string) error {
	for _, p := range paths {
		err := m.client.RemoveObject(ctx, m.bucketName, p, minio.RemoveObjectOptions{})
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *MinIO) ListFiles(ctx context.Context, dir string, recursive bool) ([]string, error) {
	prefix := dir
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var files []string
	objectsCh := m.client.ListObjects(ctx, m.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: recursive,
	})

	for object := range objectsCh {
		if object.Err != nil {
			return nil, object.Err
		}
		if strings.HasSuffix(object.Key, "/") {
			continue
		}
		files = append(files, object.Key)
	}

	return files, nil
}

func (m *MinIO) LastModified(ctx context.Context, p string) (time.Time, error) {
	info, err := m.client.StatObject(ctx, m.bucketName, p, minio.StatObjectOptions{})
	if err != nil {
		return time.Time{}, err
	}
	return info.LastModified, nil
}

// URL constructs the direct object URL. A CDN-fronted deployment rewrites
// this at the resolver level.
func (m *MinIO) URL(p string) string {
	scheme := "http"
	if m.useSSL {
		scheme = "https"
	}

	endpoint := strings.TrimPrefix(m.client.EndpointURL().String(), scheme+"://")
	return fmt.Sprintf("%s://%s/%s/%s", scheme, endpoint, m.bucketName, strings.TrimPrefix(p, "/"))
}
