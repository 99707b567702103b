package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/bryanwahyu/automaton-ux/internal/domain/upload"
)

const (
	minioPrefix = "scratch/"

	// uploads stream with unknown length; minio-go buffers one part in
	// memory per upload, sized for a 5 TiB object unless PartSize is set.
	// 16 MiB parts cap a scratch object at about 160 GiB.
	minioPartSize = 16 << 20
)

// MinioStore stages uploads in a MinIO/S3 bucket.
type MinioStore struct {
	client     *minio.Client
	bucketName string
	region     string
}

// NewMinio buat koneksi MinIO dan pastikan bucket ada
func NewMinio(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*MinioStore, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &MinioStore{client: cli, bucketName: bucket, region: region}, nil
}

func (s *MinioStore) objectName(f *upload.ScratchFile) string {
	return minioPrefix + path.Base(f.Key)
}

// Save streams r into a new object; size is unknown so minio uses multipart.
func (s *MinioStore) Save(ctx context.Context, r io.Reader, originalName, mimeType string) (*upload.ScratchFile, error) {
	f := &upload.ScratchFile{
		Key:          scratchKey(originalName),
		OriginalName: originalName,
		MIMEType:     mimeType,
		CreatedAt:    time.Now(),
	}

	info, err := s.client.PutObject(ctx, s.bucketName, s.objectName(f), r, -1, putOptions(originalName, mimeType))
	if err != nil {
		return nil, fmt.Errorf("put scratch object: %w", err)
	}
	f.Size = info.Size
	return f, nil
}

func putOptions(originalName, mimeType string) minio.PutObjectOptions {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return minio.PutObjectOptions{
		ContentType:  mimeType,
		PartSize:     minioPartSize,
		UserMetadata: map[string]string{"original-name": url.PathEscape(originalName)},
	}
}

func (s *MinioStore) Open(ctx context.Context, f *upload.ScratchFile) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucketName, s.objectName(f), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get scratch object: %w", err)
	}
	return obj, nil
}

func (s *MinioStore) Remove(ctx context.Context, f *upload.ScratchFile) error {
	return s.client.RemoveObject(ctx, s.bucketName, s.objectName(f), minio.RemoveObjectOptions{})
}

func (s *MinioStore) Check(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket %s not found", s.bucketName)
	}
	return nil
}
