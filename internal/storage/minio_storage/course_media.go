package minio_storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// CourseMediaStorage holds course covers and lesson media (documents,
// videos) in one bucket, keyed by course and purpose.
type CourseMediaStorage struct {
	storage      *MinioStorage
	bucket       string
	presignedTTL time.Duration
}

func NewCourseMediaStorage(storage *MinioStorage, bucketName string, presignedTTL time.Duration) (*CourseMediaStorage, error) {
	if err := storage.EnsureBucket(context.Background(), bucketName); err != nil {
		return nil, err
	}
	return &CourseMediaStorage{storage: storage, bucket: bucketName, presignedTTL: presignedTTL}, nil
}

func (s *CourseMediaStorage) Upload(
	ctx context.Context,
	courseID uuid.UUID,
	kind, filename string,
	reader io.Reader,
	size int64,
	contentType string,
) (objectKey string, err error) {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".bin"
	}

	objectKey = fmt.Sprintf("courses/%s/%s/%s%s", courseID.String(), kind, uuid.NewString(), ext)

	if contentType == "" {
		contentType = mime.TypeByExtension(ext)
		if contentType == "" {
			contentType = "application/octet-stream"
		}
	}

	_, err = s.storage.client.PutObject(
		ctx,
		s.bucket,
		objectKey,
		reader,
		size,
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return "", err
	}
	return objectKey, nil
}

func (s *CourseMediaStorage) PresignedURL(ctx context.Context, objectKey string) (string, error) {
	reqParams := make(url.Values)
	presigned, err := s.storage.client.PresignedGetObject(
		ctx,
		s.bucket,
		objectKey,
		s.presignedTTL,
		reqParams,
	)
	if err != nil {
		return "", err
	}
	return presigned.String(), nil
}

func (s *CourseMediaStorage) Delete(ctx context.Context, objectKey string) error {
	return s.storage.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{})
}
