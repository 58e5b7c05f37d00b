package media

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
)

// MinIOStore writes images to an S3-compatible bucket with public read access.
type MinIOStore struct {
	client         *minio.Client
	bucketName     string
	publicEndpoint string
	prefix         string
}

func NewMinIOStore(endpoint, publicEndpoint, accessKey, secretKey, bucketName, prefix string, useSSL bool) (*MinIOStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	if publicEndpoint == "" {
		publicEndpoint = endpoint
	}
	publicEndpoint = strings.TrimSuffix(strings.TrimSpace(publicEndpoint), "/")
	if !strings.Contains(publicEndpoint, "://") {
		scheme := "http"
		if useSSL {
			scheme = "https"
		}
		publicEndpoint = scheme + "://" + publicEndpoint
	}

	s := &MinIOStore{
		client:         client,
		bucketName:     bucketName,
		publicEndpoint: publicEndpoint,
		prefix:         strings.Trim(prefix, "/"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		log.Warn().Err(err).Str("bucket", bucketName).Msg("failed to check bucket existence (will continue)")
	} else if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			log.Error().Err(err).Str("bucket", bucketName).Msg("failed to create bucket")
		} else {
			policy := fmt.Sprintf(`{"Version": "2012-10-17","Statement": [{"Action": ["s3:GetObject"],"Effect": "Allow","Principal": {"AWS": ["*"]},"Resource": ["arn:aws:s3:::%s/*"],"Sid": ""}]}`, bucketName)
			if err := client.SetBucketPolicy(ctx, bucketName, policy); err != nil {
				log.Error().Err(err).Msg("failed to set bucket policy")
			}
		}
	}

	log.Info().
		Str("endpoint", endpoint).
		Str("public_endpoint", publicEndpoint).
		Str("bucket", bucketName).
		Msg("MinIO media store initialized")
	return s, nil
}

func (s *MinIOStore) Save(ctx context.Context, name string, body io.Reader, size int64, contentType string) (string, error) {
	key := path.Join(s.prefix, name)
	if size <= 0 {
		size = -1
	}
	if _, err := s.client.PutObject(ctx, s.bucketName, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return s.objectURL(key), nil
}

func (s *MinIOStore) Delete(ctx context.Context, imagePath string) error {
	key := s.keyFromURL(imagePath)
	if key == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucketName, key, minio.RemoveObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

func (s *MinIOStore) objectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicEndpoint, s.bucketName, key)
}

// keyFromURL extracts the object key from a URL produced by objectURL.
func (s *MinIOStore) keyFromURL(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil {
		return ""
	}
	p := strings.TrimPrefix(u.Path, "/")
	prefix := s.bucketName + "/"
	if idx := strings.LastIndex(p, prefix); idx != -1 {
		return p[idx+len(prefix):]
	}
	return ""
}
