package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GCSStore writes images to a Cloud Storage bucket and hands out Firebase-style
// download URLs carrying an access token.
type GCSStore struct {
	client *storage.Client
	bucket string
	prefix string
}

func NewGCSStore(ctx context.Context, bucket, prefix, credentialsFile string) (*GCSStore, error) {
	if bucket == "" {
		return nil, errors.New("GCS_BUCKET is not set")
	}
	var opt option.ClientOption
	if credentialsFile != "" {
		opt = option.WithCredentialsFile(credentialsFile)
	} else {
		creds, err := google.FindDefaultCredentials(ctx, storage.ScopeReadWrite)
		if err != nil {
			return nil, fmt.Errorf("find default credentials: %w", err)
		}
		opt = option.WithCredentials(creds)
	}
	client, err := storage.NewClient(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}, nil
}

func (s *GCSStore) Save(ctx context.Context, name string, body io.Reader, _ int64, contentType string) (string, error) {
	objectPath := path.Join(s.prefix, name)
	obj := s.client.Bucket(s.bucket).Object(objectPath).If(storage.Conditions{DoesNotExist: true})

	token := uuid.NewString()
	err := writeObject(ctx, func(wctx context.Context) io.WriteCloser {
		w := obj.NewWriter(wctx)
		w.ContentType = contentType
		w.Metadata = map[string]string{
			"firebaseStorageDownloadTokens": token,
		}
		return w
	}, body)
	if err != nil {
		if isPreconditionFailed(err) {
			return "", ErrExists
		}
		return "", fmt.Errorf("upload %s: %w", objectPath, err)
	}
	return downloadURL(s.bucket, objectPath, token), nil
}

// writeObject streams body into a writer opened with a cancellable context. A
// failed copy cancels that context before Close, so the upload is aborted
// instead of committing a partial object.
func writeObject(ctx context.Context, open func(context.Context) io.WriteCloser, body io.Reader) error {
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()
	w := open(wctx)
	if _, err := io.Copy(w, body); err != nil {
		cancel()
		w.Close()
		return err
	}
	return w.Close()
}

// isPreconditionFailed reports the 412 returned when DoesNotExist finds an object.
func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}

func (s *GCSStore) Delete(ctx context.Context, imagePath string) error {
	objectPath := objectFromDownloadURL(imagePath)
	if objectPath == "" {
		return nil
	}
	err := s.client.Bucket(s.bucket).Object(objectPath).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete %s: %w", objectPath, err)
	}
	return nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

func downloadURL(bucket, objectPath, token string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket, url.PathEscape(objectPath), token)
}

// objectFromDownloadURL reverses downloadURL; it returns "" for anything else.
func objectFromDownloadURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	_, obj, ok := strings.Cut(u.Path, "/o/")
	if !ok {
		return ""
	}
	return obj
}
