package model

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Source reads named model artifacts. The second return value reports
// existence, so callers can treat optional backends as absent rather than
// broken.
type Source interface {
	ReadArtifact(ctx context.Context, name string) ([]byte, bool, error)
}

// DirSource loads artifacts from a local directory.
type DirSource struct {
	dir string
}

// NewDirSource constructs a filesystem-backed source.
func NewDirSource(dir string) *DirSource {
	if dir == "" {
		dir = "models"
	}
	return &DirSource{dir: dir}
}

func (s *DirSource) ReadArtifact(_ context.Context, name string) ([]byte, bool, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// ObjectSource loads artifacts from an S3-compatible bucket, so deployments
// can ship retrained models without rebuilding images.
type ObjectSource struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewObjectSource constructs a bucket-backed source.
func NewObjectSource(endpoint, accessKey, secretKey, bucket, prefix string) (*ObjectSource, error) {
	useSSL := strings.HasPrefix(strings.ToLower(endpoint), "https")
	client, err := minio.New(sanitizeEndpoint(endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:       useSSL,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init artifact object client: %w", err)
	}
	return &ObjectSource{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}, nil
}

func (s *ObjectSource) ReadArtifact(ctx context.Context, name string) ([]byte, bool, error) {
	key := name
	if s.prefix != "" {
		key = s.prefix + "/" + name
	}
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, false, err
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if i := strings.IndexByte(raw, '/'); i >= 0 {
		raw = raw[:i]
	}
	return raw
}
