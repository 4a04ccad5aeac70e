package remote

import (
	"context"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"

	"github.com/filebutler/filebutler/pkg/domain"
)

type ObjectStoreConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Folder    string `mapstructure:"folder"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// ObjectStore binds the storage port to an S3-compatible object store.
// Object keys are the artifact keys, so re-uploading after a failed run
// overwrites rather than duplicates.
type ObjectStore struct {
	client *minio.Client
	bucket string
	folder string
}

func NewObjectStore(config ObjectStoreConfig) (*ObjectStore, error) {
	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
		Region: config.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to create object store client")
	}

	return &ObjectStore{
		client: client,
		bucket: config.Bucket,
		folder: config.Folder,
	}, nil
}

func (s *ObjectStore) Name() string {
	return "s3"
}

func (s *ObjectStore) Authenticate(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return errors.Errorf("bucket %q is not accessible", s.bucket)
	}

	return nil
}

func (s *ObjectStore) Put(ctx context.Context, artifact domain.Artifact) (domain.RemoteRef, error) {
	object := s.objectName(artifact.Key)

	info, err := s.client.FPutObject(ctx, s.bucket, object, artifact.LocalPath, minio.PutObjectOptions{
		ContentType: "application/zip",
	})
	if err != nil {
		return domain.RemoteRef{}, err
	}

	return domain.RemoteRef{
		Key:  artifact.Key,
		Size: info.Size,
	}, nil
}

func (s *ObjectStore) List(ctx context.Context) ([]domain.RemoteRef, error) {
	opts := minio.ListObjectsOptions{
		Prefix:    s.folder,
		Recursive: true,
	}

	var refs []domain.RemoteRef

	for obj := range s.client.ListObjects(ctx, s.bucket, opts) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if !strings.HasSuffix(obj.Key, domain.ArtifactExt) {
			continue
		}

		refs = append(refs, domain.RemoteRef{
			Key:        strings.TrimSuffix(path.Base(obj.Key), domain.ArtifactExt),
			Size:       obj.Size,
			ModifiedAt: obj.LastModified,
		})
	}

	return refs, nil
}

func (s *ObjectStore) Delete(ctx context.Context, ref domain.RemoteRef) error {
	return s.client.RemoveObject(ctx, s.bucket, s.objectName(ref.Key), minio.RemoveObjectOptions{})
}

func (s *ObjectStore) objectName(key string) string {
	return path.Join(s.folder, key+domain.ArtifactExt)
}
