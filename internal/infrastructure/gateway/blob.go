package gateway

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

type BlobConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Secure    bool
	PublicURL string
}

// BlobGateway stores attachment payloads in an S3 compatible bucket.
type BlobGateway struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewBlobGateway connects to the object store and creates the bucket when it is missing.
func NewBlobGateway(ctx context.Context, conf BlobConfig) (*BlobGateway, error) {
	if !conf.Secure {
		slog.Warn("blob store is not running in secure mode", slog.String("module", "blob"))
	}

	client, err := minio.New(conf.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(conf.AccessKey, conf.SecretKey, ""),
		Secure: conf.Secure,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create blob client")
	}

	exists, err := client.BucketExists(ctx, conf.Bucket)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check bucket")
	}
	if !exists {
		err := client.MakeBucket(ctx, conf.Bucket, minio.MakeBucketOptions{ObjectLocking: false})
		if err != nil {
			return nil, errors.Wrapf(err, "bucket %s does not exist and failed to create", conf.Bucket)
		}
	}

	publicURL := conf.PublicURL
	if publicURL == "" {
		scheme := "http"
		if conf.Secure {
			scheme = "https"
		}
		publicURL = scheme + "://" + conf.Endpoint
	}

	return &BlobGateway{
		client:    client,
		bucket:    conf.Bucket,
		publicURL: publicURL,
	}, nil
}

// Put uploads body under key and returns the URL clients should fetch it from.
func (g *BlobGateway) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	_, err := g.client.PutObject(ctx, g.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to put object")
	}
	return objectURL(g.publicURL, g.bucket, key), nil
}

func (g *BlobGateway) Remove(ctx context.Context, key string) error {
	err := g.client.RemoveObject(ctx, g.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		return errors.Wrap(err, "failed to remove object")
	}
	return nil
}

func objectURL(base, bucket, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(bucket) + "/" + strings.Join(segments, "/")
}
