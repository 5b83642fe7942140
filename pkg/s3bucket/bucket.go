// Package s3bucket implements an object store block backed by a single S3
// (or S3 compatible) bucket.
package s3bucket

import (
	"bytes"
	"context"
	"io/ioutil"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"
	"github.com/serverlessresearch/s3blocks/pkg/awsclient"
	"github.com/serverlessresearch/s3blocks/pkg/awscreds"
	"github.com/serverlessresearch/s3blocks/pkg/blocks"
	"github.com/sirupsen/logrus"
)

// Config selects the bucket and how to authenticate to it. Exactly one of
// AWS and MinIO must be set.
type Config struct {
	Name string
	// Basepath is prepended to every path, so the block only ever touches
	// keys under it. A path that already starts with Basepath + "/" is taken
	// to be a full key and is not prefixed again: with Basepath "data", both
	// "x" and "data/x" resolve to "data/x", and "data/data/x" can only be
	// reached by passing it in full.
	Basepath string

	AWS   *awscreds.AWSCredentials
	MinIO *awscreds.MinIOCredentials
}

type Bucket struct {
	name     string
	basepath string
	creds    blocks.S3Credentials
	clients  *awsclient.Cache[s3.S3]
	log      blocks.Logger
}

// Guarantee we implement the ObjectStore interface.
var _ blocks.ObjectStore = (*Bucket)(nil)

// New validates cfg and returns a bucket block that gets its clients from
// clients.
func New(cfg Config, clients *awsclient.Cache[s3.S3], log blocks.Logger) (*Bucket, error) {
	if cfg.Name == "" {
		return nil, errors.New("bucket name is required")
	}
	if clients == nil {
		return nil, errors.New("client cache is required")
	}

	var creds blocks.S3Credentials
	switch {
	case cfg.AWS != nil && cfg.MinIO != nil:
		return nil, errors.New("only one of AWS or MinIO credentials may be provided")
	case cfg.AWS != nil:
		creds = cfg.AWS
	case cfg.MinIO != nil:
		creds = cfg.MinIO
	default:
		return nil, errors.New("either AWS or MinIO credentials must be provided")
	}

	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Bucket{
		name:     cfg.Name,
		basepath: strings.Trim(cfg.Basepath, "/"),
		creds:    creds,
		clients:  clients,
		log:      log.WithField("bucket", cfg.Name),
	}, nil
}

func (b *Bucket) Name() string {
	return b.name
}

// ResolvePath returns the object key for path. Keys that already carry the
// basepath are returned unchanged, so the result of WritePath can be fed back
// into ReadPath.
func (b *Bucket) ResolvePath(path string) string {
	path = strings.TrimPrefix(path, "/")
	if b.basepath == "" || path == b.basepath || strings.HasPrefix(path, b.basepath+"/") {
		return path
	}
	return b.basepath + "/" + path
}

// ReadPath implements ObjectStore.
func (b *Bucket) ReadPath(ctx context.Context, path string) ([]byte, error) {
	key := b.ResolvePath(path)
	client, err := b.creds.S3Client(b.clients)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to get S3 client")
	}

	out, err := client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read %q from bucket %q", key, b.name)
	}
	defer out.Body.Close()

	data, err := ioutil.ReadAll(out.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read body of %q", key)
	}
	b.log.WithField("key", key).Debugf("read %d bytes", len(data))
	return data, nil
}

// WritePath implements ObjectStore.
func (b *Bucket) WritePath(ctx context.Context, path string, content []byte) (string, error) {
	key := b.ResolvePath(path)
	client, err := b.creds.S3Client(b.clients)
	if err != nil {
		return "", errors.Wrap(err, "Failed to get S3 client")
	}

	ul := s3manager.NewUploaderWithClient(client)
	_, err = ul.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
		Body:   bytes.NewReader(content),
	})
	if err != nil {
		return "", errors.Wrapf(err, "unable to write %q to bucket %q", key, b.name)
	}
	b.log.WithField("key", key).Debugf("wrote %d bytes", len(content))
	return key, nil
}

// ListPaths implements ObjectStore.
func (b *Bucket) ListPaths(ctx context.Context, prefix string) ([]string, error) {
	resolved := b.ResolvePath(prefix)
	client, err := b.creds.S3Client(b.clients)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to get S3 client")
	}

	var keys []string
	err = client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.name),
		Prefix: aws.String(resolved),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			keys = append(keys, aws.StringValue(obj.Key))
		}
		return true
	})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to list %q in bucket %q", resolved, b.name)
	}
	return keys, nil
}
