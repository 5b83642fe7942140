// Standard interfaces and datatypes for the s3blocks project.
// Terms:
//   "block" : A configured, reusable handle on some remote resource (a bucket, a set of credentials)
//   "client" : An SDK client built from a credentials block and shared through the client cache
package blocks

import (
	"context"

	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/serverlessresearch/s3blocks/pkg/awsclient"
	"github.com/sirupsen/logrus"
)

// Logger is what every component logs through. The manager hands out
// children of a single logrus logger tagged with a "module" field.
type Logger = logrus.FieldLogger

// ObjectStore reads and writes objects addressed by path within a
// configured bucket.
type ObjectStore interface {
	// Read the full contents of the object at path.
	ReadPath(ctx context.Context, path string) ([]byte, error)

	// Write content to path, replacing any existing object. Returns the key
	// the object was stored under, which can be passed back to ReadPath.
	WritePath(ctx context.Context, path string, content []byte) (key string, rerr error)

	// List the keys of all objects under prefix.
	ListPaths(ctx context.Context, prefix string) ([]string, error)
}

// S3Credentials is implemented by every credentials block that can produce
// an S3 client.
type S3Credentials interface {
	S3Client(cache *awsclient.Cache[s3.S3]) (*s3.S3, error)
}
