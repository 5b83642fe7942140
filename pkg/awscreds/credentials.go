// Package awscreds holds the credentials blocks used to reach an object
// store: plain AWS credentials and MinIO root credentials.
package awscreds

import (
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/serverlessresearch/s3blocks/pkg/awsclient"
)

// MinIO has no notion of regions but the SDK insists on one.
const minioDefaultRegion = "us-east-1"

// AWSCredentials authenticates against AWS. Leaving the keys empty lets the
// SDK fall back to the environment, the shared credentials file or an
// instance role.
type AWSCredentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Profile         string
	Region          string
	// Session is an optional base session to derive clients from.
	Session *session.Session

	ClientParameters ClientParameters
}

func (c *AWSCredentials) Params(resource awsclient.Resource) awsclient.Params {
	return awsclient.Params{
		Resource:        resource,
		AccessKeyID:     c.AccessKeyID,
		SecretAccessKey: c.SecretAccessKey,
		SessionToken:    c.SessionToken,
		Region:          c.Region,
		Profile:         c.Profile,
		Session:         c.Session,
	}
}

// S3Client returns an S3 client for these credentials from cache.
func (c *AWSCredentials) S3Client(cache *awsclient.Cache[s3.S3]) (*s3.S3, error) {
	return acquire(cache, c.Params(awsclient.S3), c.ClientParameters)
}

// MinIOCredentials authenticates against a MinIO server with its root user.
// The server address goes in ClientParameters.EndpointURL.
type MinIOCredentials struct {
	RootUser     string
	RootPassword string
	Region       string

	ClientParameters ClientParameters
}

func (c *MinIOCredentials) Params(resource awsclient.Resource) awsclient.Params {
	region := c.Region
	if region == "" {
		region = minioDefaultRegion
	}
	return awsclient.Params{
		Resource:        resource,
		AccessKeyID:     c.RootUser,
		SecretAccessKey: c.RootPassword,
		Region:          region,
	}
}

func (c *MinIOCredentials) S3Client(cache *awsclient.Cache[s3.S3]) (*s3.S3, error) {
	return acquire(cache, c.Params(awsclient.S3), c.ClientParameters)
}

func acquire(cache *awsclient.Cache[s3.S3], p awsclient.Params, cp ClientParameters) (*s3.S3, error) {
	opts, err := cp.Options()
	if err != nil {
		return nil, err
	}
	return cache.Acquire(p, opts...)
}
