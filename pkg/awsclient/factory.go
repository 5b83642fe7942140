package awsclient

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pkg/errors"
)

// Factory builds a client of type C. It is only called by Cache.Acquire,
// with the table lock held.
type Factory[C any] func(p Params, opts ...Option) (*C, error)

// NewS3Client builds an S3 client from p. Explicit keys take precedence over
// whatever the SDK would otherwise resolve; the profile is ignored when a
// base session is supplied.
func NewS3Client(p Params, opts ...Option) (*s3.S3, error) {
	if p.Resource != S3 {
		return nil, errors.Errorf("unsupported resource %q", p.Resource)
	}

	sessOpts := sessionOptions(p)
	for _, opt := range opts {
		if opt != nil {
			opt(&sessOpts)
		}
	}

	if p.Session != nil {
		return s3.New(p.Session.Copy(&sessOpts.Config)), nil
	}

	sess, err := session.NewSessionWithOptions(sessOpts)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create AWS session")
	}
	return s3.New(sess), nil
}

func sessionOptions(p Params) session.Options {
	sessOpts := session.Options{Profile: p.Profile}
	if p.Region != "" {
		sessOpts.Config.Region = aws.String(p.Region)
	}
	if p.AccessKeyID != "" || p.SecretAccessKey != "" || p.SessionToken != "" {
		sessOpts.Config.Credentials = credentials.NewStaticCredentials(
			p.AccessKeyID, p.SecretAccessKey, p.SessionToken)
	}
	return sessOpts
}
