package awscreds

import (
	"io/ioutil"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/serverlessresearch/s3blocks/pkg/awsclient"
)

// ClientParameters are extra settings for the clients a credentials block
// builds. Zero fields are left to the SDK. Any set field produces an
// awsclient.Option, which means the client will not be shared through the
// cache.
type ClientParameters struct {
	// UseSSL false talks plain HTTP to the endpoint.
	UseSSL *bool
	// Verify false skips TLS certificate verification.
	Verify *bool
	// CABundle is a path to a PEM file of extra trusted certificates.
	CABundle       string
	EndpointURL    string
	ForcePathStyle *bool
	MaxRetries     *int
	// Config is merged over everything else.
	Config *aws.Config
}

// Options converts the set fields of p into client options.
func (p ClientParameters) Options() ([]awsclient.Option, error) {
	var opts []awsclient.Option

	if p.UseSSL != nil {
		opts = append(opts, awsclient.WithDisableSSL(!*p.UseSSL))
	}
	if p.Verify != nil && !*p.Verify {
		opts = append(opts, awsclient.WithInsecureSkipVerify())
	}
	if p.CABundle != "" {
		path, err := homedir.Expand(p.CABundle)
		if err != nil {
			return nil, errors.Wrap(err, "Failed to expand CA bundle path")
		}
		pem, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "Failed to read CA bundle")
		}
		opts = append(opts, awsclient.WithCABundle(pem))
	}
	if p.EndpointURL != "" {
		opts = append(opts, awsclient.WithEndpoint(p.EndpointURL))
	}
	if p.ForcePathStyle != nil {
		opts = append(opts, awsclient.WithS3ForcePathStyle(*p.ForcePathStyle))
	}
	if p.MaxRetries != nil {
		opts = append(opts, awsclient.WithMaxRetries(*p.MaxRetries))
	}
	if p.Config != nil {
		opts = append(opts, awsclient.WithConfig(p.Config))
	}
	return opts, nil
}
