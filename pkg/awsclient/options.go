package awsclient

import (
	"bytes"
	"crypto/tls"
	"net/http"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
)

// Option adjusts how a client is built. Options are not part of the cache
// key, so any call that passes one always gets a freshly built client.
type Option func(*session.Options)

// WithEndpoint points the client at a non-AWS endpoint such as MinIO.
func WithEndpoint(url string) Option {
	return func(o *session.Options) {
		o.Config.Endpoint = aws.String(url)
	}
}

func WithDisableSSL(disable bool) Option {
	return func(o *session.Options) {
		o.Config.DisableSSL = aws.Bool(disable)
	}
}

// WithInsecureSkipVerify turns off TLS certificate verification.
func WithInsecureSkipVerify() Option {
	return func(o *session.Options) {
		o.Config.HTTPClient = &http.Client{
			Transport: &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		}
	}
}

// WithCABundle trusts the PEM encoded certificates in pem. It has no effect
// when the client is built from a caller supplied session.
func WithCABundle(pem []byte) Option {
	return func(o *session.Options) {
		o.CustomCABundle = bytes.NewReader(pem)
	}
}

func WithS3ForcePathStyle(force bool) Option {
	return func(o *session.Options) {
		o.Config.S3ForcePathStyle = aws.Bool(force)
	}
}

func WithMaxRetries(n int) Option {
	return func(o *session.Options) {
		o.Config.MaxRetries = aws.Int(n)
	}
}

// WithConfig merges cfg over everything set so far.
func WithConfig(cfg *aws.Config) Option {
	return func(o *session.Options) {
		o.Config.MergeIn(cfg)
	}
}
