package awsclient

import (
	"weak"

	"github.com/aws/aws-sdk-go/aws/session"
)

// Resource names the kind of AWS client to build.
type Resource string

const (
	S3 Resource = "s3"
)

// Params describes the client a caller wants. Empty strings mean "unset" and
// leave resolution to the SDK (environment, shared config, instance role).
type Params struct {
	Resource        Resource
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Region          string
	Profile         string

	// Session, if set, is used as the base for the new client. Only its
	// identity takes part in caching, never its contents.
	Session *session.Session
}

// Key identifies a cached client. Two keys are equal iff every field is.
type Key struct {
	Profile         string
	Region          string
	Session         weak.Pointer[session.Session]
	Resource        Resource
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// Key reduces p to a comparable value. The session contributes a weak
// pointer, which compares equal only for the same *session.Session and does
// not keep that session alive.
func (p Params) Key() Key {
	return Key{
		Profile:         p.Profile,
		Region:          p.Region,
		Session:         weak.Make(p.Session),
		Resource:        p.Resource,
		AccessKeyID:     p.AccessKeyID,
		SecretAccessKey: p.SecretAccessKey,
		SessionToken:    p.SessionToken,
	}
}
