package objstore

import (
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Code classifies err. Errors wrapped with github.com/pkg/errors are
// unwrapped first.
func Code(err error) codes.Code {
	if err == nil {
		return codes.OK
	}

	cause := errors.Cause(err)
	switch e := cause.(type) {
	case awserr.RequestFailure:
		if c, ok := httpCode(e.StatusCode()); ok {
			return c
		}
		return awsCode(e.Code())
	case awserr.Error:
		return awsCode(e.Code())
	}

	if os.IsExist(cause) {
		return codes.AlreadyExists
	} else if os.IsNotExist(cause) {
		return codes.NotFound
	} else if os.IsPermission(cause) {
		return codes.PermissionDenied
	}
	return codes.Unknown
}

// Status wraps err in a gRPC status carrying its Code.
func Status(err error) *status.Status {
	if err == nil {
		return status.New(codes.OK, "")
	}
	return status.New(Code(err), err.Error())
}

// IsNotFound reports whether err means the bucket or object does not exist.
func IsNotFound(err error) bool {
	return Code(err) == codes.NotFound
}

func httpCode(statusCode int) (codes.Code, bool) {
	switch statusCode {
	case http.StatusNotFound:
		return codes.NotFound, true
	case http.StatusForbidden:
		return codes.PermissionDenied, true
	case http.StatusUnauthorized:
		return codes.Unauthenticated, true
	case http.StatusConflict:
		return codes.AlreadyExists, true
	case http.StatusBadRequest:
		return codes.InvalidArgument, true
	case http.StatusPreconditionFailed:
		return codes.FailedPrecondition, true
	case http.StatusTooManyRequests:
		return codes.ResourceExhausted, true
	case http.StatusServiceUnavailable:
		return codes.Unavailable, true
	}
	return codes.Unknown, false
}

func awsCode(code string) codes.Code {
	switch code {
	case s3.ErrCodeNoSuchKey, s3.ErrCodeNoSuchBucket, s3.ErrCodeNoSuchUpload, "NotFound":
		return codes.NotFound
	case s3.ErrCodeBucketAlreadyExists, s3.ErrCodeBucketAlreadyOwnedByYou:
		return codes.AlreadyExists
	case "AccessDenied":
		return codes.PermissionDenied
	case "NoCredentialProviders", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
		return codes.Unauthenticated
	case "MissingRegion", "InvalidParameter", "InvalidBucketName":
		return codes.InvalidArgument
	case request.CanceledErrorCode:
		return codes.Canceled
	case "SlowDown":
		return codes.ResourceExhausted
	}
	return codes.Unknown
}
