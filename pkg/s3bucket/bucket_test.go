package s3bucket_test

import (
	"context"
	"encoding/xml"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"runtime"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/serverlessresearch/s3blocks/pkg/awsclient"
	"github.com/serverlessresearch/s3blocks/pkg/awscreds"
	"github.com/serverlessresearch/s3blocks/pkg/objstore"
	"github.com/serverlessresearch/s3blocks/pkg/s3bucket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBucket = "test-bucket"

// fakeS3 serves just enough of the path-style S3 REST API for the bucket
// block: PutObject, GetObject and ListObjectsV2 on a single bucket.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

type listEntry struct {
	Key  string
	Size int
}

type listResult struct {
	XMLName     xml.Name `xml:"ListBucketResult"`
	Name        string
	Prefix      string
	KeyCount    int
	IsTruncated bool
	Contents    []listEntry
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)
	if parts[0] != testBucket {
		writeError(w, http.StatusNotFound, s3.ErrCodeNoSuchBucket)
		return
	}
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodPut && key != "":
		body, err := ioutil.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "IncompleteBody")
			return
		}
		f.objects[key] = body
		w.Header().Set("ETag", `"fake"`)
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodGet && key != "":
		data, ok := f.objects[key]
		if !ok {
			writeError(w, http.StatusNotFound, s3.ErrCodeNoSuchKey)
			return
		}
		w.Header().Set("Content-Length", fmt.Sprint(len(data)))
		w.Write(data)
	case r.Method == http.MethodGet && r.URL.Query().Get("list-type") == "2":
		prefix := r.URL.Query().Get("prefix")
		res := listResult{Name: testBucket, Prefix: prefix}
		for k, v := range f.objects {
			if strings.HasPrefix(k, prefix) {
				res.Contents = append(res.Contents, listEntry{Key: k, Size: len(v)})
			}
		}
		sort.Slice(res.Contents, func(i, j int) bool { return res.Contents[i].Key < res.Contents[j].Key })
		res.KeyCount = len(res.Contents)
		w.Header().Set("Content-Type", "application/xml")
		xml.NewEncoder(w).Encode(res)
	default:
		writeError(w, http.StatusBadRequest, "InvalidRequest")
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>%s</Code><Message>%s</Message></Error>`, code, code)
}

func newFakeS3(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(&fakeS3{objects: make(map[string][]byte)})
	t.Cleanup(srv.Close)
	return srv
}

// awsConfig returns credentials whose base session already points at the
// fake endpoint, so their clients are shared through the cache.
func awsConfig(srv *httptest.Server, basepath string) s3bucket.Config {
	sess := session.Must(session.NewSession(&aws.Config{
		Endpoint:         aws.String(srv.URL),
		Region:           aws.String("us-east-1"),
		S3ForcePathStyle: aws.Bool(true),
		Credentials:      credentials.NewStaticCredentials("testing", "testing", ""),
		MaxRetries:       aws.Int(0),
	}))
	return s3bucket.Config{
		Name:     testBucket,
		Basepath: basepath,
		AWS:      &awscreds.AWSCredentials{Session: sess},
	}
}

// minioConfig points at the fake endpoint through client parameters, so
// every operation builds its own client.
func minioConfig(srv *httptest.Server, basepath string) s3bucket.Config {
	return s3bucket.Config{
		Name:     testBucket,
		Basepath: basepath,
		MinIO: &awscreds.MinIOCredentials{
			RootUser:     "minioadmin",
			RootPassword: "minioadmin",
			ClientParameters: awscreds.ClientParameters{
				EndpointURL:    srv.URL,
				ForcePathStyle: aws.Bool(true),
				MaxRetries:     aws.Int(0),
			},
		},
	}
}

var configs = map[string]func(*httptest.Server, string) s3bucket.Config{
	"aws_credentials":   awsConfig,
	"minio_credentials": minioConfig,
}

func newBucket(t *testing.T, cfg s3bucket.Config) (*s3bucket.Bucket, *awsclient.Cache[s3.S3]) {
	cache := awsclient.NewCache[s3.S3](awsclient.NewS3Client, nil)
	bucket, err := s3bucket.New(cfg, cache, nil)
	require.NoError(t, err)
	return bucket, cache
}

func TestReadWriteRoundtrip(t *testing.T) {
	for name, config := range configs {
		t.Run(name, func(t *testing.T) {
			bucket, _ := newBucket(t, config(newFakeS3(t), ""))
			ctx := context.Background()

			key, err := bucket.WritePath(ctx, "test.txt", []byte("hello"))
			require.NoError(t, err)
			assert.Equal(t, "test.txt", key)

			data, err := bucket.ReadPath(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, []byte("hello"), data)
		})
	}
}

func TestWriteWithMissingDirectorySucceeds(t *testing.T) {
	for name, config := range configs {
		t.Run(name, func(t *testing.T) {
			bucket, _ := newBucket(t, config(newFakeS3(t), ""))
			ctx := context.Background()

			key, err := bucket.WritePath(ctx, "folder/test.txt", []byte("hello"))
			require.NoError(t, err)

			data, err := bucket.ReadPath(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, []byte("hello"), data)
		})
	}
}

func TestReadFailsDoesNotExist(t *testing.T) {
	for name, config := range configs {
		t.Run(name, func(t *testing.T) {
			bucket, _ := newBucket(t, config(newFakeS3(t), ""))

			_, err := bucket.ReadPath(context.Background(), "test-bucket/foo/bar")
			require.Error(t, err)
			assert.True(t, objstore.IsNotFound(err), "unexpected error: %v", err)
		})
	}
}

func TestBasepath(t *testing.T) {
	bucket, _ := newBucket(t, awsConfig(newFakeS3(t), "subfolder"))
	ctx := context.Background()

	key, err := bucket.WritePath(ctx, "test.txt", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "subfolder/test.txt", key)

	data, err := bucket.ReadPath(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	data, err = bucket.ReadPath(ctx, "test.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
}

func TestResolvePath(t *testing.T) {
	bucket, _ := newBucket(t, s3bucket.Config{
		Name:     testBucket,
		Basepath: "/base/",
		AWS:      &awscreds.AWSCredentials{},
	})

	assert.Equal(t, "base/a.txt", bucket.ResolvePath("a.txt"))
	assert.Equal(t, "base/a.txt", bucket.ResolvePath("/a.txt"))
	assert.Equal(t, "base/a.txt", bucket.ResolvePath("base/a.txt"))
	assert.Equal(t, "base/basement/a.txt", bucket.ResolvePath("basement/a.txt"))
	assert.Equal(t, "base/", bucket.ResolvePath(""))

	// A key nested under a second copy of the basepath is only reachable in full.
	assert.Equal(t, "base/base/a.txt", bucket.ResolvePath("base/base/a.txt"))
}

func TestListPaths(t *testing.T) {
	srv := newFakeS3(t)
	ctx := context.Background()

	root, _ := newBucket(t, awsConfig(srv, ""))
	_, err := root.WritePath(ctx, "outside.txt", []byte("x"))
	require.NoError(t, err)

	bucket, _ := newBucket(t, awsConfig(srv, "sub"))
	for _, p := range []string{"b.txt", "a.txt", "dir/c.txt"} {
		_, err := bucket.WritePath(ctx, p, []byte(p))
		require.NoError(t, err)
	}

	keys, err := bucket.ListPaths(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"sub/a.txt", "sub/b.txt", "sub/dir/c.txt"}, keys)

	keys, err = bucket.ListPaths(ctx, "dir")
	require.NoError(t, err)
	assert.Equal(t, []string{"sub/dir/c.txt"}, keys)
}

func TestBucketSharesCachedClient(t *testing.T) {
	cfg := awsConfig(newFakeS3(t), "")
	bucket, cache := newBucket(t, cfg)
	ctx := context.Background()

	// Holding a client keeps it cached across bucket operations.
	held, err := cfg.AWS.S3Client(cache)
	require.NoError(t, err)

	_, err = bucket.WritePath(ctx, "test.txt", []byte("hello"))
	require.NoError(t, err)
	_, err = bucket.ReadPath(ctx, "test.txt")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())

	again, err := cfg.AWS.S3Client(cache)
	require.NoError(t, err)
	assert.Same(t, held, again)
	runtime.KeepAlive(held)

	minio, cache := newBucket(t, minioConfig(newFakeS3(t), ""))
	_, err = minio.WritePath(ctx, "test.txt", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 0, cache.Len())
}

func TestTooManyCredentials(t *testing.T) {
	srv := newFakeS3(t)
	cfg := awsConfig(srv, "subfolder")
	cfg.MinIO = minioConfig(srv, "").MinIO

	_, err := s3bucket.New(cfg, awsclient.NewCache[s3.S3](awsclient.NewS3Client, nil), nil)
	assert.EqualError(t, err, "only one of AWS or MinIO credentials may be provided")
}

func TestTooFewCredentials(t *testing.T) {
	_, err := s3bucket.New(s3bucket.Config{Name: testBucket, Basepath: "subfolder"},
		awsclient.NewCache[s3.S3](awsclient.NewS3Client, nil), nil)
	assert.EqualError(t, err, "either AWS or MinIO credentials must be provided")
}

func TestBucketNameRequired(t *testing.T) {
	_, err := s3bucket.New(s3bucket.Config{AWS: &awscreds.AWSCredentials{}},
		awsclient.NewCache[s3.S3](awsclient.NewS3Client, nil), nil)
	assert.Error(t, err)

	_, err = s3bucket.New(s3bucket.Config{Name: testBucket, AWS: &awscreds.AWSCredentials{}}, nil, nil)
	assert.Error(t, err)
}
