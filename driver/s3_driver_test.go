package driver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockS3API struct {
	headErr error
	putErr  error
	putKeys []string
}

func (m *mockS3API) HeadObject(_ context.Context, _ *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if m.headErr != nil {
		return nil, m.headErr
	}
	return &s3.HeadObjectOutput{}, nil
}

func (m *mockS3API) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.putKeys = append(m.putKeys, aws.ToString(in.Key))
	return &s3.PutObjectOutput{}, nil
}

func TestS3Driver_ObjectExists(t *testing.T) {
	tests := []struct {
		name    string
		headErr error
		want    bool
		wantErr bool
	}{
		{name: "present", want: true},
		{name: "typed not found", headErr: &types.NotFound{}, want: false},
		{name: "no such key", headErr: &types.NoSuchKey{}, want: false},
		{name: "generic 404 code", headErr: &smithy.GenericAPIError{Code: "404"}, want: false},
		{name: "generic NotFound code", headErr: &smithy.GenericAPIError{Code: "NotFound"}, want: false},
		{name: "access denied", headErr: &smithy.GenericAPIError{Code: "AccessDenied"}, wantErr: true},
		{name: "connection refused", headErr: errors.New("dial tcp: connection refused"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewS3Driver(&mockS3API{headErr: tt.headErr}, "books")
			got, err := d.ObjectExists(context.Background(), "1_a_b_1.fb2")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestS3Driver_UploadFile_MissingFile(t *testing.T) {
	d := NewS3Driver(&mockS3API{}, "books")
	err := d.UploadFile(context.Background(), "k", filepath.Join(t.TempDir(), "missing"), "")
	require.Error(t, err)
}

type fakeS3Server struct {
	mu      sync.Mutex
	objects map[string]string
	types   map[string]string
}

func (f *fakeS3Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodHead:
		if _, ok := f.objects[r.URL.Path]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = string(body)
		f.types[r.URL.Path] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestS3Driver_AgainstHTTPServer(t *testing.T) {
	fake := &fakeS3Server{objects: map[string]string{}, types: map[string]string{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	client := s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String(srv.URL),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("key", "secret", ""),
	})
	d := NewS3Driver(client, "library")
	ctx := context.Background()

	exists, err := d.ObjectExists(ctx, "1_akunin_azazel_1_5.fb2")
	require.NoError(t, err)
	assert.False(t, exists)

	path := filepath.Join(t.TempDir(), "book.fb2")
	require.NoError(t, os.WriteFile(path, []byte("<FictionBook/>"), 0o600))
	require.NoError(t, d.UploadFile(ctx, "1_akunin_azazel_1_5.fb2", path, "application/x-fictionbook+xml"))

	exists, err = d.ObjectExists(ctx, "1_akunin_azazel_1_5.fb2")
	require.NoError(t, err)
	assert.True(t, exists)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	stored := fake.objects["/library/1_akunin_azazel_1_5.fb2"]
	assert.True(t, strings.Contains(stored, "<FictionBook/>"))
	assert.Equal(t, "application/x-fictionbook+xml", fake.types["/library/1_akunin_azazel_1_5.fb2"])
}
