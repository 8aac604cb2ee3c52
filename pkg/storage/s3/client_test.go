package s3

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/angelmondragon/content-console/pkg/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

type stubAPI struct {
	objects   map[string][]byte
	headErr   error
	bucketErr error
	deleted   []string
}

func newStubAPI() *stubAPI {
	return &stubAPI{objects: map[string][]byte{}}
}

func (s *stubAPI) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	s.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (s *stubAPI) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if s.headErr != nil {
		return nil, s.headErr
	}
	if _, ok := s.objects[aws.ToString(in.Key)]; !ok {
		return nil, errors.New("not found")
	}
	return &s3.HeadObjectOutput{}, nil
}

func (s *stubAPI) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	s.deleted = append(s.deleted, aws.ToString(in.Key))
	delete(s.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (s *stubAPI) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, s.bucketErr
}

func testConfig() config.S3Config {
	return config.S3Config{Endpoint: "http://localhost:3900", Region: "garage", Bucket: "images", UsePathStyle: true}
}

func TestPutThenDownloadURL(t *testing.T) {
	api := newStubAPI()
	client, err := NewClient(context.Background(), testConfig(), nil, withAPI(api))
	require.NoError(t, err)

	var last [2]int64
	err = client.Put(context.Background(), "projects/abc", "image/png", []byte("pngdata"), func(done, total int64) {
		last = [2]int64{done, total}
	})
	require.NoError(t, err)
	require.Equal(t, []byte("pngdata"), api.objects["projects/abc"])
	require.Equal(t, [2]int64{7, 7}, last)

	got, err := client.DownloadURL(context.Background(), "projects/abc")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:3900/images/projects/abc", got)
}

func TestDownloadURLFailsForMissingObject(t *testing.T) {
	client, err := NewClient(context.Background(), testConfig(), nil, withAPI(newStubAPI()))
	require.NoError(t, err)

	_, err = client.DownloadURL(context.Background(), "services/missing")
	require.Error(t, err)
}

func TestPublicURLVariants(t *testing.T) {
	client := &Client{bucket: "images", endpoint: "https://s3.example.com", usePathStyle: false}
	require.Equal(t, "https://images.s3.example.com/employees/a%20b", client.publicURL("employees/a b"))

	WithPublicBaseURL("https://cdn.example/")(client)
	require.Equal(t, "https://cdn.example/employees/x", client.publicURL("employees/x"))
}

func TestNewClientGivesUpAfterAttempts(t *testing.T) {
	api := newStubAPI()
	api.bucketErr = errors.New("connection refused")

	_, err := NewClient(context.Background(), testConfig(), nil, withAPI(api), ConnAttempts(2), ConnTimeout(0))
	require.Error(t, err)
}

func TestDelete(t *testing.T) {
	api := newStubAPI()
	client, err := NewClient(context.Background(), testConfig(), nil, withAPI(api))
	require.NoError(t, err)

	require.NoError(t, client.Delete(context.Background(), "testimonials/t1"))
	require.Equal(t, []string{"testimonials/t1"}, api.deleted)
}
