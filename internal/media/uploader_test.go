package media

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instaclone/internal/domain"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	if params.Body != nil {
		b, _ := io.ReadAll(params.Body)
		f.body = string(b)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func pngImage(body string) Image {
	return Image{Filename: "a.png", ContentType: "image/png", Size: int64(len(body)), Body: strings.NewReader(body)}
}

func TestS3Uploader_Upload(t *testing.T) {
	putter := &fakePutter{}
	u := newS3Uploader(putter, S3Options{Bucket: "pics", Region: "eu-west-1"})

	url, err := u.Upload(context.Background(), "posts/2024/05/x.png", pngImage("data"))
	require.NoError(t, err)
	assert.Equal(t, "https://pics.s3.eu-west-1.amazonaws.com/posts/2024/05/x.png", url)
	require.NotNil(t, putter.input)
	assert.Equal(t, "pics", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "posts/2024/05/x.png", aws.ToString(putter.input.Key))
	assert.Equal(t, "image/png", aws.ToString(putter.input.ContentType))
	assert.Equal(t, int64(4), aws.ToInt64(putter.input.ContentLength))
	assert.Equal(t, "data", putter.body)
}

func TestS3Uploader_PutError(t *testing.T) {
	putter := &fakePutter{err: errors.New("access denied")}
	u := newS3Uploader(putter, S3Options{Bucket: "pics", Region: "us-east-1"})

	_, err := u.Upload(context.Background(), "k.png", pngImage("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com", publicBaseURL(S3Options{Bucket: "b", PublicBaseURL: "https://cdn.example.com/"}))
	assert.Equal(t, "http://localhost:9000/b", publicBaseURL(S3Options{Bucket: "b", Endpoint: "http://localhost:9000/"}))
	assert.Equal(t, "https://b.s3.us-east-1.amazonaws.com", publicBaseURL(S3Options{Bucket: "b", Region: "us-east-1"}))
}

func TestNewS3Uploader_RequiresBucket(t *testing.T) {
	_, err := NewS3Uploader(context.Background(), S3Options{})
	require.Error(t, err)
}

func TestDisabledUploader(t *testing.T) {
	_, err := NewDisabledUploader("uploads not configured").Upload(context.Background(), "k", pngImage("x"))
	require.EqualError(t, err, "uploads not configured")
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(pngImage("abc"), 10))
	assert.ErrorIs(t, Validate(Image{}, 10), domain.ErrImageRequired)
	assert.ErrorIs(t, Validate(Image{ContentType: "text/plain", Body: strings.NewReader("x")}, 10), domain.ErrInvalidImage)
	assert.ErrorIs(t, Validate(pngImage("too large body"), 4), domain.ErrImageTooLarge)
}

func TestKeys(t *testing.T) {
	key := PostKey(time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC), "Photo.JPG")
	assert.Regexp(t, regexp.MustCompile(`^posts/2024/03/[0-9a-f-]{36}\.jpg$`), key)

	avatar := AvatarKey("u1", `C:\fakepath\me.png`)
	assert.Regexp(t, regexp.MustCompile(`^avatars/u1/[0-9a-f-]{36}\.png$`), avatar)

	assert.Regexp(t, regexp.MustCompile(`^avatars/u1/[0-9a-f-]{36}$`), AvatarKey("u1", "noext"))
}
