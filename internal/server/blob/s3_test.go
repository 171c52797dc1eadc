package blob

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sc "github.com/tijori/tijori/internal/server/config"
)

func testConfig() *sc.Config {
	return &sc.Config{
		S3Region:                "us-east-1",
		S3RootUser:              "minioadmin",
		S3RootPassword:          "minioadmin",
		S3BaseEndpoint:          "http://127.0.0.1:9000",
		S3Bucket:                "tijori",
		PresignValidityDuration: 10 * time.Minute,
	}
}

func restoreSeams(t *testing.T) {
	t.Helper()
	origLoad, origNewS3, origNewPre := loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient
	origPut, origDel, origGet, origNow := putObject, deleteObject, presignGetObject, now
	t.Cleanup(func() {
		loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient = origLoad, origNewS3, origNewPre
		putObject, deleteObject, presignGetObject, now = origPut, origDel, origGet, origNow
	})
}

func newTestStore(t *testing.T) *S3Store {
	t.Helper()
	restoreSeams(t)
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client { return &s3.Client{} }
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient { return &s3.PresignClient{} }

	st, err := NewS3Store(context.Background(), testConfig())
	require.NoError(t, err)
	return st
}

func TestNewS3Store_AppliesConfig(t *testing.T) {
	restoreSeams(t)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		require.NotNil(t, lo.Credentials)
		creds, err := lo.Credentials.Retrieve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "minioadmin", creds.AccessKeyID)
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		require.NotNil(t, c)
		return &s3.PresignClient{}
	}

	st, err := NewS3Store(context.Background(), testConfig())
	require.NoError(t, err)
	assert.Equal(t, "tijori", st.bucket)
	assert.Equal(t, 10*time.Minute, st.presignExpiry)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
}

func TestNewS3Store_LoadError(t *testing.T) {
	restoreSeams(t)
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}

	_, err := NewS3Store(context.Background(), testConfig())
	assert.EqualError(t, err, "load-fail")
}

func TestStorageKey(t *testing.T) {
	k := StorageKey("u-1", time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC))
	assert.Regexp(t, regexp.MustCompile(`^users/u-1/2024/03/05/[0-9a-f-]{36}$`), k)
	assert.NotEqual(t, k, StorageKey("u-1", time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)))
}

func TestPut(t *testing.T) {
	st := newTestStore(t)
	now = func() time.Time { return time.Date(2025, time.January, 2, 3, 4, 5, 0, time.UTC) }

	var got *s3.PutObjectInput
	var body string
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		got = in
		b, _ := io.ReadAll(in.Body)
		body = string(b)
		return &s3.PutObjectOutput{}, nil
	}

	key, err := st.Put(context.Background(), "u-9", strings.NewReader("hello"), 5, "text/plain")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "users/u-9/2025/01/02/"))
	assert.Equal(t, key, aws.ToString(got.Key))
	assert.Equal(t, "tijori", aws.ToString(got.Bucket))
	assert.Equal(t, int64(5), aws.ToInt64(got.ContentLength))
	assert.Equal(t, "text/plain", aws.ToString(got.ContentType))
	assert.Equal(t, "hello", body)
}

func TestPut_UnknownSizeAndError(t *testing.T) {
	st := newTestStore(t)

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		assert.Nil(t, in.ContentLength)
		assert.Nil(t, in.ContentType)
		return nil, errors.New("s3 down")
	}

	_, err := st.Put(context.Background(), "u-1", strings.NewReader("x"), -1, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3 down")
}

func TestViewAndDownloadURL(t *testing.T) {
	st := newTestStore(t)

	var dispositions []string
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		var po s3.PresignOptions
		for _, fn := range optFns {
			fn(&po)
		}
		assert.Equal(t, 10*time.Minute, po.Expires)
		assert.Equal(t, "k1", aws.ToString(in.Key))
		dispositions = append(dispositions, aws.ToString(in.ResponseContentDisposition))
		return &v4.PresignedHTTPRequest{URL: "https://s3/k1?sig"}, nil
	}

	u, err := st.ViewURL(context.Background(), "k1", "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://s3/k1?sig", u)

	_, err = st.DownloadURL(context.Background(), "k1", "report.pdf")
	require.NoError(t, err)

	assert.Equal(t, []string{`inline; filename=report.pdf`, `attachment; filename=report.pdf`}, dispositions)
}

func TestPresign_Error(t *testing.T) {
	st := newTestStore(t)
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("sign-fail")
	}

	_, err := st.DownloadURL(context.Background(), "k", "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sign-fail")
}

func TestDelete(t *testing.T) {
	st := newTestStore(t)

	var deleted string
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
		deleted = aws.ToString(in.Key)
		return &s3.DeleteObjectOutput{}, nil
	}
	require.NoError(t, st.Delete(context.Background(), "k2"))
	assert.Equal(t, "k2", deleted)

	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
		return nil, errors.New("gone")
	}
	assert.Error(t, st.Delete(context.Background(), "k2"))
}

func TestDisposition(t *testing.T) {
	assert.Equal(t, "inline", disposition("inline", ""))
	assert.Equal(t, `attachment; filename="my file.txt"`, disposition("attachment", "my file.txt"))
	assert.Contains(t, disposition("attachment", "résumé.pdf"), "filename*=utf-8''")
}
