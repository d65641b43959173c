package s3

import (
	"bytes"
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/TomasH60/semantic-blockchain/internal/util"
	"github.com/TomasH60/semantic-blockchain/pkg/loader"
)

// S3SourceLoader is a SourceLoader that reads triple dumps from an S3
// bucket. Reads are cached and retried up to Retries times.
type S3SourceLoader struct {
	bucket  string
	client  *s3.Client
	retries int
	cache   *loader.Cache
}

// NewS3SourceLoaderWithClient creates a new S3SourceLoader using an existing
// s3.Client.
func NewS3SourceLoaderWithClient(bucket string, client *s3.Client, retries int) *S3SourceLoader {
	return &S3SourceLoader{
		bucket:  bucket,
		client:  client,
		retries: retries,
		cache:   loader.NewCache(),
	}
}

// NewS3SourceLoaderParams defines the configuration parameters for
// creating a new S3SourceLoader.
//
// Endpoint allows overriding the S3 endpoint (useful for S3-compatible
// storage like MinIO).
type NewS3SourceLoaderParams struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Retries   int
}

// NewS3SourceLoader creates a new S3SourceLoader with static credentials and
// the given endpoint and region.
//
// Example:
//
//	l, err := s3.NewS3SourceLoader(ctx, s3.NewS3SourceLoaderParams{
//		Bucket:    "dumps",
//		Endpoint:  "http://localhost:9000",
//		Region:    "us-east-1",
//		AccessKey: os.Getenv("AWS_ACCESS_KEY"),
//		SecretKey: os.Getenv("AWS_SECRET_KEY"),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	file, _ := loader.NewSourceFile(loader.NewSourceFileParams{Path: "tron/blocks.ttl", Loader: l})
//	text, err := file.GetText(ctx)
func NewS3SourceLoader(ctx context.Context, params NewS3SourceLoaderParams) (*S3SourceLoader, error) {
	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(params.Region),
		config.WithBaseEndpoint(params.Endpoint),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			params.AccessKey,
			params.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	return NewS3SourceLoaderWithClient(params.Bucket, client, params.Retries), nil
}

// GetFileText retrieves the contents of the given SourceFile from the
// configured bucket. It implements the SourceLoader interface.
func (l *S3SourceLoader) GetFileText(ctx context.Context, file loader.SourceFile) ([]byte, error) {
	return l.cache.Get(loader.CacheKey(file), func() ([]byte, error) {
		return util.RetryWithContext(ctx, l.retries, func(ctx context.Context) ([]byte, error) {
			return l.fetch(ctx, file.Path)
		})
	})
}

func (l *S3SourceLoader) fetch(ctx context.Context, key string) ([]byte, error) {
	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, out.Body); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
