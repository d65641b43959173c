package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "github.com/TomasH60/semantic-blockchain/internal/config"
)

// Bucket wraps an S3 client bound to one bucket.
type Bucket struct {
	Name   string
	Client *s3.Client
}

func NewS3Client(ctx context.Context, cfg appconfig.AWSConfig) (*s3.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(cfg.Region),
		config.WithBaseEndpoint(cfg.Endpoint),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return client, nil
}

// ContentType guesses the MIME type of a triple file from its name.
func ContentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".ttl":
		return "text/turtle"
	case ".nt":
		return "application/n-triples"
	case ".n3":
		return "text/n3"
	case ".rdf", ".owl":
		return "application/rdf+xml"
	}
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// UploadKey builds the object key an uploaded file is archived under.
func UploadKey(prefix, id, name string) string {
	return path.Join(prefix, id+strings.ToLower(path.Ext(name)))
}

// PutFile uploads body under key.
func (b Bucket) PutFile(ctx context.Context, key string, body io.Reader) error {
	_, err := b.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.Name),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(ContentType(key)),
	})
	if err != nil {
		return fmt.Errorf("failed to upload file to S3: %w", err)
	}
	return nil
}

// ListFilesWithPrefix lists every key under prefix.
func (b Bucket) ListFilesWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	listInput := &s3.ListObjectsV2Input{
		Bucket: aws.String(b.Name),
		Prefix: aws.String(prefix),
	}

	for {
		listOutput, err := b.Client.ListObjectsV2(ctx, listInput)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects with prefix %s: %w", prefix, err)
		}

		for _, obj := range listOutput.Contents {
			if obj.Key != nil {
				keys = append(keys, *obj.Key)
			}
		}

		if listOutput.IsTruncated != nil && *listOutput.IsTruncated {
			listInput.ContinuationToken = listOutput.NextContinuationToken
		} else {
			break
		}
	}

	return keys, nil
}
