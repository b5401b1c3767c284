package transport

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectGetter is the part of the S3 client used for downloads
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Options configures access to an S3-compatible mirror
type S3Options struct {
	// Endpoint overrides the AWS endpoint (R2, MinIO, ...)
	Endpoint string
	Region   string

	// Static credentials; when empty the default AWS credential chain is used
	AccessKeyID     string
	SecretAccessKey string

	PathStyle bool
}

// S3Fetcher fetches s3://bucket/key sources
type S3Fetcher struct {
	Client ObjectGetter
}

// NewS3Fetcher builds an S3 client from opts
func NewS3Fetcher(ctx context.Context, opts S3Options) (*S3Fetcher, error) {
	region := opts.Region
	if region == "" {
		region = "auto"
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if opts.AccessKeyID != "" || opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.PathStyle
	})

	return &S3Fetcher{Client: client}, nil
}

// ParseS3 splits an s3://bucket/key locator
func ParseS3(source string) (bucket, key string, err error) {
	u, err := url.Parse(source)
	if err != nil {
		return "", "", fmt.Errorf("invalid s3 locator %q: %w", source, err)
	}
	if u.Scheme != SchemeS3 {
		return "", "", fmt.Errorf("not an s3 locator: %q", source)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("s3 locator %q needs both bucket and key", source)
	}
	return u.Host, key, nil
}

// Fetch implements Fetcher
func (f *S3Fetcher) Fetch(ctx context.Context, source string, dst io.Writer) (int64, error) {
	bucket, key, err := ParseS3(source)
	if err != nil {
		return 0, err
	}

	out, err := f.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, fmt.Errorf("s3 get %s/%s: %w", bucket, key, err)
	}
	defer func() { _ = out.Body.Close() }()

	return copyContext(ctx, dst, out.Body)
}
