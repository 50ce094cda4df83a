package slot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"qrscan-go/internal/scan"
)

// S3Options configures an S3 slot store.
type S3Options struct {
	Bucket   string
	Prefix   string // optional key prefix inside the bucket
	Region   string
	Endpoint string // optional, for S3-compatible services (MinIO etc.)

	// AccessKey and SecretKey select static credentials. When empty the
	// default AWS credential chain applies (env, shared config, IMDS).
	AccessKey string
	SecretKey string
}

// S3 is an S3-backed implementation of the Slot interface. Each slot is one
// object; S3 PUTs are atomic per object, so readers see either the previous
// value or the new one.
type S3 struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// NewS3 creates a new S3 slot store for the given bucket.
func NewS3(opts S3Options) (*S3, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 slot requires a bucket")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			// S3-compatible services generally don't support virtual-hosted
			// bucket addressing.
			o.UsePathStyle = true
		}
	})

	return &S3{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   opts.Bucket,
		prefix:   opts.Prefix,
	}, nil
}

// Read returns the current value of the named slot.
func (s *S3) Read(name string) ([]byte, error) {
	out, err := s.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("reading slot %q: %w", name, scan.ErrSlotNotFound)
		}
		return nil, fmt.Errorf("reading slot %q: %w", name, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading slot %q body: %w", name, err)
	}
	return data, nil
}

// Write replaces the value of the named slot.
func (s *S3) Write(name string, data []byte) error {
	_, err := s.uploader.Upload(context.Background(), &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(name)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("writing slot %q: %w", name, err)
	}
	return nil
}

// Close is a no-op; the S3 client holds no local resources.
func (s *S3) Close() error {
	return nil
}

func (s *S3) key(name string) string {
	if s.prefix == "" {
		return name + ".json"
	}
	return s.prefix + "/" + name + ".json"
}

// Compile-time check that S3 implements scan.Slot interface
var _ scan.Slot = (*S3)(nil)
