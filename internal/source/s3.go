package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/logging"
)

// DefaultAttempts is how many times a download is tried before giving up
const DefaultAttempts = 3

// S3Config describes an S3-compatible bucket. Endpoint is set for R2 or MinIO.
type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source downloads documents from a bucket, retrying transient failures.
type S3Source struct {
	client   objectGetter
	bucket   string
	attempts int
	backoff  time.Duration
	logger   *zap.Logger
}

// NewS3Source builds a client from cfg. Static credentials are used when both keys are set,
// otherwise the default AWS credential chain applies.
func NewS3Source(ctx context.Context, cfg S3Config, logger *zap.Logger) (*S3Source, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Source(client, cfg.Bucket, logger), nil
}

func newS3Source(client objectGetter, bucket string, logger *zap.Logger) *S3Source {
	return &S3Source{
		client:   client,
		bucket:   bucket,
		attempts: DefaultAttempts,
		backoff:  500 * time.Millisecond,
		logger:   logging.OrNop(logger).Named("source"),
	}
}

// Bucket returns the bucket documents are read from
func (s *S3Source) Bucket() string { return s.bucket }

// Fetch downloads the object at key
func (s *S3Source) Fetch(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.New("document key is required")
	}
	data, err := retry(ctx, s.attempts, s.backoff, func() ([]byte, error) {
		data, err := s.download(ctx, key)
		if err != nil {
			s.logger.Debug("download attempt failed", zap.String("key", key), zap.Error(err))
		}
		return data, err
	})
	if err != nil {
		return nil, &FetchError{Key: key, Attempts: s.attempts, Err: err}
	}
	s.logger.Debug("downloaded document", zap.String("key", key), zap.Int("bytes", len(data)))
	return data, nil
}

func (s *S3Source) download(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer out.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, out.Body); err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	return buf.Bytes(), nil
}

// retry calls fn up to attempts times, waiting backoff*(i+1) between failures.
func retry[T any](ctx context.Context, attempts int, backoff time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for i := 0; i < attempts; i++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if i == attempts-1 {
			break
		}

		timer := time.NewTimer(backoff * time.Duration(i+1))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
	return zero, lastErr
}
