package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/kalamitra/kalamitra-api/config"
	"github.com/kalamitra/kalamitra-api/utils"
)

// S3API is the part of the S3 client the image store uses
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ImageStore implements ImageStore using AWS S3 for storage
type S3ImageStore struct {
	client        S3API
	bucket        string
	region        string
	publicBaseURL string
}

// NewS3ImageStore creates an S3 store from the AWS settings in cfg. Static
// credentials are used when configured, otherwise the default AWS chain.
func NewS3ImageStore(ctx context.Context, cfg *config.Config) (*S3ImageStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)))
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewS3ImageStoreWithClient(s3.NewFromConfig(awsConfig), cfg.AWSS3Bucket, cfg.AWSRegion, cfg.AWSS3PublicBaseURL), nil
}

// NewS3ImageStoreWithClient creates an S3 store around an existing client
func NewS3ImageStoreWithClient(client S3API, bucket, region, publicBaseURL string) *S3ImageStore {
	return &S3ImageStore{
		client:        client,
		bucket:        bucket,
		region:        region,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// SaveImage validates and uploads an image, returning its public URL
func (s *S3ImageStore) SaveImage(ctx context.Context, ownerKey string, data []byte, filename string) (string, error) {
	if err := utils.ValidateImage(filename, int64(len(data))); err != nil {
		return "", err
	}

	// Format: uploads/{owner}/{random}_{filename}
	key := fmt.Sprintf("uploads/%s/%s_%s", utils.SecureFilename(ownerKey), uuid.NewString(), utils.SecureFilename(filename))
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(utils.ContentType(filename)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return s.ObjectURL(key), nil
}

// ObjectURL returns the public URL of an object key
func (s *S3ImageStore) ObjectURL(key string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
