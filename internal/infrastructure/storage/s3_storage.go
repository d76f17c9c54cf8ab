// Package storage provides the S3-backed label archive.
package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/shipping"
	infraconfig "github.com/storefront/backend/internal/infrastructure/config"
)

// S3LabelArchive stores purchased label documents in an S3-compatible
// bucket so they can be re-downloaded after the carrier's own retention
// window expires. It works against AWS S3 as well as MinIO and other
// S3-compatible backends.
type S3LabelArchive struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	keyPrefix     string
	logger        *zap.Logger
}

// S3LabelArchiveOption is a functional option for configuring S3LabelArchive
type S3LabelArchiveOption func(*S3LabelArchive)

// WithLogger sets a custom logger for S3LabelArchive
func WithLogger(logger *zap.Logger) S3LabelArchiveOption {
	return func(a *S3LabelArchive) {
		a.logger = logger
	}
}

// NewS3LabelArchive creates a new S3LabelArchive from configuration.
// When AccessKeyID and SecretAccessKey are set they are used as static
// credentials; otherwise the default AWS credential chain applies.
func NewS3LabelArchive(cfg *infraconfig.StorageConfig, opts ...S3LabelArchiveOption) (*S3LabelArchive, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if cfg.AccessKeyID != "" || cfg.SecretAccessKey != "" {
		if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
			return nil, errors.New("storage access key id and secret access key must be set together")
		}
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	endpoint := cfg.Endpoint
	if endpoint != "" {
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid storage endpoint: %w", err)
		}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "labels"
	}

	archive := &S3LabelArchive{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		keyPrefix:     keyPrefix,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(archive)
	}
	return archive, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
// Call this during application startup so the first label store cannot fail
// on a missing bucket.
func (a *S3LabelArchive) EnsureBucket(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	a.logger.Info("Creating label archive bucket", zap.String("bucket", a.bucket))
	_, err = a.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Store uploads the shipment's label document and returns the object key.
// The label payload on the shipment is base64; the archive stores the decoded
// document under {prefix}/{carrier}/{yyyy/mm}/{shipment-id}.{ext}.
func (a *S3LabelArchive) Store(ctx context.Context, shipment *shipping.Shipment) (string, error) {
	if shipment == nil {
		return "", errors.New("shipment is required")
	}
	if shipment.LabelData == "" {
		return "", errors.New("shipment has no label data")
	}

	document, err := base64.StdEncoding.DecodeString(shipment.LabelData)
	if err != nil {
		return "", fmt.Errorf("failed to decode label data: %w", err)
	}

	key := a.ObjectKey(shipment)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(document),
		ContentType: aws.String(labelContentType(shipment.LabelFormat)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload label: %w", err)
	}

	a.logger.Debug("Label archived",
		zap.String("bucket", a.bucket),
		zap.String("key", key),
		zap.Int("bytes", len(document)))
	return key, nil
}

// LabelURL generates a presigned download URL for an archived label.
func (a *S3LabelArchive) LabelURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errors.New("object key is required")
	}
	if expiresIn <= 0 {
		expiresIn = 15 * time.Minute
	}

	presignReq, err := a.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiresIn))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate download URL: %w", err)
	}
	return presignReq.URL, time.Now().Add(expiresIn), nil
}

// Delete removes an archived label.
func (a *S3LabelArchive) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("object key is required")
	}
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete label: %w", err)
	}
	return nil
}

// ObjectKey returns the archive key for a shipment's label.
func (a *S3LabelArchive) ObjectKey(shipment *shipping.Shipment) string {
	return path.Join(
		a.keyPrefix,
		string(shipment.Carrier),
		shipment.CreatedAt.UTC().Format("2006/01"),
		shipment.ID.String()+labelExtension(shipment.LabelFormat),
	)
}

// Bucket returns the bucket name
func (a *S3LabelArchive) Bucket() string {
	return a.bucket
}

func labelContentType(format shipping.LabelFormat) string {
	switch format {
	case shipping.LabelFormatPNG:
		return "image/png"
	case shipping.LabelFormatZPL:
		return "application/zpl"
	default:
		return "application/pdf"
	}
}

func labelExtension(format shipping.LabelFormat) string {
	switch format {
	case shipping.LabelFormatPNG:
		return ".png"
	case shipping.LabelFormatZPL:
		return ".zpl"
	default:
		return ".pdf"
	}
}
