package s3

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"chainfly/internal/config"
	"chainfly/internal/port"
)

// documentStore keeps rendered invoice documents in S3 (or any S3-compatible
// endpoint such as MinIO when cfg.Endpoint is set).
type documentStore struct {
	client    *s3.Client
	presigner *s3.PresignClient
	uploader  *manager.Uploader
}

// NewS3Client creates a new S3-backed ObjectStorage implementation.
func NewS3Client(ctx context.Context, cfg *config.S3Config) (port.ObjectStorage, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &documentStore{
		client:    client,
		presigner: s3.NewPresignClient(client),
		uploader:  manager.NewUploader(client),
	}, nil
}

func (d *documentStore) Upload(ctx context.Context, doc port.DocumentUpload) (*port.StoredDocument, error) {
	filename := doc.Filename
	if filename == "" {
		filename = path.Base(doc.Key)
	}
	put := &s3.PutObjectInput{
		Bucket:             aws.String(doc.Bucket),
		Key:                aws.String(doc.Key),
		Body:               doc.Body,
		ContentType:        aws.String(doc.ContentType),
		ContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", filename)),
		Metadata:           doc.Metadata,
	}
	if doc.Size > 0 {
		put.ContentLength = aws.Int64(doc.Size)
	}

	result, err := d.uploader.Upload(ctx, put)
	if err != nil {
		return nil, fmt.Errorf("s3 upload %s: %w", doc.Key, err)
	}
	return &port.StoredDocument{
		Location: result.Location,
		ETag:     aws.ToString(result.ETag),
	}, nil
}

func (d *documentStore) GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error) {
	result, err := d.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(time.Duration(expirySeconds)*time.Second))
	if err != nil {
		return "", fmt.Errorf("s3 presign %s: %w", key, err)
	}
	return result.URL, nil
}
