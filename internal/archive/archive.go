// Package archive stores distribution receipts in S3-compatible object storage.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/Aaditya88888/netwin-tournament-sub001/internal/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/exp/slog"
)

// ObjectPutter is the part of the S3 client the archiver uses
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Options configures the S3 client. Endpoint is only needed for non-AWS stores such as R2 or MinIO.
type Options struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

// S3Archiver writes one JSON object per distribution run
type S3Archiver struct {
	client ObjectPutter
	bucket string
	prefix string
}

// NewS3Archiver builds an S3 client from opts. Without static keys the default AWS credential
// chain is used.
func NewS3Archiver(ctx context.Context, opts Options) (*S3Archiver, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("archive bucket is required")
	}
	region := opts.Region
	if region == "" {
		region = "auto"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load object storage config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3ArchiverWithClient(client, opts.Bucket, opts.Prefix), nil
}

// NewS3ArchiverWithClient creates an archiver on an existing client
func NewS3ArchiverWithClient(client ObjectPutter, bucket, prefix string) *S3Archiver {
	return &S3Archiver{client: client, bucket: bucket, prefix: prefix}
}

// ReceiptKey is the object key a receipt is stored under
func (a *S3Archiver) ReceiptKey(receipt *models.DistributionReceipt) string {
	name := fmt.Sprintf("distribution-%s.json", receipt.DistributedAt.UTC().Format("20060102T150405Z"))
	return path.Join(a.prefix, "tournaments", receipt.TournamentID.Hex(), name)
}

// ArchiveReceipt uploads receipt as JSON
func (a *S3Archiver) ArchiveReceipt(ctx context.Context, receipt *models.DistributionReceipt) error {
	body, err := json.MarshalIndent(receipt, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode receipt: %w", err)
	}

	key := a.ReceiptKey(receipt)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"tournament-id":  receipt.TournamentID.Hex(),
			"distributed-by": receipt.DistributedBy,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload receipt %s: %w", key, err)
	}

	slog.Info("Distribution receipt archived", "bucket", a.bucket, "key", key)
	return nil
}

// NoopArchiver discards receipts when archiving is disabled
type NoopArchiver struct{}

func (NoopArchiver) ArchiveReceipt(context.Context, *models.DistributionReceipt) error {
	return nil
}
