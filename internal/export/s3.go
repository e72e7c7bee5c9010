package export

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"skenterprise/billing/internal/config"
	"skenterprise/billing/internal/document"
)

// s3Exporter delivers rendered invoices to an S3 bucket and hands back a
// presigned download link.
type s3Exporter struct {
	cfg           *config.Config
	s3Client      *s3.Client
	presignClient *s3.PresignClient
}

// NewS3Exporter creates an exporter that uploads into the configured bucket.
func NewS3Exporter(cfg *config.Config) (IExporter, error) {
	awsCfg, err := aws_config.LoadDefaultConfig(context.TODO(),
		aws_config.WithRegion(cfg.AwsRegion),
		aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AwsAccessKeyID,
			cfg.AwsSecretAccessKey,
			"", // session token
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg)

	return &s3Exporter{
		cfg:           cfg,
		s3Client:      s3Client,
		presignClient: s3.NewPresignClient(s3Client),
	}, nil
}

// Export renders the document and uploads it. The upload is bounded by the
// configured export timeout so a stalled network cannot wedge the worker;
// the timeout context is released on every path.
func (e *s3Exporter) Export(ctx context.Context, doc *document.InvoiceDocument) (*Result, error) {
	if doc == nil {
		return nil, document.ErrNothingToRender
	}

	pdfBytes, err := document.RenderPDF(doc)
	if err != nil {
		return nil, err
	}

	key := "invoices/" + exportKey(doc)

	uploadCtx, cancel := context.WithTimeout(ctx, e.cfg.ExportTimeout)
	defer cancel()

	_, err = e.s3Client.PutObject(uploadCtx, &s3.PutObjectInput{
		Bucket:      aws.String(e.cfg.AwsS3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(pdfBytes),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to upload %s: %v", ErrExportUnavailable, key, err)
	}

	// Presign a GET so the caller can fetch the export without bucket
	// credentials.
	presigned, err := e.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(e.cfg.AwsS3Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to presign GET for %s: %w", key, err)
	}

	log.Printf("Exported invoice %s to s3://%s/%s", doc.InvoiceNumber, e.cfg.AwsS3Bucket, key)
	return &Result{Key: key, Location: presigned.URL}, nil
}

// NewExporter picks the configured target: S3 when a bucket is set, the
// local export directory otherwise.
func NewExporter(cfg *config.Config) (IExporter, error) {
	if cfg.AwsS3Bucket != "" {
		return NewS3Exporter(cfg)
	}
	return NewFileExporter(cfg.ExportLocalDir)
}
