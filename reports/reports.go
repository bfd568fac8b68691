// Package reports exports audit runs to object storage and hands back a
// short-lived download link.
package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/zlnvch/seodash/models"
)

type Export struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	ExpiresAt int64  `json:"expiresAt"`
}

type Exporter interface {
	ExportAudit(ctx context.Context, run models.AuditRun) (Export, error)
}

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type presignGetAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

const presignExpiry = 15 * time.Minute

type S3Exporter struct {
	client    putObjectAPI
	presigner presignGetAPI
	bucket    string
	now       func() time.Time
}

// NewS3Exporter talks to AWS with the default credential chain, or to a
// local S3-compatible endpoint (MinIO) with dummy credentials in dev mode.
func NewS3Exporter(ctx context.Context, devMode bool, endpoint string, region string, bucket string) (*S3Exporter, error) {
	var cfg aws.Config
	var err error

	if devMode {
		cfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(region),
			config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider("dummy", "dummy", ""),
			),
		)
	} else {
		cfg, err = config.LoadDefaultConfig(ctx, config.WithRegion(region))
	}
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Exporter{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
		now:       time.Now,
	}, nil
}

type auditReport struct {
	GeneratedAt int64           `json:"generatedAt"`
	Audit       models.AuditRun `json:"audit"`
}

func reportKey(run models.AuditRun) string {
	return fmt.Sprintf("audits/%s/%s.json", run.UserId, run.Id)
}

func (e *S3Exporter) ExportAudit(ctx context.Context, run models.AuditRun) (Export, error) {
	now := e.now()
	body, err := json.MarshalIndent(auditReport{GeneratedAt: now.Unix(), Audit: run}, "", "  ")
	if err != nil {
		return Export{}, fmt.Errorf("encode report: %w", err)
	}

	key := reportKey(run)
	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return Export{}, fmt.Errorf("upload report: %w", err)
	}

	req, err := e.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(e.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return Export{}, fmt.Errorf("presign report: %w", err)
	}

	return Export{Key: key, URL: req.URL, ExpiresAt: now.Add(presignExpiry).Unix()}, nil
}
