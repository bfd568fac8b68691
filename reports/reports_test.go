package reports

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zlnvch/seodash/models"
)

type fakeS3 struct {
	putKey     string
	putBody    []byte
	putErr     error
	presignKey string
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.putKey = aws.ToString(in.Key)
	f.putBody, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) PresignGetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.presignKey = aws.ToString(in.Key)
	return &v4.PresignedHTTPRequest{URL: "https://bucket.example/" + f.presignKey + "?sig=1", Method: "GET"}, nil
}

func newTestExporter(f *fakeS3) *S3Exporter {
	fixed := time.Unix(1_800_000_000, 0)
	return &S3Exporter{client: f, presigner: f, bucket: "reports", now: func() time.Time { return fixed }}
}

func TestExportAudit(t *testing.T) {
	f := &fakeS3{}
	e := newTestExporter(f)

	run := models.AuditRun{Id: "r1", UserId: "u1", SiteURL: "https://example.com", HealthScore: 62}
	out, err := e.ExportAudit(context.Background(), run)
	require.NoError(t, err)

	assert.Equal(t, "audits/u1/r1.json", out.Key)
	assert.Equal(t, out.Key, f.putKey)
	assert.Equal(t, out.Key, f.presignKey)
	assert.Contains(t, out.URL, "audits/u1/r1.json")
	assert.Equal(t, int64(1_800_000_000+15*60), out.ExpiresAt)

	var report auditReport
	require.NoError(t, json.Unmarshal(f.putBody, &report))
	assert.Equal(t, int64(1_800_000_000), report.GeneratedAt)
	assert.Equal(t, 62, report.Audit.HealthScore)
}

func TestExportAudit_UploadFails(t *testing.T) {
	f := &fakeS3{putErr: errors.New("access denied")}
	e := newTestExporter(f)

	_, err := e.ExportAudit(context.Background(), models.AuditRun{Id: "r1", UserId: "u1"})
	assert.ErrorContains(t, err, "upload report")
	assert.Empty(t, f.presignKey)
}
