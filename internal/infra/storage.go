package infra

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zakareajob-cpu/zak-crm/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PDFStore archives rendered invoice PDFs. Save returns where the file ended
// up: a filesystem path or an s3:// URL.
type PDFStore interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

// NewPDFStore picks the archive configured by PDF_STORAGE.
func NewPDFStore(ctx context.Context, cfg *config.Config) (PDFStore, error) {
	switch cfg.PDFStorage {
	case "s3":
		return NewS3PDFStore(ctx, cfg)
	case "local", "":
		return NewLocalPDFStore(cfg.PDFStoragePath), nil
	default:
		return nil, fmt.Errorf("pdf storage: unsupported backend %q", cfg.PDFStorage)
	}
}

// ── Local disk ──────────────────────────────────────────────────────────────

type LocalPDFStore struct {
	dir string
}

func NewLocalPDFStore(dir string) *LocalPDFStore {
	return &LocalPDFStore{dir: dir}
}

func (s *LocalPDFStore) Save(_ context.Context, name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("pdf storage: create dir: %w", err)
	}
	path := filepath.Join(s.dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("pdf storage: write %s: %w", path, err)
	}
	return path, nil
}

// ── S3 ──────────────────────────────────────────────────────────────────────

// objectPutter is the slice of the S3 client the archive needs.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3PDFStore struct {
	client objectPutter
	bucket string
	prefix string
}

// NewS3PDFStore uses static credentials when S3_ACCESS_KEY_ID is set and the
// default AWS credential chain otherwise.
func NewS3PDFStore(ctx context.Context, cfg *config.Config) (*S3PDFStore, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("pdf storage: S3_BUCKET is required")
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretAccessKey,
			"",
		)))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("pdf storage: load AWS config: %w", err)
	}
	return &S3PDFStore{client: s3.NewFromConfig(awsCfg), bucket: cfg.S3Bucket, prefix: "invoices/"}, nil
}

func (s *S3PDFStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	key := s.prefix + filepath.Base(name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", fmt.Errorf("pdf storage: put s3://%s/%s: %w", s.bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
