package infra

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/zakareajob-cpu/zak-crm/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalPDFStore_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "invoices")
	store := NewLocalPDFStore(dir)

	path, err := store.Save(context.Background(), "../escape/invoice_A-001.pdf", []byte("%PDF-1.3"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "invoice_A-001.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3", string(data))
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3PDFStore_Save(t *testing.T) {
	fp := &fakePutter{}
	store := &S3PDFStore{client: fp, bucket: "crm-archive", prefix: "invoices/"}

	loc, err := store.Save(context.Background(), "invoice_A-001.pdf", []byte("%PDF-1.3"))
	require.NoError(t, err)
	assert.Equal(t, "s3://crm-archive/invoices/invoice_A-001.pdf", loc)
	assert.Equal(t, "crm-archive", aws.ToString(fp.input.Bucket))
	assert.Equal(t, "invoices/invoice_A-001.pdf", aws.ToString(fp.input.Key))
	assert.Equal(t, "application/pdf", aws.ToString(fp.input.ContentType))
	assert.Equal(t, "%PDF-1.3", string(fp.body))
}

func TestS3PDFStore_SaveError(t *testing.T) {
	store := &S3PDFStore{client: &fakePutter{err: errors.New("access denied")}, bucket: "b", prefix: "invoices/"}
	_, err := store.Save(context.Background(), "x.pdf", nil)
	assert.ErrorContains(t, err, "access denied")
}

func TestNewPDFStore_SelectsBackend(t *testing.T) {
	ctx := context.Background()

	store, err := NewPDFStore(ctx, &config.Config{PDFStorage: "local", PDFStoragePath: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalPDFStore{}, store)

	_, err = NewPDFStore(ctx, &config.Config{PDFStorage: "s3"})
	assert.ErrorContains(t, err, "S3_BUCKET")

	_, err = NewPDFStore(ctx, &config.Config{PDFStorage: "ftp"})
	assert.Error(t, err)
}
