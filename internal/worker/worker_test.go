package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/zakareajob-cpu/zak-crm/internal/dto"
	"github.com/zakareajob-cpu/zak-crm/internal/infra"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pushed struct {
	key   string
	value []byte
}

type fakePusher struct {
	pushes []pushed
}

func (f *fakePusher) LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	for _, v := range values {
		f.pushes = append(f.pushes, pushed{key: key, value: v.([]byte)})
	}
	return redis.NewIntCmd(ctx)
}

type handlerFunc func(ctx context.Context, payload json.RawMessage) error

func (f handlerFunc) Process(ctx context.Context, payload json.RawMessage) error { return f(ctx, payload) }

func newTestPool(fp *fakePusher, h Handler) *Pool {
	return &Pool{
		pusher:      fp,
		handlers:    map[string]Handler{JobInvoiceEmail: h},
		queues:      []string{QueueEmail},
		maxAttempts: 3,
	}
}

func encodeJob(t *testing.T, job Job) string {
	t.Helper()
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return string(b)
}

func TestDispatcher_EnqueueInvoiceEmail(t *testing.T) {
	fp := &fakePusher{}
	d := &Dispatcher{rdb: fp}
	id := uuid.New()

	require.NoError(t, d.EnqueueInvoiceEmail(context.Background(), id, "buyer@example.com"))
	require.Len(t, fp.pushes, 1)
	assert.Equal(t, QueueEmail, fp.pushes[0].key)

	var job Job
	require.NoError(t, json.Unmarshal(fp.pushes[0].value, &job))
	assert.Equal(t, JobInvoiceEmail, job.Type)
	assert.Zero(t, job.Attempts)

	var payload EmailJobPayload
	require.NoError(t, json.Unmarshal(job.Payload, &payload))
	assert.Equal(t, id.String(), payload.InvoiceID)
	assert.Equal(t, "buyer@example.com", payload.To)
}

func TestPool_SuccessfulJobIsNotRequeued(t *testing.T) {
	fp := &fakePusher{}
	calls := 0
	p := newTestPool(fp, handlerFunc(func(context.Context, json.RawMessage) error {
		calls++
		return nil
	}))

	p.handle(context.Background(), QueueEmail, encodeJob(t, Job{Type: JobInvoiceEmail, Payload: json.RawMessage(`{}`)}))
	assert.Equal(t, 1, calls)
	assert.Empty(t, fp.pushes)
}

func TestPool_FailedJobIsRequeuedThenDeadLettered(t *testing.T) {
	fp := &fakePusher{}
	p := newTestPool(fp, handlerFunc(func(context.Context, json.RawMessage) error {
		return errors.New("smtp down")
	}))

	p.handle(context.Background(), QueueEmail, encodeJob(t, Job{Type: JobInvoiceEmail, Payload: json.RawMessage(`{}`)}))
	require.Len(t, fp.pushes, 1)
	assert.Equal(t, QueueEmail, fp.pushes[0].key)
	var requeued Job
	require.NoError(t, json.Unmarshal(fp.pushes[0].value, &requeued))
	assert.Equal(t, 1, requeued.Attempts)

	p.handle(context.Background(), QueueEmail, encodeJob(t, Job{Type: JobInvoiceEmail, Payload: json.RawMessage(`{}`), Attempts: 2}))
	require.Len(t, fp.pushes, 2)
	assert.Equal(t, DLQPrefix+QueueEmail, fp.pushes[1].key)
	var entry DLQEntry
	require.NoError(t, json.Unmarshal(fp.pushes[1].value, &entry))
	assert.Equal(t, 3, entry.Attempts)
	assert.Equal(t, "smtp down", entry.Reason)
	assert.Equal(t, JobInvoiceEmail, entry.JobType)
}

func TestPool_PermanentFailureSkipsRetries(t *testing.T) {
	fp := &fakePusher{}
	p := newTestPool(fp, handlerFunc(func(context.Context, json.RawMessage) error {
		return fmt.Errorf("bad payload: %w", ErrPermanent)
	}))

	p.handle(context.Background(), QueueEmail, encodeJob(t, Job{Type: JobInvoiceEmail, Payload: json.RawMessage(`{}`)}))
	require.Len(t, fp.pushes, 1)
	assert.Equal(t, DLQPrefix+QueueEmail, fp.pushes[0].key)
}

func TestPool_UnknownAndUnreadableJobsGoToDLQ(t *testing.T) {
	fp := &fakePusher{}
	p := newTestPool(fp, handlerFunc(func(context.Context, json.RawMessage) error { return nil }))

	p.handle(context.Background(), QueueEmail, encodeJob(t, Job{Type: "mystery", Payload: json.RawMessage(`{}`)}))
	p.handle(context.Background(), QueueEmail, "not json")
	require.Len(t, fp.pushes, 2)
	for _, push := range fp.pushes {
		assert.Equal(t, DLQPrefix+QueueEmail, push.key)
	}
}

// ── email worker ────────────────────────────────────────────────────────────

type fakeInvoices struct {
	view *dto.InvoiceView
	err  error
}

func (f *fakeInvoices) Get(context.Context, uuid.UUID) (*dto.InvoiceView, error) {
	return f.view, f.err
}

type fakeStore struct {
	names []string
	err   error
}

func (f *fakeStore) Save(_ context.Context, name string, _ []byte) (string, error) {
	f.names = append(f.names, name)
	return "/tmp/" + name, f.err
}

type sentMail struct {
	to, subject, body, attachment string
	pdf                           []byte
}

type fakeSender struct {
	sent []sentMail
	err  error
}

func (f *fakeSender) SendInvoice(to, subject, body, attachmentName string, pdf []byte) error {
	f.sent = append(f.sent, sentMail{to, subject, body, attachmentName, pdf})
	return f.err
}

func testView() *dto.InvoiceView {
	return &dto.InvoiceView{
		InvoiceNo:    "HOTGEN-20250101-ZAK-001",
		IssueDate:    "2025-01-01",
		Currency:     "USD",
		TotalDisplay: "1,250.00",
		PaymentTerms: "T/T 30 days",
		BillTo:       dto.AddressView{Name: "Ana Buyer"},
		Company:      dto.CompanyView{Name: "Zak Trading", BankInfo: []string{"IBAN XX00"}},
	}
}

func newTestEmailWorker(inv *fakeInvoices, store infra.PDFStore, sender *fakeSender) *EmailWorker {
	w := NewEmailWorker(inv, store, sender)
	w.render = func(*dto.InvoiceView) ([]byte, error) { return []byte("%PDF-test"), nil }
	return w
}

func jobPayload(t *testing.T, id, to string) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(EmailJobPayload{InvoiceID: id, To: to})
	require.NoError(t, err)
	return b
}

func TestEmailWorker_SendsAndArchives(t *testing.T) {
	store := &fakeStore{}
	sender := &fakeSender{}
	w := newTestEmailWorker(&fakeInvoices{view: testView()}, store, sender)

	require.NoError(t, w.Process(context.Background(), jobPayload(t, uuid.NewString(), " buyer@example.com ")))

	assert.Equal(t, []string{"invoice_HOTGEN-20250101-ZAK-001.pdf"}, store.names)
	require.Len(t, sender.sent, 1)
	m := sender.sent[0]
	assert.Equal(t, "buyer@example.com", m.to)
	assert.Equal(t, "Invoice HOTGEN-20250101-ZAK-001 from Zak Trading", m.subject)
	assert.Equal(t, "invoice_HOTGEN-20250101-ZAK-001.pdf", m.attachment)
	assert.Equal(t, []byte("%PDF-test"), m.pdf)
	assert.Contains(t, m.body, "Dear Ana Buyer")
	assert.Contains(t, m.body, "USD 1,250.00")
	assert.Contains(t, m.body, "IBAN XX00")
}

func TestEmailWorker_ArchiveFailureStillSends(t *testing.T) {
	sender := &fakeSender{}
	w := newTestEmailWorker(&fakeInvoices{view: testView()}, &fakeStore{err: errors.New("disk full")}, sender)

	require.NoError(t, w.Process(context.Background(), jobPayload(t, uuid.NewString(), "buyer@example.com")))
	assert.Len(t, sender.sent, 1)
}

func TestEmailWorker_BadPayloadsArePermanent(t *testing.T) {
	w := newTestEmailWorker(&fakeInvoices{view: testView()}, nil, &fakeSender{})
	ctx := context.Background()

	assert.ErrorIs(t, w.Process(ctx, json.RawMessage(`{`)), ErrPermanent)
	assert.ErrorIs(t, w.Process(ctx, jobPayload(t, uuid.NewString(), "")), ErrPermanent)
	assert.ErrorIs(t, w.Process(ctx, jobPayload(t, "nope", "a@b.c")), ErrPermanent)
}

func TestEmailWorker_SendFailureIsRetryable(t *testing.T) {
	sender := &fakeSender{err: errors.New("connection refused")}
	w := newTestEmailWorker(&fakeInvoices{view: testView()}, nil, sender)

	err := w.Process(context.Background(), jobPayload(t, uuid.NewString(), "buyer@example.com"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPermanent)
}
