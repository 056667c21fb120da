//go:build integration

package router

// Runs the API against real Postgres and Redis containers:
//
//	go test -tags integration ./internal/router/... -run E2E -v

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/zakareajob-cpu/zak-crm/internal/dto"
	"github.com/zakareajob-cpu/zak-crm/internal/infra"
	"github.com/zakareajob-cpu/zak-crm/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

type e2eEnv struct {
	*api
	rdb *redis.Client
}

func setupE2E(t *testing.T, numberSource string) *e2eEnv {
	t.Helper()
	ctx := context.Background()
	gin.SetMode(gin.TestMode)

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		tcPostgres.WithDatabase("crm_test"),
		tcPostgres.WithUsername("crm"),
		tcPostgres.WithPassword("crm"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })
	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })
	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := testConfig()
	cfg.DatabaseDriver = infra.DriverPostgres
	cfg.DatabaseURL = pgURL
	cfg.RedisURL = rdURL
	cfg.InvoiceNumberSource = numberSource
	cfg.InvoiceNumberRetries = 5

	db, err := infra.NewDatabase(cfg.DatabaseDriver, cfg.DatabaseDSN())
	require.NoError(t, err)
	rdb, err := infra.NewRedis(ctx, cfg.RedisURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	runCtx, cancel := context.WithCancel(ctx)
	t.Cleanup(cancel)

	svcs := NewServices(cfg, db, rdb, worker.NewDispatcher(rdb))
	_, err = svcs.Auth.EnsureAdmin(runCtx, "admin@example.com", "s3cret!")
	require.NoError(t, err)

	a := &api{t: t, engine: New(runCtx, cfg, db, rdb, svcs)}
	var login dto.LoginResponse
	w := a.do(http.MethodPost, "/v1/auth/login", map[string]string{"email": "admin@example.com", "password": "s3cret!"}, &login)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	a.token = login.AccessToken
	return &e2eEnv{api: a, rdb: rdb}
}

func (e *e2eEnv) concurrentInvoices(t *testing.T, contactID string, n int) []string {
	t.Helper()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers []string
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var inv dto.InvoiceView
			w := e.do(http.MethodPost, "/v1/invoices", map[string]interface{}{
				"contact_id": contactID,
				"issue_date": "2025-03-01",
				"lines":      []map[string]interface{}{{"description": "Sample", "quantity": 1, "unit_price": 10}},
			}, &inv)
			if !assert.Equal(t, http.StatusCreated, w.Code, w.Body.String()) {
				return
			}
			mu.Lock()
			numbers = append(numbers, inv.InvoiceNo)
			mu.Unlock()
		}()
	}
	wg.Wait()
	sort.Strings(numbers)
	return numbers
}

func TestE2E_ConcurrentNumberingIsGapFree(t *testing.T) {
	for _, source := range []string{"scan", "counter"} {
		t.Run(source, func(t *testing.T) {
			e := setupE2E(t, source)
			contact := e.createContact("Ana Buyer")

			numbers := e.concurrentInvoices(t, contact.ID, 8)
			require.Len(t, numbers, 8)
			for i, no := range numbers {
				assert.Equal(t, "HOTGEN-20250301-ZAK-00"+string(rune('1'+i)), no)
			}
		})
	}
}

func TestE2E_SearchCacheInvalidatedOnWrite(t *testing.T) {
	e := setupE2E(t, "scan")
	ctx := context.Background()

	var p dto.ProductResponse
	require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/v1/products", map[string]interface{}{"full_name": "Vitamin C", "unit_price": 12}, &p).Code)

	var items []dto.ProductSearchItem
	require.Equal(t, http.StatusOK, e.do(http.MethodGet, "/v1/products/search?q=vitamin", nil, &items).Code)
	require.Len(t, items, 1)

	keys, err := e.rdb.Keys(ctx, "products:search:*").Result()
	require.NoError(t, err)
	assert.NotEmpty(t, keys)

	require.Equal(t, http.StatusOK, e.do(http.MethodPut, "/v1/products/"+p.ID, map[string]interface{}{"full_name": "Vitamin C 99%", "unit_price": 13}, nil).Code)
	keys, err = e.rdb.Keys(ctx, "products:search:*").Result()
	require.NoError(t, err)
	assert.Empty(t, keys)

	require.Equal(t, http.StatusOK, e.do(http.MethodGet, "/v1/products/search?q=vitamin", nil, &items).Code)
	require.Len(t, items, 1)
	assert.Equal(t, "Vitamin C 99%", items[0].FullName)
}

type recordingHandler struct {
	got chan worker.EmailJobPayload
}

func (h *recordingHandler) Process(_ context.Context, raw json.RawMessage) error {
	var p worker.EmailJobPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	h.got <- p
	return nil
}

func TestE2E_EmailJobReachesWorker(t *testing.T) {
	e := setupE2E(t, "scan")
	contact := e.createContact("Ana Buyer")

	var inv dto.InvoiceView
	require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/v1/invoices", map[string]interface{}{
		"contact_id": contact.ID,
		"lines":      []map[string]interface{}{{"description": "Sample", "quantity": 2, "unit_price": 5}},
	}, &inv).Code)

	require.Equal(t, http.StatusAccepted, e.do(http.MethodPost, "/v1/invoices/"+inv.ID+"/email", map[string]string{"to": "buyer@acme.test"}, nil).Code)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := &recordingHandler{got: make(chan worker.EmailJobPayload, 1)}
	pool := worker.NewPool(e.rdb, 3)
	pool.Register(worker.JobInvoiceEmail, h)
	pool.Start(ctx, 1)

	select {
	case p := <-h.got:
		assert.Equal(t, inv.ID, p.InvoiceID)
		assert.Equal(t, "buyer@acme.test", p.To)
	case <-time.After(15 * time.Second):
		t.Fatal("e-mail job was not consumed")
	}
	cancel()
	pool.Wait()

	var health map[string]interface{}
	require.Equal(t, http.StatusOK, e.do(http.MethodGet, "/health", nil, &health).Code)
	assert.Equal(t, "connected", health["redis"])
}
