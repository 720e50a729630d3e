//go:build integration

package integration

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sandeepkv93/bazar-universal-api/internal/domain"
)

const defaultPostgresTestImage = "docker.io/library/postgres:16-alpine"

func startPostgresContainer(t *testing.T) string {
	t.Helper()

	ctx := context.Background()
	image := os.Getenv("POSTGRES_TEST_IMAGE")
	if strings.TrimSpace(image) == "" {
		image = defaultPostgresTestImage
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: image,
			Env: map[string]string{
				"POSTGRES_USER":     "bazar",
				"POSTGRES_PASSWORD": "bazar",
				"POSTGRES_DB":       "bazar",
			},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
				wait.ForListeningPort("5432/tcp"),
			).WithDeadline(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start postgres test container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("resolve postgres host: %v", err)
	}
	mappedPort, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("resolve postgres port: %v", err)
	}
	return fmt.Sprintf("postgres://bazar:bazar@%s/bazar?sslmode=disable", net.JoinHostPort(host, mappedPort.Port()))
}

func TestCatalogFlowOnPostgres(t *testing.T) {
	s := newCatalogTestServer(t, catalogTestServerOptions{seed: true, databaseURL: startPostgresContainer(t)})

	resp, raw := doJSON(t, http.MethodGet, s.url("/products/search?q=APPLE&per_page=2"), nil)
	expectStatus(t, resp, raw, http.StatusOK)
	page := decodeInto[searchEnvelope](t, raw)
	if page.Total != 4 || page.TotalPages != 2 || len(page.Products) != 2 {
		t.Fatalf("unexpected search page on postgres: %+v", page)
	}

	resp, raw = doJSON(t, http.MethodGet, s.url("/products/search?q=50%25"), nil)
	expectStatus(t, resp, raw, http.StatusOK)
	if literal := decodeInto[searchEnvelope](t, raw); literal.Total != 0 {
		t.Fatalf("expected LIKE wildcards to be escaped, got total=%d", literal.Total)
	}

	resp, raw = doJSON(t, http.MethodPut, s.url("/products/4"), map[string]any{"brand": nil, "features": []string{"ANC"}})
	expectStatus(t, resp, raw, http.StatusOK)
	updated := decodeInto[domain.Product](t, raw)
	if updated.Brand != nil || len(updated.Features) != 1 {
		t.Fatalf("unexpected patched product: %+v", updated)
	}

	resp, raw = doJSON(t, http.MethodPost, s.url("/sales"), map[string]any{"product_id": 4, "quantity": 3})
	expectStatus(t, resp, raw, http.StatusOK)
	resp, raw = doJSON(t, http.MethodGet, s.url("/sales/stats"), nil)
	expectStatus(t, resp, raw, http.StatusOK)
	if stats := decodeInto[domain.SaleStats](t, raw); stats.TotalSales != 4 || stats.TotalItems != 7 || stats.TotalAmount != 32200 {
		t.Fatalf("unexpected stats on postgres: %+v", stats)
	}

	resp, raw = doJSON(t, http.MethodGet, s.baseURL+"/health/ready", nil)
	expectStatus(t, resp, raw, http.StatusOK)
}
