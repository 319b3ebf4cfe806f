//go:build integration
// +build integration

package integration

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"testing"
	"time"

	"ProductDesk/internal/catalogclient"
	"ProductDesk/internal/product"
)

var (
	baseURL = getenv("E2E_BASE_URL", "http://localhost:8082")
	token   = os.Getenv("E2E_TOKEN")
)

// TestSystem_CatalogRoundTrip drives a running catalogd through the client.
// Set E2E_RESTART_CATALOG=1 with a postgres-backed deployment to check the
// product survives a restart.
func TestSystem_CatalogRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	c := catalogclient.New(catalogclient.Config{BaseURL: baseURL, Token: token})

	title := fmt.Sprintf("e2e_%d_%d", time.Now().Unix(), rand.Intn(100000))
	draft, err := product.New(title, "created by integration test", 12.5, "electronics")
	if err != nil {
		t.Fatalf("new product: %v", err)
	}
	if err := c.Create(ctx, &draft); err != nil {
		t.Fatalf("create: %v", err)
	}

	created := findByTitle(t, ctx, c, title)

	if os.Getenv("E2E_RESTART_CATALOG") == "1" {
		restartService(t, ctx, "catalog")
		waitReady(t, ctx, baseURL+"/readyz")
		created = findByTitle(t, ctx, c, title)
	}

	if err := created.SetPrice(10); err != nil {
		t.Fatalf("set price: %v", err)
	}
	created.Availability = product.OutOfStock
	if err := c.Update(ctx, &created); err != nil {
		t.Fatalf("update: %v", err)
	}

	updated := findByTitle(t, ctx, c, title)
	if updated.Price != 10 || updated.InStock() {
		t.Fatalf("update not applied: %#v", updated)
	}

	if err := c.Delete(ctx, &updated); err != nil {
		t.Fatalf("delete: %v", err)
	}

	all, err := c.FetchAll(ctx)
	if err != nil {
		t.Fatalf("fetch after delete: %v", err)
	}
	for _, p := range all {
		if p.ID == updated.ID {
			t.Fatalf("product %s still listed after delete", p.ID)
		}
	}
}

func findByTitle(t *testing.T, ctx context.Context, c *catalogclient.Client, title string) product.Product {
	t.Helper()

	all, err := c.FetchAll(ctx)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	for _, p := range all {
		if p.Title == title {
			return p
		}
	}
	t.Fatalf("product %q not found among %d products", title, len(all))
	return product.Product{}
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
