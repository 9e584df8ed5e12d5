package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/voramos/coinmarket-client/internal/testutil"
	"github.com/voramos/coinmarket-client/pkg/client"
	"github.com/voramos/coinmarket-client/pkg/scraper"
	"github.com/voramos/coinmarket-client/pkg/symbols"
)

func setupTestRouter(t *testing.T) (*testutil.MockSite, http.Handler) {
	t.Helper()

	site := testutil.NewMockSite()
	t.Cleanup(site.Close)

	site.SetQuickSearchIndex("/index.json", map[string]string{
		"BTC": "bitcoin",
		"ETH": "ethereum",
	})
	site.SetCurrencyPage("bitcoin", "<html><body>Bitcoin</body></html>")
	site.SetCurrencyPage("ethereum", "<html><body>Ethereum</body></html>")

	transport, err := client.New(client.Config{
		UserAgent: "test/1.0",
		Timeout:   5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to create transport: %v", err)
	}

	table := symbols.New(transport, symbols.Config{
		IndexURL: site.URL() + "/index.json",
	})

	s, err := scraper.New(transport, scraper.Config{
		BaseURL: site.URL(),
		Symbols: table,
	})
	if err != nil {
		t.Fatalf("Failed to create scraper: %v", err)
	}

	return site, newRouter(s)
}

func TestHealthEndpoint(t *testing.T) {
	_, router := setupTestRouter(t)

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if string(body) != "OK" {
		t.Errorf("Expected body 'OK', got %s", string(body))
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, router := setupTestRouter(t)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	bodyStr := string(body)
	if !strings.Contains(bodyStr, "# HELP") || !strings.Contains(bodyStr, "# TYPE") {
		t.Error("Expected Prometheus format metrics output")
	}
}

func TestCurrencyEndpoint(t *testing.T) {
	_, router := setupTestRouter(t)

	t.Run("by_symbol", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/currency/BTC", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		resp := w.Result()
		body, _ := io.ReadAll(resp.Body)

		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected status 200, got %d", resp.StatusCode)
		}
		if !strings.Contains(string(body), "Bitcoin") {
			t.Errorf("Expected bitcoin page, got %s", string(body))
		}
	})

	t.Run("unknown_symbol", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/currency/ZZZZZ", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Result().StatusCode)
		}
	})
}

func TestCurrenciesEndpoint(t *testing.T) {
	_, router := setupTestRouter(t)

	req := httptest.NewRequest("GET", "/api/currencies?symbols=BTC,ETH", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	bodyStr := string(body)
	if !strings.Contains(bodyStr, `"fetched":2`) {
		t.Errorf("Expected 2 fetched pages, got %s", bodyStr)
	}
	if !strings.Contains(bodyStr, "Ethereum") {
		t.Errorf("Expected ethereum page in response, got %s", bodyStr)
	}
}

func TestHistoricalEndpoint_BadDates(t *testing.T) {
	_, router := setupTestRouter(t)

	req := httptest.NewRequest("GET", "/api/currency/BTC/historical?start=nope&end=20170101", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Result().StatusCode)
	}
}

func TestSymbolsEndpoint(t *testing.T) {
	_, router := setupTestRouter(t)

	req := httptest.NewRequest("GET", "/api/symbols", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `"BTC":"bitcoin"`) {
		t.Errorf("Expected BTC correspondence, got %s", string(body))
	}
}
