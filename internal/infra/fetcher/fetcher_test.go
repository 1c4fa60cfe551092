package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

/* ─────────────────────────── 1. Config ─────────────────────────── */

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv err=%v", err)
	}
	if !cfg.Enabled || cfg.Threshold != 1500 || !cfg.DenyPrivateIPs {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("CONTENT_FETCH_THRESHOLD", "2000")
	t.Setenv("CONTENT_FETCH_TIMEOUT", "5s")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv err=%v", err)
	}
	if cfg.Threshold != 2000 {
		t.Fatalf("threshold=%d, want 2000", cfg.Threshold)
	}
	if cfg.Timeout != 5*time.Second {
		t.Fatalf("timeout=%v, want 5s", cfg.Timeout)
	}
}

func TestLoadConfigFromEnv_InvalidValue(t *testing.T) {
	t.Setenv("CONTENT_FETCH_THRESHOLD", "lots")

	if _, err := LoadConfigFromEnv(); err == nil {
		t.Fatal("expected error for invalid threshold")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Parallelism = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero parallelism")
	}
}

/* ─────────────────────────── 2. URL validation ─────────────────────────── */

func TestValidateURL_RejectsScheme(t *testing.T) {
	if err := validateURL("ftp://example.com/feed", false); !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("err=%v, want ErrInvalidURL", err)
	}
}

func TestValidateURL_RejectsPrivateIP(t *testing.T) {
	err := validateURL("http://127.0.0.1/article", true)
	if !errors.Is(err, ErrPrivateIP) {
		t.Fatalf("err=%v, want ErrPrivateIP", err)
	}
}

func TestValidateURL_AllowsPrivateWhenDisabled(t *testing.T) {
	if err := validateURL("http://127.0.0.1/article", false); err != nil {
		t.Fatalf("err=%v", err)
	}
}

/* ─────────────────────────── 3. FetchContent ─────────────────────────── */

func localConfig() Config {
	cfg := DefaultConfig()
	cfg.DenyPrivateIPs = false // httptestのサーバはループバック
	return cfg
}

func TestFetchContent_ExtractsArticleText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><head><title>t</title></head><body>
			<article><h1>Go 1.25</h1>
			<p>The latest release brings faster builds and a smaller runtime footprint for most programs.</p>
			<p>Upgrading is recommended for all users on supported platforms.</p>
			</article></body></html>`)
	}))
	defer srv.Close()

	f := NewReadabilityFetcher(localConfig())
	content, err := f.FetchContent(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchContent err=%v", err)
	}
	if !strings.Contains(content, "faster builds") {
		t.Fatalf("content=%q, want article text", content)
	}
	if strings.Contains(content, "<p>") {
		t.Fatalf("content contains markup: %q", content)
	}
}

func TestFetchContent_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewReadabilityFetcher(localConfig())
	if _, err := f.FetchContent(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestFetchContent_BodyTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, "<html><body>%s</body></html>", strings.Repeat("x", 4096))
	}))
	defer srv.Close()

	cfg := localConfig()
	cfg.MaxBodySize = 1024
	f := NewReadabilityFetcher(cfg)
	if _, err := f.FetchContent(context.Background(), srv.URL); !errors.Is(err, ErrBodyTooLarge) {
		t.Fatalf("err=%v, want ErrBodyTooLarge", err)
	}
}

func TestFetchContent_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	cfg := localConfig()
	cfg.Timeout = 100 * time.Millisecond
	f := NewReadabilityFetcher(cfg)
	if _, err := f.FetchContent(context.Background(), srv.URL); !errors.Is(err, ErrTimeout) {
		t.Fatalf("err=%v, want ErrTimeout", err)
	}
}
