package config

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// promautoはデフォルトレジストリに登録するため、テストごとに
// ユニークなコンポーネント名を使う

func TestConfigMetrics_ValidationErrorsPerField(t *testing.T) {
	metrics := NewConfigMetrics("test_validation")

	metrics.RecordValidationError("cron_schedule")
	metrics.RecordValidationError("cron_schedule")
	metrics.RecordValidationError("timezone")

	if got := testutil.ToFloat64(metrics.ValidationErrorsTotal.WithLabelValues("cron_schedule")); got != 2 {
		t.Errorf("cron_schedule errors = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.ValidationErrorsTotal.WithLabelValues("timezone")); got != 1 {
		t.Errorf("timezone errors = %v, want 1", got)
	}
}

func TestConfigMetrics_FallbacksPerField(t *testing.T) {
	metrics := NewConfigMetrics("test_fallbacks")

	metrics.RecordFallback("timezone", "default")
	metrics.RecordFallback("timezone", "default")

	if got := testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("timezone")); got != 2 {
		t.Errorf("timezone fallbacks = %v, want 2", got)
	}
}

func TestConfigMetrics_FallbackActiveToggle(t *testing.T) {
	metrics := NewConfigMetrics("test_active")

	metrics.SetFallbackActive("", true)
	if got := testutil.ToFloat64(metrics.FallbackActive); got != 1 {
		t.Errorf("active = %v, want 1", got)
	}

	metrics.SetFallbackActive("", false)
	if got := testutil.ToFloat64(metrics.FallbackActive); got != 0 {
		t.Errorf("active = %v, want 0", got)
	}
}

func TestConfigMetrics_LoadTimestamp(t *testing.T) {
	metrics := NewConfigMetrics("test_timestamp")

	metrics.RecordLoadTimestamp()
	if got := testutil.ToFloat64(metrics.LoadTimestamp); got <= 0 {
		t.Errorf("load timestamp = %v, want > 0", got)
	}
}
