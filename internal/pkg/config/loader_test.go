package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var errTest = errors.New("rejected")

/* ─────────────────────────── 1. 文字列 ─────────────────────────── */

func TestLoadEnvString(t *testing.T) {
	t.Setenv("TEST_STR", "from-env")
	if got := LoadEnvString("TEST_STR", "default"); got != "from-env" {
		t.Fatalf("LoadEnvString = %q", got)
	}
	if got := LoadEnvString("TEST_STR_UNSET", "default"); got != "default" {
		t.Fatalf("LoadEnvString unset = %q", got)
	}
}

func TestLoadEnvWithFallback(t *testing.T) {
	reject := func(v string) error {
		if v == "bad" {
			return errTest
		}
		return nil
	}

	t.Setenv("TEST_VALID", "good")
	res := LoadEnvWithFallback("TEST_VALID", "default", reject)
	if res.Value.(string) != "good" || res.FallbackApplied {
		t.Fatalf("valid value: %+v", res)
	}

	t.Setenv("TEST_INVALID", "bad")
	res = LoadEnvWithFallback("TEST_INVALID", "default", reject)
	if res.Value.(string) != "default" || !res.FallbackApplied {
		t.Fatalf("invalid value: %+v", res)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "falling back to default 'default'") {
		t.Fatalf("warnings = %v", res.Warnings)
	}

	// 未設定はデフォルト採用、警告なし
	res = LoadEnvWithFallback("TEST_UNSET", "default", reject)
	if res.Value.(string) != "default" || res.FallbackApplied || len(res.Warnings) != 0 {
		t.Fatalf("unset value: %+v", res)
	}
}

/* ─────────────────────────── 2. Duration / Int ─────────────────────────── */

func TestLoadEnvDuration(t *testing.T) {
	t.Setenv("TEST_DUR", "45s")
	res := LoadEnvDuration("TEST_DUR", time.Minute, ValidatePositiveDuration)
	if res.Value.(time.Duration) != 45*time.Second || res.FallbackApplied {
		t.Fatalf("parse: %+v", res)
	}

	t.Setenv("TEST_DUR_BAD", "not-a-duration")
	res = LoadEnvDuration("TEST_DUR_BAD", time.Minute, nil)
	if res.Value.(time.Duration) != time.Minute || !res.FallbackApplied {
		t.Fatalf("parse failure: %+v", res)
	}

	t.Setenv("TEST_DUR_NEG", "-5s")
	res = LoadEnvDuration("TEST_DUR_NEG", time.Minute, ValidatePositiveDuration)
	if res.Value.(time.Duration) != time.Minute || !res.FallbackApplied {
		t.Fatalf("validator reject: %+v", res)
	}
	if !strings.Contains(res.Warnings[0], "Invalid TEST_DUR_NEG='-5s'") {
		t.Fatalf("warning = %q", res.Warnings[0])
	}
}

func TestLoadEnvInt(t *testing.T) {
	inRange := func(v int) error { return ValidateIntRange(v, 1, 50) }

	t.Setenv("TEST_INT", "10")
	res := LoadEnvInt("TEST_INT", 5, inRange)
	if res.Value.(int) != 10 || res.FallbackApplied {
		t.Fatalf("parse: %+v", res)
	}

	t.Setenv("TEST_INT_BAD", "ten")
	res = LoadEnvInt("TEST_INT_BAD", 5, inRange)
	if res.Value.(int) != 5 || !res.FallbackApplied {
		t.Fatalf("parse failure: %+v", res)
	}
	if !strings.Contains(res.Warnings[0], "invalid integer format") {
		t.Fatalf("warning = %q", res.Warnings[0])
	}

	t.Setenv("TEST_INT_RANGE", "100")
	res = LoadEnvInt("TEST_INT_RANGE", 5, inRange)
	if res.Value.(int) != 5 || !res.FallbackApplied {
		t.Fatalf("validator reject: %+v", res)
	}
}

/* ─────────────────────────── 3. Bool ─────────────────────────── */

func TestLoadEnvBool(t *testing.T) {
	tests := []struct {
		raw      string
		want     bool
		fallback bool
	}{
		{"true", true, false},
		{"TRUE", true, false},
		{"1", true, false},
		{"t", true, false},
		{"false", false, false},
		{"0", false, false},
		{"F", false, false},
		{"yes", true, true}, // 不正値はデフォルトへ
		{"2", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.raw)
			res := LoadEnvBool("TEST_BOOL", true)
			if res.Value.(bool) != tt.want {
				t.Errorf("LoadEnvBool(%q) = %v, want %v", tt.raw, res.Value, tt.want)
			}
			if res.FallbackApplied != tt.fallback {
				t.Errorf("FallbackApplied = %v, want %v", res.FallbackApplied, tt.fallback)
			}
		})
	}

	res := LoadEnvBool("TEST_BOOL_UNSET", false)
	if res.Value.(bool) != false || res.FallbackApplied {
		t.Fatalf("unset: %+v", res)
	}
}
