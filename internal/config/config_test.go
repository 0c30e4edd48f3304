package config

import (
	"testing"
	"time"
)

func TestEnvHelpersFallBackOnInvalidValues(t *testing.T) {
	t.Setenv("SOUVENIRS_TEST_INT", "not-a-number")
	t.Setenv("SOUVENIRS_TEST_DURATION", "soon")
	t.Setenv("SOUVENIRS_TEST_BOOL", "maybe")

	if got := envInt64("SOUVENIRS_TEST_INT", 42); got != 42 {
		t.Errorf("envInt64 = %d, want 42", got)
	}
	if got := envDuration("SOUVENIRS_TEST_DURATION", time.Minute); got != time.Minute {
		t.Errorf("envDuration = %v, want 1m", got)
	}
	if got := envBool("SOUVENIRS_TEST_BOOL", true); !got {
		t.Errorf("envBool = false, want default true")
	}
}

func TestEnvHelpersParseValues(t *testing.T) {
	t.Setenv("SOUVENIRS_TEST_INT", "1048576")
	t.Setenv("SOUVENIRS_TEST_DURATION", "90m")
	t.Setenv("SOUVENIRS_TEST_STRING", "")

	if got := envInt64("SOUVENIRS_TEST_INT", 1); got != 1<<20 {
		t.Errorf("envInt64 = %d, want %d", got, 1<<20)
	}
	if got := envDuration("SOUVENIRS_TEST_DURATION", time.Minute); got != 90*time.Minute {
		t.Errorf("envDuration = %v, want 1h30m", got)
	}
	if got := envString("SOUVENIRS_TEST_STRING", "fallback"); got != "fallback" {
		t.Errorf("envString = %q, want fallback for empty value", got)
	}
}

func TestSanitizedDropsSecrets(t *testing.T) {
	cfg := &Config{
		AppName:     "O'Souvenir",
		AppEnv:      "production",
		JWTSecret:   "super-secret",
		S3SecretKey: "s3-secret",
		SentryDSN:   "https://key@sentry.example/1",
		S3Endpoint:  "https://minio.example",
	}

	safe := cfg.Sanitized()
	if safe.JWTSecret != "" || safe.S3SecretKey != "" || safe.SentryDSN != "" {
		t.Fatalf("sanitized config leaks secrets: %+v", safe)
	}
	if safe.AppName != cfg.AppName || safe.S3Endpoint != cfg.S3Endpoint {
		t.Errorf("sanitized config lost public fields: %+v", safe)
	}
	if !safe.IsProduction() {
		t.Errorf("sanitized config should keep the environment")
	}
}
