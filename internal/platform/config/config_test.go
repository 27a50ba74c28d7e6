package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	env := map[string]string{
		"API_FIREBASE_PROJECT_ID": "kz-dev",
	}

	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Firestore.ProjectID != "kz-dev" {
		t.Errorf("expected firestore project to default to firebase project, got %s", cfg.Firestore.ProjectID)
	}
	if cfg.Events.ProjectID != "kz-dev" {
		t.Errorf("expected events project to default to firebase project, got %s", cfg.Events.ProjectID)
	}
	if cfg.Checkout.Currency != "EUR" {
		t.Errorf("expected default currency EUR, got %s", cfg.Checkout.Currency)
	}
	if cfg.Checkout.FreeShippingThreshold != 10000 {
		t.Errorf("unexpected free shipping threshold: %d", cfg.Checkout.FreeShippingThreshold)
	}
	if cfg.Checkout.FlatShippingFee != 999 {
		t.Errorf("unexpected flat shipping fee: %d", cfg.Checkout.FlatShippingFee)
	}
	if cfg.Admin.ListTimeout != 5*time.Second {
		t.Errorf("unexpected admin list timeout: %s", cfg.Admin.ListTimeout)
	}
	if cfg.Idempotency.Header != defaultIdempotencyHeader {
		t.Errorf("expected default idempotency header, got %s", cfg.Idempotency.Header)
	}
	if !cfg.Features.EnableReviews || !cfg.Features.EnableDiscounts {
		t.Errorf("expected reviews and discounts enabled by default")
	}
}

func TestLoadWithOverridesAndSecrets(t *testing.T) {
	env := map[string]string{
		"API_SERVER_PORT":                       "9090",
		"API_SERVER_READ_TIMEOUT":               "20s",
		"API_FIREBASE_PROJECT_ID":               "kz-prod",
		"API_FIRESTORE_PROJECT_ID":              "kz-fire",
		"API_STORAGE_MEDIA_BUCKET":              "kz-media-prod",
		"API_MAIL_API_KEY":                      "secret://mail/api-key",
		"API_MAIL_FROM_ADDRESS":                 "shop@kitzone.example",
		"API_MAIL_STAFF_ADDRESS":                "staff@kitzone.example",
		"API_EVENTS_ORDERS_TOPIC":               "orders-events",
		"API_CHECKOUT_FREE_SHIPPING_THRESHOLD":  "15000",
		"API_CHECKOUT_FLAT_SHIPPING_FEE":        "499",
		"API_ADMIN_LIST_TIMEOUT":                "2s",
		"API_FEATURE_REVIEWS":                   "false",
		"API_IDEMPOTENCY_TTL":                   "1h",
	}

	resolver := SecretResolverFunc(func(_ context.Context, ref string) (string, error) {
		if ref != "secret://mail/api-key" {
			return "", errors.New("unexpected ref " + ref)
		}
		return "resolved-key", nil
	})

	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""), WithSecretResolver(resolver))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("unexpected port: %s", cfg.Server.Port)
	}
	if cfg.Firestore.ProjectID != "kz-fire" {
		t.Errorf("unexpected firestore project: %s", cfg.Firestore.ProjectID)
	}
	if cfg.Mail.APIKey != "resolved-key" {
		t.Errorf("expected resolved mail api key, got %q", cfg.Mail.APIKey)
	}
	if cfg.Checkout.FreeShippingThreshold != 15000 {
		t.Errorf("unexpected threshold: %d", cfg.Checkout.FreeShippingThreshold)
	}
	if cfg.Checkout.FlatShippingFee != 499 {
		t.Errorf("unexpected flat fee: %d", cfg.Checkout.FlatShippingFee)
	}
	if cfg.Admin.ListTimeout != 2*time.Second {
		t.Errorf("unexpected admin list timeout: %s", cfg.Admin.ListTimeout)
	}
	if cfg.Features.EnableReviews {
		t.Errorf("expected reviews disabled")
	}
	if cfg.Idempotency.TTL != time.Hour {
		t.Errorf("unexpected idempotency ttl: %s", cfg.Idempotency.TTL)
	}
}

func TestLoadSecretResolutionFailure(t *testing.T) {
	env := map[string]string{
		"API_FIREBASE_PROJECT_ID": "kz-dev",
		"API_MAIL_API_KEY":        "sm://mail/api-key",
	}

	resolver := SecretResolverFunc(func(context.Context, string) (string, error) {
		return "", errors.New("boom")
	})

	_, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""), WithSecretResolver(resolver))
	var secretErr *SecretError
	if !errors.As(err, &secretErr) {
		t.Fatalf("expected SecretError, got %v", err)
	}
	if secretErr.Ref != "secret://mail/api-key" {
		t.Errorf("expected normalised ref, got %s", secretErr.Ref)
	}
}

func TestLoadValidationError(t *testing.T) {
	_, err := Load(context.Background(), WithEnvMap(map[string]string{}), WithoutSystemEnv(), WithEnvFile(""))
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	fields := validation.Fields()
	if len(fields) == 0 {
		t.Fatal("expected missing fields")
	}
	found := false
	for _, field := range fields {
		if field == "Firebase.ProjectID" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected Firebase.ProjectID in %v", fields)
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "API_FIREBASE_PROJECT_ID=kz-local\nexport API_SERVER_PORT=7070\n# comment\nAPI_CHECKOUT_CURRENCY=\"BGN\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(context.Background(), WithoutSystemEnv(), WithEnvFile(path))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Firebase.ProjectID != "kz-local" {
		t.Errorf("unexpected firebase project: %s", cfg.Firebase.ProjectID)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("unexpected port: %s", cfg.Server.Port)
	}
	if cfg.Checkout.Currency != "BGN" {
		t.Errorf("unexpected currency: %s", cfg.Checkout.Currency)
	}
}
