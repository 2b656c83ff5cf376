package snowflake

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gosnowflake "github.com/snowflakedb/gosnowflake"
)

// writeTempPEM writes a PEM-encoded private key to a temp file and returns its path.
func writeTempPEM(t *testing.T, blockType string, derBytes []byte) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "key.pem")
	buf := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: derBytes})
	if err := os.WriteFile(path, buf, 0600); err != nil {
		t.Fatalf("write temp PEM: %v", err)
	}
	return path
}

// generateTestKey creates a 2048-bit RSA key for testing.
func generateTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate RSA key: %v", err)
	}
	return key
}

func TestLoadPrivateKey_PKCS1(t *testing.T) {
	key := generateTestKey(t)
	der := x509.MarshalPKCS1PrivateKey(key)
	path := writeTempPEM(t, "RSA PRIVATE KEY", der)

	loaded, err := loadPrivateKey(path)
	if err != nil {
		t.Fatalf("loadPrivateKey PKCS1: %v", err)
	}
	if loaded.N.Cmp(key.N) != 0 {
		t.Error("loaded key modulus does not match original")
	}
}

func TestLoadPrivateKey_PKCS8(t *testing.T) {
	key := generateTestKey(t)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshal PKCS8: %v", err)
	}
	path := writeTempPEM(t, "PRIVATE KEY", der)

	loaded, err := loadPrivateKey(path)
	if err != nil {
		t.Fatalf("loadPrivateKey PKCS8: %v", err)
	}
	if loaded.N.Cmp(key.N) != 0 {
		t.Error("loaded key modulus does not match original")
	}
}

func TestLoadPrivateKey_FileNotFound(t *testing.T) {
	_, err := loadPrivateKey("/nonexistent/path/key.pem")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "read private key file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadPrivateKey_InvalidPEM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.pem")
	os.WriteFile(path, []byte("not a pem file"), 0600)

	_, err := loadPrivateKey(path)
	if err == nil {
		t.Fatal("expected error for invalid PEM")
	}
	if !strings.Contains(err.Error(), "no PEM block") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadPrivateKey_UnsupportedBlockType(t *testing.T) {
	path := writeTempPEM(t, "EC PRIVATE KEY", []byte("fake"))

	_, err := loadPrivateKey(path)
	if err == nil {
		t.Fatal("expected error for unsupported block type")
	}
	if !strings.Contains(err.Error(), "unsupported PEM block type") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBuildDSNKeyPair(t *testing.T) {
	key := generateTestKey(t)
	der, _ := x509.MarshalPKCS8PrivateKey(key)
	keyPath := writeTempPEM(t, "PRIVATE KEY", der)

	// user@account/db/schema without a password.
	dsn := "testuser@testaccount/testdb/PUBLIC?warehouse=WH"

	newDSN, err := buildDSN(dsn, "", keyPath)
	if err != nil {
		t.Fatalf("buildDSN: %v", err)
	}

	lowerDSN := strings.ToLower(newDSN)
	if !strings.Contains(lowerDSN, "authenticator=snowflake_jwt") {
		t.Errorf("DSN missing authenticator param: %s", newDSN)
	}
	if !strings.Contains(newDSN, "testuser") {
		t.Errorf("DSN missing user: %s", newDSN)
	}
	if !strings.Contains(lowerDSN, "database=testdb") {
		t.Errorf("DSN lost its database: %s", newDSN)
	}
}

func TestBuildDSNKeyPairWithDatabase(t *testing.T) {
	key := generateTestKey(t)
	der := x509.MarshalPKCS1PrivateKey(key)
	keyPath := writeTempPEM(t, "RSA PRIVATE KEY", der)

	newDSN, err := buildDSN("testuser@testaccount/testdb/PUBLIC", "SHOP", keyPath)
	if err != nil {
		t.Fatalf("buildDSN: %v", err)
	}
	if !strings.Contains(newDSN, "database=SHOP") {
		t.Errorf("DSN not switched to SHOP: %s", newDSN)
	}
	if strings.Contains(newDSN, "testdb") {
		t.Errorf("DSN still names old database: %s", newDSN)
	}
}

func TestBuildDSNPasswordWithDatabase(t *testing.T) {
	newDSN, err := buildDSN("testuser:secret@testaccount/testdb/PUBLIC?warehouse=WH", "SHOP", "")
	if err != nil {
		t.Fatalf("buildDSN: %v", err)
	}

	cfg, err := gosnowflake.ParseDSN(newDSN)
	if err != nil {
		t.Fatalf("parse rebuilt DSN: %v", err)
	}
	if cfg.Database != "SHOP" {
		t.Errorf("Database = %q, want SHOP", cfg.Database)
	}
	if cfg.Password != "secret" {
		t.Errorf("password not preserved")
	}
	if cfg.Warehouse != "WH" {
		t.Errorf("Warehouse = %q, want WH", cfg.Warehouse)
	}
}

func TestBuildDSNUnchanged(t *testing.T) {
	dsn := "anything goes here"
	got, err := buildDSN(dsn, "", "")
	if err != nil {
		t.Fatalf("buildDSN: %v", err)
	}
	if got != dsn {
		t.Errorf("buildDSN = %q, want input unchanged", got)
	}
}

func TestBuildDSNPasswordRequiredWithoutKey(t *testing.T) {
	_, err := buildDSN("testuser@testaccount/testdb/PUBLIC", "SHOP", "")
	if err == nil {
		t.Fatal("expected error for DSN without password or key")
	}
}

func TestBuildDSN_InvalidDSN(t *testing.T) {
	key := generateTestKey(t)
	der, _ := x509.MarshalPKCS8PrivateKey(key)
	keyPath := writeTempPEM(t, "PRIVATE KEY", der)

	_, err := buildDSN(":::invalid", "", keyPath)
	if err == nil {
		t.Fatal("expected error for invalid DSN")
	}
}

func TestBuildDSN_BadKeyFile(t *testing.T) {
	_, err := buildDSN("testuser@testaccount/testdb/PUBLIC", "", "/nonexistent/key.pem")
	if err == nil {
		t.Fatal("expected error for missing key file")
	}
}
