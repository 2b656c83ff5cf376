package snowflake

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"strings"

	gosnowflake "github.com/snowflakedb/gosnowflake"
)

// buildDSN rewrites dsn to target database and, when keyPath is set, to
// authenticate with the key pair at keyPath. An empty database and keyPath
// return dsn unchanged.
func buildDSN(dsn, database, keyPath string) (string, error) {
	if database == "" && keyPath == "" {
		return dsn, nil
	}

	sfConfig, err := parseDSN(dsn, keyPath != "")
	if err != nil {
		return "", fmt.Errorf("parse DSN: %w", err)
	}

	if database != "" {
		sfConfig.Database = database
	}

	if keyPath != "" {
		privKey, err := loadPrivateKey(keyPath)
		if err != nil {
			return "", err
		}
		sfConfig.Password = ""
		sfConfig.Authenticator = gosnowflake.AuthTypeJwt
		sfConfig.PrivateKey = privKey
	}

	newDSN, err := gosnowflake.DSN(sfConfig)
	if err != nil {
		return "", fmt.Errorf("rebuild DSN: %w", err)
	}
	return newDSN, nil
}

// parseDSN wraps gosnowflake.ParseDSN. ParseDSN requires a password even
// for JWT auth, so for key-pair DSNs without one (user@account/db) a
// placeholder is injected; the JWT authenticator ignores it.
func parseDSN(dsn string, keyPair bool) (*gosnowflake.Config, error) {
	sfConfig, err := gosnowflake.ParseDSN(dsn)
	if err != nil && keyPair && strings.Contains(err.Error(), "password is empty") {
		if idx := strings.Index(dsn, "@"); idx > 0 && !strings.Contains(dsn[:idx], ":") {
			dsn = dsn[:idx] + ":_" + dsn[idx:]
		}
		sfConfig, err = gosnowflake.ParseDSN(dsn)
	}
	return sfConfig, err
}

// loadPrivateKey reads a PEM-encoded RSA private key in PKCS#1
// (RSA PRIVATE KEY) or PKCS#8 (PRIVATE KEY) form.
func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read private key file %q: %w", path, err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in %q", path)
	}

	var key any
	switch block.Type {
	case "RSA PRIVATE KEY":
		key, err = x509.ParsePKCS1PrivateKey(block.Bytes)
	case "PRIVATE KEY":
		key, err = x509.ParsePKCS8PrivateKey(block.Bytes)
	default:
		return nil, fmt.Errorf("unsupported PEM block type %q (expected RSA PRIVATE KEY or PRIVATE KEY)", block.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key is not RSA (got %T)", key)
	}
	return rsaKey, nil
}
