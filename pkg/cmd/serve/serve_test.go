//nolint:funlen // ok for tests
package serve

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/motorsport-analytics/log"
	"github.com/mpapenbr/motorsport-analytics/pkg/config"
)

func writeKeyPair(t *testing.T, dir, cn string) (certFile, keyFile string) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: cn},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	keyDer, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	certFile = filepath.Join(dir, "tls.crt")
	keyFile = filepath.Join(dir, "tls.key")
	require.NoError(t, os.WriteFile(certFile,
		pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(keyFile,
		pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDer}), 0o600))
	return certFile, keyFile
}

func leafName(cfg *tls.Config) string {
	cert, err := cfg.GetCertificate(nil)
	if err != nil || cert == nil {
		return ""
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return ""
	}
	return leaf.Subject.CommonName
}

func TestTLSConfigProvider(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeKeyPair(t, dir, "first")
	config.TLSCertFile, config.TLSKeyFile = certFile, keyFile
	t.Cleanup(func() { config.TLSCertFile, config.TLSKeyFile = "", "" })

	ctx, cancel := context.WithCancel(log.AddToContext(context.Background(), log.Nop()))
	defer cancel()
	tlsConfig := NewTLSConfigProvider(ctx)
	require.NotNil(t, tlsConfig)

	assert.Equal(t, "first", leafName(tlsConfig))

	// give the watcher time to register the files
	time.Sleep(100 * time.Millisecond)
	writeKeyPair(t, dir, "second")
	assert.Eventually(t, func() bool { return leafName(tlsConfig) == "second" },
		3*time.Second, 20*time.Millisecond)
}

func TestTLSConfigProviderWithoutCert(t *testing.T) {
	ctx := log.AddToContext(context.Background(), log.Nop())
	assert.Nil(t, NewTLSConfigProvider(ctx))
}

func TestCORSPreflight(t *testing.T) {
	handler := newCORS().Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/jobs/x", http.NoBody)
	req.Header.Set("Origin", "https://dashboard.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "https://dashboard.example.com",
		rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}
