//nolint:lll,funlen // readablity
package traefik

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindEntry(t *testing.T) {
	tests := []struct {
		name     string
		jsonData string
		domain   string
		want     *acmeEntry
		wantErr  error
	}{
		{
			name:     "Success",
			jsonData: `{"dummy":{"Certificates":[{"domain":{"main":"example.com"}, "certificate": "cert1", "key": "key1"}]}}`,
			domain:   "example.com",
			want:     &acmeEntry{Certificate: "cert1", Key: "key1"},
		},
		{
			name:     "Wildcard domain",
			jsonData: `{"myresolver":{"Certificates":[{"domain":{"main":"*.example.com"}, "certificate": "cert1", "key": "key1"}]}}`,
			domain:   "*.example.com",
			want:     &acmeEntry{Certificate: "cert1", Key: "key1"},
		},
		{
			name:     "Second resolver",
			jsonData: `{"a":{"Certificates":[{"domain":{"main":"a.com"}, "certificate": "ca", "key": "ka"}]},"b":{"Certificates":[{"domain":{"main":"b.com"}, "certificate": "cb", "key": "kb"}]}}`,
			domain:   "b.com",
			want:     &acmeEntry{Certificate: "cb", Key: "kb"},
		},
		{
			name:     "Domain not found",
			jsonData: `{"dummy":{"Certificates":[{"domain":{"main":"example.com"}, "certificate": "cert1", "key": "key1"}]}}`,
			domain:   "notfound.com",
			wantErr:  ErrDomainNotFound,
		},
		{
			name:     "Empty json",
			jsonData: `{}`,
			domain:   "notfound.com",
			wantErr:  ErrDomainNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := findEntry(tt.jsonData, tt.domain)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func selfSigned(t *testing.T, domain string) (certPEM, keyPEM []byte) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: domain},
		DNSNames:     []string{domain},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	keyDer, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
		pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDer})
}

func TestGetCertFromTraefik(t *testing.T) {
	certPEM, keyPEM := selfSigned(t, "msa.example.com")
	content := fmt.Sprintf(`{"le":{"Certificates":[{"domain":{"main":"msa.example.com"},"certificate":%q,"key":%q}]}}`,
		base64.StdEncoding.EncodeToString(certPEM),
		base64.StdEncoding.EncodeToString(keyPEM))
	file := filepath.Join(t.TempDir(), "acme.json")
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	cert, err := GetCertFromTraefik(file, "msa.example.com")
	require.NoError(t, err)
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	require.NoError(t, err)
	assert.Equal(t, "msa.example.com", leaf.Subject.CommonName)

	_, err = GetCertFromTraefik(file, "other.example.com")
	assert.ErrorIs(t, err, ErrDomainNotFound)

	_, err = GetCertFromTraefik(filepath.Join(t.TempDir(), "missing.json"), "msa.example.com")
	assert.Error(t, err)
}

func TestCertificateFromJSONInvalidBase64(t *testing.T) {
	_, err := CertificateFromJSON(`{"le":{"Certificates":[{"domain":{"main":"a.com"},"certificate":"###","key":"###"}]}}`, "a.com")
	assert.ErrorContains(t, err, "decode certificate")
}
