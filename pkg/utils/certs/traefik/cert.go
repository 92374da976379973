// Package traefik reads certificates from the acme storage file of traefik
package traefik

import (
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

var ErrDomainNotFound = errors.New("domain not found in traefik certs")

type acmeEntry struct {
	Certificate string `json:"certificate"`
	Key         string `json:"key"`
}

// GetCertFromTraefik loads the certificate for domain from the acme file
func GetCertFromTraefik(file, domain string) (tls.Certificate, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("read traefik certs: %w", err)
	}
	return CertificateFromJSON(string(data), domain)
}

// CertificateFromJSON extracts the base64 encoded key pair of domain.
// Wildcard domains are looked up literally, e.g. "*.example.com".
func CertificateFromJSON(jsonData, domain string) (tls.Certificate, error) {
	entry, err := findEntry(jsonData, domain)
	if err != nil {
		return tls.Certificate{}, err
	}
	certPEM, err := base64.StdEncoding.DecodeString(entry.Certificate)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("decode certificate: %w", err)
	}
	keyPEM, err := base64.StdEncoding.DecodeString(entry.Key)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("decode key: %w", err)
	}
	return tls.X509KeyPair(certPEM, keyPEM)
}

func findEntry(jsonData, domain string) (*acmeEntry, error) {
	obj, err := oj.ParseString(jsonData)
	if err != nil {
		return nil, err
	}
	// certificates are grouped by resolver name
	path, err := jp.ParseString(
		fmt.Sprintf(`$..Certificates[?(@.domain.main == %q)]`, domain))
	if err != nil {
		return nil, err
	}
	res := path.Get(obj)
	if len(res) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrDomainNotFound, domain)
	}
	entry := &acmeEntry{}
	if err := oj.Unmarshal([]byte(oj.JSON(res[0])), entry); err != nil {
		return nil, err
	}
	return entry, nil
}
