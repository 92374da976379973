package serve

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/mpapenbr/motorsport-analytics/log"
	"github.com/mpapenbr/motorsport-analytics/pkg/config"
	"github.com/mpapenbr/motorsport-analytics/pkg/utils/certs/traefik"
)

type certs struct {
	ctx  context.Context
	log  *log.Logger
	cert *tls.Certificate
	mu   sync.RWMutex
}

// NewTLSConfigProvider returns a tls config serving the configured certificate.
// Changes to the certificate files are picked up without restart.
// The result is nil if no certificate could be loaded.
func NewTLSConfigProvider(ctx context.Context) *tls.Config {
	c := &certs{
		ctx: ctx,
		log: log.GetFromContext(ctx).Named("serve.certs"),
	}
	c.loadCert()
	if c.current() == nil {
		return nil
	}
	tlsConfig := &tls.Config{
		GetCertificate: func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
			return c.current(), nil
		},
		MinVersion: tls.VersionTLS13,
	}
	if config.TLSCAFile != "" {
		c.log.Info("Loading ca cert", log.String("file", config.TLSCAFile))
		if pool := c.loadCA(config.TLSCAFile); pool != nil {
			tlsConfig.ClientCAs = pool
			tlsConfig.ClientAuth = tls.VerifyClientCertIfGiven
		}
	}
	go c.watchAndReloadCerts(watchedFiles())
	return tlsConfig
}

func (c *certs) current() *tls.Certificate {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cert
}

func (c *certs) loadCA(file string) *x509.CertPool {
	caCert, err := os.ReadFile(file)
	if err != nil {
		c.log.Error("could not read TLS root CA", log.ErrorField(err))
		return nil
	}
	pool := x509.NewCertPool()
	if ok := pool.AppendCertsFromPEM(caCert); !ok {
		c.log.Error("could not append cert to pool")
		return nil
	}
	return pool
}

func watchedFiles() []string {
	ret := []string{}
	for _, f := range []string{config.TLSCertFile, config.TLSKeyFile, config.TraefikCerts} {
		if f != "" {
			ret = append(ret, f)
		}
	}
	return ret
}

func (c *certs) watchAndReloadCerts(files []string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		c.log.Error("could not create fsnotify watcher", log.ErrorField(err))
		return
	}
	defer watcher.Close()
	for _, f := range files {
		if err := watcher.Add(f); err != nil {
			c.log.Error("could not watch file", log.String("file", f), log.ErrorField(err))
		}
	}
	for {
		select {
		case <-c.ctx.Done():
			c.log.Info("context done, stopping cert reload")
			return
		case event, ok := <-watcher.Events:
			if !ok {
				c.log.Info("watcher events channel closed, stopping cert reload")
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Chmod) ||
				event.Has(fsnotify.Create) {

				c.log.Info("cert file changed, reloading cert",
					log.String("file", event.Name))
				c.loadCert()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				c.log.Info("watcher errors channel closed, stopping cert reload")
				return
			}
			c.log.Error("watcher error", log.ErrorField(err))
		}
	}
}

func (c *certs) loadCert() {
	var cert tls.Certificate
	var err error
	switch {
	case config.TraefikCerts != "" && config.TraefikCertDomain != "":
		c.log.Info("Looking up traefik certs",
			log.String("file", config.TraefikCerts),
			log.String("domain", config.TraefikCertDomain))
		cert, err = traefik.GetCertFromTraefik(config.TraefikCerts, config.TraefikCertDomain)
	case config.TLSCertFile != "" && config.TLSKeyFile != "":
		c.log.Info("Loading cert",
			log.String("key", config.TLSKeyFile),
			log.String("cert", config.TLSCertFile))
		cert, err = tls.LoadX509KeyPair(config.TLSCertFile, config.TLSKeyFile)
	default:
		return
	}
	if err != nil {
		c.log.Error("could not load certificate", log.ErrorField(err))
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cert = &cert
}
