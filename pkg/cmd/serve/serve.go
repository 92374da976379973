package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // by design
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	otlpruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mpapenbr/motorsport-analytics/log"
	"github.com/mpapenbr/motorsport-analytics/pkg/api"
	"github.com/mpapenbr/motorsport-analytics/pkg/catalog"
	"github.com/mpapenbr/motorsport-analytics/pkg/cmd/util"
	"github.com/mpapenbr/motorsport-analytics/pkg/config"
	"github.com/mpapenbr/motorsport-analytics/pkg/db/postgres"
	"github.com/mpapenbr/motorsport-analytics/pkg/jobs"
)

//nolint:funlen // by design
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "starts the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startServer(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&config.Addr,
		"addr",
		"a",
		"localhost:8080",
		"HTTP server listen address")
	cmd.Flags().StringVar(&config.TLSServerAddr,
		"tls-addr",
		"",
		"HTTPS server listen address (requires tls-cert/tls-key or traefik-certs)")
	cmd.Flags().StringVar(&config.TLSCertFile,
		"tls-cert",
		"",
		"path to TLS certificate")
	cmd.Flags().StringVar(&config.TLSKeyFile,
		"tls-key",
		"",
		"path to TLS key")
	cmd.Flags().StringVar(&config.TLSCAFile,
		"tls-ca",
		"",
		"path to TLS CA for client certificates")
	cmd.Flags().StringVar(&config.TraefikCerts,
		"traefik-certs",
		"",
		"path to traefik acme certs file")
	cmd.Flags().StringVar(&config.TraefikCertDomain,
		"traefik-cert-domain",
		"",
		"domain to lookup within the traefik certs")
	cmd.Flags().IntVar(&config.JobWorkers,
		"job-workers",
		4,
		"max number of concurrently running background jobs")
	cmd.Flags().IntVar(&config.ProfilingPort,
		"profiling-port",
		0,
		"port to use for providing profiling data")
	cmd.Flags().BoolVar(&config.EnableTelemetry,
		"enable-telemetry",
		false,
		"enables telemetry")
	cmd.Flags().StringVar(&config.TelemetryEndpoint,
		"telemetry-endpoint",
		"localhost:4317",
		"Endpoint that receives open telemetry data (use 'stdout' for console)")
	cmd.Flags().StringVar(&config.SQLLogLevel,
		"sql-log-level",
		"debug",
		"controls the log level for sql methods")
	return cmd
}

//nolint:funlen,cyclop // by design
func startServer(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger, err := util.SetupLogger()
	if err != nil {
		return err
	}
	log.Debug("Config:",
		log.String("db", config.DB),
		log.String("cacheStore", config.CacheStore),
		log.String("archiveDir", config.ArchiveDir),
		log.String("addr", config.Addr),
	)

	if config.ProfilingPort > 0 {
		log.Info("Starting profiling server on port", log.Int("port", config.ProfilingPort))
		go func() {
			//nolint:gosec // by design
			err := http.ListenAndServe(
				fmt.Sprintf("localhost:%d", config.ProfilingPort),
				nil)
			if err != nil {
				log.Error("Profiling server stopped", log.ErrorField(err))
			}
		}()
	}

	util.WaitForRequiredServices()

	var telemetry *config.Telemetry
	sqlLevel := util.ParseLogLevel(config.SQLLogLevel, log.DebugLevel)
	pgTracers := []pgx.QueryTracer{postgres.NewLogTracer(logger, sqlLevel)}
	if config.EnableTelemetry {
		log.Info("Enabling telemetry")
		if telemetry, err = config.SetupTelemetry(ctx); err == nil {
			pgTracers = append(pgTracers, postgres.NewOtlpTracer())
		} else {
			log.Warn("Could not setup telemetry", log.ErrorField(err))
		}
		err = otlpruntime.Start(otlpruntime.WithMinimumReadMemStatsInterval(time.Second))
		if err != nil {
			log.Warn("Could not start runtime metrics", log.ErrorField(err))
		}
	}

	log.Info("Starting server")
	backend, err := util.NewBackend(pgTracers...)
	if err != nil {
		log.Error("server could not be started", log.ErrorField(err))
		return err
	}
	defer backend.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.AddToContext(ctx, logger)

	jobManager := jobs.New(
		jobs.WithWorkers(config.JobWorkers),
		jobs.WithContext(ctx))
	opts := []api.Option{
		api.WithAnalytics(backend.Analytics),
		api.WithJobs(jobManager),
	}
	if backend.Pool != nil {
		log.Info("Enabling catalog routes")
		opts = append(opts, api.WithCatalog(catalog.NewRepositoryFromPool(backend.Pool)))
	}
	handler := h2c.NewHandler(
		newCORS().Handler(api.NewServer(opts...).Handler()),
		&http2.Server{})

	servers := []*http.Server{}
	//nolint:gosec // by design
	servers = append(servers, &http.Server{
		Addr:    config.Addr,
		Handler: handler,
	})
	if config.TLSServerAddr != "" {
		tlsConfig := NewTLSConfigProvider(ctx)
		if tlsConfig == nil {
			return errors.New("tls-addr requires a certificate")
		}
		//nolint:gosec // by design
		servers = append(servers, &http.Server{
			Addr:      config.TLSServerAddr,
			Handler:   handler,
			TLSConfig: tlsConfig,
		})
	}

	g, gCtx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			var err error
			if srv.TLSConfig != nil {
				log.Info("Starting HTTPS server", log.String("addr", srv.Addr))
				err = srv.ListenAndServeTLS("", "")
			} else {
				log.Info("Starting HTTP server", log.String("addr", srv.Addr))
				err = srv.ListenAndServe()
			}
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		})
	}
	setupGoRoutinesDump()

	g.Go(func() error {
		<-gCtx.Done()
		log.Debug("Shutting down servers")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warn("Could not shutdown server", log.ErrorField(err))
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error("server stopped", log.ErrorField(err))
		return err
	}

	log.Debug("Waiting for running jobs")
	jobManager.Wait()
	if telemetry != nil {
		telemetry.Shutdown()
	}
	log.Info("Server terminated")
	return nil
}

func setupGoRoutinesDump() {
	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGQUIT)
		buf := make([]byte, 1<<20)
		for {
			<-sigs
			stacklen := runtime.Stack(buf, true)
			fmt.Printf("=== received SIGQUIT ===\n*** goroutine dump...\n%s\n*** end\n",
				buf[:stacklen])
		}
	}()
}

func newCORS() *cors.Cors {
	// Browser based dashboards call the API from other origins
	return cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{
			"Accept",
			"Accept-Encoding",
			"Content-Encoding",
		},
		MaxAge: int(2 * time.Hour / time.Second),
	})
}
