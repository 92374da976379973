package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	DB                 string // connection string for the database
	CacheStore         string // type of the result cache store (memory, postgres, redis, nats, sqlite)
	CachePrefix        string // prefix for keys in the result cache store
	RedisURL           string // URL of the redis server (cache-store=redis)
	NatsURL            string // URL of the NATS server (cache-store=nats)
	SqliteFile         string // path to sqlite database file (cache-store=sqlite)
	ArchiveDir         string // root directory of exported session archives
	SessionTTL         string // duration a loaded session is kept in memory
	JobWorkers         int    // max number of concurrently running jobs
	WaitForServices    string // duration to wait for other services to be ready
	LogLevel           string // sets the log level (zap log level values)
	SQLLogLevel        string // sets the log level for sql subsystem
	LogFormat          string // text vs json
	LogFilter          string // zapfilter rules, e.g. "debug:analytics.* info:*"
	LogConfig          string // path to log config file
	MigrationSourceURL string // location of migration files, embedded if empty
	EnableTelemetry    bool   // enable telemetry
	TelemetryEndpoint  string // endpoint for telemetry
	ProfilingPort      int    // port for profiling
	Addr               string // listen addr for HTTP server (insecure)
	TLSServerAddr      string // listen addr for HTTP server (tls)
	TLSCertFile        string // path to TLS certificate
	TLSKeyFile         string // path to TLS key
	TLSCAFile          string // path to TLS CA
	TraefikCerts       string // path to traefik certs file
	TraefikCertDomain  string // the domain to lookup within the traefik certs
)
