package analytics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/mpapenbr/motorsport-analytics/log"
	"github.com/mpapenbr/motorsport-analytics/pkg/model"
	"github.com/mpapenbr/motorsport-analytics/pkg/resultcache"
	"github.com/mpapenbr/motorsport-analytics/pkg/session"
)

type (
	Option func(*Service)
	// Service provides the analyses of a session.
	// Results are looked up in the result cache first. On a miss the session is
	// loaded, analyzed and the result is stored in the cache.
	Service struct {
		loader   session.Loader
		cache    *resultcache.Cache
		log      *log.Logger
		tracer   trace.Tracer
		duration metric.Float64Histogram
		loads    metric.Int64Counter
	}
)

func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func New(loader session.Loader, cache *resultcache.Cache, opts ...Option) *Service {
	ret := &Service{
		loader: loader,
		cache:  cache,
		log:    log.Default().Named("analytics"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.tracer == nil {
		ret.tracer = otel.Tracer("msa")
	}
	meter := otel.GetMeterProvider().Meter("msa.analytics")
	ret.duration, _ = meter.Float64Histogram("analysis_duration",
		metric.WithDescription("computation of a session analysis"),
		metric.WithUnit("s"))
	ret.loads, _ = meter.Int64Counter("session_loads",
		metric.WithDescription("session loads by outcome"))
	return ret
}

// lazySession loads the session on first use only. It is not safe for
// concurrent use.
type lazySession struct {
	svc    *Service
	key    model.SessionKey
	loaded bool
	sess   model.Session
	err    error
}

func (s *Service) lazy(key model.SessionKey) *lazySession {
	return &lazySession{svc: s, key: key}
}

func (l *lazySession) get(ctx context.Context) (model.Session, error) {
	if l.loaded {
		return l.sess, l.err
	}
	ctx, span := l.svc.tracer.Start(ctx, "load session",
		trace.WithAttributes(attribute.String("session", l.key.String())))
	defer span.End()

	start := time.Now()
	l.sess, l.err = l.svc.loader.Load(ctx, l.key)
	l.loaded = true
	outcome := "ok"
	if l.err != nil {
		outcome = "error"
		span.SetStatus(codes.Error, l.err.Error())
	}
	if l.svc.loads != nil {
		l.svc.loads.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
	l.svc.log.Debug("session loaded",
		log.String("session", l.key.String()),
		log.Duration("duration", time.Since(start)),
		log.String("outcome", outcome))
	return l.sess, l.err
}

// cachedResult returns the cached value for metric m or computes it from the
// session of ls. A failing analysis is logged and empty is returned without
// caching it. Load errors and validation errors are returned to the caller.
//
//nolint:whitespace // editor/linter issue
func cachedResult[T any](
	ctx context.Context,
	ls *lazySession,
	m model.Metric,
	empty T,
	analyze func(ctx context.Context, sess model.Session) (T, error),
) (T, error) {
	s := ls.svc
	var ret T
	if s.cache.Get(ctx, ls.key, m, &ret) {
		return ret, nil
	}
	sess, err := ls.get(ctx)
	if err != nil {
		return empty, err
	}

	ctx, span := s.tracer.Start(ctx, "analyze",
		trace.WithAttributes(
			attribute.String("session", ls.key.String()),
			attribute.String("metric", string(m))))
	defer span.End()
	start := time.Now()
	ret, err = analyze(log.AddToContext(ctx, s.log), sess)
	if s.duration != nil {
		s.duration.Record(ctx, time.Since(start).Seconds(),
			metric.WithAttributes(attribute.String("metric", string(m))))
	}
	if err != nil {
		if model.IsValidationError(err) {
			return empty, err
		}
		span.SetStatus(codes.Error, err.Error())
		s.log.Error("analysis failed",
			log.String("session", ls.key.String()),
			log.String("metric", string(m)),
			log.ErrorField(err))
		return empty, nil
	}
	s.cache.Put(ctx, ls.key, m, ret)
	return ret, nil
}
