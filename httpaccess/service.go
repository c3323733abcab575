package httpaccess

import (
	"context"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/httpaccess/config"
	"github.com/kbukum/httpaccess/errors"
	"github.com/kbukum/httpaccess/logger"
)

const componentName = "httpaccess"

// Service is the entry point for outbound HTTP: it picks the client for a
// request, applies the proxy settings that fit it, releases connections and
// classifies response statuses. It is safe for concurrent use.
type Service struct {
	settings  *Settings
	registry  *Registry
	validator ResponseStatusValidator

	proxied Params
	direct  Params

	log     *logger.Logger
	metrics *metrics
	tracer  trace.Tracer
}

type options struct {
	log            *logger.Logger
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	validator      ResponseStatusValidator
}

// Option configures a Service.
type Option func(*options)

// WithLogger sets the service logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMeterProvider sets the provider for the service's metrics. The global
// provider is used by default.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}

// WithTracerProvider sets the provider for acquisition spans. The global
// provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithResponseValidator replaces the status policy loaded from settings.
func WithResponseValidator(v ResponseStatusValidator) Option {
	return func(o *options) { o.validator = v }
}

// New builds a Service from settings. Nothing is shared between Services;
// clients are built lazily on first use.
func New(settings *Settings, opts ...Option) (*Service, error) {
	if settings == nil {
		return nil, errors.MissingField("settings")
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Get(componentName)
	}
	if o.meterProvider == nil {
		o.meterProvider = otel.GetMeterProvider()
	}
	if o.tracerProvider == nil {
		o.tracerProvider = otel.GetTracerProvider()
	}
	if o.validator == nil {
		o.validator = settings.validator()
	}

	m, err := newMetrics(o.meterProvider)
	if err != nil {
		return nil, errors.Internal(err)
	}

	s := &Service{
		settings:  settings,
		validator: o.validator,
		log:       o.log,
		metrics:   m,
		tracer:    o.tracerProvider.Tracer(instrumentationName),
	}
	s.registry = NewRegistry(settings.Pool,
		WithBuildHook(m.recordBuild),
		WithRegistryPoolRejectHook(m.recordPoolRejection),
		WithRegistryLogger(o.log),
	)
	s.direct, s.proxied = paramsFor(settings)

	s.log.Info("HTTP access initialized", logger.Fields("settings", settings.Summary()))
	return s, nil
}

// NewFromStore loads Settings from store and builds a Service. Either a
// ready Service or an error is returned.
func NewFromStore(store config.PropertyStore, opts ...Option) (*Service, error) {
	settings, err := LoadSettings(store)
	if err != nil {
		return nil, err
	}
	return New(settings, opts...)
}

func paramsFor(s *Settings) (direct, proxied Params) {
	direct = Params{
		ContentCharset:    s.ContentCharset,
		ElementCharset:    s.ElementCharset,
		SocketTimeout:     s.SocketTimeout,
		ConnectionTimeout: s.ConnectionTimeout,
	}
	proxied = direct
	if !s.ProxyEnabled() {
		return direct, proxied
	}

	proxied.Proxy = &url.URL{Scheme: "http", Host: s.ProxyAddress()}
	if creds := s.Credentials(); creds != nil {
		proxied.Credentials = creds
		proxied.AuthScope = s.AuthScope()
		proxied.Preemptive = true
	}
	return direct, proxied
}

// Client returns a client configured for m. Hosts on the bypass list get a
// direct client without proxy or credentials; every other request goes
// through the proxy when one is configured, with DoAuthentication set on m
// when credentials apply.
func (s *Service) Client(m *Method) (*Client, error) {
	ctx := context.Background()
	if m != nil && m.Request != nil {
		ctx = m.Request.Context()
	}
	ctx, span := s.tracer.Start(ctx, "httpaccess.acquire")
	defer span.End()

	bypassed := s.bypassed(m)
	pc, err := s.registry.GetOrCreate(bypassed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	params := s.proxied
	if bypassed {
		params = s.direct
	}
	if params.Credentials != nil && m != nil {
		m.DoAuthentication = true
	}

	span.SetAttributes(
		attribute.String("httpaccess.slot", pc.Slot().String()),
		attribute.Bool("httpaccess.bypassed", bypassed),
		attribute.Bool("httpaccess.proxied", params.Proxy != nil),
	)
	s.metrics.recordAcquire(ctx, pc.Slot(), bypassed)

	if m != nil {
		s.log.Debug("Client acquired", logger.Fields(
			logger.FieldMethodID, m.ID,
			logger.FieldSlot, pc.Slot().String(),
			logger.FieldBypassed, bypassed,
		))
	}
	return pc.With(params), nil
}

// bypassed reports whether m's host is on the bypass list. The list is only
// consulted when a proxy host is configured. A host that cannot be
// extracted is logged and treated as not bypassed.
func (s *Service) bypassed(m *Method) bool {
	if s.settings.ProxyHost == "" || len(s.settings.NoProxyFor) == 0 {
		return false
	}
	host, err := m.Host()
	if err != nil {
		fields := logger.ErrorFields("bypass", err)
		if m != nil {
			fields[logger.FieldMethodID] = m.ID
		}
		s.log.Warn("Cannot determine request host, using proxy", fields)
		return false
	}
	return IsBypassed(s.settings.NoProxyFor, host)
}

// Release releases m's response and, when pooling is disabled, closes the
// idle connections of c so no socket lingers. Pooled connections are kept
// for reuse. Both arguments may be nil.
func (s *Service) Release(c *Client, m *Method) {
	m.Release()
	pooled := s.settings.Pool.Enabled
	if c != nil && !pooled {
		c.CloseIdleConnections()
	}
	s.metrics.recordRelease(context.Background(), pooled)
}

// Validate reports whether status counts as a successful response.
func (s *Service) Validate(status int) bool {
	return s.validator.Validate(status)
}

// Settings returns the configuration snapshot.
func (s *Service) Settings() *Settings { return s.settings }

// Registry returns the client registry.
func (s *Service) Registry() *Registry { return s.registry }

// Close closes idle pooled connections.
func (s *Service) Close() {
	s.registry.Close()
}
