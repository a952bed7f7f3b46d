// Package cyberrisk is the embeddable client for the CyberRisk service. It
// wires the session store, the intercepted transport and the gateways into a
// single Client.
package cyberrisk

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/turtacn/cyberrisk/internal/application/dto"
	"github.com/turtacn/cyberrisk/internal/application/service"
	"github.com/turtacn/cyberrisk/internal/config"
	"github.com/turtacn/cyberrisk/internal/domain/models"
	"github.com/turtacn/cyberrisk/internal/domain/repository"
	domainService "github.com/turtacn/cyberrisk/internal/domain/service"
	"github.com/turtacn/cyberrisk/internal/infrastructure/monitoring"
	"github.com/turtacn/cyberrisk/internal/infrastructure/persistence"
	"github.com/turtacn/cyberrisk/internal/interfaces/httpclient"
	"github.com/turtacn/cyberrisk/pkg/logger"
)

// Re-exported so callers do not import internal packages.
type (
	Config              = config.Config
	Result[T any]       = dto.Result[T]
	AuthResponse        = dto.AuthResponse
	RegisterRequest     = dto.RegisterRequest
	UserProfile         = models.UserProfile
	ScanRecord          = models.ScanRecord
	RiskAnalysis        = models.RiskAnalysis
	ScoreSummary        = models.ScoreSummary
	ReportList          = models.ReportList
	ComprehensiveReport = models.ComprehensiveReport
	SystemStats         = models.SystemStats
	UserList            = models.UserList
	ServiceHealth       = models.ServiceHealth
	RiskStatistics      = models.RiskStatistics
	RiskTrendPoint      = models.RiskTrendPoint
	Classification      = models.Classification
	RiskLevel           = models.RiskLevel
	Dashboard           = service.Dashboard
	KeyValueStore       = repository.KeyValueStore
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return config.Default()
}

// Client bundles every client-side operation of the service.
type Client struct {
	Session   service.SessionManager
	Scans     service.ScanGateway
	Analysis  service.AnalysisGateway
	Reports   service.ReportGateway
	Admin     service.AdminGateway
	Dashboard *service.DashboardLoader

	store     repository.KeyValueStore
	ownsStore bool
	tracing   *monitoring.TracingManager
	log       logger.Logger
}

type options struct {
	store      repository.KeyValueStore
	log        logger.Logger
	httpClient *http.Client
	registerer prometheus.Registerer
	onExpired  []func(context.Context)
}

// Option customizes New.
type Option func(*options)

// WithStore uses store for session state instead of the configured driver.
// The caller keeps ownership and closes it.
func WithStore(store repository.KeyValueStore) Option {
	return func(o *options) { o.store = store }
}

// WithLogger replaces the logger built from the log configuration.
func WithLogger(log logger.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithHTTPClient sends requests through hc.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithRegisterer registers the client metrics on reg. Without it metrics are
// only collected when metrics.enabled is set, on the default registerer.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithSessionExpiredHook runs fn after a 401 has cleared the stored session.
func WithSessionExpiredHook(fn func(context.Context)) Option {
	return func(o *options) { o.onExpired = append(o.onExpired, fn) }
}

// New builds a Client from cfg. A nil cfg means DefaultConfig.
func New(ctx context.Context, cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.NewNoopLogger()
	}

	c := &Client{log: o.log, store: o.store}
	if c.store == nil {
		store, err := persistence.NewStore(ctx, cfg.Store, cfg.Redis, o.log)
		if err != nil {
			return nil, err
		}
		c.store = store
		c.ownsStore = true
	}

	tracing, err := monitoring.NewTracingManager(cfg.Tracing, o.log)
	if err != nil {
		c.closeStore()
		return nil, err
	}
	c.tracing = tracing

	var metrics *monitoring.ClientMetrics
	reg := o.registerer
	if reg == nil && cfg.Metrics.Enabled {
		reg = prometheus.DefaultRegisterer
	}
	if reg != nil {
		if metrics, err = monitoring.NewClientMetrics(cfg.Metrics.Namespace, reg); err != nil {
			c.closeStore()
			return nil, err
		}
	}

	httpOpts := []httpclient.Option{
		httpclient.WithMiddleware(httpclient.DefaultChain(c.store, o.log, tracing, metrics, o.onExpired...)...),
	}
	if o.httpClient != nil {
		httpOpts = append(httpOpts, httpclient.WithHTTPClient(o.httpClient))
	}
	api := httpclient.New(cfg.API.BaseURL, cfg.API.Timeout, httpOpts...)

	c.Session = service.NewSessionManager(api, c.store, o.log)
	c.Scans = service.NewScanGateway(api, o.log)
	c.Analysis = service.NewAnalysisGateway(api)
	c.Reports = service.NewReportGateway(api)
	c.Admin = service.NewAdminGateway(api)
	c.Dashboard = service.NewDashboardLoader(c.Scans, c.Analysis)
	return c, nil
}

// Close flushes tracing and releases a store New opened itself.
func (c *Client) Close(ctx context.Context) error {
	err := c.tracing.Shutdown(ctx)
	if cerr := c.closeStore(); err == nil {
		err = cerr
	}
	return err
}

func (c *Client) closeStore() error {
	if !c.ownsStore {
		return nil
	}
	return c.store.Close()
}

// ================================================================================
// Analytics
// ================================================================================

// CalculateRiskStats summarizes the scores of records.
func CalculateRiskStats(records []ScanRecord) RiskStatistics {
	return domainService.CalculateRiskStats(records)
}

// GetRiskTrendData orders records by scan date for charting.
func GetRiskTrendData(records []ScanRecord) []RiskTrendPoint {
	return domainService.GetRiskTrendData(records)
}

// ClassifyScore maps a score onto its risk band.
func ClassifyScore(score int) Classification {
	return domainService.ClassifyScore(score)
}

// DegreesForScore converts a score into a gauge angle.
func DegreesForScore(score int) float64 {
	return domainService.DegreesForScore(score)
}

// LatestScan returns the record with the newest scan date.
func LatestScan(records []ScanRecord) (ScanRecord, bool) {
	return domainService.LatestScan(records)
}

// AnalyzeTrend labels the direction of the scores over time.
func AnalyzeTrend(records []ScanRecord) string {
	return domainService.AnalyzeTrend(records)
}
