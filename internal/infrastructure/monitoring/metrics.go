package monitoring

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ClientMetrics holds the Prometheus collectors for outbound API calls.
type ClientMetrics struct {
	Requests          *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	SessionExpiration prometheus.Counter
}

// NewClientMetrics creates the collectors and registers them on reg. A nil
// reg leaves them unregistered, which is what tests and embedded callers
// that do not scrape want.
func NewClientMetrics(namespace string, reg prometheus.Registerer) (*ClientMetrics, error) {
	if namespace == "" {
		namespace = "cyberrisk"
	}
	m := &ClientMetrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "client",
				Name:      "requests_total",
				Help:      "Total number of requests sent to the risk service.",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "client",
				Name:      "request_duration_seconds",
				Help:      "Latency of requests sent to the risk service.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		SessionExpiration: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "client",
				Name:      "session_expirations_total",
				Help:      "Number of sessions cleared after the service rejected the token.",
			},
		),
	}

	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Requests, m.RequestDuration, m.SessionExpiration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveRequest records one completed call. status is 0 when no response
// arrived.
func (m *ClientMetrics) ObserveRequest(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	endpoint := EndpointLabel(path)
	statusLabel := "network_error"
	if status > 0 {
		statusLabel = strconv.Itoa(status)
	}
	m.Requests.WithLabelValues(method, endpoint, statusLabel).Inc()
	m.RequestDuration.WithLabelValues(method, endpoint).Observe(d.Seconds())
}

// IncSessionExpired counts a forced logout.
func (m *ClientMetrics) IncSessionExpired() {
	if m == nil {
		return
	}
	m.SessionExpiration.Inc()
}

var (
	numericSegment = regexp.MustCompile(`^[0-9]+$`)
	uuidSegment    = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// Parents whose child segment is a caller-supplied value, and the
// placeholder that replaces it.
var templatedChild = map[string]string{
	"scan":   ":id",
	"report": ":user_id",
	"role":   ":role",
}

// Fixed segments that share a parent with a templated one.
var fixedChild = map[string]bool{
	"perform":       true,
	"history":       true,
	"my-reports":    true,
	"comprehensive": true,
}

// EndpointLabel maps a request path to its route template so the endpoint
// label stays low-cardinality, e.g. "/scan/42" becomes "/scan/:id".
func EndpointLabel(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		if i > 0 {
			if placeholder, ok := templatedChild[segments[i-1]]; ok && !fixedChild[seg] {
				segments[i] = placeholder
				continue
			}
		}
		if numericSegment.MatchString(seg) || uuidSegment.MatchString(seg) {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}

//Personal.AI order the ending
