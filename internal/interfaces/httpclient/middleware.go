package httpclient

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/cyberrisk/internal/domain/repository"
	"github.com/turtacn/cyberrisk/internal/infrastructure/monitoring"
	"github.com/turtacn/cyberrisk/pkg/constants"
	"github.com/turtacn/cyberrisk/pkg/errors"
	"github.com/turtacn/cyberrisk/pkg/logger"
)

// DefaultChain returns the standard middleware order, outermost first.
// Nil tracing or metrics disable the corresponding middleware.
func DefaultChain(
	store repository.KeyValueStore,
	log logger.Logger,
	tracing *monitoring.TracingManager,
	metrics *monitoring.ClientMetrics,
	onExpired ...func(context.Context),
) []Middleware {
	mws := []Middleware{RequestID()}
	if tracing != nil {
		mws = append(mws, Tracing(tracing))
	}
	if metrics != nil {
		mws = append(mws, Metrics(metrics))
		onExpired = append([]func(context.Context){func(context.Context) { metrics.IncSessionExpired() }}, onExpired...)
	}
	return append(mws,
		Logging(log),
		SessionExpiry(store, log, onExpired...),
		BearerAuth(store, log),
	)
}

// RequestID tags each request with an X-Request-ID, reusing one already in
// the context.
func RequestID() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) (*Response, error) {
			id, _ := ctx.Value(constants.ContextKeyRequestID).(string)
			if id == "" {
				id = uuid.NewString()
				ctx = context.WithValue(ctx, constants.ContextKeyRequestID, id)
			}
			req.Header.Set(constants.HeaderRequestID, id)
			return next(ctx, req)
		}
	}
}

// Tracing starts a client span per request and propagates it in the
// W3C traceparent header.
func Tracing(tm *monitoring.TracingManager) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) (*Response, error) {
			endpoint := monitoring.EndpointLabel(req.Path)
			ctx, span := tm.StartSpan(ctx, req.Method+" "+endpoint, trace.WithSpanKind(trace.SpanKindClient))
			defer span.End()

			if traceID := tm.TraceID(ctx); traceID != "" {
				ctx = context.WithValue(ctx, constants.ContextKeyTraceID, traceID)
			}
			tm.InjectTraceContext(ctx, propagation.HeaderCarrier(req.Header))

			resp, err := next(ctx, req)

			span.SetAttributes(
				attribute.String("http.method", req.Method),
				attribute.String("http.route", endpoint),
				attribute.Int("http.status_code", statusOf(resp)),
			)
			if err != nil {
				tm.RecordError(ctx, err, attribute.String("error.kind", string(errors.KindOf(err))))
			}
			return resp, err
		}
	}
}

// Metrics records the request count and latency.
func Metrics(m *monitoring.ClientMetrics) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) (*Response, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			m.ObserveRequest(req.Method, req.Path, statusOf(resp), time.Since(start))
			return resp, err
		}
	}
}

// Logging emits one debug line per request.
func Logging(log logger.Logger) Middleware {
	log = log.WithComponent("httpclient")
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) (*Response, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			fields := []logger.Field{
				logger.String("method", req.Method),
				logger.String("path", req.Path),
				logger.Int("status", statusOf(resp)),
				logger.Duration("duration", time.Since(start)),
			}
			if err != nil {
				fields = append(fields, logger.String("kind", string(errors.KindOf(err))), logger.Err(err))
			}
			log.Debug(ctx, "api request", fields...)
			return resp, err
		}
	}
}

// SessionExpiry tears down the session whenever the server answers 401:
// token and profile are cleared together and every hook is invoked. The 401
// error itself is still returned to the caller.
func SessionExpiry(store repository.KeyValueStore, log logger.Logger, hooks ...func(context.Context)) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) (*Response, error) {
			resp, err := next(ctx, req)
			if !errors.IsAuthExpired(err) {
				return resp, err
			}

			log.Warn(ctx, "session rejected by server, clearing credentials", logger.String("path", req.Path))
			if rmErr := store.Remove(ctx, constants.SessionKeys...); rmErr != nil {
				log.Error(ctx, "failed to clear session after 401", rmErr)
			}
			for _, hook := range hooks {
				if hook != nil {
					hook(ctx)
				}
			}
			return resp, err
		}
	}
}

// BearerAuth sets "Authorization: Bearer <token>" when a token is stored.
// A missing token or an unreadable store leaves the request untouched.
func BearerAuth(store repository.KeyValueStore, log logger.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) (*Response, error) {
			token, ok, err := store.Get(ctx, constants.StorageKeyToken)
			switch {
			case err != nil:
				log.Debug(ctx, "token lookup failed, sending request unauthenticated", logger.Err(err))
			case ok && token != "":
				req.Header.Set(constants.HeaderAuthorization, constants.BearerScheme+" "+token)
			}
			return next(ctx, req)
		}
	}
}

func statusOf(resp *Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}
