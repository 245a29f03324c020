package observability

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	cloudTraceHeader = "X-Cloud-Trace-Context"
	tracerName       = "github.com/piyushjoshi9351/sikkim-final-rebuild/internal/observability"
)

// TraceInfo is the Cloud Trace view of the active server span.
type TraceInfo struct {
	TraceID   string
	SpanID    string
	Sampled   bool
	ProjectID string
}

// TraceMiddleware continues an incoming X-Cloud-Trace-Context, starts a server
// span per request and tags the request logger with the trace id. It uses the
// global tracer provider, which is a no-op until one is installed.
func TraceMiddleware(projectID string) func(http.Handler) http.Handler {
	return traceMiddleware(otel.GetTracerProvider(), projectID)
}

func traceMiddleware(tp trace.TracerProvider, projectID string) func(http.Handler) http.Handler {
	tracer := tp.Tracer(tracerName)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if remote, ok := parseCloudTraceContext(r.Header.Get(cloudTraceHeader)); ok {
				ctx = trace.ContextWithRemoteSpanContext(ctx, remote)
			}

			ctx, span := tracer.Start(ctx, spanNameFromRequest(r), trace.WithSpanKind(trace.SpanKindServer))
			defer span.End()
			span.SetAttributes(standardSpanAttributes(r)...)

			spanCtx := span.SpanContext()
			if spanCtx.IsValid() {
				info := TraceInfo{
					TraceID:   spanCtx.TraceID().String(),
					SpanID:    spanCtx.SpanID().String(),
					Sampled:   spanCtx.IsSampled(),
					ProjectID: projectID,
				}
				w.Header().Set(cloudTraceHeader, formatCloudTraceHeader(info))
				ctx = WithLogger(ctx, FromContext(ctx).With(traceFields(info)...))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// traceFields uses the Cloud Logging keys so entries group under their trace.
func traceFields(info TraceInfo) []zap.Field {
	fields := []zap.Field{zap.String("trace_id", info.TraceID)}
	if info.ProjectID != "" {
		fields = append(fields,
			zap.String("logging.googleapis.com/trace", "projects/"+info.ProjectID+"/traces/"+info.TraceID),
			zap.String("logging.googleapis.com/spanId", info.SpanID),
			zap.Bool("logging.googleapis.com/trace_sampled", info.Sampled),
		)
	}
	return fields
}

func parseCloudTraceContext(header string) (trace.SpanContext, bool) {
	header = strings.TrimSpace(header)
	traceIDHex, spanPart, ok := strings.Cut(header, "/")
	if !ok {
		return trace.SpanContext{}, false
	}
	traceIDHex = strings.TrimSpace(traceIDHex)
	if len(traceIDHex) != 32 {
		return trace.SpanContext{}, false
	}
	traceID, err := trace.TraceIDFromHex(traceIDHex)
	if err != nil {
		return trace.SpanContext{}, false
	}

	spanPart, optionPart, _ := strings.Cut(spanPart, ";")
	spanID, ok := parseSpanID(spanPart)
	if !ok {
		return trace.SpanContext{}, false
	}

	var flags trace.TraceFlags
	if parseTraceOptions(optionPart) {
		flags = trace.FlagsSampled
	}
	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: flags,
		Remote:     true,
	}), true
}

// parseSpanID accepts hex ids and the decimal form Cloud Trace sends.
func parseSpanID(value string) (trace.SpanID, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return trace.SpanID{}, false
	}
	if len(value) <= 16 && isHex(value) {
		if len(value) < 16 {
			value = strings.Repeat("0", 16-len(value)) + value
		}
		if spanID, err := trace.SpanIDFromHex(value); err == nil {
			return spanID, true
		}
	}
	if num, err := strconv.ParseUint(value, 10, 64); err == nil {
		var spanID trace.SpanID
		binary.BigEndian.PutUint64(spanID[:], num)
		if spanID.IsValid() {
			return spanID, true
		}
	}
	return trace.SpanID{}, false
}

func parseTraceOptions(optionPart string) bool {
	for _, segment := range strings.Split(optionPart, ";") {
		segment = strings.TrimSpace(segment)
		if strings.HasPrefix(segment, "o=") {
			return segment == "o=1"
		}
	}
	return false
}

func isHex(value string) bool {
	if value == "" {
		return false
	}
	_, err := hex.DecodeString(value)
	return err == nil
}

func formatCloudTraceHeader(info TraceInfo) string {
	option := "0"
	if info.Sampled {
		option = "1"
	}
	return fmt.Sprintf("%s/%s;o=%s", info.TraceID, info.SpanID, option)
}

func spanNameFromRequest(r *http.Request) string {
	path := r.URL.Path
	if path == "" {
		path = "/"
	}
	return r.Method + " " + path
}

func standardSpanAttributes(r *http.Request) []attribute.KeyValue {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	attrs := []attribute.KeyValue{
		attribute.String("http.request.method", r.Method),
		attribute.String("url.scheme", scheme),
		attribute.String("url.path", r.URL.Path),
		attribute.String("url.full", r.URL.RequestURI()),
	}
	if r.Host != "" {
		attrs = append(attrs, attribute.String("server.address", r.Host))
	}
	if ua := r.UserAgent(); ua != "" {
		attrs = append(attrs, attribute.String("user_agent.original", ua))
	}
	return attrs
}
