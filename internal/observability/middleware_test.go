package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedRouter(t *testing.T, m *Metrics) (http.Handler, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	r := chi.NewRouter()
	r.Use(InjectLogger(zap.New(core)))
	r.Use(RequestLogger(m))
	r.Use(Recovery)
	r.Get("/monasteries/{id}", func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Debug("handler reached")
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	})
	return r, logs
}

func TestRequestLoggerEmitsStructuredEntry(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	h, logs := newObservedRouter(t, m)

	req := httptest.NewRequest(http.MethodGet, "/monasteries/4", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	handlerLogs := logs.FilterMessage("handler reached").All()
	require.Len(t, handlerLogs, 1)
	require.Equal(t, true, handlerLogs[0].ContextMap()["htmx"])

	done := logs.FilterMessage("request completed").All()
	require.Len(t, done, 1)
	fields := done[0].ContextMap()
	require.Equal(t, "/monasteries/{id}", fields["route"])
	require.EqualValues(t, http.StatusNoContent, fields["status"])
	require.Equal(t, zapcore.InfoLevel, done[0].Level)

	require.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/monasteries/{id}", "2xx")))
}

func TestRecoveryReturns500AndLogsError(t *testing.T) {
	t.Parallel()

	h, logs := newObservedRouter(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	require.Len(t, logs.FilterMessage("panic recovered").All(), 1)
	done := logs.FilterMessage("request completed").All()
	require.Len(t, done, 1)
	require.Equal(t, zapcore.ErrorLevel, done[0].Level)
}

func TestFromContextDefaultsToNoop(t *testing.T) {
	t.Parallel()

	require.NotNil(t, FromContext(nil))
	require.NotNil(t, FromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}

func TestMetricsObserveDatasetAndFocus(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.ObserveDatasetLoad(20*time.Millisecond, 10, nil)
	m.ObserveDatasetLoad(5*time.Millisecond, 0, errors.New("fetch failed"))
	m.ObserveFocus(true)
	m.ObserveFocus(false)
	m.ObserveFocus(false)
	m.ObserveFilter(3)

	require.Equal(t, 1.0, testutil.ToFloat64(m.DatasetLoadsTotal.WithLabelValues("success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.DatasetLoadsTotal.WithLabelValues("error")))
	require.Equal(t, 10.0, testutil.ToFloat64(m.DatasetRecords))
	require.Equal(t, 2.0, testutil.ToFloat64(m.FocusConsumedTotal.WithLabelValues("false")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "gazetteer_dataset_loads_total")
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	t.Parallel()

	logger, err := NewLogger("not-a-level")
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	require.False(t, logger.Core().Enabled(zapcore.DebugLevel))

	debug, err := NewLogger("DEBUG")
	require.NoError(t, err)
	require.True(t, debug.Core().Enabled(zapcore.DebugLevel))
}
