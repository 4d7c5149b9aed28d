package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scubot/tagbot/internal/dispatch"
)

func TestCollectorObservesRegistry(t *testing.T) {
	c := NewCollector()
	reg := dispatch.New(dispatch.WithObserver(c))
	require.NoError(t, reg.Register("ping", dispatch.NewHandlerFunc(dispatch.Params{}, func(context.Context, dispatch.Args) (any, error) {
		return "pong", nil
	})))

	_, _ = reg.Dispatch(context.Background(), "ping")
	_, _ = reg.Dispatch(context.Background(), "ping")
	_, _ = reg.Dispatch(context.Background(), "nope")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.dispatches.WithLabelValues("matched")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.dispatches.WithLabelValues("no_match")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.routes))
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := NewCollector()
	c.ObserveDispatch(dispatch.OutcomeMatched, 0)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `tagbot_dispatch_total{outcome="matched"} 1`)
}
