package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	// Before Init every Observe helper is a no-op.
	require.NotPanics(t, func() {
		ObservePage(10)
		ObserveDelivery("success", time.Second)
		ObserveTranslationFailure("timeout")
	})

	Init()
	Init() // idempotent

	ObservePage(25)
	ObservePage(25)
	require.Equal(t, float64(2), testutil.ToFloat64(pagesTotal))
	require.Equal(t, float64(50), testutil.ToFloat64(articlesFetchedTotal))

	ObserveDelivery("success", 200*time.Millisecond)
	ObserveDelivery("failure", time.Second)
	require.Equal(t, float64(1), testutil.ToFloat64(deliveriesTotal.WithLabelValues("success")))
	require.Equal(t, float64(1), testutil.ToFloat64(deliveriesTotal.WithLabelValues("failure")))

	ObserveTranslationFailure("unavailable")
	require.Equal(t, float64(1), testutil.ToFloat64(translationFailuresTotal.WithLabelValues("unavailable")))
}

func TestHandler(t *testing.T) {
	require.NotNil(t, Handler())
}
