package services

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/satonic/payperview-api/internal/metrics"
)

func TestAddViewer_CountsOutcomes(t *testing.T) {
	env := newTestEnv(t)
	id := env.mintListed(t)

	ok := metrics.SettlementsTotal.WithLabelValues("ok")
	short := metrics.SettlementsTotal.WithLabelValues("insufficient_payment")
	okBefore, shortBefore := testutil.ToFloat64(ok), testutil.ToFloat64(short)

	_, err := env.svc.AddViewer(context.Background(), "viewer", id, dec("1"))
	assert.Error(t, err)
	_, err = env.svc.AddViewer(context.Background(), "viewer", id, dec(required1500))
	assert.NoError(t, err)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ok))
	assert.Equal(t, shortBefore+1, testutil.ToFloat64(short))
}

func TestAddViewer_CountsDisbursedValue(t *testing.T) {
	env := newTestEnv(t)
	id := env.mintListed(t)

	before := testutil.ToFloat64(metrics.DisbursedTotal)

	_, err := env.svc.AddViewer(context.Background(), "viewer", id, dec("898299990"))
	assert.Error(t, err)
	_, err = env.svc.AddViewer(context.Background(), "viewer", id, dec(required1500))
	assert.NoError(t, err)

	assert.Equal(t, before+898299991, testutil.ToFloat64(metrics.DisbursedTotal))
}
