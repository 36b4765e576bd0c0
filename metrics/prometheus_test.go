package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSearch(10, 5*time.Millisecond, nil)
	c.RecordSearch(10, 5*time.Millisecond, errors.New("boom"))
	c.RecordOpticCompile(time.Millisecond, nil)
	c.RecordBangRedirect()
	c.RecordShardTimeout(3)
	c.RecordShardTimeout(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.searchesTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.searchesTotal.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.compilesTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.bangsTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.shardTimeouts.WithLabelValues("shard-3")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestCollectorSeparateRegistries(t *testing.T) {
	// Two collectors on independent registries must not collide.
	a := NewCollector(prometheus.NewRegistry())
	b := NewCollector(prometheus.NewRegistry())

	a.RecordBangRedirect()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.bangsTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.bangsTotal))
}
