package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordDecision(t *testing.T) {
	before := testutil.ToFloat64(Decisions.WithLabelValues("REUSE"))
	RecordDecision("REUSE")
	assert.Equal(t, before+1, testutil.ToFloat64(Decisions.WithLabelValues("REUSE")))
}

func TestRecordBuild(t *testing.T) {
	before := testutil.ToFloat64(Builds.WithLabelValues("success"))
	RecordBuild("success", 12.5)
	assert.Equal(t, before+1, testutil.ToFloat64(Builds.WithLabelValues("success")))
}

func TestUpdateArchiveEntries(t *testing.T) {
	UpdateArchiveEntries(map[string]int{"COMPLETE": 3, "FAILED": 1})
	assert.Equal(t, 3.0, testutil.ToFloat64(ArchiveEntries.WithLabelValues("COMPLETE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ArchiveEntries.WithLabelValues("FAILED")))

	// A later update resets statuses that disappeared.
	UpdateArchiveEntries(map[string]int{"COMPLETE": 2})
	assert.Equal(t, 2.0, testutil.ToFloat64(ArchiveEntries.WithLabelValues("COMPLETE")))
	assert.Equal(t, 0.0, testutil.ToFloat64(ArchiveEntries.WithLabelValues("FAILED")))
}

func TestRecordResourceCache(t *testing.T) {
	hitsBefore := testutil.ToFloat64(ResourceCacheHits.WithLabelValues("l1"))
	missesBefore := testutil.ToFloat64(ResourceCacheMisses)

	RecordResourceCacheHit("l1")
	RecordResourceCacheMiss()

	assert.Equal(t, hitsBefore+1, testutil.ToFloat64(ResourceCacheHits.WithLabelValues("l1")))
	assert.Equal(t, missesBefore+1, testutil.ToFloat64(ResourceCacheMisses))
}
