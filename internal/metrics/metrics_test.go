package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordVisit(t *testing.T) {
	visits := testutil.ToFloat64(VisitsRecordedTotal)
	uniques := testutil.ToFloat64(UniqueVisitorsTotal)

	RecordVisit(true)
	RecordVisit(false)

	assert.Equal(t, visits+2, testutil.ToFloat64(VisitsRecordedTotal))
	assert.Equal(t, uniques+1, testutil.ToFloat64(UniqueVisitorsTotal))
}

func TestRecordEmail(t *testing.T) {
	before := testutil.ToFloat64(EmailsTotal.WithLabelValues("admin_reply", "failed", "CONNECTION_TIMEOUT"))
	RecordEmail("admin_reply", "failed", "CONNECTION_TIMEOUT")
	assert.Equal(t, before+1, testutil.ToFloat64(EmailsTotal.WithLabelValues("admin_reply", "failed", "CONNECTION_TIMEOUT")))
}
