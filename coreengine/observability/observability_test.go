package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordTurn(t *testing.T) {
	before := testutil.ToFloat64(turnsTotal.WithLabelValues("success"))
	RecordTurn("success", 1200)
	RecordTurn("error", 50)

	assert.Equal(t, before+1, testutil.ToFloat64(turnsTotal.WithLabelValues("success")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(turnsTotal.WithLabelValues("error")), 1.0)
}

func TestRecordHandlerExecution(t *testing.T) {
	before := testutil.ToFloat64(handlerExecutionsTotal.WithLabelValues("router", "success"))
	RecordHandlerExecution("router", "success", 3)
	assert.Equal(t, before+1, testutil.ToFloat64(handlerExecutionsTotal.WithLabelValues("router", "success")))
}

func TestRecordExternalCalls(t *testing.T) {
	llmBefore := testutil.ToFloat64(llmCallsTotal.WithLabelValues("gemini", "gemini-1.5-flash", "success"))
	RecordLLMCall("gemini", "gemini-1.5-flash", "success", 800)
	assert.Equal(t, llmBefore+1, testutil.ToFloat64(llmCallsTotal.WithLabelValues("gemini", "gemini-1.5-flash", "success")))

	calBefore := testutil.ToFloat64(calendarCallsTotal.WithLabelValues("freebusy", "success"))
	RecordCalendarCall("freebusy", "success")
	assert.Equal(t, calBefore+1, testutil.ToFloat64(calendarCallsTotal.WithLabelValues("freebusy", "success")))

	kbBefore := testutil.ToFloat64(knowledgeSearchesTotal.WithLabelValues("empty"))
	RecordKnowledgeSearch("empty")
	assert.Equal(t, kbBefore+1, testutil.ToFloat64(knowledgeSearchesTotal.WithLabelValues("empty")))
}

func TestRecordRecovery(t *testing.T) {
	before := testutil.ToFloat64(recoveriesTotal.WithLabelValues("sanitize"))
	RecordRecovery("sanitize")
	assert.Equal(t, before+1, testutil.ToFloat64(recoveriesTotal.WithLabelValues("sanitize")))
}
