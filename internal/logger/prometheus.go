package logger

import (
	"github.com/maxaizer/solon/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const (
	errorTypeUnknown = "unknown"
	errorTypeOther   = "other"
)

var knownErrorTypes = map[string]bool{
	ErrorTypeAiApi:      true,
	ErrorTypeAiParse:    true,
	ErrorTypeCredential: true,
	ErrorTypeTgApi:      true,
}

// errorCounterHook counts error entries by their error_type field. Unlisted types share one
// label so a typo can't create new series.
type errorCounterHook struct {
	counter *prometheus.CounterVec
}

func (h *errorCounterHook) Fire(entry *log.Entry) error {
	h.counter.WithLabelValues(errorTypeLabel(entry)).Inc()
	return nil
}

func (h *errorCounterHook) Levels() []log.Level {
	return []log.Level{
		log.ErrorLevel,
		log.FatalLevel,
		log.PanicLevel,
	}
}

func errorTypeLabel(entry *log.Entry) string {
	errorType, ok := entry.Data[ErrorTypeField].(string)
	switch {
	case !ok || errorType == "":
		return errorTypeUnknown
	case !knownErrorTypes[errorType]:
		return errorTypeOther
	default:
		return errorType
	}
}

func addPrometheusHook() {
	log.AddHook(&errorCounterHook{counter: metrics.ErrorsCounter})
}
