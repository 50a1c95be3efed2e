package pipeline

import (
	"io"
	"time"

	"charm.land/log/v2"
)

// LoggingObserver is the tracing Observer (NewStageContext defaults to
// NoopObserver): structured key/value tracing through charm.land/log/v2,
// matching how the rest of this codebase's ambient stack logs
// cross-cutting bookkeeping.
type LoggingObserver struct {
	logger *log.Logger
}

// NewLoggingObserver builds an observer writing to w with the log
// prefix "pipeline".
func NewLoggingObserver(w io.Writer) *LoggingObserver {
	logger := log.New(w)
	logger.SetPrefix("pipeline")
	return &LoggingObserver{logger: logger}
}

func (o *LoggingObserver) StageStarted(name string) {
	o.logger.Debug("stage started", "stage", name)
}

func (o *LoggingObserver) StageFinished(name string, dur time.Duration, err error) {
	if err != nil {
		o.logger.Error("stage failed", "stage", name, "duration", dur, "error", err)
		return
	}
	o.logger.Info("stage finished", "stage", name, "duration", dur)
}
