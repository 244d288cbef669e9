// Package emitter writes samples to the consumer as JSON lines. Each
// record is a single compact JSON object terminated by a newline and is
// flushed immediately so a reader polling the pipe sees it without delay.
package emitter

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/vitalis-app/sysmon/internal/models"
)

// Emitter serializes samples onto an output stream.
type Emitter struct {
	mu      sync.Mutex
	w       *bufio.Writer
	logger  *zap.Logger
	emitted int
}

// New creates an Emitter writing to out.
func New(out io.Writer, logger *zap.Logger) *Emitter {
	return &Emitter{
		w:      bufio.NewWriter(out),
		logger: logger,
	}
}

// Emit writes one sample and flushes it. A write error means the consumer
// has gone away; callers should stop sampling.
func (e *Emitter) Emit(sample models.Sample) error {
	data, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("marshal sample: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.w.Write(data); err != nil {
		return fmt.Errorf("write sample: %w", err)
	}
	if err := e.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("write sample: %w", err)
	}
	if err := e.w.Flush(); err != nil {
		return fmt.Errorf("flush sample: %w", err)
	}

	e.emitted++
	e.logger.Debug("Sample emitted",
		zap.Int("seq", e.emitted),
		zap.Time("timestamp", sample.Timestamp))
	return nil
}

// Emitted returns the number of samples written so far.
func (e *Emitter) Emitted() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.emitted
}
