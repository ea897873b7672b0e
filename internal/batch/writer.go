package batch

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// Writer serializes batch results, one JSON object per line.
type Writer struct {
	encoder *json.Encoder
	logger  *zerolog.Logger

	written int
	failed  int
}

func NewWriter(out io.Writer, format string, logger *zerolog.Logger) (*Writer, error) {
	if format != "jsonl" {
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
	return &Writer{
		encoder: json.NewEncoder(out),
		logger:  logger,
	}, nil
}

func (w *Writer) Write(result Result) error {
	if err := w.encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode result %s: %w", result.ID, err)
	}

	if result.Error != "" {
		w.failed++
	} else {
		w.written++
	}
	return nil
}

// Close logs final counters. The underlying writer is owned by the
// caller and is not closed here.
func (w *Writer) Close() error {
	w.logger.Info().
		Int("written", w.written).
		Int("failed", w.failed).
		Msg("Batch output complete")
	return nil
}
