// Package batch runs many debate directives from a JSONL file through
// the orchestrator with a bounded worker pool.
package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// DirectiveRequest is one line of the batch input file.
type DirectiveRequest struct {
	ID        string `json:"id"`
	Directive string `json:"directive"`
}

// InputRecord is a parsed input line. Error is set when the line could
// not be parsed; the record is still emitted so callers can report it.
type InputRecord struct {
	LineNumber int
	Request    DirectiveRequest
	Error      error
}

type Reader struct {
	source io.Reader
	logger *zerolog.Logger
}

func NewReader(source io.Reader, logger *zerolog.Logger) *Reader {
	return &Reader{
		source: source,
		logger: logger,
	}
}

// ReadAll streams records from the input. Blank lines are skipped,
// malformed lines produce a record with Error set. The channel closes
// when the input is exhausted or ctx is cancelled.
func (r *Reader) ReadAll(ctx context.Context) <-chan InputRecord {
	ch := make(chan InputRecord)

	go func() {
		defer close(ch)

		scanner := bufio.NewScanner(r.source)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		lineNumber := 0
		for scanner.Scan() {
			lineNumber++
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			record := InputRecord{LineNumber: lineNumber}

			var request DirectiveRequest
			if err := json.Unmarshal([]byte(line), &request); err != nil {
				record.Error = fmt.Errorf("line %d: %w", lineNumber, err)
			} else if strings.TrimSpace(request.Directive) == "" {
				record.Error = fmt.Errorf("line %d: empty directive", lineNumber)
			} else {
				record.Request = request
			}

			select {
			case ch <- record:
			case <-ctx.Done():
				r.logger.Warn().Int("line", lineNumber).Msg("Reader stopped by context cancellation")
				return
			}
		}

		if err := scanner.Err(); err != nil {
			r.logger.Error().Err(err).Msg("Failed to read input")
		}
	}()

	return ch
}
