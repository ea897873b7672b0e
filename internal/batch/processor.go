package batch

import (
	"context"
	"sync"

	"github.com/Reics/MAGI-01/internal/models"
	"github.com/rs/zerolog"
)

// DebateRunner runs one two-round debate.
type DebateRunner interface {
	Run(ctx context.Context, directive string) (*models.DebateSession, error)
}

// Result pairs a finished session with its input identity. Error is set
// when the debate itself failed, including first-round quorum failure.
type Result struct {
	ID         string                `json:"id"`
	LineNumber int                   `json:"-"`
	Session    *models.DebateSession `json:"session,omitempty"`
	Error      string                `json:"error,omitempty"`
}

type Processor struct {
	runner  DebateRunner
	workers int
	logger  *zerolog.Logger
}

func NewProcessor(runner DebateRunner, workers int, logger *zerolog.Logger) *Processor {
	if workers < 1 {
		workers = 1
	}
	return &Processor{
		runner:  runner,
		workers: workers,
		logger:  logger,
	}
}

// Process fans records out to the worker pool and streams results back.
// Records that failed to parse are passed through as error results
// without running a debate.
func (p *Processor) Process(ctx context.Context, records []InputRecord) <-chan Result {
	out := make(chan Result, len(records))
	work := make(chan InputRecord)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for record := range work {
				out <- p.processOne(ctx, record)
			}
		}()
	}

	go func() {
		defer close(work)
		for _, record := range records {
			select {
			case work <- record:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

func (p *Processor) processOne(ctx context.Context, record InputRecord) Result {
	result := Result{
		ID:         record.Request.ID,
		LineNumber: record.LineNumber,
	}

	if record.Error != nil {
		result.Error = record.Error.Error()
		return result
	}

	session, err := p.runner.Run(ctx, record.Request.Directive)
	if err != nil {
		p.logger.Error().
			Err(err).
			Str("id", record.Request.ID).
			Int("line", record.LineNumber).
			Msg("Debate failed")
		result.Error = err.Error()
		return result
	}

	result.Session = session
	return result
}
