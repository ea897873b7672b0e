package invoker

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/Reics/MAGI-01/internal/config"
	"github.com/Reics/MAGI-01/internal/models"
	"github.com/rs/zerolog"
)

// modelPlaceholder in a runtime arg is replaced with the agent's model
// reference when the command line is built.
const modelPlaceholder = "{model}"

// waitDelay bounds how long Wait blocks on lingering pipe readers after
// the process has been killed.
const waitDelay = 5 * time.Second

// ProcessInvoker runs one external inference process per invocation.
// The prompt is written to the process's stdin and its stdout is parsed
// as a single JSON document. The process is terminated and reaped on
// every exit path, including timeout and caller cancellation.
type ProcessInvoker struct {
	command string
	args    []string
	logger  *zerolog.Logger
}

func NewProcessInvoker(runtime config.RuntimeConfig, logger *zerolog.Logger) *ProcessInvoker {
	return &ProcessInvoker{
		command: runtime.Command,
		args:    runtime.Args,
		logger:  logger,
	}
}

// Invoke launches the agent's process under the given timeout and
// normalizes whatever happens into exactly one Outcome.
func (p *ProcessInvoker) Invoke(ctx context.Context, agent models.AgentSpec, prompt string, timeout time.Duration) models.Outcome {
	start := time.Now()

	invokeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(invokeCtx, p.command, p.buildArgs(agent.Model)...)
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	runErr := cmd.Run()
	elapsed := time.Since(start).Seconds()

	if errors.Is(invokeCtx.Err(), context.DeadlineExceeded) {
		// The bound is reported instead of measured time so a timeout is
		// a deterministic upper-bound signal.
		p.logger.Warn().
			Str("agent", agent.Name).
			Dur("timeout", timeout).
			Msg("agent invocation timed out")
		return models.Outcome{
			AgentID: agent.Name,
			Status:  models.StatusTimeout,
			Latency: timeout.Seconds(),
		}
	}

	if runErr != nil {
		diagnostic := strings.TrimSpace(stderr.String())
		if diagnostic == "" {
			diagnostic = runErr.Error()
		}
		p.logger.Warn().
			Str("agent", agent.Name).
			Str("error", diagnostic).
			Float64("latency", elapsed).
			Msg("agent process failed")
		return models.Outcome{
			AgentID:      agent.Name,
			Status:       models.StatusError,
			ErrorMessage: diagnostic,
			Latency:      elapsed,
		}
	}

	outcome := normalizeOutput(agent.Name, stdout.Bytes(), elapsed)

	p.logger.Info().
		Str("agent", agent.Name).
		Str("status", string(outcome.Status)).
		Float64("latency", elapsed).
		Msg("agent invocation settled")

	return outcome
}

func (p *ProcessInvoker) buildArgs(model string) []string {
	args := make([]string, len(p.args))
	for i, arg := range p.args {
		args[i] = strings.ReplaceAll(arg, modelPlaceholder, model)
	}
	return args
}
