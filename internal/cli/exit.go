package cli

import (
	"errors"
	"fmt"

	"github.com/sinner-cli/sinner/internal/gitlog"
	"github.com/sinner-cli/sinner/internal/llm"
	"github.com/sinner-cli/sinner/internal/router"
)

// Exit codes.
const (
	ExitOK          = 0
	ExitError       = 1
	ExitUnsupported = 2
	ExitUnavailable = 3
	ExitTimeout     = 4
	ExitProtocol    = 5
)

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	var (
		unsupported *router.UnsupportedCommandError
		unavailable *llm.UnavailableError
		timedOut    *llm.TimeoutError
		protocol    *llm.ProtocolError
	)
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &unsupported):
		return ExitUnsupported
	case errors.As(err, &unavailable):
		return ExitUnavailable
	case errors.As(err, &timedOut):
		return ExitTimeout
	case errors.As(err, &protocol):
		return ExitProtocol
	default:
		return ExitError
	}
}

// Describe renders err as one actionable line for stderr.
func Describe(err error) string {
	var (
		unsupported *router.UnsupportedCommandError
		unavailable *llm.UnavailableError
		timedOut    *llm.TimeoutError
		protocol    *llm.ProtocolError
	)
	switch {
	case errors.As(err, &unsupported):
		return "Error: " + unsupported.Error()
	case errors.As(err, &unavailable):
		return fmt.Sprintf("Error: cannot reach the model server at %s. Is LM Studio (or your model server) running?", unavailable.Endpoint)
	case errors.As(err, &timedOut):
		if timedOut.After == 0 {
			return "Error: the model timed out. Try a smaller model or raise SINNER_TIMEOUT."
		}
		return fmt.Sprintf("Error: no answer from the model within %s. Try a smaller model or raise SINNER_TIMEOUT.", timedOut.After)
	case errors.As(err, &protocol):
		return fmt.Sprintf("Error: unexpected response from the model server (%v). Check MODEL_ID with `sinner doctor`.", protocol)
	case errors.Is(err, gitlog.ErrNotRepository):
		return "Error: Not in a git repository"
	case errors.Is(err, errNoCommits):
		return "No commits found"
	default:
		return "Error: " + err.Error()
	}
}
