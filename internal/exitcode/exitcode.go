package exitcode

import (
	"errors"
	"os"
	"strings"

	maisonerrors "github.com/maisondecor/maison/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// AuthError indicates an authentication or authorization failure
	AuthError = 3

	// NotFound indicates a listing or resource that does not exist
	NotFound = 4

	// NetworkError indicates the backend could not be reached
	NetworkError = 5

	// Interrupted indicates the user cancelled the operation
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}
	Exit(DetermineExitCode(err))
}

// DetermineExitCode analyzes an error and returns the appropriate exit
// code. Coded errors are classified by their code prefix; everything
// else falls back to message heuristics.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	var merr *maisonerrors.MaisonError
	if errors.As(err, &merr) {
		code := string(merr.Code)
		switch {
		case strings.HasPrefix(code, "AUTH-"), strings.HasPrefix(code, "SESSION-"):
			return AuthError
		case merr.Code == maisonerrors.ErrCodeProductNotFound:
			return NotFound
		case merr.Code == maisonerrors.ErrCodeAPIUnreachable:
			return NetworkError
		case strings.HasPrefix(code, "CONFIG-"):
			return UsageError
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unauthorized"), strings.Contains(msg, "access denied"):
		return AuthError
	case strings.Contains(msg, "not found"):
		return NotFound
	case strings.Contains(msg, "connection"), strings.Contains(msg, "timeout"), strings.Contains(msg, "unreachable"):
		return NetworkError
	case strings.Contains(msg, "unknown command"), strings.Contains(msg, "required flag"), strings.Contains(msg, "invalid flag"):
		return UsageError
	}
	return GeneralError
}

// Description returns a human-readable description of an exit code
func Description(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case AuthError:
		return "Authentication error"
	case NotFound:
		return "Not found"
	case NetworkError:
		return "Network error"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
