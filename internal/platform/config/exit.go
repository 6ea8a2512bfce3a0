package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	apperrors "github.com/louisbranch/creaturebattle/internal/platform/errors"
)

// Exit reports err on stderr and exits with ExitCode(err). A nil error
// exits 0.
func Exit(err error) {
	code := ExitCode(err)
	if code != 0 {
		writeError(os.Stderr, err)
	}
	os.Exit(code)
}

// ExitCode maps a command error to a process exit code: 0 for success or
// -h, 2 for flag misuse, 3 for rejected battle or catalog input and 1 for
// anything else.
func ExitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		return 2
	case apperrors.GetCode(err) != apperrors.CodeUnknown:
		return 3
	default:
		return 1
	}
}

var errUsage = errors.New("usage")

// Usage marks err as a command-line misuse.
func Usage(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", errUsage, err)
}

func writeError(w io.Writer, err error) {
	if code := apperrors.GetCode(err); code != apperrors.CodeUnknown {
		fmt.Fprintf(w, "Error [%s]: %v\n", code, err)
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
