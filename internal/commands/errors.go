package commands

import (
	"fmt"
	"io"

	"tasksync/internal/exitcode"
)

// reportError prints a backend error and returns its exit code.
func reportError(errOut io.Writer, err error) int {
	code := exitcode.FromError(err)
	switch code {
	case exitcode.AuthError:
		fmt.Fprintf(errOut, "error: auth error: %v (run: tasksync login)\n", err)
	case exitcode.DataError:
		fmt.Fprintf(errOut, "error: data error: %v\n", err)
	case exitcode.ConflictError:
		fmt.Fprintf(errOut, "error: conflict: %v (another client wrote first; try again)\n", err)
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	}
	return code
}
