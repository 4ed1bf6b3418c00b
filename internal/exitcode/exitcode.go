// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"strings"

	"optitask/internal/service"
)

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error: bad args, blank title, unknown task.
	UserError = 1

	// AuthError indicates an auth/config error.
	AuthError = 2

	// BackendError indicates a Record Store or network failure.
	BackendError = 3
)

// ForError picks the exit code for a failed mutation or read.
func ForError(err error) int {
	switch service.KindOf(err) {
	case service.KindNone:
		return Success
	case service.KindValidation, service.KindNotFound, service.KindInvalid:
		return UserError
	}
	if strings.Contains(err.Error(), "token") || strings.Contains(err.Error(), "login") {
		return AuthError
	}
	return BackendError
}
