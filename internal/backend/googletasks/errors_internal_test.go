package googletasks

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"google.golang.org/api/googleapi"

	"optitask/internal/service"
)

func TestWrapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind service.ErrorKind
		msg  string
	}{
		{"not found", &googleapi.Error{Code: 404}, service.KindNotFound, ""},
		{"bad request", &googleapi.Error{Code: 400, Message: "Invalid title"}, service.KindInvalid, "invalid request: Invalid title"},
		{"unauthorized", &googleapi.Error{Code: 401}, service.KindUnavailable, "backend unavailable: token expired or revoked (run: optitask login)"},
		{"timeout", fmt.Errorf("get: %w", context.DeadlineExceeded), service.KindUnavailable, "backend unavailable: request timed out"},
		{"other", errors.New("connection reset"), service.KindUnavailable, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapError(tt.err)
			if service.KindOf(got) != tt.kind {
				t.Errorf("expected %s, got %s (%v)", tt.kind, service.KindOf(got), got)
			}
			if tt.msg != "" && got.Error() != tt.msg {
				t.Errorf("expected %q, got %q", tt.msg, got.Error())
			}
		})
	}
	if wrapError(nil) != nil {
		t.Error("expected nil for nil")
	}
}
