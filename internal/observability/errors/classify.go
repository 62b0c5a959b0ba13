package errors

import (
	"context"
	goerrors "errors"
	"net"
	"reflect"
	"strings"
)

// Classify returns a short error class suitable for tagging metrics and logs.
// Deadlines, cancellations and network failures get fixed names; anything else
// is named after the innermost concrete error type in snake_case.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	var netErr net.Error
	switch {
	case goerrors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case goerrors.Is(err, context.Canceled):
		return "canceled"
	case goerrors.As(err, &netErr):
		if netErr.Timeout() {
			return "timeout"
		}
		return "network"
	}

	for {
		inner := goerrors.Unwrap(err)
		if inner == nil {
			break
		}
		err = inner
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}

	name := strings.ReplaceAll(strings.ToLower(t.String()), ".", "_")
	if name == "" {
		return "unknown"
	}
	return name
}
