package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	apperrors "github.com/jwalitptl/clinic-records/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	err := newRootCommand(a).ExecuteContext(ctx)
	a.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, describe(err))
		stop()
		os.Exit(1)
	}
}

// describe renders a failure once for the person at the terminal.
func describe(err error) string {
	appErr, ok := apperrors.As(err)
	if !ok {
		return "error: " + err.Error()
	}
	switch appErr.Code {
	case apperrors.ErrValidationFailed:
		return "invalid input: " + appErr.Message
	case apperrors.ErrDependencyExists:
		return "cannot delete: " + appErr.Message
	case apperrors.ErrNotFound:
		return "warning: " + appErr.Message
	default:
		if appErr.Err != nil {
			return appErr.Message + ": " + appErr.Err.Error()
		}
		return appErr.Message
	}
}
