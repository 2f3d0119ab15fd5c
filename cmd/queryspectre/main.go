package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/ppiankov/queryspectre/internal/logging"
	"github.com/ppiankov/queryspectre/internal/redash"
)

var version = "0.3.0"

// Exit codes for structured error reporting.
const (
	ExitSuccess    = 0
	ExitInternal   = 1
	ExitInvalidArg = 2
	ExitNotFound   = 3
	ExitAuth       = 4
	ExitNetwork    = 5
)

func main() {
	logging.Init(false)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := NewRootCmd()
	root.AddCommand(NewVersionCmd())

	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error("command failed", slog.String("error", logging.Mask(err.Error())))
		stop()
		os.Exit(classifyError(err))
	}
}

func classifyError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var apiErr *redash.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.IsAuth():
			return ExitAuth
		case apiErr.StatusCode == http.StatusNotFound:
			return ExitNotFound
		default:
			return ExitInternal
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ExitNetwork
	}

	msg := strings.ToLower(err.Error())

	if strings.Contains(msg, "dial") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "i/o timeout") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "network is unreachable") {
		return ExitNetwork
	}

	if strings.Contains(msg, "required") ||
		strings.Contains(msg, "invalid") ||
		strings.Contains(msg, "must be") ||
		strings.Contains(msg, "accepts") ||
		strings.Contains(msg, "unknown flag") ||
		strings.Contains(msg, "mutually exclusive") {
		return ExitInvalidArg
	}

	return ExitInternal
}
