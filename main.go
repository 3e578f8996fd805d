package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/serverless/sfauth/cmd"
	errUtils "github.com/serverless/sfauth/errors"
	log "github.com/serverless/sfauth/pkg/logger"
)

func main() {
	errUtils.OsExit(run())
}

// run executes the CLI and returns the process exit code.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cmd.NewRootCmd().ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	errUtils.CheckErrorAndPrint(err)
	exitCode := errUtils.GetExitCode(err)
	log.Debug("Exiting with exit code", "code", exitCode)
	return exitCode
}
