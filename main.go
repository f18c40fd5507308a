package main

import (
	"log"
	"os"
	"strings"

	"eazypaste/cmd"
	"eazypaste/pkg/logging"
	"eazypaste/pkg/version"

	"go.uber.org/zap"
	"golang.org/x/term"
)

func main() {
	logger, err := logging.Setup(false, version.AppName, version.Version)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	if err := cmd.Execute(logger); err != nil {
		reportFailure(zap.L(), err)
		syncLogger(zap.L())
		os.Exit(1)
	}
	syncLogger(zap.L())
}

func reportFailure(logger *zap.Logger, err error) {
	logger.Error("Command execution failed", zap.Error(err))
}

// syncLogger flushes the logger when stderr is a terminal or a regular file. Syncing
// a pipe fails with "invalid argument" on some platforms, which is ignored.
func syncLogger(logger *zap.Logger) {
	if !term.IsTerminal(int(os.Stderr.Fd())) && !isRegularFile(os.Stderr) {
		return
	}
	if syncErr := logger.Sync(); syncErr != nil {
		if !strings.Contains(strings.ToLower(syncErr.Error()), "invalid argument") {
			log.Printf("Logger sync failed: %v", syncErr)
		}
	}
}

// isRegularFile checks if the given file is a regular file.
func isRegularFile(f *os.File) bool {
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}
	return fileInfo.Mode().IsRegular()
}
