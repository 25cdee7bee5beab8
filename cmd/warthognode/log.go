// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"

	"github.com/warthog-network/node/addrmgr"
	"github.com/warthog-network/node/blockchain"
	"github.com/warthog-network/node/connmgr"
	"github.com/warthog-network/node/netsync"
	"github.com/warthog-network/node/transport"
)

// logRotator rolls the log file referenced by logWriter; closed on
// shutdown via logRotator.Close.
var logRotator *rotator.Rotator

// logWriter implements io.Writer by fanning out to both stdout and the
// active log rotator, mirroring dcrd's logFileWriteCloser pattern
// (SPEC_FULL.md §2.1).
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	if logRotator != nil {
		logRotator.Write(p)
	}
	return len(p), nil
}

// subsystemLoggers maps each actor's four-letter tag (SPEC_FULL.md
// §2.1) to its slog.Logger, so setLogLevel can adjust one of them by
// tag and setLogLevels all of them at once.
var subsystemLoggers = make(map[string]slog.Logger)

var backendLog = slog.NewBackend(logWriter{})

func init() {
	for tag, setter := range map[string]func(slog.Logger){
		"CHNE": blockchain.UseLogger,
		"SYNC": netsync.UseLogger,
		"TRSP": transport.UseLogger,
		"ADXM": addrmgr.UseLogger,
		"CONN": connmgr.UseLogger,
	} {
		l := backendLog.Logger(tag)
		subsystemLoggers[tag] = l
		setter(l)
	}
}

// initLogRotator opens (creating parent directories as needed) the
// rolling log file at logFile, matching dcrd's main.go initLogRotator.
func initLogRotator(logFile string) error {
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return fmt.Errorf("failed to create log rotator: %w", err)
	}
	logRotator = r
	return nil
}

// setLogLevel sets the log level for a single subsystem tag; unknown
// tags are ignored (matches dcrd's permissive per-subsystem override).
func setLogLevel(subsystem, levelName string) {
	logger, ok := subsystemLoggers[subsystem]
	if !ok {
		return
	}
	level, ok := slog.LevelFromString(levelName)
	if !ok {
		return
	}
	logger.SetLevel(level)
}

// setLogLevels applies level to every known subsystem, used for the
// top-level --debuglevel=<level> config shorthand.
func setLogLevels(levelName string) {
	level, ok := slog.LevelFromString(levelName)
	if !ok {
		return
	}
	for _, logger := range subsystemLoggers {
		logger.SetLevel(level)
	}
}

var _ io.Writer = logWriter{}
