// Package main implements the main entry point for the CHIP-8 emulator
package main

import (
	"context"
	"errors"
	"os"

	"github.com/retroenv/chip8emu/internal/app"
	"github.com/retroenv/chip8emu/internal/cli"
	"github.com/retroenv/chip8emu/internal/config"
	"github.com/retroenv/chip8emu/internal/fileprocessor"
	goapp "github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

const name = "chip8emu"

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := goapp.Context()

	opts, emuOptions, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet, opts.Trace)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fileprocessor.PrintBanner(logger, name, opts, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet, opts.Trace)
	fileprocessor.PrintBanner(logger, name, opts, version, commit, date)

	if err := app.Run(ctx, logger, opts, emuOptions); err != nil {
		// Handle context cancellation (Ctrl+C) gracefully
		if errors.Is(err, context.Canceled) {
			logger.Info("Operation cancelled")
			return
		}
		logger.Error("Emulation failed", log.Err(err))
		os.Exit(1)
	}
}
