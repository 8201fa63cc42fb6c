// Package main implements a CHIP-8 program disassembler
package main

import (
	"context"
	"errors"
	"os"

	"github.com/retroenv/chip8emu/internal/cli"
	"github.com/retroenv/chip8emu/internal/config"
	"github.com/retroenv/chip8emu/internal/fileprocessor"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

const name = "chip8disasm"

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, disasmOptions, err := cli.ParseDisasmFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet, false)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fileprocessor.PrintBanner(logger, name, opts, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet, false)
	fileprocessor.PrintBanner(logger, name, opts, version, commit, date)

	if err := fileprocessor.ProcessFile(ctx, logger, opts, disasmOptions); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("Operation cancelled")
			return
		}
		logger.Error("Disassembling failed", log.Err(err))
		os.Exit(1)
	}
}
