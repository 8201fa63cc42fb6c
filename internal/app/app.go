// Package app provides the main application helper for the emulator.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/retroenv/chip8emu/internal/audio"
	"github.com/retroenv/chip8emu/internal/chip8"
	"github.com/retroenv/chip8emu/internal/frontend/headless"
	"github.com/retroenv/chip8emu/internal/frontend/terminal"
	"github.com/retroenv/chip8emu/internal/frontend/window"
	"github.com/retroenv/chip8emu/internal/loader"
	"github.com/retroenv/chip8emu/internal/options"
	"github.com/retroenv/chip8emu/internal/runner"
	"github.com/retroenv/retrogolib/log"
)

// Title is the window title prefix.
const Title = "chip8emu"

// PrintInfo prints the information about the program and the emulator settings.
func PrintInfo(logger *log.Logger, opts options.Program, emuOptions options.Emulator, size int) {
	if opts.Quiet {
		return
	}

	logger.Info("Running CHIP-8 program",
		log.String("file", opts.Input),
		log.Int("size", size),
		log.String("frontend", emuOptions.Frontend),
		log.Int("tick_rate", emuOptions.TickRate),
	)
}

// Run loads the program file and executes it with the configured frontend
// until the user quits, the tick limit is reached or the machine stops.
func Run(ctx context.Context, logger *log.Logger, opts options.Program, emuOptions options.Emulator) error {
	program, err := loader.New().Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}
	PrintInfo(logger, opts, emuOptions, len(program))

	machine := chip8.New(logger, machineOptions(emuOptions)...)
	if err := machine.Load(program); err != nil {
		return fmt.Errorf("loading program into memory: %w", err)
	}

	beeper, closeBeeper, err := createBeeper(logger, emuOptions)
	if err != nil {
		return err
	}
	defer closeBeeper()

	frontend, closeFrontend, err := createFrontend(logger, opts, emuOptions)
	if err != nil {
		return err
	}

	run := runner.New(logger, machine, emuOptions, frontend, beeper)
	err = run.Run(ctx)
	if closeErr := closeFrontend(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}

	if frontend, ok := frontend.(*headless.Frontend); ok && !opts.Quiet {
		logger.Info("Program stopped",
			log.Int("ticks", int(run.Ticks())),
			log.Int("frames", int(frontend.Frames())))
		if err := frontend.WriteLastFrame(os.Stdout); err != nil {
			return fmt.Errorf("writing frame: %w", err)
		}
	}
	return nil
}

func machineOptions(emuOptions options.Emulator) []chip8.Option {
	opts := []chip8.Option{chip8.WithTrace(emuOptions.Trace)}
	if emuOptions.Seed != 0 {
		opts = append(opts, chip8.WithSeed(emuOptions.Seed))
	}
	return opts
}

func createBeeper(logger *log.Logger, emuOptions options.Emulator) (runner.Beeper, func(), error) {
	if emuOptions.Mute {
		return audio.Silent{}, func() {}, nil
	}

	beeper, err := audio.New(audio.DefaultSampleRate, audio.DefaultFrequency)
	if err != nil {
		return nil, nil, fmt.Errorf("creating audio beeper: %w", err)
	}
	return beeper, func() {
		if err := beeper.Close(); err != nil {
			logger.Error("Closing audio failed", log.Err(err))
		}
	}, nil
}

func createFrontend(logger *log.Logger, opts options.Program,
	emuOptions options.Emulator) (runner.Frontend, func() error, error) {

	switch emuOptions.Frontend {
	case options.Ebiten:
		return window.New(Title+" - "+opts.Input, emuOptions.Scale), noClose, nil

	case options.Terminal:
		// keep keys down for about a tenth of a second
		holdTicks := max(emuOptions.TickRate/10, 1)
		frontend := terminal.New(logger, os.Stdin, os.Stdout, holdTicks)
		if err := frontend.Open(); err != nil {
			return nil, nil, fmt.Errorf("opening terminal: %w", err)
		}
		return frontend, frontend.Close, nil

	case options.Headless:
		return headless.New(), noClose, nil

	default:
		return nil, nil, fmt.Errorf("unsupported frontend '%s'", emuOptions.Frontend)
	}
}

func noClose() error {
	return nil
}
