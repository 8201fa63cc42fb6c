// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/retroenv/chip8emu/internal/options"
)

var frontends = []string{options.Ebiten, options.Terminal, options.Headless}

// ParseFlags parses the emulator command line flags and returns program and emulator options.
func ParseFlags() (options.Program, options.Emulator, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)
	readEmulatorFlags(flags, &opts)

	args, err := parse(flags, "chip8emu", "program to run")
	if err != nil {
		return opts, options.Emulator{}, err
	}
	opts.Input = args[0]

	if err := normalizeOptions(&opts); err != nil {
		return opts, options.Emulator{}, err
	}

	return opts, createEmulatorOptions(opts), nil
}

// ParseDisasmFlags parses the disassembler command line flags and returns program and
// disassembler options.
func ParseDisasmFlags() (options.Program, options.Disassembler, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)
	flags.StringVar(&opts.Output, "o", "", "name of the output .asm file, printed on console if no name given")

	disasmOptions := options.NewDisassembler()
	readDisasmOptionFlags(flags, &opts)

	args, err := parse(flags, "chip8disasm", "file to disassemble")
	if err != nil {
		return opts, options.Disassembler{}, err
	}
	opts.Input = args[0]

	disasmOptions.HexComments = !opts.NoHexComments
	disasmOptions.OffsetComments = !opts.NoOffsets
	disasmOptions.ZeroBytes = opts.ZeroBytes
	return opts, disasmOptions, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	usage string
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the command usage and flag defaults.
func (e *UsageError) ShowUsage() {
	if e.msg != "" {
		fmt.Printf("%s\n\n", e.msg)
	}
	fmt.Printf("usage: %s\n\n", e.usage)
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

func parse(flags *flag.FlagSet, command, positional string) ([]string, error) {
	usage := fmt.Sprintf("%s [options] <%s>", command, positional)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || len(args) == 0 {
		return nil, &UsageError{flags: flags, usage: usage}
	}

	if err := validateArgs(args, positional); err != nil {
		err.flags = flags
		err.usage = usage
		return nil, err
	}
	return args, nil
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string, positional string) *UsageError {
	for i, arg := range args {
		if i > 0 && arg != "" && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after %s, please pass the %s as last argument",
					arg, positional, positional),
			}
		}
	}
	if len(args) > 1 {
		return &UsageError{
			msg: fmt.Sprintf("Only one %s can be passed, found %d", positional, len(args)),
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	opts.Frontend = strings.ToLower(opts.Frontend)
	if !slices.Contains(frontends, opts.Frontend) {
		return fmt.Errorf("unsupported frontend: %s. Valid options: %s",
			opts.Frontend, strings.Join(frontends, ", "))
	}

	if opts.TickRate <= 0 {
		return fmt.Errorf("invalid tick rate %d, must be positive", opts.TickRate)
	}
	if opts.Scale <= 0 {
		return fmt.Errorf("invalid scale %d, must be positive", opts.Scale)
	}
	return nil
}

// createEmulatorOptions creates emulator options based on program options
func createEmulatorOptions(opts options.Program) options.Emulator {
	emuOptions := options.NewEmulator(opts.Frontend)
	emuOptions.TickRate = opts.TickRate
	emuOptions.Scale = opts.Scale
	emuOptions.MaxTicks = opts.Ticks
	emuOptions.Seed = opts.Seed
	emuOptions.HaltOnUnknown = !opts.ContinueUnknown
	emuOptions.Trace = opts.Trace

	// the headless frontend has no audio device
	emuOptions.Mute = opts.Mute || opts.Frontend == options.Headless
	return emuOptions
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}

func readEmulatorFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Frontend, "frontend", options.Ebiten, "frontend to use (ebiten/terminal/headless)")
	flags.IntVar(&opts.TickRate, "rate", options.DefaultTickRate, "machine ticks per second, also the timer countdown rate")
	flags.IntVar(&opts.Scale, "scale", 20, "window pixels per display pixel of the ebiten frontend")
	flags.Uint64Var(&opts.Ticks, "ticks", 0, "stop after the given number of ticks, 0 runs until quit")
	flags.Uint64Var(&opts.Seed, "seed", 0, "seed of the random number instruction, 0 uses a random seed")
	flags.BoolVar(&opts.Mute, "mute", false, "disable the sound timer tone")
	flags.BoolVar(&opts.ContinueUnknown, "continue-unknown", false, "keep running when an opcode can not be decoded")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction, implies -debug")
}

func readDisasmOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.BoolVar(&opts.NoHexComments, "nohexcomments", false, "do not output opcode bytes as hex values in comments")
	flags.BoolVar(&opts.NoOffsets, "nooffsets", false, "do not output offsets in comments")
	flags.BoolVar(&opts.ZeroBytes, "z", false, "output the trailing zero bytes of the program")
	flags.BoolVar(&opts.AutoOutput, "a", false, "name the output file after the input file with an .asm extension, ignored if -o is given")
}
