// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ezrec/esovm/config"
	"github.com/ezrec/esovm/console"
	"github.com/ezrec/esovm/emulator"
	"github.com/ezrec/esovm/image"
	"github.com/ezrec/esovm/machine"
	"github.com/ezrec/esovm/translate"
)

// newLogger builds the process logger.
func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}

	l, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("esovm: %v", err)
	}
	zap.ReplaceGlobals(l)
	return l
}

// newConsole selects the host console for the configuration.
func newConsole(cfg *config.Config, input string, output io.Writer) (con machine.Console, closer func()) {
	closer = func() {}

	if input == "-" {
		tty := console.NewTerminal()
		tty.Out = output
		tty.HistoryFile = cfg.Terminal.History
		if cfg.Terminal.Raw && tty.IsTerminal() {
			closer = func() { tty.Close() }
			con = tty
			return
		}
		con = &console.Tape{Input: os.Stdin, Output: output}
		return
	}

	inf, err := os.Open(input)
	if err != nil {
		log.Fatalf("%v: %v", input, err)
	}
	closer = func() { inf.Close() }
	con = &console.Tape{Input: inf, Output: output}
	return
}

// runFile executes the named program, and returns its exit code after the
// console, the output file and the logger are closed out.
func runFile(cfg *config.Config, logger *zap.Logger, path string, input string, output string, limit int) (exit uint8, err error) {
	defer logger.Sync()

	var out io.Writer = os.Stdout
	if output != "-" {
		var ouf *os.File
		ouf, err = os.Create(output)
		if err != nil {
			return
		}
		defer ouf.Close()
		out = ouf
	}

	con, closer := newConsole(cfg, input, out)
	defer closer()

	emu := emulator.New(
		emulator.WithConfig(cfg),
		emulator.WithLogger(logger),
		emulator.WithConsole(con),
		emulator.WithSink(os.Stderr),
		emulator.WithLimit(limit),
	)

	src, _, err := openSource(emu, cfg, path)
	if err != nil {
		return
	}

	err = emu.Load(src)
	if err != nil {
		err = fmt.Errorf("%v: %w", path, err)
		return
	}

	exit, err = emu.Run()
	if err != nil {
		err = fmt.Errorf("%v: %w", path, err)
		return
	}

	return
}

func main() {
	var configPath string
	var verbose bool

	var rootCmd = &cobra.Command{
		Use:   "esovm",
		Short: "Esoteric byte-code virtual machine",
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose mode")

	setup := func() (cfg *config.Config, logger *zap.Logger) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("esovm: %v", err)
		}
		cfg.Verbose = cfg.Verbose || verbose
		logger = newLogger(cfg.Verbose)
		return
	}

	var input string
	var output string
	var limit int
	var debug bool

	var runCmd = &cobra.Command{
		Use:   "run FILE",
		Short: "Assemble (or load an image) and execute",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg, logger := setup()
			if debug {
				cfg.Machine.DebugMode = true
			}

			exit, err := runFile(cfg, logger, args[0], input, output, limit)
			if err != nil {
				log.Fatalf("%v", err)
			}

			os.Exit(int(exit))
		},
	}
	runCmd.Flags().StringVarP(&input, "input", "i", "-", "Console input")
	runCmd.Flags().StringVarP(&output, "output", "o", "-", "Console output")
	runCmd.Flags().IntVar(&limit, "limit", 0, "Maximum instructions to execute, 0 for no limit")
	runCmd.Flags().BoolVar(&debug, "debug", false, "Start in debug mode")

	var listing bool

	var buildCmd = &cobra.Command{
		Use:   "build FILE",
		Short: "Assemble to a byte-code image",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg, logger := setup()
			defer logger.Sync()

			emu := emulator.New(emulator.WithConfig(cfg), emulator.WithLogger(logger))
			_, prog, err := openSource(emu, cfg, args[0])
			if err != nil {
				log.Fatalf("%v", err)
			}
			if prog == nil {
				log.Fatalf("%v: already an image", args[0])
			}

			if listing {
				err = prog.Listing(os.Stderr)
				if err != nil {
					log.Fatalf("%v", err)
				}
			}

			img, err := image.FromProgram(prog)
			if err != nil {
				log.Fatalf("%v: %v", args[0], err)
			}

			data, err := image.Marshal(img)
			if err != nil {
				log.Fatalf("%v: %v", args[0], err)
			}

			if output == "-" {
				_, err = os.Stdout.Write(data)
			} else {
				err = os.WriteFile(output, data, 0o644)
			}
			if err != nil {
				log.Fatalf("%v: %v", output, err)
			}
		},
	}
	buildCmd.Flags().StringVarP(&output, "output", "o", "-", "Image output")
	buildCmd.Flags().BoolVarP(&listing, "listing", "l", false, "Write a listing to stderr")

	var from, to uint16

	var disasmCmd = &cobra.Command{
		Use:   "disasm FILE",
		Short: "Disassemble a byte-code image or assembly source",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg, logger := setup()
			defer logger.Sync()

			emu := emulator.New(emulator.WithConfig(cfg), emulator.WithLogger(logger))
			src, _, err := openSource(emu, cfg, args[0])
			if err != nil {
				log.Fatalf("%v", err)
			}

			err = emu.Load(src)
			if err != nil {
				log.Fatalf("%v: %v", args[0], err)
			}

			err = disassemble(os.Stdout, emu, src, from, to)
			if err != nil {
				log.Fatalf("%v", err)
			}
		},
	}
	disasmCmd.Flags().Uint16Var(&from, "from", 0, "First address")
	disasmCmd.Flags().Uint16Var(&to, "to", 0, "Last address (exclusive), 0 for the loaded segments")

	var configCmd = &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, _ := setup()
			err := cfg.Write(os.Stdout)
			if err != nil {
				log.Fatalf("%v", err)
			}
		},
	}

	rootCmd.AddCommand(runCmd, buildCmd, disasmCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		translate.Fprint(os.Stderr, "esovm: %v\n", err)
		os.Exit(1)
	}
}
