// Command investcalc runs Monte Carlo investment simulations from the
// command line or serves them over HTTP.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mcgo/investment-calculator/internal/config"
	"github.com/mcgo/investment-calculator/internal/domain"
	"github.com/mcgo/investment-calculator/internal/output"
	"github.com/mcgo/investment-calculator/internal/server"
	"github.com/mcgo/investment-calculator/internal/simulation"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "investcalc",
		Short:         "Monte Carlo investment and retirement calculator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newRunCmd(&verbose))
	root.AddCommand(newServeCmd(&verbose))
	root.AddCommand(newExampleConfigCmd())

	return root
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}

func newRunCmd(verbose *bool) *cobra.Command {
	var (
		configFile string
		preset     string
		format     string
		outFile    bool
		seed       int64
		iterations int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation from a config file or preset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := newLogger(*verbose)

			var params *domain.SimulationParameters
			switch {
			case configFile != "":
				p, err := config.NewInputParser().LoadFromFile(configFile)
				if err != nil {
					return err
				}
				params = p
			case preset != "":
				p, err := config.GetPreset(preset)
				if err != nil {
					return fmt.Errorf("%w (available: %v)", err, config.PresetKeys())
				}
				params = &p.Parameters
			default:
				return fmt.Errorf("either --config or --preset is required")
			}

			if seed != 0 {
				params.Seed = seed
			}
			if iterations != 0 {
				params.Iterations = iterations
			}

			formatter := output.GetFormatterByName(format)
			if formatter == nil {
				return fmt.Errorf("unknown format %q (available: %v)", format, output.FormatterNames())
			}

			results, err := simulation.NewCoordinator(*params, log).Execute(cmd.Context())
			if err != nil {
				return err
			}

			if outFile {
				filename, err := output.WriteFormatted(formatter, results, formatter.Name())
				if err != nil {
					return err
				}
				log.Info().Str("file", filename).Msg("report written")
				return nil
			}

			data, err := formatter.Format(results)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "parameter YAML file")
	cmd.Flags().StringVarP(&preset, "preset", "p", "", "built-in parameter preset")
	cmd.Flags().StringVarP(&format, "format", "f", "console", "output format (console, json, csv, html)")
	cmd.Flags().BoolVar(&outFile, "write-file", false, "write a timestamped report file instead of stdout")
	cmd.Flags().Int64Var(&seed, "seed", 0, "override the random seed for reproducible runs")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "override the iteration count")

	return cmd
}

func newServeCmd(verbose *bool) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the simulation engine over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// .env is optional; environment beats flags only for the port.
			_ = godotenv.Load()

			log := newLogger(*verbose)
			if env := os.Getenv("INVESTCALC_PORT"); env != "" {
				p, err := strconv.Atoi(env)
				if err != nil {
					return fmt.Errorf("invalid INVESTCALC_PORT %q: %w", env, err)
				}
				port = p
			}

			srv := server.New(server.Config{Log: log, Port: port})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "listen port")
	return cmd
}

func newExampleConfigCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "example-config",
		Short: "Write an example parameter file",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := config.NewInputParser().WriteExampleFile(out); err != nil {
				return err
			}
			fmt.Println("wrote", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "investcalc.yaml", "output filename")
	return cmd
}
