package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/insulinmanager/dosectl/internal/adapters/echo"
	"github.com/insulinmanager/dosectl/internal/adapters/fs"
	logAdapter "github.com/insulinmanager/dosectl/internal/adapters/log"
	"github.com/insulinmanager/dosectl/internal/adapters/serialport"
	"github.com/insulinmanager/dosectl/internal/app"
	"github.com/insulinmanager/dosectl/internal/domain"
	"github.com/insulinmanager/dosectl/internal/ports"
	"github.com/insulinmanager/dosectl/plugins/configwatcher"
)

// channel is the opened output to the driver.
type channel interface {
	ports.ByteSink
	io.Closer
}

func (c *cli) openChannel(out io.Writer) (channel, error) {
	if c.cfg.DryRun {
		return echo.NewSink(out), nil
	}
	port, err := serialport.Open(serialport.Config{Name: c.cfg.Port, BaudRate: c.cfg.BaudRate})
	if err != nil {
		return nil, err
	}
	c.log.Info().Str("port", c.cfg.Port).Int("baud", c.cfg.BaudRate).Msg("serial port opened")
	return port, nil
}

// newController validates the configuration, opens the channel and builds
// the controller driving it. The caller closes the returned channel.
func (c *cli) newController(cmd *cobra.Command) (*app.Controller, channel, error) {
	if err := c.validate(); err != nil {
		return nil, nil, err
	}

	ch, err := c.openChannel(cmd.OutOrStdout())
	if err != nil {
		return nil, nil, err
	}

	opts := []app.Option{
		app.WithStepsPerUnit(c.cfg.StepsPerUnit),
		app.WithPacer(app.NewFixedDelayPacer(c.cfg.PaceDelay)),
		app.WithLogger(c.logger()),
	}
	if c.cfg.StatusFile != "" {
		opts = append(opts, app.WithStatusRepository(fs.NewStatusFileRepository(c.cfg.StatusFile)))
	}

	return app.NewController(ch, opts...), ch, nil
}

func (c *cli) logger() ports.Logger {
	return logAdapter.NewZerologAdapterWithLogger(c.log)
}

func newDoseCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "dose <units>",
		Short: "Move the motor by a dose in insulin units",
		Long: "Move the motor by a dose in insulin units.\n\n" +
			"The driver is sent an absolute position, not relative. The step count starts\n" +
			"at zero in every process, so each run moves to units*steps-per-unit: running\n" +
			"\"dose 5\" and then \"dose 3\" moves the motor back from 580 to 348 steps.\n" +
			"Use serve to accumulate doses between resets.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dose, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: %q", domain.ErrInvalidDose, args[0])
			}

			ctrl, ch, err := c.newController(cmd)
			if err != nil {
				return err
			}
			defer ch.Close()

			return ctrl.IssueDose(cmd.Context(), dose)
		},
	}
}

func newHomeCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Return the motor to its index position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, ch, err := c.newController(cmd)
			if err != nil {
				return err
			}
			defer ch.Close()

			return ctrl.ResetToHome(cmd.Context())
		},
	}
}

func newServeCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: `Handle "reset" and dose requests, one per line`,
		Long: "Handle requests read line by line from stdin or --requests.\n\n" +
			`"reset" homes the motor, a whole number issues that many units, blank lines are` + "\n" +
			"ignored. The config file is watched and steps_per_unit and pace_delay are\n" +
			"reloaded on change. Stops on EOF, SIGINT or SIGTERM.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, ch, err := c.newController(cmd)
			if err != nil {
				return err
			}
			defer ch.Close()

			// Setup signal handling for graceful shutdown
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var in io.Reader = cmd.InOrStdin()
			if c.cfg.RequestsPath != "" {
				f, err := os.Open(c.cfg.RequestsPath)
				if err != nil {
					return fmt.Errorf("open requests: %w", err)
				}
				defer f.Close()
				in = f
			}

			logger := c.logger()

			var reloads <-chan app.Calibration
			if c.cfgFile != "" {
				w, err := configwatcher.Watch(ctx, configwatcher.DefaultConfig(), configwatcher.Settings{
					Path:    c.cfgFile,
					Base:    c.cfg,
					Changed: c.changed,
					Logger:  logger,
				})
				if err != nil {
					logger.Warn("config reload disabled", ports.Err(err))
				} else {
					defer w.Shutdown(context.Background())
					reloads = w.Updates()
				}
			}

			d := app.NewDispatcher(ctrl, logger)
			d.SkipRedundantHome = c.cfg.SkipRedundantHome

			c.log.Info().Msg("serving requests")
			err = d.Run(ctx, in, reloads)
			if errors.Is(err, context.Canceled) {
				c.log.Info().Msg("received signal, stopping...")
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&c.cfg.RequestsPath, "requests", c.cfg.RequestsPath, "read requests from this file or device instead of stdin")
	cmd.Flags().BoolVar(&c.cfg.SkipRedundantHome, "skip-redundant-home", c.cfg.SkipRedundantHome, "ignore reset while the motor is already homed at step 0")
	return cmd
}

func newStatusCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the last status snapshot published to --status-file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.StatusFile == "" {
				return fmt.Errorf("%w: status file is not configured", domain.ErrInvalidConfig)
			}

			status, err := fs.NewStatusFileRepository(c.cfg.StatusFile).Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load status: %w", err)
			}
			if status.UpdatedAt.IsZero() {
				fmt.Fprintln(cmd.OutOrStdout(), "no status published yet")
				return nil
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(status)
		},
	}
}

func newPortsCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List serial ports on this host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := serialport.ListPorts()
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no serial ports found")
				return nil
			}
			for _, p := range list {
				fmt.Fprintln(cmd.OutOrStdout(), p.String())
			}
			return nil
		},
	}
}
