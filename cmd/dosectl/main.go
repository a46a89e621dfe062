package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/insulinmanager/dosectl/internal/cliconfig"
)

const helpDescription = `
Drive an insulin pump's piezo stepper motor over a serial link.

Highlights:
  - Converts doses in units to absolute step positions (116 steps per unit by default).
  - Homes the motor with the driver's index-search sequence.
  - Serves "reset" and dose requests line by line from stdin or a device.
  - Configure via file, env (DOSECTL_*), or flags; --dry-run prints commands instead.
`

var longHelp = "dosectl\n\n" + strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  dosectl ports
  dosectl --port /dev/ttyUSB0 home
  dosectl --port /dev/ttyUSB0 dose 5
  dosectl --dry-run serve < requests.txt
  dosectl --config $HOME/.dosectl/config.toml serve --requests /dev/rfcomm0
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// cli carries the resolved configuration into subcommands.
type cli struct {
	cfg     cliconfig.Config
	cfgPath string

	// Resolved by loadConfig.
	cfgFile string
	changed map[string]bool
	log     zerolog.Logger
}

func main() {
	c := &cli{
		cfg: cliconfig.DefaultConfig(),
		log: cliconfig.Logger(zerolog.InfoLevel),
	}

	root := &cobra.Command{
		Use:     "dosectl",
		Short:   "Drive an insulin pump's stepper motor over a serial link",
		Long:    longHelp,
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig(cmd)
		},
		SilenceUsage: true,
	}

	// Flags
	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgPath, "config", "", "path to config file (default: $HOME/.dosectl/config.toml)")
	flags.StringVar(&c.cfg.Port, "port", c.cfg.Port, `serial port of the motor driver ("-" prints commands to stdout)`)
	flags.IntVar(&c.cfg.BaudRate, "baud", c.cfg.BaudRate, "serial baud rate")
	flags.Int64Var(&c.cfg.StepsPerUnit, "steps-per-unit", c.cfg.StepsPerUnit, "motor steps per insulin unit")
	flags.DurationVar(&c.cfg.PaceDelay, "pace", c.cfg.PaceDelay, "delay between homing commands")
	flags.StringVar(&c.cfg.StatusFile, "status-file", c.cfg.StatusFile, "publish a JSON status snapshot to this file after every operation")
	flags.BoolVar(&c.cfg.DryRun, "dry-run", c.cfg.DryRun, "print commands to stdout instead of opening the serial port")
	flags.StringVar(&c.cfg.LogLevel, "log-level", c.cfg.LogLevel, "log level (debug, info, warn, error)")

	root.AddCommand(
		newDoseCommand(c),
		newHomeCommand(c),
		newServeCommand(c),
		newStatusCommand(c),
		newPortsCommand(c),
	)

	if err := root.Execute(); err != nil {
		c.log.Error().Err(err).Msg("dosectl")
		os.Exit(1)
	}
}

// loadConfig resolves defaults < config file < env < changed flags.
// Validation is left to the commands that open the channel.
func (c *cli) loadConfig(cmd *cobra.Command) error {
	c.cfgFile = c.cfgPath
	if c.cfgFile == "" {
		c.cfgFile = cliconfig.DefaultConfigPath()
	}

	// Build set of changed flags
	c.changed = map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { c.changed[f.Name] = true })

	if c.cfgFile != "" && cliconfig.FileExists(c.cfgFile) {
		fc, err := cliconfig.LoadFileConfig(c.cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&c.cfg, fc, c.changed); err != nil {
			return err
		}
	} else if c.cfgPath != "" {
		return fmt.Errorf("load config: %s does not exist", c.cfgPath)
	} else {
		c.cfgFile = ""
	}

	// Apply environment variables (DOSECTL_*)
	// These override file config but are overridden by flags (checked via changed map)
	if err := cliconfig.ApplyEnvConfig(&c.cfg, c.changed); err != nil {
		return fmt.Errorf("load env config: %w", err)
	}

	c.log = cliconfig.Logger(c.cfg.Level())
	return nil
}

// validate checks the configuration needed to drive the motor.
func (c *cli) validate() error {
	if err := c.cfg.Validate(); err != nil {
		return err
	}
	c.log = cliconfig.Logger(c.cfg.Level())
	c.log.Debug().Interface("config", c.cfg).Str("config_file", c.cfgFile).Msg("configuration")
	return nil
}
