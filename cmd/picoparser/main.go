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

	"github.com/bft-labs/picoparser/internal/cliconfig"
	"github.com/bft-labs/picoparser/pkg/log"
	"github.com/bft-labs/picoparser/pkg/session"
)

const longHelp = `Inspect and decode CSI capture files.

A capture is a sequence of length-prefixed frames. picoparser maps the file
copy-on-write, indexes frame boundaries without copying, and decodes frames
on a bounded worker pool while keeping file order.

Configuration is read from $HOME/.picoparser/config.toml, then PICOPARSER_*
environment variables, then flags.`

var exampleUsage = strings.TrimSpace(`
  picoparser index capture.csi
  picoparser decode --workers 4 --interpolate capture.csi
  picoparser summary --csi=false --phase=false capture.csi
  picoparser synth --frames 1000 --corrupt 17 /tmp/capture.csi
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// app carries resolved configuration to the subcommands.
type app struct {
	cfg     cliconfig.Config
	cfgPath string
	zl      zerolog.Logger
	logger  log.Logger
}

func (a *app) load(cmd *cobra.Command) error {
	cfgFile := a.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&a.cfg, fc, changed); err != nil {
			return err
		}
	}
	if err := cliconfig.ApplyEnvConfig(&a.cfg, changed); err != nil {
		return err
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	a.zl = cliconfig.Logger(a.cfg.LogLevel)
	a.logger = log.NewZerologAdapterWithLogger(a.zl)
	a.zl.Debug().Interface("config", a.cfg).Msg("configuration")
	return nil
}

func (a *app) open(path string) (*session.Session, error) {
	return session.Open(path,
		session.WithWorkers(a.cfg.Workers),
		session.WithLogger(a.logger),
		session.WithWatch(a.cfg.Watch),
	)
}

func newApp() *app {
	return &app{cfg: cliconfig.DefaultConfig(), zl: cliconfig.Logger("info")}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "picoparser",
		Short:         "Inspect and decode CSI capture files",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "synth" {
				return nil
			}
			return a.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "path to config file (default: $HOME/.picoparser/config.toml)")
	pf.IntVar(&a.cfg.Workers, "workers", a.cfg.Workers, "concurrent decodes (capped at the number of CPUs)")
	pf.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "log level (debug, info, warn, error)")
	pf.BoolVar(&a.cfg.Watch, "watch", a.cfg.Watch, "warn if the capture file changes while it is open")
	pf.BoolVar(&a.cfg.Interpolate, "interpolate", a.cfg.Interpolate, "keep interpolated center subcarriers")
	pf.BoolVar(&a.cfg.Timestamp, "timestamp", a.cfg.Timestamp, "extract timestamps")
	pf.BoolVar(&a.cfg.CSI, "csi", a.cfg.CSI, "extract complex CSI")
	pf.BoolVar(&a.cfg.Magnitude, "magnitude", a.cfg.Magnitude, "extract magnitude")
	pf.BoolVar(&a.cfg.Phase, "phase", a.cfg.Phase, "extract phase")

	root.AddCommand(
		newIndexCmd(a),
		newDecodeCmd(a),
		newSummaryCmd(a),
		newSynthCmd(a),
	)
	return root
}

func main() {
	a := newApp()
	if err := newRootCmd(a).Execute(); err != nil {
		a.zl.Error().Err(err).Msg("picoparser")
		os.Exit(1)
	}
}
