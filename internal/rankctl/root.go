// Package rankctl implements the operator CLI for the poller.
package rankctl

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/okian/rankwatch/internal/config"
	"github.com/okian/rankwatch/pkg/logger"
)

type options struct {
	configPath string
	logLevel   string
}

// NewRootCommand builds the rankctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "rankctl",
		Short:         "rankctl inspects and drives the ranked stats poller.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file (default: $"+config.EnvConfigFile+")")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log_level for this run")

	root.AddCommand(
		newShowCommand(opts),
		newFetchCommand(opts),
		newOnceCommand(opts),
	)
	return root
}

// ExecuteContext runs the CLI and exits non-zero on error.
func ExecuteContext(ctx context.Context) {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (o *options) load(ctx context.Context) (*config.Config, error) {
	path := o.configPath
	if path == "" {
		path = os.Getenv(config.EnvConfigFile)
	}
	cfg, err := config.LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if o.logLevel != "" {
		level = o.logLevel
	}
	if err := logger.SetLevelString(level); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}
