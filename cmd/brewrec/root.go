package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/rushteam/brewrec/config"
	"github.com/rushteam/brewrec/pkg/logging"
	"github.com/rushteam/brewrec/service"
)

type rootFlags struct {
	config   string
	seed     string
	logLevel string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "brewrec",
		Short:         "Hybrid recommendation engine for a beverage community",
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&flags.config, "config", "", "path to config file (default $BREWREC_CONFIG or ./brewrec.yaml)")
	root.PersistentFlags().StringVar(&flags.seed, "seed", "", "YAML seed data loaded into the store at startup")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override log level")

	root.AddCommand(
		newFeedCmd(flags),
		newTrendingCmd(flags),
		newSimilarCmd(flags),
		newBarsCmd(flags),
		newRecordCmd(flags),
		newPublishTrendingCmd(flags),
		newPreferenceCmd(flags),
		newPopularityCmd(flags),
		newIngestCmd(flags),
	)
	return root
}

// openApp 加载配置并装配服务，命令行参数优先于配置文件。
func openApp(cmd *cobra.Command, flags *rootFlags) (*service.App, error) {
	cfg, err := config.Load(flags.config)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if flags.seed != "" {
		cfg.Store.SeedFile = flags.seed
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	cfg.Log.Output = cmd.ErrOrStderr()
	logging.Init(cfg.Log)

	app, err := service.NewApp(cmd.Context(), cfg)
	if err != nil {
		return nil, fmt.Errorf("starting: %w", err)
	}
	return app, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
