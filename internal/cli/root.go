package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/headline-goat/clip-goat/internal/config"
)

// app carries what every command shares: global flags, the loaded
// configuration and the process logger.
type app struct {
	dbPath  string
	verbose bool
	cfg     config.Config
	logger  *zap.Logger
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "cg",
		Short: "clip-goat - A/B testing for short-form video titles, thumbnails, hashtags and posting times",
		Long: `🐐 clip-goat runs A/B experiments on short-form video content.
Single Go binary, embedded SQLite.

Create an experiment, send impressions, views and engagement events to it,
and clip-goat declares a winner once every variant has enough views and one
of them clearly leads on engagement.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "database path (default $CG_DB_PATH or ./cg.db)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "V", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(a),
		newTokenCmd(a),
		newCreateCmd(a),
		newAutoCmd(a),
		newListCmd(a),
		newResultsCmd(a),
		newRecordCmd(a),
		newAssignCmd(a),
		newStopCmd(a),
		newDeleteCmd(a),
		newExportCmd(a),
		newContentCmd(a),
	)
	return root
}

func Execute() error {
	return NewRootCmd().Execute()
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	if a.dbPath == "" {
		a.dbPath = cfg.DBPath
	}

	logger, err := cfg.Log.Build(a.verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger.With(zap.String("command", cmd.Name()))
	return nil
}
