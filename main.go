// Command floorkit evaluates a floor plan and prints its merged walls,
// faces and fitted beams as JSON.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/floorkit/internal/logging"
	"github.com/chazu/floorkit/pkg/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath string
		verbose bool
	)
	cmd := &cobra.Command{
		Use:          "floorkit [flags] plan.lisp",
		Short:        "Merge walls, extract rooms and fit beams for a floor plan",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logging.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			defer logging.SetLogger(nil)

			cfg := config.Default()
			if cfgPath != "" {
				var err error
				if cfg, err = config.Load(cfgPath); err != nil {
					return err
				}
			}
			source, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			res := NewApp(cfg).Evaluate(string(source))
			logging.Logger().Info("plan processed", "file", args[0],
				"walls", len(res.Walls), "faces", len(res.Faces), "beams", len(res.Beams),
				"errors", len(res.Errors), "warnings", len(res.Warnings))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return err
			}
			if len(res.Errors) > 0 {
				return fmt.Errorf("%s: %d errors", args[0], len(res.Errors))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "TOML file overriding the default tolerances")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log filtered geometry at debug level")
	return cmd
}
