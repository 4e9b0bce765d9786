package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/neoatlantis/na-gribtools/internal/config"
	"github.com/neoatlantis/na-gribtools/internal/watcher"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(entriesCmd)

	configCmd.AddCommand(configCheckCmd)
	rootCmd.AddCommand(configCmd)
}

// serveCmd runs the daemon: scheduled reconciles, periodic sweeps, and the
// control HTTP server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the cache daemon",
	RunE:  handleServe,
}

// checkCmd runs one read-only validity check and prints the decision.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check cache validity for the most recent available release",
	RunE:  handleCheck,
}

// buildCmd runs one reconcile pass, building the artifact if needed.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Reconcile the cache, building the current release if needed",
	RunE:  handleBuild,
}

// sweepCmd runs one eviction sweep.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Evict entries past their archive life and purge stale files",
	RunE:  handleSweep,
}

// entriesCmd lists the archive index.
var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "List all archive index entries",
	RunE:  handleEntries,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration utilities",
}

// configCheckCmd validates the configuration file without touching the
// workdir or the network.
var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration file",
	RunE:  handleConfigCheck,
}

func handleServe(cmd *cobra.Command, args []string) error {
	root, err := NewCompositionRoot(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = root.Cleanup() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if root.Config.HTTP.Enabled {
		go func() {
			if err := root.HTTPServer.Start(root.Config.HTTP.Listen); err != nil {
				root.Logger.Error("Control HTTP server stopped", zap.Error(err))
			}
		}()
	}

	if root.Config.WatchResource {
		if info, err := os.Stat(root.Config.Resource); err == nil && info.IsDir() {
			w := watcher.New(root.Config.Resource, root.Daemon.Trigger, root.Logger)
			go func() {
				if err := w.Run(ctx); err != nil && ctx.Err() == nil {
					root.Logger.Warn("Resource watcher stopped", zap.Error(err))
				}
			}()
		} else {
			root.Logger.Warn("watch-resource enabled but resource is not a local directory",
				zap.String("resource", root.Config.Resource))
		}
	}

	err = root.Daemon.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if stopErr := root.HTTPServer.Stop(shutdownCtx); stopErr != nil {
		root.Logger.Error("Control HTTP server forced to shutdown", zap.Error(stopErr))
	}

	if err != nil && ctx.Err() != nil {
		root.Logger.Info("Daemon exited")
		return nil
	}
	return err
}

func handleCheck(cmd *cobra.Command, args []string) error {
	root, err := NewCompositionRoot(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = root.Cleanup() }()

	res, err := root.Resolver.Check(cmd.Context(), time.Now())
	if err != nil {
		return err
	}
	return printJSON(res)
}

func handleBuild(cmd *cobra.Command, args []string) error {
	root, err := NewCompositionRoot(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = root.Cleanup() }()

	res, err := root.Resolver.Reconcile(cmd.Context(), time.Now())
	if err != nil {
		return err
	}
	if err := printJSON(res); err != nil {
		return err
	}
	// One-shot invocation: a failed build is this command's failure.
	return res.BuildErr
}

func handleSweep(cmd *cobra.Command, args []string) error {
	root, err := NewCompositionRoot(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = root.Cleanup() }()

	res, err := root.Resolver.Sweep(cmd.Context(), time.Now())
	if err != nil {
		return err
	}
	return printJSON(res)
}

func handleEntries(cmd *cobra.Command, args []string) error {
	root, err := NewCompositionRoot(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = root.Cleanup() }()

	entries, err := root.Index.ListEntries(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(entries)
}

func handleConfigCheck(cmd *cobra.Command, args []string) error {
	if _, err := config.Load(configPath, zap.NewNop()); err != nil {
		return err
	}
	fmt.Printf("%s: configuration OK\n", configPath)
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
