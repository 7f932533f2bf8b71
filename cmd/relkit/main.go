// Copyright (c) 2026 Deepsel Systems. All rights reserved.

package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/DeepselSystems/relkit"
	"github.com/DeepselSystems/relkit/config"
	"github.com/DeepselSystems/relkit/model"
	"github.com/DeepselSystems/relkit/pipelines/steps"
	"github.com/DeepselSystems/relkit/records"
	store "github.com/DeepselSystems/relkit/stores/sqlite"
	"github.com/DeepselSystems/relkit/version"
)

func main() {
	cfg, err := config.New(".")
	if err != nil {
		log.Fatal(err)
	}

	addFlags := func(cmd *cobra.Command) error {
		cmd.PersistentFlags().Bool("debug", false, "log debugging information")
		cmd.PersistentFlags().Bool("log-with-default-flags", false, "log with default flags")
		cmd.PersistentFlags().Bool("log-with-shortfile", true, "log with short file name")
		cmd.PersistentFlags().Bool("log-with-timestamp", false, "log with timestamp")
		cmd.PersistentFlags().Bool("quiet", false, "log less information")
		cmd.PersistentFlags().Bool("show-version", false, "show version")
		cmd.PersistentFlags().Bool("verbose", false, "log more information")
		return cfg.BindFlags(cmd.PersistentFlags(), config.Options)
	}
	var cmdRoot = &cobra.Command{
		Use:   "relkit",
		Short: "deepsel release tooling",
		Long:  `Manage the deepsel package version and run the release pipeline`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logWithDefaultFlags, _ := cmd.Flags().GetBool("log-with-default-flags")
			logWithShortFileName, _ := cmd.Flags().GetBool("log-with-shortfile")
			logWithTimestamp, _ := cmd.Flags().GetBool("log-with-timestamp")
			logFlags := 0
			if logWithShortFileName {
				logFlags |= log.Lshortfile
			}
			if logWithTimestamp {
				logFlags |= log.Ltime
			}
			if logWithDefaultFlags || logFlags == 0 {
				logFlags = log.LstdFlags
			}
			log.SetFlags(logFlags)

			if showVersion, _ := cmd.Flags().GetBool("show-version"); showVersion {
				fmt.Printf("relkit: version %q\n", relkit.Version().Core())
			}

			return nil
		},
	}
	cmdRoot.AddCommand(cmdVersion(cfg))
	cmdRoot.AddCommand(cmdBump(cfg, version.AxisMajor))
	cmdRoot.AddCommand(cmdBump(cfg, version.AxisMinor))
	cmdRoot.AddCommand(cmdBump(cfg, version.AxisPatch))
	cmdRoot.AddCommand(cmdRelease(cfg))
	cmdRoot.AddCommand(cmdRun(cfg))
	cmdRoot.AddCommand(cmdPublish(cfg))
	cmdRoot.AddCommand(cmdHistory(cfg))
	cmdRoot.AddCommand(cmdInitDB(cfg))
	if err := addFlags(cmdRoot); err != nil {
		log.Fatal(err)
	}

	if err := cmdRoot.Execute(); err != nil {
		os.Exit(1)
	}
}

func newSynchronizer(cfg *config.Config) (*records.Synchronizer, error) {
	mirrors, err := cfg.Mirrors()
	if err != nil {
		return nil, err
	}
	return records.NewSynchronizer(cfg.Canonical(), mirrors), nil
}

// openHistory opens the release history database. It returns nil when
// history is disabled or the database has not been initialized yet.
func openHistory(cfg *config.Config) (*store.SQLiteStore, error) {
	path := cfg.HistoryPath()
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return store.NewSQLiteStoreWithConfig(store.StoreConfig{Path: path})
}

func newRunner(cfg *config.Config) (*steps.Runner, func(), error) {
	runner := steps.NewRunner(cfg.StepCommands(), "")
	db, err := openHistory(cfg)
	if err != nil {
		return nil, nil, err
	}
	closer := func() {}
	if db != nil {
		runner.SetStore(db)
		closer = func() { _ = db.Close() }
	}
	return runner, closer, nil
}

func cmdVersion(cfg *config.Config) *cobra.Command {
	showSelf := false
	showBuildInfo := false
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().BoolVar(&showSelf, "self", showSelf, "show relkit's own version")
		cmd.Flags().BoolVar(&showBuildInfo, "build-info", showBuildInfo, "show build information")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "version",
		Short:        "display the package's current version",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showSelf {
				if showBuildInfo {
					fmt.Println(relkit.Version().String())
					return nil
				}
				fmt.Println(relkit.Version().Core())
				return nil
			}
			syncer, err := newSynchronizer(cfg)
			if err != nil {
				return err
			}
			v, err := syncer.Current()
			if err != nil {
				return err
			}
			fmt.Println(v)
			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

func cmdBump(cfg *config.Config, axis version.Axis) *cobra.Command {
	var cmd = &cobra.Command{
		Use:          "bump-" + string(axis),
		Short:        fmt.Sprintf("increment the %s version and sync all records", axis),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			syncer, err := newSynchronizer(cfg)
			if err != nil {
				return err
			}
			old, next, err := syncer.Bump(axis)
			if err != nil {
				return err
			}
			fmt.Printf("%s -> %s\n", old, next)

			// history is advisory; the files are already updated
			db, err := openHistory(cfg)
			if err != nil {
				log.Printf("history: %v\n", err)
				return nil
			}
			if db == nil {
				return nil
			}
			defer db.Close()
			_, err = db.RecordBump(cmd.Context(), &model.BumpRecord{
				RunID:      uuid.NewString(),
				Axis:       string(axis),
				OldVersion: old.String(),
				NewVersion: next.String(),
				CreatedAt:  time.Now().UTC(),
			})
			if err != nil {
				log.Printf("history: record bump: %v\n", err)
			}
			return nil
		},
	}
	return cmd
}

func cmdRelease(cfg *config.Config) *cobra.Command {
	var cmd = &cobra.Command{
		Use:          "release",
		Short:        "run the release checks (fmt, lint, audit, test, build)",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, closer, err := newRunner(cfg)
			if err != nil {
				return err
			}
			defer closer()

			for _, name := range steps.ReleaseSequence {
				log.Printf("relkit: step %s\n", name)
				if err := runner.Run(cmd.Context(), name); err != nil {
					return err
				}
			}
			log.Printf("relkit: release checks passed\n")
			return nil
		},
	}
	return cmd
}

func cmdRun(cfg *config.Config) *cobra.Command {
	var cmd = &cobra.Command{
		Use:          "run <step>",
		Short:        "run a single pipeline step (deps, fmt, lint, audit, test, build)",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, closer, err := newRunner(cfg)
			if err != nil {
				return err
			}
			defer closer()
			return runner.Run(cmd.Context(), args[0])
		},
	}
	return cmd
}

func cmdPublish(cfg *config.Config) *cobra.Command {
	assumeYes := false
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().BoolVarP(&assumeYes, "yes", "y", assumeYes, "skip the confirmation prompt")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "publish",
		Short:        "build the distribution and upload it to the package index",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			syncer, err := newSynchronizer(cfg)
			if err != nil {
				return err
			}
			// refuse to publish a version we cannot read back
			v, err := syncer.Current()
			if err != nil {
				return err
			}

			if !assumeYes {
				ok, err := steps.Confirm(os.Stdin, os.Stdout, fmt.Sprintf("publish deepsel %s to the package index?", v))
				if err != nil {
					return err
				}
				if !ok {
					log.Printf("relkit: publish aborted\n")
					return nil
				}
			}

			runner, closer, err := newRunner(cfg)
			if err != nil {
				return err
			}
			defer closer()
			return runner.RunSequence(cmd.Context(), []string{steps.StepBuild, steps.StepPublish})
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

func cmdHistory(cfg *config.Config) *cobra.Command {
	limit := 20
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().IntVarP(&limit, "limit", "n", limit, "number of records to show")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "history",
		Short:        "show recent version bumps and pipeline runs",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openHistory(cfg)
			if err != nil {
				return err
			}
			if db == nil {
				return fmt.Errorf("history is not available (run init-db to create %s)", cfg.HistoryPath())
			}
			defer db.Close()

			bumps, err := db.ListBumps(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Printf("bumps:\n")
			for _, b := range bumps {
				fmt.Printf("  %s  %-5s  %s -> %s\n", b.CreatedAt.Format(time.RFC3339), b.Axis, b.OldVersion, b.NewVersion)
			}

			stepRuns, err := db.ListSteps(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Printf("steps:\n")
			for _, st := range stepRuns {
				line := fmt.Sprintf("  %s  %-7s  %-6s  %v", st.CreatedAt.Format(time.RFC3339), st.Name, st.Status, st.Duration)
				if st.Status == model.StepStatusFailed {
					line += "  " + st.ErrorMessage
				}
				fmt.Println(line)
			}
			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

func cmdInitDB(cfg *config.Config) *cobra.Command {
	var cmd = &cobra.Command{
		Use:          "init-db",
		Short:        "create the release history database",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfg.HistoryPath()
			if path == "" {
				return fmt.Errorf("history is disabled (set %s)", config.KeyHistoryPath)
			}
			if err := store.InitDatabase(path); err != nil {
				return err
			}
			log.Printf("relkit: created history database %s\n", path)
			return nil
		},
	}
	return cmd
}
