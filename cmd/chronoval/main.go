// Command chronoval inspects and mutates versioned values in a SQLite store.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/chronoval-db/chronoval"
)

var (
	flagDB      string
	flagConfig  string
	flagVerbose bool
)

func main() {
	root := &cobra.Command{
		Use:           "chronoval",
		Short:         "Append-only versioned integer store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
	}
	root.PersistentFlags().StringVar(&flagDB, "db", "chronoval.db", "SQLite database file")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML configuration file")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(appendCmd(), currentCmd(), atCmd(), historyCmd(), keysCmd(), deleteCmd(), retainCmd())

	if err := root.Execute(); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func setupLogging() {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	w := os.Stderr
	slog.SetDefault(slog.New(tint.NewHandler(w, &tint.Options{
		Level:   level,
		NoColor: !isatty.IsTerminal(w.Fd()),
	})))
}

func openStore() (*chronoval.SQLiteStore, error) {
	cfg := chronoval.DefaultConfig()
	if flagConfig != "" {
		var err error
		if cfg, err = chronoval.LoadConfig(flagConfig); err != nil {
			return nil, err
		}
	}
	if flagDB != "" {
		cfg.Store.Path = flagDB
	}
	slog.Debug("opening store", "path", cfg.Store.Path)
	return chronoval.OpenSQLiteStore(cfg, nil)
}

func appendCmd() *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "append <key> <value>",
		Short: "Append a value to a key's history",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("value must be an integer: %w", err)
			}
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := context.Background()
			var v *chronoval.VersionedInt
			if at != "" {
				ts, err := parseTime(at)
				if err != nil {
					return err
				}
				v, err = store.AppendAt(ctx, args[0], value, ts)
				if err != nil {
					return err
				}
			} else {
				v, err = store.Append(ctx, args[0], value)
				if err != nil {
					return err
				}
			}
			slog.Info("appended", "key", args[0], "value", value, "entries", v.History().Len())
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "explicit timestamp (RFC3339 or Unix nanoseconds) for backfill")
	return cmd
}

func currentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current <key>",
		Short: "Print a key's current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			v, err := store.Get(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(v.String())
			return nil
		},
	}
}

func atCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "at <key> <time>",
		Short: "Print the value a key held at a point in time",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := parseTime(args[1])
			if err != nil {
				return err
			}
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			v, err := store.Get(context.Background(), args[0])
			if err != nil {
				return err
			}
			value, ok := v.History().ValueAt(ts)
			if !ok {
				fmt.Println("(none)")
				return nil
			}
			fmt.Println(value)
			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <key>",
		Short: "Print a key's full recorded history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			v, err := store.Get(context.Background(), args[0])
			if err != nil {
				return err
			}
			it := v.History().Iterator()
			for e, ok := it.Next(); ok; e, ok = it.Next() {
				fmt.Printf("%s\t%d\n", time.Unix(0, e.Timestamp).UTC().Format(time.RFC3339Nano), e.Value)
			}
			return nil
		},
	}
}

func keysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List all stored keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			keys, err := store.Keys(context.Background())
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Println(k)
			}
			return nil
		},
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete a stored value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			return store.Delete(context.Background(), args[0])
		},
	}
}

func retainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retain",
		Short: "Re-apply the configured retention policy to every stored value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := context.Background()
			keys, err := store.Keys(ctx)
			if err != nil {
				return err
			}
			for _, k := range keys {
				v, err := store.Get(ctx, k)
				if err != nil {
					return err
				}
				before := v.History().Len()
				if err := store.Put(ctx, k, v); err != nil {
					return err
				}
				slog.Debug("retention applied", "key", k, "entries_before", before)
			}
			slog.Info("retention pass complete", "keys", len(keys))
			return nil
		},
	}
}

// parseTime accepts RFC3339 or raw Unix nanoseconds.
func parseTime(s string) (int64, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UnixNano(), nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	return 0, fmt.Errorf("invalid time %q: want RFC3339 or Unix nanoseconds", s)
}
