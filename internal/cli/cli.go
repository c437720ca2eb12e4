// Package cli implements the journal command-line tool. Commands run the
// same services as the API server against the configured store.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkordes/trip-journal/internal/app"
	"github.com/pkordes/trip-journal/internal/backup"
	"github.com/pkordes/trip-journal/internal/domain"
	"github.com/pkordes/trip-journal/internal/export"
)

// Opener opens the journal for one command invocation.
type Opener func(ctx context.Context) (*app.App, error)

// RootCommand creates and returns the root command.
func RootCommand(open Opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "journal",
		Short:         "Travel journal maintenance tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		migrateCommand(open),
		backupCommand(open),
		searchCommand(open),
		statsCommand(open),
		exportCommand(open),
	)
	return root
}

// withApp opens the journal, runs fn, and closes it again.
func withApp(cmd *cobra.Command, open Opener, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	a, err := open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func migrateCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Opening the journal migrates it.
			return withApp(cmd, open, func(context.Context, *app.App) error {
				fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date")
				return nil
			})
		},
	}
}

func backupCommand(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Save, restore, export, and import journal snapshots",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "save",
			Short: "Write a snapshot to the configured backup target",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
					n, err := a.Backup.SaveTo(ctx, a.Target)
					if err != nil {
						return fmt.Errorf("backup failed: %w", err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Saved %d bytes to %s\n", n, a.Target.Name())
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "restore",
			Short: "Import the snapshot held by the configured backup target",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
					res, err := a.Backup.RestoreFrom(ctx, a.Target)
					if err != nil {
						return fmt.Errorf("restore failed: %w", err)
					}
					printImport(cmd.OutOrStdout(), res)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "export FILE",
			Short: "Write an unencrypted snapshot to FILE",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
					b, err := a.Backup.Export(ctx)
					if err != nil {
						return fmt.Errorf("export failed: %w", err)
					}
					if err := os.WriteFile(args[0], b, 0o600); err != nil {
						return fmt.Errorf("export failed: %w", err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d bytes to %s\n", len(b), args[0])
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "import FILE",
			Short: "Import an unencrypted snapshot from FILE",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				b, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("import failed: %w", err)
				}
				return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
					res, err := a.Backup.Import(ctx, b)
					if err != nil {
						return fmt.Errorf("import failed: %w", err)
					}
					printImport(cmd.OutOrStdout(), res)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "keygen",
			Short: "Print a new random BACKUP_KEY",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				key, err := backup.GenerateKey()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), key)
				return nil
			},
		},
	)
	return cmd
}

func printImport(w io.Writer, r domain.ImportResult) {
	fmt.Fprintf(w, "Trips: %d inserted, %d replaced\n", r.TripsInserted, r.TripsReplaced)
	fmt.Fprintf(w, "Entries: %d inserted, %d replaced\n", r.EntriesInserted, r.EntriesReplaced)
}

func searchCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "search QUERY",
		Short: "Search trip and entry text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
				hits, err := a.Search.Search(ctx, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, h := range hits {
					if h.Kind == domain.SearchKindEntry {
						fmt.Fprintf(out, "entry %d (trip %d)\t%s\n", h.EntryID, h.TripID, h.Title)
						continue
					}
					fmt.Fprintf(out, "trip %d\t%s\n", h.TripID, h.Title)
				}
				if len(hits) == 0 {
					fmt.Fprintln(out, "No matches")
				}
				return nil
			})
		},
	}
}

func statsCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [TRIP_ID]",
		Short: "Show trip statistics; all trips when no id is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
				var stats []domain.TripStats
				if len(args) == 1 {
					id, err := parseID(args[0])
					if err != nil {
						return err
					}
					st, err := a.Stats.ForTrip(ctx, id)
					if err != nil {
						return err
					}
					stats = append(stats, st)
				} else {
					var err error
					if stats, err = a.Stats.ForAllTrips(ctx); err != nil {
						return err
					}
				}
				out := cmd.OutOrStdout()
				for _, st := range stats {
					fmt.Fprintf(out, "trip %d: %d days, %.0f%% done, %d photos, %d notes, %d places, route=%t\n",
						st.TripID, st.DurationDays, st.Progress*100, st.PhotoCount, st.NoteCount, st.PlaceCount, st.HasRoute)
				}
				return nil
			})
		},
	}
}

func exportCommand(open Opener) *cobra.Command {
	var (
		format string
		day    string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export TRIP_ID",
		Short: "Render a trip, or one day of it, as text or CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			renderer, err := export.ForFormat(format)
			if err != nil {
				return err
			}
			var on *time.Time
			if day != "" {
				d, err := time.Parse(time.DateOnly, day)
				if err != nil {
					return fmt.Errorf("--day: %w", err)
				}
				on = &d
			}

			return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
				var doc export.Document
				if on != nil {
					doc, err = a.Export.ExportDay(ctx, id, *on, renderer)
				} else {
					doc, err = a.Export.ExportTrip(ctx, id, renderer)
				}
				if err != nil {
					return err
				}
				if output == "" {
					_, err = cmd.OutOrStdout().Write(doc.Body)
					return err
				}
				if output == "." {
					output = doc.Name
				}
				if err := os.WriteFile(output, doc.Body, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text or csv")
	cmd.Flags().StringVar(&day, "day", "", "export only this day (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&output, "output", "o", "", `write to a file instead of stdout; "." uses the suggested name`)
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid trip id %q", s)
	}
	return id, nil
}
