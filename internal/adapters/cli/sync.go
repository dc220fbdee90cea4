package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-manager/internal/bootstrap"
	"github.com/jsamuelsen/quote-manager/internal/domain"
	"github.com/jsamuelsen/quote-manager/internal/ports"
)

// ErrSyncFailed is returned by the sync command when the run failed.
var ErrSyncFailed = errors.New("sync failed")

// ErrUnhealthy is returned by the doctor command when any check fails.
var ErrUnhealthy = errors.New("one or more checks failed")

const doctorTimeout = 10 * time.Second

func newSyncCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reconcile with the remote source once",
		Long:  "Fetches remote quotes, merges them with remote winning on ID conflicts, saves, and pushes the merged collection back.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withContainer(cmd, func(c *bootstrap.Container) error {
				summary := c.Sync.SyncOnce(cmd.Context())

				var err error
				if opts.json() {
					err = printJSON(cmd.OutOrStdout(), summary)
				} else {
					err = printSummary(cmd.OutOrStdout(), summary)
				}

				if err != nil {
					return err
				}

				if summary.Status == domain.SyncStatusFailed {
					return fmt.Errorf("%w at %s: %s", ErrSyncFailed, summary.Step, summary.Error)
				}

				return nil
			})
		},
	}
}

func printSummary(w io.Writer, s domain.SyncSummary) error {
	_, err := fmt.Fprintf(w, "status: %s\nfetched %d, added %d, updated %d, malformed %d\n",
		s.Status, s.Fetched, s.Added, s.Updated, s.Malformed)
	if err != nil {
		return err
	}

	for _, note := range s.Conflicts {
		if _, err := fmt.Fprintf(w, "  %s %s: %s\n", note.Kind, note.ID, note.Message); err != nil {
			return err
		}
	}

	if s.PushOK {
		_, err = fmt.Fprintf(w, "pushed %d\n", s.Pushed)
	} else if s.Error != "" {
		_, err = fmt.Fprintf(w, "%s step failed (%s): %s\n", s.Step, s.ErrorKind, s.Error)
	}

	return err
}

func newDoctorCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check storage, the collection and the remote source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withContainer(cmd, func(c *bootstrap.Container) error {
				ctx, cancel := context.WithTimeout(cmd.Context(), doctorTimeout)
				defer cancel()

				result := c.Health.CheckAll(ctx)

				// The remote is not a readiness dependency of the service, so it
				// is only probed here.
				if checker, ok := c.Remote.(ports.HealthChecker); ok {
					remote := ports.NewHealthRegistry()
					if err := remote.Register(checker); err != nil {
						return err
					}

					for name, check := range remote.CheckAll(ctx).Checks {
						result.Checks[name] = check
						if check.Status != ports.HealthStatusHealthy {
							result.Status = ports.HealthStatusUnhealthy
						}
					}
				}

				if opts.json() {
					if err := printJSON(cmd.OutOrStdout(), result); err != nil {
						return err
					}
				} else if err := printHealth(cmd.OutOrStdout(), result); err != nil {
					return err
				}

				if result.Status != ports.HealthStatusHealthy {
					return ErrUnhealthy
				}

				return nil
			})
		},
	}
}

func printHealth(w io.Writer, result *ports.HealthResult) error {
	names := make([]string, 0, len(result.Checks))
	for name := range result.Checks {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		check := result.Checks[name]

		line := fmt.Sprintf("%-20s %-9s %s", name, check.Status, check.Duration.Round(time.Millisecond))
		if check.Message != "" {
			line += "  " + check.Message
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "overall: %s\n", result.Status)

	return err
}
