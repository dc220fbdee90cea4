// Package cli implements the quotectl commands. Every command opens the
// configured storage directly, so it works without a running service.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-manager/internal/bootstrap"
)

const (
	formatJSON = "json"
	formatText = "text"
)

// Opener builds the container for the given config profile.
type Opener func(ctx context.Context, profile string) (*bootstrap.Container, error)

type rootOptions struct {
	profile string
	format  string
	open    Opener
}

// NewRootCmd returns the quotectl command tree.
func NewRootCmd(open Opener) *cobra.Command {
	opts := &rootOptions{open: open}

	root := &cobra.Command{
		Use:           "quotectl",
		Short:         "Manage a local quote collection",
		Long:          "quotectl adds, lists, imports and exports quotes and reconciles them with the remote source.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if opts.format != formatJSON && opts.format != formatText {
				return fmt.Errorf("unknown format %q: want json or text", opts.format)
			}

			return nil
		},
	}

	root.PersistentFlags().StringVarP(&opts.profile, "profile", "p", "local", "Config profile (configs/<profile>.yaml)")
	root.PersistentFlags().StringVarP(&opts.format, "format", "f", formatText, "Output format: json or text")

	root.AddCommand(
		newListCmd(opts),
		newAddCmd(opts),
		newRmCmd(opts),
		newCategoriesCmd(opts),
		newCategoryCmd(opts),
		newRandomCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newSyncCmd(opts),
		newDoctorCmd(opts),
	)

	return root
}

// withContainer opens the container, runs fn and closes it.
func (o *rootOptions) withContainer(cmd *cobra.Command, fn func(c *bootstrap.Container) error) error {
	c, err := o.open(cmd.Context(), o.profile)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	runErr := fn(c)

	if err := c.Close(); err != nil && runErr == nil {
		return fmt.Errorf("close store: %w", err)
	}

	return runErr
}

func (o *rootOptions) json() bool {
	return o.format == formatJSON
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))

	return err
}
