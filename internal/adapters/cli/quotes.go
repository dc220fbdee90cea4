package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-manager/internal/bootstrap"
	"github.com/jsamuelsen/quote-manager/internal/domain"
)

func printQuotes(w io.Writer, asJSON bool, quotes domain.Collection) error {
	if asJSON {
		if quotes == nil {
			quotes = domain.Collection{}
		}

		return printJSON(w, quotes)
	}

	for i, q := range quotes {
		if err := printQuoteLine(w, i, q); err != nil {
			return err
		}
	}

	return nil
}

func printQuoteLine(w io.Writer, index int, q domain.Quote) error {
	line := fmt.Sprintf("%3d  %-26s [%s] %s", index, q.ID, q.Category, q.Text)
	if q.Author != "" {
		line += " - " + q.Author
	}

	_, err := fmt.Fprintln(w, line)

	return err
}

func printQuote(w io.Writer, asJSON bool, q domain.Quote) error {
	if asJSON {
		return printJSON(w, q)
	}

	text := fmt.Sprintf("%q", q.Text)
	if q.Author != "" {
		text += " - " + q.Author
	}

	_, err := fmt.Fprintf(w, "%s\n  [%s] %s\n", text, q.Category, q.ID)

	return err
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List quotes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withContainer(cmd, func(c *bootstrap.Container) error {
				return printQuotes(cmd.OutOrStdout(), opts.json(), c.Quotes.List(category))
			})
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Only quotes in this category")

	return cmd
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var q domain.Quote

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a quote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withContainer(cmd, func(c *bootstrap.Container) error {
				added, err := c.Quotes.Add(cmd.Context(), q)
				if err != nil {
					return err
				}

				return printQuote(cmd.OutOrStdout(), opts.json(), added)
			})
		},
	}

	cmd.Flags().StringVarP(&q.Text, "text", "t", "", "Quote text (required)")
	cmd.Flags().StringVarP(&q.Category, "category", "c", "", "Category (required)")
	cmd.Flags().StringVarP(&q.Author, "author", "a", "", "Author")
	cmd.Flags().StringVar(&q.ID, "id", "", "Explicit ID (generated when empty)")

	_ = cmd.MarkFlagRequired("text")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func newRmCmd(opts *rootOptions) *cobra.Command {
	var index int

	cmd := &cobra.Command{
		Use:   "rm [id]",
		Short: "Remove a quote by ID or by list position",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			byIndex := cmd.Flags().Changed("index")

			if byIndex == (len(args) == 1) {
				return errors.New("give either an ID or --index")
			}

			return opts.withContainer(cmd, func(c *bootstrap.Container) error {
				var (
					removed domain.Quote
					err     error
				)

				if byIndex {
					removed, err = c.Quotes.RemoveAt(cmd.Context(), index)
				} else {
					removed, err = c.Quotes.Remove(cmd.Context(), args[0])
				}

				if err != nil {
					return err
				}

				if opts.json() {
					return printJSON(cmd.OutOrStdout(), removed)
				}

				_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", removed.ID)

				return err
			})
		},
	}

	cmd.Flags().IntVarP(&index, "index", "i", 0, "Position as shown by list")

	return cmd
}

func newCategoriesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the distinct categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withContainer(cmd, func(c *bootstrap.Container) error {
				categories := c.Quotes.Categories()

				if opts.json() {
					return printJSON(cmd.OutOrStdout(), categories)
				}

				for _, name := range categories {
					if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
						return err
					}
				}

				return nil
			})
		},
	}
}

func newCategoryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "category [name]",
		Short: "Show or set the selected category",
		Long:  `Without an argument, prints the selected category. With one, selects it; "all" clears the filter.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withContainer(cmd, func(c *bootstrap.Container) error {
				var (
					category string
					err      error
				)

				if len(args) == 1 {
					category, err = c.Quotes.SetSelectedCategory(cmd.Context(), args[0])
				} else {
					category, err = c.Quotes.SelectedCategory(cmd.Context())
				}

				if err != nil {
					return err
				}

				if opts.json() {
					return printJSON(cmd.OutOrStdout(), map[string]string{"category": category})
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), category)

				return err
			})
		},
	}
}

func newRandomCmd(opts *rootOptions) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "random",
		Short: "Show a random quote from the selected category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withContainer(cmd, func(c *bootstrap.Container) error {
				if !cmd.Flags().Changed("category") {
					selected, err := c.Quotes.SelectedCategory(cmd.Context())
					if err != nil {
						return err
					}

					category = selected
				}

				q, err := c.Quotes.Random(cmd.Context(), category)
				if err != nil {
					return err
				}

				return printQuote(cmd.OutOrStdout(), opts.json(), q)
			})
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Category to pick from (default: the selected one)")

	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all quotes as a JSON array",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withContainer(cmd, func(c *bootstrap.Container) error {
				data, err := c.Quotes.Export()
				if err != nil {
					return err
				}

				if output == "" || output == "-" {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
					return err
				}

				if err := os.WriteFile(output, append(data, '\n'), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}

				_, err = fmt.Fprintf(cmd.ErrOrStderr(), "exported %d quotes to %s\n", c.Store.Len(), output)

				return err
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")

	return cmd
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import quotes from a JSON array (file or stdin)",
		Long: "Import appends the valid, non-duplicate quotes of a JSON array.\n" +
			"With --replace the document is an export and replaces the whole collection.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			return opts.withContainer(cmd, func(c *bootstrap.Container) error {
				if replace {
					restored, err := c.Quotes.Restore(cmd.Context(), data)
					if err != nil {
						return err
					}

					if opts.json() {
						return printJSON(cmd.OutOrStdout(), restored)
					}

					_, err = fmt.Fprintf(cmd.OutOrStdout(), "restored %d quotes\n", len(restored))

					return err
				}

				result, err := c.Quotes.ImportJSON(cmd.Context(), data)
				if err != nil {
					return err
				}

				if opts.json() {
					return printJSON(cmd.OutOrStdout(), result)
				}

				w := cmd.OutOrStdout()
				if _, err := fmt.Fprintf(w, "imported %d, skipped %d\n", len(result.Imported), len(result.Skipped)); err != nil {
					return err
				}

				for _, s := range result.Skipped {
					if _, err := fmt.Fprintf(w, "  #%d: %s\n", s.Index, s.Reason); err != nil {
						return err
					}
				}

				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "replace the collection instead of appending")

	return cmd
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}

		return data, nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", args[0], err)
	}

	return data, nil
}
