package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	internalApp "github.com/dontknow492/Notes/internal/app"
	"github.com/dontknow492/Notes/internal/dto"

	"github.com/spf13/cobra"
)

func newTagCmd() *cobra.Command {
	opts := &cliOptions{}
	c := &cobra.Command{
		Use:          "tag",
		Short:        "Manage tags",
		SilenceUsage: true,
	}
	opts.bind(c)

	list := &cobra.Command{
		Use:   "list",
		Short: "List tags by name",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, a *internalApp.App, out io.Writer) error {
			tags, err := a.TagService.ListTags(ctx)
			if err != nil {
				return err
			}
			if opts.json {
				list := make([]dto.TagDTO, 0, len(tags))
				for _, t := range tags {
					list = append(list, dto.TagDTO{ID: t.ID, Name: t.Name})
				}
				return printJSON(out, list)
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME")
			for _, t := range tags {
				fmt.Fprintf(w, "%d\t%s\n", t.ID, t.Name)
			}
			return w.Flush()
		}),
	}

	rename := &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a tag on every note that carries it",
		Args:  cobra.ExactArgs(2),
	}
	rename.RunE = func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(opts, func(ctx context.Context, a *internalApp.App, out io.Writer) error {
			if err := a.TagService.RenameTag(ctx, id, args[1]); err != nil {
				return err
			}
			_, err := fmt.Fprintf(out, "renamed tag %d to %s\n", id, args[1])
			return err
		})(cmd, args)
	}

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a tag and unlink it from notes",
		Args:  cobra.ExactArgs(1),
	}
	rm.RunE = func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(opts, func(ctx context.Context, a *internalApp.App, out io.Writer) error {
			if err := a.TagService.DeleteTag(ctx, id); err != nil {
				return err
			}
			_, err := fmt.Fprintf(out, "deleted tag %d\n", id)
			return err
		})(cmd, args)
	}

	orphans := &cobra.Command{
		Use:   "orphans",
		Short: "Count tags no note refers to",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, a *internalApp.App, out io.Writer) error {
			n, err := a.TagService.CountOrphanTags(ctx)
			if err != nil {
				return err
			}
			if opts.json {
				return printJSON(out, dto.TagOrphansDTO{Count: n})
			}
			_, err = fmt.Fprintf(out, "%d orphan tags\n", n)
			return err
		}),
	}

	c.AddCommand(list, rename, rm, orphans)
	return c
}

func init() {
	rootCmd.AddCommand(newTagCmd())
}
