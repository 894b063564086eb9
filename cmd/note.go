package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	internalApp "github.com/dontknow492/Notes/internal/app"
	"github.com/dontknow492/Notes/internal/domain"
	"github.com/dontknow492/Notes/internal/dto"
	"github.com/dontknow492/Notes/pkg/code"
	"github.com/dontknow492/Notes/pkg/convert"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// noteFields note add/edit 共用的字段参数
type noteFields struct {
	heading string
	title   string
	body    string
	image   string
	color   string
	pinned  bool
	theme   int
	tags    []string
}

func (f *noteFields) bind(c *cobra.Command) {
	fs := c.Flags()
	fs.StringVar(&f.heading, "heading", "", "note heading")
	fs.StringVar(&f.title, "title", "", "note title")
	fs.StringVar(&f.body, "body", "", "note body")
	fs.StringVar(&f.image, "image", "", "image reference")
	fs.StringVar(&f.color, "color", "", "color")
	fs.BoolVar(&f.pinned, "pin", false, "pin the note")
	fs.IntVar(&f.theme, "theme", 0, "theme id")
	fs.StringSliceVar(&f.tags, "tag", nil, "tag name, repeatable")
}

// apply 将命令行中出现过的字段写入 note
func (f *noteFields) apply(c *cobra.Command, note *domain.Note) {
	fs := c.Flags()
	if fs.Changed("heading") {
		note.Heading = f.heading
	}
	if fs.Changed("title") {
		note.Title = domain.String(f.title)
	}
	if fs.Changed("body") {
		note.Body = domain.String(f.body)
	}
	if fs.Changed("image") {
		note.Image = domain.String(f.image)
	}
	if fs.Changed("color") {
		note.Color = domain.String(f.color)
	}
	if fs.Changed("pin") {
		note.IsPinned = f.pinned
	}
	if fs.Changed("theme") {
		note.ThemeID = f.theme
	}
}

func (f *noteFields) tagList() []domain.Tag {
	tags := make([]domain.Tag, 0, len(f.tags))
	for _, name := range f.tags {
		tags = append(tags, domain.Tag{Name: name})
	}
	return tags
}

func newNoteCmd() *cobra.Command {
	opts := &cliOptions{}
	c := &cobra.Command{
		Use:          "note",
		Short:        "Manage notes",
		SilenceUsage: true,
	}
	opts.bind(c)
	c.AddCommand(
		newNoteAddCmd(opts),
		newNoteListCmd(opts),
		newNoteShowCmd(opts),
		newNoteEditCmd(opts),
		newNoteRmCmd(opts),
		newNoteWatchCmd(opts),
	)
	return c
}

func newNoteAddCmd(opts *cliOptions) *cobra.Command {
	f := &noteFields{}
	c := &cobra.Command{
		Use:   "add --heading <heading> [--tag name]...",
		Short: "Create a note",
		Args:  cobra.NoArgs,
	}
	f.bind(c)
	_ = c.MarkFlagRequired("heading")
	c.RunE = withApp(opts, func(ctx context.Context, a *internalApp.App, out io.Writer) error {
		note := &domain.Note{}
		f.apply(c, note)
		id, err := a.NoteService.InsertNoteWithTags(ctx, note, f.tagList())
		if err != nil {
			return err
		}
		if opts.json {
			return printJSON(out, dto.NoteCreatedDTO{ID: id})
		}
		_, err = fmt.Fprintf(out, "created note %d\n", id)
		return err
	})
	return c
}

type noteListFlags struct {
	query string
	tag   string
	sort  string
	order string
	page  int
	size  int
	all   bool
}

func newNoteListCmd(opts *cliOptions) *cobra.Command {
	l := &noteListFlags{}
	c := &cobra.Command{
		Use:   "list",
		Short: "List notes, newest first",
		Args:  cobra.NoArgs,
	}
	fs := c.Flags()
	fs.StringVarP(&l.query, "query", "q", "", "match title or heading, case-insensitive")
	fs.StringVarP(&l.tag, "tag", "t", "", "only notes with this tag name")
	fs.StringVar(&l.sort, "sort", "", "created_at | updated_at | heading | title")
	fs.StringVar(&l.order, "order", "", "asc | desc")
	fs.IntVar(&l.page, "page", 1, "page number")
	fs.IntVar(&l.size, "size", 0, "page size")
	fs.BoolVar(&l.all, "all", false, "print every page")

	c.RunE = withApp(opts, func(ctx context.Context, a *internalApp.App, out io.Writer) error {
		filter := domain.NoteFilter{
			Query:     convert.StrTo(l.query).OptionalString(),
			SortBy:    domain.ParseSortBy(l.sort),
			SortOrder: domain.ParseSortOrder(l.order),
		}
		if l.tag != "" {
			tag, err := a.TagService.GetTagByName(ctx, l.tag)
			if errors.Is(err, code.ErrorTagNotFound) {
				return printNotes(out, opts.json, nil)
			}
			if err != nil {
				return err
			}
			filter.TagID = &tag.ID
		}

		src := a.NoteService.FilterNotes(ctx, filter, l.size)
		defer src.Close()

		if l.all {
			var notes []*domain.Note
			for n, err := range src.All(ctx) {
				if err != nil {
					return err
				}
				notes = append(notes, n)
			}
			return printNotes(out, opts.json, notes)
		}
		page, err := src.Page(ctx, l.page)
		if err != nil {
			return err
		}
		return printNotes(out, opts.json, page.Items)
	})
	return c
}

func printNotes(out io.Writer, asJSON bool, notes []*domain.Note) error {
	if asJSON {
		list := []dto.NoteDTO{}
		if err := convert.Copy(&list, &notes); err != nil {
			return err
		}
		return printJSON(out, list)
	}
	if len(notes) == 0 {
		_, err := fmt.Fprintln(out, "no notes")
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tHEADING\tTITLE\tPINNED\tUPDATED")
	for _, n := range notes {
		pinned := ""
		if n.IsPinned {
			pinned = "*"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", n.ID, n.Heading, domain.Deref(n.Title), pinned, formatMillis(n.UpdatedAt))
	}
	return w.Flush()
}

func printNoteDetail(out io.Writer, asJSON bool, n *domain.NoteWithTags) error {
	if asJSON {
		d := dto.NoteDetailDTO{Tags: []dto.TagDTO{}}
		if err := convert.Copy(&d.NoteDTO, &n.Note); err != nil {
			return err
		}
		if err := convert.Copy(&d.Tags, &n.Tags); err != nil {
			return err
		}
		return printJSON(out, d)
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "id:\t%d\n", n.Note.ID)
	fmt.Fprintf(w, "heading:\t%s\n", n.Note.Heading)
	fmt.Fprintf(w, "title:\t%s\n", domain.Deref(n.Note.Title))
	fmt.Fprintf(w, "tags:\t%s\n", strings.Join(n.TagNames(), ", "))
	fmt.Fprintf(w, "pinned:\t%t\n", n.Note.IsPinned)
	fmt.Fprintf(w, "color:\t%s\n", domain.Deref(n.Note.Color))
	fmt.Fprintf(w, "created:\t%s\n", formatMillis(n.Note.CreatedAt))
	fmt.Fprintf(w, "updated:\t%s\n", formatMillis(n.Note.UpdatedAt))
	if err := w.Flush(); err != nil {
		return err
	}
	if body := domain.Deref(n.Note.Body); body != "" {
		_, err := fmt.Fprintf(out, "\n%s\n", body)
		return err
	}
	return nil
}

func newNoteShowCmd(opts *cliOptions) *cobra.Command {
	c := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a note with its tags",
		Args:  cobra.ExactArgs(1),
	}
	c.RunE = func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(opts, func(ctx context.Context, a *internalApp.App, out io.Writer) error {
			n, err := a.NoteService.GetDetailedNote(ctx, id)
			if err != nil {
				return err
			}
			return printNoteDetail(out, opts.json, n)
		})(cmd, args)
	}
	return c
}

func newNoteEditCmd(opts *cliOptions) *cobra.Command {
	f := &noteFields{}
	var clearTags bool
	c := &cobra.Command{
		Use:   "edit <id> [--heading ...] [--tag name]...",
		Short: "Update note fields; --tag or --clear-tags replaces its tags",
		Args:  cobra.ExactArgs(1),
	}
	f.bind(c)
	c.Flags().BoolVar(&clearTags, "clear-tags", false, "remove every tag from the note")

	c.RunE = func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(opts, func(ctx context.Context, a *internalApp.App, out io.Writer) error {
			current, err := a.NoteService.GetDetailedNote(ctx, id)
			if err != nil {
				return err
			}
			note := current.Note
			f.apply(cmd, &note)
			// 由仓储层写入当前时间
			note.UpdatedAt = 0

			if cmd.Flags().Changed("tag") || clearTags {
				var tags []domain.Tag
				if !clearTags {
					tags = f.tagList()
				}
				err = a.NoteService.UpdateNoteWithTags(ctx, &note, tags)
			} else {
				err = a.NoteService.UpdateNote(ctx, &note)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "updated note %d\n", id)
			return err
		})(cmd, args)
	}
	return c
}

func newNoteRmCmd(opts *cliOptions) *cobra.Command {
	c := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a note; its tags are kept",
		Args:  cobra.ExactArgs(1),
	}
	c.RunE = func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(opts, func(ctx context.Context, a *internalApp.App, out io.Writer) error {
			if err := a.NoteService.DeleteNote(ctx, id); err != nil {
				return err
			}
			_, err := fmt.Fprintf(out, "deleted note %d\n", id)
			return err
		})(cmd, args)
	}
	return c
}

func newNoteWatchCmd(opts *cliOptions) *cobra.Command {
	var count int
	c := &cobra.Command{
		Use:   "watch <id>",
		Short: "Print the note each time it or its tags change",
		Args:  cobra.ExactArgs(1),
	}
	c.Flags().IntVar(&count, "count", 0, "exit after this many updates, 0 waits for Ctrl-C")

	c.RunE = func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(opts, func(ctx context.Context, a *internalApp.App, out io.Writer) error {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			w, err := a.NoteService.WatchDetailedNote(ctx, id)
			if err != nil {
				return err
			}
			defer w.Close()

			for seen := 0; count == 0 || seen < count; seen++ {
				select {
				case v, ok := <-w.C():
					if !ok {
						return w.Err()
					}
					if v == nil {
						fmt.Fprintf(out, "note %d does not exist\n", id)
						continue
					}
					if err := printNoteDetail(out, opts.json, v); err != nil {
						return err
					}
					if !opts.json {
						fmt.Fprintln(out, "---")
					}
				case <-ctx.Done():
					return nil
				}
			}
			return nil
		})(cmd, args)
	}
	return c
}

func init() {
	rootCmd.AddCommand(newNoteCmd())
}
