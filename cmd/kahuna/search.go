package main

import (
	"fmt"
	"io"
	"time"

	"github.com/JaimeStill/kahuna/internal/search"
	"github.com/JaimeStill/kahuna/internal/seen"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type searchOptions struct {
	free     bool
	since    string
	archived bool
	more     int
	mark     bool
}

type searchOutput struct {
	Query     string             `json:"query"`
	Results   []search.ImageView `json:"results"`
	Total     int                `json:"total"`
	Exhausted bool               `json:"exhausted"`
	SeenSince *time.Time         `json:"seenSince,omitempty"`
}

func newSearchCmd(a *app) *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the Media API, paging further with --more",
		Long: `Search runs a Media API query and prints the results newest first.

Each --more page continues from the upload time of the last result and
drops images already shown. Only free images are shown unless --free=false
is given; while filtering, pages where every new image is paid are walked
past until a free one appears or results run out.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := opts.context(cmd, args)
			if err != nil {
				return err
			}
			return runSearch(cmd, a, sc, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.free, "free", true, "show only free images (--free=false shows all)")
	cmd.Flags().StringVar(&opts.since, "since", "", "only images uploaded at or after this RFC 3339 time")
	cmd.Flags().BoolVar(&opts.archived, "archived", false, "filter by archived state (unset searches both)")
	cmd.Flags().IntVar(&opts.more, "more", 0, "number of additional pages to fetch")
	cmd.Flags().BoolVar(&opts.mark, "mark-seen", false, "mark the newest result as seen for this query")

	return cmd
}

func (o *searchOptions) context(cmd *cobra.Command, args []string) (search.Context, error) {
	sc := search.Context{FreeOnly: o.free}
	if len(args) == 1 {
		sc.Query = args[0]
	}

	if o.since != "" {
		t, err := time.Parse(time.RFC3339, o.since)
		if err != nil {
			return sc, fmt.Errorf("invalid --since: %w", err)
		}
		sc.Since = &t
	}
	if cmd.Flags().Changed("archived") {
		archived := o.archived
		sc.Archived = &archived
	}
	if o.more < 0 {
		return sc, fmt.Errorf("--more must not be negative")
	}
	return sc, nil
}

func runSearch(cmd *cobra.Command, a *app, sc search.Context, opts *searchOptions) error {
	ctx := cmd.Context()
	engine := search.New(a.gateway, a.cfg.Pagination.DefaultPageSize, a.infra.Logger)
	session := search.NewSession(engine, a.infra.Logger)

	if err := session.Start(ctx, sc); err != nil {
		return err
	}
	for i := 0; i < opts.more && !session.State().Exhausted; i++ {
		if err := session.More(ctx); err != nil {
			return err
		}
	}

	tracker, err := a.seen()
	if err != nil {
		return err
	}
	key := seen.QueryKey(sc.Query)
	since, err := tracker.SeenSince(ctx, key)
	if err != nil {
		return err
	}

	st := session.State()
	view := search.NewSessionView(uuid.Nil, st, since)

	if opts.mark && len(st.Results) > 0 {
		if err := tracker.MarkSeen(ctx, key, st.Results[0].UploadTime); err != nil {
			return err
		}
	}

	out := searchOutput{
		Query:     sc.Query,
		Results:   view.Results,
		Total:     view.Total,
		Exhausted: view.Exhausted,
		SeenSince: view.SeenSince,
	}
	return write(cmd.OutOrStdout(), a.output, out, func(w io.Writer) {
		for _, r := range out.Results {
			marker := " "
			if r.Seen {
				marker = "*"
			}
			fmt.Fprintf(w, "%s %s  %-4s  %s  %s\n", marker, r.UploadTime.Format(time.RFC3339), r.Cost, r.ID, r.URI)
		}
		state := "more available"
		if out.Exhausted {
			state = "exhausted"
		}
		fmt.Fprintf(w, "%d shown, %d loaded, %s\n", len(out.Results), out.Total, state)
	})
}
