package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/JaimeStill/kahuna/internal/seen"
	"github.com/spf13/cobra"
)

func newSeenCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seen",
		Short: "Read and write per-query seen marks",
		Long: `Seen marks record the upload time of the newest image seen for a query.
Search results uploaded at or before the mark are flagged as seen. An empty
query is stored under "*".`,
	}

	cmd.AddCommand(newSeenGetCmd(a), newSeenMarkCmd(a))
	return cmd
}

func newSeenGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get [query]",
		Short: "Show the seen mark for a query, or every mark",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, err := a.seen()
			if err != nil {
				return err
			}

			if len(args) == 0 {
				marks, err := tracker.Marks(cmd.Context())
				if err != nil {
					return err
				}
				return write(cmd.OutOrStdout(), a.output, marks, func(w io.Writer) {
					keys := make([]string, 0, len(marks))
					for k := range marks {
						keys = append(keys, k)
					}
					sort.Strings(keys)
					for _, k := range keys {
						fmt.Fprintf(w, "%s\t%s\n", k, marks[k].Format(time.RFC3339))
					}
				})
			}

			key := seen.QueryKey(args[0])
			since, err := tracker.SeenSince(cmd.Context(), key)
			if err != nil {
				return err
			}

			mark := seen.Mark{Query: key, UploadTime: since}
			return write(cmd.OutOrStdout(), a.output, mark, func(w io.Writer) {
				if since == nil {
					fmt.Fprintf(w, "%s\tnever\n", key)
					return
				}
				fmt.Fprintf(w, "%s\t%s\n", key, since.Format(time.RFC3339))
			})
		},
	}
}

func newSeenMarkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mark <query> <upload-time>",
		Short: "Record an RFC 3339 upload time as seen for a query",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			uploadTime, err := time.Parse(time.RFC3339, args[1])
			if err != nil {
				return fmt.Errorf("invalid upload time: %w", err)
			}

			tracker, err := a.seen()
			if err != nil {
				return err
			}

			key := seen.QueryKey(args[0])
			if err := tracker.MarkSeen(cmd.Context(), key, uploadTime); err != nil {
				return err
			}

			mark := seen.Mark{Query: key, UploadTime: &uploadTime}
			return write(cmd.OutOrStdout(), a.output, mark, func(w io.Writer) {
				fmt.Fprintf(w, "marked %s seen through %s\n", key, uploadTime.Format(time.RFC3339))
			})
		},
	}
}
