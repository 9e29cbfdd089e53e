package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/abduss/mediavault/internal/config"
	"github.com/abduss/mediavault/internal/media"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newListCmd(cfg *config.Config, logg *zap.Logger, jsonOutput *bool) *cobra.Command {
	var (
		page  int
		limit int
		query string
	)

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List stored files",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, verrs := media.ValidateListQuery(strconv.Itoa(page), strconv.Itoa(limit), query)
			if len(verrs) > 0 {
				return verrs
			}

			svc, err := newMediaService(cfg, logg)
			if err != nil {
				return err
			}

			result, err := svc.List(cmd.Context(), params)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if *jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PATH\tNAME\tSIZE\tUPLOADED")
			for _, e := range result.Data {
				size := "-"
				if e.Size != nil {
					size = strconv.FormatInt(*e.Size, 10)
				}
				uploaded := "-"
				if e.UploadedAt != nil {
					uploaded = e.UploadedAt.Format("2006-01-02 15:04:05")
				}
				name := e.OriginalName
				if name == "" {
					name = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Path, name, size, uploaded)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "page %d, %d of %d files\n", result.Page, len(result.Data), result.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 20, "page size")
	cmd.Flags().StringVarP(&query, "query", "q", "", "case-insensitive filter on path or original name")
	return cmd
}
