package main

import (
	"encoding/json"
	"fmt"

	"github.com/abduss/mediavault/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newVerifyCmd(cfg *config.Config, logg *zap.Logger, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Re-hash stored files and report integrity problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newMediaService(cfg, logg)
			if err != nil {
				return err
			}

			report, err := svc.Verify(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if *jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				for _, issue := range report.Issues {
					fmt.Fprintf(out, "%s\t%s\n", issue.Path, issue.Problem)
				}
				fmt.Fprintf(out, "checked %d files, %d issues\n", report.Checked, len(report.Issues))
			}

			if len(report.Issues) > 0 {
				return fmt.Errorf("%d integrity issues found", len(report.Issues))
			}
			return nil
		},
	}
}
