package main

import (
	"github.com/abduss/mediavault/internal/config"
	"github.com/abduss/mediavault/internal/media"
	"github.com/abduss/mediavault/internal/normalize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd(cfg *config.Config, logg *zap.Logger) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:           "mediavault",
		Short:         "Content-addressed media store with range serving",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().StringVar(&cfg.Storage.Root, "root", cfg.Storage.Root, "storage root directory")

	cmd.AddCommand(
		newServeCmd(cfg, logg),
		newVerifyCmd(cfg, logg, &jsonOutput),
		newListCmd(cfg, logg, &jsonOutput),
	)

	return cmd
}

// newMediaService wires the storage-root scoped service from configuration.
func newMediaService(cfg *config.Config, logg *zap.Logger) (*media.Service, error) {
	opts := media.Options{
		Root:         cfg.Storage.Root,
		SubDirs:      cfg.Storage.UseSubDirs,
		PublicDomain: cfg.Server.Domain,
		Logger:       logg,
	}
	if cfg.Upload.ImageMaxBytes > 0 {
		opts.Normalizer = normalize.JPEGShrinker{
			MaxBytes:  cfg.Upload.ImageMaxBytes,
			MaxPasses: cfg.Upload.ImageMaxPasses,
		}
	}
	return media.NewService(opts)
}
