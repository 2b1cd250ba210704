package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jmohr/mailcast/internal/core"
	"github.com/jmohr/mailcast/internal/di"
)

func newProcessCommand() *cobra.Command {
	var inputFile string
	var routeTag string

	cmd := &cobra.Command{
		Use:          "process",
		Short:        "Process a single local .eml file and upload the resulting episode",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			container, err := di.BuildContainer()
			if err != nil {
				return err
			}
			return container.Invoke(func(
				logger *zap.Logger,
				service *core.PipelineService,
				episodes core.EpisodeStore,
			) error {
				defer logger.Sync()
				defer episodes.Close()

				raw, err := os.ReadFile(inputFile)
				if err != nil {
					return fmt.Errorf("read %s: %w", inputFile, err)
				}

				key := "local/" + filepath.Base(inputFile)
				result, err := service.ProcessRaw(cmd.Context(), raw, routeTag, key)
				if err != nil {
					return err
				}
				if result.Skipped {
					fmt.Printf("Skipped: %s\n", result.SkipReason)
					return nil
				}

				episode := result.Episode
				tag := episode.SourceTag
				if tag == "" {
					tag = "none"
				}
				fmt.Printf("Uploaded episode: %s\n", episode.StorageKey)
				fmt.Printf("Title: %s\n", episode.Title)
				fmt.Printf("Route tag: %s\n", tag)
				fmt.Printf("Preset: %s\n", episode.PresetName)
				fmt.Printf("Feed: %s\n", episode.FeedSlug)
				fmt.Printf("Category: %s\n", episode.Category)
				fmt.Printf("Size: %d bytes\n", episode.SizeBytes)
				if episode.DurationSeconds != nil {
					fmt.Printf("Duration: %d sec\n", *episode.DurationSeconds)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&inputFile, "input-file", "", "Path to the raw .eml file")
	cmd.Flags().StringVar(&routeTag, "route-tag", "", "Route tag to apply instead of resolving from headers")
	cmd.MarkFlagRequired("input-file")

	return cmd
}
