package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jmohr/mailcast/internal/core"
	"github.com/jmohr/mailcast/internal/di"
	"github.com/jmohr/mailcast/internal/feed"
)

func newFeedCommand() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:          "feed",
		Short:        "Regenerate the RSS documents and upload them",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			container, err := di.BuildContainer()
			if err != nil {
				return err
			}
			return container.Invoke(func(
				logger *zap.Logger,
				publisher *feed.Publisher,
				episodes core.EpisodeStore,
			) error {
				defer logger.Sync()
				defer episodes.Close()

				if err := publisher.PublishFeeds(cmd.Context()); err != nil {
					return err
				}
				if outputFile != "" {
					doc, err := publisher.Render(cmd.Context(), "")
					if err != nil {
						return err
					}
					if err := os.WriteFile(outputFile, doc, 0644); err != nil {
						return fmt.Errorf("write %s: %w", outputFile, err)
					}
					fmt.Printf("Combined feed written to %s\n", outputFile)
				}
				fmt.Println("Feeds regenerated and uploaded")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&outputFile, "output-file", "", "Also write the combined feed document to this file")

	return cmd
}
