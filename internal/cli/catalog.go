package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garyellow/jojo-linebot-go/internal/catalog"
	"github.com/garyellow/jojo-linebot-go/internal/intent"
	"github.com/garyellow/jojo-linebot-go/internal/logger"
	"github.com/garyellow/jojo-linebot-go/internal/media"
)

func newCatalogCommand(log *logger.Logger, catalogPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the reply catalog",
	}
	cmd.AddCommand(newCatalogCheckCommand(log, catalogPath))
	return cmd
}

func newCatalogCheckCommand(log *logger.Logger, catalogPath *string) *cobra.Command {
	var mediaDir string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the catalog and report media files missing from the media directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(*catalogPath)
			if err != nil {
				return err
			}
			if _, err := intent.NewResolver(cat, 0); err != nil {
				return err
			}

			stats := cat.Stats()
			cmd.Printf("catalog ok: %d phrases, %d media, %d postbacks, %d scripts, %d drawable\n",
				stats.Phrases, stats.Media, stats.Postbacks, stats.Scripts, stats.DrawPool)

			if mediaDir == "" {
				return nil
			}
			missing, err := media.Check(mediaDir, cat.Media)
			if err != nil {
				return err
			}
			for _, key := range missing {
				cmd.Printf("missing: %s -> %s\n", key, cat.Media[key])
			}
			if len(missing) > 0 {
				log.WithField("media_dir", mediaDir).WithField("missing", len(missing)).Warn("Media files missing")
				return fmt.Errorf("%d media file(s) missing under %s", len(missing), mediaDir)
			}
			cmd.Printf("media ok: all files present under %s\n", mediaDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&mediaDir, "media-dir", "", "directory served under /media")
	return cmd
}
