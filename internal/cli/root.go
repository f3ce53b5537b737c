// Package cli implements jojoctl, the operator command line.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/garyellow/jojo-linebot-go/internal/buildinfo"
	"github.com/garyellow/jojo-linebot-go/internal/logger"
)

// NewRoot builds the jojoctl command tree.
func NewRoot(log *logger.Logger) *cobra.Command {
	var catalogPath string

	root := &cobra.Command{
		Use:           "jojoctl",
		Short:         "Inspect the JOJO bot catalog and dry-run replies",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&catalogPath, "catalog", "", "catalog file (default: embedded catalog)")

	root.AddCommand(newReplyCommand(log, &catalogPath))
	root.AddCommand(newCatalogCommand(log, &catalogPath))
	root.AddCommand(newVersionCommand())

	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(buildinfo.Release())
			if buildinfo.Commit != "" {
				cmd.Printf("commit: %s\n", buildinfo.Commit)
			}
			if buildinfo.BuildDate != "" {
				cmd.Printf("built: %s\n", buildinfo.BuildDate)
			}
		},
	}
}
