package cli

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/garyellow/jojo-linebot-go/internal/config"
	domerrors "github.com/garyellow/jojo-linebot-go/internal/errors"
	"github.com/garyellow/jojo-linebot-go/internal/catalog"
	"github.com/garyellow/jojo-linebot-go/internal/intent"
	"github.com/garyellow/jojo-linebot-go/internal/logger"
	"github.com/garyellow/jojo-linebot-go/internal/media"
	"github.com/garyellow/jojo-linebot-go/internal/reply"
)

// replyOutput is what `jojoctl reply` prints. Action is empty and Units nil
// when the bot would stay silent.
type replyOutput struct {
	Action string         `json:"action,omitempty"`
	Units  reply.Sequence `json:"units"`
}

func newReplyCommand(log *logger.Logger, catalogPath *string) *cobra.Command {
	var (
		text     string
		postback string
		follow   bool
		origin   string
		seed     uint64
	)

	cmd := &cobra.Command{
		Use:   "reply",
		Short: "Print the reply the bot would send for a message or postback",
		Example: `  jojoctl reply --text 抽 --seed 7
  jojoctl reply --postback 'act=darby_yes' --origin https://jojo.example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := eventFromFlags(cmd, text, postback, follow)
			if err != nil {
				return err
			}

			cat, err := catalog.Load(*catalogPath)
			if err != nil {
				return err
			}
			resolver, err := intent.NewResolver(cat, config.LINEMaxPostbackDataLength)
			if err != nil {
				return err
			}

			var opts []reply.Option
			if seed != 0 {
				opts = append(opts, reply.WithIntN(rand.New(rand.NewPCG(seed, seed)).IntN))
			}
			composer := reply.NewComposer(cat, opts...)

			out := replyOutput{}
			if action, ok := resolver.Resolve(ev); ok {
				table := media.BuildTable(media.ResolveOrigin(origin, nil)+media.PathPrefix, cat.Media)
				out.Action = action.String()
				out.Units = composer.Compose(action, table)
				for _, key := range out.Units.Fallbacks() {
					log.WithField("media_key", string(key)).Warn("Media unavailable; fallback text used")
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "message text sent by the user")
	cmd.Flags().StringVar(&postback, "postback", "", "postback data sent by a button")
	cmd.Flags().BoolVar(&follow, "follow", false, "simulate a follow (add friend) event")
	cmd.Flags().StringVar(&origin, "origin", "https://localhost", "public origin media URLs are built on")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for random picks (0: nondeterministic)")
	cmd.MarkFlagsMutuallyExclusive("text", "postback", "follow")

	return cmd
}

func eventFromFlags(cmd *cobra.Command, text, postback string, follow bool) (intent.Event, error) {
	switch {
	case cmd.Flags().Changed("text"):
		return intent.Event{Kind: intent.EventMessage, Text: text}, nil
	case cmd.Flags().Changed("postback"):
		return intent.Event{Kind: intent.EventPostback, Data: postback}, nil
	case follow:
		return intent.Event{Kind: intent.EventFollow}, nil
	default:
		return intent.Event{}, fmt.Errorf("%w: one of --text, --postback or --follow is required", domerrors.ErrInvalidInput)
	}
}
