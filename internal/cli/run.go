package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/scubot/tagbot/internal/bot"
	"github.com/scubot/tagbot/internal/dispatch"
	"github.com/scubot/tagbot/internal/shellquote"
)

type callerFlags struct {
	id   string
	name string
}

func (c *callerFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.id, "user-id", "", "Caller id recorded as tag owner (default $USER)")
	cmd.Flags().StringVar(&c.name, "user-name", "", "Caller display name (default the user id)")
}

func (c *callerFlags) caller() bot.Caller {
	id := c.id
	if id == "" {
		id = os.Getenv("USER")
	}
	if id == "" {
		id = "local"
	}
	return bot.Caller{ID: id, Name: c.name}
}

type replyData struct {
	Message  string `json:"message"`
	Reply    string `json:"reply"`
	Markdown bool   `json:"markdown"`
}

func newRunCmd(o *rootOptions) *cobra.Command {
	var who callerFlags

	cmd := &cobra.Command{
		Use:   "run <message>",
		Short: "Dispatch one message to the tag bot",
		Long: `Dispatch one message and print the reply.

Pass the message as a single argument, or as several arguments that are
re-quoted into one message:

  tagbot run 'tag new motd "Welcome aboard"'
  tagbot run tag new motd "Welcome aboard"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			a, err := o.openApp()
			if err != nil {
				return o.appError(out, err)
			}
			defer a.Close()

			message := args[0]
			if len(args) > 1 {
				message = shellquote.Join(args)
			}

			ctx := bot.WithCaller(cmd.Context(), who.caller())
			return o.dispatchOne(ctx, a, out, message)
		},
	}
	who.register(cmd)
	return cmd
}

func (o *rootOptions) dispatchOne(ctx context.Context, a *app, out io.Writer, message string) error {
	reply, err := a.bot.Handle(ctx, message)
	if errors.Is(err, dispatch.ErrNoMatch) {
		return o.handleErrorMsg(out, ErrNoMatch,
			fmt.Sprintf("no command matched %q", message),
			"Run 'tagbot routes' to see the registered commands")
	}
	if err != nil {
		return o.handleError(out, ErrDispatchFailed, err, "")
	}

	if o.jsonOutput {
		outputSuccess(out, replyData{Message: message, Reply: reply.Text, Markdown: reply.Markdown}, nil)
		return nil
	}
	writeReply(out, reply)
	return nil
}

func writeReply(out io.Writer, reply bot.Reply) {
	if reply.Markdown {
		fmt.Fprint(out, display(out).Markdown(reply.Text))
		return
	}
	fmt.Fprintln(out, reply.Text)
}
