package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/scubot/tagbot/internal/bot"
	"github.com/scubot/tagbot/internal/dispatch"
	"github.com/scubot/tagbot/internal/ui"
)

const replPrompt = "tagbot> "

func newReplCmd(o *rootOptions) *cobra.Command {
	var who callerFlags

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Read messages interactively and print the replies",
		Long: `Read one message per line and dispatch it to the tag bot.

On a terminal the prompt keeps history across sessions. Type "exit" or
press Ctrl-D to quit. When stdin is not a terminal, lines are read until
end of input.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			a, err := o.openApp()
			if err != nil {
				return o.appError(out, err)
			}
			defer a.Close()

			ctx := bot.WithCaller(cmd.Context(), who.caller())
			in := cmd.InOrStdin()
			if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
				return o.interactiveREPL(ctx, a, out)
			}
			return o.scanREPL(ctx, a, in, out)
		},
	}
	who.register(cmd)
	return cmd
}

// replLine handles one line. It reports false when the session should end.
func (o *rootOptions) replLine(ctx context.Context, a *app, out io.Writer, line string) bool {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return true
	case "exit", "quit":
		return false
	}

	reply, err := a.bot.Handle(ctx, line)
	switch {
	case errors.Is(err, dispatch.ErrNoMatch):
		fmt.Fprintln(out, ui.Warning("no command matched"))
	case err != nil:
		fmt.Fprintln(out, ui.Error(err.Error()))
	default:
		writeReply(out, reply)
	}
	return true
}

func (o *rootOptions) scanREPL(ctx context.Context, a *app, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if !o.replLine(ctx, a, out, scanner.Text()) {
			return nil
		}
	}
	return scanner.Err()
}

func (o *rootOptions) interactiveREPL(ctx context.Context, a *app, out io.Writer) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyFile := filepath.Join(filepath.Dir(o.resolvedConfigPath), "repl_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer saveHistory(line, historyFile)

	for {
		input, err := line.Prompt(replPrompt)
		if err != nil {
			// Ctrl-C, Ctrl-D and closed input all end the session.
			if !errors.Is(err, liner.ErrPromptAborted) && !errors.Is(err, io.EOF) {
				return err
			}
			fmt.Fprintln(out)
			return nil
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if !o.replLine(ctx, a, out, input) {
			return nil
		}
	}
}

func saveHistory(line *liner.State, path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = line.WriteHistory(f)
}
