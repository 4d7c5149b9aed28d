// Package bot implements the tag commands on top of the dispatch router.
//
// The bot registers its routes once at construction and afterwards only
// dispatches. Its route set contains literal-distinct routes of the same
// shape ("tag remove <name>" and "tag owner <name>"), so it needs a
// registry in dispatch.DuplicateModeExact.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/scubot/tagbot/internal/dispatch"
	"github.com/scubot/tagbot/internal/shellquote"
	"github.com/scubot/tagbot/internal/tags"
)

// DefaultPrefix is the command word every tag command starts with.
const DefaultPrefix = "tag"

// DefaultPageSize is the number of tags per list page.
const DefaultPageSize = 6

// protectedNames cannot be used as tag names because they are subcommands.
var protectedNames = map[string]bool{
	"new":    true,
	"edit":   true,
	"remove": true,
	"owner":  true,
	"list":   true,
	"help":   true,
}

// Store is the tag persistence the bot needs.
type Store interface {
	Get(ctx context.Context, name string) (tags.Tag, error)
	Create(ctx context.Context, t tags.Tag) error
	UpdateContent(ctx context.Context, name, content string) error
	Remove(ctx context.Context, name string) error
	List(ctx context.Context, offset, limit int) ([]tags.Tag, error)
	Count(ctx context.Context) (int, error)
}

// Reply is what the bot sends back for a handled message.
type Reply struct {
	Text string `json:"text"`
	// Markdown is set when Text is user-authored content to render as markdown.
	Markdown bool `json:"markdown,omitempty"`
}

// Options configures a Bot.
type Options struct {
	Prefix   string
	PageSize int
	Logger   *log.Logger
}

// Bot answers tag commands.
type Bot struct {
	store    Store
	registry *dispatch.Registry
	prefix   string
	pageSize int
	logger   *log.Logger
}

// New registers the tag routes on registry.
func New(store Store, registry *dispatch.Registry, opts Options) (*Bot, error) {
	b := &Bot{
		store:    store,
		registry: registry,
		prefix:   opts.Prefix,
		pageSize: opts.PageSize,
		logger:   opts.Logger,
	}
	if b.prefix == "" {
		b.prefix = DefaultPrefix
	}
	if b.pageSize <= 0 {
		b.pageSize = DefaultPageSize
	}
	if b.logger == nil {
		b.logger = log.Default()
	}

	list := dispatch.NewHandlerFunc(dispatch.Params{Optional: []string{"page"}}, b.list)
	routes := []struct {
		template string
		handler  dispatch.Handler
	}{
		{"list", list},
		{"list <page:int>", list},
		{"help", dispatch.NewHandlerFunc(dispatch.Params{}, b.help)},
		{"<name>", dispatch.NewHandlerFunc(dispatch.Required("name"), b.show)},
		{"new <name> <content>", dispatch.NewHandlerFunc(dispatch.Required("name", "content"), b.create)},
		{"edit <name> <content>", dispatch.NewHandlerFunc(dispatch.Required("name", "content"), b.edit)},
		{"remove <name>", dispatch.NewHandlerFunc(dispatch.Required("name"), b.remove)},
		{"owner <name>", dispatch.NewHandlerFunc(dispatch.Required("name"), b.owner)},
	}

	head := shellquote.QuoteIfNeeded(b.prefix)
	for _, r := range routes {
		tmpl := head + " " + r.template
		if err := registry.Register(tmpl, r.handler); err != nil {
			return nil, fmt.Errorf("register %q: %w", tmpl, err)
		}
	}
	return b, nil
}

// Registry returns the router the bot registered on.
func (b *Bot) Registry() *dispatch.Registry {
	return b.registry
}

// Handle dispatches one message. Messages that do not start with the
// prefix are not for the bot and return dispatch.ErrNoMatch; prefixed
// messages that match no route get the usage text.
func (b *Bot) Handle(ctx context.Context, message string) (Reply, error) {
	res, err := b.registry.Dispatch(ctx, message)
	if errors.Is(err, dispatch.ErrNoMatch) {
		if b.addressed(message) {
			return Reply{Text: "[!] Unrecognized tag command.\n" + b.usage()}, nil
		}
		return Reply{}, err
	}
	if err != nil {
		return Reply{}, err
	}

	reply, ok := res.(Reply)
	if !ok {
		return Reply{}, fmt.Errorf("bot: handler returned %T", res)
	}
	return reply, nil
}

func (b *Bot) addressed(message string) bool {
	words, err := shellquote.Split(message)
	if err != nil {
		fields := strings.Fields(message)
		return len(fields) > 0 && fields[0] == b.prefix
	}
	return len(words) > 0 && words[0] == b.prefix
}

func (b *Bot) usage() string {
	p := b.prefix
	return strings.Join([]string{
		"Usage:",
		fmt.Sprintf("  %s <name>", p),
		fmt.Sprintf("  %s new <name> \"<content>\"", p),
		fmt.Sprintf("  %s edit <name> \"<content>\"", p),
		fmt.Sprintf("  %s remove <name>", p),
		fmt.Sprintf("  %s owner <name>", p),
		fmt.Sprintf("  %s list [page]", p),
	}, "\n")
}

func (b *Bot) help(context.Context, dispatch.Args) (any, error) {
	return Reply{Text: b.usage()}, nil
}
