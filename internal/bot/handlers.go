package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/scubot/tagbot/internal/dispatch"
	"github.com/scubot/tagbot/internal/tags"
)

const (
	msgNotFound     = "[!] This tag does not exist."
	msgMissing      = "[!] The tag doesn't exist."
	msgProtected    = "[!] The tag you are trying to create is a protected name."
	msgNoContent    = "[!] No content specified?"
	msgExists       = "[!] This tag already exists."
	msgNoPermission = "[!] You do not have permission to edit this."
	msgNoCaller     = "[!] Could not tell who sent this command."
	msgAdded        = "[:ok_hand:] Tag added."
	msgUpdated      = "[:ok_hand:] Tag updated."
	msgRemoved      = "[:ok_hand:] Tag removed."
)

func (b *Bot) show(ctx context.Context, args dispatch.Args) (any, error) {
	t, err := b.store.Get(ctx, args.String("name"))
	if errors.Is(err, tags.ErrTagNotFound) {
		return Reply{Text: msgNotFound}, nil
	}
	if err != nil {
		return nil, err
	}
	return Reply{Text: t.Content, Markdown: true}, nil
}

func (b *Bot) create(ctx context.Context, args dispatch.Args) (any, error) {
	caller, ok := CallerFrom(ctx)
	if !ok {
		return Reply{Text: msgNoCaller}, nil
	}
	name, content := args.String("name"), args.String("content")
	if protectedNames[name] {
		return Reply{Text: msgProtected}, nil
	}
	if strings.TrimSpace(content) == "" {
		return Reply{Text: msgNoContent}, nil
	}

	err := b.store.Create(ctx, tags.Tag{
		Name:      name,
		Content:   content,
		OwnerID:   caller.ID,
		OwnerName: caller.DisplayName(),
	})
	if errors.Is(err, tags.ErrTagExists) {
		return Reply{Text: msgExists}, nil
	}
	if err != nil {
		return nil, err
	}

	b.logger.Info("tag created", "tag", name, "owner", caller.ID)
	return Reply{Text: msgAdded}, nil
}

// owned loads name and checks that the caller owns it. It returns a
// non-empty refusal when the caller may not mutate the tag.
func (b *Bot) owned(ctx context.Context, name string) (tags.Tag, string, error) {
	caller, ok := CallerFrom(ctx)
	if !ok {
		return tags.Tag{}, msgNoCaller, nil
	}
	t, err := b.store.Get(ctx, name)
	if errors.Is(err, tags.ErrTagNotFound) {
		return tags.Tag{}, msgMissing, nil
	}
	if err != nil {
		return tags.Tag{}, "", err
	}
	if t.OwnerID != caller.ID {
		return tags.Tag{}, msgNoPermission, nil
	}
	return t, "", nil
}

func (b *Bot) edit(ctx context.Context, args dispatch.Args) (any, error) {
	name, content := args.String("name"), args.String("content")
	if strings.TrimSpace(content) == "" {
		return Reply{Text: msgNoContent}, nil
	}
	_, refusal, err := b.owned(ctx, name)
	if err != nil {
		return nil, err
	}
	if refusal != "" {
		return Reply{Text: refusal}, nil
	}

	if err := b.store.UpdateContent(ctx, name, content); err != nil {
		if errors.Is(err, tags.ErrTagNotFound) {
			return Reply{Text: msgMissing}, nil
		}
		return nil, err
	}
	b.logger.Info("tag updated", "tag", name)
	return Reply{Text: msgUpdated}, nil
}

func (b *Bot) remove(ctx context.Context, args dispatch.Args) (any, error) {
	name := args.String("name")
	_, refusal, err := b.owned(ctx, name)
	if err != nil {
		return nil, err
	}
	if refusal != "" {
		return Reply{Text: refusal}, nil
	}

	if err := b.store.Remove(ctx, name); err != nil {
		if errors.Is(err, tags.ErrTagNotFound) {
			return Reply{Text: msgMissing}, nil
		}
		return nil, err
	}
	b.logger.Info("tag removed", "tag", name)
	return Reply{Text: msgRemoved}, nil
}

func (b *Bot) owner(ctx context.Context, args dispatch.Args) (any, error) {
	t, err := b.store.Get(ctx, args.String("name"))
	if errors.Is(err, tags.ErrTagNotFound) {
		return Reply{Text: msgMissing}, nil
	}
	if err != nil {
		return nil, err
	}
	owner := t.OwnerName
	if owner == "" {
		owner = t.OwnerID
	}
	return Reply{Text: fmt.Sprintf("This tag was created by: **%s**", owner)}, nil
}

func (b *Bot) list(ctx context.Context, args dispatch.Args) (any, error) {
	page := 1
	if args.Has("page") {
		page = args.Int("page")
	}
	if page < 1 {
		return Reply{Text: "[!] Page numbers start at 1."}, nil
	}

	total, err := b.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return Reply{Text: "No tags yet."}, nil
	}
	pages := (total + b.pageSize - 1) / b.pageSize
	if page > pages {
		return Reply{Text: fmt.Sprintf("[!] There are only %d pages.", pages)}, nil
	}

	items, err := b.store.List(ctx, (page-1)*b.pageSize, b.pageSize)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "List of tags (page %d/%d)\n", page, pages)
	for _, t := range items {
		owner := t.OwnerName
		if owner == "" {
			owner = "N/A"
		}
		fmt.Fprintf(&sb, "%s (%s)\n", t.Name, owner)
	}
	return Reply{Text: strings.TrimRight(sb.String(), "\n")}, nil
}
