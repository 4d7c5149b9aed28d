package cli

import (
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/scubot/tagbot/internal/dispatch"
)

// levelFlag validates --log-level while flags are parsed.
type levelFlag string

var _ pflag.Value = (*levelFlag)(nil)

func (l *levelFlag) String() string { return string(*l) }

func (l *levelFlag) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	if _, err := log.ParseLevel(s); err != nil {
		return err
	}
	*l = levelFlag(s)
	return nil
}

func (l *levelFlag) Type() string { return "level" }

// modeFlag validates --duplicate-mode while flags are parsed.
type modeFlag string

var _ pflag.Value = (*modeFlag)(nil)

func (m *modeFlag) String() string { return string(*m) }

func (m *modeFlag) Set(s string) error {
	mode, err := dispatch.ParseDuplicateMode(s)
	if err != nil {
		return err
	}
	*m = modeFlag(mode)
	return nil
}

func (m *modeFlag) Type() string { return "mode" }
