package cmd

import (
	"fmt"
	"strings"

	"github.com/marcus/notif/internal/selection"
	"github.com/marcus/notif/internal/suggest"
	"github.com/spf13/pflag"
)

// modeValue is the --mode flag. It records whether it was set so commands can
// tell "--mode mute" from no mode at all.
type modeValue struct {
	mode selection.Mode
	set  bool
}

var _ pflag.Value = (*modeValue)(nil)

func (v *modeValue) String() string {
	if !v.set {
		return ""
	}
	return v.mode.String()
}

func (v *modeValue) Set(s string) error {
	m, err := selection.ParseMode(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		if matches := suggest.Command(s, []string{"mute", "default", "custom"}); len(matches) > 0 {
			return fmt.Errorf("%w (did you mean %s?)", err, matches[0])
		}
		return err
	}
	v.mode = m
	v.set = true
	return nil
}

func (v *modeValue) Type() string {
	return "mode"
}
