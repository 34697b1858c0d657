package compose

import (
	"fmt"
	"strings"

	"github.com/c3mb0/mindset-mcp/pkg/state"
)

// Template is the canned response for a single state.
type Template struct {
	Image   string `json:"image,omitempty" mapstructure:"image"`
	Message string `json:"message" mapstructure:"message"`
}

// Templates holds one Template per state.
type Templates map[state.State]Template

// DefaultTemplates returns the built-in coaching messages. Images are empty
// and are usually discovered from an image directory at startup.
func DefaultTemplates() Templates {
	return Templates{
		state.Overwhelmed: {
			Message: "Pause. You are not behind, you are overloaded. Write down every open loop, " +
				"circle the one that unlocks the most, and give it the next 25 minutes. " +
				"Everything else waits until the timer rings.",
		},
		state.Stuck: {
			Message: "Stuck is a starting problem, not a character problem. Shrink the task until it " +
				"feels almost silly, then do that tiny piece right now. Momentum beats motivation.",
		},
		state.ReadyToAct: {
			Message: "Good. Lock it in while the energy is here. Name the single outcome for the next " +
				"hour, remove one distraction, and start before you talk yourself out of it.",
		},
		state.UnclearDirection: {
			Message: "When direction is unclear, pick the option you can test fastest. Give it one " +
				"focused day, then decide with real information instead of guesses.",
		},
	}
}

// Lookup returns the template for st, falling back to the default state's
// template.
func (t Templates) Lookup(st state.State) Template {
	if tpl, ok := t[st]; ok {
		return tpl
	}
	return t[state.Default]
}

// Merge overlays non-empty fields from overrides onto a copy of t.
func (t Templates) Merge(overrides map[string]Template) (Templates, error) {
	out := make(Templates, len(t))
	for k, v := range t {
		out[k] = v
	}
	for name, o := range overrides {
		st, err := state.Parse(strings.ToLower(name))
		if err != nil {
			return nil, fmt.Errorf("template override: %w", err)
		}
		cur := out[st]
		if o.Message != "" {
			cur.Message = o.Message
		}
		if o.Image != "" {
			cur.Image = o.Image
		}
		out[st] = cur
	}
	return out, nil
}

// Validate checks every state has a non-empty message.
func (t Templates) Validate() error {
	for _, st := range state.All() {
		if strings.TrimSpace(t[st].Message) == "" {
			return fmt.Errorf("template for %s has no message", st)
		}
	}
	return nil
}
