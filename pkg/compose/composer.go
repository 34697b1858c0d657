package compose

import (
	"fmt"
	"strings"

	"github.com/c3mb0/mindset-mcp/pkg/session"
	"github.com/c3mb0/mindset-mcp/pkg/state"
)

// ImageMode controls where a template's image ends up.
type ImageMode string

const (
	ImageItemMode ImageMode = "item"   // separate image content item
	ImageInline   ImageMode = "inline" // markdown appended to the text
	ImageOff      ImageMode = "off"
)

func (m ImageMode) Valid() bool {
	switch m {
	case ImageItemMode, ImageInline, ImageOff:
		return true
	}
	return false
}

// Counter records one interaction for a session key.
type Counter interface {
	Observe(key string, st state.State) session.Session
}

// Options shape the rendered message.
type Options struct {
	Sanitize   bool
	MaxLength  int
	ImageMode  ImageMode
	ImageFirst bool
	Escalation Escalation
}

func DefaultOptions() Options {
	return Options{
		Sanitize:   true,
		ImageMode:  ImageItemMode,
		Escalation: DefaultEscalation(),
	}
}

func (o Options) Validate() error {
	if !o.ImageMode.Valid() {
		return fmt.Errorf("invalid image mode %q", o.ImageMode)
	}
	if o.MaxLength < 0 {
		return fmt.Errorf("max length must not be negative")
	}
	return o.Escalation.Validate()
}

// Result is a composed response.
type Result struct {
	State            state.State
	InteractionCount int
	CTA              CTA
	Content          ContentList
}

// Composer renders the template for a state and applies the session's
// escalation policy. It is the only writer of session counters.
type Composer struct {
	templates Templates
	counter   Counter
	opts      Options
}

func NewComposer(templates Templates, counter Counter, opts Options) *Composer {
	if templates == nil {
		templates = DefaultTemplates()
	}
	if opts.ImageMode == "" {
		opts.ImageMode = ImageItemMode
	}
	return &Composer{templates: templates, counter: counter, opts: opts}
}

// Templates returns the composer's template table.
func (c *Composer) Templates() Templates { return c.templates }

// Compose counts one interaction for sessionKey and builds the response for st.
func (c *Composer) Compose(st state.State, sessionKey string) Result {
	tpl := c.templates.Lookup(st)
	sess := c.counter.Observe(sessionKey, st)

	msg := tpl.Message
	if c.opts.Sanitize {
		msg = Sanitize(msg)
	}
	msg = Truncate(msg, c.opts.MaxLength)

	cta, suffix := c.opts.Escalation.For(sess.InteractionCount)
	if suffix != "" {
		msg = joinSpace(msg, suffix)
	}

	res := Result{State: st, InteractionCount: sess.InteractionCount, CTA: cta}
	if tpl.Image == "" || c.opts.ImageMode == ImageOff {
		res.Content = ContentList{TextItem(msg)}
		return res
	}
	if c.opts.ImageMode == ImageInline {
		res.Content = ContentList{TextItem(joinSpace(msg, fmt.Sprintf("![%s](%s)", st, tpl.Image)))}
		return res
	}
	if c.opts.ImageFirst {
		res.Content = ContentList{ImageItem(tpl.Image), TextItem(msg)}
	} else {
		res.Content = ContentList{TextItem(msg), ImageItem(tpl.Image)}
	}
	return res
}

func joinSpace(a, b string) string {
	a = strings.TrimSpace(a)
	if a == "" {
		return b
	}
	return a + " " + b
}
