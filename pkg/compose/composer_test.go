package compose

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c3mb0/mindset-mcp/pkg/session"
	"github.com/c3mb0/mindset-mcp/pkg/state"
)

func newComposer(t *testing.T, tpls Templates, opts Options) *Composer {
	t.Helper()
	store := session.NewStore(session.Config{})
	t.Cleanup(store.Close)
	return NewComposer(tpls, store, opts)
}

func TestComposeFirstCallNoCTA(t *testing.T) {
	c := newComposer(t, nil, DefaultOptions())
	res := c.Compose(state.Overwhelmed, "fresh")

	require.Equal(t, 1, res.InteractionCount)
	assert.Equal(t, CTANone, res.CTA)
	require.Len(t, res.Content, 1)
	assert.Equal(t, Sanitize(DefaultTemplates()[state.Overwhelmed].Message), res.Content.Text())
}

func TestComposeEscalation(t *testing.T) {
	c := newComposer(t, nil, DefaultOptions())
	want := []CTA{CTANone, CTANone, CTASoft, CTASoft, CTAStrong, CTAStrong}
	for i, w := range want {
		res := c.Compose(state.Stuck, "s1")
		require.Equal(t, i+1, res.InteractionCount)
		assert.Equal(t, w, res.CTA, "call %d", i+1)

		text := res.Content.Text()
		switch w {
		case CTANone:
			assert.NotContains(t, text, DefaultSoftCTA)
			assert.NotContains(t, text, DefaultStrongCTA)
		case CTASoft:
			assert.True(t, strings.HasSuffix(text, " "+DefaultSoftCTA))
			assert.NotContains(t, text, DefaultStrongCTA)
		case CTAStrong:
			assert.True(t, strings.HasSuffix(text, " "+DefaultStrongCTA))
			assert.NotContains(t, text, DefaultSoftCTA)
		}
	}
}

func TestComposeSessionsDoNotShareCounters(t *testing.T) {
	c := newComposer(t, nil, DefaultOptions())
	c.Compose(state.Stuck, "a")
	c.Compose(state.Stuck, "a")
	assert.Equal(t, 1, c.Compose(state.Stuck, "b").InteractionCount)
	assert.Equal(t, 3, c.Compose(state.Stuck, "a").InteractionCount)
}

func TestComposeSanitizeThenCap(t *testing.T) {
	tpls := Templates{state.UnclearDirection: {Message: "line one\n\n\n\nline two?"}}
	opts := DefaultOptions()
	opts.MaxLength = 17
	opts.Escalation = Escalation{}
	c := newComposer(t, tpls, opts)

	// sanitized text is exactly 17 runes, so no ellipsis is needed
	res := c.Compose(state.UnclearDirection, "k")
	assert.Equal(t, "line one line two", res.Content.Text())

	opts.Sanitize = false
	c = newComposer(t, tpls, opts)
	text := c.Compose(state.UnclearDirection, "k").Content.Text()
	assert.True(t, strings.HasSuffix(text, Ellipsis))
	assert.LessOrEqual(t, utf8.RuneCountInString(text), 17)
}

func TestComposeFallbackTemplate(t *testing.T) {
	tpls := Templates{state.UnclearDirection: {Message: "fallback"}}
	c := newComposer(t, tpls, Options{ImageMode: ImageOff})
	res := c.Compose(state.ReadyToAct, "k")
	assert.Equal(t, state.ReadyToAct, res.State)
	assert.Equal(t, "fallback", res.Content.Text())
}

func TestComposeImageModes(t *testing.T) {
	tpls := Templates{state.Stuck: {Message: "go", Image: "https://cdn.example.com/stuck.jpg"}}

	c := newComposer(t, tpls, Options{ImageMode: ImageItemMode})
	res := c.Compose(state.Stuck, "k")
	require.Len(t, res.Content, 2)
	assert.Equal(t, ItemText, res.Content[0].Type)
	img, ok := res.Content.Image()
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/stuck.jpg", img.Ref)
	assert.Equal(t, "image/jpeg", img.MIMEType)

	c = newComposer(t, tpls, Options{ImageMode: ImageItemMode, ImageFirst: true})
	res = c.Compose(state.Stuck, "k")
	require.Len(t, res.Content, 2)
	assert.Equal(t, ItemImage, res.Content[0].Type)

	c = newComposer(t, tpls, Options{ImageMode: ImageInline})
	res = c.Compose(state.Stuck, "k")
	require.Len(t, res.Content, 1)
	assert.Equal(t, "go ![stuck](https://cdn.example.com/stuck.jpg)", res.Content.Text())

	c = newComposer(t, tpls, Options{ImageMode: ImageOff})
	res = c.Compose(state.Stuck, "k")
	require.Len(t, res.Content, 1)
	_, ok = res.Content.Image()
	assert.False(t, ok)
}

func TestEscalationFor(t *testing.T) {
	e := Escalation{SoftAt: 3, StrongAt: 5, SoftCTA: "soft", StrongCTA: "strong"}
	for count, want := range map[int]CTA{1: CTANone, 2: CTANone, 3: CTASoft, 4: CTASoft, 5: CTAStrong, 50: CTAStrong} {
		got, _ := e.For(count)
		assert.Equal(t, want, got, "count %d", count)
	}

	softOnly := Escalation{SoftAt: 3, SoftCTA: "soft"}
	got, suffix := softOnly.For(99)
	assert.Equal(t, CTASoft, got)
	assert.Equal(t, "soft", suffix)
}

func TestOptionsValidate(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())

	bad := DefaultOptions()
	bad.ImageMode = "sideways"
	assert.Error(t, bad.Validate())

	bad = DefaultOptions()
	bad.MaxLength = -1
	assert.Error(t, bad.Validate())

	bad = DefaultOptions()
	bad.Escalation.StrongAt = 2
	assert.Error(t, bad.Validate())

	bad = DefaultOptions()
	bad.Escalation.SoftCTA = ""
	assert.Error(t, bad.Validate())
}

func TestTemplatesMerge(t *testing.T) {
	merged, err := DefaultTemplates().Merge(map[string]Template{
		"STUCK": {Image: "stuck.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, "stuck.png", merged[state.Stuck].Image)
	assert.Equal(t, DefaultTemplates()[state.Stuck].Message, merged[state.Stuck].Message)
	assert.NoError(t, merged.Validate())

	_, err = DefaultTemplates().Merge(map[string]Template{"bored": {Message: "x"}})
	assert.Error(t, err)

	assert.Error(t, Templates{state.Stuck: {Message: "x"}}.Validate())
}
