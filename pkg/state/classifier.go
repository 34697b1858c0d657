package state

import "strings"

// Tier pairs a state with the keywords that select it.
type Tier struct {
	State    State
	Keywords []string
}

// DefaultTiers is the built-in keyword table. Order is the tie-break: the
// first tier with a matching keyword wins.
var DefaultTiers = []Tier{
	{State: Overwhelmed, Keywords: []string{
		"overwhelm", "too much", "paralyz", "spinning", "can't focus", "cant focus",
		"drowning", "burnt out", "burned out", "so much to do", "stressed out",
	}},
	{State: Stuck, Keywords: []string{
		"stuck", "procrastinat", "avoid", "can't start", "cant start", "scroll",
		"putting off", "keep delaying", "no motivation",
	}},
	{State: ReadyToAct, Keywords: []string{
		"ready", "let's do", "lets do", "start now", "let's go", "lets go",
		"fired up", "i'm in",
	}},
	{State: UnclearDirection, Keywords: []string{
		"unclear", "which", "don't know what", "dont know what", "not sure",
		"confused", "what should i",
	}},
}

// Classifier maps free-form text to a State by ordered substring tests.
type Classifier struct {
	tiers []Tier
}

// NewClassifier builds a classifier over tiers. Keywords are normalized the
// same way input text is; empty keywords are dropped. A nil or empty table
// falls back to DefaultTiers.
func NewClassifier(tiers []Tier) *Classifier {
	if len(tiers) == 0 {
		tiers = DefaultTiers
	}
	c := &Classifier{tiers: make([]Tier, 0, len(tiers))}
	for _, t := range tiers {
		kws := make([]string, 0, len(t.Keywords))
		for _, kw := range t.Keywords {
			if n := Normalize(kw); n != "" {
				kws = append(kws, n)
			}
		}
		c.tiers = append(c.tiers, Tier{State: t.State, Keywords: kws})
	}
	return c
}

// Classify never fails; unmatched, empty or blank text yields Default.
func (c *Classifier) Classify(text string) State {
	st, _ := c.Explain(text)
	return st
}

// Explain returns the chosen state and the keyword that selected it. The
// keyword is empty when the default was used.
func (c *Classifier) Explain(text string) (State, string) {
	norm := Normalize(text)
	if norm == "" {
		return Default, ""
	}
	for _, t := range c.tiers {
		for _, kw := range t.Keywords {
			if strings.Contains(norm, kw) {
				return t.State, kw
			}
		}
	}
	return Default, ""
}

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'")

// Normalize lowercases text, folds typographic apostrophes and collapses
// whitespace runs to a single space.
func Normalize(text string) string {
	text = apostrophes.Replace(strings.ToLower(text))
	return strings.Join(strings.Fields(text), " ")
}
