package compose

import "fmt"

// CTA names which call-to-action, if any, was appended.
type CTA string

const (
	CTANone   CTA = "none"
	CTASoft   CTA = "soft"
	CTAStrong CTA = "strong"
)

const (
	DefaultSoftAt    = 3
	DefaultStrongAt  = 5
	DefaultSoftCTA   = "If this is helping, the full Elite Mindset program walks you through this every day."
	DefaultStrongCTA = "You keep showing up. Join the Elite Mindset program now and get a coach in your corner."
)

// Escalation decides the CTA from a session's interaction count. A threshold
// of zero disables that tier. The strong tier replaces the soft one.
type Escalation struct {
	SoftAt    int    `mapstructure:"soft_at"`
	StrongAt  int    `mapstructure:"strong_at"`
	SoftCTA   string `mapstructure:"soft_cta"`
	StrongCTA string `mapstructure:"strong_cta"`
}

func DefaultEscalation() Escalation {
	return Escalation{
		SoftAt:    DefaultSoftAt,
		StrongAt:  DefaultStrongAt,
		SoftCTA:   DefaultSoftCTA,
		StrongCTA: DefaultStrongCTA,
	}
}

// For returns the tier and suffix for count.
func (e Escalation) For(count int) (CTA, string) {
	switch {
	case e.StrongAt > 0 && count >= e.StrongAt:
		return CTAStrong, e.StrongCTA
	case e.SoftAt > 0 && count >= e.SoftAt:
		return CTASoft, e.SoftCTA
	}
	return CTANone, ""
}

func (e Escalation) Validate() error {
	if e.SoftAt < 0 || e.StrongAt < 0 {
		return fmt.Errorf("escalation thresholds must not be negative")
	}
	if e.SoftAt > 0 && e.StrongAt > 0 && e.StrongAt <= e.SoftAt {
		return fmt.Errorf("strong threshold %d must be above soft threshold %d", e.StrongAt, e.SoftAt)
	}
	if e.SoftAt > 0 && e.SoftCTA == "" {
		return fmt.Errorf("soft CTA text is required when soft_at is set")
	}
	if e.StrongAt > 0 && e.StrongCTA == "" {
		return fmt.Errorf("strong CTA text is required when strong_at is set")
	}
	return nil
}
