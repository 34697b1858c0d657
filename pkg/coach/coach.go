// Package coach wires the classifier and composer into the single
// classify-and-respond operation exposed by the server.
package coach

import (
	"strings"

	"github.com/c3mb0/mindset-mcp/pkg/compose"
	"github.com/c3mb0/mindset-mcp/pkg/state"
)

// Request is the caller's payload after transport decoding.
type Request struct {
	Message    string
	Goal       string
	Context    string
	SessionKey string
}

// Text joins the non-empty request fields in message, goal, context order.
func (r Request) Text() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{r.Message, r.Goal, r.Context} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Response is a composed reply plus the keyword that drove classification.
type Response struct {
	compose.Result
	Keyword string
}

type Coach struct {
	classifier *state.Classifier
	composer   *compose.Composer
}

func New(classifier *state.Classifier, composer *compose.Composer) *Coach {
	return &Coach{classifier: classifier, composer: composer}
}

// Respond classifies the request text and composes the reply for its session.
func (c *Coach) Respond(req Request) Response {
	st, kw := c.classifier.Explain(req.Text())
	return Response{Result: c.composer.Compose(st, req.SessionKey), Keyword: kw}
}

// Explain classifies text without touching any session.
func (c *Coach) Explain(text string) (state.State, string) {
	return c.classifier.Explain(text)
}

// ClassifyAndRespond is Respond for callers that only have text and a key.
func (c *Coach) ClassifyAndRespond(userText, sessionKey string) compose.ContentList {
	return c.Respond(Request{Message: userText, SessionKey: sessionKey}).Content
}

// Templates exposes the canned messages for read-only catalogs.
func (c *Coach) Templates() compose.Templates {
	return c.composer.Templates()
}
