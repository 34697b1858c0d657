package main

import (
	"github.com/c3mb0/mindset-mcp/pkg/coach"
	"github.com/c3mb0/mindset-mcp/pkg/compose"
)

// CoachArgs defines parameters for the coaching tool
type CoachArgs struct {
	Message   string `json:"message,omitempty" description:"What the user said about how they feel right now"`
	Goal      string `json:"goal,omitempty" description:"What the user is trying to get done"`
	Context   string `json:"context,omitempty" description:"Any extra context about the situation"`
	SessionID string `json:"session_id,omitempty" description:"Stable caller identifier used for follow-up counting"`
}

// ImageRef describes the image attached to a reply
type ImageRef struct {
	Ref      string `json:"ref" description:"Image URL or file identifier"`
	MIMEType string `json:"mime_type" description:"Image media type"`
}

// CoachResult contains the composed coaching reply
type CoachResult struct {
	State            string    `json:"state" description:"Classified state: overwhelmed, stuck, ready_to_act or unclear_direction"`
	InteractionCount int       `json:"interaction_count" description:"Replies served to this session so far, including this one"`
	CTA              string    `json:"cta" description:"Call-to-action tier appended: none, soft or strong"`
	Text             string    `json:"text" description:"Message to show the user verbatim"`
	Image            *ImageRef `json:"image,omitempty" description:"Image to show alongside the message"`

	Content compose.ContentList `json:"-"`
}

func newCoachResult(resp coach.Response) CoachResult {
	res := CoachResult{
		State:            string(resp.State),
		InteractionCount: resp.InteractionCount,
		CTA:              string(resp.CTA),
		Text:             resp.Content.Text(),
		Content:          resp.Content,
	}
	if img, ok := resp.Content.Image(); ok {
		res.Image = &ImageRef{Ref: img.Ref, MIMEType: img.MIMEType}
	}
	return res
}

// ClassifyArgs defines parameters for the classify-only tool
type ClassifyArgs struct {
	Text string `json:"text" description:"Text to classify"`
}

// ClassifyResult reports the chosen state and the keyword that selected it
type ClassifyResult struct {
	State   string `json:"state"`
	Keyword string `json:"keyword,omitempty" description:"Matched keyword; empty when the default state was used"`
}
