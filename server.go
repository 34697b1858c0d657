package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/c3mb0/mindset-mcp/pkg/coach"
	"github.com/c3mb0/mindset-mcp/pkg/compose"
	"github.com/c3mb0/mindset-mcp/pkg/state"
)

const instructions = "Call mindset_coach with what the user said. Show the returned text to the user " +
	"exactly as written, together with the image when one is returned. Do not summarize, " +
	"reformat or add to the message."

func errorResult(err error) *mcp.CallToolResult {
	errResp := toErrorResponse(err)
	out := mcp.NewToolResultStructured(errResp, errResp.Error)
	out.IsError = true
	return out
}

func wrapHandler[TArgs any, TResult any](h mcp.StructuredToolHandlerFunc[TArgs, TResult], render func(context.Context, TResult) *mcp.CallToolResult) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args TArgs
		if err := req.BindArguments(&args); err != nil {
			return errorResult(fmt.Errorf("%w: %v", ErrInvalidArguments, err)), nil
		}
		res, err := h(ctx, req, args)
		if err != nil {
			return errorResult(err), nil
		}
		return render(ctx, res), nil
	}
}

func wrapStructuredHandler[TArgs any, TResult any](h mcp.StructuredToolHandlerFunc[TArgs, TResult]) server.ToolHandlerFunc {
	return wrapHandler(h, func(_ context.Context, res TResult) *mcp.CallToolResult {
		b, err := json.Marshal(res)
		if err != nil {
			return errorResult(fmt.Errorf("%w: %v", ErrInternal, err))
		}
		return mcp.NewToolResultStructured(res, string(b))
	})
}

// callLogMiddleware tags every tool call with an id and logs its outcome.
func callLogMiddleware(logger *slog.Logger) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			l := logger.With("call_id", uuid.NewString(), "tool", req.Params.Name)
			ctx = withLogger(ctx, l)
			start := time.Now()
			res, err := next(ctx, req)
			switch {
			case err != nil:
				l.Error("tool call failed", "error", err, "elapsed", time.Since(start))
			case res != nil && res.IsError:
				l.Warn("tool call rejected", "elapsed", time.Since(start))
			default:
				l.Debug("tool call served", "elapsed", time.Since(start))
			}
			return res, err
		}
	}
}

func handleCoach(c *coach.Coach) mcp.StructuredToolHandlerFunc[CoachArgs, CoachResult] {
	return func(ctx context.Context, req mcp.CallToolRequest, args CoachArgs) (CoachResult, error) {
		key := resolveSessionKey(ctx, args.SessionID)
		resp := c.Respond(coach.Request{
			Message:    args.Message,
			Goal:       args.Goal,
			Context:    args.Context,
			SessionKey: key,
		})
		loggerFrom(ctx).Info("coached",
			"session", key,
			"state", resp.State,
			"keyword", resp.Keyword,
			"count", resp.InteractionCount,
			"cta", resp.CTA,
		)
		return newCoachResult(resp), nil
	}
}

func handleClassify(c *coach.Coach) mcp.StructuredToolHandlerFunc[ClassifyArgs, ClassifyResult] {
	return func(ctx context.Context, req mcp.CallToolRequest, args ClassifyArgs) (ClassifyResult, error) {
		st, kw := c.Explain(args.Text)
		return ClassifyResult{State: string(st), Keyword: kw}, nil
	}
}

// contentRenderer maps a ContentList onto MCP content. File images are
// embedded as base64 image content; URL images become resource links because
// MCP image content must carry the bytes.
type contentRenderer struct {
	images *imageLibrary
	compat bool
}

// content renders list and reports whether its image item, if any, made it
// into the output.
func (r contentRenderer) content(ctx context.Context, st string, list compose.ContentList) ([]mcp.Content, bool) {
	out := make([]mcp.Content, 0, len(list))
	imaged := false
	for _, it := range list {
		switch it.Type {
		case compose.ItemText:
			out = append(out, mcp.NewTextContent(it.Text))
		case compose.ItemImage:
			if compose.IsURL(it.Ref) {
				out = append(out, mcp.NewResourceLink(it.Ref, st, fmt.Sprintf("Image for the %s state", st), it.MIMEType))
				imaged = true
				continue
			}
			data, err := r.images.Load(it.Ref)
			if err != nil {
				loggerFrom(ctx).Warn("image skipped", "ref", it.Ref, "error", err)
				continue
			}
			out = append(out, mcp.NewImageContent(data, it.MIMEType))
			imaged = true
		}
	}
	return out, imaged
}

func (r contentRenderer) render(ctx context.Context, res CoachResult) *mcp.CallToolResult {
	content, imaged := r.content(ctx, res.State, res.Content)
	if !imaged {
		res.Image = nil
	}
	out := &mcp.CallToolResult{Content: content}
	if !r.compat {
		out.StructuredContent = res
	}
	return out
}

func setupServer(cfg *ServerConfig, c *coach.Coach, images *imageLibrary, logger *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer(serverName, serverVersion,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions(instructions),
		server.WithRecovery(),
		server.WithToolHandlerMiddleware(callLogMiddleware(logger)),
	)

	renderer := contentRenderer{images: images, compat: cfg.Compat}

	coachOpts := []mcp.ToolOption{
		mcp.WithDescription("Classify how the user feels about their work and return a short coaching message to show them verbatim"),
		mcp.WithString("message", mcp.Description("What the user said about how they feel right now")),
		mcp.WithString("goal", mcp.Description("What the user is trying to get done")),
		mcp.WithString("context", mcp.Description("Any extra context about the situation")),
		mcp.WithString("session_id", mcp.Description("Stable caller identifier; defaults to the transport session")),
	}
	if !cfg.Compat {
		coachOpts = append(coachOpts, mcp.WithOutputSchema[CoachResult]())
	}
	s.AddTool(mcp.NewTool(toolCoach, coachOpts...), wrapHandler(handleCoach(c), renderer.render))

	classifyOpts := []mcp.ToolOption{
		mcp.WithDescription("Report which coaching state a piece of text falls into without counting an interaction"),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text to classify")),
	}
	if !cfg.Compat {
		classifyOpts = append(classifyOpts, mcp.WithOutputSchema[ClassifyResult]())
	}
	s.AddTool(mcp.NewTool(toolClassify, classifyOpts...), wrapStructuredHandler(handleClassify(c)))

	registerStateResources(s, c.Templates())
	return s
}

// registerStateResources publishes each state's canned message read-only.
func registerStateResources(s *server.MCPServer, tpls compose.Templates) {
	for _, st := range state.All() {
		uri := stateResourcePrefix + string(st)
		msg := tpls.Lookup(st).Message
		res := mcp.NewResource(uri, string(st),
			mcp.WithResourceDescription(fmt.Sprintf("Coaching message for the %s state", st)),
			mcp.WithMIMEType("text/plain"),
		)
		s.AddResource(res, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			return []mcp.ResourceContents{
				mcp.TextResourceContents{URI: uri, MIMEType: "text/plain", Text: msg},
			}, nil
		})
	}
}

// buildCoach assembles the classifier and composer from configuration.
func buildCoach(cfg *ServerConfig, counter compose.Counter, images *imageLibrary) (*coach.Coach, error) {
	tpls, err := cfg.BuildTemplates()
	if err != nil {
		return nil, err
	}
	if tpls, err = attachImages(tpls, images); err != nil {
		return nil, err
	}
	tiers, err := cfg.Tiers()
	if err != nil {
		return nil, err
	}
	return coach.New(state.NewClassifier(tiers), compose.NewComposer(tpls, counter, cfg.ComposeOptions())), nil
}
