// Package mcpserver exposes the job advisor as MCP tools over stdio.
package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/spigell/job-advisor/internal/catalog"
	"github.com/spigell/job-advisor/internal/dialogue"
	"github.com/spigell/job-advisor/internal/matching"
	"github.com/spigell/job-advisor/internal/profile"
)

// Deps are the components the tools call into.
type Deps struct {
	Manager    *dialogue.Manager
	Catalog    *catalog.Catalog
	Ranker     dialogue.Ranker
	Normalizer *profile.Normalizer
	Show       int
	Logger     *zap.Logger
}

// Server holds the tool handlers.
type Server struct {
	deps Deps
	mcp  *server.MCPServer
}

// New registers every tool on a fresh MCP server.
func New(name, version string, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Normalizer == nil {
		deps.Normalizer = profile.NewNormalizer(nil)
	}

	s := &Server{deps: deps, mcp: server.NewMCPServer(name, version)}

	s.mcp.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start a conversation with the job advisor and return its session id and greeting"),
	), s.startSession)

	s.mcp.AddTool(mcp.NewTool("send_message",
		mcp.WithDescription("Send a user message to a conversation and return the advisor reply"),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Id returned by start_session")),
		mcp.WithString("message", mcp.Required(), mcp.Description("The user's message")),
	), s.sendMessage)

	s.mcp.AddTool(mcp.NewTool("list_jobs",
		mcp.WithDescription("List every job in the catalog"),
	), s.listJobs)

	s.mcp.AddTool(mcp.NewTool("match_jobs",
		mcp.WithDescription("Rank the catalog for a profile without a conversation"),
		mcp.WithString("qualification", mcp.Description("Qualification, e.g. bachelors; empty for none")),
		mcp.WithString("skills", mcp.Description("Comma separated skills")),
		mcp.WithString("fields", mcp.Description("Comma separated fields of interest")),
		mcp.WithString("min_salary", mcp.Description("Minimum salary; 'skip' or empty for none")),
		mcp.WithNumber("show", mcp.Description("How many matches to return; 0 for all")),
	), s.matchJobs)

	return s
}

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// ServeStdio blocks serving requests on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.deps.Logger.Info("serving mcp over stdio")
	return server.ServeStdio(s.mcp)
}

type sessionReply struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
	Ended     bool   `json:"ended"`
}

func (s *Server) startSession(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, greeting := s.deps.Manager.Start()
	return mcp.NewToolResultJSON(sessionReply{SessionID: id, Reply: greeting})
}

func (s *Server) sendMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	reply, ended, err := s.deps.Manager.Handle(ctx, id, message)
	if errors.Is(err, dialogue.ErrSessionNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown session %q; call start_session first", id)), nil
	}
	if err != nil {
		s.deps.Logger.Error("handling message", zap.String("session_id", id), zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("Failed to handle message: %v", err)), nil
	}

	return mcp.NewToolResultJSON(sessionReply{SessionID: id, Reply: reply, Ended: ended})
}

func (s *Server) listJobs(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(s.deps.Catalog.ListAll())
}

func (s *Server) matchJobs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p := profile.UserProfile{
		Qualification: s.deps.Normalizer.Qualification(request.GetString("qualification", "")),
		Skills:        s.deps.Normalizer.List(request.GetString("skills", "")),
		Fields:        s.deps.Normalizer.List(request.GetString("fields", "")),
		MinSalary:     profile.ParseSalary(request.GetString("min_salary", "")),
	}

	results, err := s.deps.Ranker.Rank(ctx, p, s.deps.Catalog.ListAll())
	if err != nil {
		s.deps.Logger.Error("ranking jobs", zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("Failed to rank jobs: %v", err)), nil
	}

	show := request.GetInt("show", s.deps.Show)
	return mcp.NewToolResultJSON(matching.Top(results, show))
}
