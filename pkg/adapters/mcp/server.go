package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/calcpad"
	"github.com/aretw0/calcpad/internal/logging"
	"github.com/aretw0/calcpad/pkg/domain"
	"github.com/aretw0/calcpad/pkg/ports"
	"github.com/aretw0/calcpad/pkg/runner"
	"github.com/aretw0/calcpad/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DefaultSession is used when a tool call names no session.
const DefaultSession = "default"

// SessionResponse is the structured result of every calculator tool.
type SessionResponse struct {
	Session  string               `json:"session" jsonschema_description:"The calculator session"`
	Main     string               `json:"main" jsonschema_description:"The main display line"`
	Sub      string               `json:"sub" jsonschema_description:"The expression line"`
	History  []domain.HistoryItem `json:"history" jsonschema_description:"Past calculations, newest first"`
	Rejected string               `json:"rejected,omitempty" jsonschema_description:"Why the last key was rejected, if it was"`
}

// PressArgs are the arguments of the press tool.
type PressArgs struct {
	Session string `json:"session,omitempty"`
	Keys    string `json:"keys"`
}

// SessionArgs are the arguments of tools that only name a session.
type SessionArgs struct {
	Session string `json:"session,omitempty"`
}

// SelectArgs are the arguments of the select_history tool.
type SelectArgs struct {
	Session string `json:"session,omitempty"`
	Index   int    `json:"index"`
}

// ClearArgs are the arguments of the clear_history tool.
type ClearArgs struct {
	Session string `json:"session,omitempty"`
	Confirm bool   `json:"confirm"`
}

// Server exposes calculator sessions as MCP tools.
//
// The session manager should build calculators with
// calcpad.WithConfirmer(ports.ContextConfirmer) so that the confirm
// argument of clear_history is honored.
type Server struct {
	sessions  *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		mcpServer: server.NewMCPServer("calcpad-mcp", strings.TrimSpace(calcpad.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	sessionArg := mcp.WithString("session", mcp.Description("Calculator session ID (default: \"default\")"))

	s.mcpServer.AddTool(mcp.NewTool("press",
		mcp.WithDescription("Press calculator keys. Digits, '.', + - * / % x, '=' (equals), '<' (delete), words such as 'clear' or 'del', and '#N' to recall history entry N."),
		sessionArg,
		mcp.WithString("keys", mcp.Required(), mcp.Description("Keys to press, e.g. \"12+3=\"")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handlePress))

	s.mcpServer.AddTool(mcp.NewTool("history",
		mcp.WithDescription("Show the calculator display and its history, newest first."),
		sessionArg,
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleHistory))

	s.mcpServer.AddTool(mcp.NewTool("select_history",
		mcp.WithDescription("Load a past result into the display. Index 0 is the newest entry."),
		sessionArg,
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based history position")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleSelect))

	s.mcpServer.AddTool(mcp.NewTool("clear_history",
		mcp.WithDescription("Delete every history entry. Nothing happens unless confirm is true."),
		sessionArg,
		mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Set to true to approve the deletion")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleClear))
}

func (s *Server) handlePress(ctx context.Context, _ mcp.CallToolRequest, args PressArgs) (SessionResponse, error) {
	id := sessionID(args.Session)
	calc, err := s.sessions.Open(ctx, id)
	if err != nil {
		return SessionResponse{}, err
	}

	clean, err := runner.CleanKeys(args.Keys)
	if err != nil {
		s.logger.Warn("press rejected", "err", err, "size", len(args.Keys))
		return SessionResponse{}, fmt.Errorf("input rejected: %w", err)
	}
	intents, err := runner.ParseLine(clean)
	if err != nil {
		return SessionResponse{}, err
	}

	resp := SessionResponse{Session: id}
	if _, err := s.sessions.Dispatch(ctx, id, intents...); err != nil {
		resp.Rejected = err.Error()
	}
	return fill(resp, calc), nil
}

func (s *Server) handleHistory(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (SessionResponse, error) {
	id := sessionID(args.Session)
	calc, err := s.sessions.Open(ctx, id)
	if err != nil {
		return SessionResponse{}, err
	}
	return fill(SessionResponse{Session: id}, calc), nil
}

func (s *Server) handleSelect(ctx context.Context, _ mcp.CallToolRequest, args SelectArgs) (SessionResponse, error) {
	return s.dispatch(ctx, args.Session, domain.SelectHistoryIntent(args.Index))
}

func (s *Server) handleClear(ctx context.Context, _ mcp.CallToolRequest, args ClearArgs) (SessionResponse, error) {
	return s.dispatch(ports.WithApproval(ctx, args.Confirm), args.Session, domain.ClearHistoryIntent())
}

func (s *Server) dispatch(ctx context.Context, session string, intent domain.Intent) (SessionResponse, error) {
	id := sessionID(session)
	calc, err := s.sessions.Open(ctx, id)
	if err != nil {
		return SessionResponse{}, err
	}
	if _, err := s.sessions.Dispatch(ctx, id, intent); err != nil {
		return SessionResponse{}, err
	}
	return fill(SessionResponse{Session: id}, calc), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("calcpad://sessions", "Open calculator sessions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.sessions.List())
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "calcpad://sessions",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

func fill(resp SessionResponse, calc *calcpad.Calculator) SessionResponse {
	snap := calc.Snapshot()
	resp.Main = snap.Main
	resp.Sub = snap.Sub
	resp.History = calc.History()
	if resp.History == nil {
		resp.History = []domain.HistoryItem{}
	}
	return resp
}

func sessionID(id string) string {
	if id == "" {
		return DefaultSession
	}
	return id
}
