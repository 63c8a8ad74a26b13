package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/jorf-reader/internal/config"
	"github.com/a3tai/jorf-reader/internal/descriptions"
	"github.com/a3tai/jorf-reader/internal/lookup"
	"github.com/a3tai/jorf-reader/internal/service"
)

const defaultSearchLimit = 10

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	service   *service.Service
	mcpServer *server.MCPServer
	tools     []toolInfo
}

type toolInfo struct {
	name, description string
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, svc *service.Service) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if svc == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:    cfg,
		service:   svc,
		mcpServer: mcpServer,
	}
	s.registerTools()
	return s, nil
}

func (s *Server) addTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	s.mcpServer.AddTool(tool, handler)
	s.tools = append(s.tools, toolInfo{name: tool.Name, description: descriptions.Summary(tool.Name)})
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	s.addTool(mcp.NewTool(
		"jorf_search_person",
		mcp.WithDescription(descriptions.GetToolDescription("jorf_search_person")),
		mcp.WithString("last_name",
			mcp.Required(),
			mcp.Description("Last name or part of it, case-insensitive"),
		),
		mcp.WithString("first_name",
			mcp.Description("First name or part of it, case-insensitive"),
		),
		mcp.WithString("series",
			mcp.Description("Series code from the dossier number (e.g. 027); all series are searched when empty"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of matches (default 10)"),
		),
	), s.handleSearchPerson)

	s.addTool(mcp.NewTool(
		"jorf_process_folder",
		mcp.WithDescription(descriptions.GetToolDescription("jorf_process_folder")),
		mcp.WithString("directory",
			mcp.Description("Folder with the JOs PDFs (uses default if empty)"),
		),
		mcp.WithString("series",
			mcp.Description("Series code to record (uses default if empty)"),
		),
		mcp.WithBoolean("force",
			mcp.Description("Re-read documents already processed for the series"),
		),
	), s.handleProcessFolder)

	s.addTool(mcp.NewTool(
		"jorf_series_stats",
		mcp.WithDescription(descriptions.GetToolDescription("jorf_series_stats")),
		mcp.WithBoolean("all",
			mcp.Description("Include series with no data"),
		),
	), s.handleSeriesStats)

	s.addTool(mcp.NewTool(
		"jorf_list_decrees",
		mcp.WithDescription(descriptions.GetToolDescription("jorf_list_decrees")),
		mcp.WithString("series",
			mcp.Description("Series code (uses default if empty)"),
		),
	), s.handleListDecrees)

	s.addTool(mcp.NewTool(
		"jorf_server_info",
		mcp.WithDescription(descriptions.GetToolDescription("jorf_server_info")),
	), s.handleServerInfo)
}

// Handler functions
func (s *Server) handleSearchPerson(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	last, err := request.RequireString("last_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	args := request.GetArguments()

	q := lookup.Query{
		FirstName: stringArg(args, "first_name"),
		LastName:  last,
	}
	if series := stringArg(args, "series"); series != "" {
		if !config.IsValidSeries(series) {
			return mcp.NewToolResultError(fmt.Sprintf("invalid series %q: must be 000 to 054 or 300 to 305", series)), nil
		}
		q.Series, q.SeriesKnown = series, true
	}

	limit := intArg(args, "limit", defaultSearchLimit)
	persons := s.service.Find(q, limit)
	if len(persons) == 0 {
		return mcp.NewToolResultText(lookup.NotFoundMessage), nil
	}

	text := fmt.Sprintf("Found %d match(es)\n", len(persons))
	for i, p := range persons {
		text += fmt.Sprintf("\n%d. %s\n", i+1, p.Name)
		text += fmt.Sprintf("   Series: %s\n", p.Series)
		if p.Dossier != "" {
			text += fmt.Sprintf("   Dossier: %s\n", p.Dossier)
		}
		text += fmt.Sprintf("   Decree date: %s\n", p.Date)
		text += fmt.Sprintf("   Department: %s\n", p.Dep)
		text += fmt.Sprintf("   Country: %s\n", p.Country)
		if p.BirthPlace != "" {
			text += fmt.Sprintf("   Birth place: %s\n", p.BirthPlace)
		}
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleProcessFolder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	result, err := s.service.ProcessFolder(ctx,
		stringArg(args, "directory"),
		stringArg(args, "series"),
		boolArg(args, "force"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(s.formatBatchResult(result)), nil
}

func (s *Server) handleSeriesStats(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats := s.service.Stats(boolArg(request.GetArguments(), "all"))

	text := "Series Statistics\n"
	text += fmt.Sprintf("Total persons: %s\n", humanize.Comma(int64(stats.TotalPersons)))
	text += fmt.Sprintf("Cached decree windows: %d\n", stats.CachedWindows)
	if len(stats.Series) == 0 {
		text += "\nNo series has been processed yet\n"
		return mcp.NewToolResultText(text), nil
	}
	text += "\n"
	for _, st := range stats.Series {
		text += fmt.Sprintf("%s: %s person(s), %d decree(s)\n", st.Series, humanize.Comma(int64(st.Persons)), st.Decrees)
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleListDecrees(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	series := stringArg(request.GetArguments(), "series")
	if series == "" {
		series = s.service.Series()
	}
	decrees := s.service.Decrees(series)
	if len(decrees) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No decree processed for series %s", series)), nil
	}

	text := fmt.Sprintf("Found %d decree(s) for series %s\n\n", len(decrees), series)
	for i, d := range decrees {
		text += fmt.Sprintf("%d. %s\n", i+1, d.Date)
		text += fmt.Sprintf("   Path: %s\n", d.Path)
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleServerInfo(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := fmt.Sprintf("%s v%s - Server Information\n", s.config.ServerName, s.config.Version)
	text += fmt.Sprintf("JOs folder: %s\n", s.service.Dir())
	text += fmt.Sprintf("Default series: %s\n", s.service.Series())
	text += fmt.Sprintf("Dossier year token: %s\n", s.service.YearToken())
	text += fmt.Sprintf("State store: %s\n", s.service.StoreDescription())
	text += fmt.Sprintf("Max file size: %s\n", humanize.Bytes(uint64(s.config.MaxFileSize)))

	text += "\nAvailable Tools:\n"
	for _, tool := range s.tools {
		text += fmt.Sprintf("• %s: %s\n", tool.name, tool.description)
	}
	return mcp.NewToolResultText(text), nil
}

// Formatting methods
func (s *Server) formatBatchResult(result *service.BatchResult) string {
	text := fmt.Sprintf("Processed series %s (run %s)\n", result.Series, result.RunID)
	text += fmt.Sprintf("New documents: %d\n", result.Processed())
	text += fmt.Sprintf("Already processed: %d\n", len(result.Documents)-result.Processed())
	text += fmt.Sprintf("Persons recorded: %s\n", humanize.Comma(int64(result.Persons())))
	text += fmt.Sprintf("Failed documents: %d\n", result.Failed)

	var lines []string
	for _, d := range result.Documents {
		if d.AlreadyProcessed {
			continue
		}
		lines = append(lines, fmt.Sprintf("  %s: %d person(s), %s total", d.Date, d.Persons, humanize.Comma(int64(d.SeriesTotal))))
	}
	if len(lines) > 0 {
		text += "\nDocuments:\n" + strings.Join(lines, "\n") + "\n"
	}

	if len(result.Errors.Errors) > 0 {
		text += "\nErrors:\n"
		for _, e := range result.Errors.Errors {
			text += fmt.Sprintf("  %s\n", e.Error())
		}
	}
	return text
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func boolArg(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}

func intArg(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		if v >= 1 {
			return int(v)
		}
	case int:
		if v >= 1 {
			return v
		}
	}
	return def
}

// Run serves the tools over stdio until the client disconnects
func (s *Server) Run(_ context.Context) error {
	slog.Debug("Starting JORF MCP server in stdio mode",
		"dir", s.service.Dir(),
		"series", s.service.Series(),
		"store", s.service.StoreDescription())

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
