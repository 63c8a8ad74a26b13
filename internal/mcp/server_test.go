package mcp

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/a3tai/jorf-reader/internal/config"
	"github.com/a3tai/jorf-reader/internal/lookup"
	"github.com/a3tai/jorf-reader/internal/service"
	"github.com/a3tai/jorf-reader/internal/store"
)

const masthead = "JOURNAL OFFICIEL DE LA RÉPUBLIQUE FRANÇAISE"

type pages [][]string

func (p pages) NumPage() int                          { return len(p) }
func (p pages) PageFragments(n int) ([]string, error) { return p[n-1], nil }
func (p pages) Close() error                          { return nil }

var issues = map[string]pages{
	"joe_20200317.pdf": {
		{"Mardi 17 mars 2020 / " + masthead, "Naturalisations et réintégrations", "Décret du 12 mars 2020 portant naturalisation"},
		{masthead, "Décret du 12 mars 2020 portant naturalisation NOR : INTN2000001D", "Sont naturalisés français :",
			"DUPONT (Jean), né le 01/01/1990 à Paris (75), NAT, 2020X 027001, dép. 075",
			"DUPONT (Marie), née le 02/02/1992 à Lyon (69), NAT, 2020X 031005, dép. 069"},
		{masthead, "ISSN 0373-0425"},
	},
}

func openIssue(path string) (service.Source, error) {
	p, ok := issues[filepath.Base(path)]
	if !ok {
		return nil, os.ErrNotExist
	}
	return p, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "JOs")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("failed to create folder: %v", err)
	}
	for name := range issues {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4"), 0o644); err != nil {
			t.Fatalf("failed to create test file %s: %v", name, err)
		}
	}

	cfg := config.DefaultConfig()
	cfg.Dir = dir
	cfg.SaveDir = filepath.Join(root, "results")
	cfg.Progress = false
	cfg.ServerName = "test-server"

	st := store.NewJSONStore(cfg.SaveDir, store.JSONPaths{}, store.Options{
		Codes:         store.DefaultSeriesCodes(),
		DefaultSeries: config.DefaultSeries,
	})
	svc, err := service.New(cfg, st,
		service.WithOpener(openIssue),
		service.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	server, err := NewServer(cfg, svc)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return server
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) (string, bool) {
	t.Helper()
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	}
	result, err := handler(context.Background(), request)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if result == nil {
		t.Fatal("result should not be nil")
	}
	return extractTextFromResult(result), result.IsError
}

func TestNewServer(t *testing.T) {
	if _, err := NewServer(nil, nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := NewServer(config.DefaultConfig(), nil); err == nil {
		t.Error("expected error for nil service")
	}

	server := newTestServer(t)
	if server.mcpServer == nil {
		t.Error("mcpServer should be initialized")
	}

	want := []string{"jorf_search_person", "jorf_process_folder", "jorf_series_stats", "jorf_list_decrees", "jorf_server_info"}
	if len(server.tools) != len(want) {
		t.Fatalf("expected %d tools, got %d", len(want), len(server.tools))
	}
	for i, name := range want {
		if server.tools[i].name != name {
			t.Errorf("tool %d: expected %s, got %s", i, name, server.tools[i].name)
		}
	}
}

func TestServer_ProcessThenSearch(t *testing.T) {
	server := newTestServer(t)

	text, isErr := call(t, server.handleProcessFolder, map[string]interface{}{})
	if isErr {
		t.Fatalf("process failed: %s", text)
	}
	if !strings.Contains(text, "Processed series 027") || !strings.Contains(text, "New documents: 1") {
		t.Errorf("unexpected process result: %s", text)
	}
	if !strings.Contains(text, "Persons recorded: 1") {
		t.Errorf("expected one person recorded, got: %s", text)
	}

	text, _ = call(t, server.handleProcessFolder, map[string]interface{}{"series": "031"})
	if !strings.Contains(text, "Persons recorded: 1") {
		t.Errorf("expected one person for series 031, got: %s", text)
	}

	text, isErr = call(t, server.handleSearchPerson, map[string]interface{}{"last_name": "dupont"})
	if isErr {
		t.Fatalf("search failed: %s", text)
	}
	if !strings.Contains(text, "Found 2 match(es)") {
		t.Errorf("expected both Duponts, got: %s", text)
	}

	text, _ = call(t, server.handleSearchPerson, map[string]interface{}{
		"last_name": "DUPONT", "first_name": "jean", "series": "027",
	})
	for _, want := range []string{"DUPONT (Jean)", "Dossier: 027001", "Decree date: 17/03/2020", "Country: France", "Birth place: Paris"} {
		if !strings.Contains(text, want) {
			t.Errorf("search result should contain %q, got: %s", want, text)
		}
	}

	text, _ = call(t, server.handleSearchPerson, map[string]interface{}{"last_name": "dupont", "limit": float64(1)})
	if !strings.Contains(text, "Found 1 match(es)") {
		t.Errorf("limit not applied: %s", text)
	}

	text, _ = call(t, server.handleSearchPerson, map[string]interface{}{"last_name": "martin"})
	if text != lookup.NotFoundMessage {
		t.Errorf("expected not found message, got: %s", text)
	}
}

func TestServer_InvalidArguments(t *testing.T) {
	server := newTestServer(t)

	if _, isErr := call(t, server.handleSearchPerson, map[string]interface{}{}); !isErr {
		t.Error("missing last_name should be an error")
	}
	if _, isErr := call(t, server.handleSearchPerson, map[string]interface{}{"last_name": "x", "series": "999"}); !isErr {
		t.Error("invalid series should be an error")
	}
	text, isErr := call(t, server.handleProcessFolder, map[string]interface{}{"directory": "/nonexistent/folder"})
	if !isErr {
		t.Errorf("missing folder should be an error, got: %s", text)
	}
}

func TestServer_StatsAndDecrees(t *testing.T) {
	server := newTestServer(t)

	text, _ := call(t, server.handleSeriesStats, map[string]interface{}{})
	if !strings.Contains(text, "No series has been processed yet") {
		t.Errorf("expected empty stats, got: %s", text)
	}
	text, _ = call(t, server.handleListDecrees, map[string]interface{}{})
	if !strings.Contains(text, "No decree processed for series 027") {
		t.Errorf("expected no decrees, got: %s", text)
	}

	call(t, server.handleProcessFolder, map[string]interface{}{})

	text, _ = call(t, server.handleSeriesStats, map[string]interface{}{})
	if !strings.Contains(text, "Total persons: 1") || !strings.Contains(text, "027: 1 person(s), 1 decree(s)") {
		t.Errorf("unexpected stats: %s", text)
	}
	text, _ = call(t, server.handleSeriesStats, map[string]interface{}{"all": true})
	if !strings.Contains(text, "054: 0 person(s), 0 decree(s)") {
		t.Errorf("all should list empty series: %s", text)
	}

	text, _ = call(t, server.handleListDecrees, map[string]interface{}{"series": "027"})
	if !strings.Contains(text, "1. 17/03/2020") || !strings.Contains(text, "joe_20200317.pdf") {
		t.Errorf("unexpected decree list: %s", text)
	}
}

func TestServer_ServerInfo(t *testing.T) {
	server := newTestServer(t)
	text, _ := call(t, server.handleServerInfo, map[string]interface{}{})

	for _, want := range []string{"test-server v1.0.0", "Default series: 027", "Dossier year token: 2020X", "jorf_list_decrees"} {
		if !strings.Contains(text, want) {
			t.Errorf("server info should contain %q, got: %s", want, text)
		}
	}
}

func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}

	return ""
}
