// Package registry loads capability units from a static manifest and
// registers them with the MCP host at startup.
//
// The manifest is grouped by category directory (tools/, resources/,
// prompts/). Every entry is loaded, validated and registered in its own
// goroutine; a failing entry is logged and counted but never stops its
// siblings. The registry runs once per process and is not a service.
package registry

import (
	"fmt"
	"log/slog"
	"path"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/coverity-mcp/internal/errors"
)

// Kind is the category of a capability unit.
type Kind string

const (
	KindTool     Kind = "tool"
	KindResource Kind = "resource"
	KindPrompt   Kind = "prompt"
)

// Categories are the manifest directories searched during discovery, in order.
var Categories = []string{"tools", "resources", "prompts"}

// Host is the subset of *server.MCPServer that units register against.
type Host interface {
	AddTool(tool mcp.Tool, handler server.ToolHandlerFunc)
	AddResource(resource mcp.Resource, handler server.ResourceHandlerFunc)
	AddPrompt(prompt mcp.Prompt, handler server.PromptHandlerFunc)
}

var _ Host = (*server.MCPServer)(nil)

// Unit is a self-contained capability descriptor.
type Unit struct {
	Kind        Kind
	Name        string
	Description string

	// Register performs exactly one host registration call.
	Register func(Host) error
}

// Entry is one manifest item: a path-like id such as "tools/list_projects"
// and the loader that constructs its unit.
type Entry struct {
	Path string
	Load func() (Unit, error)
}

// Category returns the first path segment of the entry.
func (e Entry) Category() string {
	if i := strings.Index(e.Path, "/"); i > 0 {
		return e.Path[:i]
	}
	return ""
}

// Name returns the last path segment of the entry.
func (e Entry) Name() string {
	return path.Base(e.Path)
}

// Result is the settled outcome of one entry.
type Result struct {
	Path    string `json:"path"`
	Kind    Kind   `json:"kind,omitempty"`
	Name    string `json:"name"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK reports whether the entry was registered.
func (r Result) OK() bool {
	return r.Error == "" && !r.Skipped
}

// Report summarizes one AutoLoad run. Results are in discovery order.
type Report struct {
	Loaded  int      `json:"loaded"`
	Failed  int      `json:"failed"`
	Skipped int      `json:"skipped"`
	Results []Result `json:"results"`
}

// Discover returns the entries that live under one of Categories, grouped by
// category and sorted by path within each group. Entries elsewhere are ignored.
func Discover(manifest []Entry) []Entry {
	found := make([]Entry, 0, len(manifest))
	for _, cat := range Categories {
		group := make([]Entry, 0)
		for _, e := range manifest {
			if e.Category() == cat {
				group = append(group, e)
			}
		}
		sort.SliceStable(group, func(i, j int) bool { return group[i].Path < group[j].Path })
		found = append(found, group...)
	}
	return found
}

// Validate checks that u has the unit shape: a known kind, a name and a
// register func.
func Validate(u Unit) error {
	switch u.Kind {
	case KindTool, KindResource, KindPrompt:
	default:
		return errors.NewInvalidModule(u.Name, fmt.Sprintf("unknown kind %q", u.Kind))
	}
	if strings.TrimSpace(u.Name) == "" {
		return errors.NewInvalidModule(u.Name, "name is required")
	}
	if u.Register == nil {
		return errors.NewInvalidModule(u.Name, "register func is required")
	}
	return nil
}

// AutoLoad discovers the manifest's entries and loads, validates and
// registers each one concurrently. Units whose name is in disabled are
// loaded and validated but not registered.
//
// It waits for every entry to settle before returning.
func AutoLoad(host Host, manifest []Entry, disabled []string, logger *slog.Logger) Report {
	entries := Discover(manifest)
	if len(entries) == 0 {
		logger.Info("no modules found")
		return Report{Results: []Result{}}
	}

	results := make([]Result, len(entries))
	var wg sync.WaitGroup
	for i, e := range entries {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = process(host, e, disabled)
		}()
	}
	wg.Wait()

	report := Report{Results: results}
	seen := make(map[string]bool, len(results))
	for _, r := range results {
		seen[r.Name] = true
		switch {
		case r.Skipped:
			report.Skipped++
			logger.Info("module disabled", "module", r.Path)
		case r.Error != "":
			report.Failed++
			logger.Warn("module failed", "module", r.Path, "error", r.Error)
		default:
			report.Loaded++
			logger.Debug("module registered", "module", r.Path, "kind", r.Kind)
		}
	}
	for _, name := range disabled {
		if !seen[name] {
			logger.Warn("unknown disabled capability", "name", name)
		}
	}

	logger.Info("registry loaded", "loaded", report.Loaded, "failed", report.Failed, "skipped", report.Skipped)
	return report
}

// process runs load, validate and register for one entry. Panics in any
// step are recovered and reported as failures.
func process(host Host, e Entry, disabled []string) (res Result) {
	res = Result{Path: e.Path, Name: e.Name()}
	defer func() {
		if r := recover(); r != nil {
			res.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	if e.Load == nil {
		res.Error = errors.NewInvalidModule(res.Name, "no loader").Error()
		return res
	}
	u, err := e.Load()
	if err != nil {
		res.Error = fmt.Sprintf("load: %v", err)
		return res
	}
	if err := Validate(u); err != nil {
		res.Error = err.Error()
		return res
	}
	res.Kind, res.Name = u.Kind, u.Name

	if slices.Contains(disabled, u.Name) {
		res.Skipped = true
		return res
	}
	if err := u.Register(host); err != nil {
		res.Error = fmt.Sprintf("register: %v", err)
	}
	return res
}
