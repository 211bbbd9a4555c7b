package registry

import (
	"sort"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Recorder is a Host that records registrations without serving them.
// It is safe for concurrent use.
type Recorder struct {
	mu        sync.Mutex
	tools     map[string]server.ToolHandlerFunc
	resources map[string]server.ResourceHandlerFunc
	prompts   map[string]server.PromptHandlerFunc
	defs      map[string]mcp.Tool
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		tools:     make(map[string]server.ToolHandlerFunc),
		resources: make(map[string]server.ResourceHandlerFunc),
		prompts:   make(map[string]server.PromptHandlerFunc),
		defs:      make(map[string]mcp.Tool),
	}
}

func (r *Recorder) AddTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name] = handler
	r.defs[tool.Name] = tool
}

func (r *Recorder) AddResource(resource mcp.Resource, handler server.ResourceHandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resources[resource.URI] = handler
}

func (r *Recorder) AddPrompt(prompt mcp.Prompt, handler server.PromptHandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts[prompt.Name] = handler
}

// Tool returns the handler registered under name.
func (r *Recorder) Tool(name string) (server.ToolHandlerFunc, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.tools[name]
	return h, ok
}

// ToolDef returns the tool definition registered under name.
func (r *Recorder) ToolDef(name string) (mcp.Tool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.defs[name]
	return d, ok
}

// Resource returns the handler registered for uri.
func (r *Recorder) Resource(uri string) (server.ResourceHandlerFunc, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.resources[uri]
	return h, ok
}

// Prompt returns the handler registered under name.
func (r *Recorder) Prompt(name string) (server.PromptHandlerFunc, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.prompts[name]
	return h, ok
}

// Names lists everything registered, sorted, keyed by kind.
func (r *Recorder) Names() map[Kind][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return map[Kind][]string{
		KindTool:     sortedKeys(r.tools),
		KindResource: sortedKeys(r.resources),
		KindPrompt:   sortedKeys(r.prompts),
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
