package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/healthylinkx/chatbot/internal/errs"
	"github.com/healthylinkx/chatbot/internal/llm"
	"github.com/healthylinkx/chatbot/pkg/log"
)

// Registry manages available tools and dispatches calls to them
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates a new tool registry
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry
// Returns an error if a tool with the same name already exists
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}

	r.tools[name] = tool
	return nil
}

// Get retrieves a tool by name
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	return tool, exists
}

// List returns all registered tool names, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Specs returns the declarations of all registered tools, sorted by name
func (r *Registry) Specs() []llm.ToolSpec {
	names := r.List()

	r.mu.RLock()
	defer r.mu.RUnlock()
	specs := make([]llm.ToolSpec, 0, len(names))
	for _, name := range names {
		specs = append(specs, r.tools[name].Spec())
	}
	return specs
}

// Invoke executes the named tool. An unknown name is a configuration error;
// everything else is reported through Result.Status.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]string) (Result, error) {
	tool, ok := r.Get(name)
	if !ok {
		return Result{}, errs.UnsupportedTool(name)
	}
	if err := errs.FromContext(ctx); err != nil {
		return Result{}, err
	}

	log.Debug("Tool usage: %s %v", name, args)
	result, err := tool.Execute(ctx, args)
	if err != nil {
		return Result{}, err
	}
	log.Info("Tool %s finished with status %s (%d records)", name, result.Status, len(result.Records))
	return result, nil
}
