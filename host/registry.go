// Package host loads the extension scripts of a host application. Reloading
// compiles and executes every script in the extensions directory; a broken
// extension is reported without preventing the others from loading.
package host

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	risorLib "github.com/risor-io/risor"
	starlarkLib "go.starlark.net/starlark"

	"github.com/robbyt/go-scriptdesk/internal/helpers"
	"github.com/robbyt/go-scriptdesk/machines"
	risorCompiler "github.com/robbyt/go-scriptdesk/machines/risor/compiler"
	starlarkCompiler "github.com/robbyt/go-scriptdesk/machines/starlark/compiler"
	"github.com/robbyt/go-scriptdesk/machines/types"
)

// Extension describes a successfully loaded extension script.
type Extension struct {
	Name     string
	Path     string
	Type     types.Type
	SHA256   string
	Exports  []string
	LoadedAt time.Time
}

// Registry owns the extensions loaded from one directory.
type Registry struct {
	dir      string
	compiler *machines.Compiler
	globals  map[string]any
	ctxData  map[string]any

	// entryPoint, when set, must be exported by WebAssembly extensions.
	entryPoint string

	mu         sync.RWMutex
	extensions []Extension

	logHandler slog.Handler
	logger     *slog.Logger
}

// New creates a Registry for the scripts in dir. Nothing is loaded until
// ReloadExtensions is called.
func New(dir string, compiler *machines.Compiler, opts ...FunctionalOption) (*Registry, error) {
	r := &Registry{dir: dir, compiler: compiler}
	r.applyDefaults()

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, fmt.Errorf("error applying registry option: %w", err)
		}
	}

	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("invalid registry configuration: %w", err)
	}

	if r.logger != nil {
		r.logHandler = r.logger.Handler()
	} else {
		r.logHandler, r.logger = helpers.SetupLogger(r.logHandler, "host", "Registry")
	}
	return r, nil
}

func (r *Registry) String() string {
	return fmt.Sprintf("host.Registry{Dir: %s}", r.dir)
}

// Dir returns the extensions directory.
func (r *Registry) Dir() string {
	return r.dir
}

// Extensions returns the extensions loaded by the last reload, by name.
func (r *Registry) Extensions() []Extension {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.extensions)
}

// Scripts lists the extension scripts in the directory, sorted by name.
func (r *Registry) Scripts() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list extensions: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !types.IsScript(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(r.dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Modules lists the compiled WebAssembly extensions in the directory, sorted
// by name. They are loaded with the scripts but are not editable.
func (r *Registry) Modules() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list extensions: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !types.IsModule(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(r.dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// ReloadExtensions compiles and executes every extension script and module.
// The loaded set is replaced by the extensions that succeeded. Failures are
// collected and returned together. Cancelling ctx stops before the next
// extension and keeps the previously loaded set.
func (r *Registry) ReloadExtensions(ctx context.Context) error {
	logger := r.logger.WithGroup("ReloadExtensions")

	scripts, err := r.Scripts()
	if err != nil {
		return err
	}
	modules, err := r.Modules()
	if err != nil {
		return err
	}
	paths := append(scripts, modules...)
	slices.SortFunc(paths, func(a, b string) int {
		return strings.Compare(filepath.Base(a), filepath.Base(b))
	})

	var result *multierror.Error
	loaded := make([]Extension, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			logger.WarnContext(ctx, "Reload cancelled, keeping previous extensions", "error", err)
			result = multierror.Append(result, err)
			return result.ErrorOrNil()
		}

		ext, err := r.load(ctx, path)
		if err != nil {
			logger.WarnContext(ctx, "Extension failed to load", "path", path, "error", err)
			result = multierror.Append(result, fmt.Errorf("%w %s: %w", ErrLoadFailed, filepath.Base(path), err))
			continue
		}
		loaded = append(loaded, ext)
	}

	r.mu.Lock()
	r.extensions = loaded
	r.mu.Unlock()

	logger.InfoContext(ctx, "Extensions reloaded", "loaded", len(loaded), "total", len(paths))
	return result.ErrorOrNil()
}

func (r *Registry) load(ctx context.Context, path string) (Extension, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Extension{}, fmt.Errorf("failed to read script: %w", err)
	}

	name := filepath.Base(path)
	t, _ := types.ExtensionType(name)
	ext := Extension{
		Name:   name,
		Path:   path,
		Type:   t,
		SHA256: helpers.SHA256(string(content)),
	}

	switch t {
	case types.Starlark:
		ext.Exports, err = r.execStarlark(ctx, name, content)
	case types.Risor:
		err = r.execRisor(ctx, name, content)
	case types.Extism:
		ext.Exports, err = r.execExtism(ctx, name, content)
	default:
		err = fmt.Errorf("%w: %s", machines.ErrUnsupportedScript, name)
	}
	if err != nil {
		return Extension{}, err
	}

	ext.LoadedAt = time.Now()
	return ext, nil
}

func (r *Registry) starlarkGlobals() (starlarkLib.StringDict, error) {
	globals := r.compiler.Starlark().Predeclared()
	for name, v := range r.globals {
		sv, err := toStarlarkValue(v)
		if err != nil {
			return nil, fmt.Errorf("global %q: %w", name, err)
		}
		globals[name] = sv
	}

	ctxVal, err := toStarlarkValue(r.ctxData)
	if err != nil {
		return nil, fmt.Errorf("global %q: %w", starlarkCompiler.CtxGlobal, err)
	}
	globals[starlarkCompiler.CtxGlobal] = ctxVal
	return globals, nil
}

// execStarlark runs the script's top level and returns the names it defines.
func (r *Registry) execStarlark(ctx context.Context, name string, content []byte) ([]string, error) {
	logger := r.logger.WithGroup("execStarlark").With("extension", name)

	prog, err := r.compiler.Starlark().Compile(name, content)
	if err != nil {
		return nil, err
	}

	globals, err := r.starlarkGlobals()
	if err != nil {
		return nil, err
	}

	thread := &starlarkLib.Thread{
		Name: name,
		Print: func(thread *starlarkLib.Thread, msg string) {
			logger.InfoContext(ctx, msg, "starlark-thread", thread.Name)
		},
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			thread.Cancel(ctx.Err().Error())
		case <-done:
		}
	}()

	start := time.Now()
	finalGlobals, err := prog.Init(thread, globals)
	if err != nil {
		return nil, fmt.Errorf("starlark execution error: %w", err)
	}
	logger.DebugContext(ctx, "Execution complete", "duration", time.Since(start))

	exports := finalGlobals.Keys()
	return exports, nil
}

func (r *Registry) execRisor(ctx context.Context, name string, content []byte) error {
	logger := r.logger.WithGroup("execRisor").With("extension", name)

	code, err := r.compiler.Risor().Compile(name, content)
	if err != nil {
		return err
	}

	opts := make([]risorLib.Option, 0, len(r.globals)+1)
	for global, v := range r.globals {
		opts = append(opts, risorLib.WithGlobal(global, v))
	}
	opts = append(opts, risorLib.WithGlobal(risorCompiler.CtxGlobal, r.ctxData))

	start := time.Now()
	result, err := risorLib.EvalCode(ctx, code, opts...)
	if err != nil {
		return fmt.Errorf("risor execution error: %w", err)
	}
	if result != nil && result.Type() == "error" {
		return fmt.Errorf("error returned from script: %s", result.Inspect())
	}
	logger.DebugContext(ctx, "Execution complete", "duration", time.Since(start))
	return nil
}
