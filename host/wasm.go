package host

import (
	"context"
	"fmt"
	"slices"
	"time"

	extismSDK "github.com/extism/go-sdk"
	"github.com/tetratelabs/wazero"
)

// execExtism compiles a WebAssembly extension, instantiates it once to check
// that its imports link, and returns its exported function names.
func (r *Registry) execExtism(ctx context.Context, name string, content []byte) ([]string, error) {
	logger := r.logger.WithGroup("execExtism").With("extension", name)

	if len(content) == 0 {
		return nil, fmt.Errorf("wasm module is empty")
	}

	start := time.Now()
	runtimeConfig := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)

	exports, err := wasmExports(ctx, runtimeConfig, content)
	if err != nil {
		return nil, err
	}

	manifest := extismSDK.Manifest{
		Wasm: []extismSDK.Wasm{
			extismSDK.WasmData{
				Data: content,
			},
		},
	}
	config := extismSDK.PluginConfig{
		EnableWasi:    true,
		RuntimeConfig: runtimeConfig,
	}

	plugin, err := extismSDK.NewCompiledPlugin(ctx, manifest, config, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to compile plugin: %w", err)
	}
	defer func() {
		if err := plugin.Close(ctx); err != nil {
			logger.WarnContext(ctx, "Failed to close Extism plugin", "error", err)
		}
	}()

	instance, err := plugin.Instance(ctx, extismSDK.PluginInstanceConfig{
		ModuleConfig: wazero.NewModuleConfig(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create plugin instance: %w", err)
	}
	defer func() {
		if err := instance.Close(ctx); err != nil {
			logger.WarnContext(ctx, "Failed to close Extism plugin instance", "error", err)
		}
	}()

	if r.entryPoint != "" && !instance.FunctionExists(r.entryPoint) {
		return nil, fmt.Errorf("entry point function '%s' not found", r.entryPoint)
	}

	logger.DebugContext(ctx, "Module loaded", "exports", len(exports), "duration", time.Since(start))
	return exports, nil
}

// wasmExports returns the sorted names of the functions a module exports.
func wasmExports(ctx context.Context, config wazero.RuntimeConfig, content []byte) ([]string, error) {
	rt := wazero.NewRuntimeWithConfig(ctx, config)
	defer func() { _ = rt.Close(ctx) }()

	compiled, err := rt.CompileModule(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("invalid wasm module: %w", err)
	}

	exports := make([]string, 0, len(compiled.ExportedFunctions()))
	for fn := range compiled.ExportedFunctions() {
		exports = append(exports, fn)
	}
	slices.Sort(exports)
	return exports, nil
}
