package main

import (
	"context"
	"log"

	"github.com/samber/lo"

	"github.com/chazu/trimesh/pkg/engine"
	"github.com/chazu/trimesh/pkg/kernel"
	"github.com/chazu/trimesh/pkg/mesh"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App evaluates scripts against one kernel.
type App struct {
	engine *engine.Engine
	kernel *kernel.Kernel
}

// MeshData is the JSON-serializable mesh format written by -json.
type MeshData struct {
	*kernel.Buffers
	Color string `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of one script run.
type EvalResult struct {
	Meshes []MeshData      `json:"meshes"`
	Errors []EvalErrorData `json:"errors"`

	solids []*mesh.Mesh
}

// NewApp creates a new App around k.
func NewApp(k *kernel.Kernel, opts ...engine.Option) *App {
	return &App{
		engine: engine.NewEngine(append([]engine.Option{engine.WithKernel(k)}, opts...)...),
		kernel: k,
	}
}

// Evaluate runs source and converts the emitted meshes for display.
func (a *App) Evaluate(ctx context.Context, source string) EvalResult {
	result := EvalResult{
		Meshes: []MeshData{},
		Errors: []EvalErrorData{},
	}

	res, evalErrs, err := a.engine.Evaluate(ctx, source)
	if err != nil {
		// Fatal error (panic, timeout, cancellation).
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	if len(evalErrs) > 0 {
		result.Errors = lo.Map(evalErrs, func(e engine.EvalError, _ int) EvalErrorData {
			return EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message}
		})
		return result
	}

	result.solids = res.Meshes
	result.Meshes = lo.Map(res.Meshes, func(m *mesh.Mesh, i int) MeshData {
		return MeshData{
			Buffers: a.kernel.Buffers(m),
			Color:   colorPalette[i%len(colorPalette)],
		}
	})
	return result
}
