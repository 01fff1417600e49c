// Package cpu implements the tensor.Backend interface with pure-Go
// kernels, BLAS-backed matrix products and goroutine-based parallelism.
package cpu

import (
	"fmt"

	"github.com/klauspost/cpuid/v2"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/parallel"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// Backend executes tensor operations on the host CPU.
type Backend struct {
	parallel parallel.Config
	brand    string
}

// New returns a CPU backend with default parallelism.
func New() *Backend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig returns a CPU backend using the given parallel settings.
// Useful in tests to force serial execution.
func NewWithConfig(cfg parallel.Config) *Backend {
	brand := cpuid.CPU.BrandName
	if brand == "" {
		brand = "unknown"
	}
	return &Backend{parallel: cfg, brand: brand}
}

// Name identifies the backend including the host CPU model.
func (b *Backend) Name() string {
	return fmt.Sprintf("cpu (%s, %d threads)", b.brand, cpuid.CPU.LogicalCores)
}

// Device returns the short device tag.
func (b *Backend) Device() string { return "cpu" }

func mustFloat32(rt *tensor.RawTensor, op string) []float32 {
	if rt.DType() != tensor.Float32 {
		panic(fmt.Sprintf("cpu: %s requires float32, got %s", op, rt.DType()))
	}
	return rt.AsFloat32()
}
