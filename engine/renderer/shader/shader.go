package shader

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-splat/engine/camera"
	"github.com/gogpu/naga"
)

//go:embed assets/splat.wgsl
var splatSource string

// SplatKey is the key of the built-in splat shader.
const SplatKey = "splat"

// ErrMissingEntryPoint is returned when a render shader lacks a vertex or fragment entry point.
var ErrMissingEntryPoint = errors.New("shader: missing entry point")

// shader is the implementation of the Shader interface.
type shader struct {
	key         string
	source      string
	prelude     []string
	entryPoints map[Stage]string
	bindings    []Binding
}

// Shader is a WGSL module with its parsed entry points and resource bindings.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for labels and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the full WGSL source, prelude included.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// EntryPoint returns the entry point name for a stage, or "" if the stage is absent.
	//
	// Parameters:
	//   - stage: the pipeline stage
	//
	// Returns:
	//   - string: the entry point name (e.g. "vs_main")
	EntryPoint(stage Stage) string

	// Bindings returns the resource declarations in source order.
	//
	// Returns:
	//   - []Binding: the parsed bindings
	Bindings() []Binding

	// Validate compiles the source with naga.
	//
	// Returns:
	//   - error: the compiler diagnostic, or ErrMissingEntryPoint
	Validate() error
}

var _ Shader = &shader{}

// NewShader creates a Shader from WGSL source with all options applied.
// Entry points and bindings are parsed from the combined prelude and source.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - source: the WGSL body
//   - options: functional options such as WithPrelude
//
// Returns:
//   - Shader: the parsed shader
func NewShader(key, source string, options ...ShaderBuilderOption) Shader {
	s := &shader{key: key}
	for _, opt := range options {
		opt(s)
	}

	parts := append(append([]string{}, s.prelude...), source)
	s.source = strings.Join(parts, "\n")
	s.entryPoints = map[Stage]string{}
	for _, stage := range []Stage{StageVertex, StageFragment, StageCompute} {
		if name := parseEntryPoint(s.source, stage); name != "" {
			s.entryPoints[stage] = name
		}
	}
	s.bindings = parseBindings(s.source)
	return s
}

// NewSplatShader returns the built-in splat shader, prefixed with the FrameUniform definition.
//
// Returns:
//   - Shader: the splat shader
func NewSplatShader() Shader {
	return NewShader(SplatKey, splatSource, WithPrelude(camera.GPUFrameUniformSource))
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) EntryPoint(stage Stage) string {
	return s.entryPoints[stage]
}

func (s *shader) Bindings() []Binding {
	return s.bindings
}

func (s *shader) Validate() error {
	_, hasCompute := s.entryPoints[StageCompute]
	if !hasCompute {
		for _, stage := range []Stage{StageVertex, StageFragment} {
			if s.entryPoints[stage] == "" {
				return fmt.Errorf("%w: %s has no %s stage", ErrMissingEntryPoint, s.key, stage)
			}
		}
	}
	if _, err := Compile(s.source); err != nil {
		return fmt.Errorf("shader %s: %w", s.key, err)
	}
	return nil
}

// Compile translates WGSL to SPIR-V with naga, which doubles as a full front-end validation.
//
// Parameters:
//   - source: the WGSL source
//
// Returns:
//   - []byte: little-endian SPIR-V words
//   - error: the naga diagnostic
func Compile(source string) ([]byte, error) {
	spirv, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader: %w", err)
	}
	return spirv, nil
}
