package shader

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed assets/*.wgsl
var assets embed.FS

//go:embed assets/vertex_output.wgsl
var vertexOutputSource string

//go:embed assets/overlay_output.wgsl
var overlayOutputSource string

//go:embed assets/basis.wgsl
var basisSource string

//go:embed assets/lighting.wgsl
var lightingSource string

// Names of the shaders in the embedded library.
const (
	InstancedVertex = "instanced.vert"
	LitFragment     = "lit.frag"
	DebugFragment   = "debug.frag"
	OverlayVertex   = "overlay.vert"
	OverlayFragment = "overlay.frag"
)

// ErrUnknownShader is returned when a library has no shader of the requested name.
var ErrUnknownShader = errors.New("shader: unknown shader")

// stageSuffixes maps shader name suffixes to their stage.
var stageSuffixes = map[string]ShaderType{
	".vert": ShaderTypeVertex,
	".frag": ShaderTypeFragment,
}

// Library loads WGSL shaders by name from a file system. A shader named "lit.frag"
// is read from "lit.frag.wgsl"; the name suffix selects the stage. Files without a
// stage suffix are include sources and cannot be loaded on their own.
type Library struct {
	fsys fs.FS
}

// NewLibrary creates a Library reading from fsys.
//
// Parameters:
//   - fsys: the file system holding the .wgsl files at its root
//
// Returns:
//   - *Library: the library
func NewLibrary(fsys fs.FS) *Library {
	return &Library{fsys: fsys}
}

// Embedded returns the Library of shaders compiled into the package.
//
// Returns:
//   - *Library: the embedded library
func Embedded() *Library {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		panic(fmt.Sprintf("shader: embedded assets: %v", err))
	}
	return NewLibrary(sub)
}

// StageOf returns the stage a shader name selects.
//
// Parameters:
//   - name: the shader name, e.g. "lit.frag"
//
// Returns:
//   - ShaderType: the stage
//   - error: ErrUnknownShader if the name has no stage suffix
func StageOf(name string) (ShaderType, error) {
	t, ok := stageSuffixes[path.Ext(name)]
	if !ok {
		return 0, fmt.Errorf("%w: %q has no stage suffix", ErrUnknownShader, name)
	}
	return t, nil
}

// Names lists the loadable shaders of the library in sorted order.
//
// Returns:
//   - []string: the shader names
//   - error: an error if the file system cannot be read
func (l *Library) Names() ([]string, error) {
	entries, err := fs.Glob(l.fsys, "*.wgsl")
	if err != nil {
		return nil, fmt.Errorf("shader: list library: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := strings.TrimSuffix(e, ".wgsl")
		if _, err := StageOf(name); err == nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Source returns the raw, unprocessed WGSL of a shader.
//
// Parameters:
//   - name: the shader name
//
// Returns:
//   - string: the WGSL source
//   - error: ErrUnknownShader if no such file exists
func (l *Library) Source(name string) (string, error) {
	data, err := fs.ReadFile(l.fsys, name+".wgsl")
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %q", ErrUnknownShader, name)
	}
	if err != nil {
		return "", fmt.Errorf("shader: read %q: %w", name, err)
	}
	return string(data), nil
}

// Load reads, pre-processes and parses a shader.
//
// Parameters:
//   - key: the unique key of the built shader, used as the module label
//   - name: the shader name
//   - options: pre-processor options for instance features and specialization constants
//
// Returns:
//   - Shader: the parsed shader
//   - error: an error if the shader is unknown, empty or fails to pre-process
func (l *Library) Load(key, name string, options ...PreProcessorOption) (Shader, error) {
	stage, err := StageOf(name)
	if err != nil {
		return nil, err
	}
	source, err := l.Source(name)
	if err != nil {
		return nil, err
	}
	s, err := newShader(key, stage, source, options...)
	if err != nil {
		return nil, fmt.Errorf("shader: %s: %w", name, err)
	}
	return s, nil
}
