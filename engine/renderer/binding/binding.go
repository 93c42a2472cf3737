// Package binding maps the named resources of the shading pipelines to bind group
// locations. Pipelines, the renderer and shaders agree on a Schema instead of
// hard-coded group and binding numbers.
package binding

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxy-shade/engine/camera"
	"github.com/Carmen-Shannon/oxy-shade/engine/debug"
	"github.com/Carmen-Shannon/oxy-shade/engine/light"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/shader"
)

// ErrSchemaMismatch is returned when two schemas place the same slot differently.
var ErrSchemaMismatch = errors.New("binding: schema mismatch")

// Slot names a bound resource.
type Slot string

const (
	SlotCamera             Slot = "camera"
	SlotLight              Slot = "light"
	SlotDebug              Slot = "debug"
	SlotEnvironmentTexture Slot = "environment_texture"
	SlotEnvironmentSampler Slot = "environment_sampler"
	SlotMaterials          Slot = "materials"
	SlotDiffuseTexture     Slot = "diffuse_texture"
	SlotDiffuseSampler     Slot = "diffuse_sampler"
	SlotNormalTexture      Slot = "normal_texture"
	SlotNormalSampler      Slot = "normal_sampler"
)

// Kind is the resource type bound at a slot.
type Kind int

const (
	KindUniform Kind = iota
	KindStorage
	KindTexture2D
	KindTextureCube
	KindSampler
)

func (k Kind) String() string {
	switch k {
	case KindUniform:
		return "uniform"
	case KindStorage:
		return "storage"
	case KindTexture2D:
		return "texture_2d"
	case KindTextureCube:
		return "texture_cube"
	case KindSampler:
		return "sampler"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Location is a (group, binding) pair.
type Location struct {
	Group   int
	Binding int
}

func (l Location) String() string {
	return fmt.Sprintf("@group(%d) @binding(%d)", l.Group, l.Binding)
}

// Entry describes one slot of a Schema.
type Entry struct {
	Slot     Slot
	Location Location
	Kind     Kind
	// Size is the minimum binding size of a buffer slot, 0 if unknown.
	Size uint64
}

// Schema is a set of slot entries.
type Schema struct {
	entries map[Slot]Entry
}

// New builds a Schema from entries. A slot given twice keeps its last entry.
//
// Parameters:
//   - entries: the slot entries
//
// Returns:
//   - Schema: the schema
func New(entries ...Entry) Schema {
	s := Schema{entries: make(map[Slot]Entry, len(entries))}
	for _, e := range entries {
		s.entries[e.Slot] = e
	}
	return s
}

// Default returns the binding layout every built-in shader uses.
//
//	group 0: camera (0), light (1), debug (2)
//	group 1: environment cube texture (0), sampler (1)
//	group 2: material table (0)
//	group 3: diffuse texture (0), diffuse sampler (1), normal texture (2), normal sampler (3)
//
// Returns:
//   - Schema: the default schema
func Default() Schema {
	return New(
		Entry{SlotCamera, Location{0, 0}, KindUniform, uint64((&camera.GPUCameraUniform{}).Size())},
		Entry{SlotLight, Location{0, 1}, KindUniform, uint64((&light.GPULight{}).Size())},
		Entry{SlotDebug, Location{0, 2}, KindUniform, uint64((&debug.GPUDebugUniform{}).Size())},
		Entry{SlotEnvironmentTexture, Location{1, 0}, KindTextureCube, 0},
		Entry{SlotEnvironmentSampler, Location{1, 1}, KindSampler, 0},
		Entry{SlotMaterials, Location{2, 0}, KindStorage, 0},
		Entry{SlotDiffuseTexture, Location{3, 0}, KindTexture2D, 0},
		Entry{SlotDiffuseSampler, Location{3, 1}, KindSampler, 0},
		Entry{SlotNormalTexture, Location{3, 2}, KindTexture2D, 0},
		Entry{SlotNormalSampler, Location{3, 3}, KindSampler, 0},
	)
}

// FromShader derives a Schema from the @oxy:group and @oxy:provider declarations of a
// pre-processed shader. Each slot's kind comes from the parsed bind group layout.
//
// Parameters:
//   - s: the shader
//
// Returns:
//   - Schema: the slots the shader declares
//   - error: an error if a declaration has no matching WGSL binding
func FromShader(s shader.Shader) (Schema, error) {
	out := New()
	for _, decl := range s.Declarations() {
		loc := Location{*decl.Group, *decl.Binding}
		layout, ok := findEntry(s.BindGroupLayoutDescriptor(loc.Group), loc.Binding)
		if !ok {
			return Schema{}, fmt.Errorf("binding: %s: slot %q declared at %s has no WGSL binding", s.Key(), decl.Slot(), loc)
		}
		kind, ok := kindOf(layout)
		if !ok {
			return Schema{}, fmt.Errorf("binding: %s: unsupported resource at %s", s.Key(), loc)
		}
		out.entries[Slot(decl.Slot())] = Entry{
			Slot:     Slot(decl.Slot()),
			Location: loc,
			Kind:     kind,
			Size:     layout.Buffer.MinBindingSize,
		}
	}
	return out, nil
}

func findEntry(desc wgpu.BindGroupLayoutDescriptor, binding int) (wgpu.BindGroupLayoutEntry, bool) {
	for _, e := range desc.Entries {
		if int(e.Binding) == binding {
			return e, true
		}
	}
	return wgpu.BindGroupLayoutEntry{}, false
}

func kindOf(e wgpu.BindGroupLayoutEntry) (Kind, bool) {
	switch {
	case e.Buffer.Type == wgpu.BufferBindingTypeUniform:
		return KindUniform, true
	case e.Buffer.Type == wgpu.BufferBindingTypeReadOnlyStorage, e.Buffer.Type == wgpu.BufferBindingTypeStorage:
		return KindStorage, true
	case e.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
		return KindSampler, true
	case e.Texture.ViewDimension == wgpu.TextureViewDimensionCube:
		return KindTextureCube, true
	case e.Texture.ViewDimension == wgpu.TextureViewDimension2D:
		return KindTexture2D, true
	}
	return 0, false
}

// Len returns the number of slots.
func (s Schema) Len() int {
	return len(s.entries)
}

// Lookup returns the entry of a slot.
//
// Parameters:
//   - slot: the slot name
//
// Returns:
//   - Entry: the entry
//   - bool: false if the schema has no such slot
func (s Schema) Lookup(slot Slot) (Entry, bool) {
	e, ok := s.entries[slot]
	return e, ok
}

// Entries returns every entry ordered by group, then binding.
//
// Returns:
//   - []Entry: the entries
func (s Schema) Entries() []Entry {
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Location, out[j].Location
		if a.Group != b.Group {
			return a.Group < b.Group
		}
		return a.Binding < b.Binding
	})
	return out
}

// Groups returns the sorted group indices the schema uses.
//
// Returns:
//   - []int: the groups
func (s Schema) Groups() []int {
	seen := make(map[int]bool)
	var groups []int
	for _, e := range s.Entries() {
		if !seen[e.Location.Group] {
			seen[e.Location.Group] = true
			groups = append(groups, e.Location.Group)
		}
	}
	return groups
}

// Conform reports every slot present in both schemas whose location or kind differs,
// and every location the two schemas assign to different slots.
//
// Parameters:
//   - other: the schema to compare against, typically derived from a shader
//
// Returns:
//   - error: ErrSchemaMismatch joined with one error per mismatch, or nil
func (s Schema) Conform(other Schema) error {
	var errs []error
	byLocation := make(map[Location]Slot, len(s.entries))
	for _, e := range s.entries {
		byLocation[e.Location] = e.Slot
	}
	for _, o := range other.Entries() {
		if mine, ok := s.entries[o.Slot]; ok {
			if mine.Location != o.Location {
				errs = append(errs, fmt.Errorf("%w: slot %q at %s, want %s", ErrSchemaMismatch, o.Slot, o.Location, mine.Location))
			}
			if mine.Kind != o.Kind {
				errs = append(errs, fmt.Errorf("%w: slot %q is %s, want %s", ErrSchemaMismatch, o.Slot, o.Kind, mine.Kind))
			}
			continue
		}
		if slot, ok := byLocation[o.Location]; ok {
			errs = append(errs, fmt.Errorf("%w: %s holds %q, want %q", ErrSchemaMismatch, o.Location, o.Slot, slot))
		}
	}
	return errors.Join(errs...)
}

// Merge returns the union of two schemas. It fails where they disagree.
//
// Parameters:
//   - other: the schema to merge
//
// Returns:
//   - Schema: the union
//   - error: the Conform error if the schemas disagree
func (s Schema) Merge(other Schema) (Schema, error) {
	if err := s.Conform(other); err != nil {
		return Schema{}, err
	}
	out := New(s.Entries()...)
	for _, e := range other.entries {
		if _, ok := out.entries[e.Slot]; !ok {
			out.entries[e.Slot] = e
		}
	}
	return out, nil
}

// LayoutDescriptors builds the bind group layout descriptor of every group.
//
// Parameters:
//   - visibility: the shader stages every entry is visible to
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
func (s Schema) LayoutDescriptors(visibility wgpu.ShaderStage) map[int]wgpu.BindGroupLayoutDescriptor {
	out := make(map[int]wgpu.BindGroupLayoutDescriptor)
	for _, e := range s.Entries() {
		desc := out[e.Location.Group]
		desc.Label = fmt.Sprintf("group_%d", e.Location.Group)
		desc.Entries = append(desc.Entries, layoutEntry(e, visibility))
		out[e.Location.Group] = desc
	}
	return out
}

func layoutEntry(e Entry, visibility wgpu.ShaderStage) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    uint32(e.Location.Binding),
		Visibility: visibility,
	}
	switch e.Kind {
	case KindUniform:
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		entry.Buffer.MinBindingSize = e.Size
	case KindStorage:
		entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		entry.Buffer.MinBindingSize = e.Size
	case KindTexture2D:
		entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
	case KindTextureCube:
		entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
		entry.Texture.ViewDimension = wgpu.TextureViewDimensionCube
	case KindSampler:
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	}
	return entry
}
