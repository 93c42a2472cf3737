package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-shade/engine/debug"
	"github.com/Carmen-Shannon/oxy-shade/engine/shading"
)

func writeScene(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestFlagOverrides(t *testing.T) {
	p := &preview{}
	require.NoError(t, p.parseFlags([]string{"-mode", "debug", "-debug", "uv", "-workers", "3"}))
	s, err := p.loadScene()
	require.NoError(t, err)
	assert.Equal(t, shading.ModeDebug, s.Variant.Mode)
	assert.Equal(t, debug.ModeUV, s.Debug)
	assert.Equal(t, 3, s.Workers)

	p = &preview{}
	require.NoError(t, p.parseFlags([]string{"-mode", "wireframe"}))
	_, err = p.loadScene()
	assert.Error(t, err)
}

func TestAllDebugJobs(t *testing.T) {
	p := &preview{}
	require.NoError(t, p.parseFlags([]string{"-all-debug", "-out", "out/shot.png"}))
	s, err := p.loadScene()
	require.NoError(t, err)

	jobs := p.jobs(s)
	require.Len(t, jobs, debug.ModeCount)
	assert.Equal(t, "out/shot_lit.png", jobs[0].path)
	assert.Equal(t, "out/shot_material_id.png", jobs[6].path)
	for i, j := range jobs {
		assert.True(t, j.variant.Specialized)
		assert.Equal(t, debug.Mode(i), j.variant.DebugMode)
	}
}

func TestRunWritesImages(t *testing.T) {
	scene := writeScene(t, `
width: 16
height: 8
overlay: true
workers: 2
variant: {mode: material}
materials:
  - {name: white, diffuse: [1, 1, 1], specular: [1, 1, 1], shininess: 32}
`)
	out := filepath.Join(t.TempDir(), "shot.png")
	p := &preview{}
	require.NoError(t, p.parseFlags([]string{"-config", scene, "-out", out, "-q"}))
	require.NoError(t, p.run(context.Background()))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &preview{}
	require.NoError(t, p.parseFlags([]string{"-out", filepath.Join(t.TempDir(), "x.png"), "-q", "-validate=false"}))
	assert.ErrorIs(t, p.run(ctx), context.Canceled)
}

func TestRunAllDebugOnDefaultScene(t *testing.T) {
	scene := writeScene(t, "width: 8\nheight: 8\nworkers: 1\n")
	dir := t.TempDir()
	p := &preview{}
	require.NoError(t, p.parseFlags([]string{"-config", scene, "-all-debug", "-out", filepath.Join(dir, "shot.png"), "-q"}))
	require.NoError(t, p.run(context.Background()))

	for m := range debug.Mode(debug.ModeCount) {
		_, err := os.Stat(filepath.Join(dir, "shot_"+m.String()+".png"))
		assert.NoError(t, err, m.String())
	}
}
