package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/meshkit/internal/config"
)

const quadOBJ = `# unit quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
f 1/1 2/2 3/3 4/4
`

func newTestApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return &app{cfg: config.Default(), out: &out}, &out
}

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestInfo(t *testing.T) {
	a, out := newTestApp(t)
	path := writeFile(t, "quad.obj", quadOBJ)

	if err := a.run([]string{"info", path}); err != nil {
		t.Fatalf("info: %v", err)
	}

	for _, want := range []string{
		"Format:     obj",
		"Vertices:   4",
		"Triangles:  2",
		"Normals:    synthesized",
		"UVs:        present",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestValidateReportsFailures(t *testing.T) {
	a, out := newTestApp(t)
	good := writeFile(t, "good.obj", quadOBJ)
	bad := writeFile(t, "bad.obj", "v 0 0 0\nf 1 2 3\n")

	err := a.run([]string{"validate", good, bad})
	if err == nil {
		t.Fatal("expected an error for the broken file")
	}
	if !strings.Contains(err.Error(), "1 of 2") {
		t.Errorf("error = %v, want a count of failures", err)
	}
	if !strings.Contains(out.String(), "ok    "+good) {
		t.Errorf("good file not reported:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "FAIL  "+bad) {
		t.Errorf("bad file not reported:\n%s", out.String())
	}
}

func TestPrimitiveWritesGLB(t *testing.T) {
	a, out := newTestApp(t)
	path := filepath.Join(t.TempDir(), "cube.glb")

	if err := a.run([]string{"primitive", "cube", "-size", "2", "-o", path}); err != nil {
		t.Fatalf("primitive: %v", err)
	}
	if !strings.Contains(out.String(), "Primitive:  cube") {
		t.Errorf("unexpected output:\n%s", out.String())
	}

	out.Reset()
	if err := a.run([]string{"info", path}); err != nil {
		t.Fatalf("info on generated file: %v", err)
	}
	for _, want := range []string{"Format:     glb", "Vertices:   24", "Triangles:  12", "(-1, -1, -1)"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestPrimitiveUnknownKind(t *testing.T) {
	a, _ := newTestApp(t)
	if err := a.run([]string{"primitive", "teapot"}); err == nil {
		t.Fatal("expected an error for an unknown primitive")
	}
}

func TestDump(t *testing.T) {
	a, out := newTestApp(t)
	path := writeFile(t, "quad.obj", quadOBJ)

	if err := a.run([]string{"dump", "-n", "1", path}); err != nil {
		t.Fatalf("dump: %v", err)
	}
	if !strings.Contains(out.String(), "Vertices (1 of 4):") {
		t.Errorf("vertex header missing:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Triangles (1 of 2):") {
		t.Errorf("triangle header missing:\n%s", out.String())
	}
}

func TestConvertRoundTrip(t *testing.T) {
	src := writeFile(t, "quad.obj", quadOBJ)
	dir := t.TempDir()

	for _, ext := range []string{".glb", ".gltf"} {
		t.Run(ext, func(t *testing.T) {
			a, out := newTestApp(t)
			dst := filepath.Join(dir, "quad"+ext)
			if err := a.run([]string{"convert", src, dst}); err != nil {
				t.Fatalf("convert: %v", err)
			}

			out.Reset()
			if err := a.run([]string{"info", dst}); err != nil {
				t.Fatalf("info: %v", err)
			}
			for _, want := range []string{"Vertices:   4", "Triangles:  2", "Normals:    present"} {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output missing %q:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestConvertRejectsUnknownExtension(t *testing.T) {
	a, _ := newTestApp(t)
	src := writeFile(t, "quad.obj", quadOBJ)
	if err := a.run([]string{"convert", src, filepath.Join(t.TempDir(), "quad.stl")}); err == nil {
		t.Fatal("expected an error for .stl output")
	}
}

func TestScene(t *testing.T) {
	a, out := newTestApp(t)
	quad := writeFile(t, "quad.obj", quadOBJ)
	missing := filepath.Join(t.TempDir(), "missing.obj")

	if err := a.run([]string{"scene", "-width", "640", "-height", "480", quad, missing}); err != nil {
		t.Fatalf("scene: %v", err)
	}
	for _, want := range []string{"Entities:   2", "quad.obj", "missing.obj", "Upload:", "Centre hit:"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestUsageErrors(t *testing.T) {
	tests := [][]string{
		nil,
		{"frobnicate"},
		{"info"},
		{"dump"},
		{"convert", "only-one"},
		{"scene"},
		{"watch"},
	}

	for _, args := range tests {
		a, _ := newTestApp(t)
		if err := a.run(args); !errors.Is(err, errUsage) {
			t.Errorf("run(%q) = %v, want errUsage", args, err)
		}
	}
}

func TestHelp(t *testing.T) {
	a, out := newTestApp(t)
	if err := a.run([]string{"help"}); err != nil {
		t.Fatalf("help: %v", err)
	}
	if !strings.Contains(out.String(), "meshtool [global options]") {
		t.Errorf("usage not printed:\n%s", out.String())
	}
	// Only scene substitutes the fallback primitive; validate reports failures.
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.Contains(line, "-fallback") && strings.Contains(line, "meshtool -") &&
			!strings.Contains(line, " scene ") {
			t.Errorf("fallback example should use scene: %q", line)
		}
	}
}
