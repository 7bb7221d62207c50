package main

import (
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/meshkit/internal/assets"
	"github.com/Faultbox/meshkit/internal/logger"
	"github.com/Faultbox/meshkit/pkg/formats"
	"github.com/Faultbox/meshkit/pkg/geometry"
	"github.com/Faultbox/meshkit/pkg/mesh"
)

// open returns a manager rooted at the file's directory and the file's
// name within it, so relative glTF buffers resolve next to the document.
func (a *app) open(file string) (*assets.Manager, string, error) {
	m, err := assets.NewFromConfig(a.cfg, os.DirFS(filepath.Dir(file)))
	if err != nil {
		return nil, "", err
	}
	return m, filepath.Base(file), nil
}

func (a *app) load(file string) (*assets.Asset, error) {
	m, name, err := a.open(file)
	if err != nil {
		return nil, err
	}
	return m.LoadAsset(name)
}

func (a *app) cmdInfo(args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool info <file>")
		return errUsage
	}

	asset, err := a.load(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "File:       %s\n", args[0])
	fmt.Fprintf(a.out, "Format:     %s\n", asset.Format)
	printStats(a.out, asset.Mesh, asset.NormalsSynthesized)
	for _, w := range asset.Warnings {
		fmt.Fprintf(a.out, "Warning:    %s\n", w)
	}
	return nil
}

func printStats(w io.Writer, m *mesh.Mesh, synthesized bool) {
	normals := "present"
	switch {
	case synthesized:
		normals = "synthesized"
	case !m.HasNormals():
		normals = "absent"
	}
	uvs := "present"
	if !m.HasUVs() {
		uvs = "absent"
	}

	b := m.Bounds()
	fmt.Fprintf(w, "Vertices:   %d\n", m.VertexCount())
	fmt.Fprintf(w, "Triangles:  %d\n", m.TriangleCount())
	fmt.Fprintf(w, "Index type: %s\n", m.IndexWidth())
	fmt.Fprintf(w, "Normals:    %s\n", normals)
	fmt.Fprintf(w, "UVs:        %s\n", uvs)
	fmt.Fprintf(w, "Bounds:     %s .. %s\n", fmtVec3(b.Min), fmtVec3(b.Max))
	fmt.Fprintf(w, "Size:       %s\n", fmtVec3(b.Size()))
}

func fmtVec3(v [3]float32) string {
	return fmt.Sprintf("(%.4g, %.4g, %.4g)", v[0], v[1], v[2])
}

func (a *app) cmdValidate(args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool validate <file>...")
		return errUsage
	}

	failed := 0
	for _, file := range args {
		asset, err := a.load(file)
		if err == nil {
			err = asset.Mesh.Validate()
		}
		if err != nil {
			failed++
			fmt.Fprintf(a.out, "FAIL  %s: %v\n", file, err)
			continue
		}
		fmt.Fprintf(a.out, "ok    %s (%d vertices, %d triangles)\n",
			file, asset.Mesh.VertexCount(), asset.Mesh.TriangleCount())
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

func (a *app) cmdPrimitive(args []string) error {
	if len(args) < 1 || strings.HasPrefix(args[0], "-") {
		fmt.Fprintln(os.Stderr, "Usage: meshtool primitive <cube|sphere|cylinder|prism> [options]")
		return errUsage
	}
	kind, err := geometry.ParseKind(args[0])
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("primitive", flag.ContinueOnError)
	size := fs.Float64("size", 0, "Cube edge length")
	radius := fs.Float64("radius", 0, "Radius")
	height := fs.Float64("height", 0, "Height of cylinder or prism")
	segments := fs.Int("segments", 0, "Radial segments of cylinder, sides of prism")
	lat := fs.Int("lat", 0, "Sphere latitude bands")
	lon := fs.Int("lon", 0, "Sphere longitude bands")
	output := fs.String("o", "", "Write the mesh to a .glb or .gltf file")
	if err := fs.Parse(args[1:]); err != nil {
		return errUsage
	}

	p := a.cfg.Primitives
	if *size > 0 {
		p.Cube.Size = float32(*size)
	}
	if *radius > 0 {
		p.Sphere.Radius = float32(*radius)
		p.Cylinder.Radius = float32(*radius)
		p.Prism.Radius = float32(*radius)
	}
	if *height > 0 {
		p.Cylinder.Height = float32(*height)
		p.Prism.Height = float32(*height)
	}
	if *segments > 0 {
		p.Cylinder.RadialSegments = *segments
		p.Prism.Segments = *segments
	}
	if *lat > 0 {
		p.Sphere.LatitudeBands = *lat
	}
	if *lon > 0 {
		p.Sphere.LongitudeBands = *lon
	}

	m, err := geometry.Generate(kind, p)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Primitive:  %s\n", kind)
	printStats(a.out, m, false)

	if *output != "" {
		return writeMesh(m, kind.String(), *output)
	}
	return nil
}

func (a *app) cmdDump(args []string) error {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	limit := fs.Int("n", 10, "Number of vertices and triangles to print (0 = all)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool dump [-n N] <file>")
		return errUsage
	}

	asset, err := a.load(fs.Arg(0))
	if err != nil {
		return err
	}
	m := asset.Mesh

	n := m.VertexCount()
	if *limit > 0 && *limit < n {
		n = *limit
	}
	fmt.Fprintf(a.out, "Vertices (%d of %d):\n", n, m.VertexCount())
	for i := 0; i < n; i++ {
		line := fmt.Sprintf("  %5d  p%s", i, fmtVec3(m.Positions[i]))
		if m.HasNormals() {
			line += "  n" + fmtVec3(m.Normals[i])
		}
		if m.HasUVs() {
			line += fmt.Sprintf("  uv(%.4g, %.4g)", m.UVs[i][0], m.UVs[i][1])
		}
		fmt.Fprintln(a.out, line)
	}

	t := m.TriangleCount()
	if *limit > 0 && *limit < t {
		t = *limit
	}
	fmt.Fprintf(a.out, "Triangles (%d of %d):\n", t, m.TriangleCount())
	for i := 0; i < t; i++ {
		tri := m.Triangle(i)
		fmt.Fprintf(a.out, "  %5d  %d %d %d\n", i, tri[0], tri[1], tri[2])
	}
	return nil
}

func (a *app) cmdConvert(args []string) error {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool convert <in> <out.glb|out.gltf>")
		return errUsage
	}

	asset, err := a.load(args[0])
	if err != nil {
		return err
	}
	name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	if err := writeMesh(asset.Mesh, name, args[1]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Wrote %s (%d vertices, %d triangles)\n",
		args[1], asset.Mesh.VertexCount(), asset.Mesh.TriangleCount())
	return nil
}

// writeMesh encodes m as GLB, or as glTF JSON with the buffer embedded
// as a data URI, chosen by the output extension.
func writeMesh(m *mesh.Mesh, name, path string) error {
	doc, bin, err := formats.EncodeGLTF(m, name)
	if err != nil {
		return err
	}

	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb":
		data, err = formats.EncodeGLB(doc, bin)
	case ".gltf":
		doc.Buffers[0].URI = "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(bin)
		data, err = json.MarshalIndent(doc, "", "  ")
	default:
		return fmt.Errorf("%w: %q", assets.ErrUnsupportedFormat, path)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	logger.Info("wrote mesh", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}
