package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Faultbox/meshkit/internal/engine/camera"
	"github.com/Faultbox/meshkit/internal/engine/model"
	"github.com/Faultbox/meshkit/internal/engine/picking"
	"github.com/Faultbox/meshkit/internal/engine/scene"
	"github.com/Faultbox/meshkit/pkg/math"
	"github.com/Faultbox/meshkit/pkg/mesh"
)

// cmdScene places each file side by side along +X, frames them with an
// orbit camera and reports what a click in the middle of the viewport hits.
func (a *app) cmdScene(args []string) error {
	fs := flag.NewFlagSet("scene", flag.ContinueOnError)
	width := fs.Int("width", 1280, "Viewport width in pixels")
	height := fs.Int("height", 720, "Viewport height in pixels")
	gap := fs.Float64("gap", 0.5, "Space between meshes")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool scene [-width W -height H -gap G] <file>...")
		return errUsage
	}

	g := scene.NewGraph()
	g.SetBackground(a.cfg.Scene.Background)
	g.AddLight(scene.NewDirectionalLight())

	var cursor float32
	for _, file := range fs.Args() {
		m, name, err := a.open(file)
		if err != nil {
			return err
		}
		msh, err := m.LoadOrFallback(name)
		if err != nil {
			return err
		}

		b := msh.Bounds()
		e := scene.NewEntity(filepath.Base(file), msh, scene.DefaultMaterial())
		e.Transform.Position = math.Vec3{X: cursor - b.Min[0]}
		cursor += b.Size()[0] + float32(*gap)
		if err := g.AddEntity(e); err != nil {
			return err
		}
	}
	g.UpdateWorldMatrices()

	world, ok := sceneBounds(g)
	if !ok {
		return fmt.Errorf("scene has no geometry")
	}

	cam := camera.DefaultCamera()
	cam.ResizeViewport(*width, *height)
	orbit := camera.NewOrbit()
	orbit.MaxDistance = 1e6
	orbit.FitToBounds(mesh.Bounds{Min: world.Min, Max: world.Max}, cam.FovY)
	orbit.Apply(cam)

	fmt.Fprintf(a.out, "Entities:   %d\n", len(g.Entities()))
	fmt.Fprintf(a.out, "Bounds:     %s .. %s\n", fmtVec3(world.Min), fmtVec3(world.Max))
	fmt.Fprintf(a.out, "Camera:     %s -> %s\n", fmtVec3(cam.Position.Array()), fmtVec3(cam.Target.Array()))

	var vertexBytes, indexBytes int
	for _, e := range g.Entities() {
		md, err := model.FromMesh(e.Mesh)
		if err != nil {
			return err
		}
		baked := md.Bake(e.WorldMatrix())
		vertexBytes += len(baked.VertexBytes())
		indexBytes += len(baked.IndexBytes())
		fmt.Fprintf(a.out, "  %-20s at %s  %d tris  %s indices\n",
			e.Name, fmtVec3(e.WorldPosition().Array()), len(md.Indices)/3, md.IndexWidth)
	}
	fmt.Fprintf(a.out, "Upload:     %d vertex bytes, %d index bytes\n", vertexBytes, indexBytes)

	ray := picking.ScreenToRay(float32(*width)/2, float32(*height)/2,
		float32(*width), float32(*height), cam.ViewProjection().Inverse())
	if hit, dist, ok := g.Pick(ray); ok {
		fmt.Fprintf(a.out, "Centre hit: %s at distance %.4g\n", hit.Name, dist)
	} else {
		fmt.Fprintln(a.out, "Centre hit: none")
	}
	return nil
}

// sceneBounds unions the world bounds of every mesh node.
func sceneBounds(g *scene.Graph) (picking.AABB, bool) {
	var (
		out   picking.AABB
		found bool
	)
	g.Traverse(func(n *scene.Node) {
		box, ok := n.WorldBounds()
		if !ok {
			return
		}
		if !found {
			out, found = box, true
			return
		}
		out = picking.NewAABB(math.V3(out.Min).Min(math.V3(box.Min)).Array(), math.V3(out.Max).Max(math.V3(box.Max)).Array())
	})
	return out, found
}
