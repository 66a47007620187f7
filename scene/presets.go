package scene

import (
	"fmt"
	"sort"

	"github.com/achilleasa/glint/asset"
	"github.com/achilleasa/glint/types"
)

// PresetOptions customize the procedural scene presets.
type PresetOptions struct {
	// Texture applied to the floor plane; a checkerboard is generated if nil.
	FloorTexture *asset.Texture
}

type presetBuilder func(*Scene, PresetOptions) error

var presets = map[string]struct {
	description string
	build       presetBuilder
}{
	"cubes":     {"a grid of cubes lit by a sun and a few point lights", buildCubesPreset},
	"collision": {"dynamic spheres moving towards static boxes", buildCollisionPreset},
	"lights":    {"a field of spheres lit by many colored point lights", buildLightsPreset},
}

// PresetNames returns the sorted list of available scene presets.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresetDescription returns a short description for a preset.
func PresetDescription(name string) string {
	return presets[name].description
}

// Create a scene from a named preset.
func Preset(name string, opts PresetOptions) (*Scene, error) {
	p, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("scene: unknown preset %q", name)
	}

	sc := NewScene()
	if err := p.build(sc, opts); err != nil {
		return nil, fmt.Errorf("scene: could not build preset %q: %w", name, err)
	}
	return sc, nil
}

// Add a textured floor plane.
func addFloor(sc *Scene, opts PresetOptions, size float32) error {
	tex := opts.FloorTexture
	if tex == nil {
		var err error
		tex, err = asset.Checker(256, 32, [4]byte{200, 200, 200, 255}, [4]byte{90, 90, 90, 255})
		if err != nil {
			return err
		}
	}

	mat := asset.NewMaterial(types.XYZ(1, 1, 1))
	mat.DiffuseTexture = sc.AddTexture(tex)
	matIndex, err := sc.AddMaterial(mat)
	if err != nil {
		return err
	}

	floor := sc.Entities.Create("floor")
	return sc.AttachRenderer(floor.ID, sc.AddMesh(asset.Plane(size)), matIndex)
}

func addSun(sc *Scene) {
	sc.AddLight(Light{
		Type:      DirectionalLight,
		Color:     types.XYZ(1, 0.95, 0.9),
		Intensity: 0.8,
		Direction: types.XYZ(-0.4, -1, -0.3).Normalize(),
	})
	sc.AddLight(Light{
		Type:      AmbientLight,
		Color:     types.XYZ(1, 1, 1),
		Intensity: 0.05,
	})
}

func buildCubesPreset(sc *Scene, opts PresetOptions) error {
	if err := addFloor(sc, opts, 40); err != nil {
		return err
	}
	addSun(sc)

	cube := sc.AddMesh(asset.Cube(1))
	palette := []types.Vec3{
		types.XYZ(0.8, 0.2, 0.2),
		types.XYZ(0.2, 0.8, 0.2),
		types.XYZ(0.2, 0.2, 0.8),
		types.XYZ(0.8, 0.8, 0.2),
	}
	var materials []uint32
	for _, c := range palette {
		m, err := sc.AddMaterial(asset.NewMaterial(c))
		if err != nil {
			return err
		}
		materials = append(materials, m)
	}

	glass := asset.NewMaterial(types.XYZ(0.6, 0.8, 1))
	glass.Opacity = 0.4
	glassIndex, err := sc.AddMaterial(glass)
	if err != nil {
		return err
	}

	for x := -3; x <= 3; x++ {
		for z := -3; z <= 3; z++ {
			ent := sc.Entities.Create(fmt.Sprintf("cube_%d_%d", x+3, z+3))
			ent.Transform.Position = types.XYZ(float32(x)*3, 0.5, float32(z)*3)
			ent.Transform.Rotation = types.QuatFromAxisAngle(types.XYZ(0, 1, 0), float32(x*z)*0.2)

			mat := materials[(x+z+6)%len(materials)]
			if x == 0 && z == 0 {
				mat = glassIndex
				ent.Transform.Scale = types.Splat3(2)
				ent.Transform.Position[1] = 1
			}
			if err := sc.AttachRenderer(ent.ID, cube, mat); err != nil {
				return err
			}
		}
	}

	for i, c := range palette {
		sc.AddLight(Light{
			Type:      PointLight,
			Color:     c,
			Intensity: 2,
			Position:  types.XYZ(float32(i*6-9), 2, 0),
		})
	}
	sc.AddLight(Light{
		Type:      SpotLight,
		Color:     types.XYZ(1, 1, 1),
		Intensity: 3,
		Position:  types.XYZ(0, 6, 0),
		Direction: types.XYZ(0, -1, 0),
		SpotAngle: 30,
	})

	sc.Camera.Position = types.XYZ(0, 8, 22)
	sc.Camera.LookAt = types.XYZ(0, 0, 0)
	return nil
}

func buildCollisionPreset(sc *Scene, opts PresetOptions) error {
	if err := addFloor(sc, opts, 40); err != nil {
		return err
	}
	addSun(sc)

	sphere := sc.AddMesh(asset.UVSphere(16, 32))
	cube := sc.AddMesh(asset.Cube(1))
	ballMat, err := sc.AddMaterial(asset.NewMaterial(types.XYZ(0.9, 0.4, 0.1)))
	if err != nil {
		return err
	}
	wallMat, err := sc.AddMaterial(asset.NewMaterial(types.XYZ(0.3, 0.3, 0.35)))
	if err != nil {
		return err
	}

	for i := 0; i < 4; i++ {
		z := float32(i*4 - 6)

		wall := sc.Entities.Create(fmt.Sprintf("wall_%d", i))
		wall.Transform.Position = types.XYZ(6, 1, z)
		wall.Transform.Scale = types.XYZ(1, 2, 2)
		wall.Collider = NewBoxCollider(types.XYZ(0.5, 1, 1), false)
		if err := sc.AttachRenderer(wall.ID, cube, wallMat); err != nil {
			return err
		}

		ball := sc.Entities.Create(fmt.Sprintf("ball_%d", i))
		ball.Transform.Position = types.XYZ(-6, 1, z)
		ball.Transform.Scale = types.Splat3(0.5)
		ball.Transform.Velocity = types.XYZ(1+float32(i)*0.5, 0, 0)
		ball.Collider = NewSphereCollider(0.5, true)
		if err := sc.AttachRenderer(ball.ID, sphere, ballMat); err != nil {
			return err
		}
	}

	sc.Camera.Position = types.XYZ(0, 10, 16)
	sc.Camera.LookAt = types.XYZ(0, 0, 0)
	return nil
}

func buildLightsPreset(sc *Scene, opts PresetOptions) error {
	if err := addFloor(sc, opts, 60); err != nil {
		return err
	}
	sc.AddLight(Light{
		Type:      AmbientLight,
		Color:     types.XYZ(1, 1, 1),
		Intensity: 0.02,
	})

	sphere := sc.AddMesh(asset.UVSphere(12, 24))
	mat, err := sc.AddMaterial(asset.NewMaterial(types.XYZ(0.8, 0.8, 0.8)))
	if err != nil {
		return err
	}

	for x := -5; x <= 5; x++ {
		for z := -5; z <= 5; z++ {
			ent := sc.Entities.Create(fmt.Sprintf("sphere_%d_%d", x+5, z+5))
			ent.Transform.Position = types.XYZ(float32(x)*4, 0.6, float32(z)*4)
			ent.Transform.Scale = types.Splat3(0.6)
			if err := sc.AttachRenderer(ent.ID, sphere, mat); err != nil {
				return err
			}

			if (x+z)%2 == 0 {
				sc.AddLight(Light{
					Type:      PointLight,
					Color:     types.XYZ(float32(x+5)/10, 0.5, float32(z+5)/10),
					Intensity: 1.5,
					Position:  types.XYZ(float32(x)*4+2, 1.5, float32(z)*4+2),
				})
			}
		}
	}

	sc.Camera.Position = types.XYZ(0, 15, 30)
	sc.Camera.LookAt = types.XYZ(0, 0, 0)
	return nil
}
