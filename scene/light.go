package scene

import (
	"fmt"

	"github.com/achilleasa/glint/types"
	"github.com/chewxy/math32"
)

type LightType uint8

const (
	DirectionalLight LightType = iota
	PointLight
	SpotLight
	AmbientLight
)

// Illumination below this value is considered black.
const DefaultLightCutoff float32 = 0.004

var luminanceWeights = types.XYZ(0.2126, 0.7152, 0.0722)

func (t LightType) String() string {
	switch t {
	case DirectionalLight:
		return "directional"
	case PointLight:
		return "point"
	case SpotLight:
		return "spot"
	case AmbientLight:
		return "ambient"
	}
	return fmt.Sprintf("LightType(%d)", uint8(t))
}

// Parse a light type name.
func ParseLightType(name string) (LightType, error) {
	for _, t := range []LightType{DirectionalLight, PointLight, SpotLight, AmbientLight} {
		if t.String() == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("scene: unknown light type %q", name)
}

// Light is a world-space light instance.
type Light struct {
	Type      LightType
	Color     types.Vec3
	Intensity float32

	// Used by point and spot lights.
	Position types.Vec3

	// Used by directional and spot lights.
	Direction types.Vec3

	// Spot light cone half-angle in degrees.
	SpotAngle float32
}

// Radiance returns the light color scaled by its intensity.
func (l *Light) Radiance() types.Vec3 {
	return l.Color.Mul(l.Intensity)
}

// Luminance returns the perceived brightness of the light radiance.
func (l *Light) Luminance() float32 {
	return l.Radiance().Dot(luminanceWeights)
}

// HasVolume returns true if the light contribution is bounded in space and
// can be rendered using a light volume.
func (l *Light) HasVolume() bool {
	return l.Type == PointLight || l.Type == SpotLight
}

// VolumeRadius returns the distance at which the attenuated light
// luminance L/(1+2r+2r^2) drops to cutoff. Lights that never exceed the
// cutoff have a zero radius.
func (l *Light) VolumeRadius(cutoff float32) float32 {
	lum := l.Luminance()
	if cutoff <= 0 || lum <= cutoff {
		return 0
	}

	// 2r^2 + 2r + (1 - L/c) = 0
	disc := 8*lum/cutoff - 4
	return (-2 + math32.Sqrt(disc)) / 4
}

// VolumeMatrix returns the model matrix that maps a unit light volume mesh
// to a volume of the given radius centered at the light position.
func (l *Light) VolumeMatrix(radius float32) types.Mat4 {
	return types.Translate4(l.Position).Mul4(types.Scale4(types.Splat3(radius)))
}

// Unit light volume bounds in model space.
func UnitVolumeBounds() Bounds {
	return Bounds{Min: types.Splat3(-1), Max: types.Splat3(1)}
}
