package scene

import (
	"fmt"

	"github.com/achilleasa/glint/types"
)

type CameraDirection uint8

const (
	Forward CameraDirection = iota
	Backward
	Left
	Right
	Up
	Down
)

// The camera type controls the scene camera.
type Camera struct {
	Position types.Vec3
	LookAt   types.Vec3
	Up       types.Vec3
	Pitch    float32
	Yaw      float32

	ViewMat types.Mat4
	ProjMat types.Mat4

	// Camera FOV in degrees
	FOV float32

	Near float32
	Far  float32
}

func NewCamera(fov float32) *Camera {
	return &Camera{
		ViewMat:  types.Ident4(),
		ProjMat:  types.Ident4(),
		Position: types.Vec3{0, 0, 0},
		LookAt:   types.Vec3{0, 0, -1},
		Up:       types.Vec3{0, 1, 0},
		FOV:      fov,
		Near:     0.1,
		Far:      1000,
	}
}

// Setup camera projection matrix.
func (c *Camera) SetupProjection(aspect float32) {
	c.ProjMat = types.Perspective4(c.FOV, aspect, c.Near, c.Far)
	c.Update()
}

// Update camera.
func (c *Camera) Update() {
	dir := c.Direction()
	pitchAxis := dir.Cross(c.Up)
	pitchQuat := types.QuatFromAxisAngle(pitchAxis, c.Pitch)
	yawQuat := types.QuatFromAxisAngle(c.Up, c.Yaw)

	orientQuat := pitchQuat.Mul(yawQuat).Normalize()

	// Update direction
	dir = orientQuat.Rotate(dir)
	c.LookAt = c.Position.Add(dir)
	c.Pitch, c.Yaw = 0, 0

	c.ViewMat = types.LookAtV(c.Position, c.LookAt, c.Up)
}

// Direction returns the normalized view direction.
func (c *Camera) Direction() types.Vec3 {
	return c.LookAt.Sub(c.Position).Normalize()
}

// Move the camera eye and look-at point by amount along dir.
func (c *Camera) Move(dir CameraDirection, amount float32) {
	forward := c.Direction()
	right := forward.Cross(c.Up).Normalize()

	var delta types.Vec3
	switch dir {
	case Forward:
		delta = forward.Mul(amount)
	case Backward:
		delta = forward.Mul(-amount)
	case Left:
		delta = right.Mul(-amount)
	case Right:
		delta = right.Mul(amount)
	case Up:
		delta = c.Up.Mul(amount)
	case Down:
		delta = c.Up.Mul(-amount)
	}

	c.Position = c.Position.Add(delta)
	c.LookAt = c.LookAt.Add(delta)
	c.Update()
}

func (c *Camera) ViewProjMat() types.Mat4 {
	return c.ProjMat.Mul4(c.ViewMat)
}

func (c *Camera) InvViewMat() types.Mat4 {
	return c.ViewMat.Inv()
}

func (c *Camera) InvProjMat() types.Mat4 {
	return c.ProjMat.Inv()
}

func (c *Camera) InvViewProjMat() types.Mat4 {
	return c.ViewProjMat().Inv()
}

// FrustumPlanes returns the world-space frustum planes for the current
// camera view and projection.
func (c *Camera) FrustumPlanes() FrustumPlanes {
	return ExtractFrustumPlanes(c.ViewProjMat())
}

func (c *Camera) String() string {
	return fmt.Sprintf(
		"Camera pos: (%3.3f, %3.3f, %3.3f), lookAt: (%3.3f, %3.3f, %3.3f), fov: %3.1f",
		c.Position[0], c.Position[1], c.Position[2],
		c.LookAt[0], c.LookAt[1], c.LookAt[2],
		c.FOV,
	)
}
