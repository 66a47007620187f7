package tracer

import (
	"reflect"
	"time"
	"unsafe"

	"github.com/achilleasa/glint/types"
)

// Binding identifies a read-only storage buffer consumed by the trace shader.
type Binding uint8

const (
	NodeBuffer Binding = iota
	VertexBuffer
	TriangleBuffer
	MaterialBuffer
	NumBindings
)

func (b Binding) String() string {
	switch b {
	case NodeBuffer:
		return "nodes"
	case VertexBuffer:
		return "vertices"
	case TriangleBuffer:
		return "triangles"
	case MaterialBuffer:
		return "materials"
	}
	return "unknown"
}

// Uniforms are the per-dispatch shader inputs.
type Uniforms struct {
	CameraPos types.Vec3
	InvView   types.Mat4
	InvProj   types.Mat4

	LightDir   types.Vec3
	LightColor types.Vec3

	FrameW   uint32
	FrameH   uint32
	NumNodes uint32
}

// Device is the GPU contract required by the compute tracer.
type Device interface {
	// Upload a slice of fixed-size records to a storage buffer binding,
	// replacing any previous contents. An empty slice releases the buffer.
	UploadBuffer(binding Binding, data interface{}) error

	// Allocate the off-screen color and depth target.
	ResizeTarget(frameW, frameH uint32) error

	// Dispatch the trace shader over a grid of work groups.
	Dispatch(groupsX, groupsY uint32, uniforms Uniforms) error

	// Fill the trace output with the background color.
	ClearTarget() error

	// Blit the trace output to the screen.
	Present() error

	// GPU time for the last dispatch.
	DispatchTime() time.Duration

	Close()
}

// SliceData returns a pointer to the first element of a slice and its size
// in bytes. A nil pointer is returned for empty slices.
func SliceData(data interface{}) (unsafe.Pointer, int) {
	reflVal := reflect.ValueOf(data)

	if reflVal.Kind() != reflect.Slice {
		panic("SliceData: this function only supports slices")
	}

	sliceElemCount := reflVal.Len()
	if sliceElemCount == 0 {
		return nil, 0
	}

	return unsafe.Pointer(reflVal.Index(0).Addr().Pointer()),
		sliceElemCount * int(reflVal.Type().Elem().Size())
}
