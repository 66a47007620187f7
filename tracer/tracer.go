package tracer

import "time"

type ChangeType uint8

const (
	SetBvhNodes ChangeType = iota
	SetVertices
	SetTriangles
	SetMaterials
	SetFrameDimensions
	UpdateCamera
	UpdatePrimaryLight
	numChangeTypes
)

func (c ChangeType) String() string {
	switch c {
	case SetBvhNodes:
		return "bvh nodes"
	case SetVertices:
		return "vertices"
	case SetTriangles:
		return "triangles"
	case SetMaterials:
		return "materials"
	case SetFrameDimensions:
		return "frame dimensions"
	case UpdateCamera:
		return "camera"
	case UpdatePrimaryLight:
		return "primary light"
	}
	return "unknown"
}

// UpdateMode controls whether a state change is applied immediately or
// queued until the next traced frame.
type UpdateMode uint8

const (
	Synchronous UpdateMode = iota
	Asynchronous
)

// Tracer statistics.
type Stats struct {
	// Time spent applying queued changes before the last frame.
	UpdateTime time.Duration

	// Wall clock time for tracing the last frame.
	RenderTime time.Duration

	// GPU time reported by the device for the last dispatch.
	GPUTime time.Duration

	// Dispatched work groups.
	GroupsX uint32
	GroupsY uint32
}

type Tracer interface {
	// Get tracer id.
	Id() string

	// Shutdown and cleanup tracer.
	Close()

	// Setup the tracer output for the given frame dimensions.
	Setup(frameW, frameH uint32) error

	// Apply a change immediately or queue it for the next frame.
	UpdateState(mode UpdateMode, change ChangeType, data interface{}) error

	// Append a change to the tracer's update buffer.
	AppendChange(ChangeType, interface{})

	// Apply all pending changes from the update buffer.
	ApplyPendingChanges() error

	// Trace a frame and present it.
	Trace() error

	// Retrieve last frame statistics.
	Stats() *Stats
}
