package tracer

import (
	"fmt"
	"time"

	"github.com/achilleasa/glint/asset"
	"github.com/achilleasa/glint/log"
	"github.com/achilleasa/glint/scene"
	"github.com/achilleasa/glint/scene/bvh"
	"github.com/achilleasa/glint/scene/compiler"
	"github.com/achilleasa/glint/types"
)

// Work group size along each axis. Must match the local_size declared by
// the trace shader.
const WorkGroupSize = 16

type computeTracer struct {
	logger log.Logger

	// The device associated with this tracer instance.
	device Device

	// The tracer id.
	id string

	// A buffer for queuing updates. Updates are grouped by type and
	// latest updates always overwrite the previous ones.
	updateBuffer map[ChangeType]interface{}

	frameW, frameH uint32
	numNodes       uint32
	uniforms       Uniforms

	// Statistics for last rendered frame.
	stats *Stats
}

// Create a tracer that walks the linear BVH on the GPU using a compute
// shader dispatched through the given device.
func NewComputeTracer(id string, device Device) (Tracer, error) {
	if device == nil {
		return nil, ErrDeviceNotDefined
	}

	return &computeTracer{
		logger:       log.New(fmt.Sprintf("compute tracer (%s)", id)),
		device:       device,
		id:           id,
		updateBuffer: make(map[ChangeType]interface{}),
		uniforms: Uniforms{
			InvView:  types.Ident4(),
			InvProj:  types.Ident4(),
			LightDir: types.XYZ(0, -1, 0),
		},
		stats: &Stats{},
	}, nil
}

// Get tracer id.
func (tr *computeTracer) Id() string {
	return tr.id
}

// Shutdown and cleanup tracer.
func (tr *computeTracer) Close() {
	if tr.device != nil {
		tr.device.Close()
		tr.device = nil
	}
	tr.updateBuffer = make(map[ChangeType]interface{})
}

// Setup the off-screen target.
func (tr *computeTracer) Setup(frameW, frameH uint32) error {
	return tr.UpdateState(Synchronous, SetFrameDimensions, [2]uint32{frameW, frameH})
}

// Apply a change immediately or queue it for the next frame.
func (tr *computeTracer) UpdateState(mode UpdateMode, change ChangeType, data interface{}) error {
	if mode == Asynchronous {
		tr.AppendChange(change, data)
		return nil
	}

	if tr.device == nil {
		return ErrDeviceNotDefined
	}
	return tr.applyChange(change, data)
}

// Append a change to the tracer's update buffer.
func (tr *computeTracer) AppendChange(change ChangeType, data interface{}) {
	tr.updateBuffer[change] = data
}

// Apply all pending changes from the update buffer in change type order.
func (tr *computeTracer) ApplyPendingChanges() error {
	if tr.device == nil {
		return ErrDeviceNotDefined
	}

	for change := ChangeType(0); change < numChangeTypes; change++ {
		data, ok := tr.updateBuffer[change]
		if !ok {
			continue
		}
		if err := tr.applyChange(change, data); err != nil {
			return err
		}
		delete(tr.updateBuffer, change)
	}

	return nil
}

func (tr *computeTracer) applyChange(change ChangeType, data interface{}) error {
	var err error
	switch change {
	case SetBvhNodes:
		nodes, ok := data.([]bvh.LinearNode)
		if !ok {
			return unsupportedData(change, data)
		}
		if err = tr.device.UploadBuffer(NodeBuffer, nodes); err == nil {
			tr.numNodes = uint32(len(nodes))
		}
	case SetVertices:
		vertices, ok := data.([]asset.Vertex)
		if !ok {
			return unsupportedData(change, data)
		}
		err = tr.device.UploadBuffer(VertexBuffer, vertices)
	case SetTriangles:
		triangles, ok := data.([]asset.Triangle)
		if !ok {
			return unsupportedData(change, data)
		}
		err = tr.device.UploadBuffer(TriangleBuffer, triangles)
	case SetMaterials:
		materials, ok := data.([]asset.Material)
		if !ok {
			return unsupportedData(change, data)
		}
		err = tr.device.UploadBuffer(MaterialBuffer, materials)
	case SetFrameDimensions:
		dims, ok := data.([2]uint32)
		if !ok {
			return unsupportedData(change, data)
		}
		if dims[0] == 0 || dims[1] == 0 {
			return ErrInvalidFrameSize
		}
		if err = tr.device.ResizeTarget(dims[0], dims[1]); err == nil {
			tr.frameW, tr.frameH = dims[0], dims[1]
		}
	case UpdateCamera:
		camera, ok := data.(*scene.Camera)
		if !ok || camera == nil {
			return unsupportedData(change, data)
		}
		tr.uniforms.CameraPos = camera.Position
		tr.uniforms.InvView = camera.InvViewMat()
		tr.uniforms.InvProj = camera.InvProjMat()
	case UpdatePrimaryLight:
		light, ok := data.(*scene.Light)
		if !ok {
			return unsupportedData(change, data)
		}
		if light == nil {
			tr.uniforms.LightDir = types.XYZ(0, -1, 0)
			tr.uniforms.LightColor = types.Vec3{}
			break
		}
		tr.uniforms.LightDir = light.Direction.Normalize()
		tr.uniforms.LightColor = light.Radiance()
	default:
		return fmt.Errorf("compute tracer: unsupported change type %d", change)
	}

	if err != nil {
		return fmt.Errorf("compute tracer: could not apply %s change: %w", change, err)
	}
	return nil
}

func unsupportedData(change ChangeType, data interface{}) error {
	return fmt.Errorf("%w %s: %T", ErrUnsupportedChangeData, change, data)
}

// Trace applies any pending changes, dispatches the trace shader and
// presents its output. The dispatch is skipped while the BVH is empty.
func (tr *computeTracer) Trace() error {
	if tr.device == nil {
		return ErrDeviceNotDefined
	}

	start := time.Now()
	*tr.stats = Stats{}

	if len(tr.updateBuffer) != 0 {
		if err := tr.ApplyPendingChanges(); err != nil {
			return err
		}
		tr.stats.UpdateTime = time.Since(start)
	}

	if tr.frameW == 0 || tr.frameH == 0 {
		return ErrInvalidFrameSize
	}

	if tr.numNodes != 0 {
		groupsX, groupsY := DispatchGroups(tr.frameW, tr.frameH)
		tr.uniforms.FrameW, tr.uniforms.FrameH = tr.frameW, tr.frameH
		tr.uniforms.NumNodes = tr.numNodes

		if err := tr.device.Dispatch(groupsX, groupsY, tr.uniforms); err != nil {
			return fmt.Errorf("compute tracer: dispatch failed: %w", err)
		}
		tr.stats.GroupsX, tr.stats.GroupsY = groupsX, groupsY
		tr.stats.GPUTime = tr.device.DispatchTime()
	} else if err := tr.device.ClearTarget(); err != nil {
		// Without geometry the previous output must not be presented again
		return fmt.Errorf("compute tracer: clear failed: %w", err)
	}

	if err := tr.device.Present(); err != nil {
		return fmt.Errorf("compute tracer: present failed: %w", err)
	}

	tr.stats.RenderTime = time.Since(start)
	return nil
}

// Retrieve last frame statistics.
func (tr *computeTracer) Stats() *Stats {
	return tr.stats
}

// DispatchGroups returns the number of work groups needed to cover a frame.
func DispatchGroups(frameW, frameH uint32) (uint32, uint32) {
	return (frameW + WorkGroupSize - 1) / WorkGroupSize, (frameH + WorkGroupSize - 1) / WorkGroupSize
}

// UploadScene queues or applies the buffers of a compiled scene.
func UploadScene(tr Tracer, mode UpdateMode, cs *compiler.CompiledScene) error {
	changes := []struct {
		change ChangeType
		data   interface{}
	}{
		{SetVertices, cs.Vertices},
		{SetTriangles, cs.Triangles},
		{SetMaterials, cs.Materials},
		{SetBvhNodes, cs.BvhNodes},
	}

	for _, c := range changes {
		if err := tr.UpdateState(mode, c.change, c.data); err != nil {
			return err
		}
	}
	return nil
}
