package opengl

import (
	"fmt"

	"github.com/achilleasa/glint/scene"
	"github.com/achilleasa/glint/types"
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	// Coefficients for converting delta cursor movements to yaw/pitch camera angles.
	mouseSensitivityX float32 = 0.005
	mouseSensitivityY float32 = 0.005

	// Camera movement speed in world units per key press.
	cameraMoveSpeed float32 = 0.25
)

const (
	leftMouseButton  = 0
	rightMouseButton = 1
)

type WindowOptions struct {
	Width  uint32
	Height uint32
	Title  string
	VSync  bool
}

// Window owns the glfw window and OpenGL context and translates keyboard
// and mouse input into camera movement.
type Window struct {
	window *glfw.Window

	// state
	lastCursorPos types.Vec2
	mousePressed  [2]bool
	camera        *scene.Camera

	// Invoked whenever input moves the camera.
	onCameraChange func(*scene.Camera)

	// Invoked for keys not handled by the window.
	onKey func(glfw.Key)
}

// Create a window with an OpenGL 4.3 core context and make the context
// current. Must be called from the main thread.
func NewWindow(opts WindowOptions, camera *scene.Camera) (*Window, error) {
	var err error
	if err = glfw.Init(); err != nil {
		return nil, fmt.Errorf("window: failed to initialize glfw: %w", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	w := &Window{camera: camera}
	w.window, err = glfw.CreateWindow(int(opts.Width), int(opts.Height), opts.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("window: could not create opengl window: %w", err)
	}
	w.window.MakeContextCurrent()

	if opts.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	// Bind event callbacks
	w.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	w.window.SetKeyCallback(w.onKeyEvent)
	w.window.SetMouseButtonCallback(w.onMouseEvent)
	w.window.SetCursorPosCallback(w.onCursorPosEvent)

	return w, nil
}

// OnCameraChange registers a callback invoked after input moves the camera.
func (w *Window) OnCameraChange(fn func(*scene.Camera)) {
	w.onCameraChange = fn
}

// OnKey registers a callback for key presses not handled by the window.
func (w *Window) OnKey(fn func(glfw.Key)) {
	w.onKey = fn
}

func (w *Window) ShouldClose() bool {
	return w.window.ShouldClose()
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) SwapBuffers() {
	w.window.SwapBuffers()
}

func (w *Window) SetTitle(title string) {
	w.window.SetTitle(title)
}

// Time returns the seconds elapsed since the window was created.
func (w *Window) Time() float64 {
	return glfw.GetTime()
}

func (w *Window) Close() {
	if w.window != nil {
		w.window.Destroy()
		w.window = nil
		glfw.Terminate()
	}
}

func (w *Window) onKeyEvent(win *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press && action != glfw.Repeat {
		return
	}

	var moveDir scene.CameraDirection
	switch key {
	case glfw.KeyEscape:
		win.SetShouldClose(true)
		return
	case glfw.KeyUp, glfw.KeyW:
		moveDir = scene.Forward
	case glfw.KeyDown, glfw.KeyS:
		moveDir = scene.Backward
	case glfw.KeyLeft, glfw.KeyA:
		moveDir = scene.Left
	case glfw.KeyRight, glfw.KeyD:
		moveDir = scene.Right
	case glfw.KeyPageUp, glfw.KeyE:
		moveDir = scene.Up
	case glfw.KeyPageDown, glfw.KeyQ:
		moveDir = scene.Down
	default:
		if action == glfw.Press && w.onKey != nil {
			w.onKey(key)
		}
		return
	}

	// Double speed if shift is pressed
	var speedScaler float32 = 1.0
	if (mods & glfw.ModShift) == glfw.ModShift {
		speedScaler = 2.0
	}
	w.camera.Move(moveDir, speedScaler*cameraMoveSpeed)
	w.cameraChanged()
}

func (w *Window) onMouseEvent(win *glfw.Window, button glfw.MouseButton, action glfw.Action, mod glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft && button != glfw.MouseButtonRight {
		return
	}

	w.mousePressed[leftMouseButton] = false
	w.mousePressed[rightMouseButton] = false

	if action == glfw.Press {
		xPos, yPos := win.GetCursorPos()
		w.lastCursorPos[0], w.lastCursorPos[1] = float32(xPos), float32(yPos)

		buttonIndex := leftMouseButton
		if button == glfw.MouseButtonRight {
			buttonIndex = rightMouseButton
		}

		w.mousePressed[buttonIndex] = true
	}
}

func (w *Window) onCursorPosEvent(win *glfw.Window, xPos, yPos float64) {
	if !w.mousePressed[leftMouseButton] {
		return
	}

	// Calculate delta movement and apply mouse sensitivity
	newPos := types.XY(float32(xPos), float32(yPos))
	delta := w.lastCursorPos.Sub(newPos)
	delta[0] *= mouseSensitivityX
	delta[1] *= mouseSensitivityY
	w.lastCursorPos = newPos

	// The left mouse button rotates lookat around eye
	w.camera.Pitch = delta[1]
	w.camera.Yaw = delta[0]
	w.camera.Update()
	w.cameraChanged()
}

func (w *Window) cameraChanged() {
	if w.onCameraChange != nil {
		w.onCameraChange(w.camera)
	}
}
