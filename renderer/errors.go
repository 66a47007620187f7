package renderer

import "errors"

var (
	ErrSceneNotDefined  = errors.New("renderer: no scene defined")
	ErrDeviceNotDefined = errors.New("renderer: no device defined")
	ErrUnknownMesh      = errors.New("renderer: entity references a mesh that was not uploaded")
)
