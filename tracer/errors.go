package tracer

import "errors"

var (
	ErrDeviceNotDefined      = errors.New("compute tracer: no device defined")
	ErrInvalidFrameSize      = errors.New("compute tracer: frame dimensions must be non-zero")
	ErrUnsupportedChangeData = errors.New("compute tracer: unsupported data for change")
)
