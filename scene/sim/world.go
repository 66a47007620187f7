package sim

import (
	"fmt"

	"github.com/achilleasa/glint/log"
	"github.com/achilleasa/glint/scene"
)

// Hook is invoked once per step before transforms are integrated.
type Hook interface {
	Update(dt float32) error
}

// World advances a scene using a fixed update order: script hook, transform
// integration and collision detection.
type World struct {
	Scene *scene.Scene

	logger log.Logger
	hook   Hook

	frame uint64
}

// Create a new world for the given scene. The hook may be nil.
func NewWorld(sc *scene.Scene, hook Hook) *World {
	return &World{
		Scene:  sc,
		hook:   hook,
		logger: log.New("simulation"),
	}
}

// Frame returns the number of completed steps.
func (w *World) Frame() uint64 {
	return w.frame
}

// Step advances the simulation by dt seconds and returns the collisions
// detected during this step.
func (w *World) Step(dt float32) ([]Collision, error) {
	if w.hook != nil {
		if err := w.hook.Update(dt); err != nil {
			return nil, fmt.Errorf("simulation: script update failed at frame %d: %w", w.frame, err)
		}
	}

	collisions := Update(w.Scene, dt)
	for _, c := range collisions {
		w.logger.Debugf("frame %d: %s collided with %s (overlap %.3f)", w.frame, c.Dynamic, c.Static, c.Overlap)
	}

	w.frame++
	return collisions, nil
}
