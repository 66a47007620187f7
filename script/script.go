package script

import (
	"context"
	"fmt"
	"reflect"

	"github.com/achilleasa/glint/asset"
	"github.com/achilleasa/glint/log"
	"github.com/achilleasa/glint/scene"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// Import path of the package exposed to scripts.
const enginePackage = "glint/engine"

// Hook runs an interpreted Go script once per simulation step. Scripts
// import "glint/engine" to query and move entities and must define
//
//	func Update(dt float32)
type Hook struct {
	logger log.Logger
	scene  *scene.Scene
	name   string
	update func(float32)
}

// Load a script from a local path or URL and bind it to a scene.
func Load(ctx context.Context, location string, sc *scene.Scene) (*Hook, error) {
	src, err := asset.ReadSource(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}
	return New(location, string(src), sc)
}

// Compile a script and bind it to a scene.
func New(name, src string, sc *scene.Scene) (*Hook, error) {
	h := &Hook{
		logger: log.New("script"),
		scene:  sc,
		name:   name,
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("script: %s: %w", name, err)
	}
	if err := i.Use(h.exports()); err != nil {
		return nil, fmt.Errorf("script: %s: %w", name, err)
	}

	if _, err := i.Eval(src); err != nil {
		return nil, fmt.Errorf("script: could not evaluate %s: %w", name, err)
	}

	v, err := i.Eval("main.Update")
	if err != nil {
		return nil, fmt.Errorf("script: %s does not define func Update(dt float32): %w", name, err)
	}
	update, ok := v.Interface().(func(float32))
	if !ok {
		return nil, fmt.Errorf("script: %s: expected Update to have type func(float32); got %s", name, v.Type())
	}
	h.update = update

	h.logger.Infof("loaded script %s", name)
	return h, nil
}

// Update invokes the script Update function. Runtime panics inside the
// script are returned as errors.
func (h *Hook) Update(dt float32) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("script: %s: %v", h.name, r)
		}
	}()

	h.update(dt)
	return nil
}

func (h *Hook) exports() interp.Exports {
	return interp.Exports{
		enginePackage + "/engine": map[string]reflect.Value{
			"Find":        reflect.ValueOf(h.find),
			"Position":    reflect.ValueOf(h.position),
			"SetPosition": reflect.ValueOf(h.setPosition),
			"Velocity":    reflect.ValueOf(h.velocity),
			"SetVelocity": reflect.ValueOf(h.setVelocity),
			"Colliding":   reflect.ValueOf(h.colliding),
			"Log":         reflect.ValueOf(h.log),
		},
	}
}

// Entity ids are exposed as uint64 values; 0 means no entity.
func (h *Hook) find(name string) uint64 {
	if ent, ok := h.scene.Entities.Find(name); ok {
		return uint64(ent.ID)
	}
	return uint64(scene.NoEntity)
}

func (h *Hook) position(id uint64) (x, y, z float32) {
	if ent, ok := h.scene.Entities.Get(scene.EntityID(id)); ok {
		p := ent.Transform.Position
		return p[0], p[1], p[2]
	}
	return 0, 0, 0
}

func (h *Hook) setPosition(id uint64, x, y, z float32) {
	if ent, ok := h.scene.Entities.Get(scene.EntityID(id)); ok {
		ent.Transform.Position[0], ent.Transform.Position[1], ent.Transform.Position[2] = x, y, z
	}
}

func (h *Hook) velocity(id uint64) (x, y, z float32) {
	if ent, ok := h.scene.Entities.Get(scene.EntityID(id)); ok {
		v := ent.Transform.Velocity
		return v[0], v[1], v[2]
	}
	return 0, 0, 0
}

func (h *Hook) setVelocity(id uint64, x, y, z float32) {
	if ent, ok := h.scene.Entities.Get(scene.EntityID(id)); ok {
		ent.Transform.Velocity[0], ent.Transform.Velocity[1], ent.Transform.Velocity[2] = x, y, z
	}
}

func (h *Hook) colliding(id uint64) bool {
	if ent, ok := h.scene.Entities.Get(scene.EntityID(id)); ok && ent.Collider != nil {
		return ent.Collider.Colliding
	}
	return false
}

func (h *Hook) log(msg string) {
	h.logger.Infof("%s: %s", h.name, msg)
}
