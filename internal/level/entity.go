package level

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Entity is one placed entity: flat string keys and values, the way map
// editors write them.
type Entity map[string]string

func (e Entity) Class() string {
	return e["classname"]
}

func (e Entity) Name() string {
	return e["targetname"]
}

func (e Entity) String(key, def string) string {
	if v, ok := e[key]; ok && v != "" {
		return v
	}
	return def
}

func (e Entity) Float(key string, def float64) (float64, error) {
	v, ok := e.value(key)
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, e.fieldErr(key, err)
	}
	return f, nil
}

func (e Entity) Int(key string, def int) (int, error) {
	v, ok := e.value(key)
	if !ok {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, e.fieldErr(key, err)
	}
	return i, nil
}

// Bool accepts 0/1 as well as true/false.
func (e Entity) Bool(key string, def bool) (bool, error) {
	v, ok := e.value(key)
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, e.fieldErr(key, err)
	}
	return b, nil
}

// Vector parses "x y z".
func (e Entity) Vector(key string, def mgl64.Vec3) (mgl64.Vec3, error) {
	v, ok := e.value(key)
	if !ok {
		return def, nil
	}
	parts := strings.Fields(v)
	if len(parts) != 3 {
		return mgl64.Vec3{}, e.fieldErr(key, fmt.Errorf("want 3 components, got %d", len(parts)))
	}
	var out mgl64.Vec3
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return mgl64.Vec3{}, e.fieldErr(key, err)
		}
		out[i] = f
	}
	return out, nil
}

func (e Entity) value(key string) (string, bool) {
	v, ok := e[key]
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e Entity) fieldErr(key string, err error) error {
	return fmt.Errorf("%s %q: key %q: %w", e.Class(), e.Name(), key, err)
}
