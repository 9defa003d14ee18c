package world

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Versifine/catapult/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

// Registry holds every body and named point target in a level. It answers
// name lookups and box queries; actuators treat it as read-only apart from
// the body they are acting on.
type Registry struct {
	mu      sync.RWMutex
	nextID  int32
	bodies  map[int32]*Body
	targets map[string]mgl64.Vec3
	grid    *grid
}

type Snapshot struct {
	Bodies  []Body
	Targets map[string]mgl64.Vec3
}

func NewRegistry(cellSize float64) *Registry {
	return &Registry{
		bodies:  make(map[int32]*Body),
		targets: make(map[string]mgl64.Vec3),
		grid:    newGrid(cellSize),
	}
}

// Add registers b, assigning an ID when it has none, and returns the ID.
func (r *Registry) Add(b *Body) int32 {
	if b == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.ID <= 0 {
		r.nextID++
		b.ID = r.nextID
	} else if b.ID > r.nextID {
		r.nextID = b.ID
	}
	r.bodies[b.ID] = b
	r.grid.insert(b.ID, b.Position.X(), b.Position.Y())
	return b.ID
}

// AddTarget registers a named point entity such as a landing marker.
func (r *Registry) AddTarget(name string, pos mgl64.Vec3) {
	if name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets[name] = pos
}

func (r *Registry) Remove(id int32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bodies[id]; !ok {
		return false
	}
	delete(r.bodies, id)
	r.grid.remove(id)
	return true
}

func (r *Registry) Get(id int32) (*Body, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bodies[id]
	return b, ok
}

// FindByName returns the lowest-ID body carrying name.
func (r *Registry) FindByName(name string) (*Body, bool) {
	if name == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found *Body
	for _, b := range r.bodies {
		if b.Name != name {
			continue
		}
		if found == nil || b.ID < found.ID {
			found = b
		}
	}
	return found, found != nil
}

// PositionOf resolves a name to a world position, point targets first.
func (r *Registry) PositionOf(name string) (mgl64.Vec3, bool) {
	r.mu.RLock()
	pos, ok := r.targets[name]
	r.mu.RUnlock()
	if ok {
		return pos, true
	}
	b, ok := r.FindByName(name)
	if !ok {
		return mgl64.Vec3{}, false
	}
	return b.Position, true
}

// Move places a body and refreshes its grid cell.
func (r *Registry) Move(id int32, pos mgl64.Vec3) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bodies[id]
	if !ok {
		return false
	}
	b.Position = pos
	r.grid.insert(id, pos.X(), pos.Y())
	return true
}

// Reindex refreshes grid cells after positions were written directly, as
// the integrator does every tick.
func (r *Registry) Reindex() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, b := range r.bodies {
		r.grid.insert(id, b.Position.X(), b.Position.Y())
	}
}

// BodiesIn returns the bodies whose origin lies inside box, by ascending ID.
func (r *Registry) BodiesIn(box physics.AABB) []*Body {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.grid.candidates(box.Min.X(), box.Min.Y(), box.Max.X(), box.Max.Y())
	out := make([]*Body, 0, len(ids))
	for _, id := range ids {
		b := r.bodies[id]
		if b == nil || !box.Contains(b.Position) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Overlapping returns the bodies whose hull intersects box, by ascending ID.
func (r *Registry) Overlapping(box physics.AABB) []*Body {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Body
	for _, b := range r.bodies {
		if box.Intersects(b.Bounds()) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Bodies returns every body by ascending ID.
func (r *Registry) Bodies() []*Body {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Body, 0, len(r.bodies))
	for _, b := range r.bodies {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bodies)
}

func (r *Registry) Snapshot() Snapshot {
	bodies := r.Bodies()
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap := Snapshot{
		Bodies:  make([]Body, 0, len(bodies)),
		Targets: make(map[string]mgl64.Vec3, len(r.targets)),
	}
	for _, b := range bodies {
		snap.Bodies = append(snap.Bodies, *b)
	}
	for name, pos := range r.targets {
		snap.Targets[name] = pos
	}
	return snap
}

func (s Snapshot) String() string {
	bodyInfos := make([]string, 0, len(s.Bodies))
	for i := range s.Bodies {
		bodyInfos = append(bodyInfos, s.Bodies[i].String())
	}

	names := make([]string, 0, len(s.Targets))
	for name := range s.Targets {
		names = append(names, name)
	}
	sort.Strings(names)
	targetInfos := make([]string, 0, len(names))
	for _, name := range names {
		pos := s.Targets[name]
		targetInfos = append(targetInfos, fmt.Sprintf("%s (%.1f, %.1f, %.1f)", name, pos.X(), pos.Y(), pos.Z()))
	}

	return fmt.Sprintf("Snapshot | [Bodies(%d): %s] | [Targets(%d): %s]",
		len(s.Bodies), strings.Join(bodyInfos, ", "),
		len(s.Targets), strings.Join(targetInfos, ", "),
	)
}
