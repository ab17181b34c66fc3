package spatial

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/solarlune/resolv"

	"github.com/cory-johannsen/duelist/internal/game/geom"
)

const (
	tagSolid = "solid"
	tagPit   = "pit"
	tagActor = "actor"
)

// resolvScale is the number of resolv units per world unit. resolv maps an
// object's far edge to a cell one unit inside its bounds, so geometry is
// scaled up until that unit is far below any wall or body width.
const resolvScale = 100

// toResolv builds a resolv rectangle object for the world rectangle at (x, y)
// with size (w, h).
func toResolv(x, y, w, h float64, tags ...string) *resolv.Object {
	obj := resolv.NewObject(x*resolvScale, y*resolvScale, w*resolvScale, h*resolvScale, tags...)
	obj.SetShape(resolv.NewRectangle(0, 0, w*resolvScale, h*resolvScale))
	return obj
}

// Space is a resolv-backed Query over a rectangular arena. Walls obstruct
// movement probes, pits remove ground, and actors are found by radius search.
//
// Space is not safe for concurrent use; an arena ticks its agents sequentially.
type Space struct {
	space      *resolv.Space
	width      float64
	height     float64
	probeSize  float64
	probeStep  float64
	actors     map[uuid.UUID]*resolv.Object
	actorRadii map[uuid.UUID]float64
	centers    map[uuid.UUID]geom.Vec2
}

// NewSpace builds an empty arena of the given size.
//
// Precondition: width, height, and cellSize must be > 0; bodyRadius must be >= 0.
// Postcondition: returns a non-nil Space or an error describing the bad argument.
func NewSpace(width, height, cellSize int, bodyRadius float64) (*Space, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("spatial.NewSpace: size %dx%d must be positive", width, height)
	}
	if cellSize <= 0 {
		return nil, fmt.Errorf("spatial.NewSpace: cell size %d must be positive", cellSize)
	}
	if bodyRadius < 0 {
		return nil, fmt.Errorf("spatial.NewSpace: body radius %v must not be negative", bodyRadius)
	}
	size := math.Max(bodyRadius*2, 0.01)
	return &Space{
		space:      resolv.NewSpace(width*resolvScale, height*resolvScale, cellSize*resolvScale, cellSize*resolvScale),
		width:      float64(width),
		height:     float64(height),
		probeSize:  size,
		probeStep:  math.Max(size/2, float64(cellSize)/4),
		actors:     make(map[uuid.UUID]*resolv.Object),
		actorRadii: make(map[uuid.UUID]float64),
		centers:    make(map[uuid.UUID]geom.Vec2),
	}, nil
}

// Width returns the arena width.
func (s *Space) Width() float64 { return s.width }

// Height returns the arena height.
func (s *Space) Height() float64 { return s.height }

// AddWall adds an obstruction covering the rectangle at (x, y) with size (w, h).
func (s *Space) AddWall(x, y, w, h float64) {
	s.addStatic(x, y, w, h, tagSolid)
}

// AddPit removes ground under the rectangle at (x, y) with size (w, h).
func (s *Space) AddPit(x, y, w, h float64) {
	s.addStatic(x, y, w, h, tagPit)
}

func (s *Space) addStatic(x, y, w, h float64, tag string) {
	s.space.Add(toResolv(x, y, w, h, tag))
}

// AddActor registers an actor body of the given radius centered at pos.
//
// Precondition: id must not already be registered.
// Postcondition: the actor is visible to FindCandidatesInRadius.
func (s *Space) AddActor(id uuid.UUID, pos geom.Vec2, radius float64) error {
	if _, ok := s.actors[id]; ok {
		return fmt.Errorf("spatial.Space.AddActor: actor %s already registered", id)
	}
	r := math.Max(radius, 0.01)
	obj := toResolv(pos.X-r, pos.Y-r, r*2, r*2, tagActor)
	obj.Data = id
	s.space.Add(obj)
	s.actors[id] = obj
	s.actorRadii[id] = r
	s.centers[id] = pos
	return nil
}

// MoveActor recenters a registered actor on pos. Unknown IDs are ignored.
func (s *Space) MoveActor(id uuid.UUID, pos geom.Vec2) {
	obj, ok := s.actors[id]
	if !ok {
		return
	}
	r := s.actorRadii[id]
	obj.X = (pos.X - r) * resolvScale
	obj.Y = (pos.Y - r) * resolvScale
	obj.Update()
	s.centers[id] = pos
}

// RemoveActor unregisters an actor. Unknown IDs are ignored.
func (s *Space) RemoveActor(id uuid.UUID) {
	obj, ok := s.actors[id]
	if !ok {
		return
	}
	s.space.Remove(obj)
	delete(s.actors, id)
	delete(s.actorRadii, id)
	delete(s.centers, id)
}

// ActorPosition returns the center of a registered actor.
func (s *Space) ActorPosition(id uuid.UUID) (geom.Vec2, bool) {
	pos, ok := s.centers[id]
	return pos, ok
}

func (s *Space) inBounds(p geom.Vec2) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < s.width && p.Y < s.height
}

// overlapsTagged places a temporary probe rectangle and reports whether it
// overlaps any object carrying tag.
func (s *Space) overlapsTagged(x, y, w, h float64, tag string) bool {
	probe := toResolv(x, y, w, h)
	s.space.Add(probe)
	defer s.space.Remove(probe)

	check := probe.Check(0, 0, tag)
	if check == nil {
		return false
	}
	for _, o := range check.ObjectsByTags(tag) {
		if rectsOverlap(probe.X, probe.Y, probe.W, probe.H, o.X, o.Y, o.W, o.H) {
			return true
		}
	}
	return false
}

func rectsOverlap(ax, ay, aw, ah, bx, by, bw, bh float64) bool {
	return ax < bx+bw && bx < ax+aw && ay < by+bh && by < ay+ah
}

// SampleGround reports whether p is inside the arena and not over a pit.
func (s *Space) SampleGround(p geom.Vec2) bool {
	if !s.inBounds(p) {
		return false
	}
	const point = 0.01
	return !s.overlapsTagged(p.X-point/2, p.Y-point/2, point, point, tagPit)
}

// ProbeClear sweeps a body-sized probe from one point to another and reports
// whether it stays inside the arena without touching a wall.
func (s *Space) ProbeClear(from, to geom.Vec2) bool {
	if !s.inBounds(from) || !s.inBounds(to) {
		return false
	}
	span := to.Sub(from)
	steps := int(math.Ceil(span.Len() / s.probeStep))
	if steps < 1 {
		steps = 1
	}
	half := s.probeSize / 2
	for i := 0; i <= steps; i++ {
		p := from.Add(span.Scale(float64(i) / float64(steps)))
		if s.overlapsTagged(p.X-half, p.Y-half, s.probeSize, s.probeSize, tagSolid) {
			return false
		}
	}
	return true
}

// FindCandidatesInRadius returns actors whose centers lie within radius of
// center, nearest first, ties broken by ID.
func (s *Space) FindCandidatesInRadius(center geom.Vec2, radius float64, filter func(Candidate) bool) []Candidate {
	if radius <= 0 || len(s.actors) == 0 {
		return nil
	}
	x0 := math.Max(center.X-radius, 0)
	y0 := math.Max(center.Y-radius, 0)
	x1 := math.Min(center.X+radius, s.width)
	y1 := math.Min(center.Y+radius, s.height)
	if x1 <= x0 || y1 <= y0 {
		return nil
	}

	probe := toResolv(x0, y0, x1-x0, y1-y0)
	s.space.Add(probe)
	check := probe.Check(0, 0, tagActor)
	s.space.Remove(probe)
	if check == nil {
		return nil
	}

	seen := make(map[uuid.UUID]struct{})
	var out []Candidate
	for _, o := range check.ObjectsByTags(tagActor) {
		id, ok := o.Data.(uuid.UUID)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		pos := s.centers[id]
		d := pos.Dist(center)
		if d > radius {
			continue
		}
		c := Candidate{ID: id, Position: pos, Distance: d}
		if filter != nil && !filter(c) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}
