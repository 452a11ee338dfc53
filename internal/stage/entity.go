// Package stage implements the gridstage core: a deterministic, turn-based
// compositing and update engine for grid-world games built from
// independently authored entities.
//
// A game board is populated by exactly one Background (which owns the full
// board's characters), any number of mask entities (each owning a boolean
// footprint over the board plus a display character), and any number of
// point entities (each owning a single coordinate plus a display character).
// Every step the Engine consults the background, then each mask entity, then
// each point entity, in a fixed z-order; entities mutate their own state and
// communicate through the shared Plot, and the Engine composites the result
// into an Observation with occlusion.
package stage

import "github.com/vovakirdan/gridstage/internal/grid"

// Update bundles everything an entity may consult during its update call.
// Entities must treat every field except Plot as a read-only snapshot and
// must not retain references past the call.
type Update struct {
	// Action is the opaque caller-supplied action for this step. It is nil
	// during the initialization pass run by Engine.Start.
	Action any

	// Board is the board composited strictly from lower-z live entities
	// (for the background: the fully composited previous board).
	Board *grid.Grid

	// Background is the game's background entity.
	Background Background

	// Entities is the full registry of mask and point entities keyed by
	// identity, including dead ones. Read-only.
	Entities map[rune]Entity

	// Plot is the episode's shared communication object.
	Plot *Plot
}

// Entity is the capability shared by mask and point entities.
type Entity interface {
	// Character returns the entity's unique identity, which is also the
	// character it paints onto the board.
	Character() rune

	// Alive reports whether the entity participates in updates and
	// compositing. Dead entities stay in the registry.
	Alive() bool
}

// Background owns the full board's characters. Exactly one exists per
// engine; it updates first every step and composites at the bottom of the
// z-order (its footprint is implicitly everywhere).
type Background interface {
	Character() rune
	Curtain() *grid.Grid
	Update(up Update) error
}

// MaskEntity owns a boolean footprint over the whole board plus a display
// character painted at every covered cell.
type MaskEntity interface {
	Entity
	Footprint() *grid.Mask
	Update(up Update) error
}

// PointEntity owns a single board coordinate plus a display character.
type PointEntity interface {
	Entity
	Position() grid.Point
	Update(up Update) error
}

// BackgroundBase holds the owned state of a Background. Embed it and
// implement Update; mutate the curtain through Curtain().
type BackgroundBase struct {
	char    rune
	curtain *grid.Grid
}

// NewBackgroundBase creates a background base with the given identity and
// (possibly prefilled) curtain.
func NewBackgroundBase(char rune, curtain *grid.Grid) BackgroundBase {
	return BackgroundBase{char: char, curtain: curtain}
}

// Character returns the background's identity.
func (b *BackgroundBase) Character() rune {
	return b.char
}

// Curtain returns the background's owned character grid.
func (b *BackgroundBase) Curtain() *grid.Grid {
	return b.curtain
}

// MaskBase holds the owned state of a MaskEntity. Embed it and implement
// Update; mutate the footprint through Footprint().
type MaskBase struct {
	char      rune
	footprint *grid.Mask
	dead      bool
}

// NewMaskBase creates a mask base with the given identity and footprint.
func NewMaskBase(char rune, footprint *grid.Mask) MaskBase {
	return MaskBase{char: char, footprint: footprint}
}

// Character returns the entity's identity.
func (m *MaskBase) Character() rune {
	return m.char
}

// Alive reports whether the entity is alive.
func (m *MaskBase) Alive() bool {
	return !m.dead
}

// SetAlive toggles the entity's alive flag.
func (m *MaskBase) SetAlive(alive bool) {
	m.dead = !alive
}

// Footprint returns the entity's owned boolean footprint.
func (m *MaskBase) Footprint() *grid.Mask {
	return m.footprint
}

// PointBase holds the owned state of a PointEntity. Embed it and implement
// Update; move with MoveTo.
type PointBase struct {
	char rune
	pos  grid.Point
	dead bool
}

// NewPointBase creates a point base with the given identity and position.
func NewPointBase(char rune, pos grid.Point) PointBase {
	return PointBase{char: char, pos: pos}
}

// Character returns the entity's identity.
func (p *PointBase) Character() rune {
	return p.char
}

// Alive reports whether the entity is alive.
func (p *PointBase) Alive() bool {
	return !p.dead
}

// SetAlive toggles the entity's alive flag.
func (p *PointBase) SetAlive(alive bool) {
	p.dead = !alive
}

// Position returns the entity's current coordinate.
func (p *PointBase) Position() grid.Point {
	return p.pos
}

// MoveTo replaces the entity's coordinate. The new position should fall
// inside the board; the engine paints whatever is stored here.
func (p *PointBase) MoveTo(pos grid.Point) {
	p.pos = pos
}
