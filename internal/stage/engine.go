package stage

import "github.com/vovakirdan/gridstage/internal/grid"

// Config holds the construction-time configuration of an Engine.
type Config struct {
	// Rows and Cols are the board dimensions, constant for the episode.
	Rows, Cols int

	// OcclusionInLayers selects between the two layer contracts of the
	// Observation: when true (the usual choice), each entity's visibility
	// layer excludes cells covered by strictly-higher-z live entities;
	// when false, each layer reports the entity's full unoccluded
	// footprint. The flag never changes the composite board itself, and
	// cannot change mid-episode.
	OcclusionInLayers bool
}

type engineState int

const (
	stateSetup engineState = iota
	statePlaying
	stateDone
)

// Engine drives one episode of a grid-world game. Entities are registered
// during setup (registration order is the z-order unless SetZOrder says
// otherwise); Start freezes the registry and produces the first
// observation; Step advances the world one turn at a time until an entity
// terminates the episode.
//
// An Engine is single-threaded and exclusively owns its board, registry,
// and Plot. It is not reusable: one Engine, one episode.
type Engine struct {
	cfg        Config
	plot       *Plot
	background Background
	entities   map[rune]Entity
	zOrder     []rune
	state      engineState
	lastBoard  *grid.Grid
}

// NewEngine creates an engine for a Rows x Cols board. The engine is in
// setup state: register a background and any entities, then call Start.
func NewEngine(cfg Config) *Engine {
	return &Engine{
		cfg:      cfg,
		plot:     newPlot(),
		entities: make(map[rune]Entity),
	}
}

// SetBackground registers the episode's single background entity.
func (e *Engine) SetBackground(bg Background) error {
	if e.state != stateSetup {
		return &StateError{Op: "SetBackground", Msg: "registration after Start"}
	}
	if e.background != nil {
		return &ConfigError{Char: bg.Character(), Msg: "a background is already registered"}
	}
	if err := e.checkIdentity(bg.Character()); err != nil {
		return err
	}
	c := bg.Curtain()
	if c == nil || c.Rows() != e.cfg.Rows || c.Cols() != e.cfg.Cols {
		return &ConfigError{Char: bg.Character(), Msg: "curtain dimensions do not match the board"}
	}
	e.background = bg
	return nil
}

// AddMask registers a mask entity. Registration order fixes its place in
// the z-order (later = in front).
func (e *Engine) AddMask(m MaskEntity) error {
	if e.state != stateSetup {
		return &StateError{Op: "AddMask", Msg: "registration after Start"}
	}
	if err := e.checkIdentity(m.Character()); err != nil {
		return err
	}
	fp := m.Footprint()
	if fp == nil || fp.Rows() != e.cfg.Rows || fp.Cols() != e.cfg.Cols {
		return &ConfigError{Char: m.Character(), Msg: "footprint dimensions do not match the board"}
	}
	e.entities[m.Character()] = m
	e.zOrder = append(e.zOrder, m.Character())
	return nil
}

// AddPoint registers a point entity. Registration order fixes its place in
// the z-order (later = in front).
func (e *Engine) AddPoint(p PointEntity) error {
	if e.state != stateSetup {
		return &StateError{Op: "AddPoint", Msg: "registration after Start"}
	}
	if err := e.checkIdentity(p.Character()); err != nil {
		return err
	}
	pos := p.Position()
	if pos.Row < 0 || pos.Row >= e.cfg.Rows || pos.Col < 0 || pos.Col >= e.cfg.Cols {
		return &ConfigError{Char: p.Character(), Msg: "initial position falls outside the board"}
	}
	e.entities[p.Character()] = p
	e.zOrder = append(e.zOrder, p.Character())
	return nil
}

// SetZOrder replaces the registration-order z-order with an explicit
// permutation of all registered mask and point identities. Available
// during setup only; after Start the z-order is immutable.
func (e *Engine) SetZOrder(order []rune) error {
	if e.state != stateSetup {
		return &StateError{Op: "SetZOrder", Msg: "z-order change after Start"}
	}
	if len(order) != len(e.zOrder) {
		return &ConfigError{Msg: "z-order is not a permutation of the registered entities"}
	}
	seen := make(map[rune]bool, len(order))
	for _, ch := range order {
		if _, ok := e.entities[ch]; !ok || seen[ch] {
			return &ConfigError{Char: ch, Msg: "z-order is not a permutation of the registered entities"}
		}
		seen[ch] = true
	}
	e.zOrder = append(e.zOrder[:0], order...)
	return nil
}

// Start finalizes setup and produces the episode's first observation.
// Every entity gets one initialization update with a nil action before the
// first composite. After Start, no further registration is accepted.
func (e *Engine) Start() (Observation, error) {
	if e.state != stateSetup {
		return Observation{}, &StateError{Op: "Start", Msg: "episode already started"}
	}
	if e.cfg.Rows <= 0 || e.cfg.Cols <= 0 {
		return Observation{}, &ConfigError{Msg: "board dimensions must be positive"}
	}
	if e.background == nil {
		return Observation{}, &ConfigError{Msg: "no background registered"}
	}

	e.plot.zOrder = e.plot.zOrder[:0]
	e.plot.zOrder = append(e.plot.zOrder, e.zOrder...)
	e.state = statePlaying

	// Pre-initial composite: the input the entities see during their
	// setup-only update, before any of them has run.
	e.lastBoard = e.composite(len(e.zOrder))

	if err := e.runUpdates(nil); err != nil {
		e.state = stateDone
		return Observation{}, err
	}

	obs := e.render()
	// The observation belongs to the caller; cache a private copy so a
	// background writing to its next up.Board cannot reach it.
	e.lastBoard = obs.Board.Clone()
	if e.plot.Terminated() {
		e.state = stateDone
	}
	return obs, nil
}

// Step advances the episode by one turn. The action is opaque to the
// engine and forwarded unmodified to every entity's update. It returns the
// new observation, the step's accumulated reward, and the discount.
//
// Calling Step before Start, or after the episode has terminated or
// failed, is a state-machine violation. An error from any entity's update
// aborts the step and the episode; the engine never retries.
func (e *Engine) Step(action any) (Observation, float64, float64, error) {
	switch e.state {
	case stateSetup:
		return Observation{}, 0, 0, &StateError{Op: "Step", Msg: "episode has not been started"}
	case stateDone:
		return Observation{}, 0, 0, &StateError{Op: "Step", Msg: "episode has finished"}
	}

	e.plot.beginStep()

	if err := e.runUpdates(action); err != nil {
		e.state = stateDone
		return Observation{}, 0, 0, err
	}

	obs := e.render()
	e.lastBoard = obs.Board.Clone()
	reward, discount := e.plot.reward, e.plot.discount
	if e.plot.Terminated() {
		e.state = stateDone
	}
	return obs, reward, discount, nil
}

// runUpdates consults every live entity in the contractual order:
// background first, then mask entities in z-order, then point entities in
// z-order. Each entity sees the board composited strictly from lower-z
// live entities (the background sees the previous step's full board).
func (e *Engine) runUpdates(action any) error {
	up := Update{
		Action:     action,
		Background: e.background,
		Entities:   e.entities,
		Plot:       e.plot,
	}

	up.Board = e.lastBoard
	if err := e.background.Update(up); err != nil {
		return err
	}

	for i, ch := range e.zOrder {
		if m, ok := e.entities[ch].(MaskEntity); ok && m.Alive() {
			up.Board = e.composite(i)
			if err := m.Update(up); err != nil {
				return err
			}
		}
	}
	for i, ch := range e.zOrder {
		if p, ok := e.entities[ch].(PointEntity); ok && p.Alive() {
			up.Board = e.composite(i)
			if err := p.Update(up); err != nil {
				return err
			}
		}
	}
	return nil
}

// composite paints the background and the first n z-order entries (live
// entities only) onto a fresh board.
func (e *Engine) composite(n int) *grid.Grid {
	board := e.background.Curtain().Clone()
	for _, ch := range e.zOrder[:n] {
		e.paint(board, ch)
	}
	return board
}

// paint draws one live entity onto the board.
func (e *Engine) paint(board *grid.Grid, ch rune) {
	switch ent := e.entities[ch].(type) {
	case MaskEntity:
		if !ent.Alive() {
			return
		}
		fp := ent.Footprint()
		for r := 0; r < fp.Rows(); r++ {
			for c := 0; c < fp.Cols(); c++ {
				if fp.Get(grid.P(r, c)) {
					board.Set(grid.P(r, c), ch)
				}
			}
		}
	case PointEntity:
		if !ent.Alive() {
			return
		}
		board.Set(ent.Position(), ch)
	}
}

func (e *Engine) checkIdentity(ch rune) error {
	if e.background != nil && e.background.Character() == ch {
		return &ConfigError{Char: ch, Msg: "identity already claimed by the background"}
	}
	if _, ok := e.entities[ch]; ok {
		return &ConfigError{Char: ch, Msg: "identity already claimed"}
	}
	return nil
}

// Plot returns the episode's shared communication object.
func (e *Engine) Plot() *Plot {
	return e.plot
}

// Rows returns the board height.
func (e *Engine) Rows() int {
	return e.cfg.Rows
}

// Cols returns the board width.
func (e *Engine) Cols() int {
	return e.cfg.Cols
}

// Background returns the registered background entity.
func (e *Engine) Background() Background {
	return e.background
}

// Entities returns the registry of mask and point entities keyed by
// identity. Callers should limit themselves to read-only interactions.
func (e *Engine) Entities() map[rune]Entity {
	return e.entities
}

// ZOrder returns a copy of the z-order, from back to front.
func (e *Engine) ZOrder() []rune {
	out := make([]rune, len(e.zOrder))
	copy(out, e.zOrder)
	return out
}

// Finished reports whether the episode has terminated or failed.
func (e *Engine) Finished() bool {
	return e.state == stateDone
}
