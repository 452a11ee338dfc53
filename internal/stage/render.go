package stage

import "github.com/vovakirdan/gridstage/internal/grid"

// Observation is the composited view of the board handed back to the
// caller after every step. It is derived, never stored: the engine
// allocates a fresh Observation per step, so callers may keep them.
type Observation struct {
	// Board is the final composite: each cell shows the character of the
	// highest-z live entity covering it, with the background as fallback.
	Board *grid.Grid

	// Layers maps every registered identity (including the background's)
	// to its visibility layer. With occlusion in layers enabled, a layer
	// is the entity's footprint minus cells covered by strictly-higher-z
	// live entities; with it disabled, the full unoccluded footprint.
	// Dead entities get an all-false layer.
	Layers map[rune]*grid.Mask
}

// render composites the final board and the per-entity visibility layers
// from the current state of the background and all live entities.
func (e *Engine) render() Observation {
	board := e.composite(len(e.zOrder))

	// Footprints in z-order; nil marks a dead entity.
	prints := make([]*grid.Mask, len(e.zOrder))
	for i, ch := range e.zOrder {
		prints[i] = e.footprint(ch)
	}

	layers := make(map[rune]*grid.Mask, len(e.zOrder)+1)

	// The background's footprint is implicitly everywhere.
	bg := grid.NewMask(e.cfg.Rows, e.cfg.Cols)
	for r := 0; r < e.cfg.Rows; r++ {
		for c := 0; c < e.cfg.Cols; c++ {
			bg.Set(grid.P(r, c), true)
		}
	}
	if e.cfg.OcclusionInLayers {
		for _, fp := range prints {
			if fp != nil {
				bg.Subtract(fp)
			}
		}
	}
	layers[e.background.Character()] = bg

	for i, ch := range e.zOrder {
		if prints[i] == nil {
			layers[ch] = grid.NewMask(e.cfg.Rows, e.cfg.Cols)
			continue
		}
		layer := prints[i].Clone()
		if e.cfg.OcclusionInLayers {
			for _, above := range prints[i+1:] {
				if above != nil {
					layer.Subtract(above)
				}
			}
		}
		layers[ch] = layer
	}

	return Observation{Board: board, Layers: layers}
}

// footprint returns a live entity's coverage as a mask, or nil for dead
// entities.
func (e *Engine) footprint(ch rune) *grid.Mask {
	switch ent := e.entities[ch].(type) {
	case MaskEntity:
		if !ent.Alive() {
			return nil
		}
		return ent.Footprint().Clone()
	case PointEntity:
		if !ent.Alive() {
			return nil
		}
		fp := grid.NewMask(e.cfg.Rows, e.cfg.Cols)
		fp.Set(ent.Position(), true)
		return fp
	}
	return nil
}
