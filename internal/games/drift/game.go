// Package drift implements a scrolling cave climb: the cave slides down
// the screen one row per step and the player, fixed near the bottom, must
// keep lining up with the gaps in the incoming rock rows. Getting caught
// under rock ends the run; surviving the full depth pays a bonus.
package drift

import (
	"fmt"
	"math/rand"

	"github.com/vovakirdan/gridstage/internal/grid"
	"github.com/vovakirdan/gridstage/internal/parts"
	"github.com/vovakirdan/gridstage/internal/registry"
	"github.com/vovakirdan/gridstage/internal/scroll"
	"github.com/vovakirdan/gridstage/internal/stage"
)

// Board characters.
const (
	PlayerChar = 'P'
	RockChar   = 'w'
)

// Rewards.
const (
	SurvivalReward = 0.5
	FinishReward   = 10.0
	CrashPenalty   = -5.0
)

// Board geometry and pacing.
const (
	Rows     = 12
	Cols     = 9
	GapWidth = 3
	Depth    = 60 // steps to survive
)

func init() {
	registry.Register(registry.Info{
		ID:         "drift",
		Title:      "Cave Drift",
		TickMillis: 400,
	}, New)
}

// New assembles a drift episode seeded for rock generation.
func New(seed int64) (*stage.Engine, error) {
	eng := stage.NewEngine(stage.Config{Rows: Rows, Cols: Cols, OcclusionInLayers: true})

	bg := &cave{BackgroundBase: stage.NewBackgroundBase(' ', grid.NewGrid(Rows, Cols, ' '))}
	if err := eng.SetBackground(bg); err != nil {
		return nil, err
	}

	rocks := newRocks(rand.New(rand.NewSource(seed)))
	if err := eng.AddMask(rocks); err != nil {
		return nil, err
	}

	player := &climber{Walker: parts.NewWalker(PlayerChar, grid.P(Rows-3, Cols/2), string(RockChar))}
	if err := eng.AddPoint(player); err != nil {
		return nil, err
	}
	return eng, nil
}

// cave is the background and the scroll emitter: updating first each step,
// it orders the world one row down whenever the player's standing permit
// allows it, and ends the run otherwise.
type cave struct {
	stage.BackgroundBase
}

func (c *cave) Update(up stage.Update) error {
	frame := up.Plot.Frame()
	if frame == 0 {
		return nil
	}
	if frame > Depth {
		up.Plot.Log("cleared the cave")
		up.Plot.AddReward(FinishReward)
		up.Plot.TerminateEpisode()
		return nil
	}
	if !scroll.IsPossible(up.Plot, scroll.North) {
		// Rock directly above the player: the cave crushes the run.
		up.Plot.Log(fmt.Sprintf("crushed at depth %d", frame))
		up.Plot.AddReward(CrashPenalty)
		up.Plot.TerminateEpisode()
		return nil
	}
	up.Plot.AddReward(SurvivalReward)
	return scroll.Order(up.Plot, scroll.North)
}

// rocks owns the cave rock as one scrolling footprint. After following the
// step's order it backfills the vacated top row with a fresh rock row whose
// gap random-walks across the board.
type rocks struct {
	stage.MaskBase
	rng    *rand.Rand
	gapCol int
}

func newRocks(rng *rand.Rand) *rocks {
	return &rocks{
		MaskBase: stage.NewMaskBase(RockChar, grid.NewMask(Rows, Cols)),
		rng:      rng,
		gapCol:   Cols / 2,
	}
}

func (r *rocks) Update(up stage.Update) error {
	m, ok := scroll.Current(up.Plot)
	if !ok {
		return nil
	}
	m.ShiftMask(r.Footprint())

	// Drift the gap by at most one column, away from the side walls.
	r.gapCol += r.rng.Intn(3) - 1
	if r.gapCol < 1 {
		r.gapCol = 1
	}
	if max := Cols - 1 - GapWidth; r.gapCol > max {
		r.gapCol = max
	}

	for c := 0; c < Cols; c++ {
		inGap := c >= r.gapCol && c < r.gapCol+GapWidth
		r.Footprint().Set(grid.P(0, c), !inGap)
	}
	return nil
}

// climber is the egocentric player: the cave scrolls around it while it
// dodges left and right.
type climber struct {
	parts.Walker
}

func (p *climber) Update(up stage.Update) error {
	if up.Plot.Frame() == 0 {
		p.MakeEgocentric(up)
		return p.PermitScroll(up, scroll.North)
	}

	action, _ := up.Action.(registry.Action)
	switch action {
	case registry.ActionLeft:
		p.Move(up, 0, -1)
	case registry.ActionRight:
		p.Move(up, 0, 1)
	case registry.ActionQuit:
		up.Plot.TerminateEpisode()
		return nil
	}
	return p.PermitScroll(up, scroll.North)
}
