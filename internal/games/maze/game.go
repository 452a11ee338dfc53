// Package maze implements a turn-based coin maze: walk the player through
// walls-and-corridors art, pick up coins, and reach the exit.
package maze

import (
	"github.com/vovakirdan/gridstage/internal/art"
	"github.com/vovakirdan/gridstage/internal/grid"
	"github.com/vovakirdan/gridstage/internal/parts"
	"github.com/vovakirdan/gridstage/internal/registry"
	"github.com/vovakirdan/gridstage/internal/stage"
)

// Board characters.
const (
	PlayerChar = 'P'
	WallChar   = '#'
	CoinChar   = '$'
	ExitChar   = 'X'
)

// Rewards.
const (
	CoinReward = 1.0
	ExitReward = 10.0
)

// levelPath optionally points at a YAML level file used instead of the
// built-in levels. Set by the CLI before the game is created.
var levelPath string

// SetLevelPath selects a custom level file for subsequent episodes.
func SetLevelPath(path string) {
	levelPath = path
}

func init() {
	registry.Register(registry.Info{
		ID:    "maze",
		Title: "Coin Maze",
	}, func(seed int64) (*stage.Engine, error) {
		lvl := builtinLevel
		if levelPath != "" {
			loaded, err := art.LoadFile(levelPath)
			if err != nil {
				return nil, err
			}
			lvl = loaded
		}
		return Build(lvl)
	})
}

// Build assembles a maze episode from a level.
func Build(lvl art.LevelSpec) (*stage.Engine, error) {
	return art.Build(art.Blueprint{
		Art:     lvl.Art,
		Beneath: lvl.Beneath,
		Background: func(curtain *grid.Grid) (stage.Background, error) {
			return &backdrop{BackgroundBase: stage.NewBackgroundBase(' ', curtain)}, nil
		},
		Masks: map[rune]art.MaskFactory{
			WallChar: func(ch rune, fp *grid.Mask) (stage.MaskEntity, error) {
				return parts.NewScenery(ch, fp, false), nil
			},
			CoinChar: func(ch rune, fp *grid.Mask) (stage.MaskEntity, error) {
				return &coinField{MaskBase: stage.NewMaskBase(ch, fp)}, nil
			},
		},
		Points: map[rune]art.PointFactory{
			PlayerChar: func(ch rune, pos grid.Point) (stage.PointEntity, error) {
				return &player{Walker: parts.NewWalker(ch, pos, string(WallChar))}, nil
			},
		},
		ZOrder:    lvl.ZOrder,
		Occlusion: true,
	})
}

// backdrop holds the static maze art, exit cell included.
type backdrop struct {
	stage.BackgroundBase
}

func (b *backdrop) Update(up stage.Update) error { return nil }

// coinField owns every uncollected coin. The player announces pickups
// through the plot mailbox; the field erases them on its next turn.
type coinField struct {
	stage.MaskBase
}

func (f *coinField) Update(up stage.Update) error {
	if msg, ok := up.Plot.Message(f.Character()); ok {
		f.Footprint().Set(msg.(grid.Point), false)
		up.Plot.ClearMessage(f.Character())
	}
	return nil
}

// player walks the maze one action per step.
type player struct {
	parts.Walker
}

func (p *player) Update(up stage.Update) error {
	action, _ := up.Action.(registry.Action)
	switch action {
	case registry.ActionUp:
		p.Move(up, -1, 0)
	case registry.ActionDown:
		p.Move(up, 1, 0)
	case registry.ActionLeft:
		p.Move(up, 0, -1)
	case registry.ActionRight:
		p.Move(up, 0, 1)
	case registry.ActionQuit:
		up.Plot.TerminateEpisode()
		return nil
	}

	pos := p.Position()
	if coins, ok := up.Entities[CoinChar].(stage.MaskEntity); ok && coins.Footprint().Get(pos) {
		up.Plot.AddReward(CoinReward)
		up.Plot.Send(CoinChar, pos)
	}
	if up.Background.Curtain().Get(pos) == ExitChar {
		up.Plot.AddReward(ExitReward)
		up.Plot.TerminateEpisode()
	}
	return nil
}
