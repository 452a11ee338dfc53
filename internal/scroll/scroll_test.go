package scroll

import (
	"errors"
	"testing"

	"github.com/vovakirdan/gridstage/internal/grid"
	"github.com/vovakirdan/gridstage/internal/stage"
)

// plainBackground is a do-nothing background for driving a real engine.
type plainBackground struct {
	stage.BackgroundBase
}

func (b *plainBackground) Update(up stage.Update) error { return nil }

// emitter issues a scrolling order every step via its script.
type emitter struct {
	stage.PointBase
	script func(up stage.Update) error
}

func (e *emitter) Update(up stage.Update) error {
	if e.script == nil {
		return nil
	}
	return e.script(up)
}

// follower subtracts the current order from its own position.
type follower struct {
	stage.PointBase
}

func (f *follower) Update(up stage.Update) error {
	if m, ok := Current(up.Plot); ok {
		f.MoveTo(m.Shift(f.Position()))
	}
	return nil
}

func newEngine(t *testing.T, ents ...stage.PointEntity) *stage.Engine {
	t.Helper()
	eng := stage.NewEngine(stage.Config{Rows: 5, Cols: 5})
	bg := &plainBackground{BackgroundBase: stage.NewBackgroundBase(' ', grid.NewGrid(5, 5, ' '))}
	if err := eng.SetBackground(bg); err != nil {
		t.Fatalf("SetBackground failed: %v", err)
	}
	for _, ent := range ents {
		if err := eng.AddPoint(ent); err != nil {
			t.Fatalf("AddPoint(%q) failed: %v", ent.Character(), err)
		}
	}
	if _, err := eng.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return eng
}

func TestOrderMovesConsumersOpposite(t *testing.T) {
	em := &emitter{PointBase: stage.NewPointBase('e', grid.P(0, 0))}
	em.script = func(up stage.Update) error {
		return Order(up.Plot, Motion{Rows: 1, Cols: 0})
	}
	fo := &follower{PointBase: stage.NewPointBase('f', grid.P(2, 2))}

	eng := newEngine(t, em, fo)
	if _, _, _, err := eng.Step(nil); err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	// The window moved down by one, so the follower appears one row up.
	if got, want := fo.Position(), grid.P(1, 2); got != want {
		t.Errorf("Expected follower at %v after scroll (1,0), got %v", want, got)
	}
}

func TestSecondOrderInOneStepFails(t *testing.T) {
	var second error
	first := &emitter{PointBase: stage.NewPointBase('a', grid.P(0, 0))}
	first.script = func(up stage.Update) error {
		return Order(up.Plot, South)
	}
	dup := &emitter{PointBase: stage.NewPointBase('b', grid.P(0, 1))}
	dup.script = func(up stage.Update) error {
		second = Order(up.Plot, North)
		return nil
	}

	eng := newEngine(t, first, dup)
	if _, _, _, err := eng.Step(nil); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if second == nil {
		t.Fatal("Expected error from the second order in one step")
	}
	var perr *stage.ProtocolError
	if !errors.As(second, &perr) {
		t.Errorf("Expected ProtocolError, got %T: %v", second, second)
	}
}

func TestCurrentAbsentWithoutOrder(t *testing.T) {
	fo := &follower{PointBase: stage.NewPointBase('f', grid.P(2, 2))}
	eng := newEngine(t, fo)
	if _, _, _, err := eng.Step(nil); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if got, want := fo.Position(), grid.P(2, 2); got != want {
		t.Errorf("Expected follower unmoved without an order, got %v", got)
	}
}

func TestOrderDoesNotLeakIntoNextStep(t *testing.T) {
	step := 0
	em := &emitter{PointBase: stage.NewPointBase('e', grid.P(0, 0))}
	em.script = func(up stage.Update) error {
		step++
		if step == 1 {
			return Order(up.Plot, East)
		}
		if _, ok := Current(up.Plot); ok {
			t.Error("Expected no current order in the step after it was issued")
		}
		return nil
	}

	eng := newEngine(t, em)
	for i := 0; i < 2; i++ {
		if _, _, _, err := eng.Step(nil); err != nil {
			t.Fatalf("Step %d failed: %v", i+1, err)
		}
	}
}

func TestEgocentricPermitsGateOrders(t *testing.T) {
	// The egocentric entity permits East only; the emitter runs after it in
	// the z-order and must see South rejected and East accepted.
	ego := &emitter{PointBase: stage.NewPointBase('g', grid.P(2, 2))}
	ego.script = func(up stage.Update) error {
		if up.Action == nil {
			RegisterEgocentric(up.Plot, 'g')
		}
		return Permit(up.Plot, 'g', East)
	}

	var rejected, accepted error
	em := &emitter{PointBase: stage.NewPointBase('e', grid.P(0, 0))}
	em.script = func(up stage.Update) error {
		if up.Action == nil {
			return nil
		}
		rejected = Order(up.Plot, South)
		accepted = Order(up.Plot, East)
		return nil
	}

	eng := newEngine(t, ego, em)
	if _, _, _, err := eng.Step(nil); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if rejected == nil {
		t.Error("Expected the unpermitted motion to be rejected")
	}
	if accepted != nil {
		t.Errorf("Expected the permitted motion to be accepted, got %v", accepted)
	}
}

func TestIsPossibleRequiresCurrentPermits(t *testing.T) {
	ego := &emitter{PointBase: stage.NewPointBase('g', grid.P(2, 2))}
	ego.script = func(up stage.Update) error {
		if up.Action == nil {
			RegisterEgocentric(up.Plot, 'g')
			// Permits issued here cover the first step only.
			return Permit(up.Plot, 'g', North, South)
		}
		return nil
	}

	var firstNorth, firstWest, secondNorth bool
	step := 0
	em := &emitter{PointBase: stage.NewPointBase('e', grid.P(0, 0))}
	em.script = func(up stage.Update) error {
		if up.Action == nil {
			return nil
		}
		step++
		switch step {
		case 1:
			firstNorth = IsPossible(up.Plot, North)
			firstWest = IsPossible(up.Plot, West)
		case 2:
			secondNorth = IsPossible(up.Plot, North)
		}
		return nil
	}

	eng := newEngine(t, ego, em)
	for i := 0; i < 2; i++ {
		if _, _, _, err := eng.Step(nil); err != nil {
			t.Fatalf("Step %d failed: %v", i+1, err)
		}
	}

	if !firstNorth {
		t.Error("Expected permitted motion to be possible in the covered step")
	}
	if firstWest {
		t.Error("Expected unpermitted motion to be impossible")
	}
	if secondNorth {
		t.Error("Expected stale permits to expire after their step")
	}
}

func TestPermitRequiresRegistration(t *testing.T) {
	em := &emitter{PointBase: stage.NewPointBase('e', grid.P(0, 0))}
	var got error
	em.script = func(up stage.Update) error {
		got = Permit(up.Plot, 'e', North)
		return nil
	}
	eng := newEngine(t, em)
	if _, _, _, err := eng.Step(nil); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if got == nil {
		t.Error("Expected Permit to fail for an unregistered entity")
	}
}

func TestMotionShiftHelpers(t *testing.T) {
	m := Motion{Rows: 1, Cols: -1}

	if got, want := m.Shift(grid.P(3, 3)), grid.P(2, 4); got != want {
		t.Errorf("Expected shifted point %v, got %v", want, got)
	}

	fp := grid.NewMask(3, 3)
	fp.Set(grid.P(1, 1), true)
	m.ShiftMask(fp)
	if !fp.Get(grid.P(0, 2)) || fp.Count() != 1 {
		t.Errorf("Expected footprint shifted to (0,2), got:\n%s", fp)
	}

	g := grid.FromLines([]string{"ab", "cd"}, ' ')
	East.ShiftGrid(g, '.')
	if got := g.String(); got != "b.\nd." {
		t.Errorf("Expected grid shifted left with fill, got %q", got)
	}
}
