package stage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/vovakirdan/gridstage/internal/grid"
)

// recorder appends an entry per update call so tests can verify ordering.
type callLog struct {
	calls []rune
}

type quietBackground struct {
	BackgroundBase
	log *callLog
}

func (b *quietBackground) Update(up Update) error {
	if b.log != nil {
		b.log.calls = append(b.log.calls, b.Character())
	}
	return nil
}

type scriptedMask struct {
	MaskBase
	log    *callLog
	script func(m *scriptedMask, up Update) error
}

func (m *scriptedMask) Update(up Update) error {
	if m.log != nil {
		m.log.calls = append(m.log.calls, m.Character())
	}
	if m.script != nil {
		return m.script(m, up)
	}
	return nil
}

type scriptedPoint struct {
	PointBase
	log    *callLog
	script func(p *scriptedPoint, up Update) error
}

func (p *scriptedPoint) Update(up Update) error {
	if p.log != nil {
		p.log.calls = append(p.log.calls, p.Character())
	}
	if p.script != nil {
		return p.script(p, up)
	}
	return nil
}

func newBackground(rows, cols int, fill rune, log *callLog) *quietBackground {
	return &quietBackground{
		BackgroundBase: NewBackgroundBase(' ', grid.NewGrid(rows, cols, fill)),
		log:            log,
	}
}

func maskAt(ch rune, rows, cols int, cells ...grid.Point) *scriptedMask {
	fp := grid.NewMask(rows, cols)
	for _, p := range cells {
		fp.Set(p, true)
	}
	return &scriptedMask{MaskBase: NewMaskBase(ch, fp)}
}

func pointAt(ch rune, pos grid.Point) *scriptedPoint {
	return &scriptedPoint{PointBase: NewPointBase(ch, pos)}
}

func mustStart(t *testing.T, e *Engine) Observation {
	t.Helper()
	obs, err := e.Start()
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	return obs
}

func TestUpdateOrderBackgroundMasksPoints(t *testing.T) {
	log := &callLog{}
	e := NewEngine(Config{Rows: 3, Cols: 3, OcclusionInLayers: true})

	bg := newBackground(3, 3, '.', log)
	if err := e.SetBackground(bg); err != nil {
		t.Fatalf("SetBackground failed: %v", err)
	}

	// Interleave registration: point, mask, point, mask. Updates must
	// still run all masks (in z-order) before all points.
	p1 := pointAt('1', grid.P(0, 0))
	p1.log = log
	m1 := maskAt('a', 3, 3, grid.P(1, 1))
	m1.log = log
	p2 := pointAt('2', grid.P(2, 2))
	p2.log = log
	m2 := maskAt('b', 3, 3, grid.P(1, 2))
	m2.log = log

	for _, err := range []error{e.AddPoint(p1), e.AddMask(m1), e.AddPoint(p2), e.AddMask(m2)} {
		if err != nil {
			t.Fatalf("registration failed: %v", err)
		}
	}

	mustStart(t, e)
	log.calls = nil

	const steps = 5
	for i := 0; i < steps; i++ {
		if _, _, _, err := e.Step("noop"); err != nil {
			t.Fatalf("Step failed: %v", err)
		}
	}

	want := []rune{' ', 'a', 'b', '1', '2'}
	if len(log.calls) != steps*len(want) {
		t.Fatalf("Expected %d calls, got %d", steps*len(want), len(log.calls))
	}
	for i, ch := range log.calls {
		if ch != want[i%len(want)] {
			t.Fatalf("Call %d: expected %q, got %q (log %q)", i, want[i%len(want)], ch, string(log.calls))
		}
	}
}

func TestOcclusionCompositeAndLayers(t *testing.T) {
	// A (lower z) and B (higher z) overlap at (1,1).
	shared := grid.P(1, 1)
	onlyA := grid.P(0, 0)

	build := func(occlusion bool) Observation {
		e := NewEngine(Config{Rows: 2, Cols: 2, OcclusionInLayers: occlusion})
		if err := e.SetBackground(newBackground(2, 2, '.', nil)); err != nil {
			t.Fatalf("SetBackground failed: %v", err)
		}
		if err := e.AddMask(maskAt('A', 2, 2, onlyA, shared)); err != nil {
			t.Fatalf("AddMask A failed: %v", err)
		}
		if err := e.AddMask(maskAt('B', 2, 2, shared)); err != nil {
			t.Fatalf("AddMask B failed: %v", err)
		}
		return mustStart(t, e)
	}

	obs := build(true)
	if got := obs.Board.Get(shared); got != 'B' {
		t.Errorf("Shared cell should show the higher-z 'B', got %q", got)
	}
	if got := obs.Board.Get(onlyA); got != 'A' {
		t.Errorf("Unshared cell should show 'A', got %q", got)
	}
	if obs.Layers['A'].Get(shared) {
		t.Error("Occluded cell must be absent from A's layer")
	}
	if !obs.Layers['A'].Get(onlyA) {
		t.Error("Unoccluded cell must be present in A's layer")
	}
	if !obs.Layers['B'].Get(shared) {
		t.Error("B's own cell must be present in B's layer")
	}
	if obs.Layers[' '].Get(shared) {
		t.Error("Background layer must exclude covered cells when occlusion is on")
	}

	obs = build(false)
	if got := obs.Board.Get(shared); got != 'B' {
		t.Errorf("The composite board ignores the layer flag; expected 'B', got %q", got)
	}
	if !obs.Layers['A'].Get(shared) {
		t.Error("Without occlusion in layers, A's full footprint must be reported")
	}
	if !obs.Layers[' '].Get(shared) {
		t.Error("Without occlusion in layers, the background covers everywhere")
	}
}

func TestRewardAccumulationAcrossEntities(t *testing.T) {
	e := NewEngine(Config{Rows: 2, Cols: 4, OcclusionInLayers: true})
	if err := e.SetBackground(newBackground(2, 4, '.', nil)); err != nil {
		t.Fatalf("SetBackground failed: %v", err)
	}

	addOne := func(m *scriptedMask, up Update) error {
		if up.Action != nil {
			up.Plot.AddReward(1)
		}
		return nil
	}
	for i, ch := range []rune{'x', 'y', 'z'} {
		m := maskAt(ch, 2, 4, grid.P(0, i))
		m.script = addOne
		if err := e.AddMask(m); err != nil {
			t.Fatalf("AddMask failed: %v", err)
		}
	}

	mustStart(t, e)

	_, reward, _, err := e.Step("go")
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if reward != 3 {
		t.Errorf("Expected summed reward 3, got %v", reward)
	}

	// Entities only add reward when an action arrives; stepping with a nil
	// action shows the accumulator resetting to zero.
	_, reward, _, err = e.Step(nil)
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if reward != 0 {
		t.Errorf("Expected reward reset to 0, got %v", reward)
	}
}

func TestDiscountLastWriterWins(t *testing.T) {
	e := NewEngine(Config{Rows: 1, Cols: 4, OcclusionInLayers: true})
	if err := e.SetBackground(newBackground(1, 4, '.', nil)); err != nil {
		t.Fatalf("SetBackground failed: %v", err)
	}

	lower := maskAt('x', 1, 4, grid.P(0, 0))
	lower.script = func(m *scriptedMask, up Update) error {
		return up.Plot.SetDiscount(0.5)
	}
	higher := maskAt('y', 1, 4, grid.P(0, 1))
	higher.script = func(m *scriptedMask, up Update) error {
		return up.Plot.SetDiscount(0.9)
	}
	if err := e.AddMask(lower); err != nil {
		t.Fatalf("AddMask failed: %v", err)
	}
	if err := e.AddMask(higher); err != nil {
		t.Fatalf("AddMask failed: %v", err)
	}

	mustStart(t, e)
	_, _, discount, err := e.Step(nil)
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if discount != 0.9 {
		t.Errorf("Expected the later writer's 0.9, got %v", discount)
	}
}

func TestTerminationIsOneWay(t *testing.T) {
	e := NewEngine(Config{Rows: 1, Cols: 2, OcclusionInLayers: true})
	if err := e.SetBackground(newBackground(1, 2, '.', nil)); err != nil {
		t.Fatalf("SetBackground failed: %v", err)
	}

	m := maskAt('k', 1, 2, grid.P(0, 0))
	m.script = func(m *scriptedMask, up Update) error {
		if up.Action != nil {
			up.Plot.TerminateEpisode()
		}
		return nil
	}
	if err := e.AddMask(m); err != nil {
		t.Fatalf("AddMask failed: %v", err)
	}

	mustStart(t, e)
	if _, _, _, err := e.Step("end it"); err != nil {
		t.Fatalf("Terminating step failed: %v", err)
	}
	if !e.Finished() {
		t.Fatal("Engine should be finished after termination")
	}

	var first, second *StateError
	_, _, _, err := e.Step(nil)
	if !errors.As(err, &first) {
		t.Fatalf("Expected StateError after termination, got %v", err)
	}
	_, _, _, err = e.Step(nil)
	if !errors.As(err, &second) {
		t.Fatalf("Expected StateError on repeat, got %v", err)
	}
	if first.Error() != second.Error() {
		t.Errorf("Repeat violations should fail identically: %q vs %q", first, second)
	}
}

func TestStepBeforeStartFails(t *testing.T) {
	e := NewEngine(Config{Rows: 1, Cols: 1, OcclusionInLayers: true})
	if err := e.SetBackground(newBackground(1, 1, '.', nil)); err != nil {
		t.Fatalf("SetBackground failed: %v", err)
	}
	var serr *StateError
	if _, _, _, err := e.Step(nil); !errors.As(err, &serr) {
		t.Fatalf("Expected StateError before Start, got %v", err)
	}
}

func TestStepCounterRoundTrip(t *testing.T) {
	e := NewEngine(Config{Rows: 2, Cols: 2, OcclusionInLayers: true})
	if err := e.SetBackground(newBackground(2, 2, '.', nil)); err != nil {
		t.Fatalf("SetBackground failed: %v", err)
	}
	if err := e.AddPoint(pointAt('p', grid.P(0, 0))); err != nil {
		t.Fatalf("AddPoint failed: %v", err)
	}

	mustStart(t, e)
	if e.Plot().Frame() != 0 {
		t.Fatalf("Frame should be 0 after Start, got %d", e.Plot().Frame())
	}

	const n = 25
	for i := 0; i < n; i++ {
		if _, _, _, err := e.Step(nil); err != nil {
			t.Fatalf("Step %d failed: %v", i, err)
		}
	}
	if e.Plot().Frame() != n {
		t.Errorf("Expected step counter %d, got %d", n, e.Plot().Frame())
	}
}

func TestEntityErrorAbortsEpisode(t *testing.T) {
	e := NewEngine(Config{Rows: 1, Cols: 2, OcclusionInLayers: true})
	if err := e.SetBackground(newBackground(1, 2, '.', nil)); err != nil {
		t.Fatalf("SetBackground failed: %v", err)
	}

	boom := errors.New("bad game logic")
	m := maskAt('m', 1, 2, grid.P(0, 0))
	m.script = func(m *scriptedMask, up Update) error {
		if up.Action != nil {
			return boom
		}
		return nil
	}
	if err := e.AddMask(m); err != nil {
		t.Fatalf("AddMask failed: %v", err)
	}

	mustStart(t, e)
	if _, _, _, err := e.Step("explode"); !errors.Is(err, boom) {
		t.Fatalf("Entity error must propagate unmodified, got %v", err)
	}

	// The episode is dead now.
	var serr *StateError
	if _, _, _, err := e.Step(nil); !errors.As(err, &serr) {
		t.Fatalf("Expected StateError after a failed step, got %v", err)
	}
}

func TestDeadEntitiesSkippedButAddressable(t *testing.T) {
	e := NewEngine(Config{Rows: 1, Cols: 3, OcclusionInLayers: true})
	if err := e.SetBackground(newBackground(1, 3, '.', nil)); err != nil {
		t.Fatalf("SetBackground failed: %v", err)
	}

	victim := maskAt('v', 1, 3, grid.P(0, 0))
	witness := maskAt('w', 1, 3, grid.P(0, 2))
	witness.script = func(m *scriptedMask, up Update) error {
		other, ok := up.Entities['v']
		if !ok {
			return fmt.Errorf("dead entity missing from registry")
		}
		if other.Alive() {
			up.Plot.AddReward(1)
		}
		return nil
	}
	if err := e.AddMask(victim); err != nil {
		t.Fatalf("AddMask failed: %v", err)
	}
	if err := e.AddMask(witness); err != nil {
		t.Fatalf("AddMask failed: %v", err)
	}

	mustStart(t, e)
	victim.SetAlive(false)

	obs, reward, _, err := e.Step(nil)
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if reward != 0 {
		t.Error("Witness saw the victim as alive")
	}
	if got := obs.Board.Get(grid.P(0, 0)); got != '.' {
		t.Errorf("Dead entity must not be composited, cell shows %q", got)
	}
	if obs.Layers['v'].Any() {
		t.Error("Dead entity's layer must be empty")
	}
}

func TestObservationBoardIsolatedFromUpdates(t *testing.T) {
	// A background scribbling on its up.Board (the previous step's full
	// composite) must not reach observations the caller already holds.
	e := NewEngine(Config{Rows: 1, Cols: 2, OcclusionInLayers: true})
	bg := &scribblingBackground{
		BackgroundBase: NewBackgroundBase(' ', grid.NewGrid(1, 2, '.')),
	}
	if err := e.SetBackground(bg); err != nil {
		t.Fatalf("SetBackground failed: %v", err)
	}

	first := mustStart(t, e)
	if got := first.Board.Get(grid.P(0, 0)); got != '.' {
		t.Fatalf("Expected '.', got %q", got)
	}

	obs, _, _, err := e.Step(nil)
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if got := first.Board.Get(grid.P(0, 0)); got != '.' {
		t.Errorf("Retained observation was mutated by a later update: %q", got)
	}
	if got := obs.Board.Get(grid.P(0, 0)); got != '.' {
		t.Errorf("Scribbles on up.Board must not leak into the composite: %q", got)
	}
}

type scribblingBackground struct {
	BackgroundBase
}

func (b *scribblingBackground) Update(up Update) error {
	up.Board.Set(grid.P(0, 0), '!')
	return nil
}

func TestBoardSoFarExcludesHigherZ(t *testing.T) {
	// The lower mask must not see the higher mask on its board-so-far,
	// while the higher mask must see the lower one.
	e := NewEngine(Config{Rows: 1, Cols: 3, OcclusionInLayers: true})
	if err := e.SetBackground(newBackground(1, 3, '.', nil)); err != nil {
		t.Fatalf("SetBackground failed: %v", err)
	}

	var sawAbove, sawBelow bool
	low := maskAt('l', 1, 3, grid.P(0, 0))
	low.script = func(m *scriptedMask, up Update) error {
		sawAbove = up.Board.Get(grid.P(0, 2)) == 'h'
		return nil
	}
	high := maskAt('h', 1, 3, grid.P(0, 2))
	high.script = func(m *scriptedMask, up Update) error {
		sawBelow = up.Board.Get(grid.P(0, 0)) == 'l'
		return nil
	}
	if err := e.AddMask(low); err != nil {
		t.Fatalf("AddMask failed: %v", err)
	}
	if err := e.AddMask(high); err != nil {
		t.Fatalf("AddMask failed: %v", err)
	}

	mustStart(t, e)
	if _, _, _, err := e.Step(nil); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if sawAbove {
		t.Error("Lower-z entity saw a higher-z entity on its board-so-far")
	}
	if !sawBelow {
		t.Error("Higher-z entity should see lower-z entities on its board-so-far")
	}
}

func TestConfigErrors(t *testing.T) {
	t.Run("duplicate identity", func(t *testing.T) {
		e := NewEngine(Config{Rows: 2, Cols: 2, OcclusionInLayers: true})
		if err := e.AddMask(maskAt('d', 2, 2)); err != nil {
			t.Fatalf("AddMask failed: %v", err)
		}
		var cerr *ConfigError
		if err := e.AddPoint(pointAt('d', grid.P(0, 0))); !errors.As(err, &cerr) {
			t.Errorf("Expected ConfigError for duplicate identity, got %v", err)
		}
	})

	t.Run("missing background", func(t *testing.T) {
		e := NewEngine(Config{Rows: 2, Cols: 2, OcclusionInLayers: true})
		var cerr *ConfigError
		if _, err := e.Start(); !errors.As(err, &cerr) {
			t.Errorf("Expected ConfigError for missing background, got %v", err)
		}
	})

	t.Run("footprint size mismatch", func(t *testing.T) {
		e := NewEngine(Config{Rows: 2, Cols: 2, OcclusionInLayers: true})
		var cerr *ConfigError
		if err := e.AddMask(maskAt('m', 3, 3)); !errors.As(err, &cerr) {
			t.Errorf("Expected ConfigError for footprint mismatch, got %v", err)
		}
	})

	t.Run("position out of bounds", func(t *testing.T) {
		e := NewEngine(Config{Rows: 2, Cols: 2, OcclusionInLayers: true})
		var cerr *ConfigError
		if err := e.AddPoint(pointAt('p', grid.P(5, 5))); !errors.As(err, &cerr) {
			t.Errorf("Expected ConfigError for out-of-bounds position, got %v", err)
		}
	})

	t.Run("bad z-order permutation", func(t *testing.T) {
		e := NewEngine(Config{Rows: 2, Cols: 2, OcclusionInLayers: true})
		if err := e.AddMask(maskAt('m', 2, 2)); err != nil {
			t.Fatalf("AddMask failed: %v", err)
		}
		var cerr *ConfigError
		if err := e.SetZOrder([]rune{'q'}); !errors.As(err, &cerr) {
			t.Errorf("Expected ConfigError for bad permutation, got %v", err)
		}
	})

	t.Run("registration after start", func(t *testing.T) {
		e := NewEngine(Config{Rows: 2, Cols: 2, OcclusionInLayers: true})
		if err := e.SetBackground(newBackground(2, 2, '.', nil)); err != nil {
			t.Fatalf("SetBackground failed: %v", err)
		}
		mustStart(t, e)
		var serr *StateError
		if err := e.AddMask(maskAt('m', 2, 2)); !errors.As(err, &serr) {
			t.Errorf("Expected StateError for late registration, got %v", err)
		}
	})
}

func TestSetZOrderControlsOcclusion(t *testing.T) {
	shared := grid.P(0, 0)
	e := NewEngine(Config{Rows: 1, Cols: 1, OcclusionInLayers: true})
	if err := e.SetBackground(newBackground(1, 1, '.', nil)); err != nil {
		t.Fatalf("SetBackground failed: %v", err)
	}
	if err := e.AddMask(maskAt('A', 1, 1, shared)); err != nil {
		t.Fatalf("AddMask failed: %v", err)
	}
	if err := e.AddMask(maskAt('B', 1, 1, shared)); err != nil {
		t.Fatalf("AddMask failed: %v", err)
	}

	// Reverse: A should now occlude B.
	if err := e.SetZOrder([]rune{'B', 'A'}); err != nil {
		t.Fatalf("SetZOrder failed: %v", err)
	}

	obs := mustStart(t, e)
	if got := obs.Board.Get(shared); got != 'A' {
		t.Errorf("After reordering, 'A' should be on top, got %q", got)
	}
}
