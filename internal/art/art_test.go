package art

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vovakirdan/gridstage/internal/grid"
	"github.com/vovakirdan/gridstage/internal/stage"
)

type stillBackground struct {
	stage.BackgroundBase
}

func (b *stillBackground) Update(up stage.Update) error { return nil }

type stillMask struct {
	stage.MaskBase
}

func (m *stillMask) Update(up stage.Update) error { return nil }

type stillPoint struct {
	stage.PointBase
}

func (p *stillPoint) Update(up stage.Update) error { return nil }

func backgroundFactory(curtain *grid.Grid) (stage.Background, error) {
	return &stillBackground{BackgroundBase: stage.NewBackgroundBase(' ', curtain)}, nil
}

func maskFactory(char rune, fp *grid.Mask) (stage.MaskEntity, error) {
	return &stillMask{MaskBase: stage.NewMaskBase(char, fp)}, nil
}

func pointFactory(char rune, pos grid.Point) (stage.PointEntity, error) {
	return &stillPoint{PointBase: stage.NewPointBase(char, pos)}, nil
}

func TestBuildCarvesClaimedCharacters(t *testing.T) {
	eng, err := Build(Blueprint{
		Art: []string{
			"#####",
			"#P..#",
			"#####",
		},
		Beneath:    '.',
		Background: backgroundFactory,
		Masks:      map[rune]MaskFactory{'#': maskFactory},
		Points:     map[rune]PointFactory{'P': pointFactory},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	obs, err := eng.Start()
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	want := "#####\n#P..#\n#####"
	if got := obs.Board.String(); got != want {
		t.Errorf("Expected board:\n%s\ngot:\n%s", want, got)
	}

	// Claimed cells must be carved out of the curtain.
	if got := eng.Background().Curtain().Get(grid.P(1, 1)); got != '.' {
		t.Errorf("Expected curtain cell beneath 'P' to be '.', got %q", got)
	}
	if got := eng.Background().Curtain().Get(grid.P(0, 0)); got != '.' {
		t.Errorf("Expected curtain cell beneath '#' to be '.', got %q", got)
	}

	p, ok := eng.Entities()['P'].(stage.PointEntity)
	if !ok {
		t.Fatal("Expected 'P' to be registered as a point entity")
	}
	if got, want := p.Position(), grid.P(1, 1); got != want {
		t.Errorf("Expected 'P' at %v, got %v", want, got)
	}

	m, ok := eng.Entities()['#'].(stage.MaskEntity)
	if !ok {
		t.Fatal("Expected '#' to be registered as a mask entity")
	}
	if got, want := m.Footprint().Count(), 12; got != want {
		t.Errorf("Expected wall footprint of %d cells, got %d", want, got)
	}
}

func TestBuildPadsShortRows(t *testing.T) {
	eng, err := Build(Blueprint{
		Art:        []string{"ab", "c"},
		Background: backgroundFactory,
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if eng.Rows() != 2 || eng.Cols() != 2 {
		t.Errorf("Expected 2x2 board, got %dx%d", eng.Rows(), eng.Cols())
	}
	if got := eng.Background().Curtain().Get(grid.P(1, 1)); got != ' ' {
		t.Errorf("Expected padded cell to hold the beneath character, got %q", got)
	}
}

func TestBuildPointOccurrenceCount(t *testing.T) {
	for name, artLines := range map[string][]string{
		"absent":    {".."},
		"duplicate": {"PP"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Build(Blueprint{
				Art:        artLines,
				Background: backgroundFactory,
				Points:     map[rune]PointFactory{'P': pointFactory},
			})
			if err == nil {
				t.Error("Expected error for point character count != 1")
			}
		})
	}
}

func TestBuildAllowsEmptyMaskFootprint(t *testing.T) {
	eng, err := Build(Blueprint{
		Art:        []string{"..."},
		Background: backgroundFactory,
		Masks:      map[rune]MaskFactory{'w': maskFactory},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	m := eng.Entities()['w'].(stage.MaskEntity)
	if got := m.Footprint().Count(); got != 0 {
		t.Errorf("Expected empty footprint, got %d cells", got)
	}
}

func TestBuildDefaultZOrderIsMasksThenPoints(t *testing.T) {
	eng, err := Build(Blueprint{
		Art:        []string{"bPa"},
		Background: backgroundFactory,
		Masks:      map[rune]MaskFactory{'b': maskFactory, 'a': maskFactory},
		Points:     map[rune]PointFactory{'P': pointFactory},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	got := eng.ZOrder()
	want := []rune{'a', 'b', 'P'}
	if string(got) != string(want) {
		t.Errorf("Expected z-order %q, got %q", string(want), string(got))
	}
}

func TestBuildExplicitZOrder(t *testing.T) {
	eng, err := Build(Blueprint{
		Art:        []string{"ab"},
		Background: backgroundFactory,
		Masks:      map[rune]MaskFactory{'a': maskFactory, 'b': maskFactory},
		ZOrder:     []rune{'b', 'a'},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got := eng.ZOrder(); string(got) != "ba" {
		t.Errorf("Expected z-order %q, got %q", "ba", string(got))
	}
}

func TestBuildRejectsDoubleClaim(t *testing.T) {
	_, err := Build(Blueprint{
		Art:        []string{"x"},
		Background: backgroundFactory,
		Masks:      map[rune]MaskFactory{'x': maskFactory},
		Points:     map[rune]PointFactory{'x': pointFactory},
	})
	var cerr *stage.ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("Expected ConfigError for double claim, got %v", err)
	}
}

func TestParseYAMLLevel(t *testing.T) {
	data := []byte(`
id: maze-01
name: First maze
beneath: "."
z: "#P"
art:
  - "#####"
  - "#P..#"
  - "#####"
metadata:
  difficulty: easy
`)
	lvl, err := ParseYAML(data)
	if err != nil {
		t.Fatalf("ParseYAML failed: %v", err)
	}
	if lvl.ID != "maze-01" || lvl.Name != "First maze" {
		t.Errorf("Unexpected identity: %q / %q", lvl.ID, lvl.Name)
	}
	if lvl.Beneath != '.' {
		t.Errorf("Expected beneath '.', got %q", lvl.Beneath)
	}
	if len(lvl.Art) != 3 || lvl.Art[1] != "#P..#" {
		t.Errorf("Unexpected art: %v", lvl.Art)
	}
	if string(lvl.ZOrder) != "#P" {
		t.Errorf("Expected z-order %q, got %q", "#P", string(lvl.ZOrder))
	}
	if lvl.Metadata["difficulty"] != "easy" {
		t.Errorf("Unexpected metadata: %v", lvl.Metadata)
	}
}

func TestParseYAMLRejectsBadLevels(t *testing.T) {
	cases := map[string]string{
		"no id":         "art:\n  - \"..\"\n",
		"no art":        "id: x\n",
		"multi beneath": "id: x\nbeneath: \"ab\"\nart:\n  - \"..\"\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseYAML([]byte(data)); err == nil {
				t.Error("Expected parse error")
			}
		})
	}
}

func TestLoaderLoadsSortedByID(t *testing.T) {
	dir := t.TempDir()
	write := func(name, id string) {
		content := "id: " + id + "\nart:\n  - \"..\"\n"
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("writing fixture: %v", err)
		}
	}
	write("b.yaml", "level-b")
	write("a.yml", "level-a")
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	loader := NewLoader(dir)
	ids, err := loader.ListIDs()
	if err != nil {
		t.Fatalf("ListIDs failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != "level-a" || ids[1] != "level-b" {
		t.Errorf("Expected [level-a level-b], got %v", ids)
	}

	lvl, err := loader.LoadByID("level-b")
	if err != nil {
		t.Fatalf("LoadByID failed: %v", err)
	}
	if lvl.FilePath == "" {
		t.Error("Expected FilePath to be recorded")
	}

	if _, err := loader.LoadByID("missing"); err == nil {
		t.Error("Expected error for unknown level ID")
	}
}

func TestLoaderReportsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	good := "id: level-a\nart:\n  - \"..\"\n"
	if err := os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(good), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("art:\n  - \"..\"\n"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	loader := NewLoader(dir)

	// The broken file must not stop the scan, but it must be reported.
	levels, err := loader.LoadAll()
	if len(levels) != 1 || levels[0].ID != "level-a" {
		t.Fatalf("Expected the good level loaded, got %v", levels)
	}
	if err == nil || !strings.Contains(err.Error(), "broken.yaml") {
		t.Errorf("Expected the broken file named in the error, got %v", err)
	}

	// A level that loads is reachable despite broken siblings.
	if _, err := loader.LoadByID("level-a"); err != nil {
		t.Errorf("LoadByID must not be masked by broken siblings: %v", err)
	}

	// A missing ID surfaces the parse failures, one of which may be it.
	_, err = loader.LoadByID("level-x")
	if err == nil || !strings.Contains(err.Error(), "broken.yaml") {
		t.Errorf("Expected parse failures attached to the miss, got %v", err)
	}
}
