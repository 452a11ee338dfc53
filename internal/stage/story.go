package stage

// Chapter builds one sub-game of a Story. The signature matches the game
// factories the platform registry holds, so registered games can be chained
// without adapters.
type Chapter func(seed int64) (*Engine, error)

// Story chains several games into one continuous episode: when the current
// game terminates, the next chapter starts within the same Step call and
// its first observation is returned in place of the terminal one. The
// caller drives a Story exactly like a single Engine.
//
// All chapters must share the first chapter's board dimensions. Each
// chapter gets its own Engine and therefore its own Plot; nothing carries
// across the boundary except the story's seed, offset by the chapter index
// so procedural chapters do not replay identical worlds.
type Story struct {
	chapters []Chapter
	seed     int64
	index    int
	eng      *Engine
	state    engineState
}

// NewStory creates a story from the given chapters, played in order.
func NewStory(seed int64, chapters ...Chapter) *Story {
	return &Story{chapters: chapters, seed: seed}
}

// Start begins the first chapter and returns its first observation.
// Chapters that terminate during their own Start are skipped over; if every
// chapter does, the story comes back already finished.
func (s *Story) Start() (Observation, error) {
	if s.state != stateSetup {
		return Observation{}, &StateError{Op: "Start", Msg: "story already started"}
	}
	if len(s.chapters) == 0 {
		return Observation{}, &ConfigError{Msg: "story has no chapters"}
	}
	s.state = statePlaying

	obs, err := s.beginChapter(0)
	if err != nil {
		s.state = stateDone
		return Observation{}, err
	}
	for s.eng.Finished() {
		if s.index+1 == len(s.chapters) {
			s.state = stateDone
			return obs, nil
		}
		obs, err = s.beginChapter(s.index + 1)
		if err != nil {
			s.state = stateDone
			return Observation{}, err
		}
	}
	return obs, nil
}

// Step forwards the action to the current chapter. When the chapter
// terminates, the next one starts immediately: the returned observation is
// the new chapter's first, while reward and discount come from the terminal
// step that ended the old one.
func (s *Story) Step(action any) (Observation, float64, float64, error) {
	switch s.state {
	case stateSetup:
		return Observation{}, 0, 0, &StateError{Op: "Step", Msg: "story has not been started"}
	case stateDone:
		return Observation{}, 0, 0, &StateError{Op: "Step", Msg: "story has finished"}
	}

	obs, reward, discount, err := s.eng.Step(action)
	if err != nil {
		s.state = stateDone
		return Observation{}, 0, 0, err
	}

	for s.eng.Finished() {
		if s.index+1 == len(s.chapters) {
			s.state = stateDone
			return obs, reward, discount, nil
		}
		obs, err = s.beginChapter(s.index + 1)
		if err != nil {
			s.state = stateDone
			return Observation{}, 0, 0, err
		}
	}
	return obs, reward, discount, nil
}

// beginChapter builds and starts chapter i, validating its dimensions
// against the first chapter's.
func (s *Story) beginChapter(i int) (Observation, error) {
	eng, err := s.chapters[i](s.seed + int64(i))
	if err != nil {
		return Observation{}, err
	}
	if s.eng != nil && (eng.Rows() != s.eng.Rows() || eng.Cols() != s.eng.Cols()) {
		return Observation{}, &ConfigError{Msg: "chapter board dimensions differ from the story's"}
	}
	obs, err := eng.Start()
	if err != nil {
		return Observation{}, err
	}
	s.eng = eng
	s.index = i
	return obs, nil
}

// Current returns the engine of the chapter being played. Callers use it to
// reach the current Plot (for logs or published values); they must not
// retain it across steps, since a chapter change swaps it out.
func (s *Story) Current() *Engine {
	return s.eng
}

// ChapterIndex returns the zero-based index of the chapter being played.
func (s *Story) ChapterIndex() int {
	return s.index
}

// Finished reports whether the last chapter has terminated or any chapter
// has failed.
func (s *Story) Finished() bool {
	return s.state == stateDone
}
