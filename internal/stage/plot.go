package stage

import "fmt"

// Plot is the per-episode shared communication and episode-control object.
// Entities receive it in every update call and use it to accumulate reward,
// set the discount, terminate the episode, and pass messages to each other.
// All operations are synchronous in-memory mutations; none may block.
//
// A Plot lives exactly as long as its episode. New episodes need a new
// Engine, which brings a fresh Plot with it.
type Plot struct {
	frame      int
	zOrder     []rune
	reward     float64
	discount   float64
	terminated bool

	// mailbox holds free-form per-identity messages, retained across steps
	// until the addressee (or anyone else) clears them.
	mailbox map[rune]any

	// sticky holds free-form shared values, retained across steps.
	sticky map[string]any

	// published holds single-writer-per-step protocol keys.
	published map[string]publishedValue

	// logs queues entity messages for the platform layer running the
	// episode. The engine never reads them.
	logs []string
}

type publishedValue struct {
	frame int
	value any
}

func newPlot() *Plot {
	return &Plot{
		discount:  1,
		mailbox:   make(map[rune]any),
		sticky:    make(map[string]any),
		published: make(map[string]publishedValue),
	}
}

// beginStep resets the per-step accumulators to their neutral defaults.
// Only the Engine calls this, once at the top of every step.
func (p *Plot) beginStep() {
	p.frame++
	p.reward = 0
	p.discount = 1
}

// AddReward adds an amount to the current step's reward accumulator.
// Contributions from multiple entities within one step sum; the accumulator
// resets to 0 at the start of every step.
func (p *Plot) AddReward(amount float64) {
	p.reward += amount
}

// SetDiscount overwrites the current step's discount factor. The last
// writer in update order wins. The value must lie in [0, 1].
func (p *Plot) SetDiscount(value float64) error {
	if value < 0 || value > 1 {
		return fmt.Errorf("stage: discount %v outside [0, 1]", value)
	}
	p.discount = value
	return nil
}

// TerminateEpisode sets the one-way termination flag. Once set, the Engine
// accepts no further steps.
func (p *Plot) TerminateEpisode() {
	p.terminated = true
}

// Terminated reports whether any entity has terminated the episode.
func (p *Plot) Terminated() bool {
	return p.terminated
}

// Frame returns the step counter. It is 0 during the initialization pass
// and increments once per step.
func (p *Plot) Frame() int {
	return p.frame
}

// ZOrder returns a copy of the episode's canonical z-order, from back
// (lowest, drawn first) to front.
func (p *Plot) ZOrder() []rune {
	out := make([]rune, len(p.zOrder))
	copy(out, p.zOrder)
	return out
}

// Send leaves a free-form message for the entity with the given identity.
// Messages are retained across steps until cleared.
func (p *Plot) Send(to rune, msg any) {
	p.mailbox[to] = msg
}

// Message returns the pending message for the given identity, if any.
func (p *Plot) Message(id rune) (any, bool) {
	msg, ok := p.mailbox[id]
	return msg, ok
}

// ClearMessage removes the pending message for the given identity.
func (p *Plot) ClearMessage(id rune) {
	delete(p.mailbox, id)
}

// Set stores a free-form shared value retained across steps.
func (p *Plot) Set(key string, value any) {
	p.sticky[key] = value
}

// Get returns a shared value previously stored with Set.
func (p *Plot) Get(key string) (any, bool) {
	v, ok := p.sticky[key]
	return v, ok
}

// Log queues a message for whatever platform layer is running the episode
// to display or record. Entities use it for diagnostics without having to
// smuggle output through a mailbox key. Messages accumulate, in order,
// until something calls ConsumeLog.
func (p *Plot) Log(msg string) {
	p.logs = append(p.logs, msg)
}

// ConsumeLog returns every queued log message in the order logged and
// clears the queue. Platform layers call it once per frame.
func (p *Plot) ConsumeLog() []string {
	msgs := p.logs
	p.logs = nil
	return msgs
}

// Publish writes a single-writer protocol key for the current step. A
// second Publish to the same key within one step is a ProtocolError:
// protocols built on these keys (like scrolling) assume exactly one writer,
// and a silent overwrite would corrupt them without a diagnostic.
func (p *Plot) Publish(key string, value any) error {
	if prev, ok := p.published[key]; ok && prev.frame == p.frame {
		return &ProtocolError{Key: key, Msg: "published twice in one step"}
	}
	p.published[key] = publishedValue{frame: p.frame, value: value}
	return nil
}

// Lookup returns the value published under key during the current step.
// Values published in earlier steps are not visible.
func (p *Plot) Lookup(key string) (any, bool) {
	v, ok := p.published[key]
	if !ok || v.frame != p.frame {
		return nil, false
	}
	return v.value, true
}
