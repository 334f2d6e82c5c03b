package market

import (
	"math/rand"

	"starlanes/internal/sim/catalogs"
)

// ActiveEvent is the singleton news event currently pressing on the market.
// Remaining starts at the sampled magnitude and decays by a fixed amount per
// jump until the event expires.
type ActiveEvent struct {
	Template  catalogs.EventTemplate
	Magnitude float64 // as originally sampled
	Remaining float64
}

// NewsKind tags what the engine did on a given jump.
type NewsKind string

const (
	NewsTriggered NewsKind = "TRIGGERED"
	NewsDecayed   NewsKind = "DECAYED"
	NewsExpired   NewsKind = "EXPIRED"
)

// NewsFlash is the engine's report for the display layer.
type NewsFlash struct {
	Kind      NewsKind        `json:"kind"`
	EventID   string          `json:"event_id"`
	Headline  string          `json:"headline"`
	Category  string          `json:"category"`
	Impact    catalogs.Impact `json:"impact"`
	Remaining float64         `json:"remaining"`
}

// EngineConfig carries the trigger/decay parameters.
type EngineConfig struct {
	Probability   float64
	Decay         float64
	CooldownJumps int
	WarmupJumps   int
}

// Engine is the news-event state machine. At most one event is active; while
// one is active no new event can trigger, and after one expires a cooldown
// of jumps must pass before the next Bernoulli trial.
type Engine struct {
	catalog catalogs.EventCatalog
	cfg     EngineConfig

	active        *ActiveEvent
	lastConcluded int
	hadEvent      bool
}

func NewEngine(catalog catalogs.EventCatalog, cfg EngineConfig) *Engine {
	return &Engine{catalog: catalog, cfg: cfg}
}

func (e *Engine) Active() *ActiveEvent {
	return e.active
}

// Restore rebuilds engine state from a save.
func (e *Engine) Restore(active *ActiveEvent, lastConcluded int, hadEvent bool) {
	e.active = active
	e.lastConcluded = lastConcluded
	e.hadEvent = hadEvent
}

func (e *Engine) LastConcluded() (jump int, ok bool) {
	return e.lastConcluded, e.hadEvent
}

// Step advances the event machinery by one jump, after the fluctuation step
// has already run. It either decays the active event or rolls for a new one.
// The returned flash is nil when nothing newsworthy happened.
func (e *Engine) Step(jump int, u *Universe, rng *rand.Rand) *NewsFlash {
	if jump < e.cfg.WarmupJumps {
		return nil
	}
	if e.active != nil {
		return e.decay(jump, u)
	}
	if e.hadEvent && jump-e.lastConcluded < e.cfg.CooldownJumps {
		return nil
	}
	if len(e.catalog.IDs) == 0 || rng.Float64() >= e.cfg.Probability {
		return nil
	}
	return e.trigger(u, rng)
}

func (e *Engine) decay(jump int, u *Universe) *NewsFlash {
	ev := e.active
	old := ev.Remaining
	ev.Remaining -= e.cfg.Decay

	// Undo the previous contribution, then reapply the smaller one, and
	// renormalize once for the combined change.
	delta := -e.signed(ev.Template.Impact, old)
	if ev.Remaining > 0 {
		delta += e.signed(ev.Template.Impact, ev.Remaining)
	}
	u.Apply(ev.Template.Category, delta)

	if ev.Remaining <= 0 {
		e.active = nil
		e.lastConcluded = jump
		e.hadEvent = true
		return &NewsFlash{
			Kind:     NewsExpired,
			EventID:  ev.Template.ID,
			Headline: ev.Template.Headline,
			Category: ev.Template.Category,
			Impact:   ev.Template.Impact,
		}
	}
	return &NewsFlash{
		Kind:      NewsDecayed,
		EventID:   ev.Template.ID,
		Headline:  ev.Template.Headline,
		Category:  ev.Template.Category,
		Impact:    ev.Template.Impact,
		Remaining: ev.Remaining,
	}
}

func (e *Engine) trigger(u *Universe, rng *rand.Rand) *NewsFlash {
	tpl := e.catalog.ByID[e.catalog.IDs[rng.Intn(len(e.catalog.IDs))]]
	magnitude := tpl.MinMagnitude + rng.Float64()*(tpl.MaxMagnitude-tpl.MinMagnitude)

	u.Apply(tpl.Category, e.signed(tpl.Impact, magnitude))

	e.active = &ActiveEvent{Template: tpl, Magnitude: magnitude, Remaining: magnitude}
	return &NewsFlash{
		Kind:      NewsTriggered,
		EventID:   tpl.ID,
		Headline:  tpl.Headline,
		Category:  tpl.Category,
		Impact:    tpl.Impact,
		Remaining: magnitude,
	}
}

func (e *Engine) signed(impact catalogs.Impact, magnitude float64) float64 {
	if impact == catalogs.ImpactCrash {
		return -magnitude
	}
	return magnitude
}
