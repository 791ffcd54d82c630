package behavior

import (
	"math"
	"strings"
	"time"
	"unicode"
)

// PauseContext selects the base range of a natural pause.
type PauseContext string

const (
	PauseThinking   PauseContext = "thinking"
	PauseDistracted PauseContext = "distracted"
	PauseHesitation PauseContext = "hesitation"
	PauseMultitask  PauseContext = "multitask"
	PauseFatigue    PauseContext = "fatigue"
	PauseGeneral    PauseContext = "general"
)

// BreakKind selects the base range of a simulated break.
type BreakKind string

const (
	BreakMicro       BreakKind = "micro"
	BreakShort       BreakKind = "short"
	BreakMedium      BreakKind = "medium"
	BreakLong        BreakKind = "long"
	BreakDistraction BreakKind = "distraction"
)

// ClickDelay draws a delay between clicks: uniform in [min,max], widened by an
// inconsistency roll, scaled by pace and fatigue, and clamped to [min, 2*max].
func (g *Generator) ClickDelay(min, max time.Duration) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	baseDelay := g.uniform(min.Seconds(), max.Seconds())

	// Rolls above the profile's consistency leave the normal variation band.
	if g.profile.Consistency < g.rng.Float64() {
		baseDelay *= g.uniform(0.5, 1.5)
	}

	fatigueMultiplier := 1 + g.fatigueLocked()*0.5
	delay := baseDelay * g.activityMultiplier() * fatigueMultiplier

	return seconds(clamp(delay, min.Seconds(), 2*max.Seconds()))
}

// TypingDelay draws a delay before typing char. The base bounds are scaled by
// the typing style, the upper bound widened for slower character classes, and
// the draw scaled by pace and fatigue. Pass 0 for char when no character
// context applies.
func (g *Generator) TypingDelay(min, max time.Duration, char rune) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return seconds(g.typingDelayLocked(min.Seconds(), max.Seconds(), char))
}

func (g *Generator) typingDelayLocked(baseMin, baseMax float64, char rune) float64 {
	minDelay, maxDelay := g.typingStyleDelays(baseMin, baseMax)

	switch {
	case char == 0:
	case char == ' ' || char == '\n' || char == '\t':
		maxDelay *= 1.5
	case strings.ContainsRune(".,!?;:", char):
		maxDelay *= 1.3
	case unicode.IsUpper(char):
		maxDelay *= 1.1
	case unicode.IsDigit(char):
		maxDelay *= 1.2
	}

	baseDelay := g.uniform(minDelay, maxDelay)
	fatigueMultiplier := 1 + g.fatigueLocked()*0.7

	return baseDelay * g.activityMultiplier() * fatigueMultiplier
}

// typingStyleDelays scales the base bounds for the profile's typing style.
func (g *Generator) typingStyleDelays(baseMin, baseMax float64) (float64, float64) {
	switch g.profile.TypingStyle {
	case TypingHuntAndPeck:
		return baseMin * 2.0, baseMax * 3.0
	case TypingTouch:
		return baseMin * 0.3, baseMax * 0.6
	case TypingProfessional:
		return baseMin * 0.4, baseMax * 0.7
	case TypingMobile:
		return baseMin * 1.5, baseMax * 2.2
	}
	return baseMin, baseMax
}

// WordPause draws the pause between words; longer words cost more thinking
// time. Clamped to [50ms, 1s].
func (g *Generator) WordPause(wordLength int) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	basePause := 0.1 + float64(wordLength)*0.02
	pause := basePause * g.uniform(0.8, 1.5) * g.activityMultiplier() * (2 - g.attentionLocked())

	return seconds(clamp(pause, 0.05, 1.0))
}

// ReadingPause draws the pause for reading textLength characters before
// interacting, modeling roughly 250 words per minute plus an initial scan.
// Clamped to [1s, 30s].
func (g *Generator) ReadingPause(textLength int) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	words := textLength / 5
	if words < 1 {
		words = 1
	}
	baseReadingTime := float64(words) / 250 * 60
	scanningTime := g.uniform(0.5, 2.0)

	total := (baseReadingTime + scanningTime) * g.uniform(0.5, 1.5)
	total *= g.activityMultiplier() * (1.5 - g.attentionLocked()*0.5)

	return seconds(clamp(total, 1.0, 30.0))
}

// NaturalPause draws a free-form pause for the given context. Fatigue weighs
// fully on fatigue pauses and lightly on everything else.
func (g *Generator) NaturalPause(context PauseContext) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	var minPause, maxPause float64
	switch context {
	case PauseThinking:
		minPause, maxPause = 1.0, 4.0
	case PauseDistracted:
		minPause, maxPause = 2.0, 8.0
	case PauseHesitation:
		minPause, maxPause = 0.5, 2.0
	case PauseMultitask:
		minPause, maxPause = 3.0, 15.0
	case PauseFatigue:
		minPause, maxPause = 1.0, 5.0
	default:
		minPause, maxPause = 0.5, 2.0
	}

	basePause := g.uniform(minPause, maxPause)

	fatigue := g.fatigueLocked()
	fatigueMultiplier := 1 + fatigue*0.3
	if context == PauseFatigue {
		fatigueMultiplier = 1 + fatigue
	}

	return seconds(basePause * g.activityMultiplier() * fatigueMultiplier)
}

// DragDuration derives how long dragging over distance pixels should take,
// around 500 pixels per second. Clamped to [200ms, 5s].
func (g *Generator) DragDuration(distance float64) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	baseDuration := 0.5 + distance/500
	duration := baseDuration * g.activityMultiplier() * g.uniform(0.8, 1.3)

	return seconds(clamp(duration, 0.2, 5.0))
}

// BreakDuration draws the length of a simulated break. Unknown kinds fall
// back to a short break.
func (g *Generator) BreakDuration(kind BreakKind) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	var minDur, maxDur float64
	switch kind {
	case BreakMicro:
		minDur, maxDur = 1, 5
	case BreakMedium:
		minDur, maxDur = 15, 60
	case BreakLong:
		minDur, maxDur = 60, 300
	case BreakDistraction:
		minDur, maxDur = 2, 30
	default:
		minDur, maxDur = 5, 15
	}

	duration := g.uniform(minDur, maxDur)
	switch g.profile.ActivityLevel {
	case ActivityDistracted:
		duration *= g.uniform(1.5, 2.0)
	case ActivityFocused:
		duration *= g.uniform(0.3, 0.7)
	}

	return seconds(duration)
}

// ScrollAmount varies a base scroll magnitude by one notch and the persona's
// pace. The result never drops below one notch.
func (g *Generator) ScrollAmount(base int) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	varied := base + (g.rng.Intn(3) - 1)

	switch g.profile.ActivityLevel {
	case ActivityEnergetic:
		varied = int(float64(varied) * g.uniform(1.2, 1.8))
	case ActivityTired:
		varied = int(float64(varied) * g.uniform(0.5, 0.8))
		if varied < 1 {
			varied = 1
		}
	}

	if varied < 1 {
		return 1
	}
	return varied
}

// MovementVariation draws a small random offset pair for a pointer target.
// Offsets are gaussian with 99.7% of draws inside maxVariation; inconsistency
// rolls scale them beyond that.
func (g *Generator) MovementVariation(maxVariation int) (int, int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	stdDev := float64(maxVariation) / 3
	varX := int(g.rng.NormFloat64() * stdDev)
	varY := int(g.rng.NormFloat64() * stdDev)

	varX = clampInt(varX, -maxVariation, maxVariation)
	varY = clampInt(varY, -maxVariation, maxVariation)

	if g.profile.Consistency < g.rng.Float64() {
		varX = int(float64(varX) * g.uniform(1.5, 2.0))
		varY = int(float64(varY) * g.uniform(1.5, 2.0))
	}

	return varX, varY
}

func clamp(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
