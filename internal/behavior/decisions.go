package behavior

import (
	"math"
	"time"
)

// Complexity grades how demanding an upcoming action is.
type Complexity string

const (
	ComplexitySimple      Complexity = "simple"
	ComplexityNormal      Complexity = "normal"
	ComplexityComplex     Complexity = "complex"
	ComplexityVeryComplex Complexity = "very_complex"
)

// CorrectionKind names how a typing mistake gets repaired.
type CorrectionKind string

const (
	CorrectionBackspace CorrectionKind = "backspace_correction"
	CorrectionSelect    CorrectionKind = "select_correction"
	CorrectionClick     CorrectionKind = "click_correction"
	CorrectionIgnore    CorrectionKind = "ignore_error"
)

// Correction describes one simulated error repair.
type Correction struct {
	Kind        CorrectionKind
	DelayBefore time.Duration
	// Speed scales the repair keystrokes relative to normal typing.
	Speed    float64
	Hesitate bool
}

// ShouldMakeMistake decides whether a typing mistake occurs now. The
// probability scales with difficulty, fatigue, inattention, and the typing
// style, and is capped at 20%. A profile with zero mistake proneness never
// makes mistakes.
func (g *Generator) ShouldMakeMistake(difficulty float64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	probability := g.profile.MistakeProneness * difficulty
	probability *= 1 + g.fatigueLocked()*2
	probability *= 1.5 - g.attentionLocked()*0.5
	probability *= g.typingStyleMistakeFactor()

	return g.rng.Float64() < math.Min(0.2, probability)
}

// typingStyleMistakeFactor scales mistake probability for the typing style.
func (g *Generator) typingStyleMistakeFactor() float64 {
	switch g.profile.TypingStyle {
	case TypingHuntAndPeck:
		return 2.0
	case TypingTouch:
		return 0.3
	case TypingProfessional:
		return 0.2
	case TypingMobile:
		return 1.5
	}
	return 1.0
}

// ShouldHesitate decides whether to pause before an action of the given
// complexity. Capped at 40%.
func (g *Generator) ShouldHesitate(complexity Complexity) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.shouldHesitateLocked(complexity)
}

func (g *Generator) shouldHesitateLocked(complexity Complexity) bool {
	var complexityFactor float64
	switch complexity {
	case ComplexitySimple:
		complexityFactor = 0.5
	case ComplexityComplex:
		complexityFactor = 2.0
	case ComplexityVeryComplex:
		complexityFactor = 3.0
	default:
		complexityFactor = 1.0
	}

	probability := g.profile.HesitationTendency * complexityFactor
	probability *= 1 + g.fatigueLocked()
	probability *= 1.5 - g.attentionLocked()*0.5

	return g.rng.Float64() < math.Min(0.4, probability)
}

// ShouldTakeBreak decides whether the persona drifts off to another task.
// The probability grows with session length and is capped at 30%.
func (g *Generator) ShouldTakeBreak() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	sessionMinutes := g.now().Sub(g.sessionStart).Minutes()
	timeFactor := 1 + sessionMinutes/60

	activityMultiplier := g.activityMultiplier()
	if g.profile.ActivityLevel == ActivityDistracted {
		activityMultiplier *= 3
	}

	probability := g.profile.MultitaskingLevel * timeFactor * activityMultiplier

	return g.rng.Float64() < math.Min(0.3, probability)
}

// ShouldDoubleCheck decides whether the persona re-verifies the last action.
// Focused personas check most, distracted ones barely at all.
func (g *Generator) ShouldDoubleCheck() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.profile.ActivityLevel {
	case ActivityFocused:
		return g.rng.Float64() < 0.3
	case ActivityDistracted:
		return g.rng.Float64() < 0.05
	}
	return g.rng.Float64() < 0.15
}

// ErrorCorrection plans the repair of a typing mistake. Professionals lean on
// immediate backspacing; hunt-and-peck typists almost always backspace too,
// since selecting costs them more than retyping.
func (g *Generator) ErrorCorrection() Correction {
	g.mu.Lock()
	defer g.mu.Unlock()

	var weights [4]float64
	switch g.profile.TypingStyle {
	case TypingProfessional:
		weights = [4]float64{0.6, 0.3, 0.05, 0.05}
	case TypingHuntAndPeck:
		weights = [4]float64{0.8, 0.1, 0.05, 0.05}
	default:
		weights = [4]float64{0.5, 0.2, 0.1, 0.2}
	}

	kinds := [4]CorrectionKind{CorrectionBackspace, CorrectionSelect, CorrectionClick, CorrectionIgnore}
	kind := kinds[3]
	roll := g.rng.Float64()
	var cumulative float64
	for i, w := range weights {
		cumulative += w
		if roll < cumulative {
			kind = kinds[i]
			break
		}
	}

	return Correction{
		Kind:        kind,
		DelayBefore: seconds(g.typingDelayLocked(0.05, 0.15, 0) * g.uniform(1.5, 3.0)),
		Speed:       g.uniform(0.8, 1.2),
		Hesitate:    g.shouldHesitateLocked(ComplexitySimple),
	}
}
