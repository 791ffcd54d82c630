package behavior

import "fmt"

// ActivityLevel describes the overall pace of a synthetic persona.
type ActivityLevel string

const (
	ActivityTired      ActivityLevel = "tired"
	ActivityNormal     ActivityLevel = "normal"
	ActivityEnergetic  ActivityLevel = "energetic"
	ActivityFocused    ActivityLevel = "focused"
	ActivityDistracted ActivityLevel = "distracted"
)

// ParseActivityLevel converts a config string into an ActivityLevel.
func ParseActivityLevel(s string) (ActivityLevel, error) {
	switch ActivityLevel(s) {
	case ActivityTired, ActivityNormal, ActivityEnergetic, ActivityFocused, ActivityDistracted:
		return ActivityLevel(s), nil
	}
	return "", fmt.Errorf("unknown activity level %q", s)
}

// TypingStyle describes the keystroke pattern of a synthetic persona.
type TypingStyle string

const (
	TypingHuntAndPeck  TypingStyle = "hunt_and_peck"
	TypingTouch        TypingStyle = "touch_typing"
	TypingCasual       TypingStyle = "casual"
	TypingProfessional TypingStyle = "professional"
	TypingMobile       TypingStyle = "mobile"
)

// ParseTypingStyle converts a config string into a TypingStyle.
func ParseTypingStyle(s string) (TypingStyle, error) {
	switch TypingStyle(s) {
	case TypingHuntAndPeck, TypingTouch, TypingCasual, TypingProfessional, TypingMobile:
		return TypingStyle(s), nil
	}
	return "", fmt.Errorf("unknown typing style %q", s)
}

// Profile is the immutable trait bundle describing a synthetic persona. All
// probability fields stay in [0,1] for the profile's lifetime; a Generator
// never mutates its profile.
type Profile struct {
	ActivityLevel ActivityLevel
	TypingStyle   TypingStyle

	// MistakeProneness is the base probability of a typing mistake.
	MistakeProneness float64
	// HesitationTendency is the base probability of hesitating before acting.
	HesitationTendency float64
	// MultitaskingLevel is the base probability of drifting off to other tasks.
	MultitaskingLevel float64
	// AttentionSpan is the baseline focus; effective attention drops with fatigue.
	AttentionSpan float64
	// FatigueFactor is the starting fatigue bias.
	FatigueFactor float64
	// Consistency is the probability that behavior stays inside the normal
	// variation band; rolls above it widen timing variation.
	Consistency float64
}

// Validate checks that every trait is usable.
func (p Profile) Validate() error {
	if _, err := ParseActivityLevel(string(p.ActivityLevel)); err != nil {
		return err
	}
	if _, err := ParseTypingStyle(string(p.TypingStyle)); err != nil {
		return err
	}
	fields := map[string]float64{
		"mistake_proneness":   p.MistakeProneness,
		"hesitation_tendency": p.HesitationTendency,
		"multitasking_level":  p.MultitaskingLevel,
		"attention_span":      p.AttentionSpan,
		"fatigue_factor":      p.FatigueFactor,
		"consistency":         p.Consistency,
	}
	for name, v := range fields {
		if v < 0 || v > 1 {
			return fmt.Errorf("profile field %s out of range [0,1]: %v", name, v)
		}
	}
	return nil
}

// DefaultProfile is an average persona: normal pace, casual typing.
func DefaultProfile() Profile {
	return Profile{
		ActivityLevel:      ActivityNormal,
		TypingStyle:        TypingCasual,
		MistakeProneness:   0.0,
		HesitationTendency: 0.1,
		MultitaskingLevel:  0.1,
		AttentionSpan:      0.8,
		FatigueFactor:      0.0,
		Consistency:        0.7,
	}
}

// TiredProfile is a worn-down persona: slow, inconsistent, easily distracted.
func TiredProfile() Profile {
	return Profile{
		ActivityLevel:      ActivityTired,
		TypingStyle:        TypingCasual,
		MistakeProneness:   0.0,
		HesitationTendency: 0.2,
		MultitaskingLevel:  0.15,
		AttentionSpan:      0.6,
		FatigueFactor:      0.3,
		Consistency:        0.5,
	}
}

// FocusedProfile is a deliberate persona: fast, accurate, rarely drifts.
func FocusedProfile() Profile {
	return Profile{
		ActivityLevel:      ActivityFocused,
		TypingStyle:        TypingProfessional,
		MistakeProneness:   0.0,
		HesitationTendency: 0.05,
		MultitaskingLevel:  0.02,
		AttentionSpan:      0.95,
		FatigueFactor:      0.1,
		Consistency:        0.9,
	}
}

// CasualProfile is an everyday persona between the two extremes.
func CasualProfile() Profile {
	return Profile{
		ActivityLevel:      ActivityNormal,
		TypingStyle:        TypingCasual,
		MistakeProneness:   0.0,
		HesitationTendency: 0.1,
		MultitaskingLevel:  0.1,
		AttentionSpan:      0.8,
		FatigueFactor:      0.15,
		Consistency:        0.7,
	}
}

// PresetProfile returns the named preset profile.
func PresetProfile(name string) (Profile, error) {
	switch name {
	case "default":
		return DefaultProfile(), nil
	case "tired":
		return TiredProfile(), nil
	case "focused":
		return FocusedProfile(), nil
	case "casual":
		return CasualProfile(), nil
	}
	return Profile{}, fmt.Errorf("unknown profile preset %q", name)
}
