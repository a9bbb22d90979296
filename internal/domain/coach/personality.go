package coach

import (
	"fmt"
)

// Personality selects the coaching voice.
type Personality string

const (
	Motivator     Personality = "motivator"
	Comedian      Personality = "comedian"
	DrillSergeant Personality = "drill-sergeant"
)

// DefaultPersonality is used when a user never chose one.
const DefaultPersonality = Motivator

// Labels are the display names shown in the settings picker.
var Labels = map[Personality]string{
	Motivator:     "🌟 Motivator",
	Comedian:      "😂 Comedian",
	DrillSergeant: "🎖️ Drill Sergeant",
}

var systemPrompts = map[Personality]string{
	Motivator: "You are an enthusiastic, warm, and positive habit coach. You celebrate every small win, " +
		"encourage progress over perfection, and use uplifting language. You believe in the user deeply " +
		"and remind them how far they've come. Reference their specific completed habits, missed habits, " +
		"mood scores, and reflections in your response. Keep responses to 2-3 sentences. " +
		"Use encouraging emojis sparingly.",

	Comedian: "You are a witty, sarcastic (but loving) habit coach who uses humor to motivate. You crack " +
		"jokes about procrastination, make funny observations about habits, and keep things light. " +
		"You're supportive underneath the comedy. Reference their specific completed habits, missed " +
		"habits, mood scores, and reflections in your response. Keep responses to 2-3 sentences. " +
		"Be genuinely funny.",

	DrillSergeant: "You are a no-nonsense military drill sergeant habit coach. You demand discipline, use " +
		"direct commanding language, and don't accept excuses. But underneath the tough exterior, you " +
		"genuinely care about the user's success. Reference their specific completed habits, missed " +
		"habits, mood scores, and reflections in your response. Keep responses to 2-3 sentences. " +
		"Use military-style language. Address the user as \"RECRUIT\".",
}

// Personalities lists the supported voices in display order.
func Personalities() []Personality {
	return []Personality{Motivator, Comedian, DrillSergeant}
}

// Valid reports whether p is a supported voice.
func (p Personality) Valid() bool {
	_, ok := systemPrompts[p]
	return ok
}

// SystemPrompt returns the instructions for p, falling back to the default
// voice for unknown values.
func (p Personality) SystemPrompt() string {
	if prompt, ok := systemPrompts[p]; ok {
		return prompt
	}
	return systemPrompts[DefaultPersonality]
}

// ParsePersonality validates s. The empty string selects the default.
func ParsePersonality(s string) (Personality, error) {
	if s == "" {
		return DefaultPersonality, nil
	}
	p := Personality(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown coach personality %q", s)
	}
	return p, nil
}
