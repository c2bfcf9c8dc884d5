package draft

import (
	"strings"
)

// Average speaking rate used for word targets and duration estimates.
const WordsPerMinute = 130

// Brief is the structured description of a talk, distinct from the
// generated prose content.
type Brief struct {
	Title                string `json:"title" form:"title"`
	Topic                string `json:"topic" form:"topic"`
	KeyMessage           string `json:"keyMessage" form:"key_message"`
	AudienceDemographics string `json:"audienceDemographics" form:"audience_demographics"`
	SpeakerBackground    string `json:"speakerBackground" form:"speaker_background"`
	DurationMinutes      int    `json:"durationMinutes" form:"duration_minutes"`
	Tone                 string `json:"tone" form:"tone"`
}

// Complete reports whether the brief carries enough to generate content.
func (b Brief) Complete() bool {
	return strings.TrimSpace(b.Title) != "" && strings.TrimSpace(b.Topic) != ""
}

// DivergedFrom reports whether any structural field differs from the
// snapshot. Title is deliberately excluded: renaming a talk or editing
// its prose must never trigger a regeneration prompt.
func (b Brief) DivergedFrom(snapshot Brief) bool {
	return b.Topic != snapshot.Topic ||
		b.KeyMessage != snapshot.KeyMessage ||
		b.AudienceDemographics != snapshot.AudienceDemographics ||
		b.SpeakerBackground != snapshot.SpeakerBackground ||
		b.DurationMinutes != snapshot.DurationMinutes ||
		b.Tone != snapshot.Tone
}

// TargetWords is the word count the generated speech should aim for.
func (b Brief) TargetWords() int {
	return b.DurationMinutes * WordsPerMinute
}

// WordCount counts whitespace-separated words in a speech script.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// EstimateMinutes estimates the speaking time of a script, rounding up.
func EstimateMinutes(text string) int {
	words := WordCount(text)
	if words == 0 {
		return 0
	}
	return (words + WordsPerMinute - 1) / WordsPerMinute
}
