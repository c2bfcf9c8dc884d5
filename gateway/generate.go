package gateway

import (
	"context"
	"fmt"
	"strings"

	"talk-studio/draft"
)

const generationSystemPrompt = "You are an expert TED talk speechwriter. Create compelling, authentic speeches that inspire audiences. Structure with a strong hook, clear narrative arc, and memorable conclusion. Use storytelling, rhetorical devices, and emotional connection. Match the requested tone and duration."

// maxGenerationTokens caps the completion size for the longest duration.
const maxGenerationTokens = 2000

// GenerationPrompt renders the user prompt for a brief. The output
// contract forbids styling markup so the result can be pasted verbatim.
func GenerationPrompt(brief draft.Brief) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write a %d-minute TED-style speech with the following details:\n\n", brief.DurationMinutes)
	fmt.Fprintf(&b, "Title: %s\n", brief.Title)
	fmt.Fprintf(&b, "Topic: %s\n", brief.Topic)
	if brief.KeyMessage != "" {
		fmt.Fprintf(&b, "Key Message: %s\n", brief.KeyMessage)
	}
	fmt.Fprintf(&b, "Target Audience: %s\n", brief.AudienceDemographics)
	fmt.Fprintf(&b, "Speaker Background: %s\n", brief.SpeakerBackground)
	fmt.Fprintf(&b, "Tone: %s\n\n", brief.Tone)

	b.WriteString("Create a complete speech draft with:\n")
	b.WriteString("1. A captivating opening hook\n")
	b.WriteString("2. Personal stories or examples\n")
	b.WriteString("3. Clear main points with transitions\n")
	b.WriteString("4. A powerful, memorable conclusion\n\n")

	b.WriteString("IMPORTANT FORMATTING REQUIREMENTS:\n")
	b.WriteString("- Do NOT use any text styling (no markdown, no bold, no italics, no asterisks, no underscores)\n")
	b.WriteString("- Use blank lines (double line breaks) to separate sections\n")
	b.WriteString("- Write in plain text only - the speech will be copied and pasted, so avoid any formatting characters\n")
	b.WriteString("- Write naturally as if the speaker is delivering it live\n")
	fmt.Fprintf(&b, "- Aim for approximately %d words", brief.TargetWords())

	return b.String()
}

// GenerateSpeech produces the prose for a brief through the language
// model. The brief must be complete; incomplete briefs are rejected
// before any network call.
func GenerateSpeech(ctx context.Context, llm *OpenAI, model string, brief draft.Brief) (string, error) {
	if !brief.Complete() {
		return "", &Error{Kind: KindValidation, Message: "Title and topic are required"}
	}

	maxTokens := brief.TargetWords() * 3 / 2
	if maxTokens > maxGenerationTokens {
		maxTokens = maxGenerationTokens
	}

	return llm.Complete(ctx, ChatRequest{
		Model:       model,
		System:      generationSystemPrompt,
		User:        GenerationPrompt(brief),
		MaxTokens:   maxTokens,
		Temperature: 0.8,
	})
}
