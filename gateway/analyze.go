package gateway

import (
	"context"
	"encoding/json"
	"math"
	"strings"
)

// Scores is the rhetorical-appeal result: three integers in [0,100] plus
// a rationale per dimension.
type Scores struct {
	Logos             int    `json:"logos"`
	Pathos            int    `json:"pathos"`
	Ethos             int    `json:"ethos"`
	LogosDescription  string `json:"logos_description"`
	PathosDescription string `json:"pathos_description"`
	EthosDescription  string `json:"ethos_description"`
}

const analysisPromptHeader = `Analyze the following speech for rhetorical effectiveness. Provide a JSON response with numerical scores (0-100) and detailed descriptions for each of the three rhetorical appeals:

1. Logos (Logical Appeal): Evaluate the use of logic, reasoning, evidence, and structured arguments
2. Pathos (Emotional Appeal): Evaluate the use of emotion, storytelling, personal connections, and audience engagement
3. Ethos (Credibility Appeal): Evaluate the speaker's credibility, authority, trustworthiness, and authenticity

You must respond with ONLY valid JSON in this exact format (no markdown, no code blocks, just the JSON):
{
  "logos": <number 0-100>,
  "pathos": <number 0-100>,
  "ethos": <number 0-100>,
  "logos_description": "<detailed explanation of the logos score>",
  "pathos_description": "<detailed explanation of the pathos score>",
  "ethos_description": "<detailed explanation of the ethos score>"
}

Speech to analyze:
`

// ClampScore rounds a raw model score and pins it to [0,100]. Raw values
// from the upstream model are never trusted.
func ClampScore(raw float64) int {
	score := int(math.Round(raw))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// rawAnalysis tolerates non-integer and out-of-range upstream values.
type rawAnalysis struct {
	Logos             *float64 `json:"logos"`
	Pathos            *float64 `json:"pathos"`
	Ethos             *float64 `json:"ethos"`
	LogosDescription  string   `json:"logos_description"`
	PathosDescription string   `json:"pathos_description"`
	EthosDescription  string   `json:"ethos_description"`
}

// ParseAnalysis extracts and normalizes the scores object from a model
// response. The JSON object is located inside the text in case the model
// wrapped it in extra prose.
func ParseAnalysis(text string) (Scores, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Scores{}, &Error{Kind: KindUpstreamMalformed, Message: "no JSON object in analysis response"}
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return Scores{}, &Error{Kind: KindUpstreamMalformed, Message: "failed to parse analysis response"}
	}
	if raw.Logos == nil || raw.Pathos == nil || raw.Ethos == nil {
		return Scores{}, &Error{Kind: KindUpstreamMalformed, Message: "analysis response missing score fields"}
	}

	return Scores{
		Logos:             ClampScore(*raw.Logos),
		Pathos:            ClampScore(*raw.Pathos),
		Ethos:             ClampScore(*raw.Ethos),
		LogosDescription:  raw.LogosDescription,
		PathosDescription: raw.PathosDescription,
		EthosDescription:  raw.EthosDescription,
	}, nil
}

// AnalyzeSpeech scores a speech text through the language model. Blank
// content is rejected before any network call.
func AnalyzeSpeech(ctx context.Context, llm *OpenAI, model, speechContent string) (Scores, error) {
	if strings.TrimSpace(speechContent) == "" {
		return Scores{}, &Error{Kind: KindValidation, Message: "Speech content is required"}
	}

	text, err := llm.Complete(ctx, ChatRequest{
		Model:      model,
		User:       analysisPromptHeader + speechContent,
		JSONObject: true,
	})
	if err != nil {
		return Scores{}, err
	}

	return ParseAnalysis(text)
}

// Overall derives the aggregate score as the rounded mean of the three
// dimensions.
func (s Scores) Overall() int {
	return ClampScore(float64(s.Logos+s.Pathos+s.Ethos) / 3)
}
