package coach

import (
	"fmt"
	"strings"
)

// SystemInstruction is the fixed coaching persona sent to every backend.
const SystemInstruction = `You are Threadly, an expert communication strategist and conversation coach. Your goal is to analyze messaging contexts and generate strategic response options. You do not just generate text; you provide coaching, risk assessment, and predicted outcomes.`

// ToneLabel buckets the 0-100 tone scalar into a human label for the prompt.
// The numeric value still travels with the prompt unmodified, so this is the
// only place the bucketing rule lives.
func ToneLabel(tone int) string {
	switch {
	case tone < 33:
		return "Casual"
	case tone < 66:
		return "Neutral/Balanced"
	default:
		return "Formal/Professional"
	}
}

// BuildPrompt composes the provider-agnostic analysis prompt. Deterministic
// for identical inputs; the cache fingerprint depends on that indirectly.
func BuildPrompt(history string, scenario ScenarioType, tone int, userContext string) string {
	if strings.TrimSpace(userContext) == "" {
		userContext = "None provided"
	}

	var b strings.Builder
	b.WriteString("\n**CONVERSATION CONTEXT:**\n")
	fmt.Fprintf(&b, "Scenario: %s\n", scenario)
	fmt.Fprintf(&b, "Tone Preference: %d (0=very casual, 100=very formal) - Interpretation: %s\n", tone, ToneLabel(tone))
	fmt.Fprintf(&b, "Additional Context: %s\n", userContext)
	b.WriteString("\n**CONVERSATION HISTORY:**\n")
	b.WriteString(history)
	b.WriteString("\n")
	b.WriteString(promptTask)
	b.WriteString(promptOutputContract)
	return b.String()
}

const promptTask = `
**YOUR TASK:**
1. Analyze the conversation (sentiment, dynamics, urgency).
2. Generate exactly 3 response options with different strategies:
   - Response 1: "recommended" (best balanced approach)
   - Response 2: "bold" OR "safe" (depends on context)
   - Response 3: Alternative strategic approach ("caution" or another "safe"/"bold")
`

// promptOutputContract mirrors the ThreadlyResponse wire shape so the
// normalization firewall has an aligned target to repair toward.
const promptOutputContract = `
**OUTPUT FORMAT:**
Return ONLY a JSON object with this exact structure:

{
  "analysis": {
    "sentiment": "string (1-2 words)",
    "dynamics": "string (brief description)",
    "urgency": "high|medium|low",
    "urgencyReasoning": "string (1 sentence)",
    "keyPoints": ["point1", "point2", "point3"]
  },
  "responses": [
    {
      "strategyType": "recommended|bold|safe|caution",
      "replyText": "The actual message text to send",
      "predictedOutcome": "2-3 sentences about likely reaction",
      "riskLevel": "low|medium|high",
      "riskExplanation": "1-2 sentences explaining risks",
      "reasoning": "2-3 sentences why this approach works",
      "followUp": "What to do after their response"
    }
  ],
  "simulator": {
    "theirResponse": "A realistic reply they might send if the user uses the Recommended response",
    "yourFollowUp": "A good follow-up message for the user",
    "finalReaction": "How they would likely react to the follow-up"
  }
}

The "responses" array must contain exactly 3 entries.
`
