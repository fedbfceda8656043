package coach

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Fallback literals used when a field cannot be salvaged. IsDegraded compares
// against fallbackReplyText and fallbackKeyPoint, so keep them stable.
const (
	fallbackSentiment        = "neutral"
	fallbackDynamics         = "unclear dynamics"
	fallbackUrgencyReasoning = "Assessment based on available context"
	fallbackKeyPoint         = "Unable to extract key points"

	fallbackReplyText        = "I appreciate your message. Can we schedule time to discuss this?"
	fallbackPredictedOutcome = "Creates space for thoughtful dialogue"
	fallbackRiskExplanation  = "Non-committal response minimizes risk"
	fallbackReasoning        = "Non-committal response allows both parties to prepare"
	fallbackFollowUp         = "Suggest specific time to talk"

	repairReplyText        = "I appreciate your message."
	repairPredictedOutcome = "Neutral outcome expected"
	repairRiskExplanation  = "Balanced risk assessment"
	repairReasoning        = "Response designed for balanced approach"
	repairFollowUp         = "Follow up based on their response"

	fallbackTheirResponse = "Sure, I understand your perspective."
	fallbackYourFollowUp  = "Thank you for your patience."
	fallbackFinalReaction = "Conversation concludes positively"
)

const maxKeyPoints = 5
const strategyCount = 3

// Decode extracts a JSON value from raw model output. It tolerates markdown
// code fences and leading/trailing prose, the two ways models routinely wrap
// JSON despite instructions.
func Decode(raw string) (any, error) {
	s := strings.TrimSpace(stripFences(raw))
	if s == "" {
		return nil, io.ErrUnexpectedEOF
	}

	// Fast path: valid JSON as-is.
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v, nil
	}

	// Fallback: slice out the first top-level JSON object.
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object found in model output (len=%d)", len(s))
	}
	sub := s[start : end+1]
	if err := json.Unmarshal([]byte(sub), &v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal extracted JSON (len=%d): %w", len(sub), err)
	}
	return v, nil
}

// stripFences removes a wrapping ``` / ```json fence block, if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	for _, tag := range []string{"json", "JSON"} {
		if strings.HasPrefix(s, tag) {
			s = strings.TrimPrefix(s, tag)
			break
		}
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// NormalizeText runs the full firewall over raw model output: decode, then
// per-field repair. It never fails; unparseable input yields the safe-default
// result.
func NormalizeText(raw string) ThreadlyResponse {
	v, err := Decode(raw)
	if err != nil {
		return Normalize(nil)
	}
	return Normalize(v)
}

// Normalize is a total function from untrusted decoded JSON to a valid
// ThreadlyResponse. Every field is validated-or-defaulted here, so the output
// satisfies the enum and shape invariants by construction: enum fields only
// hold declared values, key points are 1-5 entries, the responses array has
// exactly 3 entries, and the simulator is always populated.
func Normalize(raw any) ThreadlyResponse {
	obj := asMap(raw)
	analysisRaw := asMap(obj["analysis"])
	simulatorRaw := asMap(obj["simulator"])

	analysis := AnalysisResult{
		Sentiment:        normalizeString(analysisRaw["sentiment"], fallbackSentiment),
		Dynamics:         normalizeString(analysisRaw["dynamics"], fallbackDynamics),
		Urgency:          normalizeEnum(analysisRaw["urgency"], validUrgency, UrgencyMedium),
		UrgencyReasoning: normalizeString(analysisRaw["urgencyReasoning"], fallbackUrgencyReasoning),
		KeyPoints:        normalizeStringList(analysisRaw["keyPoints"], []string{fallbackKeyPoint}),
	}

	var responses []StrategyResponse
	if arr, ok := obj["responses"].([]any); ok {
		for i, entry := range arr {
			if len(responses) >= strategyCount {
				break
			}
			if resp, ok := normalizeStrategy(entry, i); ok {
				responses = append(responses, resp)
			}
		}
	}
	// Pad to exactly 3 with safe defaults; the round-robin labels keep the
	// strategy set diverse even when the whole array was garbage.
	for len(responses) < strategyCount {
		responses = append(responses, defaultStrategy(len(responses)))
	}

	simulator := SimulatorData{
		TheirResponse: normalizeString(simulatorRaw["theirResponse"], fallbackTheirResponse),
		YourFollowUp:  normalizeString(simulatorRaw["yourFollowUp"], fallbackYourFollowUp),
		FinalReaction: normalizeString(simulatorRaw["finalReaction"], fallbackFinalReaction),
	}

	return ThreadlyResponse{
		Analysis:  analysis,
		Responses: responses,
		Simulator: simulator,
	}
}

// normalizeStrategy repairs one entry of the responses array. Entries that are
// not object-shaped are dropped entirely.
func normalizeStrategy(raw any, index int) (StrategyResponse, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return StrategyResponse{}, false
	}
	return StrategyResponse{
		StrategyType:     normalizeEnum(m["strategyType"], validStrategyTypes, roundRobinStrategy(index)),
		ReplyText:        normalizeString(m["replyText"], repairReplyText),
		PredictedOutcome: normalizeString(m["predictedOutcome"], repairPredictedOutcome),
		RiskLevel:        normalizeEnum(m["riskLevel"], validRiskLevels, RiskMedium),
		RiskExplanation:  normalizeString(m["riskExplanation"], repairRiskExplanation),
		Reasoning:        normalizeString(m["reasoning"], repairReasoning),
		FollowUp:         normalizeString(m["followUp"], repairFollowUp),
	}, true
}

// defaultStrategy synthesizes a whole safe-default entry for position index.
func defaultStrategy(index int) StrategyResponse {
	return StrategyResponse{
		StrategyType:     roundRobinStrategy(index),
		ReplyText:        fallbackReplyText,
		PredictedOutcome: fallbackPredictedOutcome,
		RiskLevel:        RiskLow,
		RiskExplanation:  fallbackRiskExplanation,
		Reasoning:        fallbackReasoning,
		FollowUp:         fallbackFollowUp,
	}
}

func roundRobinStrategy(index int) string {
	if index < 0 {
		index = 0
	}
	return validStrategyTypes[index%len(validStrategyTypes)]
}

func normalizeEnum(v any, valid []string, fallback string) string {
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	s = strings.ToLower(strings.TrimSpace(s))
	for _, candidate := range valid {
		if s == candidate {
			return candidate
		}
	}
	return fallback
}

func normalizeString(v any, fallback string) string {
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return s
}

func normalizeStringList(v any, fallback []string) []string {
	arr, ok := v.([]any)
	if !ok {
		return append([]string(nil), fallback...)
	}
	out := make([]string, 0, maxKeyPoints)
	for _, item := range arr {
		if len(out) >= maxKeyPoints {
			break
		}
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return append([]string(nil), fallback...)
	}
	return out
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// StructureIssue inspects decoded model output before repair and returns a
// human-readable diagnostic for logging, or "" when the shape looks right.
// It never blocks normalization.
func StructureIssue(raw any) string {
	obj, ok := raw.(map[string]any)
	if !ok {
		return "response is not an object"
	}
	if _, ok := obj["analysis"].(map[string]any); !ok {
		return "missing analysis section"
	}
	if arr, ok := obj["responses"].([]any); !ok || len(arr) == 0 {
		return "missing or empty responses array"
	}
	if _, ok := obj["simulator"].(map[string]any); !ok {
		return "missing simulator section"
	}
	return ""
}

// IsDegraded reports whether a normalized result is built entirely from
// fallback values, so callers can tell the user the analysis is not
// authoritative.
func IsDegraded(r ThreadlyResponse) bool {
	if len(r.Responses) > 0 && r.Responses[0].ReplyText == fallbackReplyText {
		return true
	}
	if len(r.Analysis.KeyPoints) == 1 && r.Analysis.KeyPoints[0] == fallbackKeyPoint {
		return true
	}
	return false
}

// NewDegradedResponse builds the canned minimal result used when a provider
// fails outright but the caller still wants something to render.
func NewDegradedResponse(scenario ScenarioType, userContext string) ThreadlyResponse {
	excerpt := userContext
	if len(excerpt) > 50 {
		excerpt = excerpt[:50]
	}
	return ThreadlyResponse{
		Analysis: AnalysisResult{
			Sentiment:        "unclear",
			Dynamics:         fmt.Sprintf("%s conversation, limited context: %q", scenario, excerpt),
			Urgency:          UrgencyMedium,
			UrgencyReasoning: "Limited context available",
			KeyPoints:        []string{"Limited analysis available"},
		},
		Responses: []StrategyResponse{
			{
				StrategyType:     StrategyRecommended,
				ReplyText:        "I need to think about this carefully. Can we talk later?",
				PredictedOutcome: "Buys time without commitment",
				RiskLevel:        RiskLow,
				RiskExplanation:  "Non-committal approach is safe",
				Reasoning:        "Safe default approach when full analysis unavailable",
				FollowUp:         "Respond once you have more clarity",
			},
			defaultStrategy(1),
			defaultStrategy(2),
		},
		Simulator: SimulatorData{
			TheirResponse: "Of course, no rush.",
			YourFollowUp:  "Thanks for understanding.",
			FinalReaction: "Positive acknowledgment",
		},
	}
}
