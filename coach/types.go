package coach

// ScenarioType tags the kind of relationship/context the conversation sits in.
type ScenarioType string

const (
	ScenarioProfessional ScenarioType = "Professional"
	ScenarioPersonal     ScenarioType = "Personal"
	ScenarioRomantic     ScenarioType = "Romantic"
	ScenarioFamily       ScenarioType = "Family"
	ScenarioConflict     ScenarioType = "Conflict"
	ScenarioSales        ScenarioType = "Sales"
)

// Scenarios lists every valid scenario tag in presentation order.
var Scenarios = []ScenarioType{
	ScenarioProfessional,
	ScenarioPersonal,
	ScenarioRomantic,
	ScenarioFamily,
	ScenarioConflict,
	ScenarioSales,
}

// ValidScenario reports whether s is a member of the scenario set.
func ValidScenario(s ScenarioType) bool {
	for _, v := range Scenarios {
		if v == s {
			return true
		}
	}
	return false
}

// Urgency / risk / strategy enums. After normalization these fields only ever
// hold values from these sets; the firewall clamps anything else.
const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"

	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"

	StrategyRecommended = "recommended"
	StrategyBold        = "bold"
	StrategySafe        = "safe"
	StrategyCaution     = "caution"
)

var (
	validUrgency       = []string{UrgencyLow, UrgencyMedium, UrgencyHigh}
	validRiskLevels    = []string{RiskLow, RiskMedium, RiskHigh}
	validStrategyTypes = []string{StrategyRecommended, StrategyBold, StrategySafe, StrategyCaution}
)

// AnalysisResult is the sentiment/dynamics/urgency read on the conversation.
type AnalysisResult struct {
	Sentiment string `json:"sentiment"`
	Dynamics  string `json:"dynamics"`

	// Urgency is one of low|medium|high.
	Urgency          string `json:"urgency"`
	UrgencyReasoning string `json:"urgencyReasoning"`

	// KeyPoints are 1-5 retrievable observations about the thread.
	KeyPoints []string `json:"keyPoints"`
}

// StrategyResponse is one suggested reply plus its coaching metadata.
type StrategyResponse struct {
	// StrategyType is one of recommended|bold|safe|caution.
	StrategyType string `json:"strategyType"`

	// ReplyText is the literal message the user would send.
	ReplyText        string `json:"replyText"`
	PredictedOutcome string `json:"predictedOutcome"`

	// RiskLevel is one of low|medium|high.
	RiskLevel       string `json:"riskLevel"`
	RiskExplanation string `json:"riskExplanation"`
	Reasoning       string `json:"reasoning"`
	FollowUp        string `json:"followUp"`
}

// SimulatorData is a three-turn forward projection of the exchange, assuming
// the user sends the recommended reply.
type SimulatorData struct {
	TheirResponse string `json:"theirResponse"`
	YourFollowUp  string `json:"yourFollowUp"`
	FinalReaction string `json:"finalReaction"`
}

// ThreadlyResponse is the canonical analysis result. After normalization it
// always has exactly 3 responses and a populated simulator, and every enum
// field holds a value from its declared set. Treat it as immutable once built.
type ThreadlyResponse struct {
	Analysis  AnalysisResult     `json:"analysis"`
	Responses []StrategyResponse `json:"responses"`
	Simulator SimulatorData      `json:"simulator"`
}
