package provider

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Wire-mirror types for OpenAI structured output. These intentionally
// duplicate the response shape rather than importing it, so the schema this
// package sends upstream cannot drift under an unrelated refactor of the
// caller's types.
type analysisSchema struct {
	Sentiment        string   `json:"sentiment"`
	Dynamics         string   `json:"dynamics"`
	Urgency          string   `json:"urgency" jsonschema:"enum=low,enum=medium,enum=high"`
	UrgencyReasoning string   `json:"urgencyReasoning"`
	KeyPoints        []string `json:"keyPoints"`
}

type strategySchema struct {
	StrategyType     string `json:"strategyType" jsonschema:"enum=recommended,enum=bold,enum=safe,enum=caution"`
	ReplyText        string `json:"replyText"`
	PredictedOutcome string `json:"predictedOutcome"`
	RiskLevel        string `json:"riskLevel" jsonschema:"enum=low,enum=medium,enum=high"`
	RiskExplanation  string `json:"riskExplanation"`
	Reasoning        string `json:"reasoning"`
	FollowUp         string `json:"followUp"`
}

type simulatorSchema struct {
	TheirResponse string `json:"theirResponse"`
	YourFollowUp  string `json:"yourFollowUp"`
	FinalReaction string `json:"finalReaction"`
}

type threadlySchema struct {
	Analysis  analysisSchema   `json:"analysis"`
	Responses []strategySchema `json:"responses"`
	Simulator simulatorSchema  `json:"simulator"`
}

func generateSchema[T any]() map[string]interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)
	schemaObj, err := schemaToMap(schema)
	if err != nil {
		panic(err)
	}
	ensureOpenAICompliance(schemaObj)
	return schemaObj
}

func schemaToMap(schema *jsonschema.Schema) (map[string]interface{}, error) {
	b, err := schema.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

const (
	propertiesKey           = "properties"
	additionalPropertiesKey = "additionalProperties"
	typeKey                 = "type"
	requiredKey             = "required"
	itemsKey                = "items"
)

// ensureOpenAICompliance rewrites a reflected schema to satisfy OpenAI's
// strict structured-output rules: objects forbid additional properties and
// list every property as required.
func ensureOpenAICompliance(schema map[string]interface{}) {
	if schemaType, ok := schema[typeKey].(string); ok && schemaType == "object" {
		schema[additionalPropertiesKey] = false

		if properties, ok := schema[propertiesKey].(map[string]interface{}); ok {
			var requiredFields []string
			for propName := range properties {
				requiredFields = append(requiredFields, propName)
			}
			if len(requiredFields) > 0 {
				schema[requiredKey] = requiredFields
			}
		}
	}

	if properties, ok := schema[propertiesKey].(map[string]interface{}); ok {
		for _, prop := range properties {
			if propMap, ok := prop.(map[string]interface{}); ok {
				ensureOpenAICompliance(propMap)
			}
		}
	}

	if items, ok := schema[itemsKey].(map[string]interface{}); ok {
		ensureOpenAICompliance(items)
	}

	if additionalProps, ok := schema[additionalPropertiesKey].(map[string]interface{}); ok {
		ensureOpenAICompliance(additionalProps)
	}
}
