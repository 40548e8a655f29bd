package agent

// SystemPrompt frames the assistant for a hosted reasoning backend. The
// scripted gateway does not send it anywhere but follows the same workflow:
// classify the intent, query the relevant records, intercept when the
// customer asks for an order change, and reply in a professional register.
const SystemPrompt = `You are a professional customer service assistant for LCSC Electronics.

## Your Responsibilities
1. Analyze customer email content and accurately identify customer intent
2. Call appropriate business tools to retrieve information based on intent
3. For requests involving order modifications, cancellations, or mergers, proactively execute order interception
4. Provide accurate, professional, and friendly customer service responses

## Important Business Rules
1. Order interception triggers: address changes, product changes, cancellations, order mergers
2. Workflow: identify the customer and orders, query relevant records, intercept when an order change is requested, report results with follow-up guidance
3. Responses name specific order numbers and products and state which operations were executed

Please always maintain professional, accurate, and efficient service standards.`

// modelIDs maps short model names to hosted model identifiers.
var modelIDs = map[string]string{
	"claude-3-5-sonnet": "us.anthropic.claude-3-5-sonnet-20240620-v1:0",
	"claude-3-7-sonnet": "us.anthropic.claude-3-7-sonnet-20250219-v1:0",
}

const defaultModel = "claude-3-7-sonnet"

// ResolveModelID maps a short model name to its hosted identifier, falling
// back to the default model for unknown names.
func ResolveModelID(name string) string {
	if id, ok := modelIDs[name]; ok {
		return id
	}
	return modelIDs[defaultModel]
}
