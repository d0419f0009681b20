package intent

import (
	"fmt"
	"strings"
)

// defaultSymptomNames is offered to the model when the catalog is empty.
var defaultSymptomNames = []string{
	"coughing", "fever", "sore throat", "sores", "rash", "constipation", "weakness",
}

const promptHeader = `You are a medical assistant AI.
Your task is to extract structured medical information based solely on the user's message below.
Do not make assumptions. Only analyze what the user actually said.

### User Message
"%s"

You must base all output strictly on this message.

### Available Symptoms
Match with the symptoms that match one of the following or similar words / synonyms:
`

const promptRules = `If you don't find the symptom or severity in the user message, then look in the conversation history.

### Output Format
You MUST return ONLY a single JSON object, starting with { and ending with }.
It MUST have exactly these keys:

{
  "symptoms": ["symptom names from the list above that best match the user message"],
  "severity": "mild" | "moderate" | "severe" | null,
  "duration": "a concise phrase like 'for three days'" | null
}

### Rules
- Match based on semantic meaning, not just exact words.
  - "tired" -> "weakness"
  - "spots" or "blisters" -> "rash" or "sores"
  - "stomach ache" is not in the list, ignore it
- Extract severity if explicit or implied ("bad cough" -> "moderate").
- Normalize duration ("couple of days" -> "2 days").
- Always include "symptoms" as an array, even if empty.
- Never wrap output in markdown fences or add extra text.

### Example
User: "I feel really tired and have had a bad cough for a couple of days."

Output:
{
  "symptoms": ["weakness", "coughing"],
  "severity": "moderate",
  "duration": "2 days"
}
`

// BuildPrompt constructs the extraction prompt for message. names lists the
// recognised symptom names; when empty a built-in list is used. Only history
// entries written by the user ("user: ...") are carried into the prompt.
func BuildPrompt(message string, history []string, names []string) string {
	if len(names) == 0 {
		names = defaultSymptomNames
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, promptHeader, strings.ReplaceAll(message, `"`, `\"`))
	for _, n := range names {
		fmt.Fprintf(&sb, "- %q\n", n)
	}
	sb.WriteString(promptRules)
	prompt := sb.String()

	if len(history) == 0 {
		return prompt
	}
	var userLines []string
	for _, h := range history {
		if strings.HasPrefix(h, "user") {
			userLines = append(userLines, h)
		}
	}
	return fmt.Sprintf("Conversation history:\n%s\n\n%s", strings.Join(userLines, "\n"), prompt)
}
