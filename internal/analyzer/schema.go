package analyzer

import (
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// analysisSchema checks presence and types of the critique fields. List
// lengths and rating ranges stay a soft contract with the model.
const analysisSchema = `{
  "type": "object",
  "required": ["overallRating", "strengths", "weaknesses", "technicalAnalysis", "improvements", "finalVerdict"],
  "properties": {
    "overallRating": {"type": "string"},
    "strengths": {"type": "array", "items": {"type": "string"}},
    "weaknesses": {"type": "array", "items": {"type": "string"}},
    "technicalAnalysis": {
      "type": "object",
      "required": ["rhythm", "wordChoice", "imagery", "structure"],
      "properties": {
        "rhythm": {"type": "string"},
        "wordChoice": {"type": "string"},
        "imagery": {"type": "string"},
        "structure": {"type": "string"}
      }
    },
    "improvements": {"type": "array", "items": {"type": "string"}},
    "finalVerdict": {"type": "string"}
  }
}`

var compiledAnalysisSchema = jsonschema.MustCompileString("analysis-result.json", analysisSchema)

func validateSchema(doc any) error {
	return compiledAnalysisSchema.Validate(doc)
}
