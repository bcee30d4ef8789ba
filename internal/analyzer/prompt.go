package analyzer

import "fmt"

const promptTemplate = `As a poetry expert, analyze this %s poem and provide feedback in JSON format with the following structure:
{
  "overallRating": "Rate the poem from 1-10 and explain why",
  "strengths": ["List 2-3 main strengths of the poem"],
  "weaknesses": ["List 2-3 areas that need improvement"],
  "technicalAnalysis": {
    "rhythm": "Rate rhythm 1-10 and explain",
    "wordChoice": "Rate word choice 1-10 and explain",
    "imagery": "Rate imagery 1-10 and explain",
    "structure": "Rate structure 1-10 and explain"
  },
  "improvements": ["List 3-4 specific suggestions for improvement"],
  "finalVerdict": "A brief, encouraging summary of the poem's potential"
}

Poem:
%s

Provide constructive, encouraging feedback while being honest about areas for improvement. Return ONLY the JSON object with no additional text.`

// BuildPrompt embeds form and poem verbatim into the critique instructions.
func BuildPrompt(form, poem string) string {
	return fmt.Sprintf(promptTemplate, form, poem)
}
