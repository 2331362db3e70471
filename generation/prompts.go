package generation

import (
	"fmt"
	"strings"

	"github.com/caseforge/caseforge/pipeline_type"
)

// buildContentPrompt assembles the case-study prompt from the request
// parameters and the retrieved reference. An empty reference omits the
// style block entirely rather than showing the model an empty section.
func buildContentPrompt(reference string, params pipeline_type.GenerationParameters) string {
	var b strings.Builder

	b.WriteString("Create a detailed product management case study following these requirements:\n\n")
	b.WriteString("Context:\n")
	fmt.Fprintf(&b, "- Industry: %s\n", params.Industry)
	fmt.Fprintf(&b, "- Role Focus: %s\n", params.Role)
	fmt.Fprintf(&b, "- Difficulty Level: %s\n", params.Difficulty)
	fmt.Fprintf(&b, "- Focus Area: %s\n", params.FocusArea)
	if params.TimeConstraint != "" {
		fmt.Fprintf(&b, "- Time Constraint: %s\n", params.TimeConstraint)
	}

	b.WriteString(`
Case Study Structure:
1. Background & Context
   - Company description
   - Market situation
   - Current challenges

2. Problem Statement
   - Clear definition of the main problem
   - Key stakeholders involved
   - Business impact

3. Data & Constraints
   - Available data and metrics
   - Technical limitations
   - Budget/resource constraints
   - Timeline considerations

4. Requirements
   - Business requirements
   - User needs
   - Technical requirements

5. Solution Space
   - Potential approaches
   - Trade-offs analysis
   - Success metrics

6. Implementation Considerations
   - Timeline
   - Resource allocation
   - Risk mitigation
`)

	if reference != "" {
		b.WriteString("\nReference case study for style (but create entirely new content):\n")
		b.WriteString(reference)
		b.WriteString("\n")
	}

	b.WriteString("\nImportant:\n")
	b.WriteString("- Make it detailed and realistic\n")
	b.WriteString("- Include specific numbers and metrics\n")
	b.WriteString("- Present clear trade-offs and decision points\n")
	fmt.Fprintf(&b, "- Focus on %s aspects\n", params.FocusArea)
	fmt.Fprintf(&b, "- Match the %s difficulty level\n", params.Difficulty)
	fmt.Fprintf(&b, "- Make it relevant to %s industry\n", params.Industry)

	return b.String()
}

// buildQAPrompt asks for exactly count question/answer records as a
// JSON array. The format is a request the model may ignore; the parser
// downstream copes with that.
func buildQAPrompt(content string, params pipeline_type.GenerationParameters, count int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Based on this case study, generate %d challenging and thought-provoking questions with detailed answers.\n", count)
	b.WriteString("Focus on critical thinking and decision-making aspects.\n\n")
	b.WriteString("Case Study:\n")
	b.WriteString(content)
	b.WriteString("\n\nGenerate questions that:\n")
	fmt.Fprintf(&b, "- Match the %s difficulty level\n", params.Difficulty)
	fmt.Fprintf(&b, "- Focus on %s aspects\n", params.FocusArea)
	b.WriteString("- Test both strategic thinking and practical implementation\n")
	b.WriteString("- Require analysis and justification in answers\n")
	b.WriteString("- Cover different aspects of the case study\n\n")
	b.WriteString("Format each Q&A pair as:\n")
	b.WriteString("{\n")
	b.WriteString("    \"question\": \"Detailed question here?\",\n")
	b.WriteString("    \"answer\": \"Comprehensive answer with analysis and justification\"\n")
	b.WriteString("}\n\n")
	fmt.Fprintf(&b, "Provide exactly %d Q&A pairs in a valid JSON array.\n", count)

	return b.String()
}
