package vision

import "fmt"

const areaPrompt = `Analyze this floor plan image carefully.

First, look for any scale or dimension information (like measurements, scale bars, or room sizes).
Then estimate the total floor area of the entire plan.

Respond ONLY with a valid JSON object containing the following keys:
- "found_dimensions": boolean (true if you found explicit measurements/scale, false otherwise)
- "estimated_area_sqft": string (estimated total area range in square feet, e.g., "1500-1600 sq ft")
- "estimated_area_sqm": string (estimated total area range in square meters, e.g., "140-150 m²")
- "explanation": string (brief explanation of how you estimated the area)

Example JSON response:
{
  "found_dimensions": true,
  "estimated_area_sqft": "1800-1950 sq ft",
  "estimated_area_sqm": "167-181 m²",
  "explanation": "Calculated based on room dimensions shown."
}`

func questionPrompt(question string) string {
	return fmt.Sprintf(`This is a follow-up question about a floor plan image that was previously analyzed.

User's question: %s

Please analyze the floor plan image carefully and respond specifically to the question.
Base your answer on what you can see in the floor plan and explain your reasoning.
If you cannot confidently answer based on the image, please explain why.`, question)
}
