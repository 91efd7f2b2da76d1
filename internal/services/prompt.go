package services

import "fmt"

const systemInstruction = "You are a world-class Applicant Tracking System (ATS) and Career Coach. " +
	"Your task is to analyze a candidate's resume against a specific job description. " +
	"Provide the analysis in structured markdown format with four distinct sections. " +
	"Ensure the output is clean, well-formatted markdown, ready for display."

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildAnalysisPrompt interpolates the job description and extracted resume text
// into the fixed analysis template. Returns the system instruction and user prompt.
func (pb *PromptBuilder) BuildAnalysisPrompt(jobDescription, resumeText string) (string, string) {
	userPrompt := fmt.Sprintf(`Analyze the candidate's resume based on the following job description.

## Job Description:
---
%s
---

## Candidate Resume Text (Extracted):
---
%s
---

Your analysis must strictly follow this structure:

1.  **ATS Match Score:** A percentage score out of 100 (e.g., 78/100) indicating the match level. Use bold text for the score.
2.  **Missing Keywords/Skills:** A bulleted list of up to 5 essential skills/keywords mentioned in the Job Description but *missing* from the Resume. If none are missing, state that clearly.
3.  **Summary of Strengths:** A concise, single paragraph highlighting the candidate's best relevant qualifications for the role.
4.  **Actionable Improvement Suggestions:** A bulleted list of 3-5 concrete, specific suggestions on how to modify the resume text to increase the match score.`,
		jobDescription, resumeText)

	return systemInstruction, userPrompt
}
