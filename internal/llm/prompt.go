package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// languageInstructions are shared across providers. Unknown codes fall
// back to English rather than failing the request.
var languageInstructions = map[string]string{
	"en": "Generate all resume content in English.",
	"fr": "Generate all resume content in French (Français). Write the summary and work experience descriptions in French.",
	"nl": "Generate all resume content in Dutch (Nederlands). Write the summary and work experience descriptions in Dutch.",
}

func languageInstruction(language string) string {
	if instr, ok := languageInstructions[language]; ok {
		return instr
	}
	return languageInstructions["en"]
}

const systemPrompt = `You are an expert resume writer and career coach. Your task is to analyze
a job description and a candidate's profile, then create a tailored resume
that highlights the most relevant qualifications.

You must return valid JSON matching the specified schema.

Guidelines:
- Extract key requirements from the job description
- Match candidate qualifications to job requirements
- Reorder work experiences by relevance (most relevant first)
- Enhance descriptions to emphasize matching skills (but never fabricate)
- Calculate a realistic match score (0-100) based on requirement coverage
- Be honest about gaps - don't claim matches that don't exist`

const userPromptTemplate = `Analyze this job description and create a tailored resume from the candidate profile.

## LANGUAGE INSTRUCTION
%s

## JOB DESCRIPTION
%s

## CANDIDATE PROFILE
%s

## REQUIRED OUTPUT FORMAT
Return a JSON object with exactly this structure:
{
  "job_title": "extracted job title",
  "company_name": "extracted company name or null",
  "match_score": 75.5,
  "job_analysis": {
    "required_skills": [
      {"name": "Python", "matched": true},
      {"name": "AWS", "matched": false}
    ],
    "preferred_skills": [
      {"name": "Kubernetes", "matched": false}
    ],
    "experience_years": {"required": 5, "matched": true},
    "education": {"required": "Bachelor's CS", "matched": true}
  },
  "resume": {
    "summary": "A tailored professional summary...",
    "work_experiences": [
      {
        "id": 1,
        "company": "Acme Corp",
        "title": "Senior Developer",
        "start_date": "2020-01",
        "end_date": null,
        "description": "Tailored description emphasizing relevant skills...",
        "match_reasons": ["Python", "Team Leadership"],
        "included": true,
        "order": 1
      }
    ],
    "skills": [
      {"name": "Python", "matched": true, "included": true}
    ],
    "education": [
      {
        "id": 1,
        "institution": "State University",
        "degree": "BS Computer Science",
        "field_of_study": "Computer Science",
        "graduation_year": 2017,
        "included": true
      }
    ],
    "projects": [
      {
        "id": 1,
        "name": "Project Name",
        "description": "Project description",
        "technologies": "Python, Docker",
        "included": false
      }
    ]
  }
}

Important:
- Only include profile items that are relevant to this job
- Reorder work experiences by relevance (most relevant first)
- For each included work experience, explain why it matches (match_reasons)
- Be accurate with the match_score - it should reflect actual qualification coverage
- Keep the original IDs from the profile for work_experiences, education, and projects
- Set included=false for items that are not relevant`

func buildUserPrompt(jobText string, profile any, language string) (string, error) {
	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal profile: %w", err)
	}
	return fmt.Sprintf(userPromptTemplate, languageInstruction(language), jobText, profileJSON), nil
}

// parseResult extracts the JSON object from a provider reply and decodes
// it. Providers are asked for pure JSON but may wrap it in prose, so the
// object is cut from the first "{" to the last "}". A reply with no
// opening brace carries no JSON at all; one with an opening brace but no
// closing brace was cut off at the token limit.
func parseResult(raw string) (*Result, error) {
	start := strings.Index(raw, "{")
	if start == -1 {
		return nil, ErrNoJSON
	}
	end := strings.LastIndex(raw, "}")
	if end < start {
		return nil, ErrTruncated
	}

	var result Result
	if err := json.Unmarshal([]byte(raw[start:end+1]), &result); err != nil {
		if !strings.HasSuffix(strings.TrimRight(raw, " \t\r\n"), "}") {
			return nil, ErrTruncated
		}
		return nil, fmt.Errorf("%w: invalid response: %v", ErrFault, err)
	}
	return &result, nil
}
