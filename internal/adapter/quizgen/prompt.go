package quizgen

import (
	"fmt"
	"strings"
)

const promptTemplate = `Based on the following transcript, create a quiz.

Answer strictly in %[1]s. All titles, descriptions, questions and answer options must be written in %[1]s.

Respond with ONLY one raw JSON object in exactly this format, without markdown, code fences or any other text:
{
  "title": "Create a concise quiz title based on the topic of the transcript.",
  "description": "Summarize the transcript in no more than 150 characters. Do not include any quiz questions or answers.",
  "questions": [
    {
      "question_title": "The question goes here.",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "answer": "The correct answer from the above options"
    }
  ]
}

Rules:
1. Every question has exactly %[2]d distinct, non-empty options.
2. "answer" must be exactly one of the strings in "options".
3. Only ask about content that appears in the transcript.

Source video: %[3]s

Transcript:
%[4]s`

const repairTemplate = `Your previous answer could not be accepted: %s

Previous answer:
%s

Return the corrected quiz as ONLY one raw JSON object in the format described above. Fix the problem without changing questions that were already valid.`

func buildPrompt(language string, optionsPerQuestion int, sourceURL, transcript string) string {
	return fmt.Sprintf(promptTemplate, language, optionsPerQuestion, sourceURL, transcript)
}

// buildRepairPrompt re-sends the original prompt together with the rejected answer and
// the reason it was rejected.
func buildRepairPrompt(original, previous string, reason error) string {
	var b strings.Builder
	b.WriteString(original)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, repairTemplate, reason.Error(), previous)
	return b.String()
}
