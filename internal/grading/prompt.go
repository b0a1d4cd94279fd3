package grading

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/studydesk/internal/questionbank"
)

func formatMarks(m float64) string {
	return strconv.FormatFloat(m, 'f', -1, 64)
}

// BuildUnitPrompt renders the examiner prompt for a single answer.
func BuildUnitPrompt(key questionbank.Key, studentAnswer string) string {
	marks := formatMarks(key.Marks)
	return fmt.Sprintf(`You are an ICSE Class 10 Physics board examiner.

Use the official answer key ONLY to evaluate the student's response. Do NOT use any external physics knowledge or assumptions. Assess factual and conceptual correctness based strictly on the key.

Answer Key:
%s

---

Evaluate this student's answer:

Question Number: %s
Student's Answer: %s

Instructions:

1. The question type is %s.
2. The total marks is %s.
3. For multiple choice or objective questions:
   - Extract the correct option letter (a/b/c/d) and its text.
   - Normalize both answers by lowercasing, trimming whitespace and removing parentheses.
   - Award 1 mark if the student selected the correct option letter or wrote exactly the correct option text. Otherwise award 0.
   - For objective questions award marks only for an exact match (case and commas do not matter).
4. For descriptive or numerical answers:
   - Check whether the meaning of the student's answer matches the key.
   - Award marks if the core concepts, reasoning and key words are present, even if phrased differently.
   - Use strict matching for formulas, values, units and calculations.
   - Give partial marks for partially correct responses, but a numerical value must be exact to earn marks.
   - Commas in numbers do not matter.
   - Do not award marks for anything not in the answer key.
5. Output in this exact format:

📘 AI-Graded Evaluation:
1. Marks out of %s: <number>
2. What is missing or wrong (omit if full marks are awarded):
- <bullet points of missing or incorrect parts>
3. Final feedback:
<one-line helpful summary, omit if the answer is perfect>

Do not hallucinate. Do not guess. Stay aligned with the answer key.
`, key.AnswerText(), key.QuestionNumber, strings.TrimSpace(studentAnswer), key.QuestionType, marks, marks)
}

// BuildBatchPrompt renders one examiner prompt covering every keyed item.
// keys and items are parallel.
func BuildBatchPrompt(keys []questionbank.Key, items []Item) string {
	var blocks strings.Builder
	for i, key := range keys {
		fmt.Fprintf(&blocks, `
--------------------------

Question Number: %s | Section: %s
Question: %s
Question Type: %s
Total Marks: %s

Answer Key:
%s

Student Answer:
%s
`, key.QuestionNumber, key.Section, key.QuestionText, key.QuestionType, formatMarks(key.Marks),
			key.AnswerText(), strings.TrimSpace(items[i].StudentAnswer))
	}

	return `You are an ICSE Class 10 Physics board examiner.

Use the official answer key ONLY to evaluate each student response. Do NOT use any external knowledge or assumptions.

For each question, strictly follow these rules:

1. The question type may be MCQ, descriptive, objective, or numerical.
2. For MCQ and objective questions, match either the option letter or the full option text (case insensitive, ignoring spaces and parentheses). Award 1 mark if matched, else 0.
3. For numericals, award full marks only if the value is exactly the same, ignoring commas (100,000 and 100000 are equal). If not exact, give 0 even if close. Check the unit.
4. For descriptive answers, award full or partial marks when the key concepts, reasoning and keywords match. Do not award marks for extra information that is not in the key.

Return a single JSON object with an "evaluations" array, one element per question, like this:

{
  "evaluations": [
    {
      "question_number": "2(i)(b)",
      "section": "A",
      "question": "<question text>",
      "type": "<question type>",
      "verdict": "wrong",
      "marks_awarded": 0,
      "mistake": "What part of the answer was wrong and why",
      "correct_answer": ["Class II lever"],
      "mistake_type": "conceptual",
      "feedback": "Explain the answer and the area the student should improve"
    }
  ]
}

Field rules:
- verdict is mandatory: "correct" if full marks were awarded, "wrong" if anything was deducted.
- mistake_type is one of conceptual, calculation, interpretation. Use an empty array when the answer is correct.
- marks_awarded is a number, never negative.
- Never add markdown, headings, or text outside the JSON.
` + blocks.String() + `
Do not hallucinate or guess. Evaluate strictly based on the answer key.
`
}
