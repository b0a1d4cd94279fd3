package doubt

import (
	"fmt"
	"strings"
)

// BuildPrompt renders the explainer prompt. Earlier messages from the same
// conversation are listed before the current doubt.
func BuildPrompt(question string, history []string) string {
	var ctx strings.Builder
	for i, msg := range history {
		if i > 0 {
			ctx.WriteByte('\n')
		}
		fmt.Fprintf(&ctx, "Previous message: %s", msg)
	}

	return fmt.Sprintf(`You are an expert ICSE doubt explainer.

You must only give the final explanation. Do not add any thinking process, internal reasoning, or notes. Your answer must start immediately with the explanation.
Explain the concept in very simple words to clear the concept.
Do not write very long answers.

%s

Current Doubt:
%s

Use clear steps, bullet points, and examples. Be brief but accurate, in a way the student can understand.
Do not drag out answers or hallucinate.
`, ctx.String(), strings.TrimSpace(question))
}
