package rag

import (
	"fmt"
	"strings"

	"cheesemate/internal/catalog"
)

// Fallback is the fixed answer for any unrecoverable failure. The
// conversational surface never sees a raw error.
const Fallback = "I'm sorry, I couldn't come up with an answer just now. " +
	"I'm best with cheese questions — try asking about a specific cheese, " +
	"a brand, or a price range from our shop."

const promptTemplate = `You are a helpful cheese expert assistant. Use the following pieces of context to answer the question at the end.
If you don't know the answer, just recommend asking only cheese-related questions, don't try to make up an answer.

Context:
%s

Question: %s

Answer: Let me help you with that. `

// composePrompt fills the template with the retrieved products and the
// literal question. An empty context is valid; the model is instructed to
// deflect rather than invent.
func composePrompt(docs []catalog.EnrichedDocument, question string) string {
	var ctx strings.Builder
	for _, d := range docs {
		line := d.Text
		if d.Title != "" {
			details := make([]string, 0, 2)
			if d.Brand != "" {
				details = append(details, d.Brand)
			}
			if d.Price != "" {
				details = append(details, d.Price)
			}
			if len(details) > 0 {
				line = fmt.Sprintf("%s (%s): %s", d.Title, strings.Join(details, ", "), d.Text)
			} else {
				line = fmt.Sprintf("%s: %s", d.Title, d.Text)
			}
		}
		ctx.WriteString("- ")
		ctx.WriteString(line)
		ctx.WriteString("\n")
	}

	context := strings.TrimRight(ctx.String(), "\n")
	if context == "" {
		context = "(no matching products found)"
	}
	return fmt.Sprintf(promptTemplate, context, question)
}
