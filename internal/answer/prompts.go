package answer

import (
	"fmt"
	"strings"

	"github.com/ziadkadry99/docchat/internal/websearch"
)

// Exchange is one earlier question and its answer.
type Exchange struct {
	Question string
	Answer   string
}

// Prompt is the rendered generation request.
type Prompt struct {
	System string
	User   string
}

const noWebResults = "No web results available."

const groundedSystem = `You are a helpful document assistant. Answer questions based on the provided context first.
The context contains trusted information from uploaded documents and is your primary source.
If the context does not have enough information, supplement it with the web search results or general knowledge.
Do not explicitly mention your sources; respond naturally.
Format your response clearly using markdown.`

const openSystem = `You are a helpful assistant answering questions based on general knowledge and web search results.
No uploaded document matched this question.
If you don't have enough information, be honest about it.
Format your response clearly using markdown.`

// BuildPrompt renders the generation request. With a non-empty context the
// documents are the primary source and web results are supplementary;
// otherwise the model relies on web results and general knowledge.
func BuildPrompt(question, context string, history []Exchange, results []websearch.Result, language string) Prompt {
	system := openSystem
	if context != "" {
		system = groundedSystem
	}
	if language != "" {
		system += fmt.Sprintf("\nAlways answer in %s.", language)
	}

	var b strings.Builder
	if len(history) > 0 {
		b.WriteString("## Conversation history\n")
		for _, h := range history {
			fmt.Fprintf(&b, "Q: %s\nA: %s\n", h.Question, h.Answer)
		}
		b.WriteString("\n")
	}

	if context != "" {
		b.WriteString("## Context from documents\n")
		b.WriteString(context)
		b.WriteString("\n\n## Web search results (supplementary)\n")
	} else {
		b.WriteString("## Web search results\n")
	}
	b.WriteString(renderResults(results))

	b.WriteString("\n\n## User question\n")
	b.WriteString(question)

	return Prompt{System: system, User: b.String()}
}

func renderResults(results []websearch.Result) string {
	if len(results) == 0 {
		return noWebResults
	}
	lines := make([]string, len(results))
	for i, r := range results {
		lines[i] = fmt.Sprintf("- %s: %s", r.Title, r.Snippet)
	}
	return strings.Join(lines, "\n")
}
