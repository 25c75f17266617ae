package generation

import "strings"

// DefaultBudget is the input token budget of the T5 encoder.
const DefaultBudget = 512

func SummaryPrompt(text string) string {
	return "summarize: " + text
}

func QAPrompt(question, context string) string {
	return "question: " + question + " context: " + context
}

// Truncate bounds prompt to budget whitespace-separated tokens. Prompts within
// the budget are returned unchanged.
func Truncate(prompt string, budget int) string {
	if budget <= 0 {
		budget = DefaultBudget
	}
	fields := strings.Fields(prompt)
	if len(fields) <= budget {
		return prompt
	}
	return strings.Join(fields[:budget], " ")
}

// SummaryRequest builds a truncated summarize request.
func SummaryRequest(text string, max, min, budget int) Request {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return Request{
		Task:   TaskSummarize,
		Prompt: Truncate(SummaryPrompt(text), budget),
		Params: SummaryParams(max, min),
		Budget: budget,
	}
}

// AnswerRequest builds a truncated question-answering request. The question
// leads the prompt so truncation only ever cuts into the context.
func AnswerRequest(question, context string, budget int) Request {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return Request{
		Task:   TaskAnswer,
		Prompt: Truncate(QAPrompt(question, context), budget),
		Params: QAParams(),
		Budget: budget,
	}
}
