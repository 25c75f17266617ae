// Package generation wraps the sequence-to-sequence model behind a typed
// result. Callers never see backend errors directly: every call yields a
// Result whose Reason tells them whether to use the text or degrade.
package generation

import (
	"context"
	"time"
)

// Task names the kind of generation request.
type Task string

const (
	TaskSummarize Task = "summarize"
	TaskAnswer    Task = "answer"
)

// Reason tags the outcome of a generation call.
type Reason string

const (
	ReasonOK          Reason = ""
	ReasonDisabled    Reason = "disabled"
	ReasonLoadFailed  Reason = "load_failed"
	ReasonTimeout     Reason = "timeout"
	ReasonRuntime     Reason = "runtime_error"
	ReasonEmptyOutput Reason = "empty_output"
)

// Outcome is the metrics label for r.
func (r Reason) Outcome() string {
	if r == ReasonOK {
		return "ok"
	}
	return string(r)
}

// Params are the decoding settings forwarded to the backend.
type Params struct {
	MaxLength         int     `json:"max_length"`
	MinLength         int     `json:"min_length,omitempty"`
	NumBeams          int     `json:"num_beams"`
	NoRepeatNgramSize int     `json:"no_repeat_ngram_size,omitempty"`
	RepetitionPenalty float64 `json:"repetition_penalty,omitempty"`
	LengthPenalty     float64 `json:"length_penalty"`
	EarlyStopping     bool    `json:"early_stopping"`
}

// QAParams are the decoding settings for answering a question.
func QAParams() Params {
	return Params{
		MaxLength:         100,
		NumBeams:          4,
		NoRepeatNgramSize: 2,
		RepetitionPenalty: 1.5,
		LengthPenalty:     1.0,
		EarlyStopping:     true,
	}
}

// SummaryParams are the decoding settings for a summary bounded by max and
// min output tokens.
func SummaryParams(max, min int) Params {
	return Params{
		MaxLength:     max,
		MinLength:     min,
		NumBeams:      4,
		LengthPenalty: 2.0,
		EarlyStopping: true,
	}
}

// Request is a single generation call.
type Request struct {
	Task   Task
	Prompt string
	Params Params
	// Budget is the input token budget the prompt was truncated to.
	Budget int
}

// Backend is a model server able to turn a prompt into text.
type Backend interface {
	Name() string
	Load(ctx context.Context) error
	Generate(ctx context.Context, req Request) (string, error)
}

// Result is the outcome of Client.Generate.
type Result struct {
	Text    string
	Reason  Reason
	Err     error
	Latency time.Duration
}

// Failed reports whether a configured backend failed to produce usable text.
// A disabled client is not a failure.
func (r Result) Failed() bool {
	return r.Reason != ReasonOK && r.Reason != ReasonDisabled
}

// OK reports whether Text can be used.
func (r Result) OK() bool { return r.Reason == ReasonOK }
