// Package ai provides the client for the hosted text-generation service.
package ai

import "context"

// TaskType identifies the kind of generation. It selects token and
// temperature defaults when the caller leaves them unset.
type TaskType int

const (
	TaskCurriculum TaskType = iota
	TaskLessonContent
	TaskLessonBundle
	TaskQuiz
	TaskAssistant
	TaskSummary
)

func (t TaskType) String() string {
	switch t {
	case TaskCurriculum:
		return "curriculum"
	case TaskLessonContent:
		return "lesson_content"
	case TaskLessonBundle:
		return "lesson_bundle"
	case TaskQuiz:
		return "quiz"
	case TaskAssistant:
		return "assistant"
	case TaskSummary:
		return "summary"
	default:
		return "unknown"
	}
}

// DefaultTemperature is used for every task unless overridden.
const DefaultTemperature = 0.7

// DefaultMaxTokens returns the response budget for a task. Larger outputs get
// larger budgets.
func (t TaskType) DefaultMaxTokens() int {
	switch t {
	case TaskCurriculum:
		return 2000
	case TaskLessonContent:
		return 3000
	case TaskLessonBundle:
		return 8000
	case TaskQuiz:
		return 4000
	case TaskAssistant:
		return 1000
	case TaskSummary:
		return 256
	default:
		return 2000
	}
}

// Message represents a role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the input to an AI completion.
type CompletionRequest struct {
	Messages    []Message `json:"messages"`
	Model       string    `json:"model,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	Task        TaskType  `json:"task,omitempty"`
}

// WithDefaults fills MaxTokens and Temperature from the task when unset.
// Zero counts as unset, so a temperature of exactly 0 cannot be requested;
// it becomes DefaultTemperature.
func (r CompletionRequest) WithDefaults() CompletionRequest {
	if r.MaxTokens <= 0 {
		r.MaxTokens = r.Task.DefaultMaxTokens()
	}
	if r.Temperature <= 0 {
		r.Temperature = DefaultTemperature
	}
	return r
}

// CompletionResponse is the output from an AI completion.
type CompletionResponse struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

// TotalTokens returns the sum of input and output tokens.
func (r CompletionResponse) TotalTokens() int {
	return r.InputTokens + r.OutputTokens
}

// ModelInfo describes an available model.
type ModelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MaxTokens   int    `json:"max_tokens"`
	Description string `json:"description"`
}

// Provider is the interface the generation service client implements.
// Complete returns the first choice's text verbatim and never retries.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
	Models() []ModelInfo
	HealthCheck(ctx context.Context) error
}
