package tool

import (
	"errors"
	"fmt"
)

// Result is the outcome of a tool call: a TextResult, an ErrorResult or an ArtifactResult.
type Result interface {
	// Content returns the text handed back to the LLM.
	Content() string
	isResult()
}

// TextResult is plain text.
type TextResult struct {
	Text string
}

// ErrorResult reports an expected failure in a form the LLM can act on.
type ErrorResult struct {
	Message string
	Cause   error
}

// ArtifactResult carries text plus the typed value it was rendered from.
// Only artifacts are eligible for sinking and domain tool binding.
type ArtifactResult struct {
	Text     string
	Artifact any
}

func (r TextResult) Content() string     { return r.Text }
func (r ErrorResult) Content() string    { return r.Message }
func (r ArtifactResult) Content() string { return r.Text }

func (TextResult) isResult()     {}
func (ErrorResult) isResult()    {}
func (ArtifactResult) isResult() {}

// Text creates a TextResult.
func Text(content string) Result {
	return TextResult{Text: content}
}

// Textf creates a formatted TextResult.
func Textf(format string, args ...any) Result {
	return TextResult{Text: fmt.Sprintf(format, args...)}
}

// Error creates an ErrorResult.
func Error(message string) Result {
	return ErrorResult{Message: message}
}

// Errorf creates a formatted ErrorResult. A %w verb records the wrapped error as the cause.
func Errorf(format string, args ...any) Result {
	err := fmt.Errorf(format, args...)
	cause := errors.Unwrap(err)
	return ErrorResult{Message: err.Error(), Cause: cause}
}

// WithArtifact creates an ArtifactResult.
func WithArtifact(content string, artifact any) Result {
	return ArtifactResult{Text: content, Artifact: artifact}
}

// ArtifactOf returns the artifact carried by r.
func ArtifactOf(r Result) (any, bool) {
	if a, ok := r.(ArtifactResult); ok && a.Artifact != nil {
		return a.Artifact, true
	}
	return nil, false
}

// IsError reports whether r is an ErrorResult.
func IsError(r Result) bool {
	_, ok := r.(ErrorResult)
	return ok
}
