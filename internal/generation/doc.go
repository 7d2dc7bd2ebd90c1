// Package generation turns ranked chunks into an answer.
//
// A prompt builder picks a template by the detected query type and formats
// the retrieved chunks into a cited context block; a thin Anthropic
// Messages API client sends the prompt and returns the model's text.
package generation
