package generation

import (
	"fmt"
	"strings"

	"github.com/corekb/corekb/pkg/types"
)

// QueryType classifies what kind of answer a query wants.
type QueryType string

const (
	QueryConfiguration  QueryType = "configuration"
	QueryDebugging      QueryType = "debugging"
	QueryImplementation QueryType = "implementation"
	QueryExplanation    QueryType = "explanation"
	QueryGeneral        QueryType = "general"
)

// queryKeywords map substrings of a lowercased query to a type. Order
// matters: the first type with any match wins.
var queryKeywords = []struct {
	qtype    QueryType
	keywords []string
}{
	{QueryConfiguration, []string{"config", "setting", "configure", "setup", "parameter"}},
	{QueryDebugging, []string{"error", "bug", "crash", "doesn't work", "does not work", "broken", "fails"}},
	{QueryImplementation, []string{"how to make", "how do i", "implement", "create", "add", "write code"}},
	{QueryExplanation, []string{"what is", "how does", "explain", "understand", "why does"}},
}

// DetectQueryType classifies a query by keyword matching.
func DetectQueryType(query string) QueryType {
	lower := strings.ToLower(query)
	for _, qt := range queryKeywords {
		for _, kw := range qt.keywords {
			if strings.Contains(lower, kw) {
				return qt.qtype
			}
		}
	}
	return QueryGeneral
}

const sourceRule = "\n\nIf the provided sources do not fully answer the question, say so clearly and suggest where to look next."

var promptTemplates = map[QueryType]string{
	QueryConfiguration: `You are an expert on AzerothCore and mod-playerbots configuration.

CONFIGURATION SOURCES:
%s

USER QUESTION: %s

Answer with:
1. The exact configuration needed: file, parameters, recommended values.
2. What each parameter does and why these values.
3. A short example configuration block.
4. Warnings, side effects, and compatibility notes.` + sourceRule,

	QueryDebugging: `You are an expert at debugging AzerothCore and mod-playerbots.

RELEVANT CODE AND DOCUMENTATION:
%s

REPORTED PROBLEM: %s

Analyze the problem and provide:
1. Diagnosis: likely causes and the components involved.
2. Verification: files and functions to inspect, logs to check, how to reproduce.
3. Solutions: the main fix (with code where it applies), alternatives, temporary workarounds.
4. Prevention: how to avoid the problem in the future.

Be specific with function, class, and file names wherever possible.` + sourceRule,

	QueryImplementation: `You are an expert AzerothCore and mod-playerbots developer.

CODE EXAMPLES AND PATTERNS:
%s

TASK TO IMPLEMENT: %s

Provide a complete guide:
1. Approach: recommended strategy and patterns to follow.
2. Implementation: example code following the project's conventions.
3. Files to modify and in what order.
4. Testing: how to verify the change and the important cases.
5. Considerations: performance, safety, compatibility with existing modules.` + sourceRule,

	QueryExplanation: `You are an expert who explains AzerothCore and mod-playerbots concepts clearly.

RELEVANT DOCUMENTATION:
%s

QUESTION: %s

Provide a clear, structured explanation:
1. The main concept: a simple definition and what it is for.
2. How it works: the technical flow of execution.
3. The components involved: main classes, important functions, how they relate.
4. A practical example, with code where it applies.
5. Related files worth reading.

Use analogies where helpful and balance simplicity with technical depth.` + sourceRule,

	QueryGeneral: `You are an expert on AzerothCore and mod-playerbots.

RELEVANT DOCUMENTATION:
%s

QUESTION: %s

Give a precise, useful answer grounded in the documentation above. Include
examples or code where relevant and reference specific files or functions.` + sourceRule,
}

// BuildPrompt selects the template for the query's type and fills it with
// the formatted chunks.
func BuildPrompt(query string, results []types.SearchResult) string {
	return fmt.Sprintf(promptTemplates[DetectQueryType(query)], FormatChunks(results), query)
}

// FormatChunks renders retrieved chunks as numbered, source-attributed
// context blocks.
func FormatChunks(results []types.SearchResult) string {
	if len(results) == 0 {
		return "No relevant information available."
	}

	divider := strings.Repeat("=", 70)
	parts := make([]string, 0, len(results))
	for i, res := range results {
		var b strings.Builder
		fmt.Fprintf(&b, "%s\nSOURCE %d: %s\n", divider, i+1, res.Metadata.Filename)
		fmt.Fprintf(&b, "Path: %s\n", res.Metadata.Filepath)
		fmt.Fprintf(&b, "Module: %s\n", res.Metadata.Module)
		fmt.Fprintf(&b, "Category: %s\n", res.Metadata.Category)
		if res.Metadata.Subsystem != "" {
			fmt.Fprintf(&b, "Subsystem: %s\n", res.Metadata.Subsystem)
		}
		if len(res.Metadata.Tags) > 0 {
			tags := res.Metadata.Tags
			if len(tags) > 5 {
				tags = tags[:5]
			}
			fmt.Fprintf(&b, "Tags: %s\n", strings.Join(tags, ", "))
		}
		fmt.Fprintf(&b, "Relevance: %.2f\n%s\n\n%s\n", res.Score(), divider, res.Chunk.Content)
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n")
}
