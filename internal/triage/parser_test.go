package triage

import (
	"strings"
	"testing"

	"github.com/amite/personal-triage-agent/internal/tools"
)

func testRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	return tools.NewRegistry(
		tools.NewReminderTool(nil),
		tools.NewDraftingTool(nil, nil),
		tools.NewSearchTool(),
	)
}

func TestParse_CleanJSON(t *testing.T) {
	p := NewResponseParser(testRegistry(t))

	result, err := p.Parse(`{"tasks":[{"tool":"reminder_tool","content":"call John"}],"reasoning":"one reminder"}`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(result.Tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(result.Tasks))
	}
	if result.Tasks[0].Tool != "reminder_tool" || result.Tasks[0].Content != "call John" {
		t.Errorf("unexpected task: %+v", result.Tasks[0])
	}
	if result.Reasoning != "one reminder" {
		t.Errorf("Reasoning = %q", result.Reasoning)
	}
}

func TestParse_ProseWrappedWithStrayBraces(t *testing.T) {
	p := NewResponseParser(testRegistry(t))

	response := `Sure! Here is the breakdown you asked for } and some noise:
{"tasks":[{"tool":"reminder_tool","content":"call John"}],"reasoning":"x"}
Hope that helps!`

	result, err := p.Parse(response)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(result.Tasks) != 1 || result.Tasks[0].Content != "call John" {
		t.Errorf("unexpected tasks: %+v", result.Tasks)
	}
}

func TestParse_BracesInsideStrings(t *testing.T) {
	p := NewResponseParser(testRegistry(t))

	result, err := p.Parse(`{"tasks":[{"tool":"search_tool","content":"find {weird} syntax"}],"reasoning":"r"}`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if result.Tasks[0].Content != "find {weird} syntax" {
		t.Errorf("Content = %q", result.Tasks[0].Content)
	}
}

func TestParse_RepairMissingComma(t *testing.T) {
	p := NewResponseParser(testRegistry(t))

	result, err := p.Parse(`{"tasks":[{"tool":"reminder_tool","content":"b"}{"tool":"search_tool","content":"d"}],"reasoning":"r"}`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(result.Tasks) != 2 {
		t.Fatalf("got %d tasks, want 2 after comma repair", len(result.Tasks))
	}
}

func TestParse_RepairTrailingComma(t *testing.T) {
	p := NewResponseParser(testRegistry(t))

	result, err := p.Parse(`{"tasks":[{"tool":"search_tool","content":"x"},],"reasoning":"r",}`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(result.Tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(result.Tasks))
	}
}

func TestParse_RepairSingleQuotesAndBareKeys(t *testing.T) {
	p := NewResponseParser(testRegistry(t))

	result, err := p.Parse(`{tasks: [{tool: 'search_tool', content: 'google stock'}], reasoning: 'quotes'}`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(result.Tasks) != 1 || result.Tasks[0].Content != "google stock" {
		t.Errorf("unexpected tasks: %+v", result.Tasks)
	}
}

func TestParse_InvalidTasksDroppedWithWarnings(t *testing.T) {
	p := NewResponseParser(testRegistry(t))

	result, err := p.Parse(`{"tasks":[
		{"tool":"reminder_tool","content":"keep me"},
		{"tool":"bogus_tool","content":"drop me"},
		{"tool":"search_tool","content":""}
	],"reasoning":"r"}`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(result.Tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(result.Tasks))
	}
	if len(result.Warnings) != 2 {
		t.Errorf("got %d warnings, want 2: %v", len(result.Warnings), result.Warnings)
	}
}

func TestParse_Failures(t *testing.T) {
	p := NewResponseParser(testRegistry(t))

	tests := []struct {
		name     string
		response string
	}{
		{"empty", ""},
		{"whitespace", "   \n\t  "},
		{"prose only", "I could not determine any tasks from that request."},
		{"all tasks invalid", `{"tasks":[{"tool":"nope","content":"x"}],"reasoning":"r"}`},
		{"truncated json", `{"tasks":[{"tool":"reminder_tool","con`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := p.Parse(tt.response); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestExtractBalanced(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain object", `{"a":1}`, `{"a":1}`},
		{"prose prefix", `noise } noise {"a":1} tail`, `{"a":1}`},
		{"nested", `{"a":{"b":2}}`, `{"a":{"b":2}}`},
		{"brace in string", `{"a":"}"}`, `{"a":"}"}`},
		{"escaped quote", `{"a":"\"}"}`, `{"a":"\"}"}`},
		{"unbalanced", `{"a":1`, ""},
		{"no braces", "nothing here", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractBalanced(tt.input); got != tt.want {
				t.Errorf("extractBalanced(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRepair(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trailing comma", `{"a":[1,2,],}`, `{"a":[1,2]}`},
		{"adjacent objects", `[{"a":1}{"b":2}]`, `[{"a":1}, {"b":2}]`},
		{"single quotes", `{'a':'b'}`, `{"a":"b"}`},
		{"bare keys", `{a: 1, b_2: 2}`, `{"a": 1, "b_2": 2}`},
		{"already valid", `{"a":1}`, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := repair(tt.input); got != tt.want {
				t.Errorf("repair(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPromptBuilder(t *testing.T) {
	b := NewPromptBuilder(testRegistry(t))

	prompt := b.Build("remind me to stretch")
	if !strings.Contains(prompt, `"remind me to stretch"`) {
		t.Error("prompt missing request")
	}
	for _, name := range []string{"reminder_tool", "drafting_tool", "search_tool"} {
		if !strings.Contains(prompt, name) {
			t.Errorf("prompt missing tool %s", name)
		}
	}
	if !strings.Contains(prompt, `"tasks"`) {
		t.Error("prompt missing output schema")
	}

	// Catalog is cached; two builds differ only by request.
	other := b.Build("another request")
	if prompt == other {
		t.Error("prompts for different requests should differ")
	}
}
