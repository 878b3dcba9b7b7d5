package models

import "testing"

func TestTaskSpecValid(t *testing.T) {
	tests := []struct {
		name string
		task TaskSpec
		want bool
	}{
		{"complete", TaskSpec{Tool: "reminder_tool", Content: "call John"}, true},
		{"missing tool", TaskSpec{Content: "call John"}, false},
		{"missing content", TaskSpec{Tool: "reminder_tool"}, false},
		{"whitespace content", TaskSpec{Tool: "reminder_tool", Content: "   "}, false},
		{"empty", TaskSpec{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStringResult(t *testing.T) {
	r := StringResult("search_tool", "found it")
	if !r.Success {
		t.Error("StringResult should be successful")
	}
	if r.Tool != "search_tool" || r.Message != "found it" {
		t.Errorf("unexpected result: %+v", r)
	}
}

func TestErrorResult(t *testing.T) {
	r := ErrorResult("bogus_tool", "unknown tool")
	if r.Success {
		t.Error("ErrorResult should not be successful")
	}
	if r.Message != "unknown tool" {
		t.Errorf("Message = %q, want %q", r.Message, "unknown tool")
	}
}
