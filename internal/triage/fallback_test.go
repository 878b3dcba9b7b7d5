package triage

import (
	"strings"
	"testing"

	"github.com/amite/personal-triage-agent/pkg/models"
)

func TestFallbackParse_Detectors(t *testing.T) {
	p := NewFallbackParser(0)

	tests := []struct {
		name    string
		request string
		want    []models.TaskSpec
	}{
		{
			name:    "reminder",
			request: "Please remind me to call John tomorrow",
			want:    []models.TaskSpec{{Tool: "reminder_tool", Content: "call John tomorrow"}},
		},
		{
			name:    "draft",
			request: "Draft an email about the quarterly review",
			want:    []models.TaskSpec{{Tool: "drafting_tool", Content: "the quarterly review"}},
		},
		{
			name:    "search",
			request: "Check the stock price of google",
			want:    []models.TaskSpec{{Tool: "search_tool", Content: "google"}},
		},
		{
			name:    "reminder and draft",
			request: "Remind me to send the report, and draft an email about the offsite",
			want: []models.TaskSpec{
				{Tool: "drafting_tool", Content: "the offsite"},
				{Tool: "reminder_tool", Content: "send the report"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := p.Parse(tt.request)
			if len(result.Tasks) != len(tt.want) {
				t.Fatalf("got %d tasks %+v, want %d", len(result.Tasks), result.Tasks, len(tt.want))
			}
			for i, want := range tt.want {
				if result.Tasks[i] != want {
					t.Errorf("task %d = %+v, want %+v", i, result.Tasks[i], want)
				}
			}
		})
	}
}

func TestFallbackParse_AlwaysYieldsTask(t *testing.T) {
	p := NewFallbackParser(0)

	for _, request := range []string{
		"",
		"   ",
		"tell me a story",
		"remind without the trigger word shape",
	} {
		result := p.Parse(request)
		if len(result.Tasks) == 0 {
			t.Errorf("Parse(%q) yielded no tasks", request)
		}
		for _, task := range result.Tasks {
			if !task.Valid() {
				t.Errorf("Parse(%q) yielded invalid task %+v", request, task)
			}
		}
	}
}

func TestFallbackParse_GenericTruncation(t *testing.T) {
	p := NewFallbackParser(3)

	result := p.Parse("one two three four five")
	if len(result.Tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(result.Tasks))
	}
	task := result.Tasks[0]
	if task.Tool != "search_tool" {
		t.Errorf("Tool = %q, want search_tool", task.Tool)
	}
	if task.Content != "one two three" {
		t.Errorf("Content = %q, want first 3 tokens", task.Content)
	}
}

func TestFallbackParse_Deterministic(t *testing.T) {
	p := NewFallbackParser(0)
	request := "Remind me to water the plants and check for updates"

	first := p.Parse(request)
	for i := 0; i < 5; i++ {
		again := p.Parse(request)
		if len(again.Tasks) != len(first.Tasks) {
			t.Fatal("task count changed between runs")
		}
		for j := range first.Tasks {
			if again.Tasks[j] != first.Tasks[j] {
				t.Fatalf("run %d task %d = %+v, want %+v", i, j, again.Tasks[j], first.Tasks[j])
			}
		}
	}
}

func TestTruncateTokens(t *testing.T) {
	if got := truncateTokens("", 10); got == "" {
		t.Error("empty request should still yield content")
	}
	if got := truncateTokens("a b", 10); got != "a b" {
		t.Errorf("short request altered: %q", got)
	}
	long := strings.Repeat("word ", 30)
	if got := truncateTokens(long, 10); len(strings.Fields(got)) != 10 {
		t.Errorf("got %d tokens, want 10", len(strings.Fields(got)))
	}
}
