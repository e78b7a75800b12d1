package extraction

import "testing"

func TestExtractJSONObject_PlainObject(t *testing.T) {
	got, err := ExtractJSONObject(`{"reviews": []}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"reviews": []}` {
		t.Errorf("got %q", got)
	}
}

func TestExtractJSONObject_MarkdownCodeFence(t *testing.T) {
	got, err := ExtractJSONObject("```json\n{\"reviews\": []}\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"reviews": []}` {
		t.Errorf("got %q, want fenced JSON extracted", got)
	}
}

func TestExtractJSONObject_BareFence(t *testing.T) {
	got, err := ExtractJSONObject("```\n{\"a\": 1}\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"a": 1}` {
		t.Errorf("got %q", got)
	}
}

func TestExtractJSONObject_ConversationalFiller(t *testing.T) {
	got, err := ExtractJSONObject(`Here is the analysis you asked for: {"reviews": [], "overall_decision": "skip it"} hope that helps!`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"reviews": [], "overall_decision": "skip it"}` {
		t.Errorf("got %q", got)
	}
}

func TestExtractJSONObject_NoObject(t *testing.T) {
	if _, err := ExtractJSONObject("completely unparseable garbage"); err == nil {
		t.Error("expected error for response without a JSON object")
	}
}
