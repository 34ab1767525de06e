package prompt

import (
	"strings"
	"testing"
)

func TestRenderInterviewer(t *testing.T) {
	out, err := Render(Interviewer, map[string]string{
		"interview_type": "technical",
		"resume_context": "Data engineer with AWS Glue and Redshift experience.",
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, want := range []string{"technical", "Redshift"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered prompt missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "{") {
		t.Errorf("rendered prompt still contains a placeholder:\n%s", out)
	}
}

func TestRenderMissingKey(t *testing.T) {
	_, err := Render(AnswerGenerator, map[string]string{
		"resume_context": "resume",
		"question":       "why us?",
		// answer_style and followup_instruction omitted
	})
	if err == nil {
		t.Fatal("Render() should fail on missing keys")
	}
	if !strings.Contains(err.Error(), "answer_style") {
		t.Errorf("error should name the missing key, got %v", err)
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	if _, err := Render("resume_generator", nil); err == nil {
		t.Error("Render() should reject unknown template ids")
	}
}

func TestRenderAllTemplates(t *testing.T) {
	tests := []struct {
		id     string
		values map[string]string
	}{
		{Interviewer, map[string]string{
			"interview_type": "hr",
			"resume_context": "r",
		}},
		{AnswerGenerator, map[string]string{
			"resume_context":       "r",
			"question":             "q",
			"answer_style":         "short",
			"followup_instruction": "",
		}},
		{FollowupGenerator, map[string]string{
			"interview_type": "technical",
			"resume_context": "r",
			"question":       "q",
			"answer":         "a",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			out, err := Render(tt.id, tt.values)
			if err != nil {
				t.Fatalf("Render(%q) error = %v", tt.id, err)
			}
			if out == "" {
				t.Errorf("Render(%q) returned empty prompt", tt.id)
			}
		})
	}
}
