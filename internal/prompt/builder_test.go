// File path: internal/prompt/builder_test.go
package prompt

import (
	"strings"
	"testing"

	"github.com/pulse360/questengine/internal/feedback"
)

func TestRatingQuota(t *testing.T) {
	cases := []struct {
		count, pct, want int
	}{
		{10, 70, 7},
		{5, 70, 4},   // 3.5 rounds up
		{3, 50, 2},   // 1.5 rounds up
		{10, 0, 0},
		{10, 100, 10},
		{10, 120, 10},
		{0, 70, 0},
		{7, 33, 3}, // 2.31 rounds up
	}
	for _, tc := range cases {
		if got := RatingQuota(tc.count, tc.pct); got != tc.want {
			t.Fatalf("RatingQuota(%d, %d) = %d, want %d", tc.count, tc.pct, got, tc.want)
		}
	}
}

func TestSectionHeader(t *testing.T) {
	if got := SectionHeader(feedback.PerspectiveDirectReport); got != "DIRECT REPORT ASSESSMENT" {
		t.Fatalf("SectionHeader = %q", got)
	}
	if got := SectionHeader(feedback.PerspectiveExternal); got != "EXTERNAL STAKEHOLDER ASSESSMENT" {
		t.Fatalf("SectionHeader = %q", got)
	}
}

func TestBuildContainsAllActiveSections(t *testing.T) {
	info := feedback.TemplateInfo{
		DocumentType:     "performance",
		Name:             "Q3 Engineering Review",
		Department:       "Engineering",
		RatingPercentage: 70,
	}
	settings := feedback.PerspectiveSettings{
		feedback.PerspectiveManager: {Enabled: true, QuestionCount: 10},
		feedback.PerspectivePeer:    {Enabled: true, QuestionCount: 5},
		feedback.PerspectiveSelf:    {Enabled: false, QuestionCount: 5},
	}
	text := Build(info, settings)

	if !strings.Contains(text, "MANAGER ASSESSMENT") {
		t.Fatalf("prompt missing manager header:\n%s", text)
	}
	if !strings.Contains(text, "PEER ASSESSMENT") {
		t.Fatalf("prompt missing peer header:\n%s", text)
	}
	if strings.Contains(text, "SELF ASSESSMENT") {
		t.Fatalf("disabled perspective leaked into prompt:\n%s", text)
	}
	if !strings.Contains(text, "exactly 10 questions: 7 rating questions and 3 open-ended questions") {
		t.Fatalf("manager counts missing:\n%s", text)
	}
	if !strings.Contains(text, "exactly 5 questions: 4 rating questions and 1 open-ended questions") {
		t.Fatalf("peer counts missing:\n%s", text)
	}
	if !strings.Contains(text, "Never mention the department name or the template name") {
		t.Fatalf("context guard missing:\n%s", text)
	}
	if !strings.Contains(text, "Question: <question text>") {
		t.Fatalf("format instructions missing:\n%s", text)
	}
}

func TestBuildWithoutContext(t *testing.T) {
	text := Build(feedback.TemplateInfo{}, feedback.PerspectiveSettings{
		feedback.PerspectivePeer: {Enabled: true, QuestionCount: 3},
	})
	if !strings.Contains(text, "360-degree feedback review template") {
		t.Fatalf("expected default document type:\n%s", text)
	}
	if strings.Contains(text, "Never mention") {
		t.Fatalf("context guard should be omitted without context:\n%s", text)
	}
}

func TestBuildMissingFramesExternal(t *testing.T) {
	info := feedback.TemplateInfo{RatingPercentage: 50}
	settings := feedback.PerspectiveSettings{
		feedback.PerspectiveManager:  {Enabled: true, QuestionCount: 5},
		feedback.PerspectiveExternal: {Enabled: true, QuestionCount: 4},
	}
	text := BuildMissing(info, settings, []feedback.Perspective{feedback.PerspectiveExternal})

	if strings.Contains(text, "MANAGER ASSESSMENT") {
		t.Fatalf("tier-1 prompt must only name missing perspectives:\n%s", text)
	}
	if !strings.Contains(text, "EXTERNAL STAKEHOLDER ASSESSMENT") {
		t.Fatalf("missing external header:\n%s", text)
	}
	if !strings.Contains(text, "external stakeholders (clients, partners, vendors)") {
		t.Fatalf("external framing missing:\n%s", text)
	}
	if !strings.Contains(text, "Do not produce any other perspective.") {
		t.Fatalf("exclusivity instruction missing:\n%s", text)
	}
}

func TestBuildDeficit(t *testing.T) {
	info := feedback.TemplateInfo{DocumentType: "leadership"}
	text := BuildDeficit(info, map[feedback.Perspective]int{
		feedback.PerspectivePeer: 3,
		feedback.PerspectiveSelf: 0,
	})
	if !strings.Contains(text, "PEER ASSESSMENT") {
		t.Fatalf("deficit prompt missing peer header:\n%s", text)
	}
	if !strings.Contains(text, "Provide exactly 3 additional questions.") {
		t.Fatalf("deficit count missing:\n%s", text)
	}
	if strings.Contains(text, "SELF ASSESSMENT") {
		t.Fatalf("zero-need perspective leaked into deficit prompt:\n%s", text)
	}
}
