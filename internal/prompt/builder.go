// File path: internal/prompt/builder.go
package prompt

import (
	"fmt"
	"strings"

	"github.com/pulse360/questengine/internal/feedback"
)

// SystemRole is the fixed system message sent with every generation request.
const SystemRole = "You are an HR assessment designer. You produce 360-degree feedback questions in the exact format requested and never add commentary."

// SectionHeader returns the perspective header the oracle is instructed to
// emit and the parser scans for, e.g. "DIRECT REPORT ASSESSMENT".
func SectionHeader(p feedback.Perspective) string {
	return strings.ToUpper(p.DisplayName()) + " ASSESSMENT"
}

// RatingQuota derives the rating-question share of a perspective's count from
// the global mix percentage, rounding up.
func RatingQuota(count, pct int) int {
	if count <= 0 {
		return 0
	}
	if pct <= 0 {
		return 0
	}
	if pct >= 100 {
		return count
	}
	return (count*pct + 99) / 100
}

// Build assembles the primary generation prompt. The instructions are
// deliberately rigid: the parser downstream copes with deviation, but the
// closer the oracle stays to this shape the fewer escalation tiers run.
func Build(info feedback.TemplateInfo, settings feedback.PerspectiveSettings) string {
	var b strings.Builder
	b.WriteString("Generate assessment questions for a ")
	b.WriteString(describeTemplate(info))
	b.WriteString(".\n\n")
	writeContext(&b, info)
	b.WriteString("Produce questions for each perspective below, under these exact headers:\n\n")
	for _, p := range settings.Active() {
		count := settings.Target(p)
		rating := RatingQuota(count, info.RatingPercentage)
		openEnded := count - rating
		fmt.Fprintf(&b, "=== %s ===\n", SectionHeader(p))
		fmt.Fprintf(&b, "Provide exactly %d questions: %d rating questions and %d open-ended questions.\n\n", count, rating, openEnded)
	}
	b.WriteString(formatInstructions())
	return b.String()
}

// BuildMissing assembles the tier-1 prompt: only the perspectives that came
// back empty, with role-specific framing for external stakeholders who are
// otherwise underserved by generic phrasing.
func BuildMissing(info feedback.TemplateInfo, settings feedback.PerspectiveSettings, missing []feedback.Perspective) string {
	var b strings.Builder
	b.WriteString("Generate assessment questions for a ")
	b.WriteString(describeTemplate(info))
	b.WriteString(".\n\n")
	writeContext(&b, info)
	b.WriteString("Only produce questions for the perspectives listed below. Do not produce any other perspective.\n\n")
	for _, p := range missing {
		count := settings.Target(p)
		rating := RatingQuota(count, info.RatingPercentage)
		fmt.Fprintf(&b, "=== %s ===\n", SectionHeader(p))
		fmt.Fprintf(&b, "Provide exactly %d questions: %d rating and %d open-ended.\n", count, rating, count-rating)
		if p == feedback.PerspectiveExternal {
			b.WriteString("These raters are external stakeholders (clients, partners, vendors). Frame every question around collaboration, responsiveness, and professionalism as experienced from outside the organization.\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(formatInstructions())
	return b.String()
}

// BuildDeficit assembles the tier-2 prompt: top-up requests for perspectives
// that parsed some questions but fewer than their target.
func BuildDeficit(info feedback.TemplateInfo, needs map[feedback.Perspective]int) string {
	var b strings.Builder
	b.WriteString("Generate additional assessment questions for a ")
	b.WriteString(describeTemplate(info))
	b.WriteString(".\n\n")
	writeContext(&b, info)
	b.WriteString("Earlier questions already exist for these perspectives; produce only the additional counts below and make them distinct from typical phrasings.\n\n")
	for _, p := range feedback.CanonicalOrder {
		need, ok := needs[p]
		if !ok || need <= 0 {
			continue
		}
		fmt.Fprintf(&b, "=== %s ===\n", SectionHeader(p))
		fmt.Fprintf(&b, "Provide exactly %d additional questions.\n\n", need)
	}
	b.WriteString(formatInstructions())
	return b.String()
}

func describeTemplate(info feedback.TemplateInfo) string {
	docType := strings.TrimSpace(info.DocumentType)
	if docType == "" {
		docType = "360-degree feedback"
	}
	return fmt.Sprintf("%s review template", docType)
}

func writeContext(b *strings.Builder, info feedback.TemplateInfo) {
	var parts []string
	if purpose := strings.TrimSpace(info.Purpose); purpose != "" {
		parts = append(parts, fmt.Sprintf("The review's purpose: %s.", purpose))
	}
	if dept := strings.TrimSpace(info.Department); dept != "" {
		parts = append(parts, fmt.Sprintf("The subject works in the %s department; tailor competencies accordingly.", dept))
	}
	if desc := strings.TrimSpace(info.Description); desc != "" {
		parts = append(parts, fmt.Sprintf("Additional context: %s.", desc))
	}
	if len(parts) == 0 {
		return
	}
	b.WriteString(strings.Join(parts, " "))
	b.WriteString(" Never mention the department name or the template name inside the question text itself.\n\n")
}

func formatInstructions() string {
	return strings.Join([]string{
		"Format every question as exactly three lines:",
		"Question: <question text>",
		"Type: <rating or open_ended>",
		"Category: <one or two word competency>",
		"",
		"Rating questions must be answerable on a 1-5 scale. Do not number questions, do not use markdown emphasis, and do not write any prose outside this format.",
	}, "\n")
}
