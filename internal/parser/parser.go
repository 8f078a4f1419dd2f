// File path: internal/parser/parser.go
package parser

import (
	"strings"
	"unicode"

	"github.com/pulse360/questengine/internal/common"
	"github.com/pulse360/questengine/internal/feedback"
)

// Candidate is a question extracted from raw oracle text, before
// deduplication and balancing.
type Candidate struct {
	Text     string
	Type     feedback.QuestionType
	Category string
}

// Parse converts raw oracle text into per-perspective candidate lists. The
// oracle may follow the requested format perfectly, partially, or not at
// all; Parse degrades through three structural tiers and never fails. A
// hopeless response simply yields an empty map.
//
// Tier 1: perspective headers with Question/Type/Category triples.
// Tier 2: bare "Question:" lines (typed rating, category General).
// Tier 3: no structure at all, theme extraction over prose and list items.
func Parse(raw string, settings feedback.PerspectiveSettings) map[feedback.Perspective][]Candidate {
	logger := common.Logger()
	result := make(map[feedback.Perspective][]Candidate)
	lines := strings.Split(raw, "\n")

	blocks := splitSections(lines)
	if len(blocks) > 0 {
		for perspective, blockLines := range blocks {
			candidates := extractTriples(blockLines)
			if len(candidates) == 0 {
				candidates = scanBareQuestions(blockLines)
			}
			if len(candidates) > 0 {
				result[perspective] = append(result[perspective], candidates...)
			}
		}
		if len(result) > 0 {
			return result
		}
		logger.Debug("parser: section headers present but no questions extracted")
	}

	// No usable sections. Try bare Question: lines across the whole text;
	// without headers they carry no role, so every active perspective
	// receives the same candidates and the balancer trims later.
	if bare := scanBareQuestions(lines); len(bare) > 0 {
		logger.Debug("parser: sectionless response, using bare question lines", "count", len(bare))
		for _, p := range settings.Active() {
			result[p] = append(result[p], bare...)
		}
		return result
	}

	themes := extractThemes(lines)
	if len(themes) == 0 {
		logger.Warn("parser: response contained no recognizable structure")
		return result
	}
	logger.Debug("parser: synthesizing questions from themes", "themes", len(themes))
	for _, p := range settings.Active() {
		for i, theme := range themes {
			result[p] = append(result[p], Candidate{
				Text:     "How effectively does this person demonstrate " + theme + "?",
				Type:     feedback.TypeRating,
				Category: titleCase(theme),
			})
			if i%2 == 1 {
				result[p] = append(result[p], Candidate{
					Text:     "What specific examples have you observed of this person's " + theme + "?",
					Type:     feedback.TypeOpenEnded,
					Category: titleCase(theme),
				})
			}
		}
	}
	return result
}

// splitSections walks the response line by line, tagging each block with the
// perspective named by the most recent header. Prose before the first header
// is dropped.
func splitSections(lines []string) map[feedback.Perspective][]string {
	blocks := make(map[feedback.Perspective][]string)
	var current feedback.Perspective
	seen := false
	for _, line := range lines {
		if p, ok := detectHeader(line); ok {
			current = p
			seen = true
			if _, exists := blocks[current]; !exists {
				blocks[current] = nil
			}
			continue
		}
		if !seen {
			continue
		}
		blocks[current] = append(blocks[current], line)
	}
	return blocks
}

// headerLabels maps normalized header text fragments to perspectives. The
// external label is matched first because "EXTERNAL STAKEHOLDER ASSESSMENT"
// would otherwise never win over shorter fragments.
var headerLabels = []struct {
	fragment    string
	perspective feedback.Perspective
}{
	{"EXTERNAL STAKEHOLDER ASSESSMENT", feedback.PerspectiveExternal},
	{"EXTERNAL ASSESSMENT", feedback.PerspectiveExternal},
	{"DIRECT REPORT ASSESSMENT", feedback.PerspectiveDirectReport},
	{"MANAGER ASSESSMENT", feedback.PerspectiveManager},
	{"PEER ASSESSMENT", feedback.PerspectivePeer},
	{"SELF ASSESSMENT", feedback.PerspectiveSelf},
}

// detectHeader reports whether a line is a perspective section header,
// tolerating decorative markers (===, ###, **, ---) around the label.
func detectHeader(line string) (feedback.Perspective, bool) {
	stripped := strings.TrimFunc(line, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune("=#*-_:>[]", r)
	})
	if stripped == "" || len(stripped) > 64 {
		return "", false
	}
	normalized := strings.ToUpper(strings.Join(strings.Fields(stripped), " "))
	for _, label := range headerLabels {
		if strings.Contains(normalized, label.fragment) {
			return label.perspective, true
		}
	}
	return "", false
}

type tripleState int

const (
	stateSeekQuestion tripleState = iota
	stateHaveQuestion
)

// extractTriples scans a section block for repeating Question/Type/Category
// groups. Type and Category are optional per group; a new Question line or
// the end of the block closes the open group.
func extractTriples(lines []string) []Candidate {
	var out []Candidate
	var current *Candidate
	state := stateSeekQuestion

	flush := func() {
		if current == nil {
			return
		}
		if text := strings.TrimSpace(current.Text); text != "" {
			candidate := *current
			candidate.Text = StripMarkdown(text)
			if candidate.Type == "" {
				candidate.Type = feedback.TypeRating
			}
			if strings.TrimSpace(candidate.Category) == "" {
				candidate.Category = feedback.DefaultCategory
			} else {
				candidate.Category = StripMarkdown(candidate.Category)
			}
			out = append(out, candidate)
		}
		current = nil
	}

	for _, line := range lines {
		if value, ok := fieldValue(line, "question"); ok {
			flush()
			current = &Candidate{Text: value}
			state = stateHaveQuestion
			continue
		}
		if state != stateHaveQuestion || current == nil {
			continue
		}
		if value, ok := fieldValue(line, "type"); ok {
			if parsed, ok := feedback.ParseQuestionType(value); ok {
				current.Type = parsed
			}
			continue
		}
		if value, ok := fieldValue(line, "category"); ok {
			current.Category = value
			continue
		}
		// Continuation of a wrapped question line.
		if trimmed := strings.TrimSpace(line); trimmed != "" && current.Type == "" && current.Category == "" && !strings.Contains(trimmed, ":") {
			current.Text += " " + trimmed
		}
	}
	flush()
	return out
}

// fieldValue matches "Label: value" lines, tolerating list markers, numbers
// and markdown emphasis before the label.
func fieldValue(line, label string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimLeft(trimmed, "-*>• \t")
	trimmed = trimListNumber(trimmed)
	trimmed = strings.TrimLeft(trimmed, "*_ ")
	idx := strings.Index(trimmed, ":")
	if idx <= 0 {
		return "", false
	}
	key := strings.ToLower(strings.TrimSpace(strings.Trim(trimmed[:idx], "*_")))
	if key != label {
		return "", false
	}
	return strings.TrimSpace(trimmed[idx+1:]), true
}

// scanBareQuestions collects "Question: ..." lines ignoring any grouping,
// defaulting the type and category per the degraded-format rules.
func scanBareQuestions(lines []string) []Candidate {
	var out []Candidate
	for _, line := range lines {
		value, ok := fieldValue(line, "question")
		if !ok {
			continue
		}
		text := StripMarkdown(value)
		if text == "" {
			continue
		}
		out = append(out, Candidate{Text: text, Type: feedback.TypeRating, Category: feedback.DefaultCategory})
	}
	return out
}

// themeKeywords are the competency areas recognized during unstructured
// theme extraction.
var themeKeywords = []string{
	"leadership",
	"communication",
	"teamwork",
	"collaboration",
	"problem solving",
	"decision making",
	"adaptability",
	"innovation",
	"accountability",
	"mentoring",
	"planning",
	"customer focus",
}

const maxThemes = 5

// extractThemes mines prose for list items and competency keywords. List
// items ending in a question mark are treated directly as themes; otherwise
// sentences mentioning a known competency contribute that competency.
func extractThemes(lines []string) []string {
	var themes []string
	seen := make(map[string]struct{})
	add := func(theme string) {
		theme = strings.ToLower(strings.TrimSpace(theme))
		if theme == "" {
			return
		}
		if _, dup := seen[theme]; dup {
			return
		}
		seen[theme] = struct{}{}
		themes = append(themes, theme)
	}

	for _, line := range lines {
		if len(themes) >= maxThemes {
			break
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(trimmed)
		if isListItem(trimmed) {
			item := StripMarkdown(trimListNumber(strings.TrimLeft(trimmed, "-*>• \t")))
			// Short list items read like competency labels.
			if item != "" && len(strings.Fields(item)) <= 4 && !strings.HasSuffix(item, "?") {
				add(item)
				continue
			}
		}
		for _, keyword := range themeKeywords {
			if strings.Contains(lower, keyword) {
				add(keyword)
			}
		}
	}
	return themes
}

func isListItem(line string) bool {
	if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") || strings.HasPrefix(line, "•") {
		return true
	}
	return trimListNumber(line) != line
}

// trimListNumber removes a leading "3." / "12)" list marker.
func trimListNumber(line string) string {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(line) {
		return line
	}
	if line[i] != '.' && line[i] != ')' {
		return line
	}
	return strings.TrimSpace(line[i+1:])
}

// StripMarkdown removes emphasis, heading and list markers the oracle tends
// to decorate its output with.
func StripMarkdown(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimLeft(text, "#>• \t")
	text = trimListNumber(strings.TrimLeft(text, "-* \t"))
	replacer := strings.NewReplacer("**", "", "__", "", "`", "")
	text = replacer.Replace(text)
	text = strings.Trim(text, "*_")
	return strings.TrimSpace(text)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
