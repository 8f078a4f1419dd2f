// File path: internal/pipeline/balance.go
package pipeline

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pulse360/questengine/internal/common"
	"github.com/pulse360/questengine/internal/dedup"
	"github.com/pulse360/questengine/internal/feedback"
)

// balance resolves each active perspective to exactly its target count:
// surplus is trimmed keeping the earliest (oracle-sourced) questions, and
// deficits are topped up from the fallback bank. The safety-net dedup runs
// before the top-up so a late removal can never break the quota.
func (g *Generator) balance(
	accepted map[feedback.Perspective][]feedback.Question,
	settings feedback.PerspectiveSettings,
	info feedback.TemplateInfo,
) []feedback.Question {
	logger := common.Logger()
	var out []feedback.Question
	for _, p := range settings.Active() {
		target := settings.Target(p)
		// Escalation tiers merge through separate parses, so rephrasings can
		// slip in between tiers; filter once more before counting.
		questions := dedup.Filter(accepted[p], nil, g.dedup.Strict)

		switch {
		case len(questions) > target:
			logger.Debug("pipeline: trimming surplus", "perspective", string(p), "available", len(questions), "target", target)
			questions = questions[:target]
		case len(questions) < target:
			deficit := target - len(questions)
			avoid := dedup.NewSet()
			for _, q := range questions {
				avoid.Add(q.Text)
			}
			logger.Info("pipeline: filling from bank", "perspective", string(p), "deficit", deficit)
			questions = append(questions, g.bank.Fill(p, info, deficit, avoid)...)
		}
		out = append(out, questions...)
	}
	return out
}

// assignOrder numbers the final list 1..N. The list arrives already
// concatenated in canonical perspective order.
func assignOrder(questions []feedback.Question) {
	for i := range questions {
		questions[i].Order = i + 1
	}
}

// adjustTypeMix relabels question types in place until each perspective's
// rating share matches the requested percentage. Only the type field
// changes: never text, never counts, and re-running on a balanced list is a
// no-op.
func adjustTypeMix(questions []feedback.Question, settings feedback.PerspectiveSettings, pct int) {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	for _, p := range settings.Active() {
		var indexes []int
		for i := range questions {
			if questions[i].Perspective == p {
				indexes = append(indexes, i)
			}
		}
		count := len(indexes)
		if count == 0 {
			continue
		}
		targetRating := (count*pct + 50) / 100
		currentRating := 0
		for _, i := range indexes {
			if questions[i].Type == feedback.TypeRating {
				currentRating++
			}
		}
		switch {
		case currentRating > targetRating:
			// Convert the excess, lowest index first.
			excess := currentRating - targetRating
			for _, i := range indexes {
				if excess == 0 {
					break
				}
				if questions[i].Type == feedback.TypeRating {
					questions[i].Type = feedback.TypeOpenEnded
					excess--
				}
			}
		case currentRating < targetRating:
			deficit := targetRating - currentRating
			for _, i := range indexes {
				if deficit == 0 {
					break
				}
				if questions[i].Type == feedback.TypeOpenEnded {
					questions[i].Type = feedback.TypeRating
					deficit--
				}
			}
		}
	}
}

// sanitizeText strips department and template references out of question
// text: the oracle is told not to name them, but it does not always listen.
func sanitizeText(text string, info feedback.TemplateInfo) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if dept := strings.TrimSpace(info.Department); dept != "" {
		text = replaceFold(text, "the "+dept+" department", "the department")
		text = replaceFold(text, dept+" department", "department")
		text = replaceFold(text, dept, "the department")
	}
	if name := strings.TrimSpace(info.Name); name != "" {
		text = replaceFold(text, name, "this review")
	}
	return strings.TrimSpace(text)
}

// replaceFold is a case-insensitive strings.ReplaceAll. Matching walks the
// text rune by rune: lowercasing can change byte lengths, so byte offsets
// from a lowered copy cannot be used to slice the original.
func replaceFold(text, old, repl string) string {
	if old == "" {
		return text
	}
	var b strings.Builder
	for i := 0; i < len(text); {
		if n, ok := foldPrefixLen(text[i:], old); ok {
			b.WriteString(repl)
			i += n
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		b.WriteString(text[i : i+size])
		i += size
	}
	return b.String()
}

// foldPrefixLen returns the byte length of a case-insensitive match of old at
// the start of s.
func foldPrefixLen(s, old string) (int, bool) {
	i := 0
	for _, or := range old {
		r, size := utf8.DecodeRuneInString(s[i:])
		if size == 0 {
			return 0, false
		}
		if unicode.ToLower(r) != unicode.ToLower(or) {
			return 0, false
		}
		i += size
	}
	return i, true
}
