// File path: internal/bank/questions.go
package bank

import "github.com/pulse360/questengine/internal/feedback"

// placeholderCompetencies drive placeholder synthesis when every pool is
// exhausted. The cycle order is stable so output stays deterministic.
var placeholderCompetencies = []string{
	"communication",
	"teamwork",
	"reliability",
	"initiative",
	"adaptability",
	"professionalism",
}

// builtinPools holds the curated questions. Document-type pools cover the
// review types Pulse360 ships with; the generic pool per perspective catches
// everything else.
func builtinPools() poolTable {
	return poolTable{
		feedback.PerspectiveManager: {
			Generic: []entry{
				{Text: "How effectively does this person meet agreed deadlines and commitments?", Category: "Reliability"},
				{Text: "How well does this person prioritize their workload when demands compete?", Category: "Planning"},
				{Text: "How effectively does this person communicate progress and risks upward?", Category: "Communication"},
				{Text: "How well does this person respond to constructive feedback?", Category: "Growth"},
				{Text: "What should this person start, stop, or continue doing to be more effective in their role?", Type: "open_ended", Category: "Development"},
				{Text: "Describe a situation where this person exceeded expectations.", Type: "open_ended", Category: "Performance"},
			},
			DocumentTypes: map[string][]entry{
				"performance": {
					{Text: "How consistently does this person deliver work that meets quality standards?", Category: "Quality"},
					{Text: "How effectively does this person translate goals into concrete results?", Category: "Results"},
					{Text: "How well does this person manage their time across competing priorities?", Category: "Planning"},
					{Text: "What measurable impact has this person had on team outcomes this period?", Type: "open_ended", Category: "Results"},
				},
				"leadership": {
					{Text: "How effectively does this person develop the people they work with?", Category: "Mentoring"},
					{Text: "How well does this person set direction when priorities are ambiguous?", Category: "Leadership"},
					{Text: "How effectively does this person delegate ownership rather than tasks?", Category: "Leadership"},
					{Text: "Describe how this person handles disagreement within the team.", Type: "open_ended", Category: "Leadership"},
				},
			},
		},
		feedback.PerspectivePeer: {
			Generic: []entry{
				{Text: "How effectively does this person collaborate with colleagues on shared work?", Category: "Collaboration"},
				{Text: "How willing is this person to share knowledge and help others succeed?", Category: "Teamwork"},
				{Text: "How well does this person listen to viewpoints different from their own?", Category: "Communication"},
				{Text: "How dependable is this person when you need their input to move forward?", Category: "Reliability"},
				{Text: "What is one thing this person could do to be a better teammate?", Type: "open_ended", Category: "Teamwork"},
				{Text: "Describe a recent collaboration with this person that went well, and why.", Type: "open_ended", Category: "Collaboration"},
			},
			DocumentTypes: map[string][]entry{
				"performance": {
					{Text: "How well does this person hold up their side of shared deliverables?", Category: "Results"},
					{Text: "How effectively does this person surface problems early instead of letting them grow?", Category: "Communication"},
				},
				"leadership": {
					{Text: "How effectively does this person influence without formal authority?", Category: "Leadership"},
					{Text: "How well does this person give credit to others for shared successes?", Category: "Teamwork"},
				},
			},
		},
		feedback.PerspectiveDirectReport: {
			Generic: []entry{
				{Text: "How clearly does this person communicate expectations for your work?", Category: "Communication"},
				{Text: "How well does this person support your professional development?", Category: "Mentoring"},
				{Text: "How comfortable do you feel raising concerns or bad news with this person?", Category: "Trust"},
				{Text: "How fairly does this person distribute work and opportunities across the team?", Category: "Fairness"},
				{Text: "What could this person do differently to support you better?", Type: "open_ended", Category: "Development"},
				{Text: "Describe how this person reacts when the team misses a goal.", Type: "open_ended", Category: "Leadership"},
			},
			DocumentTypes: map[string][]entry{
				"leadership": {
					{Text: "How well does this person explain the reasoning behind decisions that affect you?", Category: "Transparency"},
					{Text: "How effectively does this person remove obstacles that block your work?", Category: "Support"},
				},
			},
		},
		feedback.PerspectiveSelf: {
			Generic: []entry{
				{Text: "How effectively do you manage your time and priorities?", Category: "Planning"},
				{Text: "How well do you communicate progress and blockers to the people who depend on you?", Category: "Communication"},
				{Text: "How actively do you seek feedback about your own performance?", Category: "Growth"},
				{Text: "How well do you collaborate with people whose working style differs from yours?", Category: "Collaboration"},
				{Text: "What accomplishment from this period are you most proud of, and why?", Type: "open_ended", Category: "Performance"},
				{Text: "Which skill do you most want to develop next, and what support would help?", Type: "open_ended", Category: "Development"},
			},
			DocumentTypes: map[string][]entry{
				"performance": {
					{Text: "How consistently did you meet the goals set for this period?", Category: "Results"},
					{Text: "Where did you fall short of your own expectations, and what did you learn?", Type: "open_ended", Category: "Growth"},
				},
			},
		},
		feedback.PerspectiveExternal: {
			Generic: []entry{
				{Text: "How responsive is this person when you reach out with a request or question?", Category: "Responsiveness"},
				{Text: "How professionally does this person represent their organization in your interactions?", Category: "Professionalism"},
				{Text: "How well does this person understand your needs before proposing solutions?", Category: "Customer Focus"},
				{Text: "How reliably does this person follow through on commitments made to you?", Category: "Reliability"},
				{Text: "What could this person do to make working with them easier?", Type: "open_ended", Category: "Collaboration"},
				{Text: "Describe the most valuable interaction you have had with this person.", Type: "open_ended", Category: "Customer Focus"},
			},
		},
	}
}

// sharedPool is the last-resort generic pool, usable for any perspective.
func sharedPool() []entry {
	return []entry{
		{Text: "How effectively does this person communicate in writing?", Category: "Communication"},
		{Text: "How effectively does this person communicate in meetings and discussions?", Category: "Communication"},
		{Text: "How well does this person adapt when priorities change unexpectedly?", Category: "Adaptability"},
		{Text: "How constructively does this person handle conflict?", Category: "Conflict Resolution"},
		{Text: "How well does this person balance attention to detail with overall progress?", Category: "Quality"},
		{Text: "How proactively does this person identify problems before they escalate?", Category: "Initiative"},
		{Text: "How open is this person to ideas that challenge their assumptions?", Category: "Openness"},
		{Text: "How effectively does this person contribute to a positive working atmosphere?", Category: "Culture"},
		{Text: "What is this person's greatest strength?", Type: "open_ended", Category: "Strengths"},
		{Text: "What is the most important area for this person to improve?", Type: "open_ended", Category: "Development"},
		{Text: "Is there anything else you would like to share about working with this person?", Type: "open_ended", Category: "General"},
	}
}
