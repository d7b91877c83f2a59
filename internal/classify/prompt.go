package classify

import (
	"strings"

	"github.com/theirongolddev/mfocus/internal/model"
)

const promptTemplate = `You are categorizing the currently active window during work or meeting time.

Categorize it as **exactly one** of these options:
- 'meeting'      -> video calls, online meetings, conferencing apps (Zoom, Teams, Meet, etc.)
- 'work_related' -> any productivity, coding, documents, work email, work browser tabs, IDEs, code editors
- 'distraction'  -> entertainment, social media, videos, games, shopping, non-work browsing
- 'browser'      -> chrome, firefox, safari, edge, brave, opera, vivaldi
- 'other'        -> everything else (system windows, idle, unknown, etc.)

**Important Rules:**
- Code editors (VS Code, IntelliJ, etc.) and development files should ALWAYS be 'work_related'
- The word "meeting" in a filename or project name does NOT make it a meeting app
- Only actual video conferencing/meeting apps should be 'meeting'

Strong indicators for 'meeting':
- App names: zoom, teams, meet, webex, slack huddle, discord (when in call), facetime, skype, google meet, zoom.us
- Window titles with meeting context: "Zoom Meeting", "Microsoft Teams meeting", "Join Meeting", "Video Call with", "Conference Room"

Examples:
App: Code               Title: FocusTimeLine.tsx - meeting-focus-tracker   -> work_related
App: Visual Studio Code Title: my-project/src/components/Meeting.js       -> work_related
App: zoom.us            Title: Zoom Meeting with Team X                   -> meeting
App: Teams              Title: Microsoft Teams | Daily Standup            -> meeting
App: Google Chrome      Title: UX on Sean - Trello                        -> work_related
App: chrome             Title: YouTube - funny cat video                  -> distraction

App name: {{app}}
Window title: {{title}}

Respond **only** with one lowercase word: {{labels}}.
No explanation, no quotes, no extra text.
`

// BuildPrompt renders the oracle prompt for one app/title pair.
func BuildPrompt(app, title string) string {
	labels := make([]string, len(model.Categories))
	for i, c := range model.Categories {
		labels[i] = string(c)
	}
	r := strings.NewReplacer(
		"{{app}}", app,
		"{{title}}", title,
		"{{labels}}", strings.Join(labels, ", "),
	)
	return r.Replace(promptTemplate)
}

// ParseResponse maps raw oracle text to a category. Only an exact label
// match after trimming and lowercasing is accepted.
func ParseResponse(raw string) (model.Category, bool) {
	return model.ParseCategory(strings.ToLower(strings.TrimSpace(raw)))
}
