package bot

import (
	"strings"
)

type commandKind string

const (
	cmdCheckAll    commandKind = "check"
	cmdCheckFeed   commandKind = "podcast"
	cmdCheckPage   commandKind = "patreon"
	cmdClearLedger commandKind = "clearcache"
	cmdStatus      commandKind = "status"
	cmdAnnounce    commandKind = "announce"
)

type command struct {
	kind  commandKind
	title string
	url   string
}

// parseCommand maps an operator message onto a bot command. Returns
// false for anything that is not one of the fixed literal commands.
func parseCommand(content string) (command, bool) {
	content = strings.TrimSpace(content)

	switch content {
	case "!check":
		return command{kind: cmdCheckAll}, true
	case "!podcast":
		return command{kind: cmdCheckFeed}, true
	case "!patreon":
		return command{kind: cmdCheckPage}, true
	case "!clearcache":
		return command{kind: cmdClearLedger}, true
	case "!status":
		return command{kind: cmdStatus}, true
	}

	if rest, ok := strings.CutPrefix(content, "!announce "); ok {
		title, url, _ := strings.Cut(rest, "|")
		title = strings.TrimSpace(title)
		url = strings.TrimSpace(url)
		if title == "" {
			return command{}, false
		}
		return command{kind: cmdAnnounce, title: title, url: url}, true
	}

	return command{}, false
}
