package listsync

import (
	"fmt"
	"strings"

	"github.com/chxlky/trello-cards/internal/models"
)

const maxLabelName = 8

// Display holds the panel label toggles.
type Display struct {
	ShowCardCount bool
	ShowListNames bool
	ShowEmojis    bool
}

// Label renders the panel button text for a target. cardCount is -1 when
// no count is known yet.
func Label(target models.ListTarget, display Display, cardCount int) string {
	emoji := target.Emoji
	if emoji == "" {
		emoji = models.DefaultEmoji
	}
	if !display.ShowEmojis && !display.ShowListNames {
		return emoji
	}

	var parts []string
	if display.ShowEmojis {
		parts = append(parts, emoji)
	}
	if display.ShowListNames {
		name := []rune(target.ListName)
		if len(name) > maxLabelName {
			parts = append(parts, string(name[:maxLabelName])+"…")
		} else {
			parts = append(parts, target.ListName)
		}
	}

	text := strings.Join(parts, " ")
	if display.ShowCardCount && cardCount >= 0 {
		text += fmt.Sprintf(" (%d)", cardCount)
	}
	return text
}
