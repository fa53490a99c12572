package queueview

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	shared "github.com/hxnx/kampita/internal/features/shared"
	"github.com/hxnx/kampita/internal/music"
)

const (
	CustomIDPrefix = "music_queue"
	PerPage        = 10

	ActionPage   = "page"
	ActionJump   = "jump"
	ActionRemove = "remove"
)

type PageInfo struct {
	Page       int
	TotalItems int
	TotalPages int
	StartIndex int
	EndIndex   int
}

func Paginate(total, page int) PageInfo {
	totalPages := max(1, (total+PerPage-1)/PerPage)
	page = clamp(page, 1, totalPages)
	start := (page - 1) * PerPage
	return PageInfo{
		Page:       page,
		TotalItems: total,
		TotalPages: totalPages,
		StartIndex: start,
		EndIndex:   min(start+PerPage, total),
	}
}

// BuildQueueComponents renders one page of the queue with paging buttons and
// menus to jump to or remove an entry on that page.
func BuildQueueComponents(snapshot music.Snapshot, page int) ([]discordgo.MessageComponent, PageInfo) {
	queue := snapshot.Queue
	info := Paginate(len(queue), page)

	lines := make([]string, 0, info.EndIndex-info.StartIndex)
	jump := make([]discordgo.SelectMenuOption, 0, info.EndIndex-info.StartIndex)
	remove := make([]discordgo.SelectMenuOption, 0, info.EndIndex-info.StartIndex)
	for i := info.StartIndex; i < info.EndIndex; i++ {
		track := queue[i]
		title := strings.TrimSpace(track.Name)
		if title == "" {
			title = "Unknown title"
		}
		lines = append(lines, fmt.Sprintf("%d. **%s** · %s `%s`",
			i+1,
			shared.EscapeMarkdown(shared.Truncate(title, 80)),
			shared.EscapeMarkdown(shared.Truncate(track.Artist, 60)),
			shared.FormatDuration(track.DurationValue()),
		))

		label := shared.Truncate(fmt.Sprintf("%d. %s", i+1, title), 100)
		jump = append(jump, discordgo.SelectMenuOption{Label: label, Value: strconv.Itoa(i)})
		remove = append(remove, discordgo.SelectMenuOption{Label: label, Value: track.ID})
	}

	listContent := "The queue is empty."
	if len(lines) > 0 {
		listContent = strings.Join(lines, "\n")
	}

	nowPlaying := "Nothing is playing."
	if snapshot.CurrentTrack != nil {
		nowPlaying = fmt.Sprintf("Now playing: **%s** · %s",
			shared.EscapeMarkdown(snapshot.CurrentTrack.Name),
			shared.EscapeMarkdown(snapshot.CurrentTrack.Artist))
	}

	divider := true
	spacing := discordgo.SeparatorSpacingSizeSmall

	components := []discordgo.MessageComponent{
		discordgo.TextDisplay{Content: "📋 **Queue**"},
		discordgo.TextDisplay{Content: nowPlaying},
		discordgo.TextDisplay{Content: fmt.Sprintf("Page **%d/%d** · **%d** tracks", info.Page, info.TotalPages, info.TotalItems)},
		discordgo.Separator{Divider: &divider, Spacing: &spacing},
		discordgo.TextDisplay{Content: listContent},
		discordgo.Separator{Divider: &divider, Spacing: &spacing},
	}

	if len(jump) > 0 {
		components = append(components,
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.SelectMenu{
						MenuType:    discordgo.StringSelectMenu,
						CustomID:    MakeCustomID(ActionJump, info.Page),
						Placeholder: "Jump to track",
						Options:     jump,
					},
				},
			},
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.SelectMenu{
						MenuType:    discordgo.StringSelectMenu,
						CustomID:    MakeCustomID(ActionRemove, info.Page),
						Placeholder: "Remove track",
						Options:     remove,
					},
				},
			},
		)
	}

	components = append(components, discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Style:    discordgo.SecondaryButton,
				Label:    "Previous",
				CustomID: MakeCustomID(ActionPage, info.Page-1),
				Disabled: info.Page <= 1,
			},
			discordgo.Button{
				Style:    discordgo.SecondaryButton,
				Label:    "Next",
				CustomID: MakeCustomID(ActionPage, info.Page+1),
				Disabled: info.Page >= info.TotalPages,
			},
		},
	})

	return []discordgo.MessageComponent{
		discordgo.Container{
			AccentColor: &shared.AccentColor,
			Components:  components,
		},
	}, info
}

func MakeCustomID(action string, page int) string {
	if page < 1 {
		page = 1
	}
	return fmt.Sprintf("%s:%s:%d", CustomIDPrefix, action, page)
}

func ParseCustomID(customID string) (action string, page int, ok bool) {
	parts := strings.Split(customID, ":")
	if len(parts) != 3 || parts[0] != CustomIDPrefix {
		return "", 0, false
	}

	switch parts[1] {
	case ActionPage, ActionJump, ActionRemove:
	default:
		return "", 0, false
	}

	page, err := strconv.Atoi(parts[2])
	if err != nil || page < 1 {
		return "", 0, false
	}
	return parts[1], page, true
}

func clamp(value, minValue, maxValue int) int {
	if value < minValue {
		return minValue
	}
	if value > maxValue {
		return maxValue
	}
	return value
}
