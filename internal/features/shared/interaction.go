package shared

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const maxContentLength = 2000

var AccentColor = 0xC9A0FF

// NoticeComponents wraps content in the titled container every reply uses.
func NoticeComponents(title, content string) []discordgo.MessageComponent {
	divider := true
	spacing := discordgo.SeparatorSpacingSizeSmall

	return []discordgo.MessageComponent{
		discordgo.Container{
			AccentColor: &AccentColor,
			Components: []discordgo.MessageComponent{
				discordgo.TextDisplay{Content: title},
				discordgo.Separator{Divider: &divider, Spacing: &spacing},
				discordgo.TextDisplay{Content: Truncate(content, maxContentLength)},
			},
		},
	}
}

func RespondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	RespondComponents(s, i, NoticeComponents("Notice", content), true)
}

func RespondComponents(s *discordgo.Session, i *discordgo.InteractionCreate, components []discordgo.MessageComponent, ephemeral bool) {
	if s == nil || i == nil {
		return
	}

	flags := discordgo.MessageFlagsIsComponentsV2
	if ephemeral {
		flags |= discordgo.MessageFlagsEphemeral
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Components: components,
			Flags:      flags,
		},
	})
	if err != nil {
		log.WithError(err).Warn("failed to respond to interaction")
	}
}

// UpdateComponents replaces the message the component interaction came from.
func UpdateComponents(s *discordgo.Session, i *discordgo.InteractionCreate, components []discordgo.MessageComponent) {
	if s == nil || i == nil {
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Components: components,
			Flags:      discordgo.MessageFlagsIsComponentsV2,
		},
	})
	if err != nil {
		log.WithError(err).Warn("failed to update interaction message")
	}
}

// DeferUpdate acknowledges a component interaction; the reply is sent later
// with EditComponents.
func DeferUpdate(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if s == nil || i == nil {
		return nil
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
}

func EditComponents(s *discordgo.Session, i *discordgo.InteractionCreate, components []discordgo.MessageComponent) {
	if s == nil || i == nil {
		return
	}
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Components: &components,
	}); err != nil {
		log.WithError(err).Warn("failed to edit interaction message")
	}
}

func DeferEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if s == nil || i == nil {
		return nil
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

func FollowupEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	FollowupComponents(s, i, NoticeComponents("Notice", content), true)
}

func FollowupComponents(s *discordgo.Session, i *discordgo.InteractionCreate, components []discordgo.MessageComponent, ephemeral bool) {
	if s == nil || i == nil {
		return
	}

	flags := discordgo.MessageFlagsIsComponentsV2
	if ephemeral {
		flags |= discordgo.MessageFlagsEphemeral
	}

	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Components: components,
		Flags:      flags,
	})
	if err != nil {
		log.WithError(err).Warn("failed to send followup")
	}
}

func GetOptionString(options []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

func GetOptionInt(options []*discordgo.ApplicationCommandInteractionDataOption, name string) int {
	return int(GetOptionInt64(options, name))
}

func GetOptionInt64(options []*discordgo.ApplicationCommandInteractionDataOption, name string) int64 {
	for _, opt := range options {
		if opt.Name == name {
			return opt.IntValue()
		}
	}
	return 0
}

func HasOption(options []*discordgo.ApplicationCommandInteractionDataOption, name string) bool {
	for _, opt := range options {
		if opt.Name == name {
			return true
		}
	}
	return false
}

func GetInteractionUserID(i *discordgo.InteractionCreate) string {
	if i == nil {
		return ""
	}
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// Truncate shortens text to at most max runes, marking the cut with an
// ellipsis.
func Truncate(text string, max int) string {
	runes := []rune(text)
	if max <= 0 || len(runes) <= max {
		return text
	}
	if max == 1 {
		return string(runes[:1])
	}
	return string(runes[:max-1]) + "…"
}

func EscapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"*", "\\*",
		"_", "\\_",
		"`", "\\`",
		"~", "\\~",
		"|", "\\|",
		">", "\\>",
	)
	return replacer.Replace(text)
}

// FormatDuration renders m:ss, or h:mm:ss past an hour. Unknown lengths
// render as "live".
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "live"
	}

	total := int(d.Seconds())
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatPosition renders an elapsed position; zero is 0:00.
func FormatPosition(d time.Duration) string {
	if d <= 0 {
		return "0:00"
	}
	return FormatDuration(d)
}

func ProgressBar(position, duration time.Duration, size int) string {
	if size <= 0 {
		size = 12
	}
	if duration <= 0 {
		return "○" + strings.Repeat("─", size)
	}
	ratio := float64(position) / float64(duration)
	ratio = max(0.0, min(1.0, ratio))
	marker := min(size, max(0, int(ratio*float64(size))))
	return strings.Repeat("━", marker) + "◉" + strings.Repeat("─", size-marker)
}
