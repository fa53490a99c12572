package search

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	shared "github.com/hxnx/kampita/internal/features/shared"
	"github.com/hxnx/kampita/internal/music"
)

const (
	MaxResults       = 10
	MaxSelectOptions = 25
	SessionTTL       = 5 * time.Minute

	PlayCustomIDPrefix  = "music_search_play"
	QueueCustomIDPrefix = "music_search_queue"
)

type Session struct {
	Token     string
	GuildID   string
	UserID    string
	Query     string
	Results   []music.Track
	CreatedAt time.Time
}

// Store keeps search results between the search reply and the user's pick.
// Sessions are addressed by a random token carried in the select menu's
// custom ID.
type Store struct {
	mu   sync.Mutex
	data map[string]Session
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{data: make(map[string]Session), now: time.Now}
}

// Save stores the session under a fresh token and returns it.
func (st *Store) Save(s Session) Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.pruneLocked()
	s.Token = uuid.NewString()
	s.CreatedAt = st.now()
	st.data[s.Token] = s
	return s
}

func (st *Store) Get(token string) (Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.data[token]
	if !ok {
		return Session{}, false
	}
	if st.now().Sub(s.CreatedAt) > SessionTTL {
		delete(st.data, token)
		return Session{}, false
	}
	return s, true
}

func (st *Store) Delete(token string) {
	st.mu.Lock()
	delete(st.data, token)
	st.mu.Unlock()
}

func (st *Store) pruneLocked() {
	now := st.now()
	for token, s := range st.data {
		if now.Sub(s.CreatedAt) > SessionTTL {
			delete(st.data, token)
		}
	}
}

func MakeCustomID(prefix, token string) string {
	return prefix + ":" + token
}

// ParseCustomID splits a search select custom ID into its action prefix and
// session token.
func ParseCustomID(customID string) (prefix, token string, ok bool) {
	prefix, token, found := strings.Cut(customID, ":")
	if !found || token == "" {
		return "", "", false
	}
	if prefix != PlayCustomIDPrefix && prefix != QueueCustomIDPrefix {
		return "", "", false
	}
	return prefix, token, true
}

// PickIndex validates a select value against the session's result count.
func PickIndex(values []string, results int) (int, bool) {
	if len(values) == 0 {
		return 0, false
	}
	index, err := strconv.Atoi(values[0])
	if err != nil || index < 0 || index >= results {
		return 0, false
	}
	return index, true
}

func BuildSearchComponents(session Session) []discordgo.MessageComponent {
	divider := true
	spacing := discordgo.SeparatorSpacingSizeSmall

	query := strings.TrimSpace(session.Query)
	if query == "" {
		query = "unknown"
	}

	options := make([]discordgo.SelectMenuOption, 0, min(len(session.Results), MaxSelectOptions))
	for i, track := range session.Results {
		if i >= MaxSelectOptions {
			break
		}
		options = append(options, discordgo.SelectMenuOption{
			Label:       shared.Truncate(track.Name, 100),
			Description: shared.Truncate(formatResultDescription(track), 100),
			Value:       strconv.Itoa(i),
		})
	}

	components := []discordgo.MessageComponent{
		discordgo.TextDisplay{Content: "🔎 **Search results**"},
		discordgo.TextDisplay{Content: fmt.Sprintf("Query: **%s**", shared.EscapeMarkdown(query))},
		discordgo.TextDisplay{Content: buildResultSummary(session.Results)},
	}

	if len(options) > 0 {
		components = append(components,
			discordgo.Separator{Divider: &divider, Spacing: &spacing},
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.SelectMenu{
						MenuType:    discordgo.StringSelectMenu,
						CustomID:    MakeCustomID(PlayCustomIDPrefix, session.Token),
						Placeholder: "Play now",
						Options:     options,
					},
				},
			},
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.SelectMenu{
						MenuType:    discordgo.StringSelectMenu,
						CustomID:    MakeCustomID(QueueCustomIDPrefix, session.Token),
						Placeholder: "Add to queue",
						Options:     options,
					},
				},
			},
		)
	}

	return []discordgo.MessageComponent{
		discordgo.Container{
			AccentColor: &shared.AccentColor,
			Components:  components,
		},
	}
}

func buildResultSummary(results []music.Track) string {
	lines := make([]string, 0, len(results))
	for i, track := range results {
		if i >= MaxResults {
			break
		}
		lines = append(lines, fmt.Sprintf(
			"%d. **%s** · %s `%s`",
			i+1,
			shared.EscapeMarkdown(shared.Truncate(track.Name, 80)),
			shared.EscapeMarkdown(shared.Truncate(track.Artist, 60)),
			shared.FormatDuration(track.DurationValue()),
		))
	}
	if len(lines) == 0 {
		return "No results."
	}
	return strings.Join(lines, "\n")
}

func formatResultDescription(track music.Track) string {
	return fmt.Sprintf("%s • %s", track.Artist, shared.FormatDuration(track.DurationValue()))
}
