package search

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/kampita/internal/music"
)

func TestStoreSaveAndExpire(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	st := NewStore()
	st.now = func() time.Time { return now }

	saved := st.Save(Session{GuildID: "g1", UserID: "u1", Query: "lofi"})
	if saved.Token == "" {
		t.Fatal("expected a session token")
	}

	got, ok := st.Get(saved.Token)
	if !ok || got.Query != "lofi" {
		t.Fatalf("Get() = %+v, %v", got, ok)
	}

	now = now.Add(SessionTTL + time.Second)
	if _, ok := st.Get(saved.Token); ok {
		t.Fatal("expected expired session to be gone")
	}
}

func TestStoreTokensAreUnique(t *testing.T) {
	st := NewStore()
	a := st.Save(Session{GuildID: "g", UserID: "u"})
	b := st.Save(Session{GuildID: "g", UserID: "u"})
	if a.Token == b.Token {
		t.Fatal("two saves produced the same token")
	}
	if _, ok := st.Get(a.Token); !ok {
		t.Fatal("first session should survive a second save")
	}

	st.Delete(a.Token)
	if _, ok := st.Get(a.Token); ok {
		t.Fatal("deleted session still present")
	}
}

func TestParseCustomID(t *testing.T) {
	tests := []struct {
		in         string
		wantPrefix string
		wantToken  string
		wantOK     bool
	}{
		{MakeCustomID(PlayCustomIDPrefix, "abc"), PlayCustomIDPrefix, "abc", true},
		{MakeCustomID(QueueCustomIDPrefix, "abc"), QueueCustomIDPrefix, "abc", true},
		{"music_search_play:", "", "", false},
		{"music_queue_page:1", "", "", false},
		{"garbage", "", "", false},
	}

	for _, tt := range tests {
		prefix, token, ok := ParseCustomID(tt.in)
		if prefix != tt.wantPrefix || token != tt.wantToken || ok != tt.wantOK {
			t.Errorf("ParseCustomID(%q) = %q, %q, %v", tt.in, prefix, token, ok)
		}
	}
}

func TestPickIndex(t *testing.T) {
	if i, ok := PickIndex([]string{"2"}, 3); !ok || i != 2 {
		t.Errorf("PickIndex(2) = %d, %v", i, ok)
	}
	for _, values := range [][]string{nil, {"3"}, {"-1"}, {"x"}} {
		if _, ok := PickIndex(values, 3); ok {
			t.Errorf("PickIndex(%v) accepted", values)
		}
	}
}

func TestBuildSearchComponentsMenus(t *testing.T) {
	session := Session{
		Token: "tok",
		Query: "rain",
		Results: []music.Track{
			{ID: "a", Name: "Rain", Artist: "X", Duration: 61},
			{ID: "b", Name: "Storm", Artist: "Y"},
		},
	}

	components := BuildSearchComponents(session)
	container, ok := components[0].(discordgo.Container)
	if !ok {
		t.Fatalf("expected container, got %T", components[0])
	}

	var menus []discordgo.SelectMenu
	for _, c := range container.Components {
		if row, ok := c.(discordgo.ActionsRow); ok {
			menus = append(menus, row.Components[0].(discordgo.SelectMenu))
		}
	}
	if len(menus) != 2 {
		t.Fatalf("got %d menus, want 2", len(menus))
	}
	if menus[0].CustomID != "music_search_play:tok" || menus[1].CustomID != "music_search_queue:tok" {
		t.Errorf("unexpected custom ids %q, %q", menus[0].CustomID, menus[1].CustomID)
	}
	if len(menus[0].Options) != 2 || menus[0].Options[1].Value != "1" {
		t.Errorf("unexpected options %+v", menus[0].Options)
	}
}

func TestBuildSearchComponentsEmpty(t *testing.T) {
	components := BuildSearchComponents(Session{Token: "tok", Query: "nothing"})
	container := components[0].(discordgo.Container)
	for _, c := range container.Components {
		if _, ok := c.(discordgo.ActionsRow); ok {
			t.Fatal("empty results should not render a menu")
		}
	}
}
