package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/chxlky/trello-cards/internal/listsync"
	"github.com/chxlky/trello-cards/internal/models"
)

func TestRenderViews(t *testing.T) {
	views := []listsync.View{
		listsync.NewView(models.Snapshot{
			Target:    models.ListTarget{ListName: "Today", BoardID: "b1", Emoji: "📅"},
			BoardID:   "b1",
			BoardName: "Personal",
			State:     models.StateReady,
			Result: &models.SyncResult{
				TargetFound: true,
				CardCount:   1,
				MatchedLists: []models.TrelloList{{
					Name:  "Today",
					Cards: []models.TrelloCard{{ID: "c1", Name: "Write report", URL: "https://trello.com/c/c1", Labels: []models.TrelloLabel{{Color: "red"}, {}}}},
				}},
			},
		}, listsync.Display{ShowListNames: true, ShowEmojis: true, ShowCardCount: true}),
		listsync.NewView(models.Snapshot{
			Target:  models.ListTarget{ListName: "Someday", BoardID: "b1"},
			BoardID: "b1",
			State:   models.StateError,
			Err:     &models.NoMatchError{Pattern: "Someday", BoardID: "b1", Available: []string{"Today", "Backlog"}},
		}, listsync.Display{ShowEmojis: true}),
	}

	var buf bytes.Buffer
	renderViews(&buf, views, true)
	out := buf.String()

	for _, want := range []string{
		"📅 Today (1)",
		"Personal",
		`No lists match pattern "Someday"`,
		"Available lists: Today, Backlog",
		"Write report",
		"red, No Color",
		"https://trello.com/c/c1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderViewsEmpty(t *testing.T) {
	var buf bytes.Buffer
	renderViews(&buf, nil, false)
	if strings.TrimSpace(buf.String()) != "No lists configured" {
		t.Errorf("output = %q", buf.String())
	}
}
