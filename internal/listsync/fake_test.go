package listsync

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/chxlky/trello-cards/internal/models"
)

var testCreds = models.Credentials{APIKey: "key", Token: "token"}

// fakeBoards is an in-memory Boards implementation.
type fakeBoards struct {
	mu sync.Mutex

	lists    map[string][]models.TrelloList
	names    map[string]string
	openErr  error
	allErr   error
	openHook func(ctx context.Context, boardID string) ([]models.TrelloList, error)

	openCalls  []string
	allCalls   []string
	boardCalls []string
	closed     map[string]bool
}

func newFakeBoards() *fakeBoards {
	return &fakeBoards{
		lists:  map[string][]models.TrelloList{},
		names:  map[string]string{},
		closed: map[string]bool{},
	}
}

func (f *fakeBoards) FetchOpenLists(ctx context.Context, boardID string, creds models.Credentials) ([]models.TrelloList, error) {
	f.mu.Lock()
	f.openCalls = append(f.openCalls, boardID)
	hook, err, lists := f.openHook, f.openErr, f.lists[boardID]
	f.mu.Unlock()

	if hook != nil {
		return hook(ctx, boardID)
	}
	if err != nil {
		return nil, err
	}
	return lists, nil
}

func (f *fakeBoards) FetchAllLists(ctx context.Context, boardID string, creds models.Credentials) ([]models.TrelloList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.allCalls = append(f.allCalls, boardID)
	if f.allErr != nil {
		return nil, f.allErr
	}
	return f.lists[boardID], nil
}

func (f *fakeBoards) ValidateBoardAccess(ctx context.Context, boardID string, creds models.Credentials) (*models.BoardInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.boardCalls = append(f.boardCalls, boardID)
	name, ok := f.names[boardID]
	if !ok {
		return nil, &models.AccessError{BoardID: boardID, Err: &models.TransportError{Status: 404}}
	}
	return &models.BoardInfo{ID: boardID, Name: name}, nil
}

func (f *fakeBoards) CloseCard(ctx context.Context, cardID string, creds models.Credentials) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed[cardID] {
		return nil, &models.TransportError{Method: "PUT", Status: 400, Message: "card is already closed"}
	}
	f.closed[cardID] = true
	for boardID, lists := range f.lists {
		for i := range lists {
			kept := lists[i].Cards[:0:0]
			for _, c := range lists[i].Cards {
				if c.ID != cardID {
					kept = append(kept, c)
				}
			}
			lists[i].Cards = kept
		}
		f.lists[boardID] = lists
	}
	return json.RawMessage(`{"id":"` + cardID + `","closed":true}`), nil
}

func (f *fakeBoards) calls() (open, all int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.openCalls), len(f.allCalls)
}

func cards(ids ...string) []models.TrelloCard {
	out := make([]models.TrelloCard, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.TrelloCard{ID: id, Name: "Card " + id, URL: "https://trello.com/c/" + id})
	}
	return out
}

// todayBacklogBoard returns a fake with board "b1" holding Today (2 cards)
// and Backlog (5 cards).
func todayBacklogBoard() *fakeBoards {
	f := newFakeBoards()
	f.names["b1"] = "Personal"
	f.lists["b1"] = []models.TrelloList{
		{ID: "l1", Name: "Today", Cards: cards("t1", "t2")},
		{ID: "l2", Name: "Backlog", Cards: cards("b1", "b2", "b3", "b4", "b5")},
	}
	return f
}
