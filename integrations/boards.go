package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"

	"github.com/chxlky/trello-cards/internal/models"
	"go.uber.org/zap"
)

var boardURLPattern = regexp.MustCompile(`https://trello\.com/b/([a-zA-Z0-9]+)(?:/|\b)`)

// ParseBoardID accepts either a bare board ID or a board URL and returns the
// ID. Input that does not look like a board URL is returned unchanged.
func ParseBoardID(input string) string {
	if m := boardURLPattern.FindStringSubmatch(input); m != nil {
		return m[1]
	}
	return input
}

// BoardService wraps the board, list and card endpoints used by the panel.
type BoardService struct {
	client *TrelloClient
}

func NewBoardService(client *TrelloClient) *BoardService {
	return &BoardService{client: client}
}

// FetchOpenLists returns the board's lists with only open cards attached.
func (s *BoardService) FetchOpenLists(ctx context.Context, boardID string, creds models.Credentials) ([]models.TrelloList, error) {
	zap.L().Debug("Fetching board lists", zap.String("boardID", boardID))

	apiURL := s.client.endpoint(fmt.Sprintf("/boards/%s/lists", url.PathEscape(boardID)), creds, url.Values{"cards": {"open"}})

	var lists []models.TrelloList
	if err := s.client.getJSON(ctx, apiURL, &lists); err != nil {
		return nil, fmt.Errorf("failed to fetch lists from board %s: %w", boardID, err)
	}

	zap.L().Debug("Fetched board lists", zap.String("boardID", boardID), zap.Int("lists", len(lists)))
	return lists, nil
}

// FetchAllLists returns every list on the board without cards. It only feeds
// diagnostics when a pattern matches nothing.
func (s *BoardService) FetchAllLists(ctx context.Context, boardID string, creds models.Credentials) ([]models.TrelloList, error) {
	apiURL := s.client.endpoint(fmt.Sprintf("/boards/%s/lists", url.PathEscape(boardID)), creds, nil)

	var lists []models.TrelloList
	if err := s.client.getJSON(ctx, apiURL, &lists); err != nil {
		return nil, fmt.Errorf("failed to fetch available lists from board %s: %w", boardID, err)
	}

	zap.L().Info("Available lists on board", zap.String("boardID", boardID), zap.Strings("lists", models.ListNames(lists)))
	return lists, nil
}

// ValidateBoardAccess confirms the credentials can read the board and
// returns its display name.
func (s *BoardService) ValidateBoardAccess(ctx context.Context, boardID string, creds models.Credentials) (*models.BoardInfo, error) {
	apiURL := s.client.endpoint("/boards/"+url.PathEscape(boardID), creds, url.Values{"fields": {"name,id"}})

	var board models.BoardInfo
	if err := s.client.getJSON(ctx, apiURL, &board); err != nil {
		return nil, &models.AccessError{BoardID: boardID, Err: err}
	}

	zap.L().Info("Validated board access", zap.String("boardID", board.ID), zap.String("name", board.Name))
	return &board, nil
}

// CloseCard archives a card. Closing a card that is already closed may
// surface the API's own error.
func (s *BoardService) CloseCard(ctx context.Context, cardID string, creds models.Credentials) (json.RawMessage, error) {
	zap.L().Info("Closing card", zap.String("cardID", cardID))

	apiURL := s.client.endpoint(fmt.Sprintf("/cards/%s/closed", url.PathEscape(cardID)), creds, nil)

	result, err := s.client.Request(ctx, http.MethodPut, apiURL, map[string]bool{"value": true})
	if err != nil {
		return nil, fmt.Errorf("failed to close card %s: %w", cardID, err)
	}
	return result, nil
}
