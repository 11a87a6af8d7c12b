// Package listsync keeps one configured list target in sync with its Trello
// board and exposes the result to the rendering layer.
package listsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/chxlky/trello-cards/integrations"
	"github.com/chxlky/trello-cards/internal/glob"
	"github.com/chxlky/trello-cards/internal/models"
	"go.uber.org/zap"
)

// Boards is the subset of the Trello board service a controller needs.
type Boards interface {
	FetchOpenLists(ctx context.Context, boardID string, creds models.Credentials) ([]models.TrelloList, error)
	FetchAllLists(ctx context.Context, boardID string, creds models.Credentials) ([]models.TrelloList, error)
	ValidateBoardAccess(ctx context.Context, boardID string, creds models.Credentials) (*models.BoardInfo, error)
	CloseCard(ctx context.Context, cardID string, creds models.Credentials) (json.RawMessage, error)
}

// Controller owns the state of a single ListTarget. State moves
// Idle -> Loading -> Ready|Error and back to Loading on every refresh.
//
// A failed refresh discards the previous result. Overlapping refreshes are
// fenced by a sequence number so only the newest one is applied.
type Controller struct {
	boards Boards
	creds  models.Credentials
	target models.ListTarget

	mu        sync.Mutex
	seq       uint64
	state     models.State
	result    *models.SyncResult
	err       error
	boardName string
	nameTried bool
	onChange  func(models.Snapshot)
}

func NewController(boards Boards, creds models.Credentials, target models.ListTarget) *Controller {
	return &Controller{
		boards: boards,
		creds:  creds,
		target: target,
		state:  models.StateIdle,
	}
}

// OnChange registers fn to receive a snapshot after every state transition.
func (c *Controller) OnChange(fn func(models.Snapshot)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

func (c *Controller) Target() models.ListTarget {
	return c.target
}

// BoardID is the target's board ID with any board URL reduced to its ID.
func (c *Controller) BoardID() string {
	return integrations.ParseBoardID(c.target.BoardID)
}

func (c *Controller) Snapshot() models.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() models.Snapshot {
	snap := models.Snapshot{
		Target:    c.target,
		BoardID:   c.BoardID(),
		BoardName: c.boardName,
		State:     c.state,
		Err:       c.err,
	}
	if c.result != nil {
		r := *c.result
		snap.Result = &r
	}
	return snap
}

// checkConfig fails fast, before any network call, when the controller
// cannot possibly succeed.
func (c *Controller) checkConfig() error {
	if c.creds.Empty() {
		return &models.ConfigurationError{Target: c.target.ListName, Reason: "missing API credentials"}
	}
	if c.target.BoardID == "" {
		return &models.ConfigurationError{Target: c.target.ListName, Reason: "missing board ID"}
	}
	return nil
}

// LoadBoardName looks up the board's display name. Failure leaves the name
// empty and is only logged.
func (c *Controller) LoadBoardName(ctx context.Context) {
	c.mu.Lock()
	c.nameTried = true
	c.mu.Unlock()

	if c.checkConfig() != nil {
		zap.L().Warn("Skipping board name fetch, target not configured", zap.String("list", c.target.ListName))
		return
	}

	board, err := c.boards.ValidateBoardAccess(ctx, c.BoardID(), c.creds)
	if err != nil {
		zap.L().Error("Failed to fetch board name", zap.String("boardID", c.BoardID()), zap.Error(err))
		return
	}

	c.mu.Lock()
	c.boardName = board.Name
	c.mu.Unlock()
}

func (c *Controller) boardNameTried() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nameTried
}

// Refresh fetches the board's open lists and keeps those whose name matches
// the target pattern.
func (c *Controller) Refresh(ctx context.Context) (*models.SyncResult, error) {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.state = models.StateLoading
	c.result = nil
	c.err = nil
	c.mu.Unlock()
	c.notify()

	if err := c.checkConfig(); err != nil {
		zap.L().Error("Configuration error", zap.String("list", c.target.ListName), zap.Error(err))
		c.apply(seq, nil, err)
		return nil, err
	}

	boardID := c.BoardID()
	zap.L().Info("Refreshing cards", zap.String("list", c.target.ListName), zap.String("boardID", boardID))

	lists, err := c.boards.FetchOpenLists(ctx, boardID, c.creds)
	if err != nil {
		zap.L().Error("Failed to refresh cards", zap.String("list", c.target.ListName), zap.Error(err))
		c.apply(seq, nil, err)

		var transportErr *models.TransportError
		if errors.As(err, &transportErr) && (transportErr.Status == 404 || transportErr.Status == 400) {
			c.logAvailableLists(ctx, boardID)
		}
		return nil, err
	}

	result := filterLists(lists, c.target.ListName)
	if !result.TargetFound {
		noMatch := &models.NoMatchError{
			Pattern:   c.target.ListName,
			BoardID:   boardID,
			Available: models.ListNames(lists),
		}
		zap.L().Warn("No lists match pattern",
			zap.String("pattern", c.target.ListName),
			zap.String("boardID", boardID),
			zap.Strings("available", noMatch.Available),
		)
		c.apply(seq, nil, noMatch)
		if len(lists) > 0 {
			c.logAvailableLists(ctx, boardID)
		}
		return nil, noMatch
	}

	c.apply(seq, result, nil)
	return result, nil
}

// apply records the outcome of refresh seq unless a newer refresh has
// started since.
func (c *Controller) apply(seq uint64, result *models.SyncResult, err error) {
	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		zap.L().Debug("Discarding stale refresh result", zap.String("list", c.target.ListName), zap.Uint64("seq", seq))
		return
	}
	if err != nil {
		c.state = models.StateError
	} else {
		c.state = models.StateReady
	}
	c.result = result
	c.err = err
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) notify() {
	c.mu.Lock()
	fn := c.onChange
	snap := c.snapshotLocked()
	c.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}

// logAvailableLists is a best-effort diagnostic fetch. Its own failure is
// logged and dropped.
func (c *Controller) logAvailableLists(ctx context.Context, boardID string) {
	zap.L().Info("Attempting to fetch available lists for debugging", zap.String("boardID", boardID))
	if _, err := c.boards.FetchAllLists(ctx, boardID, c.creds); err != nil {
		zap.L().Warn("Could not fetch available lists for debugging", zap.String("boardID", boardID), zap.Error(err))
	}
}

// CloseCard archives a card on the target's board. Errors, including the
// API refusing an already-closed card, are logged and returned but leave
// the controller state untouched.
func (c *Controller) CloseCard(ctx context.Context, cardID string) error {
	if c.creds.Empty() {
		return &models.ConfigurationError{Target: c.target.ListName, Reason: "missing API credentials"}
	}
	if _, err := c.boards.CloseCard(ctx, cardID, c.creds); err != nil {
		zap.L().Warn("Failed to close card", zap.String("cardID", cardID), zap.Error(err))
		return fmt.Errorf("close card %s: %w", cardID, err)
	}
	return nil
}

// HasCard reports whether the last successful refresh included cardID.
func (c *Controller) HasCard(cardID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return false
	}
	for _, l := range c.result.MatchedLists {
		for _, card := range l.Cards {
			if card.ID == cardID {
				return true
			}
		}
	}
	return false
}

func filterLists(lists []models.TrelloList, pattern string) *models.SyncResult {
	result := &models.SyncResult{MatchedLists: []models.TrelloList{}}
	for _, l := range lists {
		if !glob.Matches(l.Name, pattern) {
			continue
		}
		result.TargetFound = true
		result.MatchedLists = append(result.MatchedLists, l)
		result.CardCount += len(l.Cards)
		zap.L().Debug("Found matching list", zap.String("list", l.Name), zap.String("pattern", pattern), zap.Int("cards", len(l.Cards)))
	}
	return result
}
