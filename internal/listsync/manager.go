package listsync

import (
	"context"
	"fmt"
	"sync"

	"github.com/chxlky/trello-cards/internal/models"
	"go.uber.org/zap"
)

// Settings is everything the manager rebuilds its controllers from.
type Settings struct {
	Credentials   models.Credentials
	Targets       []models.ListTarget
	Display       Display
	LegacyBoardID string
}

// View is a controller snapshot plus its rendered panel label.
type View struct {
	models.Snapshot
	Label     string   `json:"label"`
	Error     string   `json:"error,omitempty"`
	Available []string `json:"availableLists,omitempty"`
}

type RefreshSummary struct {
	Refreshed int
	Failed    int
}

func (s RefreshSummary) String() string {
	switch {
	case s.Refreshed == 0 && s.Failed == 0:
		return "No lists configured"
	case s.Failed == 0:
		return fmt.Sprintf("%d lists refreshed", s.Refreshed)
	case s.Refreshed == 0:
		return fmt.Sprintf("All %d lists failed", s.Failed)
	default:
		return fmt.Sprintf("%d refreshed, %d failed", s.Refreshed, s.Failed)
	}
}

// Manager owns one Controller per configured target.
type Manager struct {
	boards Boards

	mu          sync.RWMutex
	display     Display
	controllers []*Controller
	creds       models.Credentials
	onChange    func(models.Snapshot)
}

func NewManager(boards Boards) *Manager {
	return &Manager{boards: boards}
}

// OnChange forwards every controller state transition to fn.
func (m *Manager) OnChange(fn func(models.Snapshot)) {
	m.mu.Lock()
	m.onChange = fn
	for _, c := range m.controllers {
		c.OnChange(fn)
	}
	m.mu.Unlock()
}

// Apply replaces all controllers with ones built from settings. It is called
// on startup and whenever the settings change.
func (m *Manager) Apply(settings Settings) {
	controllers := make([]*Controller, 0, len(settings.Targets))
	for _, target := range settings.Targets {
		if target.BoardID == "" && settings.LegacyBoardID != "" {
			target.BoardID = settings.LegacyBoardID
		}
		controllers = append(controllers, NewController(m.boards, settings.Credentials, target))
	}

	m.mu.Lock()
	for _, c := range controllers {
		c.OnChange(m.onChange)
	}
	m.controllers = controllers
	m.display = settings.Display
	m.creds = settings.Credentials
	m.mu.Unlock()

	if len(controllers) == 0 {
		zap.L().Info("No target lists configured")
		return
	}
	zap.L().Info("Target lists configured", zap.Int("count", len(controllers)))
}

func (m *Manager) Controllers() []*Controller {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*Controller(nil), m.controllers...)
}

// RefreshAll refreshes every controller concurrently and waits for all of
// them. It is safe to call while a previous RefreshAll is still running.
func (m *Manager) RefreshAll(ctx context.Context) RefreshSummary {
	controllers := m.Controllers()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		summary RefreshSummary
	)
	for _, c := range controllers {
		wg.Add(1)
		go func(c *Controller) {
			defer wg.Done()
			if !c.boardNameTried() {
				c.LoadBoardName(ctx)
			}
			_, err := c.Refresh(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Failed++
				return
			}
			summary.Refreshed++
		}(c)
	}
	wg.Wait()

	zap.L().Info("Refresh finished", zap.String("status", summary.String()))
	return summary
}

// Views returns the render-ready state of every controller in target order.
func (m *Manager) Views() []View {
	m.mu.RLock()
	display := m.display
	controllers := append([]*Controller(nil), m.controllers...)
	m.mu.RUnlock()

	views := make([]View, 0, len(controllers))
	for _, c := range controllers {
		views = append(views, NewView(c.Snapshot(), display))
	}
	return views
}

func NewView(snap models.Snapshot, display Display) View {
	count := -1
	if snap.Result != nil {
		count = snap.Result.CardCount
	}
	view := View{
		Snapshot: snap,
		Label:    Label(snap.Target, display, count),
		Error:    snap.ErrorMessage(),
	}
	if noMatch, ok := snap.Err.(*models.NoMatchError); ok {
		view.Available = noMatch.Available
	}
	return view
}

// CloseCard archives cardID and refreshes the controller that showed it.
// A failed close, such as a card that is already closed, is returned to the
// caller without touching any controller state.
func (m *Manager) CloseCard(ctx context.Context, cardID string) error {
	controllers := m.Controllers()

	var owner *Controller
	for _, c := range controllers {
		if c.HasCard(cardID) {
			owner = c
			break
		}
	}

	if owner == nil {
		m.mu.RLock()
		creds := m.creds
		m.mu.RUnlock()
		owner = NewController(m.boards, creds, models.ListTarget{})
	}

	if err := owner.CloseCard(ctx, cardID); err != nil {
		return err
	}

	if owner.Target().BoardID != "" {
		owner.Refresh(ctx)
	}
	return nil
}
