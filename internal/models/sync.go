package models

type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

type SyncResult struct {
	MatchedLists []TrelloList `json:"matchedLists"`
	CardCount    int          `json:"cardCount"`
	TargetFound  bool         `json:"targetFound"`
}

// Snapshot is a point-in-time copy of a controller's state, handed to the
// rendering layer.
type Snapshot struct {
	Target    ListTarget  `json:"target"`
	BoardID   string      `json:"boardId"`
	BoardName string      `json:"boardName,omitempty"`
	State     State       `json:"state"`
	Result    *SyncResult `json:"result,omitempty"`
	Err       error       `json:"-"`
}

// ErrorMessage is the short user-facing text for the snapshot's error, or
// the empty string.
func (s Snapshot) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	return UserMessage(s.Err)
}
