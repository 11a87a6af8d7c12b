package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

const DefaultEmoji = "📋"

// Credentials are the pre-obtained Trello API key and token. They are never
// validated for format.
type Credentials struct {
	APIKey string
	Token  string
}

func (c Credentials) Empty() bool {
	return c.APIKey == "" || c.Token == ""
}

// ListTarget is one configured panel indicator. The JSON names match the
// stored target-lists-config format.
type ListTarget struct {
	ListName string `json:"listName"`
	BoardID  string `json:"boardId"`
	Emoji    string `json:"emoji"`
}

// Normalize trims the user-entered fields and fills in the default emoji.
func (t ListTarget) Normalize() ListTarget {
	t.ListName = strings.TrimSpace(t.ListName)
	t.BoardID = strings.TrimSpace(t.BoardID)
	if t.Emoji == "" {
		t.Emoji = DefaultEmoji
	}
	return t
}

func (t ListTarget) Validate() error {
	if t.ListName == "" {
		return &ConfigurationError{Target: t.ListName, Reason: "missing list name"}
	}
	if t.BoardID == "" {
		return &ConfigurationError{Target: t.ListName, Reason: "missing board ID"}
	}
	return nil
}

// SameAs reports whether both targets name the same (listName, boardId) pair.
func (t ListTarget) SameAs(other ListTarget) bool {
	return t.ListName == other.ListName && t.BoardID == other.BoardID
}

// ParseTargets decodes a stored target-lists-config value. An empty or null
// value is an empty sequence.
func ParseTargets(raw string) ([]ListTarget, error) {
	targets := []ListTarget{}
	if strings.TrimSpace(raw) == "" {
		return targets, nil
	}
	if err := json.Unmarshal([]byte(raw), &targets); err != nil {
		return []ListTarget{}, fmt.Errorf("failed to parse target lists config: %w", err)
	}
	if targets == nil {
		targets = []ListTarget{}
	}
	return targets, nil
}

func EncodeTargets(targets []ListTarget) (string, error) {
	if targets == nil {
		targets = []ListTarget{}
	}
	b, err := json.Marshal(targets)
	if err != nil {
		return "", fmt.Errorf("failed to encode target lists config: %w", err)
	}
	return string(b), nil
}
