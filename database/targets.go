package database

import (
	"errors"
	"fmt"
	"sync"

	"github.com/chxlky/trello-cards/internal/models"
	"go.uber.org/zap"
)

const targetListsKey = "target-lists-config"

var (
	ErrDuplicateTarget = errors.New("this list configuration already exists")
	ErrTargetIndex     = errors.New("target index out of range")
)

// TargetStore keeps the ordered list targets as JSON under the
// target-lists-config setting.
type TargetStore struct {
	settings *SettingsStore

	mu        sync.Mutex
	listeners []func([]models.ListTarget)
}

func NewTargetStore(settings *SettingsStore) *TargetStore {
	return &TargetStore{settings: settings}
}

// OnChange registers fn to run with the new targets after every write.
func (s *TargetStore) OnChange(fn func([]models.ListTarget)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// List returns the stored targets. Missing or malformed JSON reads as an
// empty list.
func (s *TargetStore) List() ([]models.ListTarget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked()
}

func (s *TargetStore) listLocked() ([]models.ListTarget, error) {
	raw, err := s.settings.GetString(targetListsKey)
	if err != nil {
		return nil, err
	}
	targets, err := models.ParseTargets(raw)
	if err != nil {
		zap.L().Error("Error parsing target lists config", zap.Error(err))
	}
	return targets, nil
}

// Add appends a target, rejecting incomplete ones and duplicate
// (listName, boardId) pairs.
func (s *TargetStore) Add(target models.ListTarget) (models.ListTarget, error) {
	target = target.Normalize()
	if err := target.Validate(); err != nil {
		return target, err
	}

	err := s.mutate(func(targets []models.ListTarget) ([]models.ListTarget, error) {
		for _, existing := range targets {
			if existing.SameAs(target) {
				return nil, ErrDuplicateTarget
			}
		}
		return append(targets, target), nil
	})
	return target, err
}

// Update replaces the target at index.
func (s *TargetStore) Update(index int, target models.ListTarget) (models.ListTarget, error) {
	target = target.Normalize()
	if err := target.Validate(); err != nil {
		return target, err
	}

	err := s.mutate(func(targets []models.ListTarget) ([]models.ListTarget, error) {
		if index < 0 || index >= len(targets) {
			return nil, fmt.Errorf("%w: %d", ErrTargetIndex, index)
		}
		for i, existing := range targets {
			if i != index && existing.SameAs(target) {
				return nil, ErrDuplicateTarget
			}
		}
		targets[index] = target
		return targets, nil
	})
	return target, err
}

func (s *TargetStore) Remove(index int) error {
	return s.mutate(func(targets []models.ListTarget) ([]models.ListTarget, error) {
		if index < 0 || index >= len(targets) {
			return nil, fmt.Errorf("%w: %d", ErrTargetIndex, index)
		}
		return append(targets[:index], targets[index+1:]...), nil
	})
}

// mutate applies fn to the stored targets, saves the result and then tells
// the listeners, outside the lock.
func (s *TargetStore) mutate(fn func([]models.ListTarget) ([]models.ListTarget, error)) error {
	s.mu.Lock()
	targets, err := s.listLocked()
	if err == nil {
		targets, err = fn(targets)
	}
	if err == nil {
		err = s.saveLocked(targets)
	}
	listeners := append([]func([]models.ListTarget){}, s.listeners...)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	for _, listener := range listeners {
		listener(append([]models.ListTarget{}, targets...))
	}
	return nil
}

// Seed stores targets only when nothing has been stored yet. It reports
// whether it wrote anything.
func (s *TargetStore) Seed(targets []models.ListTarget) (bool, error) {
	if len(targets) == 0 {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := s.settings.GetString(targetListsKey)
	if err != nil {
		return false, err
	}
	if raw != "" {
		return false, nil
	}
	seeded := make([]models.ListTarget, 0, len(targets))
	for _, t := range targets {
		seeded = append(seeded, t.Normalize())
	}
	return true, s.saveLocked(seeded)
}

func (s *TargetStore) saveLocked(targets []models.ListTarget) error {
	raw, err := models.EncodeTargets(targets)
	if err != nil {
		return err
	}
	return s.settings.SetString(targetListsKey, raw)
}
