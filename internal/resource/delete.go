package resource

import (
	"context"

	"github.com/felixgeelhaar/rezai-admin/internal/errors"
)

// Kind is the type of record a pending delete targets.
type Kind string

const (
	KindUser     Kind = "user"
	KindQuestion Kind = "question"
)

// PendingDelete is a delete awaiting confirmation.
type PendingDelete struct {
	Kind Kind
	ID   string
}

// Prompt is the confirmation text for the pending delete.
func (p PendingDelete) Prompt() string {
	if p.Kind == KindUser {
		return "Are you sure you want to delete this user? This action cannot be undone."
	}
	return "Are you sure you want to delete this question? This action cannot be undone."
}

// SelectDelete arms a delete. A second selection replaces the first.
func (s *Service) SelectDelete(kind Kind, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = &PendingDelete{Kind: kind, ID: id}
}

// Pending returns the armed delete, if any.
func (s *Service) Pending() (PendingDelete, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return PendingDelete{}, false
	}
	return *s.pending, true
}

// CancelDelete disarms the pending delete.
func (s *Service) CancelDelete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

// ConfirmDelete runs the pending delete. On success the pending delete is
// cleared; on failure it stays armed so the user can retry or cancel.
func (s *Service) ConfirmDelete(ctx context.Context) error {
	p, ok := s.Pending()
	if !ok {
		return errors.New(errors.ErrCodeMutationNoPending, "nothing selected for deletion")
	}

	var err error
	switch p.Kind {
	case KindUser:
		err = s.DeleteUser(ctx, p.ID)
	case KindQuestion:
		err = s.DeleteQuestion(ctx, p.ID)
	default:
		err = errors.New(errors.ErrCodeMutationNotFound, "unknown record kind "+string(p.Kind))
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.pending != nil && *s.pending == p {
		s.pending = nil
	}
	s.mu.Unlock()
	return nil
}
