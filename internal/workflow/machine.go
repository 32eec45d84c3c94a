// Package workflow holds the approval state machine shared by every approvable
// document. It mutates approval fields in memory only; persistence belongs to
// the caller.
package workflow

import (
	"errors"
	"strings"
	"time"

	"github.com/noah-isme/erp-api/internal/models"
)

var (
	ErrInvalidStatus   = errors.New("invalid approval status")
	ErrStageNotAllowed = errors.New("approval stage not enabled for document kind")
	ErrMissingActor    = errors.New("actor is required for sign-off")
)

type transition struct {
	signOff       bool
	recordComment bool
	clear         []models.ApprovalStatus
}

// Machine applies approval transitions for one document kind.
type Machine struct {
	allowed map[models.ApprovalStatus]bool
	table   map[models.ApprovalStatus]transition
}

// Option customises a Machine.
type Option func(*Machine)

// WithClearApprovalsOnReview makes a move back to reviewed also drop the
// approved1/approved2 sign-offs.
func WithClearApprovalsOnReview() Option {
	return func(m *Machine) {
		t := m.table[models.ApprovalReviewed]
		t.clear = append(t.clear, models.ApprovalApproved1, models.ApprovalApproved2)
		m.table[models.ApprovalReviewed] = t
	}
}

// NewMachine builds a machine accepting the given sign-off stages. Entry and
// recoverable terminal states are always accepted.
func NewMachine(stages []models.ApprovalStatus, opts ...Option) *Machine {
	m := &Machine{
		allowed: make(map[models.ApprovalStatus]bool, len(stages)),
		table: map[models.ApprovalStatus]transition{
			models.ApprovalReviewed: {
				signOff: true,
				clear:   []models.ApprovalStatus{models.ApprovalVerified, models.ApprovalAcknowledged},
			},
			models.ApprovalVerified: {
				signOff: true,
				clear:   []models.ApprovalStatus{models.ApprovalAcknowledged},
			},
			models.ApprovalAcknowledged: {signOff: true},
			models.ApprovalApproved1:    {signOff: true},
			models.ApprovalApproved2:    {signOff: true},
			models.ApprovalCorrection:   {recordComment: true, clear: models.SignOffStages},
			models.ApprovalRejected:     {recordComment: true, clear: models.SignOffStages},
		},
	}
	for _, stage := range stages {
		m.allowed[stage] = true
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// ForKind builds the machine configured for a document kind.
func ForKind(kind models.DocumentKind) *Machine {
	var opts []Option
	if kind.ClearApprovalsOnReview {
		opts = append(opts, WithClearApprovalsOnReview())
	}
	return NewMachine(kind.Stages, opts...)
}

// Check validates target without mutating anything.
func (m *Machine) Check(target models.ApprovalStatus) error {
	if !target.Valid() {
		return ErrInvalidStatus
	}
	if target.IsSignOff() && !m.allowed[target] {
		return ErrStageNotAllowed
	}
	return nil
}

// Apply moves f to target. The status is always written first; the sign-off
// pair of target is then set and the transition's pairs are cleared. The
// comment is kept only on correction and rejected.
func (m *Machine) Apply(f *models.ApprovalFields, target models.ApprovalStatus, actorID string, comment *string, now time.Time) error {
	if err := m.Check(target); err != nil {
		return err
	}
	t := m.table[target]
	if t.signOff && strings.TrimSpace(actorID) == "" {
		return ErrMissingActor
	}

	f.Approval = target

	for _, stage := range t.clear {
		f.SetSignOff(stage, nil, nil)
	}
	if t.signOff {
		actor := actorID
		at := now
		f.SetSignOff(target, &actor, &at)
	}

	if t.recordComment {
		f.ApprovalComment = normalizeComment(comment)
	} else {
		f.ApprovalComment = nil
	}
	return nil
}

// InitialStatus is the status a new or freshly edited document starts in.
func InitialStatus(hasPolicy bool) models.ApprovalStatus {
	if hasPolicy {
		return models.ApprovalPending
	}
	return models.ApprovalNone
}

// ValidityMode selects what ChangeValidity does to the approval status.
type ValidityMode int

const (
	// ValidityKeepStatus leaves the approval status untouched.
	ValidityKeepStatus ValidityMode = iota
	// ValidityResetStatus moves the document to pending (valid) or rejected
	// (invalid) when a policy exists, and to none otherwise.
	ValidityResetStatus
)

// ChangeValidity sets the valid flag and clears every sign-off pair whichever
// way the flag moves.
func ChangeValidity(f *models.ApprovalFields, valid bool, mode ValidityMode, hasPolicy bool) {
	f.Valid = valid
	f.ClearSignOffs()
	if mode != ValidityResetStatus {
		return
	}
	switch {
	case !hasPolicy:
		f.Approval = models.ApprovalNone
	case valid:
		f.Approval = models.ApprovalPending
	default:
		f.Approval = models.ApprovalRejected
	}
}

// ResetForEdit invalidates prior sign-offs before a full edit is applied.
func ResetForEdit(f *models.ApprovalFields, hasPolicy bool) {
	f.ClearSignOffs()
	f.ApprovalComment = nil
	f.Approval = InitialStatus(hasPolicy)
}

func normalizeComment(comment *string) *string {
	if comment == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*comment)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
