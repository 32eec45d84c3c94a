package models

import "time"

// ApprovalStatus is the approval state of an approvable document.
type ApprovalStatus string

const (
	ApprovalNone         ApprovalStatus = "none"
	ApprovalPending      ApprovalStatus = "pending"
	ApprovalReviewed     ApprovalStatus = "reviewed"
	ApprovalVerified     ApprovalStatus = "verified"
	ApprovalAcknowledged ApprovalStatus = "acknowledged"
	ApprovalCorrection   ApprovalStatus = "correction"
	ApprovalRejected     ApprovalStatus = "rejected"
	ApprovalApproved1    ApprovalStatus = "approved1"
	ApprovalApproved2    ApprovalStatus = "approved2"
)

// SignOffStages lists the stages that carry an actor/timestamp pair, in sign-off order.
var SignOffStages = []ApprovalStatus{
	ApprovalReviewed,
	ApprovalVerified,
	ApprovalAcknowledged,
	ApprovalApproved1,
	ApprovalApproved2,
}

// Valid reports whether s is a known approval status.
func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalNone, ApprovalPending, ApprovalReviewed, ApprovalVerified, ApprovalAcknowledged,
		ApprovalCorrection, ApprovalRejected, ApprovalApproved1, ApprovalApproved2:
		return true
	}
	return false
}

// StageRank returns the 1-based sign-off position of s, or 0 when s is not a sign-off stage.
func (s ApprovalStatus) StageRank() int {
	for i, stage := range SignOffStages {
		if stage == s {
			return i + 1
		}
	}
	return 0
}

// IsSignOff reports whether s carries an actor/timestamp pair.
func (s ApprovalStatus) IsSignOff() bool {
	return s.StageRank() > 0
}

// ApprovalFields is the approval block shared by every approvable document.
type ApprovalFields struct {
	Approval        ApprovalStatus `db:"approval" json:"approval"`
	ApprovalComment *string        `db:"approval_comment" json:"approvalComment"`
	ReviewedBy      *string        `db:"reviewed_by" json:"reviewedBy"`
	ReviewedAt      *time.Time     `db:"reviewed_at" json:"reviewedAt"`
	VerifiedBy      *string        `db:"verified_by" json:"verifiedBy"`
	VerifiedAt      *time.Time     `db:"verified_at" json:"verifiedAt"`
	AcknowledgedBy  *string        `db:"acknowledged_by" json:"acknowledgedBy"`
	AcknowledgedAt  *time.Time     `db:"acknowledged_at" json:"acknowledgedAt"`
	ApprovedBy1     *string        `db:"approved_by1" json:"approvedBy1"`
	ApprovedAt1     *time.Time     `db:"approved_at1" json:"approvedAt1"`
	ApprovedBy2     *string        `db:"approved_by2" json:"approvedBy2"`
	ApprovedAt2     *time.Time     `db:"approved_at2" json:"approvedAt2"`
	Valid           bool           `db:"valid" json:"valid"`
	Version         int64          `db:"version" json:"version"`
}

// SignOff returns the actor/timestamp pair recorded for stage.
func (f *ApprovalFields) SignOff(stage ApprovalStatus) (*string, *time.Time) {
	switch stage {
	case ApprovalReviewed:
		return f.ReviewedBy, f.ReviewedAt
	case ApprovalVerified:
		return f.VerifiedBy, f.VerifiedAt
	case ApprovalAcknowledged:
		return f.AcknowledgedBy, f.AcknowledgedAt
	case ApprovalApproved1:
		return f.ApprovedBy1, f.ApprovedAt1
	case ApprovalApproved2:
		return f.ApprovedBy2, f.ApprovedAt2
	}
	return nil, nil
}

// SetSignOff overwrites the pair recorded for stage. Nil values clear it.
func (f *ApprovalFields) SetSignOff(stage ApprovalStatus, by *string, at *time.Time) {
	switch stage {
	case ApprovalReviewed:
		f.ReviewedBy, f.ReviewedAt = by, at
	case ApprovalVerified:
		f.VerifiedBy, f.VerifiedAt = by, at
	case ApprovalAcknowledged:
		f.AcknowledgedBy, f.AcknowledgedAt = by, at
	case ApprovalApproved1:
		f.ApprovedBy1, f.ApprovedAt1 = by, at
	case ApprovalApproved2:
		f.ApprovedBy2, f.ApprovedAt2 = by, at
	}
}

// ClearSignOffs nulls every actor/timestamp pair.
func (f *ApprovalFields) ClearSignOffs() {
	for _, stage := range SignOffStages {
		f.SetSignOff(stage, nil, nil)
	}
}
