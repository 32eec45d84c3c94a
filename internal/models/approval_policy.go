package models

import "time"

// ApprovalPolicy toggles the sign-off stages an organization requires for one feature.
type ApprovalPolicy struct {
	OrganizationID string    `db:"organization_id" json:"organizationId"`
	Feature        string    `db:"feature" json:"feature"`
	Reviewed       bool      `db:"reviewed" json:"reviewed"`
	Verified       bool      `db:"verified" json:"verified"`
	Acknowledged   bool      `db:"acknowledged" json:"acknowledged"`
	Approved1      bool      `db:"approved1" json:"approved1"`
	Approved2      bool      `db:"approved2" json:"approved2"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// StageEnabled reports whether stage is switched on.
func (p *ApprovalPolicy) StageEnabled(stage ApprovalStatus) bool {
	if p == nil {
		return false
	}
	switch stage {
	case ApprovalReviewed:
		return p.Reviewed
	case ApprovalVerified:
		return p.Verified
	case ApprovalAcknowledged:
		return p.Acknowledged
	case ApprovalApproved1:
		return p.Approved1
	case ApprovalApproved2:
		return p.Approved2
	}
	return false
}

// Enabled reports whether any stage requires sign-off.
func (p *ApprovalPolicy) Enabled() bool {
	for _, stage := range SignOffStages {
		if p.StageEnabled(stage) {
			return true
		}
	}
	return false
}

// NextLevel returns the first enabled stage after current, or "" when the
// document needs no further sign-off. Entry states start from the first stage;
// correction and rejected have no next level.
func (p *ApprovalPolicy) NextLevel(current ApprovalStatus) ApprovalStatus {
	var rank int
	switch current {
	case ApprovalNone, ApprovalPending:
		rank = 0
	case ApprovalCorrection, ApprovalRejected:
		return ""
	default:
		rank = current.StageRank()
		if rank == 0 {
			return ""
		}
	}
	for _, stage := range SignOffStages[rank:] {
		if p.StageEnabled(stage) {
			return stage
		}
	}
	return ""
}
