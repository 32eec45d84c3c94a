package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApprovalStatusValid(t *testing.T) {
	for _, s := range []ApprovalStatus{ApprovalNone, ApprovalPending, ApprovalCorrection, ApprovalRejected, ApprovalApproved2} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, ApprovalStatus("approved").Valid())
	assert.False(t, ApprovalStatus("").Valid())
}

func TestStageRankOrder(t *testing.T) {
	require.Equal(t, 1, ApprovalReviewed.StageRank())
	require.Equal(t, 5, ApprovalApproved2.StageRank())
	require.Less(t, ApprovalVerified.StageRank(), ApprovalAcknowledged.StageRank())
	require.Zero(t, ApprovalRejected.StageRank())
	require.False(t, ApprovalPending.IsSignOff())
}

func TestApprovalFieldsSignOffRoundTrip(t *testing.T) {
	var f ApprovalFields
	actor := "user-1"
	now := time.Now()
	for _, stage := range SignOffStages {
		f.SetSignOff(stage, &actor, &now)
		by, at := f.SignOff(stage)
		require.Equal(t, &actor, by)
		require.Equal(t, &now, at)
	}
	f.ClearSignOffs()
	for _, stage := range SignOffStages {
		by, at := f.SignOff(stage)
		require.Nil(t, by)
		require.Nil(t, at)
	}
}

func TestApprovalPolicyNextLevel(t *testing.T) {
	policy := &ApprovalPolicy{Reviewed: true, Acknowledged: true, Approved2: true}

	tests := []struct {
		current ApprovalStatus
		want    ApprovalStatus
	}{
		{ApprovalPending, ApprovalReviewed},
		{ApprovalNone, ApprovalReviewed},
		{ApprovalReviewed, ApprovalAcknowledged},
		{ApprovalVerified, ApprovalAcknowledged},
		{ApprovalAcknowledged, ApprovalApproved2},
		{ApprovalApproved2, ""},
		{ApprovalRejected, ""},
		{ApprovalCorrection, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, policy.NextLevel(tt.current), "after %s", tt.current)
	}
	require.True(t, policy.Enabled())
	require.False(t, (&ApprovalPolicy{}).Enabled())

	var missing *ApprovalPolicy
	require.False(t, missing.Enabled())
}

func TestLookupKind(t *testing.T) {
	kind, ok := LookupKind("QUOTE")
	require.True(t, ok)
	require.Equal(t, "quotes", kind.Table)
	require.True(t, kind.Sequenced())

	leave, ok := LookupKind(KindLeave)
	require.True(t, ok)
	require.False(t, leave.Sequenced())

	_, ok = LookupKind("invoice")
	require.False(t, ok)
	require.Len(t, ApprovalFeatures(), 5)
}

func TestDocumentLabel(t *testing.T) {
	seq := "Q-01"
	require.Equal(t, "Q-01", (&Document{ID: "abcdef123456", SequenceID: &seq}).Label())
	require.Equal(t, "Annual leave", (&Document{ID: "abcdef123456", Title: "Annual leave"}).Label())
	require.Equal(t, "abcdef12", (&Document{ID: "abcdef123456"}).Label())
}
