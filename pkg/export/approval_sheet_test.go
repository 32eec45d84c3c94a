package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(ApprovalSheet{
		Title:  "Quote",
		Label:  "Q-01",
		Status: "verified",
		Valid:  true,
		Fields: [][2]string{{"Customer", "Acme"}},
		Sign: []SheetRow{
			{Stage: "reviewed", SignedBy: "user-1", SignedAt: "2024-01-02 10:00"},
			{Stage: "verified", SignedBy: "user-2", SignedAt: "2024-01-03 11:00"},
		},
	})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFExporterRequiresStages(t *testing.T) {
	_, err := NewPDFExporter().Render(ApprovalSheet{Title: "Quote"})
	require.Error(t, err)
}
