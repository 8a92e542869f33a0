package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rosterDataset() Dataset {
	return Dataset{
		Title:   "Mentoria de Vendas",
		Notes:   []string{"2026-03-10 14:00 (60 min)"},
		Headers: []string{"user_id", "status"},
		Rows: []map[string]string{
			{"user_id": "user-1", "status": "ACTIVE"},
			{"user_id": "user-2", "status": "CANCELLED"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(rosterDataset())
	require.NoError(t, err)
	assert.Equal(t, "user_id,status\nuser-1,ACTIVE\nuser-2,CANCELLED\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(rosterDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
