package sheetsclient

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jakechorley/club-duties/pkg/exchange"
)

func TestToStringRows(t *testing.T) {
	values := [][]interface{}{
		{"Naam", "E-mail", "Telefoon"},
		{" Anna de Vries ", "anna@example.org", 612345678},
		{"Bas Janssen"},
		{nil, "orphan@example.org"},
	}

	rows := toStringRows(values)

	assert.Equal(t, [][]string{
		{"Naam", "E-mail", "Telefoon"},
		{"Anna de Vries", "anna@example.org", "612345678"},
		{"Bas Janssen"},
		{"", "orphan@example.org"},
	}, rows)
}

func TestToStringRows_FeedsMemberMapping(t *testing.T) {
	rows := toStringRows([][]interface{}{
		{"Name", "Email"},
		{"Carla Smits", "carla@example.org"},
		{nil, "orphan@example.org"},
	})

	candidates := exchange.MapMemberRows(rows)

	assert.Equal(t, []exchange.Candidate{{Name: "Carla Smits", Email: "carla@example.org"}}, candidates)
}
