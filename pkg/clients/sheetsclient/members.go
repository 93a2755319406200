package sheetsclient

import (
	"fmt"
	"strings"
)

// ListMemberRows reads a member tab, header row first, as trimmed strings.
// Column mapping is left to the importer.
func (c *Client) ListMemberRows(spreadsheetID, tab string) ([][]string, error) {
	values, err := c.GetValues(spreadsheetID, tab)
	if err != nil {
		return nil, fmt.Errorf("failed to get member data: %w", err)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("spreadsheet is empty")
	}

	return toStringRows(values), nil
}

// toStringRows converts the loosely typed API cells; ragged rows stay ragged
func toStringRows(values [][]interface{}) [][]string {
	rows := make([][]string, 0, len(values))
	for _, row := range values {
		cells := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				continue
			}
			cells[i] = strings.TrimSpace(fmt.Sprint(v))
		}
		rows = append(rows, cells)
	}
	return rows
}
