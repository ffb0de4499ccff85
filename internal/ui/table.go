package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// NewTable creates a bordered lipgloss table with the CLI's styling defaults
func NewTable() *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(TableBorderStyle).
		BorderRow(false).
		BorderColumn(true).
		StyleFunc(defaultTableStyleFunc)
}

// NewSimpleTable creates a table without borders
func NewSimpleTable() *table.Table {
	return table.New().
		Border(lipgloss.Border{}).
		StyleFunc(simpleTableStyleFunc)
}

func defaultTableStyleFunc(row, col int) lipgloss.Style {
	switch {
	case row == table.HeaderRow:
		return TableHeaderStyle
	case row%2 == 0:
		return TableCellStyle
	default:
		return TableRowAltStyle
	}
}

func simpleTableStyleFunc(row, col int) lipgloss.Style {
	if row == table.HeaderRow {
		return TableHeaderStyle
	}
	return TableCellStyle
}
