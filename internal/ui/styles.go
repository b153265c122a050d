package ui

import "github.com/charmbracelet/lipgloss"

var (
	InfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	BoldStyle    = lipgloss.NewStyle().Bold(true)
	FaintStyle   = lipgloss.NewStyle().Faint(true)
	PromptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	AccentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)
