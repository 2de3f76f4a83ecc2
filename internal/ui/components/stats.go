package components

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yildizm/CodeLens/internal/analysis"
)

// Card statuses
const (
	StatusSuccess = "success"
	StatusWarning = "warning"
	StatusError   = "error"
	StatusInfo    = "info"
	StatusMuted   = "muted"
)

// StatsCard represents a statistics card component
type StatsCard struct {
	Title       string
	Value       string
	Description string
	Status      string
	Icon        string
	Width       int
	Height      int
}

// NewStatsCard creates a new stats card
func NewStatsCard(title, value, description string) *StatsCard {
	return &StatsCard{
		Title:       title,
		Value:       value,
		Description: description,
		Status:      StatusInfo,
		Width:       16,
		Height:      3,
	}
}

// SetStatus sets the status color of the card
func (s *StatsCard) SetStatus(status string) *StatsCard {
	s.Status = status
	return s
}

// SetIcon sets the icon for the card
func (s *StatsCard) SetIcon(icon string) *StatsCard {
	s.Icon = icon
	return s
}

// SetSize sets the size of the card
func (s *StatsCard) SetSize(width, height int) *StatsCard {
	s.Width = width
	s.Height = height
	return s
}

// Render renders the stats card
func (s *StatsCard) Render() string {
	successColor := lipgloss.AdaptiveColor{Light: "#10B981", Dark: "#34D399"}
	warningColor := lipgloss.AdaptiveColor{Light: "#F59E0B", Dark: "#FBBF24"}
	errorColor := lipgloss.AdaptiveColor{Light: "#EF4444", Dark: "#F87171"}
	infoColor := lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#60A5FA"}
	bodyColor := lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}

	var valueStyle lipgloss.Style
	switch s.Status {
	case StatusSuccess:
		valueStyle = lipgloss.NewStyle().Foreground(successColor)
	case StatusWarning:
		valueStyle = lipgloss.NewStyle().Foreground(warningColor)
	case StatusError:
		valueStyle = lipgloss.NewStyle().Foreground(errorColor)
	case StatusInfo:
		valueStyle = lipgloss.NewStyle().Foreground(infoColor)
	default:
		valueStyle = lipgloss.NewStyle().Foreground(bodyColor)
	}

	titleStyle := lipgloss.NewStyle().Foreground(infoColor).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(bodyColor)
	boxStyle := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(bodyColor).Padding(0, 1)

	title := titleStyle.Render(s.Title)
	if s.Icon != "" {
		title = s.Icon + " " + title
	}

	lines := []string{title, valueStyle.Bold(true).Render(s.Value)}
	if s.Description != "" {
		lines = append(lines, mutedStyle.Render(s.Description))
	}

	return boxStyle.
		Width(s.Width).
		Height(s.Height).
		Render(lipgloss.JoinVertical(lipgloss.Center, lines...))
}

// StatsDashboard represents a collection of stats cards
type StatsDashboard struct {
	cards      []*StatsCard
	columns    int
	cardWidth  int
	cardHeight int
}

// NewStatsDashboard creates a new stats dashboard
func NewStatsDashboard(columns int) *StatsDashboard {
	if columns < 1 {
		columns = 1
	}
	return &StatsDashboard{
		columns:    columns,
		cardWidth:  16,
		cardHeight: 2,
	}
}

// AddCard adds a stats card to the dashboard
func (d *StatsDashboard) AddCard(card *StatsCard) {
	card.SetSize(d.cardWidth, d.cardHeight)
	d.cards = append(d.cards, card)
}

// Len returns the number of cards
func (d *StatsDashboard) Len() int {
	return len(d.cards)
}

// SetCardSize sets the default size for all cards
func (d *StatsDashboard) SetCardSize(width, height int) {
	d.cardWidth = width
	d.cardHeight = height
	for _, card := range d.cards {
		card.SetSize(width, height)
	}
}

// Render renders the stats dashboard
func (d *StatsDashboard) Render() string {
	if len(d.cards) == 0 {
		return ""
	}

	var rows []string
	for i := 0; i < len(d.cards); i += d.columns {
		end := min(i+d.columns, len(d.cards))

		rowCards := make([]string, 0, end-i)
		for j := i; j < end; j++ {
			rowCards = append(rowCards, d.cards[j].Render())
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, rowCards...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// CreateResultStats creates one card per stat category, in display order.
// Without a result every card shows a dash.
func CreateResultStats(result *analysis.Result, columns int) *StatsDashboard {
	dashboard := NewStatsDashboard(columns)

	for _, category := range analysis.StatCategories {
		value := "-"
		status := StatusMuted
		if result != nil {
			value = formatNumber(result.Stats.Get(category))
			status = StatusInfo
		}
		if category == analysis.StatTotalTokens && result != nil {
			status = StatusSuccess
		}
		dashboard.AddCard(NewStatsCard(analysis.StatLabel(category), value, "").SetStatus(status))
	}

	return dashboard
}

// formatNumber formats large numbers with commas
func formatNumber(n int) string {
	str := strconv.Itoa(n)
	if len(str) <= 3 {
		return str
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}

	return result.String()
}

// SummaryBox creates a titled information box
type SummaryBox struct {
	Title   string
	Status  string
	Content []string
	Width   int
}

// NewSummaryBox creates a new summary box
func NewSummaryBox(title string, width int) *SummaryBox {
	return &SummaryBox{
		Title:  title,
		Status: StatusInfo,
		Width:  width,
	}
}

// AddLine adds a line to the summary
func (s *SummaryBox) AddLine(line string) {
	s.Content = append(s.Content, line)
}

// AddLines adds every line of a multi-line block
func (s *SummaryBox) AddLines(block string) {
	if block == "" {
		return
	}
	s.Content = append(s.Content, strings.Split(block, "\n")...)
}

// AddKeyValue adds a key-value pair to the summary
func (s *SummaryBox) AddKeyValue(key, value string) {
	s.Content = append(s.Content, fmt.Sprintf("%-15s: %s", key, value))
}

// Render renders the summary box
func (s *SummaryBox) Render() string {
	headerColor := lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#60A5FA"}
	switch s.Status {
	case StatusSuccess:
		headerColor = lipgloss.AdaptiveColor{Light: "#10B981", Dark: "#34D399"}
	case StatusError:
		headerColor = lipgloss.AdaptiveColor{Light: "#EF4444", Dark: "#F87171"}
	}
	bodyColor := lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}

	headerStyle := lipgloss.NewStyle().Foreground(headerColor).Bold(true)
	boxStyle := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(bodyColor).Padding(0, 1)
	bodyStyle := lipgloss.NewStyle().Foreground(bodyColor)

	content := make([]string, 0, len(s.Content)+1)
	content = append(content, headerStyle.Render(s.Title))
	for _, line := range s.Content {
		content = append(content, bodyStyle.Render(line))
	}

	box := boxStyle
	if s.Width > 0 {
		box = box.Width(s.Width)
	}
	return box.Render(lipgloss.JoinVertical(lipgloss.Left, content...))
}
