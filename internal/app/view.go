package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zooportal/tui/internal/nav"
	"github.com/zooportal/tui/internal/report"
	"github.com/zooportal/tui/internal/session"
	"github.com/zooportal/tui/internal/ui"
)

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var sections []string

	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderStatusBar())
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))

	switch m.page {
	case nav.PageHome:
		sections = append(sections, m.renderHome())
	case nav.PageLogin:
		sections = append(sections, m.renderLogin())
	case nav.PageAbout:
		sections = append(sections, m.renderAbout())
	case nav.PageContact:
		sections = append(sections, m.renderContact())
	case nav.PageUpload:
		sections = append(sections, m.renderUpload())
	case nav.PageSymptoms:
		sections = append(sections, m.renderSymptoms())
	case nav.PageResults:
		sections = append(sections, m.renderResults())
	case nav.PageDashboard:
		sections = append(sections, m.renderDashboard())
	}

	if m.confirm != confirmNone {
		sections = append(sections, m.renderConfirmBar())
	}
	if m.errorMessage != "" {
		sections = append(sections, m.renderErrorBar())
	}
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	title := ui.TitleStyle.Render("ZOOPORTAL")

	var who string
	if m.sess.LoggedIn() {
		label := "patient"
		if m.sess.Role == session.RoleDoctor {
			label = "doctor"
		}
		who = ui.DimStyle.Render(fmt.Sprintf(" — %s (%s)", m.sess.UserID, label))
	}

	page := ui.DimStyle.Render(" · " + m.page.String())
	return title + who + page
}

func (m Model) renderStatusBar() string {
	var busy string
	if m.authBusy || m.uploadBusy || m.predictBusy || m.fetching {
		busy = ui.SpinnerStyle.Render("⟳ ") // a request is in flight
	}
	return busy + ui.StatusStyle.Render(m.statusText)
}

func (m Model) renderHome() string {
	lines := []string{
		"",
		"  Upload lab reports, check symptoms, and view analytics.",
		"",
		"  " + ui.FooterKeyStyle.Render("l") + " Login / Sign up",
		"  " + ui.FooterKeyStyle.Render("a") + " About",
		"  " + ui.FooterKeyStyle.Render("c") + " Contact",
	}
	return m.padPage(lines)
}

func (m Model) renderAbout() string {
	lines := []string{
		"",
		"  Zooportal analyzes zoonotic lab reports and symptom profiles and",
		"  assigns each report a risk level: High, Moderate, Low, or Unknown.",
		"",
		"  Risk assessments are informational and never a medical diagnosis.",
	}
	return m.padPage(lines)
}

func (m Model) renderContact() string {
	lines := []string{
		"",
		"  Questions or data corrections: support@zooportal.example",
	}
	return m.padPage(lines)
}

func (m Model) renderLogin() string {
	mode := "Login"
	if m.registering {
		mode = "Sign up"
	}

	roleLabel := "Patient"
	if m.roleChoice == session.RoleDoctor {
		roleLabel = "Doctor"
	}

	lines := []string{
		"",
		"  " + ui.PanelTitleStyle.Render(mode),
		"",
		"  Username: " + m.usernameIn.View(),
		"  Password: " + m.passwordIn.View(),
		"",
		"  Role: " + ui.SelectedStyle.Render(roleLabel) + ui.DimStyle.Render("  (ctrl+t to switch)"),
	}

	if m.formError != "" {
		lines = append(lines, "", "  "+ui.ErrorTextStyle.Render(m.formError))
	}
	if m.infoMessage != "" {
		lines = append(lines, "", "  "+ui.InfoStyle.Render(m.infoMessage))
	}
	if m.authBusy {
		lines = append(lines, "", "  "+ui.DimStyle.Render("Authenticating..."))
	}
	return m.padPage(lines)
}

func (m Model) renderUpload() string {
	lines := []string{
		"",
		"  " + ui.PanelTitleStyle.Render("Upload a lab report"),
		"",
		"  File: " + m.fileIn.View(),
	}
	if m.formError != "" {
		lines = append(lines, "", "  "+ui.ErrorTextStyle.Render(m.formError))
	}
	if m.uploadBusy {
		lines = append(lines, "", "  "+ui.DimStyle.Render("Uploading and analyzing..."))
	}
	return m.padPage(lines)
}

func (m Model) renderSymptoms() string {
	lines := []string{
		"",
		"  " + ui.PanelTitleStyle.Render("Symptom check"),
		"",
		"  Symptoms (comma-separated): " + m.symptomsIn.View(),
	}
	if m.formError != "" {
		lines = append(lines, "", "  "+ui.ErrorTextStyle.Render(m.formError))
	}
	if m.predictBusy {
		lines = append(lines, "", "  "+ui.DimStyle.Render("Predicting..."))
	}
	if m.prediction != nil {
		lines = append(lines, "")
		lines = append(lines, m.renderReportCard(*m.prediction, m.width-4)...)
	}
	return m.padPage(lines)
}

func (m Model) renderResults() string {
	var lines []string
	lines = append(lines, "", "  "+ui.PanelTitleStyle.Render(fmt.Sprintf("Your reports (%d)", len(m.view.Reports))))

	switch {
	case m.fetching && !m.viewLoaded:
		lines = append(lines, "", "  "+ui.DimStyle.Render("Loading reports..."))
	case len(m.view.Reports) == 0:
		// An empty report list is a valid, displayable state.
		lines = append(lines, "", "  "+ui.DimStyle.Render("No reports found."))
	default:
		for i, r := range m.view.Reports {
			marker := "  "
			if i == m.selectedReport {
				marker = ui.SelectedStyle.Render("> ")
			}
			lines = append(lines, "")
			lines = append(lines, marker+m.renderReportLine(r))
			if i == m.selectedReport {
				lines = append(lines, m.renderReportCard(r, m.width-6)...)
			}
		}
	}
	if m.infoMessage != "" {
		lines = append(lines, "", "  "+ui.InfoStyle.Render(m.infoMessage))
	}
	return m.padPage(lines)
}

func (m Model) renderDashboard() string {
	ownerW := m.ownerPanelWidth()
	reportW := max(30, m.width-ownerW-3)
	contentH := m.contentHeight()

	ownerPanel := m.renderOwnerPanel(ownerW, contentH)
	reportPanel := m.renderGroupPanel(reportW, contentH)

	divider := ui.DividerStyle.Render("│")

	ownerLines := strings.Split(ownerPanel, "\n")
	reportLines := strings.Split(reportPanel, "\n")

	var rows []string
	for i := 0; i < contentH; i++ {
		var left, right string
		if i < len(ownerLines) {
			left = ownerLines[i]
		}
		if i < len(reportLines) {
			right = reportLines[i]
		}
		rows = append(rows, padRight(left, ownerW)+divider+right)
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderOwnerPanel(width, height int) string {
	title := fmt.Sprintf("PATIENTS (%d)", len(m.view.Groups))
	var header string
	if m.ownersFocused {
		header = ui.PanelTitleActiveStyle.Render(title)
	} else {
		header = ui.PanelTitleStyle.Render(title)
	}

	lines := []string{padRight(header, width)}
	lines = append(lines, ui.DimStyle.Render(fmt.Sprintf(" total %d · high risk %d",
		len(m.view.Reports), m.view.HighRisk)))

	if len(m.view.Groups) == 0 {
		if m.fetching && !m.viewLoaded {
			lines = append(lines, ui.DimStyle.Render("  Loading..."))
		} else {
			lines = append(lines, ui.DimStyle.Render("  No patients with reports."))
		}
	}

	for i, g := range m.view.Groups {
		name := g.DisplayName
		if name == "" {
			name = g.OwnerID
		}
		entry := fmt.Sprintf("%s (%d)", name, len(g.Reports))
		if i == m.selectedOwner && m.ownersFocused {
			lines = append(lines, truncateToWidth(ui.SelectedStyle.Render("> "+entry), width))
		} else if i == m.selectedOwner {
			lines = append(lines, truncateToWidth("> "+entry, width))
		} else {
			lines = append(lines, truncateToWidth("  "+entry, width))
		}
	}

	return padPanel(lines, width, height)
}

func (m Model) renderGroupPanel(width, height int) string {
	var header string
	title := "REPORTS"
	if m.selectedOwner < len(m.view.Groups) {
		g := m.view.Groups[m.selectedOwner]
		name := g.DisplayName
		if name == "" {
			name = g.OwnerID
		}
		title = fmt.Sprintf("REPORTS — %s (%d)", name, len(g.Reports))
	}
	if m.ownersFocused {
		header = ui.PanelTitleStyle.Render(title)
	} else {
		header = ui.PanelTitleActiveStyle.Render(title)
	}

	lines := []string{header}

	if m.selectedOwner >= len(m.view.Groups) || len(m.view.Groups[m.selectedOwner].Reports) == 0 {
		lines = append(lines, ui.DimStyle.Render("  No reports for this patient."))
		return padPanel(lines, width, height)
	}

	for i, r := range m.view.Groups[m.selectedOwner].Reports {
		marker := "  "
		if i == m.selectedReport && !m.ownersFocused {
			marker = ui.SelectedStyle.Render("> ")
		}
		lines = append(lines, truncateToWidth(marker+m.renderReportLine(r), width))
		if i == m.selectedReport && !m.ownersFocused {
			for _, cl := range m.renderReportCard(r, width-4) {
				lines = append(lines, truncateToWidth(cl, width))
			}
		}
	}

	return padPanel(lines, width, height)
}

// renderReportLine is the one-line summary used in lists.
func (m Model) renderReportLine(r report.Report) string {
	ts := ""
	if !r.CreatedAt.IsZero() {
		ts = ui.TimestampStyle.Render(r.CreatedAt.Format("2006-01-02 15:04")) + " "
	}
	disease := r.Disease
	if disease == "" {
		disease = "Unknown"
	}
	return ts + disease + " " + riskBadge(r.Risk)
}

// renderReportCard expands one report's details.
func (m Model) renderReportCard(r report.Report, width int) []string {
	var lines []string
	add := func(s string) { lines = append(lines, "    "+s) }

	if r.Result != "" {
		add(ui.DimStyle.Render("Result: ") + r.Result)
	}
	if len(r.CtValues) > 0 {
		var parts []string
		for gene, v := range r.CtValues {
			parts = append(parts, gene+": "+v)
		}
		add(ui.DimStyle.Render("Ct values: ") + strings.Join(parts, ", "))
	}
	if r.Suggestion != nil {
		if r.Suggestion.RiskLevel != "" {
			add(ui.DimStyle.Render("Risk: ") + fmt.Sprintf("%s (%.1f%%)",
				r.Suggestion.RiskLevel, r.Suggestion.RiskProbability*100))
		}
		for _, s := range r.Suggestion.Recommendations {
			for _, wl := range wrapText("• "+s, max(10, width-6)) {
				add(wl)
			}
		}
	}
	if len(r.MatchedSymptoms) > 0 {
		add(ui.DimStyle.Render("Matched symptoms: ") + strings.Join(r.MatchedSymptoms, ", "))
	}
	if r.Source != "" {
		add(ui.DimStyle.Render("Source: ") + r.Source)
	}
	return lines
}

func riskBadge(level report.RiskLevel) string {
	label := "[" + level.String() + "]"
	switch level {
	case report.RiskHigh:
		return ui.RiskHighStyle.Render(label)
	case report.RiskModerate:
		return ui.RiskModerateStyle.Render(label)
	case report.RiskLow:
		return ui.RiskLowStyle.Render(label)
	default:
		return ui.RiskUnknownStyle.Render(label)
	}
}

func (m Model) renderConfirmBar() string {
	var prompt string
	switch m.confirm {
	case confirmOwner:
		if m.page == nav.PageDashboard && m.selectedOwner < len(m.view.Groups) {
			prompt = fmt.Sprintf("Delete ALL reports for %s? This cannot be undone.",
				m.view.Groups[m.selectedOwner].DisplayName)
		} else {
			prompt = "Delete ALL your reports? This cannot be undone."
		}
	case confirmAll:
		prompt = "Delete ALL reports for ALL patients? This cannot be undone."
	}
	return ui.PromptStyle.Render(prompt) + " " + ui.FooterKeyStyle.Render("y") +
		ui.FooterDescStyle.Render("/") + ui.FooterKeyStyle.Render("n")
}

func (m Model) renderErrorBar() string {
	return ui.ErrorStyle.Render("Error: ") + ui.ErrorTextStyle.Render(m.errorMessage)
}

func (m Model) renderFooter() string {
	var parts []string
	key := func(k, desc string) {
		parts = append(parts, ui.FooterKeyStyle.Render(k)+ui.FooterDescStyle.Render(" "+desc))
	}

	switch m.page {
	case nav.PageHome:
		key("l", "Login")
		key("a", "About")
		key("c", "Contact")
		key("q", "Quit")
	case nav.PageLogin:
		key("Enter", "Submit")
		key("Tab", "Field")
		key("ctrl+t", "Role")
		if m.registering {
			key("ctrl+s", "To login")
		} else {
			key("ctrl+s", "To sign up")
		}
		key("Esc", "Back")
	case nav.PageAbout, nav.PageContact:
		key("Esc", "Back")
		key("q", "Quit")
	case nav.PageUpload:
		key("Enter", "Upload")
		key("ctrl+p", "Symptoms")
		key("ctrl+r", "Results")
		key("ctrl+l", "Logout")
	case nav.PageSymptoms:
		key("Enter", "Predict")
		key("Esc", "Clear")
		key("ctrl+u", "Upload")
		key("ctrl+r", "Results")
		key("ctrl+l", "Logout")
	case nav.PageResults:
		key("j/k", "Select")
		key("r", "Refresh")
		key("s", "Download")
		key("d", "Clear all")
		key("ctrl+u", "Upload")
		key("ctrl+l", "Logout")
		key("q", "Quit")
	case nav.PageDashboard:
		key("Tab", "Panel")
		key("j/k", "Select")
		key("r", "Refresh")
		key("d", "Clear patient")
		key("D", "Clear all")
		key("ctrl+l", "Logout")
		key("q", "Quit")
	}

	return strings.Join(parts, "  ")
}

// Layout helpers

func (m Model) contentHeight() int {
	if m.height == 0 {
		return 20
	}
	// Reserve: header(1) + status(1) + divider(1) + confirm/error(1) + footer(1)
	return max(5, m.height-6)
}

func (m Model) ownerPanelWidth() int {
	if m.width == 0 {
		return 30
	}
	return max(20, m.width*30/100)
}

// padPage trims or pads a page body to the content height.
func (m Model) padPage(lines []string) string {
	h := m.contentHeight()
	if len(lines) > h {
		lines = lines[:h]
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func padPanel(lines []string, width, height int) string {
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	for i, l := range lines {
		lines[i] = padRight(l, width)
	}
	return strings.Join(lines, "\n")
}

func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func truncateToWidth(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible <= width {
		return s
	}
	runes := []rune(s)
	if len(runes) > width-1 {
		return string(runes[:width-1]) + "…"
	}
	return s
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var current string
		for _, word := range strings.Fields(paragraph) {
			if current == "" {
				current = word
			} else if len(current)+1+len(word) <= width {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		if current != "" {
			lines = append(lines, current)
		} else {
			lines = append(lines, "")
		}
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
