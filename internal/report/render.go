// Package report renders activity lists and analyses for the terminal.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"

	"runcoach/internal/analysis"
	"runcoach/internal/service"
)

const (
	chartWidth  = 60
	chartHeight = 8
)

// Renderer writes reports in the user's display units
type Renderer struct {
	units Units
	now   func() time.Time
}

// NewRenderer creates a renderer
func NewRenderer(units Units) *Renderer {
	return &Renderer{units: units, now: time.Now}
}

// ActivityList writes the activity list as a table, most recent first.
func (r *Renderer) ActivityList(w io.Writer, activities []service.ActivitySummary) error {
	if len(activities) == 0 {
		_, err := fmt.Fprintln(w, mutedStyle.Render("No activities found."))
		return err
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Activities (%s)", humanize.Comma(int64(len(activities))))))
	b.WriteString("\n")

	rows := [][]string{{"When", "Name", "Distance", "Time", "Grades", "Workout"}}
	for _, a := range activities {
		rows = append(rows, []string{
			r.when(a.StartTime),
			a.Name,
			r.units.FormatDistance(a.DistanceKm * metersPerKm),
			formatDuration(a.DurationSeconds),
			formatGrades(a),
			formatCompliance(a),
		})
	}
	b.WriteString(table(rows))

	_, err := io.WriteString(w, b.String())
	return err
}

// Activity writes the full analysis of one activity.
func (r *Renderer) Activity(w io.Writer, d *service.ActivityDetail) error {
	var b strings.Builder

	sum := d.Summary
	b.WriteString(headerStyle.Render(sum.Name))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%s · %s", r.when(sum.StartTime), d.ID)))
	b.WriteString("\n")

	r.writeSummary(&b, d)
	r.writeGrades(&b, d.Metrics, d.HasRunningDynamics)
	r.writeFatigue(&b, d.Fatigue)
	r.writeCompliance(&b, d.Compliance)
	r.writeStride(&b, d.StrideEfficiency)
	r.writeAerobic(&b, d.AerobicEfficiency)
	r.writeCoaching(&b, d.Coaching)
	r.writeCharts(&b, d.TimeSeries)

	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Renderer) writeSummary(b *strings.Builder, d *service.ActivityDetail) {
	sum := d.Summary
	lines := []string{
		renderMetric("Distance", r.units.FormatDistance(sum.TotalDistance)),
		renderMetric("Time", formatDuration(int(sum.TotalDuration))),
		renderMetric("Avg pace", r.units.FormatPace(sum.AvgPace)),
	}
	if sum.AvgHeartRate != nil {
		lines = append(lines, renderMetric("Avg heart rate", fmt.Sprintf("%.0f bpm", *sum.AvgHeartRate)))
	}
	lines = append(lines, renderMetric("Laps", humanize.Comma(int64(len(d.Laps)))))
	b.WriteString(cardStyle.Render(strings.Join(lines, "\n")))
	b.WriteString("\n")
}

func (r *Renderer) writeGrades(b *strings.Builder, m analysis.SummaryMetrics, hasDynamics bool) {
	section(b, "Running dynamics")
	if !hasDynamics && m.AvgGCT == nil {
		b.WriteString(mutedStyle.Render("No running dynamics recorded for this run"))
		b.WriteString("\n")
	}

	grade := func(label string, gv *analysis.GradeValue, unit string) {
		if gv == nil {
			return
		}
		value := fmt.Sprintf("%.1f%s ", gv.Value, unit)
		b.WriteString(renderMetric(label, value+gradeStyle(gv.Grade).Render(string(gv.Grade))))
		b.WriteString("\n")
	}
	grade("Cadence", m.AvgCadence, " spm")
	grade("Ground contact", m.AvgGCT, " ms")
	grade("GCT balance", m.AvgGCTBalance, "% L")
	grade("Vertical ratio", m.AvgVerticalRatio, "%")
}

func (r *Renderer) writeFatigue(b *strings.Builder, fatigue []analysis.FatigueComparison) {
	if len(fatigue) == 0 {
		return
	}
	section(b, "First half vs second half")

	rows := [][]string{{"Metric", "First", "Second", "Change", ""}}
	for _, f := range fatigue {
		rows = append(rows, []string{
			f.Label,
			fmt.Sprintf("%.1f", f.FirstHalf),
			fmt.Sprintf("%.1f", f.SecondHalf),
			fmt.Sprintf("%+.1f%%", f.Change),
			directionStyle(f.Direction).Render(string(f.Direction)),
		})
	}
	b.WriteString(table(rows))
}

func (r *Renderer) writeCompliance(b *strings.Builder, c *analysis.WorkoutCompliance) {
	if c == nil {
		return
	}
	section(b, "Workout: "+c.WorkoutName)
	if c.WorkoutDescription != "" {
		b.WriteString(mutedStyle.Render(c.WorkoutDescription))
		b.WriteString("\n")
	}

	b.WriteString(renderMetric("Compliance", complianceStyle(c.CompliancePercent).Render(fmt.Sprintf("%d%%", c.CompliancePercent))))
	b.WriteString("\n")
	b.WriteString(renderMetric("Steps", fmt.Sprintf("%d hit · %d fast · %d partial · %d missed · %d no target",
		c.StepsHit, c.StepsFast, c.StepsPartial, c.StepsMissed, c.StepsNoTarget)))
	b.WriteString("\n")
	if c.DistanceStatus != analysis.DistanceUnknown {
		b.WriteString(renderMetric("Distance", fmt.Sprintf("%s of %s (%s)",
			r.units.FormatDistance(c.ActualDistance), r.units.FormatDistance(c.TargetDistance), c.DistanceStatus)))
		b.WriteString("\n")
	}

	rows := [][]string{{"Step", "Target", "Actual", "Laps", "Status"}}
	for _, s := range c.StepBreakdown {
		target := "-"
		if s.PaceTarget != nil {
			target = r.units.FormatPace(s.PaceTarget.Fast) + " - " + r.units.FormatPace(s.PaceTarget.Slow)
		}
		rows = append(rows, []string{
			s.StepType,
			target,
			r.units.FormatPace(s.ActualPace),
			formatLaps(s.LapsUsed),
			statusStyle(s.Status).Render(string(s.Status)),
		})
	}
	b.WriteString(table(rows))
}

func (r *Renderer) writeStride(b *strings.Builder, s analysis.StrideEfficiency) {
	section(b, "Stride efficiency")
	b.WriteString(s.Assessment)
	b.WriteString("\n")
	if s.N >= 2 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("GCT = %.2f × cadence + %.1f  (R² %.2f, n=%s)",
			s.Slope, s.Intercept, s.RSquared, humanize.Comma(int64(s.N)))))
		b.WriteString("\n")
	}
}

func (r *Renderer) writeAerobic(b *strings.Builder, a *analysis.AerobicEfficiency) {
	if a == nil {
		return
	}
	section(b, "Aerobic efficiency")
	fmt.Fprintf(b, "Efficiency factor %.2f  Decoupling %+.1f%%\n", a.EfficiencyFactor, a.Decoupling)
	if a.Assessment != "" {
		b.WriteString(mutedStyle.Render(a.Assessment))
		b.WriteString("\n")
	}
}

func (r *Renderer) writeCoaching(b *strings.Builder, c analysis.CoachingInsights) {
	section(b, "Coaching")
	b.WriteString(c.AtAGlance)
	b.WriteString("\n")
	for _, s := range c.WhatWentWell {
		b.WriteString(goodStyle.Render("+ " + s))
		b.WriteString("\n")
	}
	for _, s := range c.AreasToAddress {
		b.WriteString(warnStyle.Render("- " + s))
		b.WriteString("\n")
	}
	b.WriteString(renderMetric("Focus cue", c.FocusCue))
	b.WriteString("\n")
}

func (r *Renderer) writeCharts(b *strings.Builder, samples []analysis.Sample) {
	chart := func(caption string, pick func(analysis.Sample) *float64) {
		data := downsample(series(samples, pick), chartWidth)
		if len(data) < 2 {
			return
		}
		section(b, caption)
		b.WriteString(asciigraph.Plot(data,
			asciigraph.Height(chartHeight),
			asciigraph.Width(chartWidth),
			asciigraph.Precision(0),
		))
		b.WriteString("\n")
	}
	chart("Cadence (spm)", func(s analysis.Sample) *float64 { return s.Cadence })
	chart("Heart rate (bpm)", func(s analysis.Sample) *float64 { return s.HeartRate })
	chart("Ground contact time (ms)", func(s analysis.Sample) *float64 { return s.GCT })
}

func (r *Renderer) when(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	if r.now().Sub(t) < 7*24*time.Hour {
		return humanize.RelTime(t, r.now(), "ago", "from now")
	}
	return t.Local().Format("Jan 2, 2006")
}

func section(b *strings.Builder, title string) {
	b.WriteString(sectionStyle.Render(title))
	b.WriteString("\n")
}

// table lays out rows in left-aligned columns; the first row is the header.
func table(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	for n, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
		}
		line := strings.TrimRight(strings.Join(cells, "  "), " ")
		if n == 0 {
			line = tableHeaderStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func series(samples []analysis.Sample, pick func(analysis.Sample) *float64) []float64 {
	var out []float64
	for _, s := range samples {
		if v := pick(s); v != nil && !math.IsNaN(*v) {
			out = append(out, *v)
		}
	}
	return out
}

// downsample averages data into at most n buckets.
func downsample(data []float64, n int) []float64 {
	if len(data) <= n {
		return data
	}
	out := make([]float64, n)
	for i := range out {
		lo := i * len(data) / n
		hi := (i + 1) * len(data) / n
		sum := 0.0
		for _, v := range data[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}

func formatDuration(seconds int) string {
	if seconds <= 0 {
		return "-"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func formatGrades(a service.ActivitySummary) string {
	if !a.Analyzed {
		return mutedStyle.Render("not analyzed")
	}
	if a.Grades == nil {
		return "-"
	}
	g := a.Grades
	parts := []string{
		gradeStyle(g.Cadence).Render(string(g.Cadence)),
		gradeStyle(g.GCT).Render(string(g.GCT)),
	}
	if g.GCTBalance != analysis.GradeNone {
		parts = append(parts, gradeStyle(g.GCTBalance).Render(string(g.GCTBalance)))
	}
	if g.VerticalRatio != analysis.GradeNone {
		parts = append(parts, gradeStyle(g.VerticalRatio).Render(string(g.VerticalRatio)))
	}
	return strings.Join(parts, " ")
}

func formatCompliance(a service.ActivitySummary) string {
	if a.CompliancePercent == nil {
		return "-"
	}
	return fmt.Sprintf("%s %s", a.WorkoutName, complianceStyle(*a.CompliancePercent).Render(fmt.Sprintf("%d%%", *a.CompliancePercent)))
}

func formatLaps(laps []int) string {
	if len(laps) == 0 {
		return "-"
	}
	parts := make([]string, len(laps))
	for i, l := range laps {
		parts[i] = fmt.Sprint(l)
	}
	return strings.Join(parts, ",")
}
