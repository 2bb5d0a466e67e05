package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vorsorge/rentenplan/internal/tui/tuistyles"
)

const yAxisWidth = 10

// DataSeries is one line in a chart
type DataSeries struct {
	Name   string
	Points []float64
	Color  lipgloss.Color
}

// ASCIIChart draws value-by-age lines on a character grid
type ASCIIChart struct {
	Title      string
	Series     []*DataSeries
	Labels     []string // x-axis labels, one per point
	Width      int
	Height     int
	ShowLegend bool
	XAxisLabel string
}

// NewASCIIChart creates a new ASCII chart
func NewASCIIChart(title string) *ASCIIChart {
	return &ASCIIChart{
		Title:      title,
		Width:      60,
		Height:     12,
		ShowLegend: true,
	}
}

// AddSeries adds a data series to the chart
func (c *ASCIIChart) AddSeries(name string, points []float64, color lipgloss.Color) *ASCIIChart {
	c.Series = append(c.Series, &DataSeries{Name: name, Points: points, Color: color})
	return c
}

// WithLabels sets the x-axis labels
func (c *ASCIIChart) WithLabels(labels []string) *ASCIIChart {
	c.Labels = labels
	return c
}

// WithSize sets the chart dimensions
func (c *ASCIIChart) WithSize(width, height int) *ASCIIChart {
	c.Width = width
	c.Height = height
	return c
}

// WithXAxisLabel sets the x-axis caption
func (c *ASCIIChart) WithXAxisLabel(label string) *ASCIIChart {
	c.XAxisLabel = label
	return c
}

// Render returns the styled chart
func (c *ASCIIChart) Render() string {
	if !c.hasData() {
		return tuistyles.InfoStyle.Render("Keine Daten")
	}

	var content strings.Builder
	if c.Title != "" {
		content.WriteString(lipgloss.NewStyle().Bold(true).Foreground(tuistyles.ColorPrimary).Render(c.Title))
		content.WriteString("\n\n")
	}

	lo, hi := c.bounds()
	content.WriteString(c.renderGrid(lo, hi))

	if c.XAxisLabel != "" {
		content.WriteString("\n")
		content.WriteString(lipgloss.NewStyle().Foreground(tuistyles.ColorMuted).Italic(true).Render(c.XAxisLabel))
	}
	if c.ShowLegend && len(c.Series) > 1 {
		content.WriteString("\n")
		content.WriteString(c.renderLegend())
	}

	return content.String()
}

func (c *ASCIIChart) hasData() bool {
	for _, s := range c.Series {
		if len(s.Points) > 0 {
			return true
		}
	}
	return false
}

// bounds returns the padded value range over all series
func (c *ASCIIChart) bounds() (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range c.Series {
		for _, v := range s.Points {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if lo == hi {
		return lo - 1, hi + 1
	}
	pad := (hi - lo) * 0.05
	return lo - pad, hi + pad
}

// Grid builds the raw character grid; exported for tests
func (c *ASCIIChart) Grid() [][]rune {
	lo, hi := c.bounds()
	return c.plot(lo, hi)
}

func (c *ASCIIChart) plot(lo, hi float64) [][]rune {
	width := max(c.Width-yAxisWidth-3, 2)
	height := max(c.Height, 2)

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	col := func(i, n int) int {
		if n <= 1 {
			return 0
		}
		return int(math.Round(float64(i) / float64(n-1) * float64(width-1)))
	}
	row := func(v float64) int {
		return height - 1 - int(math.Round((v-lo)/(hi-lo)*float64(height-1)))
	}

	for idx, s := range c.Series {
		mark := seriesMark(idx)
		for i, v := range s.Points {
			x, y := col(i, len(s.Points)), row(v)
			if i > 0 {
				drawLine(grid, col(i-1, len(s.Points)), row(s.Points[i-1]), x, y)
			}
			if y >= 0 && y < height && x >= 0 && x < width {
				grid[y][x] = mark
			}
		}
	}
	return grid
}

func (c *ASCIIChart) renderGrid(lo, hi float64) string {
	grid := c.plot(lo, hi)
	height := len(grid)
	width := len(grid[0])

	axisStyle := lipgloss.NewStyle().Foreground(tuistyles.ColorMuted).Width(yAxisWidth).Align(lipgloss.Right)

	var out strings.Builder
	for i, r := range grid {
		v := hi - float64(i)/float64(height-1)*(hi-lo)
		out.WriteString(axisStyle.Render(formatChartValue(v)))
		out.WriteString(" │ ")
		out.WriteString(c.colorize(string(r)))
		out.WriteString("\n")
	}
	out.WriteString(strings.Repeat(" ", yAxisWidth))
	out.WriteString(" └")
	out.WriteString(strings.Repeat("─", width+1))

	if len(c.Labels) > 0 {
		out.WriteString("\n")
		out.WriteString(c.renderXAxisLabels(width))
	}
	return out.String()
}

// colorize paints each series mark in its series color
func (c *ASCIIChart) colorize(line string) string {
	var b strings.Builder
	for _, r := range line {
		styled := false
		for idx, s := range c.Series {
			if r == seriesMark(idx) {
				b.WriteString(lipgloss.NewStyle().Foreground(s.Color).Render(string(r)))
				styled = true
				break
			}
		}
		if !styled {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// renderXAxisLabels places the first, middle and last label under the axis
func (c *ASCIIChart) renderXAxisLabels(width int) string {
	line := []rune(strings.Repeat(" ", width+yAxisWidth+3))
	n := len(c.Labels)
	for _, i := range []int{0, n / 2, n - 1} {
		pos := yAxisWidth + 3
		if n > 1 {
			pos += int(math.Round(float64(i) / float64(n-1) * float64(width-1)))
		}
		label := []rune(c.Labels[i])
		if pos+len(label) > len(line) {
			pos = len(line) - len(label)
		}
		copy(line[max(pos, 0):], label)
	}
	return lipgloss.NewStyle().Foreground(tuistyles.ColorMuted).Render(strings.TrimRight(string(line), " "))
}

func (c *ASCIIChart) renderLegend() string {
	items := make([]string, 0, len(c.Series))
	for i, s := range c.Series {
		symbol := lipgloss.NewStyle().Foreground(s.Color).Render(string(seriesMark(i)))
		items = append(items, fmt.Sprintf("%s %s", symbol, s.Name))
	}
	return lipgloss.NewStyle().Foreground(tuistyles.ColorMuted).Render(strings.Join(items, "  "))
}

func seriesMark(index int) rune {
	marks := []rune{'●', '■', '▲', '♦'}
	return marks[index%len(marks)]
}

// drawLine connects two grid points with dots using Bresenham's algorithm
func drawLine(grid [][]rune, x0, y0, x1, y1 int) {
	dx, dy := abs(x1-x0), abs(y1-y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for x, y := x0, y0; ; {
		if y >= 0 && y < len(grid) && x >= 0 && x < len(grid[y]) && grid[y][x] == ' ' {
			grid[y][x] = '·'
		}
		if x == x1 && y == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

// formatChartValue abbreviates an axis value in euros
func formatChartValue(v float64) string {
	switch {
	case math.Abs(v) >= 1e6:
		return strings.Replace(fmt.Sprintf("%.1f Mio €", v/1e6), ".", ",", 1)
	case math.Abs(v) >= 1e3:
		return fmt.Sprintf("%.0f T€", v/1e3)
	default:
		return fmt.Sprintf("%.0f €", v)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
