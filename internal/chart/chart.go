// Package chart renders one PNG figure per analysis question.
package chart

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/KaramelBytes/shoptrends-cli/internal/analysis"
	"github.com/KaramelBytes/shoptrends-cli/internal/utils"
)

const (
	panelWidth  = 6 * vg.Inch
	panelHeight = 4.5 * vg.Inch
)

// FileName is the figure name for q, e.g. "question3_visualization.png".
func FileName(q analysis.QuestionID) string {
	return q.String() + "_visualization.png"
}

// Render writes a figure for every bundle in res into dir and returns the
// written paths in question order.
func Render(dir string, res *analysis.Results) ([]string, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, err
	}
	var out []string
	for _, b := range res.Bundles {
		plots, err := bundlePlots(b)
		if err != nil {
			return out, fmt.Errorf("%s: %w", b.Question, err)
		}
		path := filepath.Join(dir, FileName(b.Question))
		if err := savePanels(path, plots); err != nil {
			return out, fmt.Errorf("%s: %w", b.Question, err)
		}
		log.Debug().Str("question", b.Question.String()).Str("path", path).Int("panels", len(plots)).Msg("figure written")
		out = append(out, path)
	}
	return out, nil
}

func bundlePlots(b *analysis.Bundle) ([]*plot.Plot, error) {
	var plots []*plot.Plot
	for _, s := range b.Series {
		var (
			p   *plot.Plot
			err error
		)
		if s.Name == "rating_avg_amount" {
			p, err = linePlot(s)
		} else {
			p, err = barPlot(s)
		}
		if err != nil {
			return nil, err
		}
		plots = append(plots, p)
	}
	for _, m := range b.Matrices {
		p, err := groupedBarPlot(m)
		if err != nil {
			return nil, err
		}
		plots = append(plots, p)
	}
	for _, l := range b.Labels {
		p, err := labelPlot(l)
		if err != nil {
			return nil, err
		}
		plots = append(plots, p)
	}
	if len(plots) == 0 {
		return nil, fmt.Errorf("bundle has no metrics")
	}
	return plots, nil
}

func newPlot(title string, keys []string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.NominalX(keys...)
	if len(keys) > 4 {
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}
	return p
}

func barWidth(groups, perGroup int) vg.Length {
	w := vg.Points(240 / float64(max(groups, 1)*max(perGroup, 1)))
	return min(max(w, vg.Points(4)), vg.Points(40))
}

func barPlot(s analysis.Series) (*plot.Plot, error) {
	p := newPlot(s.Title, s.Keys())
	vals := make(plotter.Values, len(s.Points))
	for i, pt := range s.Points {
		vals[i] = pt.Value
	}
	bars, err := plotter.NewBarChart(vals, barWidth(len(vals), 1))
	if err != nil {
		return nil, err
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	return p, nil
}

func linePlot(s analysis.Series) (*plot.Plot, error) {
	p := newPlot(s.Title, s.Keys())
	xys := make(plotter.XYs, len(s.Points))
	for i, pt := range s.Points {
		xys[i] = plotter.XY{X: float64(i), Y: pt.Value}
	}
	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return nil, err
	}
	line.Color = plotutil.Color(1)
	points.Shape = draw.CircleGlyph{}
	points.Color = plotutil.Color(1)
	p.Add(line, points, plotter.NewGrid())
	return p, nil
}

// groupedBarPlot places matrix rows on the x axis with one bar per column key.
func groupedBarPlot(m analysis.Matrix) (*plot.Plot, error) {
	p := newPlot(m.Title, m.Rows)
	p.Y.Min, p.Y.Max = 0, 1
	w := barWidth(len(m.Rows), len(m.Cols))
	for j, col := range m.Cols {
		vals := make(plotter.Values, len(m.Rows))
		for i := range m.Rows {
			vals[i] = m.Values[i][j]
		}
		bars, err := plotter.NewBarChart(vals, w)
		if err != nil {
			return nil, err
		}
		bars.Color = plotutil.Color(j)
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = w * vg.Length(float64(j)-float64(len(m.Cols)-1)/2)
		p.Add(bars)
		p.Legend.Add(col, bars)
	}
	p.Legend.Top = true
	return p, nil
}

// labelPlot draws a unit bar per key annotated with its categorical value.
func labelPlot(l analysis.Labels) (*plot.Plot, error) {
	keys := make([]string, len(l.Entries))
	vals := make(plotter.Values, len(l.Entries))
	xys := make(plotter.XYs, len(l.Entries))
	text := make([]string, len(l.Entries))
	for i, e := range l.Entries {
		keys[i] = e.Key
		vals[i] = 1
		xys[i] = plotter.XY{X: float64(i), Y: 1.05}
		text[i] = e.Value
	}
	p := newPlot(l.Title, keys)
	p.Y.Min, p.Y.Max = 0, 1.3
	p.HideY()
	bars, err := plotter.NewBarChart(vals, barWidth(len(vals), 1))
	if err != nil {
		return nil, err
	}
	bars.Color = plotutil.Color(2)
	bars.LineStyle.Width = vg.Length(0)
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: text})
	if err != nil {
		return nil, err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = draw.XCenter
	}
	p.Add(bars, labels)
	return p, nil
}

// savePanels tiles plots side by side into a single PNG.
func savePanels(path string, plots []*plot.Plot) error {
	if len(plots) == 1 {
		return plots[0].Save(panelWidth, panelHeight, path)
	}
	img := vgimg.New(panelWidth*vg.Length(len(plots)), panelHeight)
	dc := draw.New(img)
	tiles := draw.Tiles{Rows: 1, Cols: len(plots), PadX: vg.Millimeter * 4, PadY: vg.Millimeter * 2}
	canvases := plot.Align([][]*plot.Plot{plots}, tiles, dc)
	for i, p := range plots {
		p.Draw(canvases[0][i])
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
