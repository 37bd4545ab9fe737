package trend

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PNGRenderer writes each chart to <Dir>/<city>_trend.png.
type PNGRenderer struct {
	Dir string
	// LastPath is the file written by the most recent Render call.
	LastPath string
}

// NewPNGRenderer creates a renderer writing into dir.
func NewPNGRenderer(dir string) *PNGRenderer {
	return &PNGRenderer{Dir: dir}
}

// Path returns the file a city's chart is written to.
func (r *PNGRenderer) Path(city string) string {
	safe := strings.NewReplacer("/", "_", `\`, "_").Replace(city)
	return filepath.Join(r.Dir, safe+"_trend.png")
}

func (r *PNGRenderer) Render(chart Chart) error {
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}

	path := r.Path(chart.City)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePNG(f, chart); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	r.LastPath = path
	return nil
}

// WritePNG draws time against temperature as a line chart and encodes it as PNG.
func WritePNG(w io.Writer, chart Chart) error {
	p := plot.New()
	p.Title.Text = chart.Title()
	p.X.Label.Text = "Time"
	p.Y.Label.Text = "Temperature (°C)"
	p.X.Tick.Marker = plot.TimeTicks{Format: "01-02\n15:04"}
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(chart.Points))
	for i, pt := range chart.Points {
		pts[i].X = float64(pt.Time.Unix())
		pts[i].Y = pt.TemperatureC
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("build line: %w", err)
	}
	line.Color = color.RGBA{B: 255, A: 255}
	p.Add(line)
	p.Legend.Add("Temperature (°C)", line)

	wt, err := p.WriterTo(10*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("encode chart: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}
