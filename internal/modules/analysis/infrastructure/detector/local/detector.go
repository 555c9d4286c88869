package local

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/saransh1220/snaplabel/internal/modules/analysis/domain"
	_ "golang.org/x/image/webp" // register the WebP decoder
)

// Detector derives labels from pixel statistics without any external
// service: orientation, dominant colour, brightness and monochrome. It is
// meant for development and offline runs.
type Detector struct {
	images domain.ObjectReader
}

func New(images domain.ObjectReader) *Detector {
	return &Detector{images: images}
}

func (d *Detector) Name() string { return "local" }

type namedColor struct {
	name string
	c    color.NRGBA
}

var palette = []namedColor{
	{"Black", color.NRGBA{0, 0, 0, 255}},
	{"White", color.NRGBA{255, 255, 255, 255}},
	{"Gray", color.NRGBA{128, 128, 128, 255}},
	{"Red", color.NRGBA{220, 20, 20, 255}},
	{"Orange", color.NRGBA{255, 140, 0, 255}},
	{"Yellow", color.NRGBA{240, 220, 30, 255}},
	{"Green", color.NRGBA{40, 160, 40, 255}},
	{"Blue", color.NRGBA{30, 80, 220, 255}},
	{"Purple", color.NRGBA{130, 50, 180, 255}},
	{"Pink", color.NRGBA{245, 150, 190, 255}},
	{"Brown", color.NRGBA{130, 80, 40, 255}},
}

// maxDistance is the distance between black and white in RGB space.
var maxDistance = math.Sqrt(3 * 255 * 255)

func (d *Detector) DetectLabels(ctx context.Context, req domain.DetectRequest) ([]domain.Label, error) {
	data, err := d.images.ReadAll(ctx, req.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnsupportedImage, err)
	}

	return domain.RankLabels(Labels(img), req.MaxLabels, req.MinConfidence), nil
}

// Labels computes the unfiltered labels for img.
func Labels(img image.Image) []domain.Label {
	var labels []domain.Label

	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	switch {
	case w > h*1.1:
		labels = append(labels, domain.Label{Name: "Landscape", Confidence: 99})
	case h > w*1.1:
		labels = append(labels, domain.Label{Name: "Portrait", Confidence: 99})
	default:
		labels = append(labels, domain.Label{Name: "Square", Confidence: 99})
	}

	avg := imaging.Resize(img, 1, 1, imaging.Box).NRGBAAt(0, 0)

	name, dist := nearest(avg)
	labels = append(labels, domain.Label{Name: name, Confidence: round(100 * (1 - dist/maxDistance))})

	luma := (0.299*float64(avg.R) + 0.587*float64(avg.G) + 0.114*float64(avg.B)) / 255 * 100
	switch {
	case luma >= 60:
		labels = append(labels, domain.Label{Name: "Bright", Confidence: round(luma)})
	case luma <= 40:
		labels = append(labels, domain.Label{Name: "Dark", Confidence: round(100 - luma)})
	}

	if sat := meanSaturation(imaging.Thumbnail(img, 32, 32, imaging.Box)); sat < 0.1 {
		labels = append(labels, domain.Label{Name: "Monochrome", Confidence: round(100 * (1 - sat/0.1))})
	}

	return labels
}

func nearest(c color.NRGBA) (string, float64) {
	best, bestDist := "", math.MaxFloat64
	for _, p := range palette {
		dr := float64(c.R) - float64(p.c.R)
		dg := float64(c.G) - float64(p.c.G)
		db := float64(c.B) - float64(p.c.B)
		if dist := math.Sqrt(dr*dr + dg*dg + db*db); dist < bestDist {
			best, bestDist = p.name, dist
		}
	}
	return best, bestDist
}

// meanSaturation returns the average HSV saturation in [0, 1].
func meanSaturation(img *image.NRGBA) float64 {
	b := img.Bounds()
	n := b.Dx() * b.Dy()
	if n == 0 {
		return 0
	}
	var total float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			hi := max(c.R, c.G, c.B)
			lo := min(c.R, c.G, c.B)
			if hi > 0 {
				total += float64(hi-lo) / float64(hi)
			}
		}
	}
	return total / float64(n)
}

func round(f float64) float64 {
	return math.Round(f*100) / 100
}
