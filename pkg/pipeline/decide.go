package pipeline

import (
	"image"

	"github.com/DaveLogs/CLOVAOCR2TDS/pkg/bbox"
	"github.com/DaveLogs/CLOVAOCR2TDS/pkg/dataset"
	"github.com/DaveLogs/CLOVAOCR2TDS/pkg/providers"
)

// Outcome is the filter decision for one field.
type Outcome int

const (
	Accepted Outcome = iota
	Rejected
	InvalidPolygon
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	case InvalidPolygon:
		return "invalid_polygon"
	default:
		return "unknown"
	}
}

// Decision is the computed fate of a single field. Index is the field's
// position in the recognition result and names its crop.
type Decision struct {
	Index   int
	Label   string
	Box     bbox.Box
	Outcome Outcome
	Err     error
}

// Decide bounds and filters every field of one image without touching the
// filesystem. The crop emitter and the annotation builder are both driven
// from the returned decisions. A box that passes the size filter but lies
// completely outside bounds is rejected, since it would produce an empty crop.
func Decide(fields []providers.Field, minSize float64, bounds image.Rectangle, norm dataset.Normalization) []Decision {
	decisions := make([]Decision, 0, len(fields))
	for i, field := range fields {
		d := Decision{
			Index: i,
			Label: dataset.SanitizeLabel(norm.Apply(field.Text)),
		}

		box, err := bbox.ComputeBoundingBox(field.Polygon)
		switch {
		case err != nil:
			d.Outcome = InvalidPolygon
			d.Err = err
		case !bbox.IsAcceptable(box, minSize):
			d.Box = box
			d.Outcome = Rejected
		case box.Rect(bounds).Empty():
			d.Box = box
			d.Outcome = Rejected
		default:
			d.Box = box
			d.Outcome = Accepted
		}

		decisions = append(decisions, d)
	}
	return decisions
}
