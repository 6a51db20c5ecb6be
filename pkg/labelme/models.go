package labelme

// Version is the LabelMe release whose schema the documents follow
const Version = "4.5.9"

// ShapeRectangle is the only shape type produced
const ShapeRectangle = "rectangle"

// Document is a LabelMe annotation file. Field order matches the files
// LabelMe itself writes.
type Document struct {
	Version     string         `json:"version"`
	ShapeType   string         `json:"shape_type"`
	Flags       map[string]any `json:"flags"`
	Shapes      []Shape        `json:"shapes"`
	ImagePath   string         `json:"imagePath"`
	ImageData   *string        `json:"imageData"`
	ImageHeight int            `json:"imageHeight"`
	ImageWidth  int            `json:"imageWidth"`
}

// Shape is one labeled rectangle given by its top-left and bottom-right corners
type Shape struct {
	Label     string         `json:"label"`
	Points    [][2]float64   `json:"points"`
	GroupID   *int           `json:"group_id"`
	ShapeType string         `json:"shape_type"`
	Flags     map[string]any `json:"flags"`
}
