package clova

import (
	"github.com/DaveLogs/CLOVAOCR2TDS/pkg/bbox"
)

// Request is the JSON carried in the "message" part of a General OCR call
type Request struct {
	Images    []RequestImage `json:"images"`
	RequestID string         `json:"requestId"`
	Version   string         `json:"version"`
	Timestamp int64          `json:"timestamp"`
}

type RequestImage struct {
	Format string `json:"format"`
	Name   string `json:"name"`
}

// Response and related types for General OCR results
type Response struct {
	Version   string  `json:"version"`
	RequestID string  `json:"requestId"`
	Timestamp int64   `json:"timestamp"`
	Images    []Image `json:"images"`
}

type Image struct {
	UID         string  `json:"uid"`
	Name        string  `json:"name"`
	InferResult string  `json:"inferResult"`
	Message     string  `json:"message"`
	Fields      []Field `json:"fields"`
}

type Field struct {
	ValueType       string       `json:"valueType"`
	BoundingPoly    BoundingPoly `json:"boundingPoly"`
	InferText       string       `json:"inferText"`
	InferConfidence float64      `json:"inferConfidence"`
	Type            string       `json:"type"`
	LineBreak       bool         `json:"lineBreak"`
}

type BoundingPoly struct {
	Vertices []bbox.Point `json:"vertices"`
}
