package cad

import "github.com/pid-digitizer/backend/internal/models"

// Paper is a sheet size in millimeters, landscape.
type Paper struct {
	Size   models.PaperSize `json:"size"`
	Width  float64          `json:"width"`
	Height float64          `json:"height"`
}

var paperTable = []Paper{
	{Size: models.PaperA0, Width: 1189, Height: 841},
	{Size: models.PaperA1, Width: 841, Height: 594},
	{Size: models.PaperA2, Width: 594, Height: 420},
	{Size: models.PaperA3, Width: 420, Height: 297},
	{Size: models.PaperA4, Width: 297, Height: 210},
}

// PaperDimensions looks up a sheet size. Unknown sizes are a ConfigurationError.
func PaperDimensions(size models.PaperSize) (Paper, error) {
	for _, p := range paperTable {
		if p.Size == size {
			return p, nil
		}
	}
	return Paper{}, &ConfigurationError{Field: "paper size", Value: string(size)}
}

// PaperSizes lists the supported sheets from largest to smallest.
func PaperSizes() []Paper {
	out := make([]Paper, len(paperTable))
	copy(out, paperTable)
	return out
}
