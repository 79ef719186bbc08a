package models

import "time"

// FileInfo represents metadata about an exported file.
type FileInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	DrawingID string    `json:"drawingId"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
	Status    string    `json:"status"` // "exported", "error"
}
