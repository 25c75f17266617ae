package document

import "time"

// Document is the uploaded text a client asks questions about. One document
// lives per slot; a new upload to the same slot replaces it.
type Document struct {
	Content    string    `json:"content,omitempty"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Size is the document length in characters, the way clients count it.
func (d *Document) Size() int {
	return len([]rune(d.Content))
}
