package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/vaultmcp/internal/index"
	"github.com/starford/vaultmcp/internal/noteservice"
	"github.com/starford/vaultmcp/internal/search"
)

// AppendRequest is the request body for appending to a note.
type AppendRequest struct {
	Filename string `json:"filename" example:"inbox"`
	Content  string `json:"content" example:"- [ ] call back"`
}

func (r AppendRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Filename, validation.Required),
	)
}

// PatchRequest is the request body for a structural patch.
type PatchRequest struct {
	Filepath   string `json:"filepath" example:"projects/plan.md"`
	Operation  string `json:"operation" example:"append" enums:"prepend,append,replace"`
	TargetType string `json:"target_type" example:"heading" enums:"heading,block,frontmatter,text"`
	Target     string `json:"target" example:"Tasks"`
	Content    string `json:"content" example:"- [ ] new"`
}

func (r PatchRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Filepath, validation.Required),
		validation.Field(&r.Operation, validation.Required),
		validation.Field(&r.TargetType, validation.Required),
		validation.Field(&r.Target, validation.Required),
	)
}

// DeleteLinesRequest is the request body for removing a line range.
type DeleteLinesRequest struct {
	Filepath  string `json:"filepath" example:"projects/plan.md"`
	StartLine int    `json:"start_line" example:"3"`
	EndLine   int    `json:"end_line" example:"5"`
}

func (r DeleteLinesRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Filepath, validation.Required),
		validation.Field(&r.StartLine, validation.Required, validation.Min(1)),
		validation.Field(&r.EndLine, validation.Required, validation.Min(r.StartLine)),
	)
}

// WriteResponse reports the vault path an edit was written to.
type WriteResponse struct {
	Path string `json:"path" example:"projects/plan.md"`
}

// FileListResponse wraps a directory listing.
type FileListResponse struct {
	Files []string `json:"files"`
}

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = noteservice.NoteDetail

// FileSearchResponse wraps fuzzy path hits.
type FileSearchResponse struct {
	Results []search.FileHit `json:"results"`
}

// ContentSearchResponse wraps fuzzy line hits.
type ContentSearchResponse struct {
	Results []search.LineHit `json:"results"`
}

// IndexSearchResponse wraps full-text hits.
type IndexSearchResponse struct {
	Results []index.SearchResult `json:"results"`
}
