package models

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

type Photo struct {
	ID          int       `json:"id"`
	OwnerID     int       `json:"owner"`
	Filename    string    `json:"filename"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Resolution  string    `json:"resolution"`
	Tags        []string  `json:"tags"`
	Albums      []int     `json:"albums"`
	IsPublic    bool      `json:"isPublic"`
	Comments    []Comment `json:"comments"`
}

type Comment struct {
	UserID    int       `json:"userId"`
	UserName  string    `json:"userName"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

func (p Photo) HasTag(tag string) bool {
	return slices.Contains(p.Tags, tag)
}

func (p Photo) InAlbum(albumID int) bool {
	return slices.Contains(p.Albums, albumID)
}

func (p Photo) Validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("%w: photo id must be a positive number", ErrValidation)
	}

	if p.OwnerID <= 0 {
		return fmt.Errorf("%w: photo %d has no owner", ErrValidation, p.ID)
	}

	if strings.TrimSpace(p.Filename) == "" {
		return fmt.Errorf("%w: photo %d has no filename", ErrValidation, p.ID)
	}

	seen := map[string]struct{}{}

	for _, tag := range p.Tags {
		if _, ok := seen[tag]; ok {
			return fmt.Errorf("%w: photo %d has duplicate tag '%s'", ErrValidation, p.ID, tag)
		}

		seen[tag] = struct{}{}
	}

	return nil
}

/*
VisibilityFromString maps the literal "public" to true. Every other value,
including "Public", is private.
*/
func VisibilityFromString(visibility string) bool {
	return visibility == "public"
}
