package models

import (
	"strings"
)

type Album struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

/*
NameMatches compares album names the way lookups do: case-insensitive.
*/
func (a Album) NameMatches(name string) bool {
	return strings.EqualFold(a.Name, strings.TrimSpace(name))
}
