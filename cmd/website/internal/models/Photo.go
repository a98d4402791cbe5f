package models

/*
PhotoCard is the short form of a photo used in lists.
*/
type PhotoCard struct {
	ID         int
	Title      string
	Filename   string
	Resolution string
	IsPublic   bool
	ImageURL   string
}

/*
PhotoDetail is everything the photo page shows, already formatted.
*/
type PhotoDetail struct {
	ID          int
	OwnerID     int
	Title       string
	Description string
	Filename    string
	Date        string
	Resolution  string
	Tags        []string
	AlbumNames  string
	IsPublic    bool
	Visibility  string
	ImageURL    string
	Comments    []Comment
}

type Comment struct {
	UserName  string
	Text      string
	CreatedAt string
}
