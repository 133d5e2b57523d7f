package entity

import "time"

type Genre struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

type Artist struct {
	ID        string
	Name      string
	Bio       string
	ImageKey  string
	Followers int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Song metadata. AudioKey and ImageKey are object-store keys.
type Song struct {
	ID         string
	Title      string
	ArtistID   string
	ArtistName string
	GenreID    string
	GenreName  string
	Duration   int // seconds
	AudioKey   string
	ImageKey   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
