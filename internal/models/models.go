package models

import (
	"database/sql"
	"fmt"
	"time"
)

// PostType discriminates lost reports from found reports.
type PostType string

const (
	PostTypeLost  PostType = "lost"
	PostTypeFound PostType = "found"
)

func ParsePostType(s string) (PostType, error) {
	switch PostType(s) {
	case PostTypeLost, PostTypeFound:
		return PostType(s), nil
	}
	return "", fmt.Errorf("unknown post type %q", s)
}

// Opposite returns the type a match partner must have.
func (t PostType) Opposite() PostType {
	if t == PostTypeLost {
		return PostTypeFound
	}
	return PostTypeLost
}

func (t PostType) Valid() bool {
	return t == PostTypeLost || t == PostTypeFound
}

type AnimalState string

const (
	AnimalStateHome AnimalState = "home"
	AnimalStateLost AnimalState = "lost"
)

type User struct {
	UserID            int64          `json:"userId" db:"user_id"`
	Username          string         `json:"username" db:"username"`
	Email             string         `json:"email" db:"email"`
	NotificationToken sql.NullString `json:"-" db:"notification_token"`
	Points            int            `json:"points" db:"points"`
}

type Animal struct {
	AnimalID       int64       `json:"animalId" db:"animal_id"`
	UserID         int64       `json:"userId" db:"user_id"`
	Name           string      `json:"name" db:"name"`
	Breed          string      `json:"breed" db:"breed"`
	Color          string      `json:"color" db:"color"`
	ProminentPoint string      `json:"prominentPoint" db:"prominent_point"`
	State          AnimalState `json:"state" db:"state"`
}

// Post is a lost or found sighting report. AnimalID is only set on lost posts.
type Post struct {
	PostID         int64           `json:"postId" db:"post_id"`
	Type           PostType        `json:"postType" db:"-"`
	UserID         int64           `json:"userId" db:"user_id"`
	AnimalID       sql.NullInt64   `json:"-" db:"animal_id"`
	Location       string          `json:"location" db:"location"`
	Time           time.Time       `json:"time" db:"time"`
	Breed          string          `json:"breed" db:"breed"`
	Color          string          `json:"color" db:"color"`
	ProminentPoint string          `json:"prominentPoint" db:"prominent_point"`
	Latitude       sql.NullFloat64 `json:"-" db:"latitude"`
	Longitude      sql.NullFloat64 `json:"-" db:"longitude"`
	Images         []PostImage     `json:"images" db:"-"`
}

type PostImage struct {
	ImageID   int64  `json:"imageId" db:"image_id"`
	PostID    int64  `json:"postId" db:"post_id"`
	ImagePath string `json:"imagePath" db:"image_path"`
}

// ImageID builds the image identifier: the post id followed by a two digit
// sequence number starting at 1.
func ImageID(postID int64, seq int) int64 {
	return postID*100 + int64(seq)
}

// Match pairs a lost post with a found post. Lower distance means more similar.
type Match struct {
	LostPostID  int64   `json:"lostPostId" db:"lost_post_id"`
	FoundPostID int64   `json:"foundPostId" db:"found_post_id"`
	Distance    float64 `json:"distance" db:"distance"`
}

// MatchedPost is a found post returned for an animal's lost reports.
type MatchedPost struct {
	FoundPostID    int64           `json:"foundPostId" db:"found_post_id"`
	Distance       float64         `json:"distance" db:"distance"`
	UserID         int64           `json:"userId" db:"user_id"`
	Location       string          `json:"location" db:"location"`
	Time           time.Time       `json:"time" db:"time"`
	Breed          string          `json:"breed" db:"breed"`
	Color          string          `json:"color" db:"color"`
	ProminentPoint string          `json:"prominentPoint" db:"prominent_point"`
	Latitude       sql.NullFloat64 `json:"-" db:"latitude"`
	Longitude      sql.NullFloat64 `json:"-" db:"longitude"`
	Images         []string        `json:"images" db:"-"`
}
