package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"petmatch/internal/models"
)

var (
	// ErrNotFound is returned when a looked-up row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when an insert hits a unique constraint.
	ErrConflict = errors.New("already exists")
)

// ImageAttacher stores the uploaded images of a freshly inserted post and
// returns the rows to record. It runs inside the post's transaction.
type ImageAttacher func(ctx context.Context, postID int64) ([]models.PostImage, error)

type PostRepository interface {
	CreateLost(ctx context.Context, post *models.Post, attach ImageAttacher) error
	CreateFound(ctx context.Context, post *models.Post, reward int, attach ImageAttacher) error
	GetByID(ctx context.Context, postID int64, postType models.PostType) (*models.Post, error)
	PostType(ctx context.Context, postID int64) (models.PostType, error)
	LostPostOwner(ctx context.Context, postID int64) (int64, *int64, error)
	FoundPostOwner(ctx context.Context, postID int64) (int64, error)
	FoundPostLocation(ctx context.Context, postID int64) (string, error)
	LostPostByAnimal(ctx context.Context, animalID int64) (int64, error)
	DeleteLost(ctx context.Context, postID int64) ([]string, error)
	DeleteFound(ctx context.Context, postID int64) ([]string, error)
}

type ImageRepository interface {
	RepresentativeImagePath(ctx context.Context, postID int64, postType models.PostType) (string, error)
}

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	MatchedPostsForAnimal(ctx context.Context, animalID int64) ([]models.MatchedPost, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, userID int64) (*models.User, error)
	NotificationToken(ctx context.Context, userID int64) (string, error)
	UpdateNotificationToken(ctx context.Context, userID int64, token string) error
}

type AnimalRepository interface {
	Create(ctx context.Context, animal *models.Animal) error
	ListByUser(ctx context.Context, userID int64) ([]models.Animal, error)
	Name(ctx context.Context, animalID int64) (string, error)
}

type Repository struct {
	Post   PostRepository
	Image  ImageRepository
	Match  MatchRepository
	User   UserRepository
	Animal AnimalRepository
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		Post:   NewPostRepository(db),
		Image:  NewImageRepository(db),
		Match:  NewMatchRepository(db),
		User:   NewUserRepository(db),
		Animal: NewAnimalRepository(db),
	}
}

// tablesFor returns the post and image tables holding posts of the given type.
func tablesFor(postType models.PostType) (string, string, error) {
	switch postType {
	case models.PostTypeLost:
		return "lost_posts", "lost_post_images", nil
	case models.PostTypeFound:
		return "found_posts", "found_post_images", nil
	}
	return "", "", fmt.Errorf("unknown post type %q", postType)
}

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

const (
	codeForeignKeyViolation pq.ErrorCode = "23503"
	codeUniqueViolation     pq.ErrorCode = "23505"
)
