package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"petmatch/internal/models"
)

type ImageRepositoryImpl struct {
	db *sqlx.DB
}

func NewImageRepository(db *sqlx.DB) *ImageRepositoryImpl {
	return &ImageRepositoryImpl{db: db}
}

// RepresentativeImagePath returns the path of the lowest numbered image of a
// post. ErrNotFound means the post has no images.
func (r *ImageRepositoryImpl) RepresentativeImagePath(ctx context.Context, postID int64, postType models.PostType) (string, error) {
	_, imageTable, err := tablesFor(postType)
	if err != nil {
		return "", err
	}

	query := fmt.Sprintf(`SELECT image_path FROM %s WHERE post_id = $1 ORDER BY image_id LIMIT 1`, imageTable)

	var path string
	err = r.db.GetContext(ctx, &path, query, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("image of %s post %d: %w", postType, postID, ErrNotFound)
		}
		return "", fmt.Errorf("failed to get representative image: %w", err)
	}

	return path, nil
}
