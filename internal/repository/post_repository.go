package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"petmatch/internal/models"
)

type PostRepositoryImpl struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) *PostRepositoryImpl {
	return &PostRepositoryImpl{db: db}
}

// CreateLost inserts a lost post with its images and marks the animal as lost
// in a single transaction.
func (r *PostRepositoryImpl) CreateLost(ctx context.Context, post *models.Post, attach ImageAttacher) error {
	query := `
		INSERT INTO lost_posts (user_id, animal_id, location, time, breed, color, prominent_point, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING post_id
	`

	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, query,
			post.UserID, post.AnimalID, post.Location, post.Time, post.Breed, post.Color,
			post.ProminentPoint, post.Latitude, post.Longitude,
		).Scan(&post.PostID)
		if err != nil {
			return fmt.Errorf("failed to create lost post: %w", err)
		}
		post.Type = models.PostTypeLost

		if err := r.insertImages(ctx, tx, post, attach); err != nil {
			return err
		}

		if post.AnimalID.Valid {
			_, err = tx.ExecContext(ctx, `UPDATE animals SET state = $1 WHERE animal_id = $2`,
				models.AnimalStateLost, post.AnimalID.Int64)
			if err != nil {
				return fmt.Errorf("failed to mark animal as lost: %w", err)
			}
		}

		return nil
	})
}

// CreateFound inserts a found post with its images and credits the reporter
// with reward points in a single transaction.
func (r *PostRepositoryImpl) CreateFound(ctx context.Context, post *models.Post, reward int, attach ImageAttacher) error {
	query := `
		INSERT INTO found_posts (user_id, location, time, breed, color, prominent_point, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING post_id
	`

	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, query,
			post.UserID, post.Location, post.Time, post.Breed, post.Color,
			post.ProminentPoint, post.Latitude, post.Longitude,
		).Scan(&post.PostID)
		if err != nil {
			return fmt.Errorf("failed to create found post: %w", err)
		}
		post.Type = models.PostTypeFound

		if err := r.insertImages(ctx, tx, post, attach); err != nil {
			return err
		}

		if reward > 0 {
			_, err = tx.ExecContext(ctx, `UPDATE users SET points = points + $1 WHERE user_id = $2`,
				reward, post.UserID)
			if err != nil {
				return fmt.Errorf("failed to credit reward points: %w", err)
			}
		}

		return nil
	})
}

func (r *PostRepositoryImpl) insertImages(ctx context.Context, tx *sqlx.Tx, post *models.Post, attach ImageAttacher) error {
	if attach == nil {
		return nil
	}

	_, imageTable, err := tablesFor(post.Type)
	if err != nil {
		return err
	}

	images, err := attach(ctx, post.PostID)
	if err != nil {
		return fmt.Errorf("failed to store post images: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (post_id, image_id, image_path) VALUES ($1, $2, $3)`, imageTable)
	for _, image := range images {
		if _, err := tx.ExecContext(ctx, query, post.PostID, image.ImageID, image.ImagePath); err != nil {
			return fmt.Errorf("failed to save post image: %w", err)
		}
	}

	post.Images = images
	return nil
}

func (r *PostRepositoryImpl) GetByID(ctx context.Context, postID int64, postType models.PostType) (*models.Post, error) {
	postTable, imageTable, err := tablesFor(postType)
	if err != nil {
		return nil, err
	}

	var post models.Post
	err = r.db.GetContext(ctx, &post, fmt.Sprintf(`SELECT * FROM %s WHERE post_id = $1`, postTable), postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s post %d: %w", postType, postID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	post.Type = postType

	err = r.db.SelectContext(ctx, &post.Images,
		fmt.Sprintf(`SELECT image_id, post_id, image_path FROM %s WHERE post_id = $1 ORDER BY image_id`, imageTable), postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get post images: %w", err)
	}

	return &post, nil
}

// PostType reports which table holds postID.
func (r *PostRepositoryImpl) PostType(ctx context.Context, postID int64) (models.PostType, error) {
	query := `
		SELECT 'lost' AS post_type FROM lost_posts WHERE post_id = $1
		UNION ALL
		SELECT 'found' AS post_type FROM found_posts WHERE post_id = $1
		LIMIT 1
	`

	var postType string
	err := r.db.GetContext(ctx, &postType, query, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("post %d: %w", postID, ErrNotFound)
		}
		return "", fmt.Errorf("failed to resolve post type: %w", err)
	}

	return models.PostType(postType), nil
}

// LostPostOwner returns the owner of a lost post and the animal it reports, if any.
func (r *PostRepositoryImpl) LostPostOwner(ctx context.Context, postID int64) (int64, *int64, error) {
	var row struct {
		UserID   int64         `db:"user_id"`
		AnimalID sql.NullInt64 `db:"animal_id"`
	}

	err := r.db.GetContext(ctx, &row, `SELECT user_id, animal_id FROM lost_posts WHERE post_id = $1`, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil, fmt.Errorf("lost post %d: %w", postID, ErrNotFound)
		}
		return 0, nil, fmt.Errorf("failed to get lost post owner: %w", err)
	}

	if !row.AnimalID.Valid {
		return row.UserID, nil, nil
	}
	animalID := row.AnimalID.Int64
	return row.UserID, &animalID, nil
}

func (r *PostRepositoryImpl) FoundPostOwner(ctx context.Context, postID int64) (int64, error) {
	var userID int64
	err := r.db.GetContext(ctx, &userID, `SELECT user_id FROM found_posts WHERE post_id = $1`, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("found post %d: %w", postID, ErrNotFound)
		}
		return 0, fmt.Errorf("failed to get found post owner: %w", err)
	}

	return userID, nil
}

func (r *PostRepositoryImpl) FoundPostLocation(ctx context.Context, postID int64) (string, error) {
	var location sql.NullString
	err := r.db.GetContext(ctx, &location, `SELECT location FROM found_posts WHERE post_id = $1`, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("found post %d: %w", postID, ErrNotFound)
		}
		return "", fmt.Errorf("failed to get found post location: %w", err)
	}

	return location.String, nil
}

func (r *PostRepositoryImpl) LostPostByAnimal(ctx context.Context, animalID int64) (int64, error) {
	var postID int64
	err := r.db.GetContext(ctx, &postID,
		`SELECT post_id FROM lost_posts WHERE animal_id = $1 ORDER BY post_id LIMIT 1`, animalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("lost post for animal %d: %w", animalID, ErrNotFound)
		}
		return 0, fmt.Errorf("failed to find lost post: %w", err)
	}

	return postID, nil
}

// DeleteLost removes a lost post and its images, returning the animal to its
// home state. The stored image paths are returned for object cleanup.
func (r *PostRepositoryImpl) DeleteLost(ctx context.Context, postID int64) ([]string, error) {
	var paths []string

	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		var animalID sql.NullInt64
		err := tx.GetContext(ctx, &animalID, `SELECT animal_id FROM lost_posts WHERE post_id = $1`, postID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("lost post %d: %w", postID, ErrNotFound)
			}
			return fmt.Errorf("failed to get lost post: %w", err)
		}

		if animalID.Valid {
			_, err = tx.ExecContext(ctx, `UPDATE animals SET state = $1 WHERE animal_id = $2`,
				models.AnimalStateHome, animalID.Int64)
			if err != nil {
				return fmt.Errorf("failed to return animal home: %w", err)
			}
		}

		paths, err = deletePostRows(ctx, tx, postID, "lost_posts", "lost_post_images")
		return err
	})
	if err != nil {
		return nil, err
	}

	return paths, nil
}

func (r *PostRepositoryImpl) DeleteFound(ctx context.Context, postID int64) ([]string, error) {
	var paths []string

	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		paths, err = deletePostRows(ctx, tx, postID, "found_posts", "found_post_images")
		return err
	})
	if err != nil {
		return nil, err
	}

	return paths, nil
}

func deletePostRows(ctx context.Context, tx *sqlx.Tx, postID int64, postTable, imageTable string) ([]string, error) {
	var paths []string
	err := tx.SelectContext(ctx, &paths,
		fmt.Sprintf(`SELECT image_path FROM %s WHERE post_id = $1 ORDER BY image_id`, imageTable), postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list post images: %w", err)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE post_id = $1`, imageTable), postID); err != nil {
		return nil, fmt.Errorf("failed to delete post images: %w", err)
	}

	result, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE post_id = $1`, postTable), postID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check deleted rows: %w", err)
	}

	if rowsAffected == 0 {
		return nil, fmt.Errorf("post %d: %w", postID, ErrNotFound)
	}

	return paths, nil
}

func (r *PostRepositoryImpl) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
