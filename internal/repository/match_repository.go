package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"petmatch/internal/models"
)

type MatchRepositoryImpl struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepositoryImpl {
	return &MatchRepositoryImpl{db: db}
}

func (r *MatchRepositoryImpl) Create(ctx context.Context, match *models.Match) error {
	query := `INSERT INTO matches (lost_post_id, found_post_id, distance) VALUES ($1, $2, $3)`

	_, err := r.db.ExecContext(ctx, query, match.LostPostID, match.FoundPostID, match.Distance)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}

	return nil
}

// MatchedPostsForAnimal lists the found posts matched against any lost post of
// the animal, closest first.
func (r *MatchRepositoryImpl) MatchedPostsForAnimal(ctx context.Context, animalID int64) ([]models.MatchedPost, error) {
	query := `
		SELECT m.found_post_id, m.distance,
		       f.user_id, f.location, f.time, f.breed, f.color, f.prominent_point, f.latitude, f.longitude,
		       COALESCE(array_agg(fi.image_path ORDER BY fi.image_id) FILTER (WHERE fi.image_path IS NOT NULL), '{}') AS images
		FROM matches m
		JOIN lost_posts l ON l.post_id = m.lost_post_id
		JOIN found_posts f ON f.post_id = m.found_post_id
		LEFT JOIN found_post_images fi ON fi.post_id = f.post_id
		WHERE l.animal_id = $1
		GROUP BY m.match_id, m.found_post_id, m.distance, f.post_id
		ORDER BY m.distance ASC
	`

	var rows []struct {
		models.MatchedPost
		Images pq.StringArray `db:"images"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, animalID); err != nil {
		return nil, fmt.Errorf("failed to get matched posts: %w", err)
	}

	posts := make([]models.MatchedPost, 0, len(rows))
	for _, row := range rows {
		post := row.MatchedPost
		post.Images = []string(row.Images)
		posts = append(posts, post)
	}

	return posts, nil
}
