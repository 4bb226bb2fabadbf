package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"petmatch/internal/models"
)

type animalRepository struct {
	db *sqlx.DB
}

func NewAnimalRepository(db *sqlx.DB) AnimalRepository {
	return &animalRepository{db: db}
}

// Create registers an animal for its owner. New animals start at home.
func (r *animalRepository) Create(ctx context.Context, animal *models.Animal) error {
	query := `
		INSERT INTO animals (user_id, name, breed, color, prominent_point)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING animal_id, state`

	err := r.db.QueryRowxContext(ctx, query,
		animal.UserID, animal.Name, animal.Breed, animal.Color, animal.ProminentPoint,
	).Scan(&animal.AnimalID, &animal.State)
	if err != nil {
		if pqCode(err) == codeForeignKeyViolation {
			return fmt.Errorf("user %d: %w", animal.UserID, ErrNotFound)
		}
		return fmt.Errorf("failed to create animal: %w", err)
	}

	return nil
}

func (r *animalRepository) ListByUser(ctx context.Context, userID int64) ([]models.Animal, error) {
	query := `
		SELECT animal_id, user_id, name, breed, color, prominent_point, state
		FROM animals
		WHERE user_id = $1
		ORDER BY animal_id`

	animals := []models.Animal{}
	if err := r.db.SelectContext(ctx, &animals, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list animals: %w", err)
	}

	return animals, nil
}

func (r *animalRepository) Name(ctx context.Context, animalID int64) (string, error) {
	var name string

	err := r.db.GetContext(ctx, &name, `SELECT name FROM animals WHERE animal_id = $1`, animalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("animal %d: %w", animalID, ErrNotFound)
		}
		return "", fmt.Errorf("failed to get animal name: %w", err)
	}

	return name, nil
}
