package service

import (
	"context"
	"strings"

	"petmatch/internal/models"
	"petmatch/internal/repository"
)

type RegisterAnimalRequest struct {
	UserID         int64  `json:"userId" validate:"required,gt=0"`
	Name           string `json:"name" validate:"required,max=100"`
	Breed          string `json:"breed" validate:"max=100"`
	Color          string `json:"color" validate:"max=100"`
	ProminentPoint string `json:"prominentPoint" validate:"max=500"`
}

type AnimalService interface {
	Register(ctx context.Context, req RegisterAnimalRequest) (*models.Animal, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Animal, error)
}

type animalService struct {
	animalRepo repository.AnimalRepository
	userRepo   repository.UserRepository
}

func NewAnimalService(animalRepo repository.AnimalRepository, userRepo repository.UserRepository) AnimalService {
	return &animalService{
		animalRepo: animalRepo,
		userRepo:   userRepo,
	}
}

func (s *animalService) Register(ctx context.Context, req RegisterAnimalRequest) (*models.Animal, error) {
	animal := &models.Animal{
		UserID:         req.UserID,
		Name:           strings.TrimSpace(req.Name),
		Breed:          strings.TrimSpace(req.Breed),
		Color:          strings.TrimSpace(req.Color),
		ProminentPoint: strings.TrimSpace(req.ProminentPoint),
	}

	if err := s.animalRepo.Create(ctx, animal); err != nil {
		return nil, err
	}

	return animal, nil
}

// ListByUser returns the owner's animals. An unknown owner is ErrNotFound
// rather than an empty list.
func (s *animalService) ListByUser(ctx context.Context, userID int64) ([]models.Animal, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.animalRepo.ListByUser(ctx, userID)
}
