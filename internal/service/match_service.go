package service

import (
	"context"

	"petmatch/internal/models"
	"petmatch/internal/repository"
)

type MatchService interface {
	// MatchedPosts lists the found posts matched to an animal's lost reports,
	// closest first.
	MatchedPosts(ctx context.Context, animalID int64) ([]models.MatchedPost, error)
}

type matchService struct {
	matchRepo repository.MatchRepository
}

func NewMatchService(matchRepo repository.MatchRepository) MatchService {
	return &matchService{matchRepo: matchRepo}
}

func (s *matchService) MatchedPosts(ctx context.Context, animalID int64) ([]models.MatchedPost, error) {
	posts, err := s.matchRepo.MatchedPostsForAnimal(ctx, animalID)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.MatchedPost{}
	}
	return posts, nil
}
