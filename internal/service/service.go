package service

import (
	"context"

	"petmatch/internal/config"
	"petmatch/internal/logging"
	"petmatch/internal/matcher"
	"petmatch/internal/models"
	"petmatch/internal/repository"
	"petmatch/internal/storage"
)

// MatchTrigger starts a match run for a committed post.
type MatchTrigger interface {
	Submit(ctx context.Context, postID int64, postType models.PostType) (*matcher.Job, error)
}

type Service struct {
	User   UserService
	Animal AnimalService
	Post   PostService
	Match  MatchService
}

func NewService(rep *repository.Repository, cfg *config.Config, storage storage.Storage, trigger MatchTrigger, logger logging.Logger) *Service {
	return &Service{
		User:   NewUserService(rep.User),
		Animal: NewAnimalService(rep.Animal, rep.User),
		Post:   NewPostService(rep.Post, storage, trigger, cfg, logger),
		Match:  NewMatchService(rep.Match),
	}
}
