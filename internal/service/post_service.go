package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"petmatch/internal/config"
	"petmatch/internal/logging"
	"petmatch/internal/matcher"
	"petmatch/internal/models"
	"petmatch/internal/repository"
	"petmatch/internal/storage"
)

// MaxImagesPerPost bounds the image sequence number to two digits.
const MaxImagesPerPost = 5

var ErrTooManyImages = fmt.Errorf("a post can have at most %d images", MaxImagesPerPost)

type ImageUpload struct {
	FileName string
	File     io.Reader
	Size     int64
}

type CreatePostRequest struct {
	UserID         int64 `validate:"required,gt=0"`
	AnimalID       *int64
	Location       string    `validate:"required,max=255"`
	Time           time.Time `validate:"required"`
	Breed          string    `validate:"max=100"`
	Color          string    `validate:"max=100"`
	ProminentPoint string    `validate:"max=500"`
	Latitude       *float64  `validate:"omitempty,latitude"`
	Longitude      *float64  `validate:"omitempty,longitude"`
	Images         []ImageUpload
}

type PostService interface {
	CreateLost(ctx context.Context, req CreatePostRequest) (*models.Post, error)
	CreateFound(ctx context.Context, req CreatePostRequest) (*models.Post, error)
	GetPost(ctx context.Context, postID int64, postType models.PostType) (*models.Post, error)
	DeleteLost(ctx context.Context, postID int64) error
	DeleteFound(ctx context.Context, postID int64) error
	// ConfirmFound closes the lost report of an animal that is back home.
	ConfirmFound(ctx context.Context, animalID int64) error
}

type postService struct {
	postRepo repository.PostRepository
	storage  storage.Storage
	trigger  MatchTrigger
	cfg      *config.Config
	logger   logging.Logger
}

func NewPostService(postRepo repository.PostRepository, storage storage.Storage, trigger MatchTrigger, cfg *config.Config, logger logging.Logger) PostService {
	return &postService{
		postRepo: postRepo,
		storage:  storage,
		trigger:  trigger,
		cfg:      cfg,
		logger:   logger,
	}
}

func (p *postService) CreateLost(ctx context.Context, req CreatePostRequest) (*models.Post, error) {
	if len(req.Images) > MaxImagesPerPost {
		return nil, ErrTooManyImages
	}

	post := newPost(req)
	if req.AnimalID != nil {
		post.AnimalID.Int64, post.AnimalID.Valid = *req.AnimalID, true
	}

	var uploaded []string
	err := p.postRepo.CreateLost(ctx, post, p.attacher(models.PostTypeLost, req.Images, &uploaded))
	if err != nil {
		p.removeObjects(ctx, uploaded)
		return nil, err
	}

	p.triggerMatch(ctx, post)
	return post, nil
}

func (p *postService) CreateFound(ctx context.Context, req CreatePostRequest) (*models.Post, error) {
	if len(req.Images) > MaxImagesPerPost {
		return nil, ErrTooManyImages
	}

	post := newPost(req)

	var uploaded []string
	err := p.postRepo.CreateFound(ctx, post, p.cfg.FoundPostReward, p.attacher(models.PostTypeFound, req.Images, &uploaded))
	if err != nil {
		p.removeObjects(ctx, uploaded)
		return nil, err
	}

	p.triggerMatch(ctx, post)
	return post, nil
}

func newPost(req CreatePostRequest) *models.Post {
	post := &models.Post{
		UserID:         req.UserID,
		Location:       req.Location,
		Time:           req.Time,
		Breed:          req.Breed,
		Color:          req.Color,
		ProminentPoint: req.ProminentPoint,
	}
	if req.Latitude != nil && req.Longitude != nil {
		post.Latitude.Float64, post.Latitude.Valid = *req.Latitude, true
		post.Longitude.Float64, post.Longitude.Valid = *req.Longitude, true
	}
	return post
}

// attacher uploads the images once the post id is known. Object names that
// made it to storage are collected in uploaded so a failed insert can be
// cleaned up.
func (p *postService) attacher(postType models.PostType, images []ImageUpload, uploaded *[]string) repository.ImageAttacher {
	return func(ctx context.Context, postID int64) ([]models.PostImage, error) {
		rows := make([]models.PostImage, 0, len(images))
		for i, image := range images {
			imageID := models.ImageID(postID, i+1)

			objectName, err := p.storage.UploadImage(ctx, postType, imageID, image.FileName, image.File, image.Size)
			if err != nil {
				return nil, err
			}
			*uploaded = append(*uploaded, objectName)

			rows = append(rows, models.PostImage{ImageID: imageID, PostID: postID, ImagePath: objectName})
		}
		return rows, nil
	}
}

// triggerMatch hands the post to matching. The post is already committed, so
// a rejected trigger is only logged.
func (p *postService) triggerMatch(ctx context.Context, post *models.Post) {
	job, err := p.trigger.Submit(ctx, post.PostID, post.Type)
	if err != nil {
		if errors.Is(err, matcher.ErrDuplicateTrigger) {
			p.logger.Info(ctx, "match already triggered", "post_id", post.PostID)
			return
		}
		p.logger.Error(ctx, "failed to trigger match", "post_id", post.PostID, "post_type", string(post.Type), "error", err)
		return
	}

	p.logger.Debug(ctx, "match triggered", "post_id", post.PostID, "job_id", job.ID.String())
}

func (p *postService) GetPost(ctx context.Context, postID int64, postType models.PostType) (*models.Post, error) {
	return p.postRepo.GetByID(ctx, postID, postType)
}

func (p *postService) DeleteLost(ctx context.Context, postID int64) error {
	paths, err := p.postRepo.DeleteLost(ctx, postID)
	if err != nil {
		return err
	}

	p.removeObjects(ctx, paths)
	return nil
}

func (p *postService) DeleteFound(ctx context.Context, postID int64) error {
	paths, err := p.postRepo.DeleteFound(ctx, postID)
	if err != nil {
		return err
	}

	p.removeObjects(ctx, paths)
	return nil
}

func (p *postService) ConfirmFound(ctx context.Context, animalID int64) error {
	postID, err := p.postRepo.LostPostByAnimal(ctx, animalID)
	if err != nil {
		return err
	}

	return p.DeleteLost(ctx, postID)
}

func (p *postService) removeObjects(ctx context.Context, objectNames []string) {
	for _, name := range objectNames {
		if err := p.storage.DeleteImage(ctx, name); err != nil {
			p.logger.Warn(ctx, "failed to delete image object", "object", name, "error", err)
		}
	}
}
