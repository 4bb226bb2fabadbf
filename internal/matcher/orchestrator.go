// Package matcher pairs new lost and found posts with their counterparts
// and tells the affected owners.
package matcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"petmatch/internal/logging"
	"petmatch/internal/models"
	"petmatch/internal/notify"
	"petmatch/internal/repository"
	"petmatch/internal/scoring"
)

type PostStore interface {
	LostPostOwner(ctx context.Context, postID int64) (int64, *int64, error)
	FoundPostOwner(ctx context.Context, postID int64) (int64, error)
	FoundPostLocation(ctx context.Context, postID int64) (string, error)
}

type ImageStore interface {
	RepresentativeImagePath(ctx context.Context, postID int64, postType models.PostType) (string, error)
}

type MatchStore interface {
	Create(ctx context.Context, match *models.Match) error
}

type UserStore interface {
	NotificationToken(ctx context.Context, userID int64) (string, error)
}

type AnimalStore interface {
	Name(ctx context.Context, animalID int64) (string, error)
}

type ImageReader interface {
	OpenImage(ctx context.Context, objectName string) (io.ReadCloser, error)
}

type Scorer interface {
	ScoreImage(ctx context.Context, fileName string, image io.Reader) ([]scoring.Candidate, error)
}

// MatchEvents is told about every stored match.
type MatchEvents interface {
	MatchCreated(ctx context.Context, match models.Match, trigger models.PostType) error
}

// Deps are the collaborators of an Orchestrator. Events may be nil; a nil
// Dispatcher stores matches without notifying anyone.
type Deps struct {
	Posts      PostStore
	Images     ImageStore
	Matches    MatchStore
	Users      UserStore
	Animals    AnimalStore
	Storage    ImageReader
	Scorer     Scorer
	Dispatcher notify.Dispatcher
	Templates  *notify.Templates
	Kinds      KindResolver
	Events     MatchEvents
}

type Orchestrator struct {
	Deps
	logger logging.Logger
}

func NewOrchestrator(deps Deps, logger logging.Logger) *Orchestrator {
	return &Orchestrator{Deps: deps, logger: logger}
}

// IdentifyAndMatch scores the representative image of a new post and
// records a match for every candidate of the opposite type. Candidate
// failures are logged and recorded in the report; only image and scorer
// failures abort the run and are returned.
func (o *Orchestrator) IdentifyAndMatch(ctx context.Context, postID int64, postType models.PostType) (*Report, error) {
	report := &Report{PostID: postID, PostType: postType}
	log := o.logger.With("post_id", postID, "post_type", string(postType))

	if !postType.Valid() {
		return report.abort(fmt.Errorf("unknown post type %q", postType))
	}

	imagePath, err := o.Images.RepresentativeImagePath(ctx, postID, postType)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Info(ctx, "post has no image, nothing to match")
			report.Outcome = OutcomeNoImage
			report.Err = ErrNoImageAvailable
			return report, nil
		}
		log.Error(ctx, "failed to look up representative image", "stage", "image_lookup", "error", err)
		return report.abort(err)
	}

	candidates, err := o.score(ctx, imagePath)
	if err != nil {
		log.Error(ctx, "failed to score image", "stage", "score", "image", imagePath, "error", err)
		return report.abort(err)
	}

	if len(candidates) == 0 {
		log.Info(ctx, "scorer returned no candidates")
		report.Outcome = OutcomeNoCandidates
		report.Err = ErrNoCandidatesFound
		return report, nil
	}

	for _, candidate := range candidates {
		report.Candidates = append(report.Candidates, o.processCandidate(ctx, log, postID, postType, candidate))
	}

	report.Outcome = OutcomeMatched
	log.Info(ctx, "match run finished", "candidates", len(candidates), "matches", report.Matches())
	return report, nil
}

func (o *Orchestrator) score(ctx context.Context, imagePath string) ([]scoring.Candidate, error) {
	image, err := o.Storage.OpenImage(ctx, imagePath)
	if err != nil {
		return nil, err
	}
	defer image.Close()

	return o.Scorer.ScoreImage(ctx, path.Base(imagePath), image)
}

func (o *Orchestrator) processCandidate(ctx context.Context, log logging.Logger, postID int64, postType models.PostType, candidate scoring.Candidate) CandidateResult {
	result := CandidateResult{Label: candidate.Label}
	log = log.With("candidate_id", candidate.Label)

	candidateID, err := strconv.ParseInt(strings.TrimSpace(candidate.Label), 10, 64)
	if err == nil && candidateID <= 0 {
		err = fmt.Errorf("non-positive post id %d", candidateID)
	}
	if err != nil {
		log.Warn(ctx, "skipping candidate with bad label", "stage", "parse", "error", err)
		return result.with(CandidateSkippedParse, err)
	}
	result.PostID = candidateID

	distance, err := candidate.Distance.Float()
	if err != nil {
		log.Warn(ctx, "skipping candidate with bad distance", "stage", "parse", "error", err)
		return result.with(CandidateSkippedParse, err)
	}
	result.Distance = distance

	kind, err := o.Kinds.Kind(ctx, candidateID)
	if err != nil {
		log.Warn(ctx, "skipping candidate of unknown kind", "stage", "resolve_kind", "error", err)
		return result.with(CandidateSkippedUnknown, err)
	}
	if kind == postType {
		log.Debug(ctx, "skipping candidate of the same type", "stage", "filter")
		return result.with(CandidateSkippedType, ErrCandidateTypeMismatch)
	}

	match := models.Match{Distance: distance}
	if postType == models.PostTypeLost {
		match.LostPostID, match.FoundPostID = postID, candidateID
	} else {
		match.LostPostID, match.FoundPostID = candidateID, postID
	}

	if err := o.Matches.Create(ctx, &match); err != nil {
		err = fmt.Errorf("%w: %v", ErrRepositoryWriteFailed, err)
		log.Error(ctx, "failed to store match", "stage", "insert_match", "error", err)
		return result.with(CandidateMatchFailed, err)
	}
	log.Info(ctx, "match stored", "lost_post_id", match.LostPostID, "found_post_id", match.FoundPostID, "distance", distance)

	if o.Events != nil {
		if err := o.Events.MatchCreated(ctx, match, postType); err != nil {
			log.Warn(ctx, "failed to publish match event", "stage", "publish", "error", err)
		}
	}

	if o.Dispatcher == nil {
		return result.with(CandidateMatched, nil)
	}

	msg, err := o.buildMessage(ctx, log, postID, postType, candidateID)
	if err != nil {
		log.Warn(ctx, "not notifying counterpart", "stage", "resolve_recipient", "error", err)
		return result.with(CandidateRecipientUnresolvable, err)
	}

	messageID, err := o.Dispatcher.Send(ctx, msg)
	if err != nil {
		log.Error(ctx, "failed to send notification", "stage", "dispatch", "error", err)
		return result.with(CandidateDeliveryFailed, err)
	}
	log.Info(ctx, "notification sent", "message_id", messageID)

	return result.with(CandidateNotified, nil)
}

// buildMessage addresses the owner of the candidate post. The data payload
// always carries the id of the post that triggered the run.
func (o *Orchestrator) buildMessage(ctx context.Context, log logging.Logger, postID int64, postType models.PostType, candidateID int64) (notify.Message, error) {
	if postType == models.PostTypeFound {
		ownerID, animalID, err := o.Posts.LostPostOwner(ctx, candidateID)
		if err != nil {
			return notify.Message{}, fmt.Errorf("%w: %v", ErrRecipientUnresolvable, err)
		}

		token, err := o.token(ctx, ownerID)
		if err != nil {
			return notify.Message{}, err
		}

		var animal string
		if animalID != nil {
			if animal, err = o.Animals.Name(ctx, *animalID); err != nil {
				log.Warn(ctx, "failed to get animal name", "stage", "build_message", "error", err)
			}
		}

		location, err := o.Posts.FoundPostLocation(ctx, postID)
		if err != nil {
			log.Warn(ctx, "failed to get found post location", "stage", "build_message", "error", err)
		}

		text := o.Templates.FoundMatchesLostText(animal, location)
		return notify.Message{
			Token: token,
			Title: text.Title,
			Body:  text.Body,
			Data:  map[string]string{"foundPostId": strconv.FormatInt(postID, 10)},
		}, nil
	}

	ownerID, err := o.Posts.FoundPostOwner(ctx, candidateID)
	if err != nil {
		return notify.Message{}, fmt.Errorf("%w: %v", ErrRecipientUnresolvable, err)
	}

	token, err := o.token(ctx, ownerID)
	if err != nil {
		return notify.Message{}, err
	}

	text := o.Templates.LostMatchesFoundText()
	return notify.Message{
		Token: token,
		Title: text.Title,
		Body:  text.Body,
		Data:  map[string]string{"lostPostId": strconv.FormatInt(postID, 10)},
	}, nil
}

func (o *Orchestrator) token(ctx context.Context, userID int64) (string, error) {
	token, err := o.Users.NotificationToken(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRecipientUnresolvable, err)
	}
	if token == "" {
		return "", fmt.Errorf("%w: user %d has no notification token", ErrRecipientUnresolvable, userID)
	}
	return token, nil
}
