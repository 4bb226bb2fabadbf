package matcher

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"petmatch/internal/models"
	"petmatch/internal/notify"
	"petmatch/internal/scoring"
)

type MockPosts struct {
	mock.Mock
}

func (m *MockPosts) PostType(ctx context.Context, postID int64) (models.PostType, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).(models.PostType), args.Error(1)
}

func (m *MockPosts) LostPostOwner(ctx context.Context, postID int64) (int64, *int64, error) {
	args := m.Called(ctx, postID)
	var animalID *int64
	if v := args.Get(1); v != nil {
		animalID = v.(*int64)
	}
	return args.Get(0).(int64), animalID, args.Error(2)
}

func (m *MockPosts) FoundPostOwner(ctx context.Context, postID int64) (int64, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPosts) FoundPostLocation(ctx context.Context, postID int64) (string, error) {
	args := m.Called(ctx, postID)
	return args.String(0), args.Error(1)
}

type MockImages struct {
	mock.Mock
}

func (m *MockImages) RepresentativeImagePath(ctx context.Context, postID int64, postType models.PostType) (string, error) {
	args := m.Called(ctx, postID, postType)
	return args.String(0), args.Error(1)
}

type MockMatches struct {
	mock.Mock
}

func (m *MockMatches) Create(ctx context.Context, match *models.Match) error {
	args := m.Called(ctx, match)
	return args.Error(0)
}

type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) NotificationToken(ctx context.Context, userID int64) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

type MockAnimals struct {
	mock.Mock
}

func (m *MockAnimals) Name(ctx context.Context, animalID int64) (string, error) {
	args := m.Called(ctx, animalID)
	return args.String(0), args.Error(1)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) OpenImage(ctx context.Context, objectName string) (io.ReadCloser, error) {
	args := m.Called(ctx, objectName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

type MockScorer struct {
	mock.Mock
}

func (m *MockScorer) ScoreImage(ctx context.Context, fileName string, image io.Reader) ([]scoring.Candidate, error) {
	args := m.Called(ctx, fileName, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]scoring.Candidate), args.Error(1)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Send(ctx context.Context, msg notify.Message) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

type MockEvents struct {
	mock.Mock
}

func (m *MockEvents) MatchCreated(ctx context.Context, match models.Match, trigger models.PostType) error {
	args := m.Called(ctx, match, trigger)
	return args.Error(0)
}

type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) IdentifyAndMatch(ctx context.Context, postID int64, postType models.PostType) (*Report, error) {
	args := m.Called(ctx, postID, postType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Report), args.Error(1)
}

type MockGuard struct {
	mock.Mock
}

func (m *MockGuard) Acquire(ctx context.Context, postID int64) (bool, error) {
	args := m.Called(ctx, postID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGuard) Release(ctx context.Context, postID int64) error {
	args := m.Called(ctx, postID)
	return args.Error(0)
}
