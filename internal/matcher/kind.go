package matcher

import (
	"context"
	"fmt"
	"strconv"

	"petmatch/internal/models"
)

// KindResolver tells whether a candidate post is lost or found.
type KindResolver interface {
	Kind(ctx context.Context, postID int64) (models.PostType, error)
}

type PostTypeLookup interface {
	PostType(ctx context.Context, postID int64) (models.PostType, error)
}

const (
	KindSourceRepository = "repository"
	KindSourcePrefix     = "prefix"
)

// NewKindResolver picks the resolver named by source.
func NewKindResolver(source string, posts PostTypeLookup) (KindResolver, error) {
	switch source {
	case "", KindSourceRepository:
		return &RepositoryKindResolver{posts: posts}, nil
	case KindSourcePrefix:
		return PrefixKindResolver{}, nil
	}
	return nil, fmt.Errorf("unknown match kind source %q", source)
}

// RepositoryKindResolver reads the type from the table the post lives in.
type RepositoryKindResolver struct {
	posts PostTypeLookup
}

func NewRepositoryKindResolver(posts PostTypeLookup) *RepositoryKindResolver {
	return &RepositoryKindResolver{posts: posts}
}

func (r *RepositoryKindResolver) Kind(ctx context.Context, postID int64) (models.PostType, error) {
	postType, err := r.posts.PostType(ctx, postID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnknownPostKind, err)
	}
	return postType, nil
}

// PrefixKindResolver derives the type from the leading digit of the id:
// lost ids start with 1, found ids with 2.
type PrefixKindResolver struct{}

func (PrefixKindResolver) Kind(_ context.Context, postID int64) (models.PostType, error) {
	s := strconv.FormatInt(postID, 10)
	switch s[0] {
	case '1':
		return models.PostTypeLost, nil
	case '2':
		return models.PostTypeFound, nil
	}
	return "", fmt.Errorf("%w: post %d", ErrUnknownPostKind, postID)
}
