package service

import (
	"context"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"
	"inkwell/internal/visibility"
)

type ProfileService struct {
	userRepo repository.UserRepository
	resolver *visibility.Resolver
}

// Profile is an account page: the account itself plus one page of its posts.
// Owners see every post they wrote, including drafts and scheduled ones;
// everyone else sees only the publicly visible slice.
type Profile struct {
	Account models.User          `json:"account"`
	Feed    *visibility.FeedPage `json:"feed"`
	IsOwner bool                 `json:"is_owner"`
}

type UpdateProfileInput struct {
	ViewerID  uint
	FirstName string
	LastName  string
	Email     string
}

func NewProfileService(userRepo repository.UserRepository, resolver *visibility.Resolver) *ProfileService {
	return &ProfileService{userRepo: userRepo, resolver: resolver}
}

// GetProfile aggregates the profile page for username as seen by viewerID.
// Only the anonymous first page is cached; any authenticated view may differ
// per viewer.
func (s *ProfileService) GetProfile(ctx context.Context, username string, viewerID uint, page int) (*Profile, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("Profile", username)
	}

	isOwner := viewerID != 0 && viewerID == user.ID
	scope := visibility.Scope{AuthorID: user.ID, IncludeHidden: isOwner}

	if viewerID == 0 && page == 1 {
		var cached Profile
		err := cache.Aside(ctx, cache.ProfileKey(username), &cached, cache.ProfileTTL, func() error {
			feed, feedErr := s.resolver.ResolveFeed(ctx, viewerID, scope, page)
			if feedErr != nil {
				return feedErr
			}
			cached = Profile{Account: *user, Feed: feed}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &cached, nil
	}

	feed, err := s.resolver.ResolveFeed(ctx, viewerID, scope, page)
	if err != nil {
		return nil, err
	}
	return &Profile{Account: *user, Feed: feed, IsOwner: isOwner}, nil
}

// UpdateProfile edits the viewer's own account. There is no path to edit
// someone else's profile, so no ownership check beyond authentication.
func (s *ProfileService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	if in.ViewerID == 0 {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	user, err := s.userRepo.GetByID(ctx, in.ViewerID)
	if err != nil {
		return nil, err
	}

	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.Email = in.Email

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	cache.InvalidateProfile(ctx, user.Username)
	return user, nil
}
