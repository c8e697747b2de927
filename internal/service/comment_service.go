package service

import (
	"context"
	"time"

	"inkwell/internal/authz"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/validation"
	"inkwell/internal/visibility"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	authorizer  *authz.Authorizer
}

type AddCommentInput struct {
	ViewerID uint
	PostID   uint
	Text     string
}

type EditCommentInput struct {
	ViewerID  uint
	PostID    uint
	CommentID uint
	Text      string
}

type DeleteCommentInput struct {
	ViewerID  uint
	PostID    uint
	CommentID uint
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	authorizer *authz.Authorizer,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		authorizer:  authorizer,
	}
}

// ListComments returns the post's comments oldest first. The thread is gated
// on the post's visibility: a hidden post's thread answers NotFound.
func (s *CommentService) ListComments(ctx context.Context, postID uint, viewerID uint) ([]*models.Comment, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !visibility.VisibleTo(post, viewerID, time.Now()) {
		observability.HiddenEntityReads.WithLabelValues("post").Inc()
		return nil, models.NewNotFoundError("Post", postID)
	}
	return s.commentRepo.ListByPost(ctx, postID)
}

// AddComment attaches a comment to an existing post. Commenting only requires
// that the post exists, not that it is visible to the commenter; authorship of
// the comment is taken from the authenticated viewer, never from the payload.
func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	if in.ViewerID == 0 {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}
	if err := validation.ValidateCommentText(in.Text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Text:     in.Text,
		PostID:   in.PostID,
		AuthorID: in.ViewerID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) EditComment(ctx context.Context, in EditCommentInput) (*models.Comment, error) {
	comment, err := s.loadThreadComment(ctx, in.PostID, in.CommentID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.Authorize(ctx, in.ViewerID, comment, authz.ActionEdit, "comment"); err != nil {
		return nil, err
	}
	if err := validation.ValidateCommentText(in.Text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	comment.Text = in.Text
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	comment, err := s.loadThreadComment(ctx, in.PostID, in.CommentID)
	if err != nil {
		return err
	}
	if err := s.authorizer.Authorize(ctx, in.ViewerID, comment, authz.ActionDelete, "comment"); err != nil {
		return err
	}
	return s.commentRepo.Delete(ctx, in.CommentID)
}

// loadThreadComment fetches a comment and confirms it belongs to the post
// named in the URL. A comment reached through the wrong post is NotFound.
func (s *CommentService) loadThreadComment(ctx context.Context, postID, commentID uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.PostID != postID {
		return nil, models.NewNotFoundError("Comment", commentID)
	}
	return comment, nil
}
