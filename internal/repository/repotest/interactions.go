package repotest

import (
	"context"

	"github.com/zemenay/techpulse-api/internal/model"
	"github.com/zemenay/techpulse-api/internal/repository"
)

type commentRepo struct{ s *Store }

func (r *commentRepo) Create(_ context.Context, c *model.Comment) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("comments.Create"); err != nil {
		return err
	}
	now := s.now()
	c.ID = s.id()
	c.CreatedAt, c.UpdatedAt = now, now
	stored := *c
	stored.Author, stored.Replies = model.User{}, nil
	s.comments[c.ID] = stored
	c.Author = s.users[c.AuthorID]
	return nil
}

func (r *commentRepo) GetByID(_ context.Context, id uint) (*model.Comment, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("comments.GetByID"); err != nil {
		return nil, err
	}
	c, ok := s.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *commentRepo) ListTopLevel(_ context.Context, articleID uint, offset, limit int) ([]model.Comment, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("comments.ListTopLevel"); err != nil {
		return nil, err
	}
	page := paginate(s.topLevel(articleID), offset, limit)
	for i := range page {
		page[i] = s.withAuthor(page[i])
		page[i].ReplyCount = int64(len(s.replies(page[i].ID)))
	}
	return page, nil
}

func (r *commentRepo) CountTopLevel(_ context.Context, articleID uint) (int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("comments.CountTopLevel"); err != nil {
		return 0, err
	}
	return int64(len(s.topLevel(articleID))), nil
}

func (r *commentRepo) DeleteWithReplies(_ context.Context, id uint) (int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("comments.DeleteWithReplies"); err != nil {
		return 0, err
	}
	if _, ok := s.comments[id]; !ok {
		return 0, repository.ErrNotFound
	}
	var deleted int64
	for cid, c := range s.comments {
		if c.ParentID != nil && *c.ParentID == id {
			delete(s.comments, cid)
			deleted++
		}
	}
	delete(s.comments, id)
	return deleted + 1, nil
}

type likeRepo struct{ s *Store }

func (r *likeRepo) Toggle(_ context.Context, articleID, userID uint) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("likes.Toggle"); err != nil {
		return false, err
	}
	k := likeKey{articleID: articleID, userID: userID}
	if _, ok := s.likes[k]; ok {
		delete(s.likes, k)
		return false, nil
	}
	s.likes[k] = struct{}{}
	return true, nil
}

func (r *likeRepo) Count(_ context.Context, articleID uint) (int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("likes.Count"); err != nil {
		return 0, err
	}
	var n int64
	for k := range s.likes {
		if k.articleID == articleID {
			n++
		}
	}
	return n, nil
}

func (r *likeRepo) Exists(_ context.Context, articleID, userID uint) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("likes.Exists"); err != nil {
		return false, err
	}
	_, ok := s.likes[likeKey{articleID: articleID, userID: userID}]
	return ok, nil
}
