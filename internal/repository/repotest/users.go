package repotest

import (
	"context"
	"sort"

	"github.com/zemenay/techpulse-api/internal/model"
	"github.com/zemenay/techpulse-api/internal/repository"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, u *model.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.ID = s.id()
	u.CreatedAt = s.now()
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	s.users[u.ID] = *u
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id uint) (*model.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) GetByGoogleID(_ context.Context, googleID string) (*model.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.GoogleID != nil && *u.GoogleID == googleID {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) Update(_ context.Context, u *model.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	s.users[u.ID] = *u
	return nil
}

type taxonomyRepo struct{ s *Store }

func (r *taxonomyRepo) ListCategories(context.Context) ([]repository.NamedCount, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]repository.NamedCount, 0, len(s.categories))
	for name, c := range s.categories {
		out = append(out, repository.NamedCount{ID: c.ID, Name: name, ArticleCount: s.countPublished(s.articleCats, name)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *taxonomyRepo) ListTags(context.Context) ([]repository.NamedCount, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]repository.NamedCount, 0, len(s.tags))
	for name, t := range s.tags {
		out = append(out, repository.NamedCount{ID: t.ID, Name: name, ArticleCount: s.countPublished(s.articleTags, name)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) countPublished(links map[uint][]string, name string) int64 {
	var n int64
	for id, names := range links {
		if a, ok := s.articles[id]; ok && a.Published && contains(names, name) {
			n++
		}
	}
	return n
}

type notificationRepo struct{ s *Store }

func (r *notificationRepo) Create(_ context.Context, n *model.Notification) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("notifications.Create"); err != nil {
		return err
	}
	n.ID = s.id()
	n.CreatedAt = s.now()
	s.notifications[n.ID] = *n
	return nil
}

func (r *notificationRepo) List(_ context.Context, userID uint, offset, limit int) ([]model.Notification, int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []model.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			n.Actor = s.users[n.ActorID]
			list = append(list, n)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return paginate(list, offset, limit), int64(len(list)), nil
}

func (r *notificationRepo) CountUnread(_ context.Context, userID uint) (int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, n := range s.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *notificationRepo) MarkRead(_ context.Context, id, userID uint) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	n.IsRead = true
	s.notifications[id] = n
	return nil
}
