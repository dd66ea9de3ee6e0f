package repotest

import (
	"context"
	"sort"
	"time"

	"github.com/zemenay/techpulse-api/internal/model"
	"github.com/zemenay/techpulse-api/internal/repository"
)

type articleRepo struct{ s *Store }

func (r *articleRepo) Create(_ context.Context, a *model.Article, categories, tags []string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("articles.Create"); err != nil {
		return err
	}
	now := s.now()
	a.ID = s.id()
	a.CreatedAt, a.UpdatedAt = now, now
	stored := *a
	stored.Author, stored.Categories, stored.Tags, stored.Comments, stored.Likes = model.User{}, nil, nil, nil, nil
	s.articles[a.ID] = stored
	s.articleCats[a.ID] = s.connectCategories(categories)
	s.articleTags[a.ID] = s.connectTags(tags)
	return nil
}

func (r *articleRepo) GetByID(_ context.Context, id uint) (*model.Article, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("articles.GetByID"); err != nil {
		return nil, err
	}
	a, ok := s.articles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *articleRepo) GetDetail(_ context.Context, id uint) (*model.Article, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("articles.GetDetail"); err != nil {
		return nil, err
	}
	a, ok := s.articles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	a = s.hydrate(a)
	for _, c := range s.topLevel(id) {
		c = s.withAuthor(c)
		c.Replies = s.replies(c.ID)
		a.Comments = append(a.Comments, c)
	}
	return &a, nil
}

func (r *articleRepo) Update(_ context.Context, id uint, upd repository.ArticleUpdate) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("articles.Update"); err != nil {
		return err
	}
	a, ok := s.articles[id]
	if !ok {
		return repository.ErrNotFound
	}
	for k, v := range upd.Fields {
		switch k {
		case "title":
			a.Title = v.(string)
		case "summary":
			a.Summary = v.(string)
		case "content":
			a.Content = v.(string)
		case "published":
			a.Published = v.(bool)
		case "published_at":
			t := v.(time.Time)
			a.PublishedAt = &t
		}
	}
	a.UpdatedAt = s.now()
	s.articles[id] = a
	if upd.ReplaceCategories {
		s.articleCats[id] = s.connectCategories(upd.Categories)
	}
	if upd.ReplaceTags {
		s.articleTags[id] = s.connectTags(upd.Tags)
	}
	return nil
}

func (r *articleRepo) Delete(_ context.Context, id uint) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("articles.Delete"); err != nil {
		return err
	}
	if _, ok := s.articles[id]; !ok {
		return repository.ErrNotFound
	}
	for cid, c := range s.comments {
		if c.ArticleID == id {
			delete(s.comments, cid)
		}
	}
	for k := range s.likes {
		if k.articleID == id {
			delete(s.likes, k)
		}
	}
	delete(s.articleCats, id)
	delete(s.articleTags, id)
	delete(s.articles, id)
	return nil
}

func (r *articleRepo) IncrementViews(_ context.Context, id uint) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("articles.IncrementViews"); err != nil {
		return false, err
	}
	a, ok := s.articles[id]
	if !ok || !a.Published {
		return false, nil
	}
	a.Views++
	s.articles[id] = a
	return true, nil
}

func (r *articleRepo) ListPublished(_ context.Context, filter repository.ArticleFilter, offset, limit int) ([]model.Article, int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("articles.ListPublished"); err != nil {
		return nil, 0, err
	}
	var list []model.Article
	for _, a := range s.articles {
		if !a.Published {
			continue
		}
		if filter.AuthorID != 0 && a.AuthorID != filter.AuthorID {
			continue
		}
		if filter.Category != "" && !contains(s.articleCats[a.ID], filter.Category) {
			continue
		}
		if filter.Tag != "" && !contains(s.articleTags[a.ID], filter.Tag) {
			continue
		}
		list = append(list, s.hydrate(a))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return paginate(list, offset, limit), int64(len(list)), nil
}

func (r *articleRepo) ListIDs(context.Context) ([]uint, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uint, 0, len(s.articles))
	for id := range s.articles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *articleRepo) ListForIndex(_ context.Context, afterID uint, batch int) ([]model.Article, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []model.Article
	for _, a := range s.articles {
		if a.ID > afterID && a.Published {
			list = append(list, s.hydrate(a))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	if len(list) > batch {
		list = list[:batch]
	}
	return list, nil
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
