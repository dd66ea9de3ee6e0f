// Package repotest 提供仓储接口的内存实现，供服务层和接口层测试使用
package repotest

import (
	"sort"
	"sync"
	"time"

	"github.com/zemenay/techpulse-api/internal/model"
	"github.com/zemenay/techpulse-api/internal/repository"
)

type likeKey struct {
	articleID uint
	userID    uint
}

// Store 内存数据集，各仓储共享同一份数据
type Store struct {
	mu     sync.Mutex
	nextID uint
	clock  time.Time

	users         map[uint]model.User
	articles      map[uint]model.Article
	articleCats   map[uint][]string
	articleTags   map[uint][]string
	comments      map[uint]model.Comment
	likes         map[likeKey]struct{}
	categories    map[string]model.Category
	tags          map[string]model.Tag
	notifications map[uint]model.Notification
	failures      map[string]error
}

// NewStore 创建空数据集
func NewStore() *Store {
	return &Store{
		clock:         time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		users:         make(map[uint]model.User),
		articles:      make(map[uint]model.Article),
		articleCats:   make(map[uint][]string),
		articleTags:   make(map[uint][]string),
		comments:      make(map[uint]model.Comment),
		likes:         make(map[likeKey]struct{}),
		categories:    make(map[string]model.Category),
		tags:          make(map[string]model.Tag),
		notifications: make(map[uint]model.Notification),
		failures:      make(map[string]error),
	}
}

// FailOn 让指定操作返回err，操作名形如 "comments.ListTopLevel"
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *Store) fail(op string) error {
	return s.failures[op]
}

// id 与 now 需在持有锁时调用
func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

func (s *Store) now() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

// Articles 文章仓储
func (s *Store) Articles() repository.ArticleRepository { return &articleRepo{s} }

// Comments 评论仓储
func (s *Store) Comments() repository.CommentRepository { return &commentRepo{s} }

// Likes 点赞仓储
func (s *Store) Likes() repository.LikeRepository { return &likeRepo{s} }

// Users 用户仓储
func (s *Store) Users() repository.UserRepository { return &userRepo{s} }

// Taxonomy 分类和标签仓储
func (s *Store) Taxonomy() repository.TaxonomyRepository { return &taxonomyRepo{s} }

// Notifications 通知仓储
func (s *Store) Notifications() repository.NotificationRepository { return &notificationRepo{s} }

/* ─────────────────────────── 测试数据 ─────────────────────────── */

// AddUser 添加用户
func (s *Store) AddUser(name, email string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := model.User{Base: model.Base{ID: s.id(), CreatedAt: s.now()}, Name: name, Email: email, Role: model.RoleUser, Status: 1}
	s.users[u.ID] = u
	return u
}

// AddArticle 添加文章
func (s *Store) AddArticle(authorID uint, title string, published bool) model.Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	a := model.Article{Base: model.Base{ID: s.id(), CreatedAt: now, UpdatedAt: now}, Title: title, Content: "# " + title, AuthorID: authorID, Published: published}
	if published {
		a.PublishedAt = &now
	}
	s.articles[a.ID] = a
	return a
}

// AddComment 添加评论
func (s *Store) AddComment(articleID, authorID uint, parentID *uint, content string) model.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	c := model.Comment{Base: model.Base{ID: s.id(), CreatedAt: now, UpdatedAt: now}, ArticleID: articleID, AuthorID: authorID, ParentID: parentID, Content: content}
	s.comments[c.ID] = c
	return c
}

// Article 读取文章当前状态
func (s *Store) Article(id uint) (model.Article, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[id]
	return a, ok
}

// ArticleTaxonomy 文章当前关联的分类和标签名称
func (s *Store) ArticleTaxonomy(id uint) (categories, tags []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.articleCats[id]...), append([]string{}, s.articleTags[id]...)
}

// CommentCount 文章评论总数（含回复）
func (s *Store) CommentCount(articleID uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.comments {
		if c.ArticleID == articleID {
			n++
		}
	}
	return n
}

// LikeCount 文章点赞数
func (s *Store) LikeCount(articleID uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.likes {
		if k.articleID == articleID {
			n++
		}
	}
	return n
}

// NotificationsFor 用户收到的通知
func (s *Store) NotificationsFor(userID uint) []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []model.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			list = append(list, n)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// CategoryCount 分类总数
func (s *Store) CategoryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.categories)
}

func (s *Store) connectCategories(names []string) []string {
	for _, n := range names {
		if _, ok := s.categories[n]; !ok {
			s.categories[n] = model.Category{Base: model.Base{ID: s.id()}, Name: n}
		}
	}
	return append([]string{}, names...)
}

func (s *Store) connectTags(names []string) []string {
	for _, n := range names {
		if _, ok := s.tags[n]; !ok {
			s.tags[n] = model.Tag{Base: model.Base{ID: s.id()}, Name: n}
		}
	}
	return append([]string{}, names...)
}

// hydrate 填充作者、分类、标签
func (s *Store) hydrate(a model.Article) model.Article {
	a.Author = s.users[a.AuthorID]
	a.Categories = nil
	for _, n := range s.articleCats[a.ID] {
		a.Categories = append(a.Categories, s.categories[n])
	}
	a.Tags = nil
	for _, n := range s.articleTags[a.ID] {
		a.Tags = append(a.Tags, s.tags[n])
	}
	return a
}

func (s *Store) withAuthor(c model.Comment) model.Comment {
	c.Author = s.users[c.AuthorID]
	return c
}

// topLevel 顶级评论，按创建时间倒序
func (s *Store) topLevel(articleID uint) []model.Comment {
	var list []model.Comment
	for _, c := range s.comments {
		if c.ArticleID == articleID && c.ParentID == nil {
			list = append(list, c)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list
}

// replies 回复，按创建时间正序
func (s *Store) replies(parentID uint) []model.Comment {
	var list []model.Comment
	for _, c := range s.comments {
		if c.ParentID != nil && *c.ParentID == parentID {
			list = append(list, s.withAuthor(c))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func paginate[T any](list []T, offset, limit int) []T {
	out := make([]T, 0, limit)
	if offset >= len(list) {
		return out
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	return append(out, list[offset:end]...)
}
