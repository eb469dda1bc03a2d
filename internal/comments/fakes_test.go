package comments

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/agrimeme/backend/internal/events"
	"github.com/agrimeme/backend/internal/models"
	"github.com/agrimeme/backend/internal/repository"
)

// memStore keeps posts, users and comments in memory and applies the same
// counter bookkeeping as the gorm repository.
type memStore struct {
	mu       sync.Mutex
	posts    map[int64]*models.Post
	users    map[int64]*models.User
	comments map[int64]*models.Comment
	nextID   int64
}

func newMemStore() *memStore {
	return &memStore{
		posts:    map[int64]*models.Post{},
		users:    map[int64]*models.User{},
		comments: map[int64]*models.Comment{},
	}
}

func (s *memStore) addPost(id, userID int64) {
	s.posts[id] = &models.Post{ID: id, UserID: userID, Title: "t", Description: "d", ImageURL: "u"}
}

func (s *memStore) addUser(id int64, username string) {
	s.users[id] = &models.User{ID: id, Username: username, Roles: models.RoleUser}
}

func (s *memStore) commentCount(postID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.posts[postID].CommentCount
}

func (s *memStore) rowsFor(postID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, c := range s.comments {
		if c.PostID == postID {
			n++
		}
	}
	return n
}

func (s *memStore) ListByPost(_ context.Context, postID int64, req repository.PageRequest) (repository.Page[models.Comment], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []models.Comment
	for _, c := range s.comments {
		if c.PostID == postID {
			all = append(all, *c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	start := min(req.Page*req.Size, len(all))
	end := min(start+req.Size, len(all))
	return repository.NewPage(all[start:end], req, total), nil
}

func (s *memStore) ListAll(context.Context) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Comment{}
	for _, c := range s.comments {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) FindByID(_ context.Context, id int64) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *memStore) FindByIDAndPostID(ctx context.Context, id, postID int64) (*models.Comment, error) {
	c, err := s.FindByID(ctx, id)
	if err != nil || c.PostID != postID {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

func (s *memStore) Create(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[c.PostID]
	if !ok {
		return repository.ErrNotFound
	}
	s.nextID++
	c.ID = s.nextID
	post.CommentCount++
	cp := *c
	s.comments[c.ID] = &cp
	return nil
}

func (s *memStore) UpdateText(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.comments[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Text = c.Text
	return nil
}

func (s *memStore) Delete(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[c.ID]; !ok {
		return repository.ErrNotFound
	}
	delete(s.comments, c.ID)
	if post, ok := s.posts[c.PostID]; ok && post.CommentCount > 0 {
		post.CommentCount--
	}
	return nil
}

func (s *memStore) RecountComments(_ context.Context, postID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[postID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	var n int64
	for _, c := range s.comments {
		if c.PostID == postID {
			n++
		}
	}
	post.CommentCount = n
	return n, nil
}

func (s *memStore) setCommentCount(postID, n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[postID].CommentCount = n
}

// memPosts and memUsers expose the lookups the service needs from memStore.
type memPosts struct{ *memStore }

func (p memPosts) FindByID(_ context.Context, id int64) (*models.Post, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	post, ok := p.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *post
	return &cp, nil
}

func (p memPosts) Exists(_ context.Context, id int64) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.posts[id]
	return ok, nil
}

type memUsers struct{ *memStore }

func (u memUsers) FindByID(_ context.Context, id int64) (*models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) PostPage(ctx context.Context, postID int64, req repository.PageRequest) (repository.Page[models.Comment], int64, bool) {
	args := m.Called(ctx, postID, req)
	return args.Get(0).(repository.Page[models.Comment]), args.Get(1).(int64), args.Bool(2)
}

func (m *MockCache) StorePostPage(ctx context.Context, postID, version int64, req repository.PageRequest, page repository.Page[models.Comment]) {
	m.Called(ctx, postID, version, req, page)
}

func (m *MockCache) All(ctx context.Context) ([]models.Comment, int64, bool) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Bool(2)
	}
	return args.Get(0).([]models.Comment), args.Get(1).(int64), args.Bool(2)
}

func (m *MockCache) StoreAll(ctx context.Context, version int64, comments []models.Comment) {
	m.Called(ctx, version, comments)
}

func (m *MockCache) Invalidate(ctx context.Context, postID int64) {
	m.Called(ctx, postID)
}

// memCache mirrors the Redis cache's version scheme in memory.
type memCache struct {
	mu          sync.Mutex
	postVersion map[int64]int64
	allVersion  int64
	pages       map[string]repository.Page[models.Comment]
	all         map[int64][]models.Comment
}

func newMemCache() *memCache {
	return &memCache{
		postVersion: map[int64]int64{},
		pages:       map[string]repository.Page[models.Comment]{},
		all:         map[int64][]models.Comment{},
	}
}

func memPageKey(postID, version int64, req repository.PageRequest) string {
	return fmt.Sprintf("%d:%d:%d:%d:%s:%t", postID, version, req.Page, req.Size, req.SortField, req.SortDesc)
}

func (c *memCache) PostPage(_ context.Context, postID int64, req repository.PageRequest) (repository.Page[models.Comment], int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.postVersion[postID]
	page, ok := c.pages[memPageKey(postID, v, req)]
	return page, v, ok
}

func (c *memCache) StorePostPage(_ context.Context, postID, version int64, req repository.PageRequest, page repository.Page[models.Comment]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[memPageKey(postID, version, req)] = page
}

func (c *memCache) All(context.Context) ([]models.Comment, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	comments, ok := c.all[c.allVersion]
	return comments, c.allVersion, ok
}

func (c *memCache) StoreAll(_ context.Context, version int64, comments []models.Comment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.all[version] = comments
}

func (c *memCache) Invalidate(_ context.Context, postID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.postVersion[postID]++
	c.allVersion++
}

// interleavedStore runs afterRead once, right after the next list query
// returns and before the service sees the result.
type interleavedStore struct {
	*memStore
	afterRead func()
}

func (s *interleavedStore) fire() {
	if f := s.afterRead; f != nil {
		s.afterRead = nil
		f()
	}
}

func (s *interleavedStore) ListByPost(ctx context.Context, postID int64, req repository.PageRequest) (repository.Page[models.Comment], error) {
	page, err := s.memStore.ListByPost(ctx, postID, req)
	s.fire()
	return page, err
}

func (s *interleavedStore) ListAll(ctx context.Context) ([]models.Comment, error) {
	comments, err := s.memStore.ListAll(ctx)
	s.fire()
	return comments, err
}
