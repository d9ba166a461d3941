// Package inmemory implements the storage.Store boundary with plain maps.
// It backs tests and the default zero-configuration serve mode.
package inmemory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lenshub/lenshub/pkg/market"
	"github.com/lenshub/lenshub/pkg/storage"
)

// Store implements storage.Store using in-memory maps.
type Store struct {
	// mu guards all maps below
	mu sync.RWMutex

	profiles      map[string]*market.Profile
	components    map[string]*market.Component
	comments      map[string]*market.Comment
	favorites     map[string]*market.Favorite
	announcements map[string]*market.Announcement
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		profiles:      make(map[string]*market.Profile),
		components:    make(map[string]*market.Component),
		comments:      make(map[string]*market.Comment),
		favorites:     make(map[string]*market.Favorite),
		announcements: make(map[string]*market.Announcement),
	}
}

// Profiles

func (s *Store) CreateProfile(_ context.Context, p *market.Profile) error {
	if p == nil {
		return errors.New("cannot store nil profile")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[p.ID]; ok {
		return errors.New("profile already exists: " + p.ID)
	}

	cp := *p
	s.profiles[p.ID] = &cp
	return nil
}

func (s *Store) GetProfile(_ context.Context, id string) (*market.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, storage.NotFoundError{Kind: "profile", ID: id}
	}

	cp := *p
	return &cp, nil
}

func (s *Store) GetProfileByUsername(_ context.Context, username string) (*market.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.profiles {
		if p.Username == username {
			cp := *p
			return &cp, nil
		}
	}

	return nil, storage.NotFoundError{Kind: "profile", ID: username}
}

func (s *Store) UpdateProfile(_ context.Context, id string, upd storage.ProfileUpdate) (*market.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, storage.NotFoundError{Kind: "profile", ID: id}
	}

	if upd.Username != nil {
		p.Username = *upd.Username
	}
	if upd.Email != nil {
		p.Email = *upd.Email
	}
	if upd.Phone != nil {
		p.Phone = *upd.Phone
	}
	if upd.AvatarURL != nil {
		p.AvatarURL = *upd.AvatarURL
	}
	if upd.Bio != nil {
		p.Bio = *upd.Bio
	}
	if upd.Role != nil {
		p.Role = *upd.Role
	}

	cp := *p
	return &cp, nil
}

func (s *Store) ListProfiles(_ context.Context) ([]market.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]market.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		result = append(result, *p)
	}

	// Newest first, matching the front end's expectation.
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

// Components

func (s *Store) ListComponents(_ context.Context, filter storage.ComponentFilter) ([]market.ComponentWithAuthor, error) {
	filter = filter.Normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*market.Component, 0, len(s.components))
	for _, c := range s.components {
		if !matches(c, filter) {
			continue
		}
		matched = append(matched, c)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	from := (filter.Page - 1) * filter.PageSize
	if from >= len(matched) {
		return []market.ComponentWithAuthor{}, nil
	}
	to := from + filter.PageSize
	if to > len(matched) {
		to = len(matched)
	}

	result := make([]market.ComponentWithAuthor, 0, to-from)
	for _, c := range matched[from:to] {
		result = append(result, s.withAuthor(c))
	}

	return result, nil
}

func matches(c *market.Component, f storage.ComponentFilter) bool {
	if f.Status != "" && string(c.Status) != f.Status {
		return false
	}
	if f.Category != "" && f.Category != "all" && c.Category != f.Category {
		return false
	}
	if f.AuthorID != "" && c.AuthorID != f.AuthorID {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(c.Name), needle) &&
			!strings.Contains(strings.ToLower(c.Description), needle) {
			return false
		}
	}
	return true
}

// withAuthor joins the author profile onto a component copy.
// Callers must hold at least the read lock.
func (s *Store) withAuthor(c *market.Component) market.ComponentWithAuthor {
	cw := market.ComponentWithAuthor{Component: *c}
	if p, ok := s.profiles[c.AuthorID]; ok {
		cp := *p
		cw.Author = &cp
	}
	return cw
}

func (s *Store) GetComponent(_ context.Context, id string) (*market.ComponentWithAuthor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.components[id]
	if !ok {
		return nil, storage.NotFoundError{Kind: "component", ID: id}
	}

	cw := s.withAuthor(c)
	return &cw, nil
}

func (s *Store) CreateComponent(_ context.Context, c *market.Component) error {
	if c == nil {
		return errors.New("cannot store nil component")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.components[c.ID]; ok {
		return errors.New("component already exists: " + c.ID)
	}

	cp := *c
	s.components[c.ID] = &cp
	return nil
}

func (s *Store) UpdateComponent(_ context.Context, id string, upd storage.ComponentUpdate) (*market.Component, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.components[id]
	if !ok {
		return nil, storage.NotFoundError{Kind: "component", ID: id}
	}

	if upd.Name != nil {
		c.Name = *upd.Name
	}
	if upd.Description != nil {
		c.Description = *upd.Description
	}
	if upd.Category != nil {
		c.Category = *upd.Category
	}
	if upd.Version != nil {
		c.Version = *upd.Version
	}
	if upd.FileURL != nil {
		c.FileURL = *upd.FileURL
	}
	if upd.ImageURL != nil {
		c.ImageURL = *upd.ImageURL
	}
	if upd.Status != nil {
		c.Status = *upd.Status
	}
	c.UpdatedAt = time.Now().UTC()

	cp := *c
	return &cp, nil
}

func (s *Store) DeleteComponent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.components[id]; !ok {
		return storage.NotFoundError{Kind: "component", ID: id}
	}

	delete(s.components, id)

	// Cascade to dependent records, mirroring the managed backend's
	// foreign-key behavior.
	for cid, cm := range s.comments {
		if cm.ComponentID == id {
			delete(s.comments, cid)
		}
	}
	for fid, f := range s.favorites {
		if f.ComponentID == id {
			delete(s.favorites, fid)
		}
	}

	return nil
}

func (s *Store) IncrementDownloadCount(_ context.Context, componentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.components[componentID]
	if !ok {
		return storage.NotFoundError{Kind: "component", ID: componentID}
	}

	c.DownloadCount++
	return nil
}

func (s *Store) Categories(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var categories []string
	for _, c := range s.components {
		if c.Category == "" || seen[c.Category] {
			continue
		}
		seen[c.Category] = true
		categories = append(categories, c.Category)
	}

	sort.Strings(categories)
	return categories, nil
}

func (s *Store) ComponentStats(_ context.Context, componentID string) (*market.ComponentStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.components[componentID]
	if !ok {
		return nil, storage.NotFoundError{Kind: "component", ID: componentID}
	}

	stats := &market.ComponentStats{TotalDownloads: c.DownloadCount}

	var ratingSum, rated int
	for _, cm := range s.comments {
		if cm.ComponentID != componentID {
			continue
		}
		stats.CommentCount++
		if cm.Rating > 0 {
			ratingSum += cm.Rating
			rated++
		}
	}
	if rated > 0 {
		stats.AverageRating = float64(ratingSum) / float64(rated)
	}

	for _, f := range s.favorites {
		if f.ComponentID == componentID {
			stats.FavoriteCount++
		}
	}

	return stats, nil
}

// Comments

func (s *Store) ListComments(_ context.Context, componentID string) ([]market.CommentWithUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]market.CommentWithUser, 0)
	for _, c := range s.comments {
		if c.ComponentID != componentID {
			continue
		}
		cw := market.CommentWithUser{Comment: *c}
		if p, ok := s.profiles[c.UserID]; ok {
			cp := *p
			cw.User = &cp
		}
		result = append(result, cw)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (s *Store) GetComment(_ context.Context, id string) (*market.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, storage.NotFoundError{Kind: "comment", ID: id}
	}

	cp := *c
	return &cp, nil
}

func (s *Store) CreateComment(_ context.Context, c *market.Comment) error {
	if c == nil {
		return errors.New("cannot store nil comment")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.components[c.ComponentID]; !ok {
		return storage.NotFoundError{Kind: "component", ID: c.ComponentID}
	}

	cp := *c
	s.comments[c.ID] = &cp
	return nil
}

func (s *Store) UpdateComment(_ context.Context, id string, upd storage.CommentUpdate) (*market.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, storage.NotFoundError{Kind: "comment", ID: id}
	}

	if upd.Content != nil {
		c.Content = *upd.Content
	}
	if upd.Rating != nil {
		c.Rating = *upd.Rating
	}

	cp := *c
	return &cp, nil
}

func (s *Store) DeleteComment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return storage.NotFoundError{Kind: "comment", ID: id}
	}

	delete(s.comments, id)
	return nil
}

// Favorites

func (s *Store) ListFavorites(_ context.Context, userID string) ([]market.Favorite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]market.Favorite, 0)
	for _, f := range s.favorites {
		if f.UserID == userID {
			result = append(result, *f)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (s *Store) AddFavorite(_ context.Context, f *market.Favorite) error {
	if f == nil {
		return errors.New("cannot store nil favorite")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Idempotent: adding an existing favorite is a no-op.
	for _, existing := range s.favorites {
		if existing.UserID == f.UserID && existing.ComponentID == f.ComponentID {
			return nil
		}
	}

	cp := *f
	s.favorites[f.ID] = &cp
	return nil
}

func (s *Store) RemoveFavorite(_ context.Context, userID, componentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, f := range s.favorites {
		if f.UserID == userID && f.ComponentID == componentID {
			delete(s.favorites, id)
			return nil
		}
	}

	return storage.NotFoundError{Kind: "favorite", ID: componentID}
}

func (s *Store) IsFavorite(_ context.Context, userID, componentID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, f := range s.favorites {
		if f.UserID == userID && f.ComponentID == componentID {
			return true, nil
		}
	}

	return false, nil
}

// Announcements

func (s *Store) ListAnnouncements(_ context.Context, activeOnly bool) ([]market.Announcement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]market.Announcement, 0, len(s.announcements))
	for _, a := range s.announcements {
		if activeOnly && !a.IsActive {
			continue
		}
		result = append(result, *a)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (s *Store) CreateAnnouncement(_ context.Context, a *market.Announcement) error {
	if a == nil {
		return errors.New("cannot store nil announcement")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *a
	s.announcements[a.ID] = &cp
	return nil
}

func (s *Store) UpdateAnnouncement(_ context.Context, id string, upd storage.AnnouncementUpdate) (*market.Announcement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.announcements[id]
	if !ok {
		return nil, storage.NotFoundError{Kind: "announcement", ID: id}
	}

	if upd.Title != nil {
		a.Title = *upd.Title
	}
	if upd.Content != nil {
		a.Content = *upd.Content
	}
	if upd.Priority != nil {
		a.Priority = *upd.Priority
	}
	if upd.IsActive != nil {
		a.IsActive = *upd.IsActive
	}
	a.UpdatedAt = time.Now().UTC()

	cp := *a
	return &cp, nil
}

func (s *Store) DeleteAnnouncement(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.announcements[id]; !ok {
		return storage.NotFoundError{Kind: "announcement", ID: id}
	}

	delete(s.announcements, id)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}
