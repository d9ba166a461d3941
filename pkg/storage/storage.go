// Package storage defines the record-store boundary for the marketplace.
// The marketplace handlers never touch a database directly; they speak to a
// Store, and drivers (inmemory, sqlite) supply the persistence.
package storage

import (
	"context"

	"github.com/lenshub/lenshub/pkg/market"
)

// ComponentFilter narrows ListComponents results. Zero values mean
// "no constraint". Search matches a substring of name or description.
type ComponentFilter struct {
	Status   string
	Category string
	AuthorID string
	Search   string
	Page     int
	PageSize int
}

const defaultPageSize = 12

// Normalize fills in paging defaults, mirroring the front end's contract
// (page 1, 12 items per page).
func (f ComponentFilter) Normalize() ComponentFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	return f
}

// ProfileUpdate carries the mutable profile fields. Nil pointers are left
// untouched.
type ProfileUpdate struct {
	Username  *string
	Email     *string
	Phone     *string
	AvatarURL *string
	Bio       *string
	Role      *market.UserRole
}

// ComponentUpdate carries the mutable component fields. Nil pointers are
// left untouched.
type ComponentUpdate struct {
	Name        *string
	Description *string
	Category    *string
	Version     *string
	FileURL     *string
	ImageURL    *string
	Status      *market.ComponentStatus
}

// CommentUpdate carries the mutable comment fields.
type CommentUpdate struct {
	Content *string
	Rating  *int
}

// AnnouncementUpdate carries the mutable announcement fields.
type AnnouncementUpdate struct {
	Title    *string
	Content  *string
	Priority *market.AnnouncementPriority
	IsActive *bool
}

// Store is the record-store boundary: filtered select, insert, update,
// delete per entity, plus the RPC-style download counter increment.
type Store interface {
	// Profiles
	CreateProfile(ctx context.Context, p *market.Profile) error
	GetProfile(ctx context.Context, id string) (*market.Profile, error)
	GetProfileByUsername(ctx context.Context, username string) (*market.Profile, error)
	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*market.Profile, error)
	ListProfiles(ctx context.Context) ([]market.Profile, error)

	// Components
	ListComponents(ctx context.Context, filter ComponentFilter) ([]market.ComponentWithAuthor, error)
	GetComponent(ctx context.Context, id string) (*market.ComponentWithAuthor, error)
	CreateComponent(ctx context.Context, c *market.Component) error
	UpdateComponent(ctx context.Context, id string, upd ComponentUpdate) (*market.Component, error)
	DeleteComponent(ctx context.Context, id string) error

	// IncrementDownloadCount bumps the counter atomically server-side so
	// concurrent downloads never lose increments.
	IncrementDownloadCount(ctx context.Context, componentID string) error
	Categories(ctx context.Context) ([]string, error)

	// ComponentStats aggregates downloads, ratings, comment and favorite
	// counts for a component's detail page.
	ComponentStats(ctx context.Context, componentID string) (*market.ComponentStats, error)

	// Comments
	ListComments(ctx context.Context, componentID string) ([]market.CommentWithUser, error)
	GetComment(ctx context.Context, id string) (*market.Comment, error)
	CreateComment(ctx context.Context, c *market.Comment) error
	UpdateComment(ctx context.Context, id string, upd CommentUpdate) (*market.Comment, error)
	DeleteComment(ctx context.Context, id string) error

	// Favorites
	ListFavorites(ctx context.Context, userID string) ([]market.Favorite, error)
	AddFavorite(ctx context.Context, f *market.Favorite) error
	RemoveFavorite(ctx context.Context, userID, componentID string) error
	IsFavorite(ctx context.Context, userID, componentID string) (bool, error)

	// Announcements
	ListAnnouncements(ctx context.Context, activeOnly bool) ([]market.Announcement, error)
	CreateAnnouncement(ctx context.Context, a *market.Announcement) error
	UpdateAnnouncement(ctx context.Context, id string, upd AnnouncementUpdate) (*market.Announcement, error)
	DeleteAnnouncement(ctx context.Context, id string) error

	// Close closes the store and releases any resources.
	Close() error
}
