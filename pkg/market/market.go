// Package market defines the marketplace entities shared between the record
// store, the HTTP handlers, and the event stream.
package market

import "time"

// UserRole identifies the privilege level of a profile.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// ComponentStatus is the review state of a published component.
type ComponentStatus string

const (
	StatusPending  ComponentStatus = "pending"
	StatusApproved ComponentStatus = "approved"
	StatusRejected ComponentStatus = "rejected"
)

// AnnouncementPriority orders announcements on the home page.
type AnnouncementPriority string

const (
	PriorityHigh   AnnouncementPriority = "high"
	PriorityNormal AnnouncementPriority = "normal"
	PriorityLow    AnnouncementPriority = "low"
)

// Profile is a marketplace user.
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Role      UserRole  `json:"role"`
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Component is a downloadable smart-glasses component listing.
type Component struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Category      string          `json:"category,omitempty"`
	Version       string          `json:"version,omitempty"`
	AuthorID      string          `json:"author_id"`
	FileURL       string          `json:"file_url,omitempty"`
	ImageURL      string          `json:"image_url,omitempty"`
	DownloadCount int             `json:"download_count"`
	Status        ComponentStatus `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ComponentWithAuthor joins a component with its author profile for list and
// detail responses.
type ComponentWithAuthor struct {
	Component
	Author *Profile `json:"author,omitempty"`
}

// Comment is user feedback on a component. Rating is 1-5, 0 when the comment
// carries no rating.
type Comment struct {
	ID          string    `json:"id"`
	ComponentID string    `json:"component_id"`
	UserID      string    `json:"user_id"`
	Content     string    `json:"content"`
	Rating      int       `json:"rating,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CommentWithUser joins a comment with the commenting profile.
type CommentWithUser struct {
	Comment
	User *Profile `json:"user,omitempty"`
}

// Favorite marks a component as saved by a user.
type Favorite struct {
	ID          string    `json:"id"`
	ComponentID string    `json:"component_id"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Announcement is a site-wide notice authored by an admin.
type Announcement struct {
	ID        string               `json:"id"`
	Title     string               `json:"title"`
	Content   string               `json:"content"`
	Priority  AnnouncementPriority `json:"priority"`
	IsActive  bool                 `json:"is_active"`
	CreatedBy string               `json:"created_by,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// ComponentStats aggregates the social signals shown on a detail page.
type ComponentStats struct {
	TotalDownloads int     `json:"total_downloads"`
	AverageRating  float64 `json:"average_rating"`
	CommentCount   int     `json:"comment_count"`
	FavoriteCount  int     `json:"favorite_count"`
}
