package models

import "time"

// User is a person who can belong to groups. Home coordinates are optional.
type User struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	HomeLat   *float64  `db:"home_lat" json:"homeLat"`
	HomeLng   *float64  `db:"home_lng" json:"homeLng"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// HasHome reports whether both home coordinates are known.
func (u *User) HasHome() bool {
	return u != nil && u.HomeLat != nil && u.HomeLng != nil
}

// Interest is a topic tag on a user's profile.
type Interest struct {
	ID     string `db:"id" json:"id"`
	UserID string `db:"user_id" json:"userId"`
	Tag    string `db:"tag" json:"tag"`
}

// BucketItem is a free-text wishlist entry on a user's profile.
type BucketItem struct {
	ID     string `db:"id" json:"id"`
	UserID string `db:"user_id" json:"userId"`
	Item   string `db:"item" json:"item"`
}

// Profile bundles the planning signals of one group member.
type Profile struct {
	UserID    string
	User      *User
	Interests []*Interest
	Bucket    []*BucketItem
}

// CreateUserInput is the body of POST /users.
type CreateUserInput struct {
	Name    string   `json:"name" binding:"required"`
	HomeLat *float64 `json:"homeLat" binding:"omitempty,min=-90,max=90"`
	HomeLng *float64 `json:"homeLng" binding:"omitempty,min=-180,max=180"`
}

// CreateInterestInput is the body of POST /users/:userId/interests.
type CreateInterestInput struct {
	Tag string `json:"tag" binding:"required"`
}

// CreateBucketItemInput is the body of POST /users/:userId/bucket-items.
type CreateBucketItemInput struct {
	Item string `json:"item" binding:"required"`
}
