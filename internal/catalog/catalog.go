// Package catalog is the system of record for users, brands, and
// sneakers.
package catalog

import (
	"context"
	"time"
)

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Admin    bool   `json:"admin"`
	Timezone string `json:"timezone,omitempty"`
}

type Brand struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Sneaker struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	Brand        Brand      `json:"brand"`
	Model        string     `json:"model"`
	Colorway     string     `json:"colorway"`
	Price        int        `json:"price"`       // cents
	RetailPrice  int        `json:"retailPrice"` // cents
	PurchaseDate time.Time  `json:"purchaseDate"`
	ImageURL     string     `json:"imageUrl,omitempty"`
	Sold         bool       `json:"sold"`
	SoldDate     *time.Time `json:"soldDate,omitempty"`
}

// UserCollection is the profile-page snapshot: the user plus their full
// collection with the brand relation, ordered by purchase date.
type UserCollection struct {
	User     User      `json:"user"`
	Sneakers []Sneaker `json:"sneakers"`
}

// Sort orders a collection by purchase date.
type Sort string

const (
	SortAsc  Sort = "asc"
	SortDesc Sort = "desc"
)

// NormalizeSort maps any unrecognized value to descending.
func NormalizeSort(s string) Sort {
	if s == string(SortAsc) {
		return SortAsc
	}
	return SortDesc
}

type RegisterParams struct {
	Email    string
	Username string
	Name     string
	Password string
}

type SneakerParams struct {
	UserID       string
	BrandName    string
	Model        string
	Colorway     string
	Price        int
	RetailPrice  int
	PurchaseDate time.Time
	ImageURL     string
	Sold         bool
	SoldDate     *time.Time
}

type Store interface {
	Ping(ctx context.Context) error

	UserByID(ctx context.Context, id string) (*User, error)
	UserByUsername(ctx context.Context, username string) (*User, error)

	// CollectionByUsername returns the user joined with their sneakers and
	// brands, ordered by purchase date.
	CollectionByUsername(ctx context.Context, username string, sort Sort) (*UserCollection, error)

	Register(ctx context.Context, p RegisterParams) (string, error)
	Authenticate(ctx context.Context, email, password string) (string, error)

	SneakerByID(ctx context.Context, id string) (*Sneaker, error)
	CreateSneaker(ctx context.Context, p SneakerParams) (*Sneaker, error)
	UpdateSneaker(ctx context.Context, id string, p SneakerParams) (*Sneaker, error)
	SetSneakerImage(ctx context.Context, id, imageURL string) error

	Brands(ctx context.Context) ([]Brand, error)
}

// FilterByBrands keeps sneakers whose brand slug is in slugs. An empty
// filter keeps everything. Order is preserved, so the result is identical
// whether the input came from the cache or from a fresh read.
func FilterByBrands(sneakers []Sneaker, slugs []string) []Sneaker {
	if len(slugs) == 0 {
		return sneakers
	}

	want := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		want[s] = true
	}

	out := make([]Sneaker, 0, len(sneakers))
	for _, sn := range sneakers {
		if want[sn.Brand.Slug] {
			out = append(out, sn)
		}
	}
	return out
}

// Slugify lowercases and hyphenates a brand name for URLs and filters.
func Slugify(name string) string {
	out := make([]rune, 0, len(name))
	lastDash := true // trims leading dashes
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
			lastDash = false
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
			lastDash = false
		default:
			if !lastDash {
				out = append(out, '-')
				lastDash = true
			}
		}
	}
	for len(out) > 0 && out[len(out)-1] == '-' {
		out = out[:len(out)-1]
	}
	return string(out)
}
