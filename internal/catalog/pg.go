package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mcansh/snkrs-sub000/internal/weberr"
)

// PG implements Store against Postgres via database/sql.
type PG struct {
	db *sql.DB
}

func NewPG(db *sql.DB) *PG {
	return &PG{db: db}
}

func (s *PG) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const userColumns = `id, username, email, name, admin, timezone`

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var id uuid.UUID
	err := row.Scan(&id, &u.Username, &u.Email, &u.Name, &u.Admin, &u.Timezone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, weberr.NotFound("user")
	}
	if err != nil {
		return nil, err
	}
	u.ID = id.String()
	return &u, nil
}

func (s *PG) UserByID(ctx context.Context, id string) (*User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id))
}

func (s *PG) UserByUsername(ctx context.Context, username string) (*User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE LOWER(username) = LOWER($1)
	`, username))
}

func (s *PG) CollectionByUsername(ctx context.Context, username string, sort Sort) (*UserCollection, error) {
	user, err := s.UserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	order := "DESC"
	if sort == SortAsc {
		order = "ASC"
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.user_id, s.model, s.colorway, s.price, s.retail_price,
		       s.purchase_date, s.image_url, s.sold, s.sold_date,
		       b.id, b.name, b.slug
		FROM sneakers s
		JOIN brands b ON b.id = s.brand_id
		WHERE s.user_id = $1
		ORDER BY s.purchase_date `+order+`
	`, user.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sneakers := []Sneaker{}
	for rows.Next() {
		var sn Sneaker
		var snID, userID, brandID uuid.UUID
		var soldDate sql.NullTime
		err := rows.Scan(
			&snID, &userID, &sn.Model, &sn.Colorway, &sn.Price, &sn.RetailPrice,
			&sn.PurchaseDate, &sn.ImageURL, &sn.Sold, &soldDate,
			&brandID, &sn.Brand.Name, &sn.Brand.Slug,
		)
		if err != nil {
			return nil, err
		}
		sn.ID = snID.String()
		sn.UserID = userID.String()
		sn.Brand.ID = brandID.String()
		if soldDate.Valid {
			t := soldDate.Time
			sn.SoldDate = &t
		}
		sneakers = append(sneakers, sn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &UserCollection{User: *user, Sneakers: sneakers}, nil
}

func (s *PG) Register(ctx context.Context, p RegisterParams) (string, error) {
	fields := map[string]string{}

	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))
	`, p.Email).Scan(&exists)
	if err != nil {
		return "", err
	}
	if exists {
		fields["email"] = "A user with this email already exists"
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(username) = LOWER($1))
	`, p.Username).Scan(&exists)
	if err != nil {
		return "", err
	}
	if exists {
		fields["username"] = "A user with this username already exists"
	}

	if len(fields) > 0 {
		return "", weberr.Validation(fields)
	}

	hash, version, err := hashPassword(p.Password)
	if err != nil {
		return "", weberr.Validation(map[string]string{"password": err.Error()})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var userID uuid.UUID
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (username, email, name)
		VALUES ($1, $2, $3)
		RETURNING id
	`, p.Username, p.Email, p.Name).Scan(&userID)
	if err != nil {
		return "", err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO credentials (user_id, password_hash, hash_version)
		VALUES ($1, $2, $3)
	`, userID, hash, version)
	if err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}

	return userID.String(), nil
}

func (s *PG) Authenticate(ctx context.Context, email, password string) (string, error) {
	var (
		userID       uuid.UUID
		passwordHash string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, c.password_hash
		FROM users u
		JOIN credentials c ON c.user_id = u.id
		WHERE LOWER(u.email) = LOWER($1)
	`, email).Scan(&userID, &passwordHash)
	if err != nil {
		// hide whether the user exists or not
		return "", weberr.InvalidLogin()
	}

	if err := verifyPassword(passwordHash, password); err != nil {
		return "", weberr.InvalidLogin()
	}

	return userID.String(), nil
}

func (s *PG) SneakerByID(ctx context.Context, id string) (*Sneaker, error) {
	var sn Sneaker
	var snID, userID, brandID uuid.UUID
	var soldDate sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT s.id, s.user_id, s.model, s.colorway, s.price, s.retail_price,
		       s.purchase_date, s.image_url, s.sold, s.sold_date,
		       b.id, b.name, b.slug
		FROM sneakers s
		JOIN brands b ON b.id = s.brand_id
		WHERE s.id = $1
	`, id).Scan(
		&snID, &userID, &sn.Model, &sn.Colorway, &sn.Price, &sn.RetailPrice,
		&sn.PurchaseDate, &sn.ImageURL, &sn.Sold, &soldDate,
		&brandID, &sn.Brand.Name, &sn.Brand.Slug,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, weberr.NotFound("sneaker")
	}
	if err != nil {
		return nil, err
	}
	sn.ID = snID.String()
	sn.UserID = userID.String()
	sn.Brand.ID = brandID.String()
	if soldDate.Valid {
		t := soldDate.Time
		sn.SoldDate = &t
	}
	return &sn, nil
}

// ensureBrand finds a brand by slug, creating it on first use.
func (s *PG) ensureBrand(ctx context.Context, name string) (Brand, error) {
	b := Brand{Name: name, Slug: Slugify(name)}
	if b.Slug == "" {
		return Brand{}, fmt.Errorf("catalog: empty brand name")
	}

	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name FROM brands WHERE slug = $1
	`, b.Slug).Scan(&id, &b.Name)
	if errors.Is(err, sql.ErrNoRows) {
		err = s.db.QueryRowContext(ctx, `
			INSERT INTO brands (name, slug)
			VALUES ($1, $2)
			ON CONFLICT (slug) DO UPDATE SET name = brands.name
			RETURNING id
		`, b.Name, b.Slug).Scan(&id)
	}
	if err != nil {
		return Brand{}, err
	}

	b.ID = id.String()
	return b, nil
}

func (s *PG) CreateSneaker(ctx context.Context, p SneakerParams) (*Sneaker, error) {
	brand, err := s.ensureBrand(ctx, p.BrandName)
	if err != nil {
		return nil, err
	}

	var id uuid.UUID
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO sneakers
			(user_id, brand_id, model, colorway, price, retail_price,
			 purchase_date, image_url, sold, sold_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`, p.UserID, brand.ID, p.Model, p.Colorway, p.Price, p.RetailPrice,
		p.PurchaseDate, p.ImageURL, p.Sold, p.SoldDate).Scan(&id)
	if err != nil {
		return nil, err
	}

	return s.SneakerByID(ctx, id.String())
}

func (s *PG) UpdateSneaker(ctx context.Context, id string, p SneakerParams) (*Sneaker, error) {
	brand, err := s.ensureBrand(ctx, p.BrandName)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE sneakers
		SET brand_id = $2, model = $3, colorway = $4, price = $5,
		    retail_price = $6, purchase_date = $7, sold = $8, sold_date = $9,
		    updated_at = NOW()
		WHERE id = $1
	`, id, brand.ID, p.Model, p.Colorway, p.Price, p.RetailPrice,
		p.PurchaseDate, p.Sold, p.SoldDate)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, weberr.NotFound("sneaker")
	}

	return s.SneakerByID(ctx, id)
}

func (s *PG) SetSneakerImage(ctx context.Context, id, imageURL string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sneakers SET image_url = $2, updated_at = NOW() WHERE id = $1
	`, id, imageURL)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return weberr.NotFound("sneaker")
	}
	return nil
}

func (s *PG) Brands(ctx context.Context) ([]Brand, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, slug FROM brands ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var brands []Brand
	for rows.Next() {
		var b Brand
		var id uuid.UUID
		if err := rows.Scan(&id, &b.Name, &b.Slug); err != nil {
			return nil, err
		}
		b.ID = id.String()
		brands = append(brands, b)
	}
	return brands, rows.Err()
}
