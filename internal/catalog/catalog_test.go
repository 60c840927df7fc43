package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sneaker(brandSlug, model string, purchased time.Time) Sneaker {
	return Sneaker{
		Brand:        Brand{Name: brandSlug, Slug: brandSlug},
		Model:        model,
		PurchaseDate: purchased,
	}
}

func TestFilterByBrands(t *testing.T) {
	now := time.Now()
	all := []Sneaker{
		sneaker("nike", "Air Max 1", now),
		sneaker("adidas", "Superstar", now.Add(time.Hour)),
		sneaker("nike", "Dunk Low", now.Add(2*time.Hour)),
	}

	nike := FilterByBrands(all, []string{"nike"})
	assert.Len(t, nike, 2)
	assert.Equal(t, "Air Max 1", nike[0].Model)
	assert.Equal(t, "Dunk Low", nike[1].Model)

	both := FilterByBrands(all, []string{"nike", "adidas"})
	assert.Len(t, both, 3)

	none := FilterByBrands(all, []string{"puma"})
	assert.Empty(t, none)
}

func TestFilterByBrandsEmptyFilterKeepsAll(t *testing.T) {
	all := []Sneaker{sneaker("nike", "Air Max 1", time.Now())}
	assert.Equal(t, all, FilterByBrands(all, nil))
	assert.Equal(t, all, FilterByBrands(all, []string{}))
}

func TestNormalizeSort(t *testing.T) {
	assert.Equal(t, SortAsc, NormalizeSort("asc"))
	assert.Equal(t, SortDesc, NormalizeSort("desc"))
	assert.Equal(t, SortDesc, NormalizeSort(""))
	assert.Equal(t, SortDesc, NormalizeSort("ASC"))
	assert.Equal(t, SortDesc, NormalizeSort("newest"))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "nike", Slugify("Nike"))
	assert.Equal(t, "new-balance", Slugify("New Balance"))
	assert.Equal(t, "asics-gel-lyte", Slugify("Asics Gel-Lyte"))
	assert.Equal(t, "adidas", Slugify("  Adidas  "))
	assert.Equal(t, "", Slugify("---"))
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, version, err := hashPassword("correct horse battery")
	assert.NoError(t, err)
	assert.Equal(t, hashVersionBcrypt, version)

	assert.NoError(t, verifyPassword(hash, "correct horse battery"))
	assert.Error(t, verifyPassword(hash, "wrong password"))
}

func TestHashPasswordTooShort(t *testing.T) {
	_, _, err := hashPassword("short")
	assert.Error(t, err)
}
