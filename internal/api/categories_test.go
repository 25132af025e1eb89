package api

import (
	"fmt"
	"net/http"
	"testing"

	"bakery_system/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryCRUD(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.mustCreateUser(t, "admin@test.local", domain.RoleAdmin)

	w := env.do(t, http.MethodPost, "/categories", adminToken,
		CategoryCreateRequest{Name: "Breads", Description: "Daily breads"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var category domain.Category
	decode(t, w, &category)
	assert.True(t, category.IsActive)

	// Duplicate names are rejected
	w = env.do(t, http.MethodPost, "/categories", adminToken,
		CategoryCreateRequest{Name: "Breads"})
	require.Equal(t, http.StatusConflict, w.Code)
	var resp map[string]string
	decode(t, w, &resp)
	assert.Equal(t, "Category name already exists", resp["error"])

	// Reads are public
	w = env.do(t, http.MethodGet, fmt.Sprintf("/categories/%d", category.ID), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Partial update
	newDesc := "Breads baked daily"
	w = env.do(t, http.MethodPut, fmt.Sprintf("/categories/%d", category.ID), adminToken,
		CategoryUpdateRequest{Description: &newDesc})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &category)
	assert.Equal(t, newDesc, category.Description)
	assert.Equal(t, "Breads", category.Name)
}

func TestCategoryWritesRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	_, bakerToken := env.mustCreateUser(t, "baker@test.local", domain.RoleBaker)

	w := env.do(t, http.MethodPost, "/categories", bakerToken,
		CategoryCreateRequest{Name: "Breads"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/categories", "",
		CategoryCreateRequest{Name: "Breads"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeleteCategoryBlockedByProducts(t *testing.T) {
	env := newTestEnv(t)
	bakerUser, _ := env.mustCreateUser(t, "baker@test.local", domain.RoleBaker)
	_, adminToken := env.mustCreateUser(t, "admin@test.local", domain.RoleAdmin)
	category := env.mustCreateCategory(t, "Cakes")
	product := env.mustCreateProduct(t, "Ube Cake", 450.0, 5, bakerUser.ID, category.ID)

	w := env.do(t, http.MethodDelete, fmt.Sprintf("/categories/%d", category.ID), adminToken, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	// After the product is reassigned the delete goes through
	other := env.mustCreateCategory(t, "Pastries")
	require.NoError(t, env.db.Model(&domain.Product{}).Where("id = ?", product.ID).
		Update("category_id", other.ID).Error)
	w = env.do(t, http.MethodDelete, fmt.Sprintf("/categories/%d", category.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, fmt.Sprintf("/categories/%d", category.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListCategoriesCachesReads(t *testing.T) {
	env := newTestEnv(t)
	env.mustCreateCategory(t, "Breads")

	var resp struct {
		Categories []domain.Category `json:"categories"`
		Cached     bool              `json:"cached"`
	}
	w := env.do(t, http.MethodGet, "/categories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.False(t, resp.Cached)
	require.Len(t, resp.Categories, 1)

	// Second read is served from cache
	w = env.do(t, http.MethodGet, "/categories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.True(t, resp.Cached)

	// A write invalidates the cached listing
	_, adminToken := env.mustCreateUser(t, "admin@test.local", domain.RoleAdmin)
	w = env.do(t, http.MethodPost, "/categories", adminToken, CategoryCreateRequest{Name: "Cakes"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = env.do(t, http.MethodGet, "/categories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.False(t, resp.Cached)
	assert.Len(t, resp.Categories, 2)
}

func TestListCategoriesActiveFilter(t *testing.T) {
	env := newTestEnv(t)
	env.mustCreateCategory(t, "Breads")
	inactive := env.mustCreateCategory(t, "Seasonal")
	require.NoError(t, env.db.Model(&inactive).Update("is_active", false).Error)

	var resp struct {
		Categories []domain.Category `json:"categories"`
	}
	w := env.do(t, http.MethodGet, "/categories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Len(t, resp.Categories, 1)

	w = env.do(t, http.MethodGet, "/categories?active_only=false", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Len(t, resp.Categories, 2)
}
