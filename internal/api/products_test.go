package api

import (
	"fmt"
	"net/http"
	"testing"

	"bakery_system/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProduct(t *testing.T) {
	env := newTestEnv(t)
	bakerUser, bakerToken := env.mustCreateUser(t, "baker@test.local", domain.RoleBaker)
	_, customerToken := env.mustCreateUser(t, "customer@test.local", domain.RoleCustomer)
	category := env.mustCreateCategory(t, "Breads")

	w := env.do(t, http.MethodPost, "/products", bakerToken, ProductCreateRequest{
		Name:          "Pandesal",
		Price:         5.0,
		StockQuantity: 50,
		CategoryID:    category.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var product domain.Product
	decode(t, w, &product)
	assert.Equal(t, bakerUser.ID, product.BakerID)
	assert.True(t, product.IsAvailable)

	// Only bakers may list products
	w = env.do(t, http.MethodPost, "/products", customerToken, ProductCreateRequest{
		Name:       "Pandesal",
		Price:      5.0,
		CategoryID: category.ID,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The category must exist
	w = env.do(t, http.MethodPost, "/products", bakerToken, ProductCreateRequest{
		Name:       "Ensaymada",
		Price:      25.0,
		CategoryID: 9999,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateProductOwnership(t *testing.T) {
	env := newTestEnv(t)
	bakerUser, bakerToken := env.mustCreateUser(t, "baker@test.local", domain.RoleBaker)
	_, otherBakerToken := env.mustCreateUser(t, "baker2@test.local", domain.RoleBaker)
	_, adminToken := env.mustCreateUser(t, "admin@test.local", domain.RoleAdmin)
	category := env.mustCreateCategory(t, "Breads")
	product := env.mustCreateProduct(t, "Pandesal", 5.0, 50, bakerUser.ID, category.ID)

	newPrice := 6.0
	// Another baker cannot touch the listing
	w := env.do(t, http.MethodPut, fmt.Sprintf("/products/%d", product.ID), otherBakerToken,
		ProductUpdateRequest{Price: &newPrice})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The owner can
	w = env.do(t, http.MethodPut, fmt.Sprintf("/products/%d", product.ID), bakerToken,
		ProductUpdateRequest{Price: &newPrice})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated domain.Product
	decode(t, w, &updated)
	assert.Equal(t, 6.0, updated.Price)

	// So can an admin
	adminPrice := 7.0
	w = env.do(t, http.MethodPut, fmt.Sprintf("/products/%d", product.ID), adminToken,
		ProductUpdateRequest{Price: &adminPrice})
	assert.Equal(t, http.StatusOK, w.Code)

	negative := -1.0
	w = env.do(t, http.MethodPut, fmt.Sprintf("/products/%d", product.ID), bakerToken,
		ProductUpdateRequest{Price: &negative})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteProductIsSoft(t *testing.T) {
	env := newTestEnv(t)
	bakerUser, bakerToken := env.mustCreateUser(t, "baker@test.local", domain.RoleBaker)
	category := env.mustCreateCategory(t, "Breads")
	product := env.mustCreateProduct(t, "Pandesal", 5.0, 50, bakerUser.ID, category.ID)

	w := env.do(t, http.MethodDelete, fmt.Sprintf("/products/%d", product.ID), bakerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The row survives for order history, just marked unavailable
	var after domain.Product
	require.NoError(t, env.db.First(&after, product.ID).Error)
	assert.False(t, after.IsAvailable)
}

func TestUpdateStock(t *testing.T) {
	env := newTestEnv(t)
	bakerUser, bakerToken := env.mustCreateUser(t, "baker@test.local", domain.RoleBaker)
	category := env.mustCreateCategory(t, "Breads")
	product := env.mustCreateProduct(t, "Pandesal", 5.0, 10, bakerUser.ID, category.ID)

	// Draining below zero is rejected and leaves stock untouched
	w := env.do(t, http.MethodPatch,
		fmt.Sprintf("/products/%d/stock?quantity_change=-11", product.ID), bakerToken, nil)
	require.Equal(t, http.StatusConflict, w.Code)
	var resp map[string]string
	decode(t, w, &resp)
	assert.Equal(t, "Insufficient stock", resp["error"])
	var check domain.Product
	require.NoError(t, env.db.First(&check, product.ID).Error)
	assert.Equal(t, 10, check.StockQuantity)

	// Draining to exactly zero flips availability off
	w = env.do(t, http.MethodPatch,
		fmt.Sprintf("/products/%d/stock?quantity_change=-10", product.ID), bakerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated domain.Product
	decode(t, w, &updated)
	assert.Equal(t, 0, updated.StockQuantity)
	assert.False(t, updated.IsAvailable)

	// Restocking flips it back on
	w = env.do(t, http.MethodPatch,
		fmt.Sprintf("/products/%d/stock?quantity_change=25", product.ID), bakerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &updated)
	assert.Equal(t, 25, updated.StockQuantity)
	assert.True(t, updated.IsAvailable)
}

func TestListProductsFilters(t *testing.T) {
	env := newTestEnv(t)
	bakerUser, bakerToken := env.mustCreateUser(t, "baker@test.local", domain.RoleBaker)
	otherBaker, _ := env.mustCreateUser(t, "baker2@test.local", domain.RoleBaker)
	breads := env.mustCreateCategory(t, "Breads")
	cakes := env.mustCreateCategory(t, "Cakes")
	env.mustCreateProduct(t, "Pandesal", 5.0, 50, bakerUser.ID, breads.ID)
	env.mustCreateProduct(t, "Ube Cake", 450.0, 5, otherBaker.ID, cakes.ID)
	env.mustCreateProduct(t, "Sold Out Roll", 10.0, 0, bakerUser.ID, breads.ID)

	var resp struct {
		Products []domain.Product `json:"products"`
	}

	// Default listing hides unavailable products
	w := env.do(t, http.MethodGet, "/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Len(t, resp.Products, 2)

	w = env.do(t, http.MethodGet, "/products?available_only=false", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Len(t, resp.Products, 3)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/products?category_id=%d", cakes.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "Ube Cake", resp.Products[0].Name)

	w = env.do(t, http.MethodGet, "/products?search=Pandesal", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "Pandesal", resp.Products[0].Name)

	// Bakers see all of their own listings, available or not
	w = env.do(t, http.MethodGet, "/products/baker/my-products", bakerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Len(t, resp.Products, 2)
}
