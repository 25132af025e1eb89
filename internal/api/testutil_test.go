package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"bakery_system/internal/domain"
	"bakery_system/internal/middleware"
	"bakery_system/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

// testEnv bundles an in-memory store, redis, and a fully wired router
type testEnv struct {
	db     *gorm.DB
	rdb    *redis.Client
	router *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Category{},
		&domain.Product{},
		&domain.Order{},
		&domain.OrderItem{},
		&domain.Delivery{},
	))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	tokenTTL := time.Hour
	r := gin.New()
	auth := middleware.JWTAuthMiddleware(db, testSecret)

	authGroup := r.Group("/auth")
	authGroup.POST("/register", RegisterHandler(db, testSecret, tokenTTL))
	authGroup.POST("/login", LoginHandler(db, testSecret, tokenTTL))
	authGroup.POST("/token", TokenHandler(db, testSecret, tokenTTL))
	authGroup.GET("/me", auth, MeHandler(db))

	userGroup := r.Group("/users")
	userGroup.Use(auth)
	userGroup.GET("", middleware.RequireAdmin(), ListUsersHandler(db))
	userGroup.GET("/role/:role", middleware.RequireAdmin(), ListUsersByRoleHandler(db))
	userGroup.GET("/:id", GetUserHandler(db))
	userGroup.PUT("/:id", UpdateUserHandler(db))
	userGroup.DELETE("/:id", middleware.RequireAdmin(), DeactivateUserHandler(db))
	userGroup.POST("/:id/activate", middleware.RequireAdmin(), ActivateUserHandler(db))

	categoryGroup := r.Group("/categories")
	categoryGroup.GET("", ListCategoriesHandler(db, rdb))
	categoryGroup.GET("/:id", GetCategoryHandler(db))
	categoryGroup.POST("", auth, middleware.RequireAdmin(), CreateCategoryHandler(db, rdb))
	categoryGroup.PUT("/:id", auth, middleware.RequireAdmin(), UpdateCategoryHandler(db, rdb))
	categoryGroup.DELETE("/:id", auth, middleware.RequireAdmin(), DeleteCategoryHandler(db, rdb))

	productGroup := r.Group("/products")
	productGroup.GET("", ListProductsHandler(db, rdb))
	productGroup.GET("/baker/my-products", auth, middleware.RequireRole(domain.RoleBaker), MyProductsHandler(db))
	productGroup.GET("/:id", GetProductHandler(db))
	productGroup.POST("", auth, middleware.RequireRole(domain.RoleBaker), CreateProductHandler(db, rdb))
	productGroup.PUT("/:id", auth, UpdateProductHandler(db, rdb))
	productGroup.DELETE("/:id", auth, DeleteProductHandler(db, rdb))
	productGroup.PATCH("/:id/stock", auth, middleware.RequireRole(domain.RoleBaker), UpdateStockHandler(db, rdb))

	orderGroup := r.Group("/orders")
	orderGroup.Use(auth)
	orderGroup.POST("", CreateOrderHandler(db, rdb))
	orderGroup.GET("", ListOrdersHandler(db))
	orderGroup.GET("/customer/my-orders", MyOrdersHandler(db))
	orderGroup.GET("/status/:status", middleware.RequireRole(domain.RoleBaker), OrdersByStatusHandler(db))
	orderGroup.GET("/:id", GetOrderHandler(db))
	orderGroup.PUT("/:id/status", UpdateOrderStatusHandler(db, rdb))
	orderGroup.PATCH("/:id/status", UpdateOrderStatusHandler(db, rdb))

	deliveryGroup := r.Group("/deliveries")
	deliveryGroup.Use(auth)
	deliveryGroup.POST("", middleware.RequireAdmin(), CreateDeliveryHandler(db))
	deliveryGroup.GET("", ListDeliveriesHandler(db))
	deliveryGroup.GET("/delivery-person/my-deliveries", middleware.RequireRole(domain.RoleDeliveryPerson), MyDeliveriesHandler(db))
	deliveryGroup.GET("/pending/list", middleware.RequireAdmin(), PendingDeliveriesHandler(db))
	deliveryGroup.GET("/personnel/available", middleware.RequireAdmin(), AvailablePersonnelHandler(db))
	deliveryGroup.GET("/:id", GetDeliveryHandler(db))
	deliveryGroup.PATCH("/:id/assign", middleware.RequireAdmin(), AssignDeliveryHandler(db))
	deliveryGroup.PATCH("/:id/status", UpdateDeliveryStatusHandler(db))

	dashboardGroup := r.Group("/dashboard")
	dashboardGroup.Use(auth)
	dashboardGroup.GET("/stats", middleware.RequireAdmin(), AdminStatsHandler(db, rdb))
	dashboardGroup.GET("/baker/stats", middleware.RequireRole(domain.RoleBaker), BakerStatsHandler(db))
	dashboardGroup.GET("/delivery-person/stats", middleware.RequireRole(domain.RoleDeliveryPerson), DeliveryPersonStatsHandler(db))
	dashboardGroup.GET("/customer/stats", CustomerStatsHandler(db))

	return &testEnv{db: db, rdb: rdb, router: r}
}

// mustCreateUser inserts an account directly and returns it with a valid token
func (e *testEnv) mustCreateUser(t *testing.T, email, role string) (domain.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := domain.User{
		Email:    email,
		Username: email[:len(email)-len("@test.local")],
		FullName: "Test " + role,
		Password: string(hash),
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, e.db.Create(&user).Error)
	token, err := utils.GenerateJWT(user.Email, testSecret, time.Hour)
	require.NoError(t, err)
	return user, token
}

// mustCreateCategory inserts a category directly
func (e *testEnv) mustCreateCategory(t *testing.T, name string) domain.Category {
	t.Helper()
	category := domain.Category{Name: name, IsActive: true}
	require.NoError(t, e.db.Create(&category).Error)
	return category
}

// mustCreateProduct inserts a product directly
func (e *testEnv) mustCreateProduct(t *testing.T, name string, price float64, stock int, bakerID, categoryID uint) domain.Product {
	t.Helper()
	product := domain.Product{
		Name:          name,
		Price:         price,
		StockQuantity: stock,
		IsAvailable:   stock > 0,
		BakerID:       bakerID,
		CategoryID:    categoryID,
	}
	require.NoError(t, e.db.Create(&product).Error)
	return product
}

// do performs a request with an optional bearer token and JSON body
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// decode unmarshals a recorded JSON response body
func decode(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest))
}
