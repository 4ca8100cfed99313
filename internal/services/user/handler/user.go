package handler

import (
	"net/http"

	"kasir-system/internal/api"
	"kasir-system/internal/database/models"
	"kasir-system/internal/middleware"
	"kasir-system/internal/services/user/service"

	"github.com/gin-gonic/gin"
)

type UserHTTPHandler struct {
	svc *service.Service
}

func NewUserHTTPHandler(svc *service.Service) *UserHTTPHandler {
	return &UserHTTPHandler{svc: svc}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateUserRequest struct {
	Name     string      `json:"name" binding:"required,max=255"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=6"`
	Role     models.Role `json:"role" binding:"required"`
	CafeID   *int64      `json:"cafe_id,omitempty"`
}

type UpdateUserRequest struct {
	Name     *string      `json:"name,omitempty" binding:"omitempty,max=255"`
	Email    *string      `json:"email,omitempty" binding:"omitempty,email"`
	Password *string      `json:"password,omitempty" binding:"omitempty,min=6"`
	Role     *models.Role `json:"role,omitempty"`
	CafeID   *int64       `json:"cafe_id,omitempty"`
}

type ListUsersQuery struct {
	api.Pagination
	Role string `form:"role"`
}

// RegisterAuthRoutes mounts login on the public group and logout/me on the
// authenticated group.
func (h *UserHTTPHandler) RegisterAuthRoutes(public, protected *gin.RouterGroup, loginLimit gin.HandlerFunc) {
	if loginLimit != nil {
		public.POST("/login", loginLimit, h.Login)
	} else {
		public.POST("/login", h.Login)
	}
	protected.POST("/logout", h.Logout)
	protected.GET("/me", h.Me)
}

// RegisterUserRoutes mounts user management on a group already restricted
// to superadmin.
func (h *UserHTTPHandler) RegisterUserRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUser)
		users.POST("", h.CreateUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}
}

// --- Authentication ---

func (h *UserHTTPHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := api.BindJSON(c, &req); err != nil {
		api.Fail(c, err)
		return
	}

	res, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, "Login berhasil", res)
}

func (h *UserHTTPHandler) Logout(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)
	if err := h.svc.Logout(c.Request.Context(), claims); err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Logout berhasil", nil)
}

func (h *UserHTTPHandler) Me(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)
	if claims == nil {
		api.Abort(c, http.StatusUnauthorized, "Unauthenticated.")
		return
	}
	user, err := h.svc.Get(c.Request.Context(), claims.UserId)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "User retrieved successfully", user)
}

// --- User Management ---

func (h *UserHTTPHandler) ListUsers(c *gin.Context) {
	var q ListUsersQuery
	if err := api.BindQuery(c, &q); err != nil {
		api.Fail(c, err)
		return
	}
	page := q.Pagination.Normalize()

	users, total, err := h.svc.List(c.Request.Context(), models.Role(q.Role), page.Offset(), page.PageSize)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.WithMeta(c, "Users retrieved successfully", users, page.Meta(total))
}

func (h *UserHTTPHandler) GetUser(c *gin.Context) {
	id, err := api.ParamID(c, "id")
	if err != nil {
		api.Fail(c, err)
		return
	}
	user, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "User retrieved successfully", user)
}

func (h *UserHTTPHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := api.BindJSON(c, &req); err != nil {
		api.Fail(c, err)
		return
	}

	user, err := h.svc.Create(c.Request.Context(), service.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		CafeID:   req.CafeID,
	})
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.Created(c, "User berhasil dibuat", user)
}

func (h *UserHTTPHandler) UpdateUser(c *gin.Context) {
	id, err := api.ParamID(c, "id")
	if err != nil {
		api.Fail(c, err)
		return
	}
	var req UpdateUserRequest
	if err := api.BindJSON(c, &req); err != nil {
		api.Fail(c, err)
		return
	}

	user, err := h.svc.Update(c.Request.Context(), id, service.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		CafeID:   req.CafeID,
	})
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "User berhasil diperbarui", user)
}

func (h *UserHTTPHandler) DeleteUser(c *gin.Context) {
	id, err := api.ParamID(c, "id")
	if err != nil {
		api.Fail(c, err)
		return
	}
	claims, _ := middleware.CurrentClaims(c)
	var actorID int64
	if claims != nil {
		actorID = claims.UserId
	}
	if err := h.svc.Delete(c.Request.Context(), id, actorID); err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "User berhasil dihapus", nil)
}
