package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"todos-api/internal/domain"
	"todos-api/internal/repository"
	"todos-api/internal/service"
)

// AuthHeader carries the bearer token on every authenticated request and the
// freshly issued token on signup/login responses.
const AuthHeader = "x-auth"

const ctxUserKey = "authUser"
const ctxTokenKey = "authToken"

// Handler wires HTTP routes to domain services.
type Handler struct {
	users service.UserService
	todos service.TodoService
}

func NewHandler(users service.UserService, todos service.TodoService) *Handler {
	return &Handler{
		users: users,
		todos: todos,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})

	router.POST("/users", h.signup)
	router.POST("/users/login", h.login)

	authed := router.Group("", h.authenticate)
	{
		authed.GET("/users/me", h.me)
		authed.DELETE("/users/me/token", h.logout)

		authed.POST("/todos", h.createTodo)
		authed.GET("/todos", h.listTodos)
		authed.GET("/todos/:id", h.getTodo)
		authed.DELETE("/todos/:id", h.deleteTodo)
		authed.PATCH("/todos/:id", h.updateTodo)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, "+AuthHeader)
		c.Writer.Header().Set("Access-Control-Expose-Headers", AuthHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// authenticate gates every protected route: it resolves the x-auth header to
// a user via the credential store and fails closed with an empty 401. The
// token is re-verified on every request, so revocation takes effect
// immediately.
func (h *Handler) authenticate(c *gin.Context) {
	token := c.GetHeader(AuthHeader)
	if token == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	user, err := h.users.FindByToken(c.Request.Context(), token)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	c.Set(ctxUserKey, user)
	c.Set(ctxTokenKey, token)
	c.Next()
}

func currentUser(c *gin.Context) *domain.User {
	return c.MustGet(ctxUserKey).(*domain.User)
}

type signupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.users.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken), errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.Header(AuthHeader, token)
	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header(AuthHeader, token)
	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, userToResponse(currentUser(c)))
}

func (h *Handler) logout(c *gin.Context) {
	user := currentUser(c)
	token := c.MustGet(ctxTokenKey).(string)

	if err := h.users.RemoveToken(c.Request.Context(), user.ID, token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusOK)
}

type createTodoRequest struct {
	Text string `json:"text" binding:"required"`
}

type updateTodoRequest struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

func (h *Handler) createTodo(c *gin.Context) {
	var req createTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	todo, err := h.todos.Create(c.Request.Context(), currentUser(c).ID, req.Text)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, todoToResponse(todo))
}

func (h *Handler) listTodos(c *gin.Context) {
	todos, err := h.todos.List(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]TodoResponse, len(todos))
	for i := range todos {
		resp[i] = todoToResponse(&todos[i])
	}
	c.JSON(http.StatusOK, gin.H{"todos": resp})
}

func (h *Handler) getTodo(c *gin.Context) {
	todo, err := h.todos.Get(c.Request.Context(), c.Param("id"), currentUser(c).ID)
	if err != nil {
		h.todoError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"todo": todoToResponse(todo)})
}

func (h *Handler) deleteTodo(c *gin.Context) {
	todo, err := h.todos.Delete(c.Request.Context(), c.Param("id"), currentUser(c).ID)
	if err != nil {
		h.todoError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"todo": todoToResponse(todo)})
}

func (h *Handler) updateTodo(c *gin.Context) {
	var req updateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	todo, err := h.todos.Update(c.Request.Context(), c.Param("id"), currentUser(c).ID, service.TodoPatch{
		Text:      req.Text,
		Completed: req.Completed,
	})
	if err != nil {
		h.todoError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"todo": todoToResponse(todo)})
}

// todoError keeps missing, foreign-owned and malformed ids indistinguishable:
// all of them surface as an empty 404.
func (h *Handler) todoError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.Status(http.StatusNotFound)
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// UserResponse exposes only id and email; the password hash and credential
// list never leave the server.
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type TodoResponse struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Completed   bool   `json:"completed"`
	CompletedAt *int64 `json:"completedAt"`
	CreatorID   string `json:"creatorId"`
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:    user.ID,
		Email: user.Email,
	}
}

func todoToResponse(todo *domain.Todo) TodoResponse {
	return TodoResponse{
		ID:          todo.ID,
		Text:        todo.Text,
		Completed:   todo.Completed,
		CompletedAt: todo.CompletedAt,
		CreatorID:   todo.CreatorID,
	}
}
