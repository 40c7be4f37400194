package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"chefai/internal/chef"
	"chefai/internal/monitoring"
)

// ChatAPI represents the HTTP surface of the assistant
type ChatAPI struct {
	Router  *gin.Engine
	chef    *chef.Chef
	tokens  *TokenManager
	monitor *monitoring.Monitor
}

// NewChatAPI creates the chat API. tokens may be nil, in which case the
// endpoints accept bare session ids only.
func NewChatAPI(chefSvc *chef.Chef, tokens *TokenManager, monitor *monitoring.Monitor) *ChatAPI {
	api := &ChatAPI{
		Router:  gin.Default(),
		chef:    chefSvc,
		tokens:  tokens,
		monitor: monitor,
	}

	api.setupRoutes()
	return api
}

// setupRoutes configures all API endpoints
func (a *ChatAPI) setupRoutes() {
	// Health check
	a.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "ChefAI is ready to cook!"})
	})

	v1 := a.Router.Group("/api/v1")
	{
		v1.POST("/session", a.CreateSession)
		v1.POST("/chat", a.Chat)
		v1.GET("/status", a.Status)
	}

	a.Router.GET("/ws/chat", a.handleWebSocket)
}

// ChatRequest is one user turn. SessionID is optional when a session
// token is presented; without either, the turn lands on the shared
// "default" session.
type ChatRequest struct {
	Text      string `json:"text" binding:"required"`
	SessionID string `json:"session_id"`
}

// ChatResponse carries the assistant's reply.
type ChatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

// CreateSession mints a fresh session id and, when token auth is
// configured, a signed token for it.
func (a *ChatAPI) CreateSession(c *gin.Context) {
	sessionID := uuid.NewString()

	resp := gin.H{"session_id": sessionID}
	if a.tokens != nil {
		token, err := a.tokens.Issue(sessionID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		resp["token"] = token
	}

	c.JSON(http.StatusCreated, resp)
}

// Chat processes one turn and returns the assistant's reply.
func (a *ChatAPI) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionID, ok := a.resolveSession(c, req.SessionID)
	if !ok {
		return
	}

	reply, err := a.chef.SubmitTurn(c.Request.Context(), sessionID, req.Text)
	if err != nil {
		log.Printf("Turn failed for session %s: %v", sessionID, err)
		status := http.StatusInternalServerError
		if errors.Is(err, chef.ErrTurnTimeout) {
			status = http.StatusGatewayTimeout
		} else if errors.Is(err, chef.ErrEmptyInput) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, ChatResponse{Response: reply, SessionID: sessionID})
}

// Status returns runtime counters for dashboards.
func (a *ChatAPI) Status(c *gin.Context) {
	if a.monitor == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, a.monitor.Status())
}

// resolveSession picks the session id for a request: a verified bearer
// token wins, then an explicit session_id, then the shared default.
func (a *ChatAPI) resolveSession(c *gin.Context, bodySessionID string) (string, bool) {
	header := c.GetHeader("Authorization")
	if header != "" && a.tokens != nil {
		tokenString := header
		const bearer = "Bearer "
		if len(header) > len(bearer) && header[:len(bearer)] == bearer {
			tokenString = header[len(bearer):]
		}

		sid, err := a.tokens.Verify(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return "", false
		}
		return sid, true
	}

	if bodySessionID != "" {
		return bodySessionID, true
	}
	return "default", true
}
