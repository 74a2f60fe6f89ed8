package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Business-Integration-Technologies/EventNest/internal/helpers"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContextUserKey is where the auth middleware stores the requester's id.
const ContextUserKey = "userId"

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger provides structured logging middleware
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		// Process request
		c.Next()

		// Log request completion
		latency := time.Since(start)
		clientIP := c.ClientIP()
		method := c.Request.Method
		statusCode := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		requestID, _ := c.Get("request_id")

		logger.Info("HTTP Request",
			"request_id", requestID,
			"method", method,
			"path", path,
			"status", statusCode,
			"latency", latency,
			"client_ip", clientIP,
		)
	}
}

// AuthMiddleware verifies the bearer token on protected routes and stores the
// requester's id in the context. It also accepts a raw token without the
// "Bearer " prefix for older clients.
func AuthMiddleware(tokenSecret string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized. Please log in."})
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := helpers.ParseToken(tokenSecret, token)
		if err != nil {
			logger.Info("Token rejected", "error", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is invalid. Please log in."})
			c.Abort()
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			logger.Error("Invalid user ID in token", "user_id", claims.UserID, "error", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is invalid. Please log in."})
			c.Abort()
			return
		}

		c.Set(ContextUserKey, userID)
		c.Next()
	}
}
