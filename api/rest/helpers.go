package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/turfline/server/game/session"
	"github.com/turfline/server/gameerr"
	mw "github.com/turfline/server/middleware"
)

// statusFor maps a gameplay error kind to its HTTP status.
func statusFor(kind gameerr.Kind) int {
	switch kind {
	case gameerr.KindValidation:
		return http.StatusBadRequest
	case gameerr.KindPrecondition:
		return http.StatusConflict
	case gameerr.KindQuota:
		return http.StatusTooManyRequests
	case gameerr.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// respond writes the result of a gameplay operation. A persistence failure
// is not an operation failure: the action took effect in memory, so the
// response is 200 with a warning attached.
func respond(c *gin.Context, result gin.H, err error) {
	if err == nil {
		c.JSON(http.StatusOK, result)
		return
	}
	if gameerr.Is(err, gameerr.KindPersistence) {
		if result == nil {
			result = gin.H{}
		}
		result["warning"] = err.Error()
		c.JSON(http.StatusOK, result)
		return
	}
	kind, ok := gameerr.KindOf(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(statusFor(kind), gin.H{"error": err.Error(), "kind": kind.String()})
}

// loadSession resolves the caller's game session from the auth claims.
// Writes the error response itself and returns ok=false on failure.
func loadSession(c *gin.Context, sm *session.Manager) (*session.Session, bool) {
	accountID := mw.GetAccountID(c)
	if accountID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	s, err := sm.GetOrCreate(accountID, mw.GetUsername(c), mw.GetAlias(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load game state"})
		return nil, false
	}
	return s, true
}
