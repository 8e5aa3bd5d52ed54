package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/turfline/server/audit"
	"github.com/turfline/server/game/session"
	"github.com/turfline/server/game/territory"
	mw "github.com/turfline/server/middleware"
)

// OrgHandler handles organization membership REST endpoints.
type OrgHandler struct {
	sm      *session.Manager
	economy *territory.Economy
	audit   *audit.Service
}

// NewOrgHandler creates a new OrgHandler.
func NewOrgHandler(sm *session.Manager, economy *territory.Economy, auditSvc *audit.Service) *OrgHandler {
	return &OrgHandler{sm: sm, economy: economy, audit: auditSvc}
}

type joinRequest struct {
	BaseID string `json:"baseId" binding:"required"`
}

// Join handles POST /api/org/join.
func (h *OrgHandler) Join(c *gin.Context) {
	s, ok := loadSession(c, h.sm)
	if !ok {
		return
	}
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.Lock()
	err := h.economy.JoinOrganizationManually(s, req.BaseID)
	org := s.Player.Organization
	s.Unlock()

	h.logAction(c, s, "org.join", req.BaseID, err)
	respond(c, gin.H{"organization": org}, err)
}

// AutoJoin handles POST /api/org/autojoin. Returns organization=null when
// no base was close enough, or when a base is within manual-join range and
// the player must pick one deliberately.
func (h *OrgHandler) AutoJoin(c *gin.Context) {
	s, ok := loadSession(c, h.sm)
	if !ok {
		return
	}

	s.Lock()
	base, err := h.economy.FindAndJoinInitialOrganization(s)
	org := s.Player.Organization
	s.Unlock()

	h.logAction(c, s, "org.autojoin", "", err)
	result := gin.H{"organization": org}
	if base != nil {
		result["base"] = base
	}
	respond(c, result, err)
}

// Leave handles POST /api/org/leave.
func (h *OrgHandler) Leave(c *gin.Context) {
	s, ok := loadSession(c, h.sm)
	if !ok {
		return
	}

	s.Lock()
	err := h.economy.LeaveOrganization(s)
	s.Unlock()

	h.logAction(c, s, "org.leave", "", err)
	respond(c, gin.H{"organization": nil}, err)
}

func (h *OrgHandler) logAction(c *gin.Context, s *session.Session, action, baseID string, err error) {
	accountID := s.AccountID
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	entry := audit.Entry{
		TraceID:   mw.GetTraceID(c),
		AccountID: &accountID,
		Username:  mw.GetUsername(c),
		Action:    action,
		Error:     errMsg,
		IP:        c.ClientIP(),
	}
	if baseID != "" {
		entry.Request = gin.H{"baseId": baseID}
	}
	h.audit.Log(entry)
}
