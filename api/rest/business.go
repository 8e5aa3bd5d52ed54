package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/turfline/server/audit"
	"github.com/turfline/server/game/session"
	"github.com/turfline/server/game/territory"
	mw "github.com/turfline/server/middleware"
)

// BusinessHandler handles territory economy REST endpoints.
type BusinessHandler struct {
	sm      *session.Manager
	economy *territory.Economy
	audit   *audit.Service
}

// NewBusinessHandler creates a new BusinessHandler.
func NewBusinessHandler(sm *session.Manager, economy *territory.Economy, auditSvc *audit.Service) *BusinessHandler {
	return &BusinessHandler{sm: sm, economy: economy, audit: auditSvc}
}

// businessView is one business row with its runtime-derived fields attached.
type businessView struct {
	*session.Business
	ProfitControlled bool  `json:"profitControlled"`
	PotentialProfit  int64 `json:"potentialProfit"`
}

// List handles GET /api/businesses.
func (h *BusinessHandler) List(c *gin.Context) {
	s, ok := loadSession(c, h.sm)
	if !ok {
		return
	}
	s.Lock()
	defer s.Unlock()

	views := make([]businessView, 0, len(s.Businesses))
	for _, b := range s.Businesses {
		views = append(views, businessView{
			Business:         b,
			ProfitControlled: b.ProfitControlled,
			PotentialProfit:  h.economy.PotentialProfit(b),
		})
	}
	c.JSON(http.StatusOK, gin.H{"businesses": views})
}

// Protect handles POST /api/businesses/:id/protect.
func (h *BusinessHandler) Protect(c *gin.Context) {
	s, ok := loadSession(c, h.sm)
	if !ok {
		return
	}
	businessID := c.Param("id")

	// Serialize the business view under the lock; it points at live state.
	s.Lock()
	err := h.economy.ActivateProtection(s, businessID)
	var result gin.H
	if b := s.Businesses[businessID]; b != nil {
		result = gin.H{"business": b}
	}
	respond(c, result, err)
	s.Unlock()

	h.logAction(c, s, "territory.protect", businessID, err)
}

// Collect handles POST /api/businesses/:id/collect.
func (h *BusinessHandler) Collect(c *gin.Context) {
	s, ok := loadSession(c, h.sm)
	if !ok {
		return
	}
	businessID := c.Param("id")

	s.Lock()
	profit, err := h.economy.CollectProfit(s, businessID)
	cash := s.Player.Cash
	s.Unlock()

	h.logAction(c, s, "territory.collect", businessID, err)
	respond(c, gin.H{"collected": profit, "cash": cash}, err)
}

// Unprotect handles POST /api/businesses/:id/unprotect.
func (h *BusinessHandler) Unprotect(c *gin.Context) {
	s, ok := loadSession(c, h.sm)
	if !ok {
		return
	}
	businessID := c.Param("id")

	s.Lock()
	err := h.economy.RemoveProtection(s, businessID)
	removalsToday := s.Player.RemovalsToday
	s.Unlock()

	h.logAction(c, s, "territory.unprotect", businessID, err)
	respond(c, gin.H{"removalsToday": removalsToday}, err)
}

func (h *BusinessHandler) logAction(c *gin.Context, s *session.Session, action, businessID string, err error) {
	accountID := s.AccountID
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	h.audit.Log(audit.Entry{
		TraceID:   mw.GetTraceID(c),
		AccountID: &accountID,
		Username:  mw.GetUsername(c),
		Action:    action,
		Request:   gin.H{"businessId": businessID},
		Error:     errMsg,
		IP:        c.ClientIP(),
	})
}
