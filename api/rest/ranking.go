package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/turfline/server/cache"
	"github.com/turfline/server/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RankingHandler handles the power leaderboard REST endpoints.
type RankingHandler struct {
	db     *gorm.DB
	cache  cache.Cache
	logger *zap.Logger
}

// NewRankingHandler creates a RankingHandler.
func NewRankingHandler(db *gorm.DB, c cache.Cache, logger *zap.Logger) *RankingHandler {
	return &RankingHandler{db: db, cache: c, logger: logger}
}

// RankingZKey is the sorted set tracking player power, keyed by username.
const RankingZKey = "ranking:power"

const rankingTop = 100

// RankEntry is one row in the leaderboard.
type RankEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Alias    string `json:"alias,omitempty"`
	Power    int    `json:"power"`
}

// TopPower returns the top players sorted by power.
// GET /api/ranking/power?limit=20
func (h *RankingHandler) TopPower(c *gin.Context) {
	limit := 20
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= rankingTop {
		limit = l
	}

	ctx := c.Request.Context()
	members, err := h.cache.ZRevRange(ctx, RankingZKey, 0, int64(limit-1))
	if err != nil {
		h.logger.Warn("ranking read failed", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"ranking": []RankEntry{}})
		return
	}

	entries := make([]RankEntry, 0, len(members))
	for i, username := range members {
		score, _ := h.cache.ZScore(ctx, RankingZKey, username)
		entries = append(entries, RankEntry{
			Rank:     i + 1,
			Username: username,
			Power:    int(score),
		})
	}
	h.enrichAliases(entries)
	c.JSON(http.StatusOK, gin.H{"ranking": entries})
}

func (h *RankingHandler) enrichAliases(entries []RankEntry) {
	if len(entries) == 0 {
		return
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Username
	}
	var accounts []model.Account
	h.db.Select("username, alias").Where("username IN ?", names).Find(&accounts)
	aliasMap := make(map[string]string, len(accounts))
	for _, a := range accounts {
		aliasMap[a.Username] = a.Alias
	}
	for i := range entries {
		entries[i].Alias = aliasMap[entries[i].Username]
	}
}
