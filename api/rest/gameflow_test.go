package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turfline/server/api/rest"
	"github.com/turfline/server/audit"
	"github.com/turfline/server/config"
	"github.com/turfline/server/game/progress"
	"github.com/turfline/server/game/session"
	"github.com/turfline/server/game/snapshot"
	"github.com/turfline/server/game/territory"
	"github.com/turfline/server/geo"
	"github.com/turfline/server/mapdata"
	mw "github.com/turfline/server/middleware"
	"github.com/turfline/server/resource"
	"github.com/turfline/server/testutil"
	"go.uber.org/zap"
)

var flowCenter = geo.Point{Lat: 52.37, Lng: 4.90}

func flowGameConfig() config.GameConfig {
	return config.GameConfig{
		TerritoryRadiusM:       2000,
		ProtectionRangeM:       2000,
		CollectionRangeM:       2000,
		ManualJoinDistanceM:    2000,
		AutoJoinSearchRadiusM:  10000,
		MaxProtectingUsers:     10,
		MaxProtectedBusinesses: 15,
		MaxDailyRemovals:       2,
		ProfitPerMinute:        1,
		MaxAccumulationMin:     60,
	}
}

// newGameRouter wires the full authenticated route tree against an in-memory
// DB, a local cache and a static map-data provider.
func newGameRouter(t *testing.T) (*gin.Engine, *territory.Economy) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	c := testutil.SetupTestCache(t)
	sec := testSecurity()
	logger := zap.NewNop()
	auditSvc := audit.New(db, logger)
	t.Cleanup(func() { auditSvc.Stop(context.Background()) })

	res, err := resource.NewLoader("")
	require.NoError(t, err)
	engine := progress.NewEngine(res, logger)
	economy := territory.NewEconomy(flowGameConfig(), logger)
	snapSvc := snapshot.NewService(db, res, engine, logger)
	sm := session.NewManager(snapSvc.Restore, logger)

	provider := &mapdata.Static{Records: []mapdata.RawRecord{
		{ID: "base-1", Name: "City Hall", Category: "townhall", Location: flowCenter},
		{ID: "biz-1", Name: "Golden Dragon", Category: "restaurant", Location: geo.OffsetM(flowCenter, 100, 0)},
		{ID: "biz-far", Name: "Roadside Diner", Category: "restaurant", Location: geo.OffsetM(flowCenter, 5000, 0)},
	}}

	authH := rest.NewAuthHandler(db, c, sec, auditSvc)
	playerH := rest.NewPlayerHandler(sm, economy)
	mapH := rest.NewMapHandler(sm, economy, provider, logger)
	bizH := rest.NewBusinessHandler(sm, economy, auditSvc)
	orgH := rest.NewOrgHandler(sm, economy, auditSvc)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/login", authH.Login)

	game := api.Group("")
	game.Use(mw.Auth(sec, c))
	game.GET("/player", playerH.State)
	game.POST("/player/location", playerH.UpdateLocation)
	game.POST("/map/bounds", mapH.Bounds)
	game.GET("/businesses", bizH.List)
	game.POST("/businesses/:id/protect", bizH.Protect)
	game.POST("/businesses/:id/collect", bizH.Collect)
	game.POST("/businesses/:id/unprotect", bizH.Unprotect)
	game.POST("/org/join", orgH.Join)
	game.POST("/org/leave", orgH.Leave)
	return r, economy
}

func loginFlow(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": "pass1234",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp["token"].(string)
}

func decode(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &m))
	return m
}

func TestTerritoryFlow(t *testing.T) {
	r, economy := newGameRouter(t)
	base := time.Now()
	economy.SetNow(func() time.Time { return base })

	token := loginFlow(t, r, "frank")
	auth := []string{"Authorization", "Bearer " + token}

	// Report position, then pull the visible region onto the map.
	w := doJSON(r, http.MethodPost, "/api/player/location",
		map[string]float64{"lat": flowCenter.Lat, "lng": flowCenter.Lng}, auth...)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/api/map/bounds", map[string]float64{
		"minLat": 52.0, "minLng": 4.0, "maxLat": 53.0, "maxLng": 6.0,
	}, auth...)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w.Body.Bytes())
	assert.EqualValues(t, 3, resp["fetched"])

	// Unaffiliated players cannot hold protection.
	w = doJSON(r, http.MethodPost, "/api/businesses/biz-1/protect", nil, auth...)
	require.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodPost, "/api/org/join", map[string]string{"baseId": "base-1"}, auth...)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode(t, w.Body.Bytes())
	org, ok := resp["organization"].(map[string]interface{})
	require.True(t, ok, "organization must be set after join")
	assert.Equal(t, "City Hall", org["name"])

	// Protection works within range; biz-far is 5km out.
	w = doJSON(r, http.MethodPost, "/api/businesses/biz-1/protect", nil, auth...)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/api/businesses/biz-far/protect", nil, auth...)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodPost, "/api/businesses/no-such/protect", nil, auth...)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Ten minutes of accrual pays ten dollars on top of the starting cash.
	economy.SetNow(func() time.Time { return base.Add(10 * time.Minute) })
	w = doJSON(r, http.MethodPost, "/api/businesses/biz-1/collect", nil, auth...)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode(t, w.Body.Bytes())
	assert.EqualValues(t, 10, resp["collected"])
	assert.EqualValues(t, 510, resp["cash"])

	// Immediately collecting again yields nothing.
	w = doJSON(r, http.MethodPost, "/api/businesses/biz-1/collect", nil, auth...)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode(t, w.Body.Bytes())
	assert.EqualValues(t, 0, resp["collected"])

	// Dropping the claim counts against the daily removal quota.
	w = doJSON(r, http.MethodPost, "/api/businesses/biz-1/unprotect", nil, auth...)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode(t, w.Body.Bytes())
	assert.EqualValues(t, 1, resp["removalsToday"])

	// The player state reflects everything that happened.
	w = doJSON(r, http.MethodGet, "/api/player", nil, auth...)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode(t, w.Body.Bytes())
	assert.Empty(t, resp["protectedBusinessIds"])
	player := resp["player"].(map[string]interface{})
	assert.EqualValues(t, 510, player["cash"])
}

func TestCollectWithoutClaim(t *testing.T) {
	r, _ := newGameRouter(t)
	token := loginFlow(t, r, "grace")
	auth := []string{"Authorization", "Bearer " + token}

	doJSON(r, http.MethodPost, "/api/player/location",
		map[string]float64{"lat": flowCenter.Lat, "lng": flowCenter.Lng}, auth...)
	doJSON(r, http.MethodPost, "/api/map/bounds", map[string]float64{
		"minLat": 52.0, "minLng": 4.0, "maxLat": 53.0, "maxLng": 6.0,
	}, auth...)
	doJSON(r, http.MethodPost, "/api/org/join", map[string]string{"baseId": "base-1"}, auth...)

	w := doJSON(r, http.MethodPost, "/api/businesses/biz-1/collect", nil, auth...)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestInvertedBoundsRejected(t *testing.T) {
	r, _ := newGameRouter(t)
	token := loginFlow(t, r, "heidi")
	auth := []string{"Authorization", "Bearer " + token}

	w := doJSON(r, http.MethodPost, "/api/map/bounds", map[string]float64{
		"minLat": 53.0, "minLng": 4.0, "maxLat": 52.0, "maxLng": 6.0,
	}, auth...)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthRequiredForGameRoutes(t *testing.T) {
	r, _ := newGameRouter(t)

	w := doJSON(r, http.MethodGet, "/api/player", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/api/player", nil, "Authorization", "Bearer not.a.token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
