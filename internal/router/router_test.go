package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fantasy-auction/internal/auction"
	"github.com/iliyamo/fantasy-auction/internal/handler"
	"github.com/iliyamo/fantasy-auction/internal/lock"
	"github.com/iliyamo/fantasy-auction/internal/middleware"
	"github.com/iliyamo/fantasy-auction/internal/model"
	"github.com/iliyamo/fantasy-auction/internal/repository"
	"github.com/iliyamo/fantasy-auction/internal/utils"
)

const secret = "router-test"

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type api struct {
	t     *testing.T
	e     *echo.Echo
	store *repository.MemoryStore
	clock *testClock
}

func newAPI(t *testing.T) *api {
	store := repository.NewMemoryStore()
	locks := lock.NewLocal()
	clock := &testClock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	eng := auction.New(store, locks)
	h := handler.NewAuctionHandler(eng, auction.NewCurrentAuctionProvider(store, locks), clock, nil, "board", zerolog.Nop())

	e := echo.New()
	RegisterRoutes(e)
	RegisterAuction(e, h, secret, Middlewares{})
	return &api{t: t, e: e, store: store, clock: clock}
}

func (a *api) token(id uint64, role string) string {
	tok, err := utils.NewAccessToken(secret, id, role, 60, time.Now())
	require.NoError(a.t, err)
	return tok.Token
}

func (a *api) do(method, path, token, body string) (int, map[string]interface{}) {
	a.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	out := map[string]interface{}{}
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func TestHealth(t *testing.T) {
	a := newAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestAuctionLifecycle(t *testing.T) {
	a := newAPI(t)
	commishID := a.store.SeedAccount(model.UserAccount{Username: "commish", Role: middleware.RoleCommissioner})
	aliceID := a.store.SeedAccount(model.UserAccount{Username: "alice", Role: middleware.RoleOwner})
	playerID := a.store.SeedPlayer(model.Player{Name: "Jones", Position: "SS", Team: "NYY"})
	commish := a.token(commishID, middleware.RoleCommissioner)
	alice := a.token(aliceID, middleware.RoleOwner)

	code, _ := a.do(http.MethodGet, "/v1/auction", "", "")
	assert.Equal(t, http.StatusNotFound, code)

	nominate := fmt.Sprintf(`{"player_id":%d,"starting_bid":"0"}`, playerID)
	code, _ = a.do(http.MethodPost, "/v1/auction/items", alice, nominate)
	assert.Equal(t, http.StatusForbidden, code)
	code, body := a.do(http.MethodPost, "/v1/auction/items", commish, nominate)
	require.Equal(t, http.StatusCreated, code, body)
	itemID := uint64(body["item_id"].(float64))

	code, body = a.do(http.MethodGet, "/v1/auction", "", "")
	require.Equal(t, http.StatusOK, code)
	items := body["items"].([]interface{})
	require.Len(t, items, 1)
	first := items[0].(map[string]interface{})
	assert.Equal(t, "Jones", first["player_name"])
	assert.Equal(t, "0.5", first["minimum_next_bid"])
	assert.Equal(t, float64(-1), first["hours_remaining"])

	bidPath := fmt.Sprintf("/v1/auction/items/%d/bids", itemID)
	code, _ = a.do(http.MethodPost, bidPath, "", `{"amount":"1"}`)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body = a.do(http.MethodPost, bidPath, alice, `{"amount":"0.4"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "Minimum starting bid for MLB players is $0.5M", body["error"])
	code, body = a.do(http.MethodPost, bidPath, alice, `{"amount":"0.555"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "Bid amounts are limited to 2 decimal places", body["error"])

	code, body = a.do(http.MethodPost, bidPath, alice, `{"amount":0.6}`)
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "WINNING", body["bid"].(map[string]interface{})["status"])

	code, body = a.do(http.MethodGet, bidPath, "", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["items"], 1)

	code, body = a.do(http.MethodGet, "/v1/me/bids", alice, "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["items"], 1)

	a.clock.advance(24 * time.Hour)
	code, _ = a.do(http.MethodPost, "/v1/admin/sweeps/awards", alice, "")
	assert.Equal(t, http.StatusForbidden, code)
	code, body = a.do(http.MethodPost, "/v1/admin/sweeps/awards", commish, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["processed"])

	code, body = a.do(http.MethodGet, "/v1/me/contracts", alice, "")
	require.Equal(t, http.StatusOK, code)
	contracts := body["items"].([]interface{})
	require.Len(t, contracts, 1)
	c := contracts[0].(map[string]interface{})
	assert.Equal(t, "0.3", c["buyout_fee"])
	contractID := uint64(c["id"].(float64))

	postPath := fmt.Sprintf("/v1/contracts/%d/post", contractID)
	code, body = a.do(http.MethodPost, postPath, commish, `{"years":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "You are not the winner of this auction", body["error"])

	code, _ = a.do(http.MethodPost, postPath, alice, `{"years":3}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	code, body = a.do(http.MethodPost, postPath, alice, `{"years":2}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Contract posted for Jones: 2 years at $0.6M AAS (Total: $1.2M).", body["message"])

	code, body = a.do(http.MethodGet, "/v1/me/contracts", alice, "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["items"])
}

func TestBuyoutAndToggle(t *testing.T) {
	a := newAPI(t)
	commishID := a.store.SeedAccount(model.UserAccount{Username: "commish", Role: middleware.RoleCommissioner})
	bobID := a.store.SeedAccount(model.UserAccount{Username: "bob", Role: middleware.RoleOwner})
	playerID := a.store.SeedPlayer(model.Player{Name: "Ito", IsRookie: true})
	commish := a.token(commishID, middleware.RoleCommissioner)
	bob := a.token(bobID, middleware.RoleOwner)

	code, body := a.do(http.MethodPost, "/v1/auction/toggle-type", commish, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Auction type changed to Off-Season Free Agency", body["message"])

	code, body = a.do(http.MethodPost, "/v1/auction/items", commish, fmt.Sprintf(`{"player_id":%d}`, playerID))
	require.Equal(t, http.StatusCreated, code, body)
	itemID := uint64(body["item_id"].(float64))
	code, _ = a.do(http.MethodPost, fmt.Sprintf("/v1/auction/items/%d/bids", itemID), bob, `{"amount":"2"}`)
	require.Equal(t, http.StatusCreated, code)

	removePath := fmt.Sprintf("/v1/auction/items/%d/remove", itemID)
	a.clock.advance(24 * time.Hour)
	code, body = a.do(http.MethodPost, removePath, commish, "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, body["error"], "48 hours remaining")

	a.clock.advance(48 * time.Hour)
	code, _ = a.do(http.MethodPost, removePath, commish, "")
	require.Equal(t, http.StatusOK, code)

	_, body = a.do(http.MethodGet, "/v1/me/contracts", bob, "")
	contractID := uint64(body["items"].([]interface{})[0].(map[string]interface{})["id"].(float64))
	code, body = a.do(http.MethodPost, fmt.Sprintf("/v1/contracts/%d/buyout", contractID), bob, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Ito bought out. Fee of $1M applied to your cap. Player returned to free agency.", body["message"])

	code, body = a.do(http.MethodPost, "/v1/admin/sweeps/contracts", commish, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), body["candidates"])
}

func TestBadInput(t *testing.T) {
	a := newAPI(t)
	uid := a.store.SeedAccount(model.UserAccount{Username: "x", Role: middleware.RoleOwner})
	tok := a.token(uid, middleware.RoleOwner)

	code, _ := a.do(http.MethodPost, "/v1/auction/items/abc/bids", tok, `{"amount":"1"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = a.do(http.MethodPost, "/v1/auction/items/5/bids", tok, `{"amount":"-1"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	code, body := a.do(http.MethodPost, "/v1/auction/items/5/bids", tok, `{"amount":"1"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "Auction item not found", body["error"])
	code, _ = a.do(http.MethodGet, "/v1/auction/items/5/bids", "", "")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = a.do(http.MethodPost, "/v1/contracts/9/post", tok, `{"years":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestReleaseQueue(t *testing.T) {
	a := newAPI(t)
	commishID := a.store.SeedAccount(model.UserAccount{Username: "commish", Role: middleware.RoleCommissioner})
	bobID := a.store.SeedAccount(model.UserAccount{Username: "bob", Role: middleware.RoleOwner, MajorLeagueRosterCount: 1})
	amyID := a.store.SeedAccount(model.UserAccount{Username: "amy", Role: middleware.RoleOwner})
	playerID := a.store.SeedPlayer(model.Player{Name: "Vlad", Position: "1B", Team: "TOR", OwnerID: &bobID})
	commish := a.token(commishID, middleware.RoleCommissioner)
	bob := a.token(bobID, middleware.RoleOwner)
	amy := a.token(amyID, middleware.RoleOwner)
	release := fmt.Sprintf(`{"player_ids":[%d]}`, playerID)

	code, body := a.do(http.MethodPost, "/v1/team/release", amy, release)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "You can only release your own players.", body["error"])

	code, body = a.do(http.MethodPost, "/v1/team/release", bob, release)
	require.Equal(t, http.StatusOK, code, body)
	assert.Len(t, body["released"], 1)

	code, _ = a.do(http.MethodGet, "/v1/auction/release-queue", bob, "")
	assert.Equal(t, http.StatusForbidden, code)
	code, body = a.do(http.MethodGet, "/v1/auction/release-queue", commish, "")
	require.Equal(t, http.StatusOK, code)
	items := body["items"].([]interface{})
	require.Len(t, items, 1)
	entry := items[0].(map[string]interface{})
	assert.Equal(t, "Vlad", entry["player_name"])
	assert.Equal(t, float64(bobID), entry["previous_owner_id"])
	entryID := uint64(entry["id"].(float64))

	addPath := fmt.Sprintf("/v1/auction/release-queue/%d/add", entryID)
	code, body = a.do(http.MethodPost, addPath, commish, `{"starting_bid":"2"}`)
	require.Equal(t, http.StatusCreated, code, body)
	assert.NotZero(t, body["item_id"])

	code, body = a.do(http.MethodPost, fmt.Sprintf("/v1/auction/release-queue/%d/reject", entryID), commish, "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "Released player already processed (status: ADDED_TO_AUCTION)", body["error"])

	_, body = a.do(http.MethodGet, "/v1/auction", "", "")
	board := body["items"].([]interface{})
	require.Len(t, board, 1)
	assert.Equal(t, "Vlad", board[0].(map[string]interface{})["player_name"])
	assert.Equal(t, "2", board[0].(map[string]interface{})["starting_bid"])
}
