package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	sentrygo "github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/kickoff/app/league/internal/battle"
	"github.com/lk2023060901/kickoff/app/league/internal/metrics"
	"github.com/lk2023060901/kickoff/app/league/internal/model"
	"github.com/lk2023060901/kickoff/app/league/internal/repository/memstore"
	"github.com/lk2023060901/kickoff/app/league/internal/rng"
	"github.com/lk2023060901/kickoff/app/league/internal/rules"
	"github.com/lk2023060901/kickoff/app/league/internal/service"
	"github.com/lk2023060901/kickoff/pkg/crypto"
	"github.com/lk2023060901/kickoff/pkg/idgen"
	"github.com/lk2023060901/kickoff/pkg/logger"
	"github.com/lk2023060901/kickoff/pkg/security"
	"github.com/lk2023060901/kickoff/pkg/sentry"
	weberrors "github.com/lk2023060901/kickoff/pkg/web/errors"
	"github.com/lk2023060901/kickoff/pkg/web/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Init()
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	store  *memstore.Store
	cfg    *rules.Config

	mu       sync.Mutex
	reported []*sentrygo.Event
	logs     syncBuffer
}

// syncBuffer 并发安全的日志缓冲
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// entries 解析指定 logger 名称下的日志
func (b *syncBuffer) entries(t *testing.T, name string) []map[string]any {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(b.buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		if m["logger"] == name {
			out = append(out, m)
		}
	}
	return out
}

func hasMessage(entries []map[string]any, level, msg string) bool {
	for _, e := range entries {
		if e["level"] == level && e["msg"] == msg {
			return true
		}
	}
	return false
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	m := metrics.NewNop()
	store := memstore.New()
	cfg := rules.DefaultConfig()
	rnd := rng.NewSeeded(11)

	for _, name := range []string{"Ace", "Blaze", "Cobalt", cfg.RewardCharacter} {
		store.AddCharacter(name, model.Stats{Speed: len(name) * 10, Defense: 50})
	}

	s := &testServer{t: t, store: store, cfg: cfg}
	l, err := logger.New(&logger.Config{Level: logger.DebugLevel, Format: logger.JSONFormat}, logger.WithWriter(&s.logs))
	require.NoError(t, err)

	sentryCfg := sentry.DefaultConfig()
	sentryCfg.DSN = "https://public@sentry.example.com/1"
	reporter, err := sentry.New(sentryCfg, sentry.WithBeforeSend(func(e *sentrygo.Event) *sentrygo.Event {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.reported = append(s.reported, e)
		return nil
	}))
	require.NoError(t, err)

	jwt, err := security.NewJWTManager(&security.JWTConfig{SecretKey: "handler-test"})
	require.NoError(t, err)

	accounts := service.NewAccountService(store, crypto.NewBcryptHasher(crypto.WithCost(4)), jwt, cfg, m, l)
	ranking := service.NewRankingService(store, nil, service.DefaultRankingConfig(), l)
	matches := service.NewMatchService(
		store,
		service.NewMatchFinder(store, cfg, rnd, l),
		battle.NewResolver(cfg.FormationSize, rnd),
		service.NewLedger(cfg, idgen.NewSequence(0), l),
		ranking,
		service.NopEvents{},
		cfg,
		m,
		l,
	)
	router := NewRouter(
		NewAuthHandler(accounts, l),
		NewGameHandler(matches, accounts, l),
		NewCharacterHandler(
			service.NewGachaService(store, service.NoopLocker{}, cfg, rnd, m, l),
			service.NewEnhanceService(store, service.NoopLocker{}, cfg, rnd, m, l),
			service.NewSellService(store, service.NoopLocker{}, cfg, m, l),
			accounts,
			l,
		),
		NewAccountHandler(accounts, ranking, l),
		jwt,
		nil,
		reporter,
	)

	s.engine = gin.New()
	router.Mount(s.engine)
	return s
}

func (s *testServer) reports() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reported)
}

func (s *testServer) do(method, path, token string, body any) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

// signUp 注册并登录，返回账号 ID 与 Token
func (s *testServer) signUp(loginID string) (int64, string) {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/api/auth/sign-up", "", gin.H{
		"userId": loginID, "userName": loginID, "password": "secret", "passwordConfirm": "secret",
	})
	require.Equal(s.t, http.StatusOK, code, env.Message)

	code, env = s.do(http.MethodPost, "/api/auth/sign-in", "", gin.H{"userId": loginID, "password": "secret"})
	require.Equal(s.t, http.StatusOK, code, env.Message)

	var res struct {
		Token   string `json:"token"`
		Account struct {
			UserID int64 `json:"userId"`
		} `json:"account"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &res))
	return res.Account.UserID, res.Token
}

func TestAuthRoutes(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signUp("striker")
	assert.NotEmpty(t, token)

	code, env := s.do(http.MethodPost, "/api/auth/sign-up", "", gin.H{
		"userId": "striker", "userName": "other", "password": "secret", "passwordConfirm": "secret",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, weberrors.CodeConflict, env.Code)

	code, env = s.do(http.MethodPost, "/api/auth/sign-in", "", gin.H{"userId": "striker", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, weberrors.CodeUnAuthorized, env.Code)

	code, _ = s.do(http.MethodPost, "/api/auth/sign-up", "", gin.H{"userId": "x"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodGet, "/api/cash", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestCashAndGachaRoutes(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signUp("keeper")

	code, env := s.do(http.MethodGet, "/api/cash", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, fmt.Sprintf(`{"userCash":%d}`, s.cfg.StartingCash), string(env.Data))

	code, env = s.do(http.MethodPost, "/api/gacha/draw", token, gin.H{"count": 3})
	require.Equal(t, http.StatusOK, code, env.Message)
	var drawn struct {
		DrawnCharacters []service.DrawnCharacter `json:"drawnCharacters"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &drawn))
	assert.Len(t, drawn.DrawnCharacters, 3)

	code, env = s.do(http.MethodPost, "/api/gacha/draw", token, gin.H{"count": 0})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, 40201, env.Code)

	code, env = s.do(http.MethodPost, "/api/gacha/draw", token, gin.H{"count": 100})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, 40202, env.Code)
	assert.JSONEq(t, `{"required":50000,"available":8500}`, string(env.Data))

	code, env = s.do(http.MethodGet, "/api/characters/mine", token, nil)
	require.Equal(t, http.StatusOK, code)
	var mine struct {
		Characters []service.RosterEntry `json:"characters"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	total := 0
	for _, e := range mine.Characters {
		total += e.Quantity
	}
	assert.Equal(t, 3, total)
}

func TestGameRoutes(t *testing.T) {
	s := newTestServer(t)
	me, token := s.signUp("home")
	rival, _ := s.signUp("away")
	for _, id := range []int64{me, rival} {
		for charID := int64(1); charID <= 3; charID++ {
			s.store.AddOwnership(model.Ownership{UserID: id, CharacterID: charID, Quantity: 1, IsFormation: true})
		}
	}

	code, env := s.do(http.MethodPost, fmt.Sprintf("/api/games/friendly/%d", me), token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, 40102, env.Code)

	code, _ = s.do(http.MethodPost, "/api/games/friendly/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(http.MethodPost, "/api/games/friendly/999", token, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, weberrors.CodeNotFound, env.Code)

	// 双方阵容相同，必定平局
	code, env = s.do(http.MethodPost, "/api/games/ranked", token, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	var res service.MatchResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, model.Draw, res.Outcome.Winner)
	assert.Equal(t, rival, res.Opponent.UserID)
	assert.True(t, res.Recorded)

	code, env = s.do(http.MethodGet, "/api/games/history", token, nil)
	require.Equal(t, http.StatusOK, code)
	var history struct {
		Records []model.MatchRecord `json:"records"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &history))
	require.Len(t, history.Records, 1)
	assert.Equal(t, model.Draw, history.Records[0].Winner)

	code, env = s.do(http.MethodGet, "/api/ranking?limit=10", token, nil)
	require.Equal(t, http.StatusOK, code)
	var ranking struct {
		Ranking []model.RankEntry `json:"ranking"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &ranking))
	assert.Len(t, ranking.Ranking, 2)
}

func TestCharacterRoutes(t *testing.T) {
	s := newTestServer(t)
	me, token := s.signUp("smith")
	s.store.AddOwnership(model.Ownership{UserID: me, CharacterID: 1, Quantity: 4})
	s.store.AddOwnership(model.Ownership{UserID: me, CharacterID: 2, Quantity: 1})
	s.store.AddOwnership(model.Ownership{UserID: me, CharacterID: 3, Quantity: 1})

	code, env := s.do(http.MethodPost, "/api/characters/enhance", token, gin.H{"characterName": "Ace"})
	require.Equal(t, http.StatusOK, code, env.Message)
	var enhanced service.EnhanceResult
	require.NoError(t, json.Unmarshal(env.Data, &enhanced))
	assert.True(t, enhanced.Success)
	assert.Equal(t, 1, enhanced.Level)

	code, env = s.do(http.MethodPost, "/api/characters/enhance", token, gin.H{"characterName": s.cfg.RewardCharacter})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, 40303, env.Code)

	code, env = s.do(http.MethodPost, "/api/characters/enhance", token, gin.H{"characterName": "  "})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, weberrors.CodeInvalidParams, env.Code)

	code, env = s.do(http.MethodPut, "/api/formation", token, gin.H{"characterNames": []string{"Ace", "Blaze"}})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, 40101, env.Code)

	code, env = s.do(http.MethodPut, "/api/formation", token, gin.H{"characterNames": []string{"Ace", "Blaze", "Cobalt"}})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, env = s.do(http.MethodPost, "/api/characters/sell", token, gin.H{"characterName": "Blaze", "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, 40304, env.Code)

	code, env = s.do(http.MethodPost, "/api/characters/sell", token, gin.H{"characterName": "Ace", "quantity": 2})
	require.Equal(t, http.StatusOK, code, env.Message)
	var sold service.SellResult
	require.NoError(t, json.Unmarshal(env.Data, &sold))
	assert.Equal(t, 2, sold.Remaining)
	assert.Equal(t, s.cfg.StartingCash+2*s.cfg.SellPrice, sold.UserCash)
}

func TestStoreFailureIsReported(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signUp("sweeper")

	s.store.FailOn("GetAccount", 0, errors.New("connection reset"))
	code, env := s.do(http.MethodGet, "/api/cash", token, nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, weberrors.CodeInternalError, env.Code)
	assert.Equal(t, "internal server error", env.Message)
	assert.Equal(t, 1, s.reports())

	// 业务拒绝不上报
	s.store.ClearFailures()
	code, _ = s.do(http.MethodPost, "/api/gacha/draw", token, gin.H{"count": 0})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, 1, s.reports())
}

func TestHandlersLogOutcomes(t *testing.T) {
	s := newTestServer(t)
	userID, token := s.signUp("logger")
	assert.True(t, hasMessage(s.logs.entries(t, "handler.auth"), "info", "account signed up"))

	code, _ := s.do(http.MethodPost, "/api/gacha/draw", token, gin.H{"count": 2})
	require.Equal(t, http.StatusOK, code)
	entries := s.logs.entries(t, "handler.character")
	assert.True(t, hasMessage(entries, "debug", "handling gacha draw request"))
	require.True(t, hasMessage(entries, "info", "gacha draw response sent"))
	for _, e := range entries {
		if e["msg"] == "gacha draw response sent" {
			assert.EqualValues(t, userID, e["user_id"])
			assert.EqualValues(t, 2, e["count"])
		}
	}

	// 业务拒绝只记 Debug，存储故障记 Error
	code, _ = s.do(http.MethodPost, "/api/gacha/draw", token, gin.H{"count": 0})
	require.Equal(t, http.StatusBadRequest, code)
	assert.True(t, hasMessage(s.logs.entries(t, "handler.character"), "debug", "request rejected"))

	s.store.FailOn("GetAccount", 0, errors.New("connection reset"))
	code, _ = s.do(http.MethodGet, "/api/cash", token, nil)
	require.Equal(t, http.StatusInternalServerError, code)
	assert.True(t, hasMessage(s.logs.entries(t, "handler.account"), "error", "request failed"))
}
