package service

import (
	"context"
	"errors"

	"github.com/elliotchance/pie/v2"

	"github.com/lk2023060901/kickoff/app/league/internal/gameerr"
	"github.com/lk2023060901/kickoff/app/league/internal/metrics"
	"github.com/lk2023060901/kickoff/app/league/internal/model"
	"github.com/lk2023060901/kickoff/app/league/internal/repository"
	"github.com/lk2023060901/kickoff/app/league/internal/rules"
	"github.com/lk2023060901/kickoff/pkg/crypto"
	"github.com/lk2023060901/kickoff/pkg/logger"
	"github.com/lk2023060901/kickoff/pkg/security"
)

// SignUpInput 注册参数
type SignUpInput struct {
	LoginID         string
	UserName        string
	Password        string
	PasswordConfirm string
}

// RosterEntry 持有角色
type RosterEntry struct {
	CharacterID int64  `json:"characterId"`
	Name        string `json:"name"`
	model.Stats
	Quantity    int  `json:"quantity"`
	Level       int  `json:"level"`
	Ceiling     int  `json:"ceiling"`
	IsFormation bool `json:"isFormation"`
}

// AccountService 账号、余额、持有角色与阵容
type AccountService struct {
	store   repository.Store
	hasher  crypto.PasswordHasher
	jwt     *security.JWTManager
	cfg     *rules.Config
	metrics *metrics.LeagueMetrics
	logger  logger.Logger
}

// NewAccountService 创建账号服务
func NewAccountService(
	store repository.Store,
	hasher crypto.PasswordHasher,
	jwt *security.JWTManager,
	cfg *rules.Config,
	m *metrics.LeagueMetrics,
	l logger.Logger,
) *AccountService {
	return &AccountService{
		store:   store,
		hasher:  hasher,
		jwt:     jwt,
		cfg:     cfg,
		metrics: m,
		logger:  l.Named("service.account"),
	}
}

// SignUp 注册新账号
func (s *AccountService) SignUp(ctx context.Context, in SignUpInput) (*model.Account, error) {
	a, err := s.signUp(ctx, in)
	if err != nil {
		return nil, finish(ctx, s.logger, s.metrics, "sign up", 0, err)
	}
	s.logger.InfoContext(ctx, "account created", "user_id", a.UserID, "login_id", a.LoginID)
	return a, nil
}

func (s *AccountService) signUp(ctx context.Context, in SignUpInput) (*model.Account, error) {
	if in.Password != in.PasswordConfirm {
		return nil, gameerr.New(gameerr.KindInvalidArgument, "password confirmation does not match")
	}
	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	a := &model.Account{
		LoginID:      in.LoginID,
		UserName:     in.UserName,
		PasswordHash: hashed,
		UserCash:     s.cfg.StartingCash,
		Tier:         s.cfg.TierFor(0),
	}
	err = s.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		exists, err := tx.AccountExists(ctx, in.LoginID, in.UserName)
		if err != nil {
			return err
		}
		if exists {
			return gameerr.New(gameerr.KindAccountExists, "login id or user name already taken")
		}
		return tx.CreateAccount(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// SignIn 校验密码并签发令牌
func (s *AccountService) SignIn(ctx context.Context, loginID, password string) (string, *model.Account, error) {
	a, err := s.store.GetAccountByLoginID(ctx, loginID)
	if err != nil {
		if gameerr.KindOf(err) == gameerr.KindNotFound {
			err = gameerr.New(gameerr.KindInvalidCredentials, "unknown login id or wrong password")
		}
		return "", nil, finish(ctx, s.logger, s.metrics, "sign in", 0, err)
	}

	if err := s.hasher.Verify(password, a.PasswordHash); err != nil {
		if errors.Is(err, crypto.ErrPasswordMismatch) {
			err = gameerr.New(gameerr.KindInvalidCredentials, "unknown login id or wrong password")
		}
		return "", nil, finish(ctx, s.logger, s.metrics, "sign in", a.UserID, err)
	}

	token, err := s.jwt.GenerateToken(a.UserID, a.UserName)
	if err != nil {
		return "", nil, finish(ctx, s.logger, s.metrics, "sign in", a.UserID, err)
	}
	return token, a, nil
}

// Cash 当前余额
func (s *AccountService) Cash(ctx context.Context, userID int64) (int64, error) {
	a, err := s.store.GetAccount(ctx, userID)
	if err != nil {
		return 0, finish(ctx, s.logger, s.metrics, "get cash", userID, err)
	}
	return a.UserCash, nil
}

// Profile 账号信息
func (s *AccountService) Profile(ctx context.Context, userID int64) (*model.Account, error) {
	a, err := s.store.GetAccount(ctx, userID)
	if err != nil {
		return nil, finish(ctx, s.logger, s.metrics, "get profile", userID, err)
	}
	return a, nil
}

// Roster 列出持有的全部角色
func (s *AccountService) Roster(ctx context.Context, userID int64) ([]RosterEntry, error) {
	entries, err := roster(ctx, s.store, userID)
	if err != nil {
		return nil, finish(ctx, s.logger, s.metrics, "list roster", userID, err)
	}
	return entries, nil
}

func roster(ctx context.Context, tx repository.Tx, userID int64) ([]RosterEntry, error) {
	if _, err := tx.GetAccount(ctx, userID); err != nil {
		return nil, err
	}
	owned, err := tx.ListOwnership(ctx, userID)
	if err != nil {
		return nil, err
	}
	characters, err := tx.FindCharactersByIDs(ctx, pie.Map(owned, func(o *model.Ownership) int64 { return o.CharacterID }))
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*model.Character, len(characters))
	for _, c := range characters {
		byID[c.CharacterID] = c
	}

	entries := make([]RosterEntry, 0, len(owned))
	for _, o := range owned {
		e := RosterEntry{
			CharacterID: o.CharacterID,
			Name:        "Unknown",
			Quantity:    o.Quantity,
			Level:       o.Level,
			Ceiling:     o.Ceiling,
			IsFormation: o.IsFormation,
		}
		if c, ok := byID[o.CharacterID]; ok {
			e.Name = c.Name
			e.Stats = c.Stats
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// SetFormation 用 names 替换当前阵容，names 必须是 FormationSize 个不同的已持有角色
func (s *AccountService) SetFormation(ctx context.Context, userID int64, names []string) ([]RosterEntry, error) {
	var entries []RosterEntry
	err := s.setFormation(ctx, userID, names, &entries)
	if err != nil {
		return nil, finish(ctx, s.logger, s.metrics, "set formation", userID, err)
	}
	s.logger.InfoContext(ctx, "formation updated", "user_id", userID, "members", names)
	return entries, nil
}

func (s *AccountService) setFormation(ctx context.Context, userID int64, names []string, out *[]RosterEntry) error {
	unique := pie.Unique(names)
	if len(unique) != len(names) || len(names) != s.cfg.FormationSize {
		return gameerr.New(gameerr.KindInvalidTeamSize,
			"formation needs exactly %d distinct characters, got %d", s.cfg.FormationSize, len(unique))
	}

	return s.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if _, err := tx.LockAccount(ctx, userID); err != nil {
			return err
		}

		members := make([]*model.Ownership, 0, len(names))
		for _, name := range names {
			c, err := tx.FindCharacterByName(ctx, name)
			if err != nil {
				return err
			}
			o, err := tx.LockOwnership(ctx, userID, c.CharacterID)
			if err != nil {
				return ownershipOrMissing(err, name)
			}
			members = append(members, o)
		}

		if err := tx.ClearFormation(ctx, userID); err != nil {
			return err
		}
		for _, o := range members {
			o.IsFormation = true
			if err := tx.UpdateOwnership(ctx, o); err != nil {
				return err
			}
		}

		entries, err := roster(ctx, tx, userID)
		if err != nil {
			return err
		}
		*out = pie.Filter(entries, func(e RosterEntry) bool { return e.IsFormation })
		return nil
	})
}

// History 最近的对局记录
func (s *AccountService) History(ctx context.Context, userID int64, limit int) ([]*model.MatchRecord, error) {
	records, err := s.store.ListMatchRecords(ctx, userID, limit)
	if err != nil {
		return nil, finish(ctx, s.logger, s.metrics, "list history", userID, err)
	}
	return records, nil
}
