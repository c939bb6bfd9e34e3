package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"educareer/backend/config"
	"educareer/backend/internal/dto"
	"educareer/backend/internal/model"
	"educareer/backend/pkg/jwt"
)

type authFixture struct {
	svc    AuthService
	repos  *mockRepos
	cache  *fakeCache
	bus    *recordingBus
	jwtMgr *jwt.Manager
}

func setupTestAuthService() *authFixture {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:  "test-secret-key-for-unit-testing-2026",
			TokenTTL:   7 * 24 * time.Hour,
			Issuer:     "educareer-test",
			BcryptCost: bcrypt.MinCost,
		},
	}
	repo, repos := newMockRepos()
	cache := newFakeCache()
	bus := &recordingBus{}
	jwtMgr := jwt.NewManager(&cfg.Auth)

	svc := NewAuthService(cfg, repo, jwtMgr, cache, bus, zap.NewNop())
	return &authFixture{svc: svc, repos: repos, cache: cache, bus: bus, jwtMgr: jwtMgr}
}

func createTestUser(repos *mockRepos, email, password string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := &model.User{
		UserID:       "user-" + strings.Split(email, "@")[0],
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    "Ada",
	}
	repos.users.users[user.UserID] = user
	return user
}

// ── 注册测试 ──

func TestRegister_Success(t *testing.T) {
	f := setupTestAuthService()

	result, err := f.svc.Register(context.Background(), &dto.RegisterRequest{
		Email:     "  A@B.com ",
		Password:  "longenough",
		FirstName: " Ada ",
	})
	if err != nil {
		t.Fatalf("Register 应成功，但返回错误: %v", err)
	}
	if result.Token == "" {
		t.Error("Token 不应为空")
	}
	if result.User.Email != "a@b.com" {
		t.Errorf("邮箱应归一化为小写，实际 %s", result.User.Email)
	}
	if result.User.FirstName != "Ada" {
		t.Errorf("期望 FirstName=Ada，实际 %q", result.User.FirstName)
	}
	if result.ExpiresIn != int((7 * 24 * time.Hour).Seconds()) {
		t.Errorf("ExpiresIn 错误: %d", result.ExpiresIn)
	}

	// 响应体不含密码
	body, _ := json.Marshal(result)
	if strings.Contains(string(body), "password") {
		t.Errorf("响应不应包含 password 字段: %s", body)
	}

	stored, _ := f.repos.users.GetByEmail(context.Background(), "a@b.com")
	if stored == nil || bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("longenough")) != nil {
		t.Error("密码应以 bcrypt 哈希存储")
	}
	if stored.Timetable == nil || stored.Skills == nil || stored.Courses == nil {
		t.Error("JSON 字段应初始化为空数组")
	}

	if topics := f.bus.topics(); len(topics) != 1 || topics[0] != TopicUserRegistered {
		t.Errorf("期望发布 user.registered，实际 %v", topics)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := setupTestAuthService()
	createTestUser(f.repos, "dup@test.com", "password123")

	_, err := f.svc.Register(context.Background(), &dto.RegisterRequest{
		Email:    "DUP@test.com",
		Password: "longenough",
	})
	if !errors.Is(err, ErrUserExists) {
		t.Errorf("期望 ErrUserExists，实际: %v", err)
	}
	if len(f.bus.topics()) != 0 {
		t.Error("注册失败不应发布事件")
	}
}

// ── 登录测试 ──

func TestLogin_Success(t *testing.T) {
	f := setupTestAuthService()
	user := createTestUser(f.repos, "ada@test.com", "password123")

	result, err := f.svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "Ada@Test.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 应成功，但返回错误: %v", err)
	}

	claims, err := f.jwtMgr.ParseToken(result.Token)
	if err != nil {
		t.Fatalf("签发的 Token 无法解析: %v", err)
	}
	if claims.UserID != user.UserID {
		t.Errorf("期望 UserID=%s，实际=%s", user.UserID, claims.UserID)
	}
	if topics := f.bus.topics(); len(topics) != 1 || topics[0] != TopicUserLoggedIn {
		t.Errorf("期望发布 user.logged_in，实际 %v", topics)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	f := setupTestAuthService()
	createTestUser(f.repos, "ada@test.com", "password123")

	_, err := f.svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "ada@test.com",
		Password: "wrong_password",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestLogin_UserNotFound(t *testing.T) {
	f := setupTestAuthService()

	_, err := f.svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@test.com",
		Password: "password123",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("用户不存在也应返回 ErrInvalidCredentials，实际: %v", err)
	}
}

// ── 鉴权 / 注销 ──

func TestAuthenticate_AndLogout(t *testing.T) {
	f := setupTestAuthService()
	createTestUser(f.repos, "ada@test.com", "password123")

	login, err := f.svc.Login(context.Background(), &dto.LoginRequest{Email: "ada@test.com", Password: "password123"})
	if err != nil {
		t.Fatalf("Login 失败: %v", err)
	}

	user, claims, err := f.svc.Authenticate(context.Background(), login.Token)
	if err != nil {
		t.Fatalf("Authenticate 失败: %v", err)
	}
	if user.Email != "ada@test.com" {
		t.Errorf("期望加载 ada@test.com，实际 %s", user.Email)
	}

	if err := f.svc.Logout(context.Background(), claims); err != nil {
		t.Fatalf("Logout 失败: %v", err)
	}
	ttl, ok := f.cache.blacklisted[claims.ID]
	if !ok {
		t.Fatal("jti 应加入黑名单")
	}
	if ttl <= 0 || ttl > 7*24*time.Hour {
		t.Errorf("黑名单 TTL 应为 Token 剩余有效期，实际 %v", ttl)
	}

	if _, _, err := f.svc.Authenticate(context.Background(), login.Token); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("注销后期望 ErrTokenRevoked，实际: %v", err)
	}
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	f := setupTestAuthService()

	if _, _, err := f.svc.Authenticate(context.Background(), "not-a-jwt"); !errors.Is(err, jwt.ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}

func TestAuthenticate_DeletedUser(t *testing.T) {
	f := setupTestAuthService()
	token, _ := f.jwtMgr.GenerateAccessToken("ghost")

	if _, _, err := f.svc.Authenticate(context.Background(), token); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

func TestLogout_WithoutCache(t *testing.T) {
	cfg := &config.Config{Auth: config.AuthConfig{JWTSecret: "s", TokenTTL: time.Hour}}
	repo, _ := newMockRepos()
	svc := NewAuthService(cfg, repo, jwt.NewManager(&cfg.Auth), nil, nil, zap.NewNop())

	if err := svc.Logout(context.Background(), &jwt.Claims{UserID: "u"}); err != nil {
		t.Errorf("无 Redis 时注销应直接成功: %v", err)
	}
}

func TestMe_NotFound(t *testing.T) {
	f := setupTestAuthService()

	if _, err := f.svc.Me(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}
