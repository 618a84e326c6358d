package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"syncchat.backend/internal/config"
	"syncchat.backend/internal/domain/services"
	"syncchat.backend/internal/infrastructure/mail"
	"syncchat.backend/pkg/crypto"
	plog "syncchat.backend/pkg/logger"
	"syncchat.backend/pkg/redis"
)

const usersDDL = `CREATE TABLE users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'user',
	verified BOOLEAN NOT NULL DEFAULT false,
	verify_code TEXT,
	code_expires_at DATETIME,
	first_name TEXT,
	last_name TEXT,
	color INTEGER NOT NULL DEFAULT 0,
	image TEXT,
	profile_setup BOOLEAN NOT NULL DEFAULT false,
	created_at DATETIME,
	updated_at DATETIME,
	deleted_at DATETIME
);`

func withMainHooks(t *testing.T) {
	t.Helper()
	origLoadDotenv := loadDotenv
	origLoadCfg := loadCfg
	origInitLog := initLog
	origInitRedis := initRedis
	origOpenDB := openDB
	origGetStdDB := getStdDB
	origMigrateDB := migrateDB
	origNewMailer := newMailer
	origNewStorage := newStorage
	origRunServer := runServer

	t.Cleanup(func() {
		loadDotenv = origLoadDotenv
		loadCfg = origLoadCfg
		initLog = origInitLog
		initRedis = origInitRedis
		openDB = origOpenDB
		getStdDB = origGetStdDB
		migrateDB = origMigrateDB
		newMailer = origNewMailer
		newStorage = origNewStorage
		runServer = origRunServer
	})

	loadDotenv = func(...string) error { return errors.New("no .env") }
	initLog = plog.Init
	initRedis = func(string, string) error { return nil }
	openDB = func(string) (*gorm.DB, error) {
		dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"), time.Now().UnixNano())
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	}
	migrateDB = func(_ context.Context, db *sql.DB) error {
		_, err := db.Exec(usersDDL)
		return err
	}
	runServer = func(*http.Server) error { return nil }
}

func baseTestConfig(t *testing.T) func() *config.Config {
	dir := t.TempDir()
	return func() *config.Config {
		return &config.Config{
			Server: config.ServerConfig{
				Port:           "18080",
				Env:            "development",
				AllowedOrigins: []string{"http://localhost:5173"},
			},
			Database: config.DatabaseConfig{
				Host:        "localhost",
				Port:        5432,
				User:        "postgres",
				Password:    "postgres",
				DBName:      "syncchat",
				SSLMode:     "disable",
				AutoMigrate: true,
			},
			Redis: config.RedisConfig{URL: "redis://localhost:6379"},
			JWT:   config.JWTConfig{Secret: "secret", Expiry: 72 * time.Hour},
			Cookie: config.CookieConfig{
				Name:   "jwt",
				Secure: true,
			},
			Verification: config.VerificationConfig{CodeTTL: time.Hour, ResendCooldown: time.Minute},
			Mail:         config.MailConfig{Provider: config.MailProviderLog, SendTimeout: time.Second},
			Storage: config.StorageConfig{
				Driver:         config.StorageDriverLocal,
				LocalDir:       dir,
				MaxUploadBytes: 1 << 20,
			},
		}
	}
}

func TestRunMainProcess_InvalidConfig(t *testing.T) {
	withMainHooks(t)
	loadCfg = func() *config.Config {
		cfg := baseTestConfig(t)()
		cfg.JWT.Secret = ""
		return cfg
	}

	err := runMainProcess()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestRunMainProcess_RedisInitError(t *testing.T) {
	withMainHooks(t)
	loadCfg = baseTestConfig(t)
	initRedis = func(string, string) error { return errors.New("redis down") }

	assert.ErrorContains(t, runMainProcess(), "redis down")
}

func TestRunMainProcess_DBOpenError(t *testing.T) {
	withMainHooks(t)
	loadCfg = baseTestConfig(t)
	openDB = func(string) (*gorm.DB, error) { return nil, errors.New("db open failed") }

	assert.ErrorContains(t, runMainProcess(), "db open failed")
}

func TestRunMainProcess_StdDBError(t *testing.T) {
	withMainHooks(t)
	loadCfg = baseTestConfig(t)
	getStdDB = func(*gorm.DB) (*sql.DB, error) { return nil, errors.New("no pool") }

	assert.ErrorContains(t, runMainProcess(), "no pool")
}

func TestRunMainProcess_MigrationError(t *testing.T) {
	withMainHooks(t)
	loadCfg = baseTestConfig(t)
	migrateDB = func(context.Context, *sql.DB) error { return errors.New("dirty schema") }

	assert.ErrorContains(t, runMainProcess(), "dirty schema")
}

func TestRunMainProcess_SkipsMigrationsWhenDisabled(t *testing.T) {
	withMainHooks(t)
	loadCfg = func() *config.Config {
		cfg := baseTestConfig(t)()
		cfg.Database.AutoMigrate = false
		return cfg
	}
	migrateDB = func(context.Context, *sql.DB) error {
		t.Fatal("migrations must not run")
		return nil
	}

	assert.NoError(t, runMainProcess())
}

func TestRunMainProcess_MailerAndStorageErrors(t *testing.T) {
	withMainHooks(t)
	loadCfg = baseTestConfig(t)
	newMailer = func(config.MailConfig) (services.Mailer, error) { return nil, errors.New("bad mailer") }
	assert.ErrorContains(t, runMainProcess(), "bad mailer")

	newMailer = mail.New
	newStorage = func(context.Context, config.StorageConfig) (services.FileStorage, error) {
		return nil, errors.New("bad storage")
	}
	assert.ErrorContains(t, runMainProcess(), "bad storage")
}

func TestRunMainProcess_ServerRunError(t *testing.T) {
	withMainHooks(t)
	loadCfg = baseTestConfig(t)
	runServer = func(*http.Server) error { return errors.New("listen failed") }

	assert.ErrorContains(t, runMainProcess(), "listen failed")
}

func TestRunMainProcess_ServerClosedIsCleanExit(t *testing.T) {
	withMainHooks(t)
	loadCfg = baseTestConfig(t)
	runServer = func(*http.Server) error { return http.ErrServerClosed }

	assert.NoError(t, runMainProcess())
}

func TestRunMainProcess_ServesAccountFlow(t *testing.T) {
	withMainHooks(t)
	restore := crypto.SetCost(bcrypt.MinCost)
	defer restore()

	mr := miniredis.RunT(t)
	initRedis = redis.Init
	loadCfg = func() *config.Config {
		cfg := baseTestConfig(t)()
		cfg.Redis.URL = "redis://" + mr.Addr()
		return cfg
	}

	runServer = func(srv *http.Server) error {
		assert.Equal(t, ":18080", srv.Addr)
		h := srv.Handler

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		signup := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(`{"email":"a@x.com","password":"secret"}`))
		signup.Header.Set("Content-Type", "application/json")
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, signup)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var session *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == "jwt" {
				session = c
			}
		}
		require.NotNil(t, session)

		info := httptest.NewRequest(http.MethodGet, "/api/auth/user-info", nil)
		info.AddCookie(session)
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, info)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"verified":false`)

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/user-info", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		resend := func() int {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/resend-verification", nil)
			req.AddCookie(session)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			return rec.Code
		}
		assert.Equal(t, http.StatusOK, resend())
		assert.Equal(t, http.StatusTooManyRequests, resend())

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Contains(t, rec.Body.String(), "syncchat_auth_events_total")
		return nil
	}

	require.NoError(t, runMainProcess())
}
