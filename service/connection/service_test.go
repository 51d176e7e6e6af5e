package connection

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	scaffoldconfig "github.com/Plaud-AI/plaud-go-scaffold/pkg/config"
	"github.com/Plaud-AI/plaud-go-scaffold/pkg/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"inbox-pilot/dao"
	datamodel "inbox-pilot/data/model"
	"inbox-pilot/service/credential"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&datamodel.Connection{}))
	return db
}

func newTestGenerator(t *testing.T) *snowflake.Generator {
	t.Helper()
	gen, err := snowflake.NewFromConfig(&scaffoldconfig.SnowflakeConfig{
		NodeID: 2,
		Epoch:  "2025-01-01T00:00:00Z",
	})
	require.NoError(t, err)
	return gen
}

// newOAuthStub 伪造 OAuth token 与 userinfo 端点
func newOAuthStub(t *testing.T, email string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("grant_type") == "authorization_code" && r.PostForm.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "at-1",
			"refresh_token": "rt-1",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"email":   email,
			"name":    "Test User",
			"picture": "https://example.com/p.png",
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestService(t *testing.T, db *gorm.DB, stub *httptest.Server) *ConnectionService {
	t.Helper()
	creds := credential.New(credential.Config{
		ClientID:     "cid",
		ClientSecret: "secret",
		TokenURL:     stub.URL + "/token",
		UserInfoURL:  stub.URL + "/userinfo",
	})
	return NewConnectionService(dao.NewConnectionDao(db), creds, newTestGenerator(t))
}

func TestConnect(t *testing.T) {
	db := newTestDB(t)
	stub := newOAuthStub(t, "acct@example.com")
	svc := newTestService(t, db, stub)

	conn, err := svc.Connect(context.Background(), "user-1", "good-code")
	require.NoError(t, err)

	assert.Equal(t, datamodel.ProviderGmail, conn.Provider)
	assert.Equal(t, datamodel.ConnStatusActive, conn.ConnStatus)
	assert.Equal(t, datamodel.DefaultMaxEmailsPerSync, conn.MaxEmailsPerSync)
	require.NotNil(t, conn.Metadata)
	assert.Equal(t, "acct@example.com", conn.Metadata.Email)

	var stored datamodel.Connection
	require.NoError(t, db.Where("user_id = ?", "user-1").Take(&stored).Error)
	assert.Equal(t, "acct@example.com", stored.ProviderAccountID)
	assert.NotEmpty(t, stored.Credentials)
}

func TestConnectBadCode(t *testing.T) {
	db := newTestDB(t)
	stub := newOAuthStub(t, "acct@example.com")
	svc := newTestService(t, db, stub)

	_, err := svc.Connect(context.Background(), "user-1", "bad-code")
	assert.ErrorIs(t, err, credential.ErrExchangeFailed)
}

func TestConnectSameAccountTwiceUpserts(t *testing.T) {
	db := newTestDB(t)
	stub := newOAuthStub(t, "acct@example.com")
	svc := newTestService(t, db, stub)

	first, err := svc.Connect(context.Background(), "user-1", "good-code")
	require.NoError(t, err)
	second, err := svc.Connect(context.Background(), "user-1", "good-code")
	require.NoError(t, err)

	// 同账号重连不产生第二条连接，保留原 id
	assert.Equal(t, first.ID, second.ID)
	var count int64
	require.NoError(t, db.Model(&datamodel.Connection{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDisconnect(t *testing.T) {
	db := newTestDB(t)
	stub := newOAuthStub(t, "acct@example.com")
	svc := newTestService(t, db, stub)

	conn, err := svc.Connect(context.Background(), "user-1", "good-code")
	require.NoError(t, err)

	require.NoError(t, svc.Disconnect(context.Background(), "user-1", conn.ID))

	var stored datamodel.Connection
	require.NoError(t, db.First(&stored, conn.ID).Error)
	assert.Equal(t, datamodel.ConnStatusInactive, stored.ConnStatus)
}

func TestDisconnectWrongUser(t *testing.T) {
	db := newTestDB(t)
	stub := newOAuthStub(t, "acct@example.com")
	svc := newTestService(t, db, stub)

	conn, err := svc.Connect(context.Background(), "user-1", "good-code")
	require.NoError(t, err)

	err = svc.Disconnect(context.Background(), "user-2", conn.ID)
	assert.ErrorIs(t, err, ErrConnectionNotFound)
}

func TestUpdateSyncSettingsBounds(t *testing.T) {
	db := newTestDB(t)
	stub := newOAuthStub(t, "acct@example.com")
	svc := newTestService(t, db, stub)

	conn, err := svc.Connect(context.Background(), "user-1", "good-code")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.UpdateSyncSettings(context.Background(), "user-1", conn.ID, 0), ErrInvalidMaxEmails)
	assert.ErrorIs(t, svc.UpdateSyncSettings(context.Background(), "user-1", conn.ID, 101), ErrInvalidMaxEmails)

	require.NoError(t, svc.UpdateSyncSettings(context.Background(), "user-1", conn.ID, 25))

	var stored datamodel.Connection
	require.NoError(t, db.First(&stored, conn.ID).Error)
	assert.Equal(t, 25, stored.MaxEmailsPerSync)
}

func TestListByUser(t *testing.T) {
	db := newTestDB(t)
	stub := newOAuthStub(t, "acct@example.com")
	svc := newTestService(t, db, stub)

	_, err := svc.Connect(context.Background(), "user-1", "good-code")
	require.NoError(t, err)

	conns, err := svc.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, conns, 1)

	none, err := svc.ListByUser(context.Background(), "user-2")
	require.NoError(t, err)
	assert.Empty(t, none)
}
