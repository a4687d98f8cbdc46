package tasks

import (
	"net/http"
	"testing"
	"time"

	"lordcord/scheduler"
	"lordcord/utils/database"

	"github.com/benbjohnson/clock"
	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.InitExpiryDB(":memory:")
	require.NoError(t, err)
	// A second pool connection would get its own empty in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func notFoundErr() error {
	return &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusNotFound}}
}

type fakeBanClient struct {
	banExists   bool
	unbans      int
	knownGuilds map[string]bool
}

func (f *fakeBanClient) Guild(id string, _ ...discordgo.RequestOption) (*discordgo.Guild, error) {
	if f.knownGuilds[id] {
		return &discordgo.Guild{ID: id}, nil
	}
	return nil, notFoundErr()
}

func (f *fakeBanClient) GuildBan(guildID, userID string, _ ...discordgo.RequestOption) (*discordgo.GuildBan, error) {
	if f.banExists {
		return &discordgo.GuildBan{User: &discordgo.User{ID: userID}}, nil
	}
	return nil, notFoundErr()
}

func (f *fakeBanClient) GuildBanDelete(guildID, userID string, _ ...discordgo.RequestOption) error {
	f.banExists = false
	f.unbans++
	return nil
}

func newTempBanAdapter(t *testing.T, client BanClient) *TempBanAdapter {
	return &TempBanAdapter{
		DB:       newTestDB(t),
		Registry: scheduler.NewWithClock(clock.NewMock()),
		Client:   client,
	}
}

func TestTempBanExpiryIsIdempotent(t *testing.T) {
	client := &fakeBanClient{banExists: true, knownGuilds: map[string]bool{"g1": true}}
	a := newTempBanAdapter(t, client)

	require.NoError(t, a.Schedule("g1", "u1", "spam", time.Hour))

	action := a.expireAction("g1", "u1")
	action()
	action() // crash-recovery replay

	assert.Equal(t, 1, client.unbans)
	bans, err := database.ListTempBans(a.DB)
	require.NoError(t, err)
	assert.Empty(t, bans)
}

func TestTempBanExpiryCleansUpManuallyLiftedBan(t *testing.T) {
	client := &fakeBanClient{banExists: false, knownGuilds: map[string]bool{"g1": true}}
	a := newTempBanAdapter(t, client)

	require.NoError(t, a.Schedule("g1", "u1", "", time.Hour))

	a.expireAction("g1", "u1")()

	assert.Equal(t, 0, client.unbans)
	bans, err := database.ListTempBans(a.DB)
	require.NoError(t, err)
	assert.Empty(t, bans)
}

func TestTempBanLiftNowFiresSynchronously(t *testing.T) {
	client := &fakeBanClient{banExists: true, knownGuilds: map[string]bool{"g1": true}}
	a := newTempBanAdapter(t, client)

	require.NoError(t, a.Schedule("g1", "u1", "", time.Hour))
	require.Equal(t, 1, a.Registry.Len())

	a.LiftNow("g1", "u1")

	assert.Equal(t, 1, client.unbans)
	assert.Equal(t, 0, a.Registry.Len())
}

func TestTempBanPendingSkipsUnresolvableGuild(t *testing.T) {
	client := &fakeBanClient{banExists: true, knownGuilds: map[string]bool{"g1": true}}
	a := newTempBanAdapter(t, client)

	require.NoError(t, a.Schedule("g1", "u1", "", time.Hour))
	require.NoError(t, a.Schedule("gone", "u2", "", time.Hour))

	pending, err := a.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, TempBanKey("g1", "u1"), pending[0].Key)
}

func TestTempBanScheduleReplacesExistingRecord(t *testing.T) {
	client := &fakeBanClient{banExists: true, knownGuilds: map[string]bool{"g1": true}}
	a := newTempBanAdapter(t, client)

	require.NoError(t, a.Schedule("g1", "u1", "first", time.Hour))
	require.NoError(t, a.Schedule("g1", "u1", "extended", 2*time.Hour))

	bans, err := database.ListTempBans(a.DB)
	require.NoError(t, err)
	require.Len(t, bans, 1)
	assert.Equal(t, "extended", bans[0].Reason)

	remaining, ok := a.Remaining("g1", "u1")
	require.True(t, ok)
	assert.Equal(t, 2*time.Hour, remaining)
}
