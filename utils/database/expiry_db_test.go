package database

import (
	"testing"
	"time"

	"lordcord/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTempBanUpsertPerMember(t *testing.T) {
	db, err := InitExpiryDB(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	first := time.Now().Add(time.Hour).UTC()
	second := first.Add(time.Hour)

	require.NoError(t, AddTempBan(db, model.TempBan{GuildID: "g1", UserID: "u1", Reason: "spam", ExpiresAt: first}))
	require.NoError(t, AddTempBan(db, model.TempBan{GuildID: "g1", UserID: "u1", Reason: "extended", ExpiresAt: second}))
	require.NoError(t, AddTempBan(db, model.TempBan{GuildID: "g2", UserID: "u1", ExpiresAt: first}))

	bans, err := ListTempBans(db)
	require.NoError(t, err)
	require.Len(t, bans, 2)

	ban, err := GetTempBan(db, "g1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "extended", ban.Reason)
	assert.WithinDuration(t, second, ban.ExpiresAt, time.Second)

	require.NoError(t, DeleteTempBan(db, "g1", "u1"))
	require.NoError(t, DeleteTempBan(db, "g1", "u1")) // absent record is fine

	bans, err = ListTempBans(db)
	require.NoError(t, err)
	require.Len(t, bans, 1)
	assert.Equal(t, "g2", bans[0].GuildID)
}

func TestGetGiveawayMissingReturnsNil(t *testing.T) {
	db, err := InitExpiryDB(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	g, err := GetGiveaway(db, "nope")
	require.NoError(t, err)
	assert.Nil(t, g)

	require.NoError(t, AddGiveaway(db, model.Giveaway{
		GiveawayID: "ga1",
		GuildID:    "g1",
		ChannelID:  "c1",
		MessageID:  "m1",
		Prize:      "Nitro",
		Winners:    2,
		ExpiresAt:  time.Now().Add(time.Hour).UTC(),
	}))

	g, err = GetGiveaway(db, "ga1")
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, "Nitro", g.Prize)

	require.NoError(t, DeleteGiveaway(db, "ga1"))
	g, err = GetGiveaway(db, "ga1")
	require.NoError(t, err)
	assert.Nil(t, g)
}
