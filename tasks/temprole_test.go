package tasks

import (
	"testing"
	"time"

	"lordcord/scheduler"
	"lordcord/utils/database"

	"github.com/benbjohnson/clock"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRoleClient struct {
	members  map[string]*discordgo.Member // key: userID
	removals int
}

func (f *fakeRoleClient) GuildMember(guildID, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	if m, ok := f.members[userID]; ok {
		return m, nil
	}
	return nil, notFoundErr()
}

func (f *fakeRoleClient) GuildMemberRoleRemove(guildID, userID, roleID string, _ ...discordgo.RequestOption) error {
	m, ok := f.members[userID]
	if !ok {
		return notFoundErr()
	}
	var kept []string
	for _, r := range m.Roles {
		if r != roleID {
			kept = append(kept, r)
		}
	}
	m.Roles = kept
	f.removals++
	return nil
}

func newTempRoleAdapter(t *testing.T, client RoleClient) *TempRoleAdapter {
	return &TempRoleAdapter{
		DB:       newTestDB(t),
		Registry: scheduler.NewWithClock(clock.NewMock()),
		Client:   client,
	}
}

func TestTempRoleExpiryIsIdempotent(t *testing.T) {
	client := &fakeRoleClient{members: map[string]*discordgo.Member{
		"u1": {Roles: []string{"r1", "r2"}},
	}}
	a := newTempRoleAdapter(t, client)

	require.NoError(t, a.Schedule("g1", "u1", "r1", time.Hour))

	action := a.expireAction("g1", "u1", "r1")
	action()
	action() // replay: the member no longer holds the role

	assert.Equal(t, 1, client.removals)
	assert.Equal(t, []string{"r2"}, client.members["u1"].Roles)

	grants, err := database.ListTempRoles(a.DB)
	require.NoError(t, err)
	assert.Empty(t, grants)
}

func TestTempRoleExpiryForDepartedMember(t *testing.T) {
	client := &fakeRoleClient{members: map[string]*discordgo.Member{}}
	a := newTempRoleAdapter(t, client)

	require.NoError(t, a.Schedule("g1", "gone", "r1", time.Hour))

	a.expireAction("g1", "gone", "r1")()

	assert.Equal(t, 0, client.removals)
	grants, err := database.ListTempRoles(a.DB)
	require.NoError(t, err)
	assert.Empty(t, grants)
}

func TestTempRolePendingSkipsDepartedMembers(t *testing.T) {
	client := &fakeRoleClient{members: map[string]*discordgo.Member{
		"u1": {Roles: []string{"r1"}},
	}}
	a := newTempRoleAdapter(t, client)

	require.NoError(t, a.Schedule("g1", "u1", "r1", time.Hour))
	require.NoError(t, a.Schedule("g1", "gone", "r1", time.Hour))

	pending, err := a.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, TempRoleKey("g1", "u1", "r1"), pending[0].Key)
}

func TestTempRoleCancelMakesGrantPermanent(t *testing.T) {
	client := &fakeRoleClient{members: map[string]*discordgo.Member{
		"u1": {Roles: []string{"r1"}},
	}}
	a := newTempRoleAdapter(t, client)

	require.NoError(t, a.Schedule("g1", "u1", "r1", time.Hour))
	require.NoError(t, a.Cancel("g1", "u1", "r1"))

	assert.Equal(t, 0, a.Registry.Len())
	grants, err := database.ListTempRoles(a.DB)
	require.NoError(t, err)
	assert.Empty(t, grants)

	_, ok := a.Remaining("g1", "u1", "r1")
	assert.False(t, ok)
}
