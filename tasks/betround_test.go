package tasks

import (
	"sync"
	"testing"
	"time"

	"lordcord/scheduler"

	"github.com/benbjohnson/clock"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBetClient struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeBetClient) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, content)
	return &discordgo.Message{ID: "m", ChannelID: channelID, Content: content}, nil
}

func (f *fakeBetClient) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func TestBetRoundDebounce(t *testing.T) {
	mock := clock.NewMock()
	reg := scheduler.NewWithClock(mock)
	client := &fakeBetClient{}
	m := NewBetManager(reg, client, 30*time.Second)

	m.PlaceBet("c1", Bet{UserID: "u1", Choice: "heads", Amount: 100})

	// A second bet inside the window pushes the settlement out.
	mock.Add(20 * time.Second)
	m.PlaceBet("c1", Bet{UserID: "u2", Choice: "tails", Amount: 50})

	mock.Add(20 * time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, client.sentCount())

	pot, bets := m.OpenRound("c1")
	assert.Equal(t, 150, pot)
	assert.Equal(t, 2, bets)

	mock.Add(10 * time.Second)
	require.Eventually(t, func() bool {
		return client.sentCount() == 1
	}, time.Second, 5*time.Millisecond)
	assert.Contains(t, client.sent[0], "The coin landed on")

	pot, bets = m.OpenRound("c1")
	assert.Equal(t, 0, pot)
	assert.Equal(t, 0, bets)
}

func TestBetRoundSettleIsIdempotent(t *testing.T) {
	reg := scheduler.NewWithClock(clock.NewMock())
	client := &fakeBetClient{}
	m := NewBetManager(reg, client, time.Minute)

	m.PlaceBet("c1", Bet{UserID: "u1", Choice: "heads", Amount: 100})

	m.settle("c1")
	m.settle("c1") // the round is already detached

	assert.Equal(t, 1, client.sentCount())
}

func TestBetRoundsAreIndependentPerChannel(t *testing.T) {
	mock := clock.NewMock()
	reg := scheduler.NewWithClock(mock)
	client := &fakeBetClient{}
	m := NewBetManager(reg, client, 30*time.Second)

	m.PlaceBet("c1", Bet{UserID: "u1", Choice: "heads", Amount: 100})
	m.PlaceBet("c2", Bet{UserID: "u2", Choice: "tails", Amount: 100})
	assert.Equal(t, 2, reg.Len())

	mock.Add(30 * time.Second)
	require.Eventually(t, func() bool {
		return client.sentCount() == 2
	}, time.Second, 5*time.Millisecond)
}

func TestBetRoundPayoutSplitsByStake(t *testing.T) {
	m := &BetManager{}

	msg := m.resultMessage("heads", 300, []Bet{
		{UserID: "u1", Choice: "heads", Amount: 100},
		{UserID: "u2", Choice: "heads", Amount: 50},
	}, 150)

	assert.Contains(t, msg, "<@u1> wins 200")
	assert.Contains(t, msg, "<@u2> wins 100")
}

func TestBetRoundHouseKeepsUnclaimedPot(t *testing.T) {
	m := &BetManager{}
	msg := m.resultMessage("tails", 100, nil, 0)
	assert.Contains(t, msg, "the house keeps the pot")
}
