package tasks

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"lordcord/scheduler"
)

// Bet is one wager in a coin-flip round.
type Bet struct {
	UserID string
	Choice string // "heads" or "tails"
	Amount int
}

// BetManager runs debounced multi-party betting rounds, one per channel.
// Every new bet re-arms the round's settlement timer through the registry;
// the round settles once the betting window elapses with no new bet.
// Rounds live purely in memory: a restart voids open rounds, which is why
// this is the one timed feature with no expiry records and no part in
// reconciliation.
type BetManager struct {
	Registry *scheduler.Registry
	Client   BetClient
	Debounce time.Duration

	mu     sync.Mutex
	rounds map[string]*betRound // key: channelID
}

type betRound struct {
	bets []Bet
	pot  int
}

func BetKey(channelID string) string {
	return "bet:" + channelID
}

func NewBetManager(reg *scheduler.Registry, client BetClient, debounce time.Duration) *BetManager {
	return &BetManager{
		Registry: reg,
		Client:   client,
		Debounce: debounce,
		rounds:   make(map[string]*betRound),
	}
}

// PlaceBet joins the channel's open round, opening one if needed, and
// pushes the settlement deadline out by the debounce window. Returns when
// the round will settle if no further bet arrives.
func (m *BetManager) PlaceBet(channelID string, bet Bet) time.Time {
	m.mu.Lock()
	r, ok := m.rounds[channelID]
	if !ok {
		r = &betRound{}
		m.rounds[channelID] = r
	}
	r.bets = append(r.bets, bet)
	r.pot += bet.Amount
	m.mu.Unlock()

	e := m.Registry.Create(BetKey(channelID), m.Debounce, func() {
		m.settle(channelID)
	})
	return e.FireAt
}

// OpenRound reports the current pot and bet count for a channel.
func (m *BetManager) OpenRound(channelID string) (pot, bets int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rounds[channelID]; ok {
		return r.pot, len(r.bets)
	}
	return 0, 0
}

// settle flips the coin, splits the pot among the winners and announces
// the result. The round is detached from the map first, so a second
// invocation for the same round finds nothing and is a no-op.
func (m *BetManager) settle(channelID string) {
	m.mu.Lock()
	r := m.rounds[channelID]
	delete(m.rounds, channelID)
	m.mu.Unlock()

	if r == nil || len(r.bets) == 0 {
		return
	}

	outcome := "heads"
	if rand.Intn(2) == 1 {
		outcome = "tails"
	}

	var winners []Bet
	winningStake := 0
	for _, b := range r.bets {
		if b.Choice == outcome {
			winners = append(winners, b)
			winningStake += b.Amount
		}
	}

	msg := m.resultMessage(outcome, r.pot, winners, winningStake)
	if _, err := m.Client.ChannelMessageSend(channelID, msg); err != nil {
		log.Printf("[BetRound] Failed to announce round result in channel %s: %v", channelID, err)
	}
}

// resultMessage splits the pot proportionally to each winner's stake.
func (m *BetManager) resultMessage(outcome string, pot int, winners []Bet, winningStake int) string {
	if len(winners) == 0 {
		return fmt.Sprintf("The coin landed on **%s** — the house keeps the pot of %d.", outcome, pot)
	}

	payouts := make([]string, 0, len(winners))
	for _, w := range winners {
		share := pot * w.Amount / winningStake
		payouts = append(payouts, fmt.Sprintf("<@%s> wins %d", w.UserID, share))
	}
	return fmt.Sprintf("The coin landed on **%s**! %s", outcome, strings.Join(payouts, ", "))
}
