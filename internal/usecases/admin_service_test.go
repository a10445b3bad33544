package usecases

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustCreditsNotifiesBothSides(t *testing.T) {
	ledger, special := newTestLedger(t)
	msgr := &fakeMessenger{}
	svc := NewAdminService(ledger, special, msgr, discardLogger())

	svc.AdjustCredits(1, 42, 10, false)

	balance, _ := ledger.GetBalance(42)
	assert.Equal(t, 15, balance)
	require.Len(t, msgr.sent, 2, "admin confirmation plus user notification")
	assert.Contains(t, msgr.sent[0], "added 10 credits")
	assert.Contains(t, msgr.sent[1], "added to your account")
}

func TestAdjustCreditsRemoveClampsAtZero(t *testing.T) {
	ledger, special := newTestLedger(t)
	msgr := &fakeMessenger{}
	svc := NewAdminService(ledger, special, msgr, discardLogger())

	svc.AdjustCredits(1, 42, 100, true)

	balance, _ := ledger.GetBalance(42)
	assert.Equal(t, 0, balance)
	require.NotEmpty(t, msgr.sent)
	assert.Contains(t, msgr.sent[0], "removed 100 credits")
}

func TestAddSpecialPinsBalance(t *testing.T) {
	ledger, special := newTestLedger(t)
	msgr := &fakeMessenger{}
	svc := NewAdminService(ledger, special, msgr, discardLogger())

	svc.AddSpecial(1, 7, "vip")

	assert.True(t, special.IsSpecial(7))
	balance, _ := ledger.GetBalance(7)
	assert.Equal(t, 999, balance)

	// Adding again is rejected.
	msgr.sent = nil
	svc.AddSpecial(1, 7, "vip")
	require.Len(t, msgr.sent, 1)
	assert.Contains(t, msgr.sent[0], "already a special user")
}

func TestRemoveSpecialResetsBalance(t *testing.T) {
	ledger, special := newTestLedger(t)
	msgr := &fakeMessenger{}
	svc := NewAdminService(ledger, special, msgr, discardLogger())

	svc.AddSpecial(1, 7, "vip")
	svc.RemoveSpecial(1, 7)

	assert.False(t, special.IsSpecial(7))
	balance, _ := ledger.GetBalance(7)
	assert.Equal(t, 5, balance, "balance returns to the normal default")

	msgr.sent = nil
	svc.RemoveSpecial(1, 7)
	require.Len(t, msgr.sent, 1)
	assert.Contains(t, msgr.sent[0], "not found in special users list")
}

func TestBroadcastSkipsBlockedUsers(t *testing.T) {
	ledger, special := newTestLedger(t)
	require.NoError(t, ledger.EnsureUser(10))
	require.NoError(t, ledger.EnsureUser(20))
	require.NoError(t, ledger.EnsureUser(30))
	ok, err := ledger.Block(20, 1, "spam")
	require.NoError(t, err)
	require.True(t, ok)

	msgr := &fakeMessenger{}
	svc := NewAdminService(ledger, special, msgr, discardLogger())

	svc.Broadcast(1, "hello everyone")

	// Two deliveries plus the completion summary; the blocked user counts
	// as failed.
	broadcasts := 0
	for _, m := range msgr.sent {
		if m == "📢 <b>Broadcast Message</b>\n\nhello everyone" {
			broadcasts++
		}
	}
	assert.Equal(t, 2, broadcasts)

	summary := msgr.sent[len(msgr.sent)-1]
	assert.Contains(t, summary, "Broadcast Completed")
	assert.Contains(t, summary, "Successful:</b> 2")
	assert.Contains(t, summary, "Failed:</b> 1")
	assert.Len(t, msgr.deleted, 1, "progress message removed")
}

func TestBlockUnblockFlow(t *testing.T) {
	ledger, special := newTestLedger(t)
	require.NoError(t, ledger.EnsureUser(99))

	msgr := &fakeMessenger{}
	svc := NewAdminService(ledger, special, msgr, discardLogger())

	assert.True(t, svc.KnownUser(99))
	assert.False(t, svc.KnownUser(12345))

	svc.BlockUser(1, 99, 1, "abuse")
	assert.True(t, svc.IsBlocked(99))
	assert.Contains(t, msgr.sent[0], "blocked successfully")
	assert.Contains(t, msgr.sent[1], "Reason: abuse")

	svc.UnblockUser(1, 99)
	assert.False(t, svc.IsBlocked(99))
}

func TestAllUsersMarksSpecial(t *testing.T) {
	ledger, special := newTestLedger(t)
	require.NoError(t, ledger.EnsureUser(10))
	svc := NewAdminService(ledger, special, &fakeMessenger{}, discardLogger())
	svc.AddSpecial(1, 20, "vip")

	msgr := &fakeMessenger{}
	svc = NewAdminService(ledger, special, msgr, discardLogger())
	svc.AllUsers(1)

	require.Len(t, msgr.longs, 1)
	assert.Contains(t, msgr.longs[0], "Total Users:</b> 2")
	assert.Contains(t, msgr.longs[0], "Special Users:</b> 1")
	assert.Contains(t, msgr.longs[0], "🌟")
}
