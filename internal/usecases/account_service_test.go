package usecases

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infobot/internal/repository"
)

type testFixtures struct {
	ledger  *repository.CreditLedger
	special *repository.SpecialUsers
}

func newAccountService(t *testing.T, msgr *fakeMessenger) (*AccountService, *testFixtures) {
	t.Helper()
	ledger, special := newTestLedger(t)
	lookups := NewLookupService(ledger, &fakeFetcher{}, msgr, discardLogger())
	svc := NewAccountService(ledger, special, lookups, msgr, discardLogger(), 1, "pay@upi")
	return svc, &testFixtures{ledger: ledger, special: special}
}

func TestStartGrantsDailyBonusAndShowsMenu(t *testing.T) {
	msgr := &fakeMessenger{}
	svc, fx := newAccountService(t, msgr)

	svc.Start(42, 42, false)

	balance, _ := fx.ledger.GetBalance(42)
	assert.Equal(t, 15, balance, "default 5 plus daily 10 on first start")
	require.Len(t, msgr.sent, 1)
	assert.Contains(t, msgr.sent[0], "InfoBot")
	assert.Contains(t, msgr.sent[0], "Your Credits:</b> <code>15</code>")
}

func TestStartBlockedUser(t *testing.T) {
	msgr := &fakeMessenger{}
	svc, fx := newAccountService(t, msgr)
	require.NoError(t, fx.ledger.EnsureUser(99))
	ok, err := fx.ledger.Block(99, 1, "abuse")
	require.NoError(t, err)
	require.True(t, ok)

	svc.Start(99, 99, false)

	require.Len(t, msgr.sent, 1)
	assert.Contains(t, msgr.sent[0], "blocked")
}

func TestStartSpecialUserPinsBalance(t *testing.T) {
	msgr := &fakeMessenger{}
	svc, fx := newAccountService(t, msgr)
	_, err := fx.special.Add(7, "vip")
	require.NoError(t, err)

	svc.Start(7, 7, false)

	balance, _ := fx.ledger.GetBalance(7)
	assert.Equal(t, 999, balance)
}

func TestMyCredits(t *testing.T) {
	msgr := &fakeMessenger{}
	svc, fx := newAccountService(t, msgr)
	require.NoError(t, fx.ledger.EnsureUser(1))

	svc.MyCredits(1, 1)
	require.Len(t, msgr.sent, 1)
	assert.Equal(t, "💳 Your Credits: <b>5</b>", msgr.sent[0])

	_, err := fx.special.Add(1, "vip")
	require.NoError(t, err)
	svc.MyCredits(1, 1)
	require.Len(t, msgr.sent, 2)
	assert.Contains(t, msgr.sent[1], "special user")
}

func TestDailyCreditsOncePerDay(t *testing.T) {
	msgr := &fakeMessenger{}
	svc, fx := newAccountService(t, msgr)
	require.NoError(t, fx.ledger.EnsureUser(1))

	svc.DailyCredits(1, 1)
	require.Len(t, msgr.sent, 1)
	assert.Contains(t, msgr.sent[0], "10")

	svc.DailyCredits(1, 1)
	require.Len(t, msgr.sent, 2)
	assert.Contains(t, msgr.sent[1], time.Now().Format("2006-01-02"))

	balance, _ := fx.ledger.GetBalance(1)
	assert.Equal(t, 15, balance, "bonus applied once")
}

func TestBuyCreditsSendsPricingAndQR(t *testing.T) {
	msgr := &fakeMessenger{}
	svc, _ := newAccountService(t, msgr)

	svc.BuyCredits(1, 1)

	require.Len(t, msgr.keyboards, 1)
	assert.Contains(t, msgr.keyboards[0], "Credit Packs")
	assert.Contains(t, msgr.keyboards[0], "pay@upi")
	assert.Equal(t, 1, msgr.photos, "UPI QR code attached")
}

func TestPaymentInstructions(t *testing.T) {
	msgr := &fakeMessenger{}
	svc, _ := newAccountService(t, msgr)

	svc.PaymentInstructions(42, 42, "buy_200")
	require.Len(t, msgr.sent, 1)
	assert.Contains(t, msgr.sent[0], "200 Credits for ₹300")
	assert.Contains(t, msgr.sent[0], "<code>42</code>")

	svc.PaymentInstructions(42, 42, "buy_custom")
	require.Len(t, msgr.sent, 2)
	assert.Contains(t, msgr.sent[1], "contact admin directly")
}

func TestMyHistoryEmpty(t *testing.T) {
	msgr := &fakeMessenger{}
	svc, fx := newAccountService(t, msgr)

	svc.MyHistory(1, 1)
	require.Len(t, msgr.sent, 1)

	fx.ledger.RecordHistory(1, "110001", "PINCODE")
	svc.MyHistory(1, 1)
	require.Len(t, msgr.longs, 1)
	assert.Contains(t, msgr.longs[0], "110001")
}

func TestMainMenuAdminRow(t *testing.T) {
	svc, _ := newAccountService(t, &fakeMessenger{})

	user := svc.MainMenu(false)
	admin := svc.MainMenu(true)
	assert.Len(t, admin.Keyboard, len(user.Keyboard)+1, "admin gets one extra row")
	last := admin.Keyboard[len(admin.Keyboard)-1]
	require.Len(t, last, 1)
	assert.Equal(t, "⚙️ Admin Panel", last[0].Text)
}
