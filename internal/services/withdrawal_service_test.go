package services

import (
	"errors"
	"math"
	"testing"

	"boost-service/internal/models"
)

func TestWithdrawableBalance(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	pix := &fakePix{}
	svc := NewWithdrawalService(testDB, nil, pix, 20.00)

	booster := createUser(t, models.RoleBooster)

	// Only PAID rows count; PENDING commission is not yet withdrawable.
	testDB.Create(&models.BoosterCommission{OrderID: 1, BoosterID: booster.ID, OrderTotal: 100, Percentage: 0.7, Amount: 70, Status: models.RevenuePaid})
	testDB.Create(&models.BoosterCommission{OrderID: 2, BoosterID: booster.ID, OrderTotal: 100, Percentage: 0.7, Amount: 70, Status: models.RevenuePending})

	balance, err := svc.WithdrawableBalance(booster)
	if err != nil {
		t.Fatalf("WithdrawableBalance failed: %v", err)
	}
	if math.Abs(balance-70.00) > 0.01 {
		t.Errorf("Expected balance 70.00, got %.2f", balance)
	}

	// Completed withdrawals stay subtracted; rejected ones release funds.
	testDB.Create(&models.Withdrawal{UserID: booster.ID, Amount: 30, PixKey: "k", PixKeyType: "email", Status: models.WithdrawalCompleted})
	testDB.Create(&models.Withdrawal{UserID: booster.ID, Amount: 10, PixKey: "k", PixKeyType: "email", Status: models.WithdrawalRejected})

	balance, err = svc.WithdrawableBalance(booster)
	if err != nil {
		t.Fatalf("WithdrawableBalance failed: %v", err)
	}
	if math.Abs(balance-40.00) > 0.01 {
		t.Errorf("Expected balance 40.00, got %.2f", balance)
	}

	// Clients have no earnings side at all.
	client := createUser(t, models.RoleClient)
	balance, err = svc.WithdrawableBalance(client)
	if err != nil || balance != 0 {
		t.Errorf("Expected zero client balance, got %.2f (%v)", balance, err)
	}
}

func TestWithdrawableBalanceAdmin(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	pix := &fakePix{}
	svc := NewWithdrawalService(testDB, nil, pix, 20.00)

	admin := createUser(t, models.RoleAdmin)
	testDB.Create(&models.AdminRevenue{OrderID: 1, AdminID: admin.ID, OrderTotal: 100, Percentage: 0.3, Amount: 30, Status: models.RevenuePaid})
	testDB.Create(&models.AdminRevenue{OrderID: 2, AdminID: admin.ID, OrderTotal: 200, Percentage: 0.3, Amount: 60, Status: models.RevenuePaid})

	balance, err := svc.WithdrawableBalance(admin)
	if err != nil {
		t.Fatalf("WithdrawableBalance failed: %v", err)
	}
	if math.Abs(balance-90.00) > 0.01 {
		t.Errorf("Expected balance 90.00, got %.2f", balance)
	}
}

func TestRequestWithdrawal(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	pix := &fakePix{}
	svc := NewWithdrawalService(testDB, nil, pix, 20.00)

	booster := createUser(t, models.RoleBooster)
	testDB.Create(&models.BoosterCommission{OrderID: 1, BoosterID: booster.ID, OrderTotal: 200, Percentage: 0.5, Amount: 100, Status: models.RevenuePaid})

	req := WithdrawRequestDTO{Amount: 50.00, PixKey: "booster@test.local", PixKeyType: "email"}

	withdrawal, err := svc.RequestWithdrawal(booster, req)
	if err != nil {
		t.Fatalf("RequestWithdrawal failed: %v", err)
	}
	if withdrawal.Status != models.WithdrawalPending {
		t.Errorf("Expected PENDING, got %s", withdrawal.Status)
	}

	// One outstanding request at a time.
	if _, err := svc.RequestWithdrawal(booster, req); !errors.Is(err, ErrWithdrawalOpen) {
		t.Errorf("Expected ErrWithdrawalOpen, got %v", err)
	}
}

func TestRequestWithdrawalValidation(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	pix := &fakePix{}
	svc := NewWithdrawalService(testDB, nil, pix, 20.00)

	booster := createUser(t, models.RoleBooster)
	testDB.Create(&models.BoosterCommission{OrderID: 1, BoosterID: booster.ID, OrderTotal: 100, Percentage: 0.5, Amount: 50, Status: models.RevenuePaid})

	// Below the configured minimum.
	if _, err := svc.RequestWithdrawal(booster, WithdrawRequestDTO{Amount: 5, PixKey: "k", PixKeyType: "email"}); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("Expected ErrInsufficientFunds for tiny amount, got %v", err)
	}

	// More than the realized balance.
	if _, err := svc.RequestWithdrawal(booster, WithdrawRequestDTO{Amount: 500, PixKey: "k", PixKeyType: "email"}); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("Expected ErrInsufficientFunds for overdraw, got %v", err)
	}

	// Missing pix key.
	if _, err := svc.RequestWithdrawal(booster, WithdrawRequestDTO{Amount: 30}); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("Expected rejection without pix key, got %v", err)
	}
}

func TestSubmitPayout(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	pix := &fakePix{}
	svc := NewWithdrawalService(testDB, nil, pix, 20.00)

	booster := createUser(t, models.RoleBooster)
	withdrawal := models.Withdrawal{
		UserID: booster.ID, Amount: 50, PixKey: "k", PixKeyType: "email",
		Status: models.WithdrawalPending,
	}
	testDB.Create(&withdrawal)

	if err := svc.SubmitPayout(withdrawal.ID); err != nil {
		t.Fatalf("SubmitPayout failed: %v", err)
	}

	var reloaded models.Withdrawal
	testDB.First(&reloaded, withdrawal.ID)
	if reloaded.Status != models.WithdrawalProcessing {
		t.Errorf("Expected PROCESSING, got %s", reloaded.Status)
	}
	if reloaded.ProviderRef == "" {
		t.Error("Expected provider_ref from the payout receipt")
	}

	// A replayed task is a no-op.
	if err := svc.SubmitPayout(withdrawal.ID); err != nil {
		t.Errorf("Replay should be a no-op, got %v", err)
	}
	if len(pix.payouts) != 1 {
		t.Errorf("Expected 1 payout call, got %d", len(pix.payouts))
	}
}

func TestSubmitPayoutProviderFailure(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	pix := &fakePix{payoutErr: errors.New("provider down")}
	svc := NewWithdrawalService(testDB, nil, pix, 20.00)

	booster := createUser(t, models.RoleBooster)
	withdrawal := models.Withdrawal{
		UserID: booster.ID, Amount: 50, PixKey: "k", PixKeyType: "email",
		Status: models.WithdrawalPending,
	}
	testDB.Create(&withdrawal)

	if err := svc.SubmitPayout(withdrawal.ID); err != nil {
		t.Fatalf("SubmitPayout returned error: %v", err)
	}

	var reloaded models.Withdrawal
	testDB.First(&reloaded, withdrawal.ID)
	if reloaded.Status != models.WithdrawalFailed {
		t.Errorf("Expected FAILED, got %s", reloaded.Status)
	}

	// Failed withdrawals release their funds for a retry.
	testDB.Create(&models.BoosterCommission{OrderID: 7, BoosterID: booster.ID, OrderTotal: 100, Percentage: 0.5, Amount: 50, Status: models.RevenuePaid})
	balance, err := svc.WithdrawableBalance(booster)
	if err != nil {
		t.Fatalf("WithdrawableBalance failed: %v", err)
	}
	if math.Abs(balance-50.00) > 0.01 {
		t.Errorf("Expected balance 50.00 after failed payout, got %.2f", balance)
	}
}
