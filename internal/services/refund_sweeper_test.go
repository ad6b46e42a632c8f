package services

import (
	"errors"
	"testing"
	"time"

	"boost-service/internal/models"
)

func makeStale(t *testing.T, orderID uint, hours int) {
	t.Helper()
	stale := time.Now().Add(-time.Duration(hours) * time.Hour)
	// UpdateColumn bypasses the autoUpdateTime hook.
	if err := testDB.Model(&models.Order{}).Where("id = ?", orderID).
		UpdateColumn("updated_at", stale).Error; err != nil {
		t.Fatalf("backdate order: %v", err)
	}
}

func TestSweeperRefundsStaleOrders(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	pix := &fakePix{}
	notifications := NewNotificationService(testDB, nil)
	sweeper := NewRefundSweeper(testDB, pix, notifications, 24)

	client := createUser(t, models.RoleClient)
	order := createOrder(t, client, models.OrderPaid, 100.00)
	payment := createPaidPayment(t, order.ID, "qr-stale", 100.00)
	makeStale(t, order.ID, 25)

	// A fresh paid order must survive the sweep.
	fresh := createOrder(t, client, models.OrderPaid, 50.00)
	createPaidPayment(t, fresh.ID, "qr-fresh", 50.00)

	result := sweeper.Run()
	if len(result.Refunded) != 1 || result.Refunded[0] != order.ID {
		t.Fatalf("Expected order %d refunded, got %+v", order.ID, result)
	}

	var reloaded models.Order
	testDB.First(&reloaded, order.ID)
	if reloaded.Status != models.OrderCancelled {
		t.Errorf("Expected CANCELLED, got %s", reloaded.Status)
	}
	if reloaded.CancelReason != "AUTO_TIMEOUT" || reloaded.CancelledBy != models.CancelledBySystem {
		t.Errorf("Expected AUTO_TIMEOUT audit, got %q by %q", reloaded.CancelReason, reloaded.CancelledBy)
	}
	if !reloaded.RefundProcessed {
		t.Error("Expected refund_processed")
	}

	var reloadedPayment models.Payment
	testDB.First(&reloadedPayment, payment.ID)
	if reloadedPayment.Status != models.PaymentRefunded {
		t.Errorf("Expected payment REFUNDED, got %s", reloadedPayment.Status)
	}

	var untouched models.Order
	testDB.First(&untouched, fresh.ID)
	if untouched.Status != models.OrderPaid {
		t.Errorf("Fresh order swept: %s", untouched.Status)
	}
}

func TestSweeperSkipsAssignedOrders(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	pix := &fakePix{}
	notifications := NewNotificationService(testDB, nil)
	sweeper := NewRefundSweeper(testDB, pix, notifications, 24)

	client := createUser(t, models.RoleClient)
	booster := createUser(t, models.RoleBooster)

	order := createOrder(t, client, models.OrderPaid, 100.00)
	testDB.Model(&models.Order{}).Where("id = ?", order.ID).Update("booster_id", booster.ID)
	makeStale(t, order.ID, 48)

	result := sweeper.Run()
	if len(result.Refunded) != 0 || len(result.Failed) != 0 {
		t.Errorf("Expected empty sweep, got %+v", result)
	}
	if pix.refundCount() != 0 {
		t.Errorf("Expected no refund calls, got %d", pix.refundCount())
	}
}

func TestSweeperRefundFailureKeepsOrder(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	pix := &fakePix{refundErr: errors.New("provider down")}
	notifications := NewNotificationService(testDB, nil)
	sweeper := NewRefundSweeper(testDB, pix, notifications, 24)

	client := createUser(t, models.RoleClient)
	order := createOrder(t, client, models.OrderPaid, 100.00)
	createPaidPayment(t, order.ID, "qr-stuck", 100.00)
	makeStale(t, order.ID, 30)

	result := sweeper.Run()
	if len(result.Failed) != 1 || result.Failed[0] != order.ID {
		t.Fatalf("Expected order %d in failed set, got %+v", order.ID, result)
	}

	// Left PAID for the next sweep to retry.
	var reloaded models.Order
	testDB.First(&reloaded, order.ID)
	if reloaded.Status != models.OrderPaid {
		t.Errorf("Expected order to remain PAID, got %s", reloaded.Status)
	}
}

func TestSweeperDisabled(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	pix := &fakePix{}
	notifications := NewNotificationService(testDB, nil)
	sweeper := NewRefundSweeper(testDB, pix, notifications, 0)

	client := createUser(t, models.RoleClient)
	order := createOrder(t, client, models.OrderPaid, 100.00)
	createPaidPayment(t, order.ID, "qr-off", 100.00)
	makeStale(t, order.ID, 100)

	result := sweeper.Run()
	if len(result.Refunded) != 0 || len(result.Failed) != 0 {
		t.Errorf("Disabled sweeper still ran: %+v", result)
	}
	if sweeper.StartScheduler() != nil {
		t.Error("Disabled sweeper should not schedule")
	}
}
