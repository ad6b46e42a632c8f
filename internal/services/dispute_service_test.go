package services

import (
	"errors"
	"testing"

	"boost-service/internal/models"
)

func inProgressOrder(t *testing.T, orders *OrderService) (*models.Order, *models.User, *models.User) {
	t.Helper()
	client := createUser(t, models.RoleClient)
	booster := createUser(t, models.RoleBooster)
	order := createOrder(t, client, models.OrderPaid, 100.00)
	if _, err := orders.AcceptOrder(order.ID, booster); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	testDB.First(order, order.ID)
	return order, client, booster
}

func TestOpenDispute(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	pix := &fakePix{}
	orders, _, notifications := newOrderStack(pix)
	svc := NewDisputeService(testDB, notifications)

	order, client, booster := inProgressOrder(t, orders)

	dispute, err := svc.OpenDispute(order.ID, client, "booster stopped responding")
	if err != nil {
		t.Fatalf("OpenDispute failed: %v", err)
	}
	if dispute.Status != models.DisputeOpen {
		t.Errorf("Expected OPEN, got %s", dispute.Status)
	}

	var reloaded models.Order
	testDB.First(&reloaded, order.ID)
	if reloaded.Status != models.OrderDisputed {
		t.Errorf("Expected order DISPUTED, got %s", reloaded.Status)
	}

	// The booster gets notified, the creator does not.
	var count int64
	testDB.Model(&models.Notification{}).Where("user_id = ? AND title = ?", booster.ID, "Disputa aberta").Count(&count)
	if count != 1 {
		t.Errorf("Expected booster notification, got %d", count)
	}

	// One dispute per order.
	if _, err := svc.OpenDispute(order.ID, booster, "counter claim"); !errors.Is(err, ErrInvalidTransition) && !errors.Is(err, ErrDuplicateDispute) {
		t.Errorf("Expected duplicate rejection, got %v", err)
	}
}

func TestOpenDisputeByAssignedBooster(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	pix := &fakePix{}
	orders, _, notifications := newOrderStack(pix)
	svc := NewDisputeService(testDB, notifications)

	order, client, booster := inProgressOrder(t, orders)

	dispute, err := svc.OpenDispute(order.ID, booster, "client is unresponsive")
	if err != nil {
		t.Fatalf("booster OpenDispute failed: %v", err)
	}
	if dispute.Status != models.DisputeOpen || dispute.CreatorID != booster.ID {
		t.Errorf("Expected OPEN dispute by booster, got %+v", dispute)
	}

	var reloaded models.Order
	testDB.First(&reloaded, order.ID)
	if reloaded.Status != models.OrderDisputed {
		t.Errorf("Expected order DISPUTED, got %s", reloaded.Status)
	}

	// The client is the notified party this time.
	var count int64
	testDB.Model(&models.Notification{}).Where("user_id = ? AND title = ?", client.ID, "Disputa aberta").Count(&count)
	if count != 1 {
		t.Errorf("Expected client notification, got %d", count)
	}
}

func TestOpenDisputeAccessAndState(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	pix := &fakePix{}
	orders, _, notifications := newOrderStack(pix)
	svc := NewDisputeService(testDB, notifications)

	order, _, _ := inProgressOrder(t, orders)

	stranger := createUser(t, models.RoleClient)
	if _, err := svc.OpenDispute(order.ID, stranger, "not my order"); !errors.Is(err, ErrForbidden) {
		t.Errorf("Expected ErrForbidden for stranger, got %v", err)
	}

	client := createUser(t, models.RoleClient)
	pending := createOrder(t, client, models.OrderPending, 50.00)
	if _, err := svc.OpenDispute(pending.ID, client, "too early"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition for pending order, got %v", err)
	}
}

func TestDisputeMessagesAndResolve(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	pix := &fakePix{}
	orders, _, notifications := newOrderStack(pix)
	svc := NewDisputeService(testDB, notifications)
	admin := createUser(t, models.RoleAdmin)

	order, client, booster := inProgressOrder(t, orders)
	dispute, err := svc.OpenDispute(order.ID, client, "boost not delivered")
	if err != nil {
		t.Fatalf("OpenDispute failed: %v", err)
	}

	if _, err := svc.AddMessage(dispute.ID, booster, "I am at level 14 of 15"); err != nil {
		t.Fatalf("AddMessage failed: %v", err)
	}
	if _, err := svc.AddMessage(dispute.ID, admin, "reviewing the logs"); err != nil {
		t.Fatalf("admin AddMessage failed: %v", err)
	}

	// Only admins resolve.
	if _, err := svc.Resolve(dispute.ID, client, models.DisputeResolvedRefund, ""); !errors.Is(err, ErrForbidden) {
		t.Errorf("Expected ErrForbidden for client, got %v", err)
	}

	var valErr *ValidationError
	if _, err := svc.Resolve(dispute.ID, admin, "MAYBE", ""); !errors.As(err, &valErr) {
		t.Errorf("Expected validation error for bad status, got %v", err)
	}

	resolved, err := svc.Resolve(dispute.ID, admin, models.DisputeResolvedPartial, "half refund agreed")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved.Status != models.DisputeResolvedPartial || resolved.ResolvedAt == nil {
		t.Errorf("Expected resolved dispute, got %+v", resolved)
	}

	// Resolution freezes the thread and is itself final.
	if _, err := svc.AddMessage(dispute.ID, booster, "too late"); !errors.Is(err, ErrDisputeResolved) {
		t.Errorf("Expected ErrDisputeResolved for post-resolution message, got %v", err)
	}
	if _, err := svc.Resolve(dispute.ID, admin, models.DisputeResolvedRefund, ""); !errors.Is(err, ErrDisputeResolved) {
		t.Errorf("Expected ErrDisputeResolved for double resolve, got %v", err)
	}
}
