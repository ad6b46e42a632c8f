package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Orders created, by game and mode",
		},
		[]string{"game", "game_mode"},
	)

	OrdersCompletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_completed_total",
			Help: "Orders completed by booster or admin",
		},
	)

	OrdersCancelledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_cancelled_total",
			Help: "Orders cancelled, by initiator",
		},
		[]string{"initiator"},
	)

	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Provider webhook events received, by type and outcome",
		},
		[]string{"event", "outcome"},
	)

	SweeperRefundsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sweeper_refunds_total",
			Help: "Auto-refund sweeper outcomes",
		},
		[]string{"outcome"},
	)

	// UndistributedPoolTotal flags orders whose admin pool had no active admin
	// to receive it. Money earmarked but never assigned; alert on any increase.
	UndistributedPoolTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "revenue_pool_undistributed_total",
			Help: "Orders whose admin revenue pool was not distributed",
		},
	)

	UndistributedPoolAmount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "revenue_pool_undistributed_amount",
			Help: "Sum of admin pool amounts left undistributed",
		},
	)
)
