package schedule

// ETAUpdate reports an order whose ETA was recomputed.
type ETAUpdate struct {
	ID  int64
	ETA int64
}

// Created is the outcome of Scheduler.Create. Delivered lists the orders
// flushed while processing the creation, in buffer pop order.
type Created struct {
	ID        int64
	ETA       int64
	Updated   []ETAUpdate
	Delivered []Delivery
}

// Canceled is the outcome of Scheduler.Cancel.
type Canceled struct {
	ID      int64
	Updated []ETAUpdate
}

// Rescheduled is the outcome of Scheduler.UpdateDuration. The rescheduled
// order itself is the last entry of Updated.
type Rescheduled struct {
	ID      int64
	ETA     int64
	Updated []ETAUpdate
}
