package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/goaltrace-dev/goaltrace/db"
	"github.com/goaltrace-dev/goaltrace/internal/models"
	"github.com/goaltrace-dev/goaltrace/internal/services"
)

// DueWindow is how far ahead a deadline may lie and still be picked up.
const DueWindow = 5 * 24 * time.Hour

// Dispatcher periodically finds due-soon, unnotified deadlines and pushes one
// notification per affected subscriber, marking each row notified on success.
type Dispatcher struct {
	push     *services.PushClient
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
}

func New(push *services.PushClient, interval time.Duration) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		push:     push,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins the periodic loop. Batches run strictly sequentially; a run
// must finish before the next tick is taken.
func (d *Dispatcher) Start() {
	log.Printf("Starting deadline dispatcher (every %v)", d.interval)

	go func() {
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()

		for {
			select {
			case <-d.ctx.Done():
				return
			case <-ticker.C:
				if _, err := d.Run(d.ctx); err != nil {
					log.Printf("Deadline dispatch run failed: %v", err)
				}
			}
		}
	}()
}

// Stop cancels the periodic loop.
func (d *Dispatcher) Stop() {
	log.Println("Stopping deadline dispatcher")
	d.cancel()
}

// Run executes one batch and returns the number of notifications attempted.
// A failed batch query aborts the whole run; a failed push for one row is
// logged and skipped. Delivery is at-least-once: a crash between the provider
// call and the notified update redelivers on the next run.
func (d *Dispatcher) Run(ctx context.Context) (int, error) {
	soon := time.Now().Add(DueWindow)

	var deadlines []models.Deadline

	err := db.DB.Preload("Node.Trace.User").
		Joins("JOIN nodes ON nodes.id = deadlines.node_id AND nodes.deleted_at IS NULL").
		Joins("JOIN traces ON traces.id = nodes.trace_id AND traces.deleted_at IS NULL").
		Where("deadlines.notified = ? AND deadlines.deadline <= ?", false, soon).
		Find(&deadlines).Error

	if err != nil {
		return 0, fmt.Errorf("failed to query due deadlines: %w", err)
	}

	attempted := 0

	for _, deadline := range deadlines {
		owner := deadline.Node.Trace.User

		// Owners without a registered subscriber are skipped, not failed.
		if owner.OneSignalID == "" {
			continue
		}

		attempted++

		body := fmt.Sprintf("%s is due on %s", deadline.Node.Trace.Title, deadline.Deadline.Format("Jan 2, 2006 3:04 PM"))
		payload := d.push.BuildPayload(owner.OneSignalID, deadline.Node.Heading, body)

		if err := d.push.Send(ctx, payload); err != nil {
			log.Printf("Notification failed for deadline %d: %v", deadline.ID, err)
			d.logAttempt(deadline.ID, owner.ID, "failed", err.Error(), payload)
			continue
		}

		if err := db.DB.Model(&models.Deadline{}).
			Where("id = ?", deadline.ID).
			Update("notified", true).Error; err != nil {
			// The push went out; the row will be retried next run.
			log.Printf("Failed to mark deadline %d notified: %v", deadline.ID, err)
		}

		d.logAttempt(deadline.ID, owner.ID, "sent", "", payload)
	}

	return attempted, nil
}

func (d *Dispatcher) logAttempt(deadlineID, userID uint, status, message string, payload services.PushNotificationRequest) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal push payload for deadline %d: %v", deadlineID, err)
		raw = nil
	}

	entry := models.PushLog{
		DeadlineID: deadlineID,
		UserID:     userID,
		Status:     status,
		Message:    message,
		Payload:    raw,
	}

	if err := db.DB.Create(&entry).Error; err != nil {
		log.Printf("Failed to store push log for deadline %d: %v", deadlineID, err)
	}
}

// Global dispatcher instance
var globalDispatcher *Dispatcher

// Initialize creates and starts the global dispatcher.
func Initialize(push *services.PushClient, interval time.Duration) {
	globalDispatcher = New(push, interval)
	globalDispatcher.Start()
}

// Shutdown stops the global dispatcher.
func Shutdown() {
	if globalDispatcher != nil {
		globalDispatcher.Stop()
	}
}

// RunNow executes one batch on the global dispatcher, for the externally
// triggered job endpoint.
func RunNow(ctx context.Context) (int, error) {
	if globalDispatcher == nil {
		return 0, fmt.Errorf("dispatcher is not initialized")
	}
	return globalDispatcher.Run(ctx)
}
