package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"webstudio/internal/domain"
	"webstudio/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	TaskUpsert       = "upsert"
	TaskUpdateStatus = "update_status"
	TaskReplaceAll   = "replace_all"
)

// orderTaskPayload is persisted in SyncTask.Payload as JSON.
type orderTaskPayload struct {
	OrderID string             `json:"order_id"`
	Order   *models.Order      `json:"order,omitempty"`
	Status  models.OrderStatus `json:"status,omitempty"`
}

// SyncWorker mirrors order changes into the Sheets ledger. Tasks go through
// redis when it is up, so a restart does not lose queued work; without redis
// the in-memory queue carries them for the lifetime of the process.
type SyncWorker struct {
	store         domain.RecordStore
	sheets        domain.SheetsWriter
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan models.SyncTask
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	logger        *zerolog.Logger
	nextID        atomic.Int64
}

// NewSyncWorker builds a worker with sane defaults.
func NewSyncWorker(store domain.RecordStore, sheets domain.SheetsWriter, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *SyncWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 1 * time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &SyncWorker{
		store:         store,
		sheets:        sheets,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan models.SyncTask, models.WorkerQueueSize),
		redisQueueKey: "sheets:queue",
		deadLetterKey: "sheets:deadletter",
		pollInterval:  2 * time.Second,
		logger:        logger,
	}
}

// EnqueueTask schedules one ledger operation via redis or the in-memory queue.
func (w *SyncWorker) EnqueueTask(ctx context.Context, taskType string, order *models.Order, status models.OrderStatus) error {
	if taskType == "" {
		return errors.New("task type is required")
	}

	payload := orderTaskPayload{Status: status}
	if order != nil {
		payload.OrderID = order.ID
		payload.Order = order
	}
	if taskType != TaskReplaceAll && payload.OrderID == "" {
		return errors.New("order id is required")
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	task := models.SyncTask{
		ID:        w.nextID.Add(1),
		TaskType:  taskType,
		OrderID:   payload.OrderID,
		Payload:   string(payloadBytes),
		Status:    "pending",
		CreatedAt: time.Now(),
	}

	// Try redis first for durability.
	if w.redis != nil {
		if err := w.pushRedis(ctx, task); err != nil {
			w.logger.Warn().Err(err).Msg("sync worker: redis push failed, fallback to memory queue")
		} else {
			return nil
		}
	}

	select {
	case w.queue <- task:
	default:
		w.logger.Error().Int64("task_id", task.ID).Msg("sync worker: in-memory queue full, task dropped")
		return errors.New("sync queue is full")
	}

	return nil
}

// Start launches the main loop; stops when ctx is done.
func (w *SyncWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("sync worker started")
	defer w.logger.Info().Msg("sync worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if task, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, &task)
			continue
		}

		if task, ok := w.tryRedis(ctx); ok {
			w.processTask(ctx, &task)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.pollInterval):
		}
	}
}

func (w *SyncWorker) tryLocalQueue() (models.SyncTask, bool) {
	select {
	case task := <-w.queue:
		return task, true
	default:
		return models.SyncTask{}, false
	}
}

func (w *SyncWorker) tryRedis(ctx context.Context) (models.SyncTask, bool) {
	if w.redis == nil {
		return models.SyncTask{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
			return models.SyncTask{}, false
		}
		w.logger.Error().Err(err).Msg("sync worker: redis BRPOP error")
		return models.SyncTask{}, false
	}
	if len(res) != 2 {
		return models.SyncTask{}, false
	}
	var task models.SyncTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Error().Err(err).Msg("sync worker: decode redis task")
		return models.SyncTask{}, false
	}
	return task, true
}

func (w *SyncWorker) processTask(ctx context.Context, task *models.SyncTask) {
	payload, err := w.decodePayload(task.Payload)
	if err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("sync worker: decode payload")
		w.pushDeadLetter(ctx, task)
		return
	}

	if err := w.handleTask(ctx, task.TaskType, payload); err != nil {
		w.retryOrFail(ctx, task, err)
		return
	}

	w.logger.Debug().Int64("task_id", task.ID).Str("type", task.TaskType).Msg("sync task completed")
}

func (w *SyncWorker) handleTask(ctx context.Context, taskType string, payload orderTaskPayload) error {
	switch taskType {
	case TaskUpsert:
		if payload.Order == nil {
			return errors.New("order payload missing")
		}
		return w.sheets.AppendOrder(ctx, *payload.Order)
	case TaskUpdateStatus:
		if payload.OrderID == "" || payload.Status == "" {
			return errors.New("order id or status missing")
		}
		return w.sheets.UpdateOrderStatus(ctx, payload.OrderID, payload.Status)
	case TaskReplaceAll:
		orders, err := w.store.LoadOrders()
		if err != nil {
			return err
		}
		return w.sheets.ReplaceOrdersSheet(ctx, orders)
	default:
		return fmt.Errorf("unknown task type: %s", taskType)
	}
}

func (w *SyncWorker) retryOrFail(ctx context.Context, task *models.SyncTask, cause error) {
	attempt := task.RetryCount + 1
	if attempt >= w.retryPolicy.MaxRetries {
		w.logger.Error().Err(cause).Int64("task_id", task.ID).Int("attempts", attempt).Msg("sync task failed permanently")
		w.pushDeadLetter(ctx, task)
		return
	}

	delay := w.retryPolicy.NextDelay(attempt)
	w.logger.Warn().Err(cause).Int64("task_id", task.ID).Dur("retry_in", delay).Msg("sync task failed, scheduling retry")

	retried := *task
	retried.RetryCount = attempt
	msg := cause.Error()
	retried.LastError = &msg
	next := time.Now().Add(delay)
	retried.NextRetryAt = &next

	time.AfterFunc(delay, func() {
		select {
		case w.queue <- retried:
		default:
			w.logger.Error().Int64("task_id", retried.ID).Msg("sync worker: retry queue full, task dropped")
		}
	})
}

func (w *SyncWorker) decodePayload(raw string) (orderTaskPayload, error) {
	var payload orderTaskPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return payload, err
	}
	return payload, nil
}

func (w *SyncWorker) pushRedis(ctx context.Context, task models.SyncTask) error {
	if w.redis == nil {
		return errors.New("redis client is nil")
	}
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, w.redisQueueKey, data).Err()
}

func (w *SyncWorker) pushDeadLetter(ctx context.Context, task *models.SyncTask) {
	if w.redis == nil {
		return
	}
	data, err := json.Marshal(task)
	if err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("sync worker: encode deadletter")
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("sync worker: deadletter push")
	}
}
