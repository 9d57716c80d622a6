package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/Lazermagma/ZoraFramerSupabase/internal/services"
	"github.com/Lazermagma/ZoraFramerSupabase/internal/utils"
)

// Task types.
const (
	// TypeAlertsScan matches a freshly approved listing against saved
	// searches and records an alert per hit.
	TypeAlertsScan = "alerts:scan"
)

// --- Task Client (Enqueuing tasks) ---

func NewClient(rdb *redis.Client) *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	})
}

// AlertsScanPayload identifies the listing to scan for.
type AlertsScanPayload struct {
	ListingID string `json:"listing_id"`
}

// NewAlertsScanTask builds the scan task for a newly approved listing.
func NewAlertsScanTask(listingID utils.SixID) (*asynq.Task, error) {
	payload, err := json.Marshal(AlertsScanPayload{ListingID: listingID.String()})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal alerts scan payload: %w", err)
	}
	return asynq.NewTask(TypeAlertsScan, payload, asynq.Queue("default")), nil
}

// --- Task Server (Processing tasks) ---

// TaskProcessor holds the dependencies task handlers need.
type TaskProcessor struct {
	listingService     services.IListingService
	savedSearchService services.ISavedSearchService
}

func NewTaskProcessor(
	listingService services.IListingService,
	savedSearchService services.ISavedSearchService,
) *TaskProcessor {
	return &TaskProcessor{
		listingService:     listingService,
		savedSearchService: savedSearchService,
	}
}

// SetupServer configures an Asynq server instance with its handlers
// registered. The caller runs it and owns its shutdown.
func SetupServer(rdb *redis.Client, processor *TaskProcessor) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     rdb.Options().Addr,
			Password: rdb.Options().Password,
			DB:       rdb.Options().DB,
		},
		asynq.Config{
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq Error] Task Type: %s, Payload: %s, Error: %v", task.Type(), string(task.Payload()), err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeAlertsScan, processor.HandleAlertsScanTask)

	return srv, mux
}

// --- Task Handlers ---

// HandleAlertsScanTask fans a newly approved listing out to every matching
// saved search. Alert rows are deduplicated at the store, so a retried scan
// never double-notifies.
func (p *TaskProcessor) HandleAlertsScanTask(ctx context.Context, t *asynq.Task) error {
	var payload AlertsScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal alerts scan payload: %v: %w", err, asynq.SkipRetry)
	}

	listingID, err := utils.ParseSixID(payload.ListingID)
	if err != nil {
		log.Printf("Invalid ListingID in alerts scan payload: %s", payload.ListingID)
		return fmt.Errorf("invalid listing ID in payload: %w", asynq.SkipRetry)
	}

	listing, err := p.listingService.FindByID(ctx, listingID)
	if err != nil {
		// Deleted between approval and scan: nothing to alert on.
		return fmt.Errorf("listing %s not found for alerts scan: %w", payload.ListingID, asynq.SkipRetry)
	}

	searches, err := p.savedSearchService.FindMatching(ctx, listing)
	if err != nil {
		return fmt.Errorf("failed to find matching searches for listing %s: %w", payload.ListingID, err)
	}

	created := 0
	for i := range searches {
		if err := p.savedSearchService.CreateAlert(ctx, &searches[i], listingID); err != nil {
			log.Printf("ERROR creating alert for search %s, listing %s: %v", searches[i].ID.String(), payload.ListingID, err)
			return err
		}
		created++
	}
	log.Printf("Alerts scan for listing %s finished: %d alerts created.", payload.ListingID, created)
	return nil
}
