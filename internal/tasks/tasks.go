package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"skenterprise/billing/internal/config"
	"skenterprise/billing/internal/document"
	"skenterprise/billing/internal/export"
	"skenterprise/billing/internal/models"
)

// Task types handled by the background worker.
const (
	TypeInvoiceExport = "invoice:export:pdf"
)

// --- Task Client (Enqueuing tasks) ---

func NewClient(rdb *redis.Client) *asynq.Client {
	clientOpt := asynq.RedisClientOpt{
		Addr: rdb.Options().Addr,
	}
	return asynq.NewClient(clientOpt)
}

// InvoiceExportPayload carries a full snapshot of the invoice at enqueue
// time. Exporting from the snapshot rather than an ID means edits made
// after the request do not change what the produced PDF shows.
type InvoiceExportPayload struct {
	Invoice models.Invoice `json:"invoice"`
}

// NewInvoiceExportTask builds the task for exporting one invoice to PDF.
func NewInvoiceExportTask(inv *models.Invoice) (*asynq.Task, error) {
	payload, err := json.Marshal(InvoiceExportPayload{Invoice: *inv})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal invoice export payload: %w", err)
	}
	return asynq.NewTask(TypeInvoiceExport, payload), nil
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	cfg      *config.Config
	exporter export.IExporter
}

func NewTaskProcessor(cfg *config.Config, exporter export.IExporter) *TaskProcessor {
	return &TaskProcessor{
		cfg:      cfg,
		exporter: exporter,
	}
}

// SetupServer configures an Asynq server instance and the mux to run it
// with. Only the bg run mode calls this; the API side only enqueues.
func SetupServer(rdb *redis.Client, processor *TaskProcessor) (*asynq.Server, *asynq.ServeMux) {
	serverOpt := asynq.RedisClientOpt{
		Addr: rdb.Options().Addr,
	}

	srv := asynq.NewServer(
		serverOpt,
		asynq.Config{
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				fmt.Printf("[Asynq Error] Task Type: %s, Payload: %s, Error: %v\n", task.Type(), string(task.Payload()), err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeInvoiceExport, processor.HandleInvoiceExportTask)
	fmt.Println("Registered background task handlers (invoice export).")

	return srv, mux
}

// --- Task Handlers ---

// HandleInvoiceExportTask assembles the document from the snapshot in the
// payload and hands it to the configured export target. Malformed payloads
// and documents that cannot be assembled are not retried; a failing export
// target is, per the server's retry policy.
func (p *TaskProcessor) HandleInvoiceExportTask(ctx context.Context, t *asynq.Task) error {
	var payload InvoiceExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal invoice export payload: %v: %w", err, asynq.SkipRetry)
	}

	log.Printf("Processing invoice export task: InvoiceNumber=%s", payload.Invoice.InvoiceNumber)

	doc, err := document.Build(&payload.Invoice, p.cfg)
	if err != nil {
		log.Printf("Error assembling document for invoice %s: %v", payload.Invoice.InvoiceNumber, err)
		return fmt.Errorf("failed to assemble invoice document: %v: %w", err, asynq.SkipRetry)
	}

	result, err := p.exporter.Export(ctx, doc)
	if err != nil {
		log.Printf("Export failed for invoice %s (will retry): %v", payload.Invoice.InvoiceNumber, err)
		return err
	}

	log.Printf("Invoice export task processed successfully: InvoiceNumber=%s, Key=%s", payload.Invoice.InvoiceNumber, result.Key)
	return nil
}
