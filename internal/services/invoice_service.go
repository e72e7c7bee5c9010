package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"skenterprise/billing/internal/config"
	"skenterprise/billing/internal/db"
	"skenterprise/billing/internal/models"
	"skenterprise/billing/internal/utils"
)

// ErrSequenceRegressed means the store reported fewer invoices than a
// previous call in the same session. The sequencer derives numbers purely
// from that count, so a shrinking count is a logic error, not something a
// user can recover from.
var ErrSequenceRegressed = errors.New("invoice count regressed within session")

// ErrEmptyCustomerName rejects drafts without a billed party.
var ErrEmptyCustomerName = errors.New("invoice customer name is required")

// IInvoiceService is the invoice store collaborator: the ordered invoice
// list, finalization of drafts, and the count-derived number sequencer.
type IInvoiceService interface {
	CreateInvoice(ctx context.Context, draft models.InvoiceDraft) (*models.Invoice, error)
	ListInvoices(ctx context.Context, query string) ([]models.Invoice, error)
	FindInvoiceByID(ctx context.Context, id utils.SixID) (*models.Invoice, error)
	SetInvoiceStatus(ctx context.Context, id utils.SixID, status models.InvoiceStatus) error
	NextInvoiceNumber(ctx context.Context) (string, error)
	DashboardStats(ctx context.Context) (*DashboardStats, error)
}

// DashboardStats are the aggregates shown on the dashboard screen.
type DashboardStats struct {
	TotalRevenue  float64 `json:"totalRevenue"`
	InvoiceCount  int64   `json:"invoiceCount"`
	PendingCount  int64   `json:"pendingCount"`
	CustomerCount int64   `json:"customerCount"`
}

const invoicesCollection = "invoices"

// invoiceService implements IInvoiceService.
type invoiceService struct {
	db         *mongo.Database
	cfg        *config.Config
	calculator ITaxCalculator
	guard      sequenceGuard
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(database *mongo.Database, cfg *config.Config, calculator ITaxCalculator) IInvoiceService {
	return &invoiceService{
		db:         database,
		cfg:        cfg,
		calculator: calculator,
	}
}

// sequenceGuard tracks the highest invoice count seen this session so a
// regressing count from the store is caught instead of silently reissuing
// an earlier number.
type sequenceGuard struct {
	mu   sync.Mutex
	last int64
}

func (g *sequenceGuard) observe(count int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if count < g.last {
		return fmt.Errorf("count %d after %d: %w", count, g.last, ErrSequenceRegressed)
	}
	g.last = count
	return nil
}

// applyDefaultTaxSplit fills the configured CGST/SGST split into draft lines
// that leave both tax percents unset. A line that sets either percent keeps
// its split unchanged.
func (s *invoiceService) applyDefaultTaxSplit(items []models.InvoiceLine) {
	for i := range items {
		if items[i].CgstPercent == 0 && items[i].SgstPercent == 0 {
			items[i].CgstPercent = s.cfg.DefaultCgstPercent
			items[i].SgstPercent = s.cfg.DefaultSgstPercent
		}
	}
}

// FormatInvoiceNumber renders INV-<year>-<seq> with the sequence zero-padded
// to at least padding digits.
func FormatInvoiceNumber(year int, seq int64, padding int) string {
	return fmt.Sprintf("INV-%d-%0*d", year, padding, seq)
}

// NextInvoiceNumber previews the number the next created invoice will get.
// It is derived from the current invoice count, so repeated calls without an
// intervening create return the same value.
//
// Known limitation: the sequence does not reset when the year rolls over;
// only the year segment changes. Renumbering from 001 each January would
// require a year-scoped count, which would silently renumber existing
// installations, so the count-derived scheme is kept as is.
func (s *invoiceService) NextInvoiceNumber(ctx context.Context) (string, error) {
	count, err := s.db.Collection(invoicesCollection).CountDocuments(ctx, bson.M{})
	if err != nil {
		return "", fmt.Errorf("failed to count invoices: %w", err)
	}
	if err := s.guard.observe(count); err != nil {
		return "", err
	}
	return FormatInvoiceNumber(time.Now().UTC().Year(), count+1, s.cfg.InvoiceSeqPadding), nil
}

// CreateInvoice finalizes a draft: validates it, recomputes every derived
// field (client-supplied amounts are never trusted), assigns the next
// invoice number, stamps timestamps and persists. The stored invoice is
// immutable afterwards except for its payment status.
func (s *invoiceService) CreateInvoice(ctx context.Context, draft models.InvoiceDraft) (*models.Invoice, error) {
	if draft.CustomerName == "" {
		return nil, ErrEmptyCustomerName
	}

	status := draft.Status
	if status == "" {
		status = models.StatusPending
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidStatus, status)
	}

	date := draft.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	inv := &models.Invoice{
		Date:         date,
		CustomerID:   draft.CustomerID,
		CustomerName: draft.CustomerName,
		GSTIN:        draft.GSTIN,
		Address:      draft.Address,
		PO:           draft.PO,
		Items:        append([]models.InvoiceLine(nil), draft.Items...),
		Status:       status,
	}
	for i := range inv.Items {
		if inv.Items[i].ID.IsZero() {
			inv.Items[i].ID = utils.NewSixID()
		}
	}
	s.applyDefaultTaxSplit(inv.Items)

	if err := s.calculator.Recompute(inv); err != nil {
		return nil, err
	}

	collection := s.db.Collection(invoicesCollection)

	// The invoice number is re-derived on every attempt: if a concurrent
	// create takes the number first, the unique index rejects the insert and
	// the retry reads the new count.
	operation := func() error {
		number, err := s.NextInvoiceNumber(ctx)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		inv.ID = utils.NewSixID()
		inv.InvoiceNumber = number
		inv.CreatedAt = now
		inv.UpdatedAt = now
		_, insertErr := collection.InsertOne(ctx, inv)
		return insertErr
	}

	if err := db.Try(operation); err != nil {
		return nil, fmt.Errorf("failed to insert invoice for %s after retries: %w", draft.CustomerName, err)
	}

	log.Printf("Created invoice %s for %s (grand total %.0f)", inv.InvoiceNumber, inv.CustomerName, inv.GrandTotal)
	return inv, nil
}

// ListInvoices returns invoices most-recent-first. A non-empty query
// filters case-insensitively on customer name or invoice number, matching
// the sales register search.
func (s *invoiceService) ListInvoices(ctx context.Context, query string) ([]models.Invoice, error) {
	filter := bson.M{}
	if query != "" {
		pattern := regexp.QuoteMeta(query)
		filter = bson.M{"$or": []bson.M{
			{"customer_name": bson.M{"$regex": pattern, "$options": "i"}},
			{"invoice_number": bson.M{"$regex": pattern, "$options": "i"}},
		}}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.db.Collection(invoicesCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer cursor.Close(ctx)

	invoices := []models.Invoice{}
	if err = cursor.All(ctx, &invoices); err != nil {
		return nil, fmt.Errorf("failed to decode invoices: %w", err)
	}
	return invoices, nil
}

// FindInvoiceByID finds a single invoice.
func (s *invoiceService) FindInvoiceByID(ctx context.Context, id utils.SixID) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.Collection(invoicesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&inv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding invoice %s: %w", id.String(), err)
	}
	return &inv, nil
}

// SetInvoiceStatus flips an invoice between paid and pending. This is the
// only mutation allowed after finalization.
func (s *invoiceService) SetInvoiceStatus(ctx context.Context, id utils.SixID, status models.InvoiceStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidStatus, status)
	}

	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}}
	result, err := s.db.Collection(invoicesCollection).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("db error updating invoice %s status: %w", id.String(), err)
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DashboardStats aggregates revenue and counts for the dashboard screen.
func (s *invoiceService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}

	collection := s.db.Collection(invoicesCollection)
	pipeline := []bson.M{
		{"$group": bson.M{
			"_id":     nil,
			"revenue": bson.M{"$sum": "$grand_total"},
			"count":   bson.M{"$sum": 1},
		}},
	}
	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate invoice stats: %w", err)
	}
	defer cursor.Close(ctx)

	var agg []struct {
		Revenue float64 `bson:"revenue"`
		Count   int64   `bson:"count"`
	}
	if err := cursor.All(ctx, &agg); err != nil {
		return nil, fmt.Errorf("failed to decode invoice stats: %w", err)
	}
	if len(agg) > 0 {
		stats.TotalRevenue = agg[0].Revenue
		stats.InvoiceCount = agg[0].Count
	}

	stats.PendingCount, err = collection.CountDocuments(ctx, bson.M{"status": models.StatusPending})
	if err != nil {
		return nil, fmt.Errorf("failed to count pending invoices: %w", err)
	}

	stats.CustomerCount, err = s.db.Collection(customersCollection).CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	return stats, nil
}
