package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"skenterprise/billing/internal/db"
	"skenterprise/billing/internal/models"
	"skenterprise/billing/internal/utils"
)

// IItemService is the goods half of the catalog store.
type IItemService interface {
	CreateItem(ctx context.Context, name, hsnCode string, rate float64) (*models.Item, error)
	ListItems(ctx context.Context) ([]models.Item, error)
	FindItemByID(ctx context.Context, id utils.SixID) (*models.Item, error)
}

const itemsCollection = "items"

// itemService implements IItemService.
type itemService struct {
	db *mongo.Database
}

// NewItemService creates a new ItemService.
func NewItemService(database *mongo.Database) IItemService {
	return &itemService{db: database}
}

// CreateItem appends an item to the catalog. Rate must not be negative:
// lines copy it verbatim, and the calculator would reject every line
// referencing it anyway.
func (s *itemService) CreateItem(ctx context.Context, name, hsnCode string, rate float64) (*models.Item, error) {
	if name == "" {
		return nil, errors.New("item name is required")
	}
	if rate < 0 {
		return nil, ErrNegativeRate
	}

	collection := s.db.Collection(itemsCollection)
	var item *models.Item

	operation := func() error {
		item = &models.Item{
			Base:      models.NewBase(),
			Name:      name,
			HsnCode:   hsnCode,
			Rate:      rate,
			CreatedAt: time.Now().UTC(),
		}
		_, insertErr := collection.InsertOne(ctx, item)
		return insertErr
	}

	if err := db.Try(operation); err != nil {
		return nil, fmt.Errorf("failed to insert item %q: %w", name, err)
	}
	return item, nil
}

// ListItems returns the full catalog in creation order.
func (s *itemService) ListItems(ctx context.Context) ([]models.Item, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := s.db.Collection(itemsCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer cursor.Close(ctx)

	items := []models.Item{}
	if err = cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}
	return items, nil
}

// FindItemByID finds a single item.
func (s *itemService) FindItemByID(ctx context.Context, id utils.SixID) (*models.Item, error) {
	var item models.Item
	err := s.db.Collection(itemsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding item %s: %w", id.String(), err)
	}
	return &item, nil
}
