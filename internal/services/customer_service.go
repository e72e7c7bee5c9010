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

// ICustomerService is the customer half of the catalog store.
type ICustomerService interface {
	CreateCustomer(ctx context.Context, name, gstin, address string) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	FindCustomerByID(ctx context.Context, id utils.SixID) (*models.Customer, error)
}

const customersCollection = "customers"

// customerService implements ICustomerService.
type customerService struct {
	db *mongo.Database
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(database *mongo.Database) ICustomerService {
	return &customerService{db: database}
}

// CreateCustomer appends a customer to the catalog.
func (s *customerService) CreateCustomer(ctx context.Context, name, gstin, address string) (*models.Customer, error) {
	if name == "" {
		return nil, errors.New("customer name is required")
	}

	collection := s.db.Collection(customersCollection)
	var customer *models.Customer

	operation := func() error {
		customer = &models.Customer{
			Base:      models.NewBase(),
			Name:      name,
			GSTIN:     gstin,
			Address:   address,
			CreatedAt: time.Now().UTC(),
		}
		_, insertErr := collection.InsertOne(ctx, customer)
		return insertErr
	}

	if err := db.Try(operation); err != nil {
		return nil, fmt.Errorf("failed to insert customer %q: %w", name, err)
	}
	return customer, nil
}

// ListCustomers returns the full catalog in creation order.
func (s *customerService) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := s.db.Collection(customersCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer cursor.Close(ctx)

	customers := []models.Customer{}
	if err = cursor.All(ctx, &customers); err != nil {
		return nil, fmt.Errorf("failed to decode customers: %w", err)
	}
	return customers, nil
}

// FindCustomerByID finds a single customer.
func (s *customerService) FindCustomerByID(ctx context.Context, id utils.SixID) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.Collection(customersCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&customer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding customer %s: %w", id.String(), err)
	}
	return &customer, nil
}
