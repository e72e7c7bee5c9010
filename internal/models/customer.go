package models

import (
	"time"
)

// Customer is catalog reference data. Invoices copy the fields they need at
// creation time rather than holding a live reference, so editing a customer
// later never rewrites historical invoices.
type Customer struct {
	Base      `bson:",inline"`
	Name      string    `bson:"name" json:"name"`
	GSTIN     string    `bson:"gstin" json:"gstin"`
	Address   string    `bson:"address" json:"address"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
