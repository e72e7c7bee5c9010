package models

import (
	"time"
)

// Item is a catalog entry for goods sold. Like customers, it is reference
// data only: invoice lines copy name, HSN code and rate when the line is
// added.
type Item struct {
	Base      `bson:",inline"`
	Name      string    `bson:"name" json:"name"`
	HsnCode   string    `bson:"hsn_code" json:"hsnCode"`
	Rate      float64   `bson:"rate" json:"rate"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
