package trading

import (
	"errors"
	"fmt"

	gojson "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// ErrMissingField is returned when an order body omits a required field.
var ErrMissingField = errors.New("missing required field")

// OrderRequest is the body of an order. Price accepts a JSON number or a
// numeric string.
//
// All four fields are required. Explicit zero values are accepted; range
// checks are left to the broker.
type OrderRequest struct {
	ShareholderCode string          `json:"gddm"`
	Instrument      string          `json:"gpdm"`
	Price           decimal.Decimal `json:"price"`
	Quantity        int32           `json:"quantity"`
}

// orderBody mirrors OrderRequest with pointers so absent and null fields
// can be told apart from zero values.
type orderBody struct {
	ShareholderCode *string          `json:"gddm"`
	Instrument      *string          `json:"gpdm"`
	Price           *decimal.Decimal `json:"price"`
	Quantity        *int32           `json:"quantity"`
}

// UnmarshalJSON decodes an order body and rejects it when any field is
// absent or null.
func (r *OrderRequest) UnmarshalJSON(data []byte) error {
	var body orderBody
	if err := gojson.Unmarshal(data, &body); err != nil {
		return err
	}

	switch {
	case body.ShareholderCode == nil:
		return fmt.Errorf("%w: gddm", ErrMissingField)
	case body.Instrument == nil:
		return fmt.Errorf("%w: gpdm", ErrMissingField)
	case body.Price == nil:
		return fmt.Errorf("%w: price", ErrMissingField)
	case body.Quantity == nil:
		return fmt.Errorf("%w: quantity", ErrMissingField)
	}

	*r = OrderRequest{
		ShareholderCode: *body.ShareholderCode,
		Instrument:      *body.Instrument,
		Price:           *body.Price,
		Quantity:        *body.Quantity,
	}
	return nil
}
