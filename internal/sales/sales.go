// Package sales holds the daily sales ledger core: option resolution from a
// stall's inventory, line item validation, editable line list operations, and
// the synthetic daily total recomputation. Everything here is pure; callers
// own persistence.
package sales

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"mahotsav/backend/internal/domain"
)

// Sentinel categories. "Total Sales" marks the synthetic entry-time option,
// "Total Products" marks the persisted per-record total line. They are
// distinct on purpose and must not be unified.
const (
	TotalSalesCategory = "Total Sales"
	TotalSalesProduct  = "Total Sale"

	DailyTotalCategory = "Total Products"
	DailyTotalProduct  = "Daily Total"
)

// Field names accepted by UpdateLine. They match the JSON keys of
// domain.SaleLineItem.
const (
	FieldProductCategory = "productCategory"
	FieldProductName     = "productName"
	FieldQuantitySold    = "quantitySold"
	FieldSalesValue      = "salesValue"
)

var (
	ErrIndexOutOfRange = errors.New("sales: line index out of range")
	ErrUnknownField    = errors.New("sales: unknown line item field")
	ErrBadFieldValue   = errors.New("sales: wrong value type for field")
)

type ValidationReason string

const (
	MissingCategory   ValidationReason = "missing_category"
	MissingProduct    ValidationReason = "missing_product"
	InvalidQuantity   ValidationReason = "invalid_quantity"
	InvalidSalesValue ValidationReason = "invalid_sales_value"
)

// ValidationError reports the first failing check of one line item. Index is
// the item's position in the submitted list, or -1 when a single item was
// validated in isolation.
type ValidationError struct {
	Index  int
	Reason ValidationReason
}

func (e *ValidationError) Error() string {
	var msg string
	switch e.Reason {
	case MissingCategory:
		msg = "please select a product category"
	case MissingProduct:
		msg = "please select a product name"
	case InvalidQuantity:
		msg = "please enter a valid quantity sold"
	case InvalidSalesValue:
		msg = "please enter a valid sales value"
	default:
		msg = "invalid sale item"
	}
	if e.Index >= 0 {
		return fmt.Sprintf("item %d: %s", e.Index+1, msg)
	}
	return msg
}

// ResolveOptions derives the selectable (category, product) pairs for a
// stall: one trimmed option per inventory item, then exactly one synthetic
// Total Sales option appended last. An empty inventory yields just the
// synthetic option.
func ResolveOptions(inventory []domain.StallInventoryItem) []domain.SaleOption {
	options := make([]domain.SaleOption, 0, len(inventory)+1)
	for _, item := range inventory {
		options = append(options, domain.SaleOption{
			ProductCategory: strings.TrimSpace(item.ProductCategory),
			ProductName:     strings.TrimSpace(item.ProductName),
		})
	}
	return append(options, domain.SaleOption{
		ProductCategory: TotalSalesCategory,
		ProductName:     TotalSalesProduct,
	})
}

// Categories returns the distinct non-empty categories of options, sorted
// alphabetically except that Total Sales always sorts last.
func Categories(options []domain.SaleOption) []string {
	seen := make(map[string]bool, len(options))
	categories := make([]string, 0, len(options))
	for _, opt := range options {
		if opt.ProductCategory == "" || seen[opt.ProductCategory] {
			continue
		}
		seen[opt.ProductCategory] = true
		categories = append(categories, opt.ProductCategory)
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i] == TotalSalesCategory {
			return false
		}
		if categories[j] == TotalSalesCategory {
			return true
		}
		return categories[i] < categories[j]
	})
	return categories
}

// ProductsFor returns the product names offered under category. Selecting
// Total Sales offers the single fixed Total Sale product.
func ProductsFor(options []domain.SaleOption, category string) []string {
	if category == TotalSalesCategory {
		return []string{TotalSalesProduct}
	}
	category = strings.TrimSpace(category)
	products := make([]string, 0, len(options))
	for _, opt := range options {
		if opt.ProductCategory == category && opt.ProductName != "" {
			products = append(products, opt.ProductName)
		}
	}
	return products
}

// ValidateLineItem checks one line item. Checks short-circuit in order:
// category, product, quantity, sales value.
func ValidateLineItem(item domain.SaleLineItem) error {
	return validateAt(item, -1)
}

// ValidateLineItems checks every item of a submission and reports the first
// failure with its position. A record is accepted only as a whole.
func ValidateLineItems(items []domain.SaleLineItem) error {
	for i, item := range items {
		if err := validateAt(item, i); err != nil {
			return err
		}
	}
	return nil
}

func validateAt(item domain.SaleLineItem, index int) error {
	switch {
	case item.ProductCategory == "":
		return &ValidationError{Index: index, Reason: MissingCategory}
	case item.ProductName == "":
		return &ValidationError{Index: index, Reason: MissingProduct}
	case item.QuantitySold <= 0:
		return &ValidationError{Index: index, Reason: InvalidQuantity}
	case item.SalesValue <= 0:
		return &ValidationError{Index: index, Reason: InvalidSalesValue}
	}
	return nil
}

// AppendLine returns a new list with one blank line item at the end.
func AppendLine(list []domain.SaleLineItem) []domain.SaleLineItem {
	out := make([]domain.SaleLineItem, len(list)+1)
	copy(out, list)
	return out
}

// UpdateLine returns a new list with the named field of list[index] replaced.
// Changing the category also resets the product name, to Total Sale when the
// new category is Total Sales and to empty otherwise, since a product choice
// from the previous category must not survive.
func UpdateLine(list []domain.SaleLineItem, index int, field string, value any) ([]domain.SaleLineItem, error) {
	if index < 0 || index >= len(list) {
		return nil, ErrIndexOutOfRange
	}
	out := make([]domain.SaleLineItem, len(list))
	copy(out, list)
	item := out[index]

	switch field {
	case FieldProductCategory:
		s, ok := value.(string)
		if !ok {
			return nil, ErrBadFieldValue
		}
		item.ProductCategory = s
		if s == TotalSalesCategory {
			item.ProductName = TotalSalesProduct
		} else {
			item.ProductName = ""
		}
	case FieldProductName:
		s, ok := value.(string)
		if !ok {
			return nil, ErrBadFieldValue
		}
		item.ProductName = s
	case FieldQuantitySold:
		n, ok := toInt64(value)
		if !ok {
			return nil, ErrBadFieldValue
		}
		item.QuantitySold = n
	case FieldSalesValue:
		n, ok := toInt64(value)
		if !ok {
			return nil, ErrBadFieldValue
		}
		item.SalesValue = n
	default:
		return nil, ErrUnknownField
	}

	out[index] = item
	return out, nil
}

// RemoveLine returns a new list without the item at index.
func RemoveLine(list []domain.SaleLineItem, index int) ([]domain.SaleLineItem, error) {
	if index < 0 || index >= len(list) {
		return nil, ErrIndexOutOfRange
	}
	out := make([]domain.SaleLineItem, 0, len(list)-1)
	out = append(out, list[:index]...)
	out = append(out, list[index+1:]...)
	return out, nil
}

// RecomputeTotal sums quantity times value over every non Total Products line
// and upserts the single Daily Total line carrying that sum. It runs before
// an edited record is persisted, never on initial submission. Applying it
// twice yields the same list.
func RecomputeTotal(list []domain.SaleLineItem) []domain.SaleLineItem {
	var total int64
	totalIndex := -1
	for i, item := range list {
		if item.ProductCategory == DailyTotalCategory {
			if totalIndex < 0 {
				totalIndex = i
			}
			continue
		}
		total += item.QuantitySold * item.SalesValue
	}

	out := make([]domain.SaleLineItem, len(list))
	copy(out, list)
	if totalIndex >= 0 {
		out[totalIndex].ProductName = DailyTotalProduct
		out[totalIndex].QuantitySold = 1
		out[totalIndex].SalesValue = total
		return out
	}
	return append(out, domain.SaleLineItem{
		ProductCategory: DailyTotalCategory,
		ProductName:     DailyTotalProduct,
		QuantitySold:    1,
		SalesValue:      total,
	})
}

// DailyTotal reports the persisted total line's value, or the recomputed sum
// when no total line exists yet.
func DailyTotal(list []domain.SaleLineItem) int64 {
	var total int64
	for _, item := range list {
		if item.ProductCategory == DailyTotalCategory {
			return item.SalesValue
		}
		total += item.QuantitySold * item.SalesValue
	}
	return total
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	}
	return 0, false
}
