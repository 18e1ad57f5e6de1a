package model

// Per-entity allowed field names. Caller-supplied filters and partial
// updates are checked against these before they reach the store, so an
// arbitrary field name in a request body cannot be merged into a document.

// CatalogItemFields lists the updatable/filterable fields of a catalog item.
var CatalogItemFields = fieldSet(
	"name", "description", "image", "price", "quantity", "minOrderQuantity",
)

// UserProfileFields lists the updatable/filterable fields of a user profile.
var UserProfileFields = fieldSet(
	"email", "role", "name", "address", "phone", "education", "linkedin", "image",
)

// PurchaseOrderFields lists the updatable/filterable fields of a purchase order.
var PurchaseOrderFields = fieldSet(
	"toolId", "toolName", "quantity", "unitPrice", "email", "status",
	"transactionId", "delivery",
)

// ReviewFields lists the filterable fields of a review.
var ReviewFields = fieldSet(
	"email", "name", "content", "rating",
)

func fieldSet(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}

// UnknownFields returns the field names in the mapping that are not part of
// the entity schema, in no particular order.
func UnknownFields(fields map[string]interface{}, allowed map[string]bool) []string {
	var unknown []string
	for name := range fields {
		if !allowed[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}
