package model

import (
	"errors"
	"fmt"
)

// ItemType names the purchasable entity an ItemRef points at.
type ItemType string

const (
	ItemTypeProduct       ItemType = "product"
	ItemTypeCourse        ItemType = "course"
	ItemTypeTravelPackage ItemType = "travel_package"
)

var ErrInvalidItemRef = errors.New("invalid item reference")

// ItemRef references exactly one Product, Course or TravelPackage.
// It is embedded as the item_type/item_id column pair.
type ItemRef struct {
	Type ItemType `gorm:"column:item_type;type:varchar(20);not null" json:"type"`
	ID   uint     `gorm:"column:item_id;not null" json:"id"`
}

func ProductRef(id uint) ItemRef       { return ItemRef{Type: ItemTypeProduct, ID: id} }
func CourseRef(id uint) ItemRef        { return ItemRef{Type: ItemTypeCourse, ID: id} }
func TravelPackageRef(id uint) ItemRef { return ItemRef{Type: ItemTypeTravelPackage, ID: id} }

// ParseItemType accepts the API spellings of an item type.
func ParseItemType(s string) (ItemType, error) {
	switch ItemType(s) {
	case ItemTypeProduct, ItemTypeCourse, ItemTypeTravelPackage:
		return ItemType(s), nil
	}
	switch s {
	case "Product":
		return ItemTypeProduct, nil
	case "Course":
		return ItemTypeCourse, nil
	case "TravelPackage", "travelpackage", "package":
		return ItemTypeTravelPackage, nil
	}
	return "", fmt.Errorf("%w: unknown type %q", ErrInvalidItemRef, s)
}

func (r ItemRef) Validate() error {
	switch r.Type {
	case ItemTypeProduct, ItemTypeCourse, ItemTypeTravelPackage:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidItemRef, r.Type)
	}
	if r.ID == 0 {
		return fmt.Errorf("%w: missing id", ErrInvalidItemRef)
	}
	return nil
}

// Reviewable reports whether reviews and favorites may target the item.
func (r ItemRef) Reviewable() bool {
	return r.Type == ItemTypeProduct || r.Type == ItemTypeCourse
}

// QuantityPinned reports whether the item is bought at most once per cart.
func (r ItemRef) QuantityPinned() bool {
	return r.Type != ItemTypeProduct
}

func (r ItemRef) String() string {
	return fmt.Sprintf("%s:%d", r.Type, r.ID)
}
