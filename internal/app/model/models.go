package model

// All returns every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Company{},
		&Category{},
		&Product{},
		&Course{},
		&Lesson{},
		&TravelPackage{},
		&BlogPost{},
		&ShippingZone{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderDetail{},
		&Review{},
		&Favorite{},
		&MarketerPackage{},
	}
}

// CompositeIndexes are unique indexes over embedded ItemRef columns.
// gorm tags cannot name them per table, so they are created after AutoMigrate.
var CompositeIndexes = []string{
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_items_ref ON cart_items (cart_id, item_type, item_id)",
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_reviews_user_ref ON reviews (user_id, item_type, item_id)",
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_favorites_user_ref ON favorites (user_id, item_type, item_id)",
	"CREATE INDEX IF NOT EXISTS idx_order_details_ref ON order_details (item_type, item_id)",
}
