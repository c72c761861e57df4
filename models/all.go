package models

// All lists every persisted model in dependency order, for migrations.
func All() []any {
	return []any{
		&User{},
		&UserProfile{},
		&Category{},
		&Product{},
		&ProductVariant{},
		&ProductImage{},
		&Order{},
		&OrderItem{},
		&Payment{},
	}
}
