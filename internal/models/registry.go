package models

// All - модели для AutoMigrate
func All() []any {
	return []any{
		&User{},
		&Job{},
		&Skill{},
		&Payment{},
		&Review{},
		&Message{},
		&UserBlock{},
	}
}
