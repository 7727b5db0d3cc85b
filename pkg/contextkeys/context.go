package contextkeys

// Используем кастомный тип, чтобы избежать коллизий
type contextKey string

// Ключи gin.Context, которые выставляет AuthMiddleware
const (
	UserIDKey = contextKey("userID")
	RoleKey   = contextKey("role")
)

// String - gin хранит значения по строковому ключу
func (k contextKey) String() string { return string(k) }
