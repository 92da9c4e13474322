package domain

import "time"

// User — покупатель. В рамках workflow-слоя сущность только читается:
// создание и аутентификация пользователей живут в другом сервисе.
type User struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
