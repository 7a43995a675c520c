package entity

type Category struct {
	Base
	Name        string  `db:"name"`
	Description *string `db:"description"`
	Image       string  `db:"image"`
	Appropriate bool    `db:"appropriate"`
}
