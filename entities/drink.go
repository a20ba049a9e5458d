// File: entities/drink.go
package entities

// Drink is a menu entry. Recipe holds the JSON encoding of the ingredient list.
type Drink struct {
	ID     uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Title  string `gorm:"type:varchar(80);uniqueIndex;not null" json:"title"`
	Recipe string `gorm:"type:text;not null" json:"recipe"`
	Timestamp
}
