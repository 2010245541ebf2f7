package models

type Meal struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Slug         string `json:"slug" gorm:"not null;uniqueIndex"`
	Title        string `json:"title" gorm:"not null"`
	Summary      string `json:"summary" gorm:"not null"`
	Instructions string `json:"instructions" gorm:"not null"`
	Image        string `json:"image" gorm:"not null"`
	Creator      string `json:"creator" gorm:"not null"`
	CreatorEmail string `json:"creator_email" gorm:"column:creator_email;not null"`
}

func (Meal) TableName() string {
	return "meals"
}
