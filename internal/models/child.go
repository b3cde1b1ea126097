package models

type Child struct {
	Base
	ParentID  string     `json:"parent_id" gorm:"size:36;not null;index"`
	Name      string     `json:"name" gorm:"not null"`
	Age       int        `json:"age"`
	Bio       string     `json:"bio,omitempty"`
	Interests []Interest `json:"interests" gorm:"many2many:child_interests;"`
}

type Interest struct {
	ID   uint   `json:"-" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null"`
}

func (c Child) InterestNames() []string {
	names := make([]string, 0, len(c.Interests))
	for _, i := range c.Interests {
		names = append(names, i.Name)
	}
	return names
}
