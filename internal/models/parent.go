package models

// ParentProfile is keyed by the auth subject of the parent.
type ParentProfile struct {
	Base
	ParentName string `json:"parent_name"`
	Location   string `json:"location,omitempty"`
	Email      string `json:"email,omitempty" gorm:"index"`
	Phone      string `json:"phone,omitempty"`
	AvatarURL  string `json:"avatar_url,omitempty"`
}

// PublicParent is what other users may see of a parent. Contact details
// stay private.
type PublicParent struct {
	ID         string `json:"id"`
	ParentName string `json:"parent_name"`
	Location   string `json:"location,omitempty"`
	AvatarURL  string `json:"avatar_url,omitempty"`
}

func (p ParentProfile) Public() *PublicParent {
	return &PublicParent{
		ID:         p.ID,
		ParentName: p.ParentName,
		Location:   p.Location,
		AvatarURL:  p.AvatarURL,
	}
}
