package models

// Document is a book record. ID is the 24-hex-character store identifier.
type Document struct {
	ID      string `gorm:"primaryKey;size:24" json:"_id,omitempty"`
	Title   string `gorm:"not null"           json:"title"`
	Author  string `gorm:"not null"           json:"author"`
	Summary string `json:"summary,omitempty"`
}

// User holds the password exactly as the password policy produced it. The
// user repositories blank it before handing a created user back.
type User struct {
	ID       string `gorm:"primaryKey;size:24" json:"_id,omitempty"`
	Email    string `gorm:"index;not null"     json:"email"`
	Password string `gorm:"not null"           json:"password,omitempty"`
}
