package model

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Profile struct {
	User      User `json:"user"`
	NoteCount int  `json:"noteCount"`
	TodoCount int  `json:"todoCount"`
}
