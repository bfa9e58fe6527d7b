package model

type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	DisplayName  string `json:"display_name"`
	State        int    `json:"state"`
	Ctime        int64  `json:"ctime"`
	Mtime        int64  `json:"mtime"`
}
