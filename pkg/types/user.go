package types

type User struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Avatar    string `db:"avatar" json:"avatar"`
	Email     string `db:"email" json:"email"`
	CreatedAt int64  `db:"created_at" json:"created_at"`
}

type AccessToken struct {
	ID        int64  `db:"id" json:"id"`
	UserID    string `db:"user_id" json:"user_id"`
	Token     string `db:"token" json:"-"`
	Version   string `db:"version" json:"version"`
	Info      string `db:"info" json:"info"`
	ExpiresAt int64  `db:"expires_at" json:"expires_at"`
	CreatedAt int64  `db:"created_at" json:"created_at"`
}

const DEFAULT_ACCESS_TOKEN_VERSION = "v1"

// UserTokenMeta is the cached identity behind an auth token.
type UserTokenMeta struct {
	UserID    string `json:"user_id"`
	Appid     string `json:"appid"`
	ExpiresAt int64  `json:"expires_at"`
}
