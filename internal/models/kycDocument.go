package models

import (
	"database/sql"
	"time"
)

type KYCDocument struct {
	ID                 string       `db:"id"`
	UserID             string       `db:"user_id"`
	DocumentType       string       `db:"document_type"`
	DocumentURL        string       `db:"document_url"`
	VerificationStatus string       `db:"verification_status"`
	VerifiedAt         sql.NullTime `db:"verified_at"`
	CreatedAt          time.Time    `db:"created_at"`
}
