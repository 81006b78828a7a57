package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/eloity/tradelimits/internal/models"
	"github.com/jmoiron/sqlx"
)

const (
	// KYCDocumentStatusPending is the status every uploaded document starts in.
	// It stays pending until a reviewer decides either way.
	KYCDocumentStatusPending = "pending"

	// KYCDocumentStatusVerified indicates a reviewer accepted the document.
	KYCDocumentStatusVerified = "verified"

	// KYCDocumentStatusRejected indicates a reviewer turned the document down.
	// The user can upload a replacement, rejection is not terminal for the account.
	KYCDocumentStatusRejected = "rejected"
)

const (
	KYCDocumentTypePassport      = "passport"
	KYCDocumentTypeDriverLicense = "driver_license"
	KYCDocumentTypeNationalID    = "national_id"
	KYCDocumentTypeUtilityBill   = "utility_bill"
	KYCDocumentTypeBankStatement = "bank_statement"
)

type KYCDocumentRepository interface {
	Insert(doc *models.KYCDocument) (*models.KYCDocument, error)
	GetAllByUserID(userID string) ([]models.KYCDocument, error)
	GetOne(id string) (*models.KYCDocument, bool, error)
	UpdateStatus(id, status string) (bool, error)
}

type KYCDocumentRepositoryImpl struct {
	db *sqlx.DB
}

func NewKYCDocumentRepository(db *sqlx.DB) KYCDocumentRepository {
	return &KYCDocumentRepositoryImpl{db: db}
}

func (repo *KYCDocumentRepositoryImpl) Insert(doc *models.KYCDocument) (*models.KYCDocument, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var inserted models.KYCDocument
	query := `
		INSERT INTO kyc_documents (user_id, document_type, document_url, verification_status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, document_type, document_url, verification_status, verified_at, created_at;`

	status := doc.VerificationStatus
	if status == "" {
		status = KYCDocumentStatusPending
	}

	err := repo.db.GetContext(ctx, &inserted, query,
		doc.UserID,
		doc.DocumentType,
		doc.DocumentURL,
		status,
	)
	if err != nil {
		return nil, err
	}

	return &inserted, nil
}

func (repo *KYCDocumentRepositoryImpl) GetAllByUserID(userID string) ([]models.KYCDocument, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		SELECT
			id,
			user_id,
			document_type,
			document_url,
			verification_status,
			verified_at,
			created_at
		FROM
			kyc_documents
		WHERE
			user_id = $1
		ORDER BY
			created_at DESC;`

	var documents []models.KYCDocument
	err := repo.db.SelectContext(ctx, &documents, query, userID)
	if err != nil {
		return nil, err
	}

	return documents, nil
}

func (repo *KYCDocumentRepositoryImpl) GetOne(id string) (*models.KYCDocument, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var document models.KYCDocument
	query := `
		SELECT
			id,
			user_id,
			document_type,
			document_url,
			verification_status,
			verified_at,
			created_at
		FROM
			kyc_documents
		WHERE
			id = $1
		LIMIT 1;`

	err := repo.db.GetContext(ctx, &document, query, id)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return &document, true, nil
}

// UpdateStatus applies the reviewer's decision. Only pending documents can
// transition; verified_at is stamped on acceptance only.
func (repo *KYCDocumentRepositoryImpl) UpdateStatus(id, status string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE
			kyc_documents
		SET
			verification_status = $2,
			verified_at = CASE WHEN $2 = 'verified' THEN now() ELSE verified_at END
		WHERE
			id = $1 AND verification_status = 'pending';`

	result, err := repo.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
