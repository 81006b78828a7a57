package mocks

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/eloity/tradelimits/internal/models"
	"github.com/eloity/tradelimits/internal/repository"
)

// MockKYCDocumentRepo is an in-memory stand-in for the Postgres
// repository. Inserts get strictly increasing created_at stamps so
// ordering assertions are deterministic.
type MockKYCDocumentRepo struct {
	mu       sync.Mutex
	docs     []models.KYCDocument
	nextID   int
	FailWith error
}

func NewMockKYCDocumentRepo() *MockKYCDocumentRepo {
	return &MockKYCDocumentRepo{}
}

func (m *MockKYCDocumentRepo) Insert(doc *models.KYCDocument) (*models.KYCDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return nil, m.FailWith
	}

	m.nextID++

	inserted := *doc
	inserted.ID = fmt.Sprintf("doc-%d", m.nextID)
	inserted.CreatedAt = time.Now().UTC().Add(time.Duration(m.nextID) * time.Millisecond)
	if inserted.VerificationStatus == "" {
		inserted.VerificationStatus = repository.KYCDocumentStatusPending
	}

	m.docs = append(m.docs, inserted)

	copied := inserted
	return &copied, nil
}

func (m *MockKYCDocumentRepo) GetAllByUserID(userID string) ([]models.KYCDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return nil, m.FailWith
	}

	var result []models.KYCDocument
	for _, doc := range m.docs {
		if doc.UserID == userID {
			result = append(result, doc)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (m *MockKYCDocumentRepo) GetOne(id string) (*models.KYCDocument, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return nil, false, m.FailWith
	}

	for _, doc := range m.docs {
		if doc.ID == id {
			copied := doc
			return &copied, true, nil
		}
	}

	return nil, false, nil
}

func (m *MockKYCDocumentRepo) UpdateStatus(id, status string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return false, m.FailWith
	}

	for i := range m.docs {
		if m.docs[i].ID == id && m.docs[i].VerificationStatus == repository.KYCDocumentStatusPending {
			m.docs[i].VerificationStatus = status
			if status == repository.KYCDocumentStatusVerified {
				m.docs[i].VerifiedAt.Time = time.Now().UTC()
				m.docs[i].VerifiedAt.Valid = true
			}
			return true, nil
		}
	}

	return false, nil
}
