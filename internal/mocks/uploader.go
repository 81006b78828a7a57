package mocks

import (
	"sync"
)

// MockUploader records uploads and hands back a predictable URL.
type MockUploader struct {
	mu       sync.Mutex
	Uploaded []string
	FailWith error
}

func (m *MockUploader) UploadFile(fileName string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return "", m.FailWith
	}

	m.Uploaded = append(m.Uploaded, fileName)
	return "https://files.example.org/" + fileName, nil
}
