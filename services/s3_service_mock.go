package services

import (
	"context"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// MockS3Client is an in-memory S3API for testing
type MockS3Client struct {
	objects      map[string][]byte // map of S3 key to object content
	contentTypes map[string]string
	err          error
	mu           sync.RWMutex
}

// NewMockS3Client creates a new mock S3 client
func NewMockS3Client() *MockS3Client {
	return &MockS3Client{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

// FailWith makes subsequent uploads return err
func (m *MockS3Client) FailWith(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// PutObject stores the object body in memory
func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.mu.RLock()
	err := m.err
	m.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	content, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	key := aws.ToString(params.Key)
	m.mu.Lock()
	m.objects[key] = content
	m.contentTypes[key] = aws.ToString(params.ContentType)
	m.mu.Unlock()
	return &s3.PutObjectOutput{}, nil
}

// Objects returns a copy of the stored objects (for testing assertions)
func (m *MockS3Client) Objects() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	objects := make(map[string][]byte, len(m.objects))
	for k, v := range m.objects {
		objects[k] = v
	}
	return objects
}

// ContentType returns the content type an object was uploaded with
func (m *MockS3Client) ContentType(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.contentTypes[key]
}
