package mailer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/storefront/internal/lib/smtp"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect(ctx context.Context) (smtp.Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) Sender() string {
	args := m.Called()
	return args.String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error {
	return m.Called(from).Error(0)
}

func (m *MockSMTPClient) Rcpt(to string) error {
	return m.Called(to).Error(0)
}

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSMTPClient) Close() error {
	return m.Called().Error(0)
}

func (m *MockSMTPClient) Quit() error {
	return m.Called().Error(0)
}

// bufferWriter запоминает текст письма.
type bufferWriter struct {
	bytes.Buffer
	closed bool
}

func (w *bufferWriter) Close() error {
	w.closed = true
	return nil
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

const resetBody = `{"email":"test@example.com","name":"Alice","link":"http://shop.local/password/reset?token=abc&email=test%40example.com"}`

func TestService_SendPasswordResetLink(t *testing.T) {
	tests := []struct {
		name          string
		body          []byte
		setupMocks    func(*MockTransport, *bufferWriter)
		expectedError bool
		errorMessage  string
	}{
		{
			name: "success",
			body: []byte(resetBody),
			setupMocks: func(tr *MockTransport, w *bufferWriter) {
				client := new(MockSMTPClient)
				tr.On("Sender").Return("noreply@example.com")
				tr.On("Connect", mock.Anything).Return(client, nil).Once()
				client.On("Mail", "noreply@example.com").Return(nil).Once()
				client.On("Rcpt", "test@example.com").Return(nil).Once()
				client.On("Data").Return(w, nil).Once()
				client.On("Quit").Return(nil).Once()
				client.On("Close").Return(nil).Once()
			},
		},
		{
			name:          "invalid JSON",
			body:          []byte(`invalid json`),
			setupMocks:    func(*MockTransport, *bufferWriter) {},
			expectedError: true,
			errorMessage:  "error unmarshalling message",
		},
		{
			name:          "missing link",
			body:          []byte(`{"email":"test@example.com"}`),
			setupMocks:    func(*MockTransport, *bufferWriter) {},
			expectedError: true,
			errorMessage:  "email and link are required",
		},
		{
			name: "SMTP connection error",
			body: []byte(resetBody),
			setupMocks: func(tr *MockTransport, _ *bufferWriter) {
				tr.On("Sender").Return("noreply@example.com")
				tr.On("Connect", mock.Anything).Return(nil, errors.New("connection error")).Once()
			},
			expectedError: true,
			errorMessage:  "connection error",
		},
		{
			name: "SMTP Rcpt error",
			body: []byte(resetBody),
			setupMocks: func(tr *MockTransport, _ *bufferWriter) {
				client := new(MockSMTPClient)
				tr.On("Sender").Return("noreply@example.com")
				tr.On("Connect", mock.Anything).Return(client, nil).Once()
				client.On("Mail", "noreply@example.com").Return(nil).Once()
				client.On("Rcpt", "test@example.com").Return(errors.New("rcpt error")).Once()
				client.On("Close").Return(nil).Once()
			},
			expectedError: true,
			errorMessage:  "rcpt error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := new(MockTransport)
			writer := &bufferWriter{}
			service := New(transport, newNoopLogger())

			tt.setupMocks(transport, writer)

			err := service.SendPasswordResetLink(context.Background(), tt.body)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMessage)
			} else {
				assert.NoError(t, err)
				assert.True(t, writer.closed)
				assert.Contains(t, writer.String(), "To: test@example.com")
				assert.Contains(t, writer.String(), "Hello, Alice!")
				assert.Contains(t, writer.String(), "token=abc")
			}

			transport.AssertExpectations(t)
		})
	}
}
