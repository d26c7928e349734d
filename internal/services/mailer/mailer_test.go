package mailer

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/novawriterhq/novawriter/internal/lib/smtp"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) GetSMTPUser() string {
	args := m.Called()
	return args.String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error {
	args := m.Called(from)
	return args.Error(0)
}

func (m *MockSMTPClient) Rcpt(to string) error {
	args := m.Called(to)
	return args.Error(0)
}

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSMTPClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSMTPClient) Quit() error {
	args := m.Called()
	return args.Error(0)
}

type MockSMTPWriter struct {
	mock.Mock
}

func (m *MockSMTPWriter) Write(p []byte) (n int, err error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *MockSMTPWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestMailerService_SendWelcomeEmail(t *testing.T) {
	tests := []struct {
		name          string
		body          []byte
		setupMocks    func(*MockTransport)
		expectedError bool
	}{
		{
			name: "успешная отправка приветственного письма",
			body: []byte(`{"email":"new@example.com"}`),
			setupMocks: func(tr *MockTransport) {
				mockClient := new(MockSMTPClient)
				mockWriter := new(MockSMTPWriter)

				tr.On("GetSMTPUser").Return("noreply@novawriter.org")
				tr.On("Connect").Return(mockClient, nil).Once()
				mockClient.On("Mail", "noreply@novawriter.org").Return(nil).Once()
				mockClient.On("Rcpt", "new@example.com").Return(nil).Once()
				mockClient.On("Data").Return(mockWriter, nil).Once()
				mockWriter.On("Write", mock.AnythingOfType("[]uint8")).Return(100, nil).Once()
				mockWriter.On("Close").Return(nil).Once()
				mockClient.On("Quit").Return(nil).Once()
				mockClient.On("Close").Return(nil).Once()
			},
			expectedError: false,
		},
		{
			name: "некорректный JSON",
			body: []byte(`invalid json`),
			setupMocks: func(_ *MockTransport) {
				// Транспорт не должен вызываться
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := new(MockTransport)
			tt.setupMocks(transport)

			service := New(transport, "support@novawriter.org", newNoopLogger())
			err := service.SendWelcomeEmail(tt.body)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			transport.AssertExpectations(t)
		})
	}
}

func TestMailerService_SendContactEmail(t *testing.T) {
	t.Run("обращение пересылается на служебный ящик", func(t *testing.T) {
		transport := new(MockTransport)
		mockClient := new(MockSMTPClient)
		mockWriter := new(MockSMTPWriter)

		transport.On("GetSMTPUser").Return("noreply@novawriter.org")
		transport.On("Connect").Return(mockClient, nil).Once()
		mockClient.On("Mail", "noreply@novawriter.org").Return(nil).Once()
		mockClient.On("Rcpt", "support@novawriter.org").Return(nil).Once()
		mockClient.On("Data").Return(mockWriter, nil).Once()
		mockWriter.On("Write", mock.AnythingOfType("[]uint8")).Return(100, nil).Once()
		mockWriter.On("Close").Return(nil).Once()
		mockClient.On("Quit").Return(nil).Once()
		mockClient.On("Close").Return(nil).Once()

		service := New(transport, "support@novawriter.org", newNoopLogger())
		err := service.SendContactEmail([]byte(`{"name":"Анна","email":"anna@example.com","message":"Не работает экспорт"}`))

		assert.NoError(t, err)
		transport.AssertExpectations(t)
		mockClient.AssertExpectations(t)
	})
}
