package services

import (
	"flockr/domain"
	"flockr/mocks"
	"flockr/storage"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testConfig() PlatformConfig {
	return PlatformConfig{
		JWTSecret:            "test-secret",
		ResetCodeTTL:         time.Hour,
		PromoteChannelOwners: true,
		MaxMessageLength:     1000,
		MessagesPageSize:     50,
		ArgonMemoryKB:        1024,
		ArgonIterations:      1,
	}
}

type fixture struct {
	*Platform
	mailer *mocks.MockIMailer
}

func newFixture(t *testing.T, configure ...func(c *PlatformConfig)) fixture {
	t.Helper()
	store, err := storage.Open(slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	config := testConfig()
	for _, c := range configure {
		c(&config)
	}
	mailer := mocks.NewMockIMailer(gomock.NewController(t))
	log := logs.GetLoggerFromLevel(slog.LevelError)
	return fixture{Platform: NewPlatform(store, config, mailer, log), mailer: mailer}
}

// register creates a user named after handle, e.g. "alice" becomes
// alice@example.com / Alice Smith.
func (f fixture) register(t *testing.T, first string) domain.AuthResult {
	t.Helper()
	result, err := f.Auth.Register(first+"@example.com", "password1", first, "Smith")
	require.NoError(t, err)
	return result
}

func (f fixture) channel(t *testing.T, token domain.Token, name string, isPublic bool) domain.ChannelID {
	t.Helper()
	id, err := f.Channels.Create(token, name, isPublic)
	require.NoError(t, err)
	return id
}
