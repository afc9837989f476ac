package advisor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-advisor/internal/common"
	"github.com/Veraticus/spice-advisor/internal/llm"
	"github.com/Veraticus/spice-advisor/internal/model"
	"github.com/Veraticus/spice-advisor/internal/service"
	"github.com/Veraticus/spice-advisor/internal/storage"
	"github.com/Veraticus/spice-advisor/internal/testutil"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(llm.Response), args.Error(1)
}

func (m *mockClient) Name() string {
	return "mock"
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Create(ctx context.Context, severity model.Severity, title, body string, opts service.NotifyOptions) error {
	args := m.Called(ctx, severity, title, body, opts)
	return args.Error(0)
}

// failingStore fails every operation with the configured error.
type failingStore struct {
	err error
}

func (f failingStore) Save(context.Context, string, any, ...service.SaveOption) error { return f.err }
func (f failingStore) Load(context.Context, string, any) (bool, error)               { return false, f.err }
func (f failingStore) LoadBackup(context.Context, string, any) (bool, error)         { return false, f.err }
func (f failingStore) Delete(context.Context, string) error                          { return f.err }
func (f failingStore) Close() error                                                  { return nil }

type testEnv struct {
	svc      *Service
	store    service.Store
	client   *mockClient
	notifier *mockNotifier
	clock    *testutil.Clock
	// factoryCalls counts how often the service asked for a provider client.
	factoryCalls int
}

func newTestEnv(t *testing.T, store service.Store, settings Settings) *testEnv {
	t.Helper()

	if store == nil {
		store = storage.NewMemoryStore()
	}
	env := &testEnv{
		store:    store,
		client:   &mockClient{},
		notifier: &mockNotifier{},
		clock:    testutil.NewClock(time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)),
	}

	svc, err := NewService(Deps{
		Store:    store,
		Notifier: env.notifier,
		NewClient: func(model.ProviderConfig) (llm.Client, error) {
			env.factoryCalls++
			return env.client, nil
		},
		Logger: common.DiscardLogger(),
		Now:    env.clock.Now,
	}, settings)
	require.NoError(t, err)
	env.svc = svc
	return env
}

func (e *testEnv) configure(t *testing.T) {
	t.Helper()
	key := "test-key-1234"
	_, err := e.svc.Configure(context.Background(), model.ConfigUpdate{APIKey: &key})
	require.NoError(t, err)
}
