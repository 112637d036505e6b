package application

import (
	"context"
	"errors"

	"github.com/dkindler/talerpanel/internal/domain/model"
	"github.com/dkindler/talerpanel/internal/domain/port/driven"
	"github.com/dkindler/talerpanel/internal/secretbox"
)

// fakeStore is an in-memory SettingsStore recording commits.
type fakeStore struct {
	settings model.Settings
	saves    int
	loadErr  error
	saveErr  error
}

var _ driven.SettingsStore = (*fakeStore)(nil)

func newFakeStore(settings model.Settings) *fakeStore {
	if settings == nil {
		settings = model.Settings{}
	}
	return &fakeStore{settings: settings}
}

func (s *fakeStore) Load(context.Context) (model.Settings, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.settings.Clone(), nil
}

func (s *fakeStore) Save(_ context.Context, settings model.Settings) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.settings = settings.Clone()
	s.saves++
	return nil
}

// fakeClient is a scripted MerchantClient counting probe calls.
type fakeClient struct {
	report    model.CheckReport
	err       error
	checks    int
	lastCred  model.Credential
	orderID   string
	status    model.OrderStatus
	orderErr  error
	statusErr error
}

var _ driven.MerchantClient = (*fakeClient)(nil)

func passingClient() *fakeClient {
	return &fakeClient{report: model.CheckReport{OK: true}}
}

func failingClient(stage model.Stage, httpStatus int) *fakeClient {
	return &fakeClient{report: model.CheckReport{Stage: stage, HTTPStatus: httpStatus}}
}

func (c *fakeClient) ConfigCheck(_ context.Context, cred model.Credential) (model.CheckReport, error) {
	c.checks++
	c.lastCred = cred
	return c.report, c.err
}

func (c *fakeClient) CreateOrder(_ context.Context, cred model.Credential, _ model.OrderRequest) (string, error) {
	c.lastCred = cred
	return c.orderID, c.orderErr
}

func (c *fakeClient) GetOrder(_ context.Context, cred model.Credential, _ string) (model.OrderStatus, error) {
	c.lastCred = cred
	return c.status, c.statusErr
}

// fakeAuthorizer grants or denies everything.
type fakeAuthorizer struct {
	allow bool
}

var _ driven.Authorizer = (*fakeAuthorizer)(nil)

func (a *fakeAuthorizer) CanManageSettings(context.Context) bool { return a.allow }

func allowAll() *fakeAuthorizer { return &fakeAuthorizer{allow: true} }
func denyAll() *fakeAuthorizer  { return &fakeAuthorizer{allow: false} }

// testBox returns a working Box for tests.
func testBox() *secretbox.Box {
	return secretbox.New("test-secret-material", "")
}

// brokenBox returns a Box with no key material: every Encrypt fails.
func brokenBox() *secretbox.Box {
	return secretbox.New("", "")
}

// noticeCodes extracts the notice codes in order.
func noticeCodes(notices []model.Notice) []string {
	codes := make([]string, 0, len(notices))
	for _, n := range notices {
		codes = append(codes, n.Code)
	}
	return codes
}

var errBoom = errors.New("boom")
