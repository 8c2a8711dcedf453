package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"sabaibill/internal/common"
	"sabaibill/internal/models"
	"sabaibill/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Create(ctx context.Context, companyID uuid.UUID, kind models.DocumentKind, form *services.DocumentForm, intendedStatus string) (*models.Document, error) {
	args := m.Called(ctx, companyID, kind, form, intendedStatus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

func (m *MockDocumentService) Update(ctx context.Context, companyID, id uuid.UUID, form *services.DocumentForm, intendedStatus string) (*models.Document, error) {
	args := m.Called(ctx, companyID, id, form, intendedStatus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

func (m *MockDocumentService) Cancel(ctx context.Context, companyID, id uuid.UUID) error {
	args := m.Called(ctx, companyID, id)
	return args.Error(0)
}

func (m *MockDocumentService) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	args := m.Called(ctx, companyID, id)
	return args.Error(0)
}

func (m *MockDocumentService) Get(ctx context.Context, companyID, id uuid.UUID) (*models.Document, []models.LineItem, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Document), args.Get(1).([]models.LineItem), args.Error(2)
}

func (m *MockDocumentService) List(ctx context.Context, companyID uuid.UUID, kind models.DocumentKind, status string, limit, offset int) ([]*models.Document, error) {
	args := m.Called(ctx, companyID, kind, status, limit, offset)
	return args.Get(0).([]*models.Document), args.Error(1)
}

const draftBody = `{"customer_name":"Somchai Ltd.","issue_date":"2026-02-05T00:00:00Z","items":[]}`

func postDocument(e *echo.Echo, h *DocumentHandlers, companyID uuid.UUID, sessionToken string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/invoices", strings.NewReader(draftBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if sessionToken != "" {
		req.Header.Set(DraftSessionHeader, sessionToken)
	}
	req = req.WithContext(context.WithValue(req.Context(), common.CompanyIDKey, companyID))

	rec := httptest.NewRecorder()
	_ = h.Create(e.NewContext(req, rec))
	return rec
}

func responseID(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	id, _ := body["id"].(string)
	return id
}

// Fast typing plus a quick submit can fire the debounced auto-save and the
// explicit save at nearly the same instant, both without a document id. The
// session guard must collapse them into one persisted draft, the slower
// caller resolving to the id the faster one produced.
func TestCreate_ConcurrentFirstSavesCreateOneDocument(t *testing.T) {
	e := echo.New()
	svc := new(MockDocumentService)
	h := NewDocumentHandlers(svc, models.KindInvoice, services.NewDraftSessions())

	companyID := uuid.New()
	doc := &models.Document{
		ID:             uuid.New(),
		CompanyID:      companyID,
		Kind:           models.KindInvoice,
		DocumentNumber: "IV-20260205-0001",
		Status:         models.StatusDraft,
	}
	svc.On("Create", mock.Anything, companyID, models.KindInvoice, mock.Anything, "").
		Run(func(mock.Arguments) { time.Sleep(30 * time.Millisecond) }).
		Return(doc, nil).Once()
	svc.On("Get", mock.Anything, companyID, doc.ID).Return(doc, []models.LineItem{}, nil)

	var wg sync.WaitGroup
	recs := make([]*httptest.ResponseRecorder, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			recs[i] = postDocument(e, h, companyID, "sess-1")
		}(i)
	}
	wg.Wait()

	svc.AssertNumberOfCalls(t, "Create", 1)
	assert.Equal(t, doc.ID.String(), responseID(t, recs[0]))
	assert.Equal(t, doc.ID.String(), responseID(t, recs[1]))
}

func TestCreate_DistinctSessionsCreateSeparateDocuments(t *testing.T) {
	e := echo.New()
	svc := new(MockDocumentService)
	h := NewDocumentHandlers(svc, models.KindInvoice, services.NewDraftSessions())

	companyID := uuid.New()
	svc.On("Create", mock.Anything, companyID, models.KindInvoice, mock.Anything, "").
		Return(&models.Document{ID: uuid.New(), CompanyID: companyID, Kind: models.KindInvoice, Status: models.StatusDraft}, nil)

	first := postDocument(e, h, companyID, "sess-1")
	second := postDocument(e, h, companyID, "sess-2")

	svc.AssertNumberOfCalls(t, "Create", 2)
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
}

func TestCreate_NoSessionHeaderBypassesGuard(t *testing.T) {
	e := echo.New()
	svc := new(MockDocumentService)
	h := NewDocumentHandlers(svc, models.KindInvoice, services.NewDraftSessions())

	companyID := uuid.New()
	svc.On("Create", mock.Anything, companyID, models.KindInvoice, mock.Anything, "").
		Return(&models.Document{ID: uuid.New(), CompanyID: companyID, Kind: models.KindInvoice, Status: models.StatusDraft}, nil)

	postDocument(e, h, companyID, "")
	postDocument(e, h, companyID, "")

	svc.AssertNumberOfCalls(t, "Create", 2)
}
