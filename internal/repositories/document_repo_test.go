package repositories

import (
	"context"
	"testing"
	"time"

	"sabaibill/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type DocumentRepoTestSuite struct {
	suite.Suite
	mock      pgxmock.PgxPoolIface
	repo      DocumentRepository
	companyID uuid.UUID
	docID     uuid.UUID
	ctx       context.Context
}

func (suite *DocumentRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewDocumentRepo(mock)
	suite.companyID = uuid.New()
	suite.docID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *DocumentRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestDocumentRepoTestSuite(t *testing.T) {
	suite.Run(t, new(DocumentRepoTestSuite))
}

func (suite *DocumentRepoTestSuite) sampleDocument() *models.Document {
	return &models.Document{
		ID:              suite.docID,
		CompanyID:       suite.companyID,
		Kind:            models.KindInvoice,
		DocumentNumber:  "IV-20260205-0001",
		CustomerName:    "ร้านตัวอย่าง",
		CustomerAddress: "123 Bangkok",
		IssueDate:       time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC),
		VatRate:         7,
		DiscountType:    models.DiscountFixed,
		Status:          models.StatusDraft,
		Subtotal:        100,
		AmountBeforeVat: 100,
		VatAmount:       7,
		TotalAmount:     107,
	}
}

func (suite *DocumentRepoTestSuite) TestCreate_InsertsHeaderAndItemsInOneTx() {
	doc := suite.sampleDocument()
	items := []models.LineItem{
		{Description: "Service A", Quantity: 1, Unit: "job", UnitPrice: 100, LineAmount: 100},
	}

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`INSERT INTO documents`).
		WithArgs(doc.ID, doc.CompanyID, doc.Kind, doc.DocumentNumber, doc.CustomerName, doc.CustomerAddress, doc.CustomerTaxID, doc.CustomerBranch, doc.CustomerContact, doc.IssueDate, doc.DueDate, doc.ValidUntil, doc.VatRate, doc.DiscountType, doc.DiscountValue, doc.Status, doc.Subtotal, doc.DiscountAmount, doc.AmountBeforeVat, doc.VatAmount, doc.TotalAmount, doc.Notes).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO line_items`).
		WithArgs(pgxmock.AnyArg(), doc.CompanyID, doc.ID, 1, "Service A", 1.0, "job", 100.0, 0.0, false, 100.0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()
	suite.mock.ExpectRollback()

	err := suite.repo.Create(suite.ctx, doc, items)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, items[0].ItemOrder)
	assert.Equal(suite.T(), doc.ID, items[0].DocumentID)
}

func (suite *DocumentRepoTestSuite) TestUpdate_ReplacesItemSet() {
	doc := suite.sampleDocument()
	items := []models.LineItem{
		{Description: "Service B", Quantity: 2, Unit: "hr", UnitPrice: 50, LineAmount: 100},
		{Description: "Service C", Quantity: 1, Unit: "job", UnitPrice: 10, LineAmount: 10},
	}

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`UPDATE documents`).
		WithArgs(doc.DocumentNumber, doc.CustomerName, doc.CustomerAddress, doc.CustomerTaxID, doc.CustomerBranch, doc.CustomerContact, doc.IssueDate, doc.DueDate, doc.ValidUntil, doc.VatRate, doc.DiscountType, doc.DiscountValue, doc.Status, doc.Subtotal, doc.DiscountAmount, doc.AmountBeforeVat, doc.VatAmount, doc.TotalAmount, doc.Notes, doc.CompanyID, doc.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`DELETE FROM line_items`).
		WithArgs(doc.CompanyID, doc.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	suite.mock.ExpectExec(`INSERT INTO line_items`).
		WithArgs(pgxmock.AnyArg(), doc.CompanyID, doc.ID, 1, "Service B", 2.0, "hr", 50.0, 0.0, false, 100.0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO line_items`).
		WithArgs(pgxmock.AnyArg(), doc.CompanyID, doc.ID, 2, "Service C", 1.0, "job", 10.0, 0.0, false, 10.0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()
	suite.mock.ExpectRollback()

	err := suite.repo.Update(suite.ctx, doc, items)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, items[1].ItemOrder)
}

func (suite *DocumentRepoTestSuite) TestCountByNumberSegment_ExcludesSelf() {
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs(suite.companyID, models.KindInvoice, "IV-20260205-%", suite.docID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	count, err := suite.repo.CountByNumberSegment(suite.ctx, suite.companyID, models.KindInvoice, "IV-20260205", suite.docID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 3, count)
}

func (suite *DocumentRepoTestSuite) TestDelete_RemovesItemsThenHeader() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`DELETE FROM line_items`).
		WithArgs(suite.companyID, suite.docID).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	suite.mock.ExpectExec(`DELETE FROM documents`).
		WithArgs(suite.companyID, suite.docID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	suite.mock.ExpectCommit()
	suite.mock.ExpectRollback()

	err := suite.repo.Delete(suite.ctx, suite.companyID, suite.docID)

	assert.NoError(suite.T(), err)
}

func (suite *DocumentRepoTestSuite) TestUpdateStatus() {
	suite.mock.ExpectExec(`UPDATE documents`).
		WithArgs(models.StatusCancelled, suite.companyID, suite.docID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.UpdateStatus(suite.ctx, suite.companyID, suite.docID, models.StatusCancelled)

	assert.NoError(suite.T(), err)
}
