package httptransport

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendtrail/internal/event"
	"spendtrail/internal/expense"
	"spendtrail/internal/platform/config"
	"spendtrail/internal/producer"
	"spendtrail/pkg/testutil"
)

type stubPublisher struct {
	err  error
	last event.Envelope
}

func (s *stubPublisher) Publish(_ context.Context, env event.Envelope) error {
	if s.err != nil {
		return s.err
	}
	s.last = env
	return nil
}

func newExpenseRouter(pub *stubPublisher) http.Handler {
	svc := expense.NewService(expense.NewInMemoryStore(), pub, config.Defaults{PaymentMethod: "CASH"})
	return NewRouter(nil, NewExpenseHandler(svc), nil)
}

func TestExpenseCreate(t *testing.T) {
	pub := &stubPublisher{}
	router := newExpenseRouter(pub)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/v1/expenses",
		`{"userId":"42","amount":25.50,"description":"lunch"}`)
	rec := testutil.DoRequest(router, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	exp := testutil.UnmarshalResponse[expense.Expense](t, rec)
	assert.Equal(t, "42", exp.UserID)
	assert.Equal(t, "CASH", exp.PaymentMethod)

	assert.Equal(t, exp.ID, pub.last.EntityID, "creating an expense publishes its event")
	assert.Equal(t, event.ActionCreate, pub.last.Action)
}

func TestExpenseCreate_Invalid(t *testing.T) {
	router := newExpenseRouter(&stubPublisher{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/v1/expenses", `{"amount":25.50}`)
	rec := testutil.DoRequest(router, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExpenseCreate_PublishFailure(t *testing.T) {
	pub := &stubPublisher{err: &producer.PublishFailure{Topic: "expense-events", Key: "user-42"}}
	router := newExpenseRouter(pub)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/v1/expenses",
		`{"userId":"42","amount":10}`)
	rec := testutil.DoRequest(router, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestExpenseUpdate(t *testing.T) {
	pub := &stubPublisher{}
	router := newExpenseRouter(pub)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/v1/expenses",
		`{"userId":"42","amount":25.50}`)
	rec := testutil.DoRequest(router, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := testutil.UnmarshalResponse[expense.Expense](t, rec)

	req = testutil.NewJSONRequest(t, http.MethodPut, "/api/v1/expenses/"+created.ID,
		`{"amount":40,"description":"dinner"}`)
	rec = testutil.DoRequest(router, req)
	require.Equal(t, http.StatusOK, rec.Code)

	updated := testutil.UnmarshalResponse[expense.Expense](t, rec)
	assert.Equal(t, 40.0, updated.Amount)
	assert.Equal(t, "dinner", updated.Description)
	assert.Equal(t, event.ActionUpdate, pub.last.Action)
}

func TestExpenseGet_NotFound(t *testing.T) {
	router := newExpenseRouter(&stubPublisher{})

	req := testutil.NewJSONRequest(t, http.MethodGet, "/api/v1/expenses/missing", "")
	rec := testutil.DoRequest(router, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
