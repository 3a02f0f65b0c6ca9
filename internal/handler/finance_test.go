package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/client-portal/internal/model"
)

func TestCreateFinanceDocument(t *testing.T) {
	env := newEnv(t)

	// A client's document is always their own.
	rec := env.do(http.MethodPost, "/v1/finance", env.clientTok,
		fmt.Sprintf(`{"type":"invoice","amountCents":150000,"clientId":%d}`, env.admin.ID))
	requireStatus(t, rec, http.StatusCreated)
	d := decode[model.FinanceDocument](t, rec)
	assert.Equal(t, env.client.ID, d.ClientID)
	assert.Equal(t, model.FinancePending, d.Status)

	// Staff must name the client.
	rec = env.do(http.MethodPost, "/v1/finance", env.adminTok,
		`{"type":"quote","amountCents":5000}`)
	requireStatus(t, rec, http.StatusBadRequest)

	rec = env.do(http.MethodPost, "/v1/finance", env.adminTok,
		fmt.Sprintf(`{"type":"quote","amountCents":5000,"clientId":%d}`, env.client.ID))
	requireStatus(t, rec, http.StatusCreated)

	// Unknown type and negative amounts are refused.
	rec = env.do(http.MethodPost, "/v1/finance", env.clientTok,
		`{"type":"iou","amountCents":100}`)
	requireStatus(t, rec, http.StatusBadRequest)
	rec = env.do(http.MethodPost, "/v1/finance", env.clientTok,
		`{"type":"invoice","amountCents":-1}`)
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestListFinanceScoped(t *testing.T) {
	env := newEnv(t)
	p := env.mkProject(t)

	rec := env.do(http.MethodPost, "/v1/finance", env.clientTok,
		fmt.Sprintf(`{"type":"invoice","amountCents":9900,"projectId":%d}`, p.ID))
	requireStatus(t, rec, http.StatusCreated)

	// A document for another client, outside the manager's projects.
	rec = env.do(http.MethodPost, "/v1/finance", env.adminTok,
		`{"type":"contract","amountCents":1,"clientId":999}`)
	requireStatus(t, rec, http.StatusCreated)

	clientDocs := decode[[]model.FinanceDocument](t, env.do(http.MethodGet, "/v1/finance", env.clientTok, ""))
	require.Len(t, clientDocs, 1)
	assert.Equal(t, env.client.ID, clientDocs[0].ClientID)

	managerDocs := decode[[]model.FinanceDocument](t, env.do(http.MethodGet, "/v1/finance", env.managerTok, ""))
	require.Len(t, managerDocs, 1, "managers see documents of their projects only")

	adminDocs := decode[[]model.FinanceDocument](t, env.do(http.MethodGet, "/v1/finance", env.adminTok, ""))
	assert.Len(t, adminDocs, 2)
}

func TestUpdateFinanceStaffOnly(t *testing.T) {
	env := newEnv(t)
	p := env.mkProject(t)

	rec := env.do(http.MethodPost, "/v1/finance", env.clientTok,
		fmt.Sprintf(`{"type":"invoice","amountCents":9900,"projectId":%d}`, p.ID))
	requireStatus(t, rec, http.StatusCreated)
	d := decode[model.FinanceDocument](t, rec)

	// Clients never mutate finance records.
	rec = env.do(http.MethodPatch, fmt.Sprintf("/v1/finance/%d", d.ID), env.clientTok,
		`{"status":"paid"}`)
	requireStatus(t, rec, http.StatusForbidden)

	// The assigned manager may, inside their project scope.
	rec = env.do(http.MethodPatch, fmt.Sprintf("/v1/finance/%d", d.ID), env.managerTok,
		`{"status":"paid"}`)
	requireStatus(t, rec, http.StatusOK)
	got := decode[model.FinanceDocument](t, rec)
	assert.Equal(t, model.FinancePaid, got.Status)

	// A project-less document is out of any manager's scope.
	rec = env.do(http.MethodPost, "/v1/finance", env.adminTok,
		fmt.Sprintf(`{"type":"quote","amountCents":100,"clientId":%d}`, env.client.ID))
	requireStatus(t, rec, http.StatusCreated)
	loose := decode[model.FinanceDocument](t, rec)
	rec = env.do(http.MethodPatch, fmt.Sprintf("/v1/finance/%d", loose.ID), env.managerTok,
		`{"status":"overdue"}`)
	requireStatus(t, rec, http.StatusForbidden)

	// Admins update anywhere; unknown statuses are refused.
	rec = env.do(http.MethodPatch, fmt.Sprintf("/v1/finance/%d", loose.ID), env.adminTok,
		`{"status":"overdue"}`)
	requireStatus(t, rec, http.StatusOK)
	rec = env.do(http.MethodPatch, fmt.Sprintf("/v1/finance/%d", loose.ID), env.adminTok,
		`{"status":"refunded"}`)
	requireStatus(t, rec, http.StatusBadRequest)
}
