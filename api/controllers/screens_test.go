package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/angelmondragon/content-console/pkg/enums"
	pkgerrors "github.com/angelmondragon/content-console/pkg/errors"
	"github.com/angelmondragon/content-console/pkg/logger"
)

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope.Error.Code
}

func TestListRecordsReturnsRefreshedRows(t *testing.T) {
	view := &stubView{resource: enums.ResourceServices, items: []map[string]string{{"_id": "s1"}}}
	resp := serve(t, http.MethodGet, "/console/{resource}", "/console/services", "", ListRecords(stubCatalog{view: view}, logger.Nop()), nil)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data []map[string]string `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0]["_id"] != "s1" {
		t.Fatalf("unexpected data %v", envelope.Data)
	}
}

func TestListRecordsSurfacesFetchFailure(t *testing.T) {
	view := &stubView{
		resource: enums.ResourceProjects,
		refreshFn: func(context.Context) (any, error) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeFetchFailed, errors.New("boom"), "list projects")
		},
	}
	resp := serve(t, http.MethodGet, "/console/{resource}", "/console/projects", "", ListRecords(stubCatalog{view: view}, logger.Nop()), nil)

	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 got %d", resp.Code)
	}
	if code := errorCode(t, resp.Body.Bytes()); code != string(pkgerrors.CodeFetchFailed) {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestListRecordsUnknownResource(t *testing.T) {
	view := &stubView{resource: enums.ResourceProjects}
	resp := serve(t, http.MethodGet, "/console/{resource}", "/console/orders", "", ListRecords(stubCatalog{view: view}, logger.Nop()), nil)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestDeleteRecordPassesConfirmationHeader(t *testing.T) {
	var gotConfirmed []bool
	view := &stubView{
		resource: enums.ResourceEmployees,
		deleteFn: func(_ context.Context, id string, confirmed bool) error {
			gotConfirmed = append(gotConfirmed, confirmed)
			if id != "e1" {
				t.Fatalf("unexpected id %s", id)
			}
			if !confirmed {
				return pkgerrors.New(pkgerrors.CodeConfirmationRequired, "confirm")
			}
			return nil
		},
	}
	handler := DeleteRecord(stubCatalog{view: view}, logger.Nop())

	resp := serve(t, http.MethodDelete, "/console/{resource}/{id}", "/console/employees/e1", "", handler, nil)
	if resp.Code != http.StatusPreconditionRequired {
		t.Fatalf("expected 428 got %d", resp.Code)
	}

	resp = serve(t, http.MethodDelete, "/console/{resource}/{id}", "/console/employees/e1", "", handler, map[string]string{ConfirmDeleteHeader: "true"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(gotConfirmed) != 2 || gotConfirmed[0] || !gotConfirmed[1] {
		t.Fatalf("unexpected confirmations %v", gotConfirmed)
	}
}

func TestSetRequestStatusRequiresStatus(t *testing.T) {
	called := false
	view := &stubView{
		resource: enums.ResourceContacts,
		statusFn: func(context.Context, string, string) error {
			called = true
			return nil
		},
	}
	handler := SetRequestStatus(stubCatalog{view: view}, "contacts", logger.Nop())

	resp := serve(t, http.MethodPut, "/console/contacts/{id}/status", "/console/contacts/c1/status", `{}`, handler, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if called {
		t.Fatal("status update should not run without a status")
	}

	resp = serve(t, http.MethodPut, "/console/contacts/{id}/status", "/console/contacts/c1/status", `{"status":"resolved"}`, handler, nil)
	if resp.Code != http.StatusOK || !called {
		t.Fatalf("expected status update, code=%d called=%v", resp.Code, called)
	}
}

func TestFlagRequestCallsBoard(t *testing.T) {
	var flagged string
	view := &stubView{
		resource: enums.ResourceQuotes,
		flagFn: func(_ context.Context, id string) error {
			flagged = id
			return nil
		},
	}
	resp := serve(t, http.MethodPut, "/console/quote/{id}/flag", "/console/quote/q9/flag", "", FlagRequest(stubCatalog{view: view}, "quote", logger.Nop()), nil)

	if resp.Code != http.StatusOK || flagged != "q9" {
		t.Fatalf("expected flag of q9, code=%d flagged=%q", resp.Code, flagged)
	}
}
