package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/xeviet/bus-ticketing/internal/model"
)

func TestCustomerCreateAllocatesNextCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT code FROM customers ORDER BY code DESC").
		WillReturnRows(sqlmock.NewRows([]string{"code"}).AddRow("KH0041"))
	mock.ExpectExec("INSERT INTO customers").
		WithArgs("KH0042", "Nguyen Van A", "0900000001", "a@example.com", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(42, 1))

	c := &model.Customer{Name: "Nguyen Van A", Phone: "0900000001", Email: "A@Example.com"}
	if err := NewCustomerRepo(db).Create(context.Background(), c, "secret", 4); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if c.Code != "KH0042" {
		t.Fatalf("expected code KH0042, got %s", c.Code)
	}
	if c.ID != 42 {
		t.Fatalf("expected id 42, got %d", c.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCustomerCreateFirstCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT code FROM customers ORDER BY code DESC").
		WillReturnRows(sqlmock.NewRows([]string{"code"}))
	mock.ExpectExec("INSERT INTO customers").
		WillReturnResult(sqlmock.NewResult(1, 1))

	c := &model.Customer{Name: "First", Phone: "0900000001"}
	if err := NewCustomerRepo(db).Create(context.Background(), c, "secret", 4); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if c.Code != "KH0001" {
		t.Fatalf("expected code KH0001 for empty table, got %s", c.Code)
	}
}

func TestCustomerCreateDuplicateMapsToExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT code FROM customers ORDER BY code DESC").
		WillReturnRows(sqlmock.NewRows([]string{"code"}).AddRow("KH0041"))
	mock.ExpectExec("INSERT INTO customers").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'a@example.com' for key 'uniq_email'"))

	c := &model.Customer{Name: "Nguyen Van A", Phone: "0900000001", Email: "a@example.com"}
	err = NewCustomerRepo(db).Create(context.Background(), c, "secret", 4)
	if !errors.Is(err, ErrCustomerExists) {
		t.Fatalf("expected ErrCustomerExists, got %v", err)
	}
}

func TestIsDuplicateKey(t *testing.T) {
	if !isDuplicateKey(errors.New("Error 1062: Duplicate entry")) {
		t.Fatalf("1062 should be recognized")
	}
	if isDuplicateKey(errors.New("Error 1146: Table doesn't exist")) {
		t.Fatalf("non-duplicate error misclassified")
	}
	if isDuplicateKey(nil) {
		t.Fatalf("nil is not a duplicate error")
	}
}
