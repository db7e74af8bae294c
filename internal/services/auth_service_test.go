package services

import (
	"errors"
	"testing"

	"pharmaledger_backend/pkg/utils"
)

func TestLoginRoundTrip(t *testing.T) {
	utils.InitJWT("test-secret")
	env := newTestEnv()

	operator, err := env.auth.CreateOperator(CreateOperatorRequest{
		Code:     "counter1",
		FullName: "Counter Operator",
		PIN:      "4321",
	})
	if err != nil {
		t.Fatalf("CreateOperator: %v", err)
	}

	resp, err := env.auth.Login(LoginRequest{Code: "counter1", PIN: "4321"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	claims, err := utils.ValidateToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.OperatorID != operator.ID || claims.OperatorCode != "counter1" {
		t.Errorf("claims = %+v, want operator %d / counter1", claims, operator.ID)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	utils.InitJWT("test-secret")
	env := newTestEnv()

	if _, err := env.auth.CreateOperator(CreateOperatorRequest{
		Code:     "counter1",
		FullName: "Counter Operator",
		PIN:      "4321",
	}); err != nil {
		t.Fatalf("CreateOperator: %v", err)
	}

	if _, err := env.auth.Login(LoginRequest{Code: "counter1", PIN: "0000"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong PIN error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := env.auth.Login(LoginRequest{Code: "ghost", PIN: "4321"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown code error = %v, want ErrInvalidCredentials", err)
	}
}

func TestCreateOperatorDuplicateCodeRejected(t *testing.T) {
	env := newTestEnv()

	if _, err := env.auth.CreateOperator(CreateOperatorRequest{Code: "counter1", FullName: "A", PIN: "1111"}); err != nil {
		t.Fatalf("first CreateOperator: %v", err)
	}
	_, err := env.auth.CreateOperator(CreateOperatorRequest{Code: "counter1", FullName: "B", PIN: "2222"})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("duplicate code error = %v, want ErrValidation", err)
	}
}

func TestEnsureDefaultOperatorIsIdempotent(t *testing.T) {
	env := newTestEnv()

	if err := env.auth.EnsureDefaultOperator("counter1", "Counter Operator", "1234"); err != nil {
		t.Fatalf("first EnsureDefaultOperator: %v", err)
	}
	if err := env.auth.EnsureDefaultOperator("counter1", "Counter Operator", "1234"); err != nil {
		t.Fatalf("second EnsureDefaultOperator: %v", err)
	}

	op, err := env.auth.GetOperatorByID(1)
	if err != nil {
		t.Fatalf("GetOperatorByID: %v", err)
	}
	if op.Code != "counter1" {
		t.Errorf("operator code = %q, want counter1", op.Code)
	}
}
