package recognition

import (
	"errors"
	"testing"
)

func TestInsufficientSamplesError(t *testing.T) {
	err := &InsufficientSamplesError{Required: 5, Collected: 4}

	if err.Shortfall() != 1 {
		t.Errorf("expected shortfall 1, got %d", err.Shortfall())
	}
	want := "insufficient enrollment samples: need 1 more (4/5 collected)"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestEngineFaultUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	fault := &EngineFault{Op: "detect", Err: cause}

	if !errors.Is(fault, cause) {
		t.Error("expected EngineFault to unwrap to its cause")
	}
}

func TestPolicyRejectionMessage(t *testing.T) {
	err := &PolicyRejection{
		Reason: "sample rejected",
		Issues: []string{"face too small", "landmarks not detected"},
	}
	want := "sample rejected: face too small, landmarks not detected"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestValidateDescriptor(t *testing.T) {
	if err := ValidateDescriptor(make(Descriptor, DescriptorDim)); err != nil {
		t.Errorf("expected valid descriptor, got %v", err)
	}

	err := ValidateDescriptor(Descriptor{1, 2, 3})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
