package verify

import (
	"context"
	"fmt"
	"testing"

	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/deploy"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/errors"
)

// fakeVerifier records whether it was called and returns a scripted result.
type fakeVerifier struct {
	name      string
	reference string
	err       error
	calls     int
}

func (f *fakeVerifier) Name() string       { return f.name }
func (f *fakeVerifier) Confidence() string { return "test-" + f.name }

func (f *fakeVerifier) Submit(_ context.Context, _ *deploy.DeploymentRecord, _ string) (string, error) {
	f.calls++
	return f.reference, f.err
}

func record() *deploy.DeploymentRecord {
	return &deploy.DeploymentRecord{Network: "hyperion-testnet", Address: "0xC0FFEE", TxID: "0xBEEF"}
}

func TestChain_FirstStrategyWins(t *testing.T) {
	first := &fakeVerifier{name: "explorer", reference: "https://explorer/0xC0FFEE"}
	second := &fakeVerifier{name: "source-index", reference: "unused"}

	c, err := NewChain([]Verifier{first, second})
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	result, err := c.Verify(context.Background(), record(), "contract X {}")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	if result.Method != "explorer" {
		t.Errorf("Method = %q, want explorer", result.Method)
	}
	if result.Reference != "https://explorer/0xC0FFEE" {
		t.Errorf("Reference = %q", result.Reference)
	}
	if second.calls != 0 {
		t.Error("later strategy must not run once an earlier one succeeded")
	}
}

func TestChain_FallsBackInOrder(t *testing.T) {
	first := &fakeVerifier{name: "explorer", err: fmt.Errorf("rate limited")}
	second := &fakeVerifier{name: "source-index", err: fmt.Errorf("not indexed yet")}
	third := &fakeVerifier{name: "content-store-fallback", reference: "ipfs://QmX"}

	c, err := NewChain([]Verifier{first, second, third})
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	result, err := c.Verify(context.Background(), record(), "contract X {}")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	if result.Method != "content-store-fallback" {
		t.Errorf("Method = %q, want content-store-fallback", result.Method)
	}
	if first.calls != 1 || second.calls != 1 || third.calls != 1 {
		t.Errorf("calls = %d/%d/%d, want 1/1/1 (each strategy attempted exactly once)",
			first.calls, second.calls, third.calls)
	}
	want := []string{"explorer", "source-index", "content-store-fallback"}
	if len(result.Attempted) != len(want) {
		t.Fatalf("Attempted = %v, want %v", result.Attempted, want)
	}
	for i := range want {
		if result.Attempted[i] != want[i] {
			t.Errorf("Attempted[%d] = %q, want %q", i, result.Attempted[i], want[i])
		}
	}
}

func TestChain_AllFailIsVerificationGap(t *testing.T) {
	verifiers := []Verifier{
		&fakeVerifier{name: "explorer", err: fmt.Errorf("down")},
		&fakeVerifier{name: "source-index", err: fmt.Errorf("down")},
		&fakeVerifier{name: "content-store-fallback", err: fmt.Errorf("down")},
	}

	c, err := NewChain(verifiers)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	result, err := c.Verify(context.Background(), record(), "contract X {}")
	if err == nil {
		t.Fatal("expected error when every strategy fails")
	}
	if !errors.Is(err, errors.ErrVerificationGap) {
		t.Errorf("error = %v, want ErrVerificationGap", err)
	}
	if result != nil {
		t.Error("no result may exist when every strategy failed")
	}
}

func TestChain_NeverSkipsAhead(t *testing.T) {
	// The second strategy fails, so the third runs, but the third must
	// never run before the second has been attempted.
	var order []string
	mk := func(name string, err error) Verifier {
		return &orderedVerifier{name: name, err: err, order: &order}
	}

	c, err := NewChain([]Verifier{
		mk("a", fmt.Errorf("x")),
		mk("b", fmt.Errorf("x")),
		mk("c", nil),
	})
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	if _, err := c.Verify(context.Background(), record(), "src"); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	want := []string{"a", "b", "c"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("attempt order = %v, want %v", order, want)
		}
	}
}

type orderedVerifier struct {
	name  string
	err   error
	order *[]string
}

func (v *orderedVerifier) Name() string       { return v.name }
func (v *orderedVerifier) Confidence() string { return "test" }

func (v *orderedVerifier) Submit(_ context.Context, _ *deploy.DeploymentRecord, _ string) (string, error) {
	*v.order = append(*v.order, v.name)
	if v.err != nil {
		return "", v.err
	}
	return "ref-" + v.name, nil
}

func TestNewChain_RequiresVerifiers(t *testing.T) {
	if _, err := NewChain(nil); err == nil {
		t.Error("expected error for empty verifier list")
	}
}
