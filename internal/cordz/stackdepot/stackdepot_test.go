package stackdepot

import (
	"strings"
	"sync"
	"testing"
)

// TestCapture tests basic capture and retrieval.
func TestCapture(t *testing.T) {
	Reset()

	hash := Capture(0)
	if hash == 0 {
		t.Fatal("Capture returned zero hash")
	}

	st := Get(hash)
	if st == nil {
		t.Fatal("Get returned nil for valid hash")
	}
	if st.Depth == 0 {
		t.Error("captured stack has zero depth")
	}

	hasNonZero := false
	for _, pc := range st.PCs() {
		if pc != 0 {
			hasNonZero = true
			break
		}
	}
	if !hasNonZero {
		t.Error("captured stack has no non-zero program counters")
	}
}

// TestCaptureDeduplication tests that identical call sites share one
// depot entry.
func TestCaptureDeduplication(t *testing.T) {
	Reset()

	var hash1, hash2 uint64
	for i := 0; i < 2; i++ {
		hash := Capture(0)
		if i == 0 {
			hash1 = hash
		} else {
			hash2 = hash
		}
	}

	if hash1 == 0 || hash2 == 0 {
		t.Fatal("Capture returned zero hash")
	}
	if hash1 != hash2 {
		t.Errorf("same call site produced different hashes: %x != %x", hash1, hash2)
	}
	if Get(hash1) != Get(hash2) {
		t.Error("expected the same StackTrace pointer for deduplicated stacks")
	}

	unique, _ := Stats()
	if unique != 1 {
		t.Errorf("unique stacks = %d after deduplication, want 1", unique)
	}
}

// TestCaptureSkip tests that the skip count removes the immediate
// caller from the recorded stack.
func TestCaptureSkip(t *testing.T) {
	Reset()

	hash := captureThroughHelper(1)
	st := Get(hash)
	if st == nil {
		t.Fatal("Get returned nil")
	}
	formatted := st.Format()
	if strings.Contains(formatted, "captureThroughHelper") {
		t.Errorf("skip=1 should omit the helper frame, got:\n%s", formatted)
	}
	if !strings.Contains(formatted, "TestCaptureSkip") {
		t.Errorf("stack should start at the helper's caller, got:\n%s", formatted)
	}
}

func captureThroughHelper(skip int) uint64 {
	return Capture(skip)
}

// TestGetUnknownHash tests retrieval misses.
func TestGetUnknownHash(t *testing.T) {
	Reset()
	if st := Get(0x123456789abcdef0); st != nil {
		t.Error("expected nil for unknown hash")
	}
}

// TestGetZeroHash tests that hash 0 means "no stack captured".
func TestGetZeroHash(t *testing.T) {
	if st := Get(0); st != nil {
		t.Error("expected nil for zero hash")
	}
}

// TestPCsNil tests the empty-stack representation.
func TestPCsNil(t *testing.T) {
	var st *StackTrace
	if pcs := st.PCs(); pcs != nil {
		t.Errorf("nil trace PCs() = %v, want nil", pcs)
	}
	if got := st.Format(); got != "" {
		t.Errorf("nil trace Format() = %q, want empty", got)
	}
}

// TestFormat tests symbolized output.
func TestFormat(t *testing.T) {
	Reset()

	st := Get(Capture(0))
	if st == nil {
		t.Fatal("failed to capture stack")
	}

	formatted := st.Format()
	if formatted == "" {
		t.Fatal("Format returned empty string for a live stack")
	}
	if !strings.Contains(formatted, "TestFormat") {
		t.Errorf("formatted stack should contain the test function, got:\n%s", formatted)
	}
	if !strings.Contains(formatted, "stackdepot_test.go") {
		t.Errorf("formatted stack should contain the file name, got:\n%s", formatted)
	}
	if !strings.Contains(formatted, "()") {
		t.Errorf("formatted stack should show function names with (), got:\n%s", formatted)
	}
}

// TestDifferentSites tests that distinct call sites hash differently.
func TestDifferentSites(t *testing.T) {
	Reset()

	hash1 := captureFromSite1()
	hash2 := captureFromSite2()

	if hash1 == 0 || hash2 == 0 {
		t.Fatal("Capture returned zero hash")
	}
	if hash1 == hash2 {
		t.Error("different call sites produced the same hash")
	}

	unique, _ := Stats()
	if unique != 2 {
		t.Errorf("unique stacks = %d, want 2", unique)
	}
}

func captureFromSite1() uint64 {
	return Capture(0)
}

func captureFromSite2() uint64 {
	return Capture(0)
}

// TestConcurrentCapture tests depot thread safety.
func TestConcurrentCapture(t *testing.T) {
	Reset()

	const numGoroutines = 100
	const capturesPerGoroutine = 10

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	hashes := make(chan uint64, numGoroutines*capturesPerGoroutine)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < capturesPerGoroutine; j++ {
				hashes <- Capture(0)
			}
		}()
	}

	wg.Wait()
	close(hashes)

	count := 0
	for hash := range hashes {
		count++
		if hash == 0 {
			t.Error("Capture returned zero hash during concurrent capture")
		}
		if Get(hash) == nil {
			t.Errorf("Get returned nil for hash %x", hash)
		}
	}
	if want := numGoroutines * capturesPerGoroutine; count != want {
		t.Errorf("captures = %d, want %d", count, want)
	}

	unique, totalBytes := Stats()
	t.Logf("unique stacks: %d, ~%d bytes", unique, totalBytes)
	if unique == 0 {
		t.Error("expected at least one unique stack")
	}
}

// TestReset tests that Reset empties the depot.
func TestReset(t *testing.T) {
	_ = Capture(0)
	if unique, _ := Stats(); unique == 0 {
		t.Fatal("expected non-empty depot before Reset")
	}

	Reset()

	unique, totalBytes := Stats()
	if unique != 0 {
		t.Errorf("unique stacks = %d after Reset, want 0", unique)
	}
	if totalBytes != 0 {
		t.Errorf("total bytes = %d after Reset, want 0", totalBytes)
	}
}

// BenchmarkCapture benchmarks capture including depot lookup.
func BenchmarkCapture(b *testing.B) {
	Reset()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Capture(0)
	}
}

// BenchmarkGet benchmarks depot retrieval.
func BenchmarkGet(b *testing.B) {
	Reset()
	hash := Capture(0)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Get(hash)
	}
}

// BenchmarkFormat benchmarks symbolization.
func BenchmarkFormat(b *testing.B) {
	Reset()
	st := Get(Capture(0))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = st.Format()
	}
}
