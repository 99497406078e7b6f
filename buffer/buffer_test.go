package buffer

import "testing"

func TestAppendAndBytes(t *testing.T) {
	b := New(0)
	b.Append(0x90)
	b.Append4(-1)
	if got := b.Bytes(); len(got) != 5 || got[0] != 0x90 {
		t.Fatalf("unexpected bytes: %x", got)
	}
}

func TestCommitBlocksFurtherWrites(t *testing.T) {
	b := New(0)
	b.Append(0x01)
	b.Commit()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic writing to a committed buffer")
		}
	}()
	b.Append(0x02)
}

func TestPatchBytesAfterCommit(t *testing.T) {
	b := New(0)
	b.Append4(0)
	b.Commit()

	b.PatchBytes(0, []byte{1, 2, 3, 4})
	want := []byte{1, 2, 3, 4}
	got := b.Bytes()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("patch mismatch at %d: got %x want %x", i, got, want)
		}
	}
}

func TestPatchBytesOutOfRangePanics(t *testing.T) {
	b := New(0)
	b.Append(0x00)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for out-of-range patch")
		}
	}()
	b.PatchBytes(5, []byte{1})
}
