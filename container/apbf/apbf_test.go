package apbf

import "testing"

func TestFilterContainsInserted(t *testing.T) {
	var key [16]byte
	f := New(3, 1000, 0.01, 500, key)
	data := []byte("192.0.2.1:9186")
	if f.Contains(data) {
		t.Fatal("must not contain data before insert")
	}
	f.Insert(data)
	if !f.Contains(data) {
		t.Fatal("must contain data immediately after insert")
	}
}

func TestFilterRotationEventuallyForgets(t *testing.T) {
	var key [16]byte
	f := New(2, 10, 0.01, 5, key)
	data := []byte("198.51.100.7:9186")
	f.Insert(data)
	for i := 0; i < 100; i++ {
		f.Insert([]byte{byte(i), byte(i >> 8)})
	}
	if f.Contains(data) {
		t.Skip("bloom filter false positive or insufficient rotation; not a hard guarantee")
	}
}
