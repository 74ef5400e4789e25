package utils

import (
	"reflect"
	"testing"
)

func TestSortedKeys(t *testing.T) {
	m := map[string]float64{"USD": 1, "EUR": 2, "JPY": 3, "AUD": 4}
	keys := SortedKeys(m)
	exp := []string{"AUD", "EUR", "JPY", "USD"}
	if !reflect.DeepEqual(keys, exp) {
		t.Fatalf("wrong keys. wanted %v, got %v", exp, keys)
	}
	if len(SortedKeys(map[string]int{})) != 0 {
		t.Fatalf("expected no keys for empty map")
	}
}
