// file: internal/registry/registry_test.go
package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddListInsertionOrder(t *testing.T) {
	r := New[string, int]("test", nil)
	r.Add("c", 3)
	r.Add("a", 1)
	r.Add("b", 2)

	assert.Equal(t, []int{3, 1, 2}, r.List())
}

func TestAddReplacesLastWriterWinsWithoutMovingPosition(t *testing.T) {
	r := New[string, int]("test", nil)
	r.Add("a", 1)
	r.Add("b", 2)
	r.Add("a", 100)

	assert.Equal(t, []int{100, 2}, r.List())
	v, ok := r.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 100, v)
}

func TestRemoveIsIdempotent(t *testing.T) {
	r := New[string, int]("test", nil)
	r.Add("a", 1)

	r.Remove("a")
	assert.Equal(t, 0, r.Len())

	// Removing again must not panic or error.
	r.Remove("a")
	assert.Equal(t, 0, r.Len())

	_, ok := r.Get("a")
	assert.False(t, ok)
}

func TestListReflectsOnlyPreOrPostStateUnderConcurrency(t *testing.T) {
	r := New[int, int]("test", nil)
	const n = 200

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			r.Add(i, i)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			_ = r.List()
		}
	}()
	wg.Wait()

	assert.Equal(t, n, r.Len())
}

func TestValidateNameRules(t *testing.T) {
	cases := []struct {
		name    string
		wantErr bool
	}{
		{"add", false},
		{"getTasks", false},
		{"GetTasks", true},
		{"get-tasks", true},
		{"1getTasks", true},
		{"", true},
	}
	for _, tc := range cases {
		err := ValidateName(EntityTool, tc.name)
		if tc.wantErr {
			assert.Error(t, err, fmt.Sprintf("expected error for name %q", tc.name))
		} else {
			assert.NoError(t, err, fmt.Sprintf("expected no error for name %q", tc.name))
		}
	}
}

func TestValidateNameUnknownKind(t *testing.T) {
	err := ValidateName(EntityKind("resource"), "anything")
	assert.Error(t, err)
}
