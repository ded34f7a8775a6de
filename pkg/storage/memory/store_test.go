package memory

import (
	"testing"

	"github.com/nsyszr/flowpilot/pkg/storage"
	"github.com/nsyszr/flowpilot/pkg/storage/storagetest"
)

func TestEventStore(t *testing.T) {
	storagetest.RunEventStoreTests(t, func(t *testing.T) storage.Interface {
		return NewStore()
	})
}
