package memory_test

import (
	"testing"

	"github.com/maxviazov/hoops-tagging-service/internal/repository"
	"github.com/maxviazov/hoops-tagging-service/internal/repository/contract"
	"github.com/maxviazov/hoops-tagging-service/internal/repository/memory"
)

func TestSaveStore_MemoryContract(t *testing.T) {
	contract.RunSaveStoreContract(t, func(t *testing.T) (repository.SaveStore, func()) {
		return memory.NewSaveStore(), func() {}
	})
}

func TestPinger_MemoryContract(t *testing.T) {
	contract.RunPingerContract(t, func(t *testing.T) (repository.Pinger, func()) {
		return memory.NewSaveStore().(repository.Pinger), func() {}
	})
}
