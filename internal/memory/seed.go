package memory

import (
	"time"

	"go.uber.org/zap"
)

// #region seed

// seedInitial populates a fresh store with the starter ledger so a new
// install answers queries non-degenerately. Called only when the backing
// table was created empty.
func (s *Store) seedInitial() {
	now := time.Now().UTC()
	seeds := []Fragment{
		{
			ID: "core_1", Name: "Pyramid architecture", Layer: LayerCore, Weight: 0.9,
			Content: "Fundamental principles of the layered pyramid system",
		},
		{
			ID: "core_2", Name: "System philosophy", Layer: LayerCore, Weight: 0.95,
			Content: "Code is not written here, it emerges from context",
		},
		{
			ID: "func_1", Name: "Query handling", Layer: LayerFunctional, Weight: 0.8,
			Content: "Mechanics of analysing and answering queries",
		},
		{
			ID: "func_2", Name: "Memory management", Layer: LayerFunctional, Weight: 0.85,
			Content: "Saving and retrieving fragments of experience",
		},
		{
			ID: "emo_1", Name: "Joy of creation", Layer: LayerEmotional, Weight: 0.7,
			Content: "The feeling that comes with making something new", EmotionalTone: "joy",
		},
		{
			ID: "emo_2", Name: "Wisdom of experience", Layer: LayerEmotional, Weight: 0.9,
			Content: "Accumulated wisdom of the system", EmotionalTone: "calm",
		},
		{
			ID: "meta_1", Name: "Self awareness", Layer: LayerMeta, Weight: 0.95,
			Content: "Reflection on the system's own functioning",
		},
		{
			ID: "meta_2", Name: "System evolution", Layer: LayerMeta, Weight: 0.88,
			Content: "Processes of self development and adaptation",
		},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range seeds {
		f.CreatedAt = now
		s.fragments[f.ID] = f
	}
	if err := s.persist(); err != nil {
		s.log.Warn("seed persist failed", zap.Error(err))
		s.degraded = true
	}
}

// #endregion seed
