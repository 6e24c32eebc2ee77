package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cabinetcpq/internal/model"
)

func processingIDs(ps []model.Processing) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(ps))
	for _, p := range ps {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestAvailableFiltersByCategory(t *testing.T) {
	e := testEngine()
	hinge, _ := e.cat.Product(hingeSetID)

	got := e.AvailableProcessings(hinge, nil)
	assert.Empty(t, got, "no catalog processing applies to hardware")

	base, _ := e.cat.Product(baseCabinetID)
	assert.Len(t, e.AvailableProcessings(base, nil), 5)
}

func TestMutualExclusionHidesAndRestores(t *testing.T) {
	e := testEngine()
	base, _ := e.cat.Product(baseCabinetID)

	// Walnut applied: oak and paint excluded, walnut itself stripped as applied.
	got := processingIDs(e.AvailableProcessings(base, []uuid.UUID{stainWalnutID}))
	assert.NotContains(t, got, stainOakID)
	assert.NotContains(t, got, paintColorID)
	assert.NotContains(t, got, stainWalnutID)
	assert.Contains(t, got, softCloseID)

	// Walnut removed: oak (and paint) become available again.
	got = processingIDs(e.AvailableProcessings(base, nil))
	assert.Contains(t, got, stainOakID)
	assert.Contains(t, got, paintColorID)
}

func TestExclusionsAccumulateAcrossRules(t *testing.T) {
	e := testEngine()
	base, _ := e.cat.Product(baseCabinetID)

	// Both stains applied somehow — union of exclusions, no conflict.
	got := processingIDs(e.AvailableProcessings(base, []uuid.UUID{stainWalnutID, stainOakID}))
	assert.NotContains(t, got, paintColorID)
	assert.Contains(t, got, customCutID)
}

func TestAppliedProcessingNotOfferedTwice(t *testing.T) {
	e := testEngine()
	base, _ := e.cat.Product(baseCabinetID)

	got := processingIDs(e.AvailableProcessings(base, []uuid.UUID{softCloseID}))
	assert.NotContains(t, got, softCloseID)
}

func TestApplyUnavailableProcessingIsSilentNoop(t *testing.T) {
	e := testEngine()
	q, err := e.AddItem(emptyQuote(), baseCabinetID, 1, nil)
	require.NoError(t, err)
	itemID := q.Items[0].ID

	q, err = e.ApplyProcessing(q, itemID, stainWalnutID, nil)
	require.NoError(t, err)

	// Oak is excluded by the walnut rule: the attempt changes nothing.
	q2, err := e.ApplyProcessing(q, itemID, stainOakID, nil)
	require.NoError(t, err)
	assert.Len(t, q2.Items[0].AppliedProcessings, 1)
	assert.True(t, q2.FinalTotal.Equal(q.FinalTotal))
}
