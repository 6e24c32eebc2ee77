package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cabinetcpq/internal/catalog"
	"cabinetcpq/internal/model"
)

func TestResolveDependenciesSplitsAutomaticAndSuggested(t *testing.T) {
	e := testEngine()

	got, err := e.ResolveDependencies(baseCabinetID, 3)
	require.NoError(t, err)
	require.Len(t, got, 2)

	byProduct := map[uuid.UUID]ResolvedDependency{}
	for _, d := range got {
		byProduct[d.ProductID] = d
	}

	hinges := byProduct[hingeSetID]
	assert.True(t, hinges.Automatic)
	assert.Equal(t, 3, hinges.Quantity, `formula "qty" follows the trigger quantity`)
	assert.Equal(t, "Hinge Set", hinges.Name)

	plinth := byProduct[plinthID]
	assert.False(t, plinth.Automatic)
	assert.Equal(t, 1, plinth.Quantity, `formula "1" is constant regardless of trigger quantity`)
}

func TestResolveDependenciesConstantFormula(t *testing.T) {
	e := testEngine()

	got, err := e.ResolveDependencies(baseCabinetID, 5)
	require.NoError(t, err)
	for _, d := range got {
		if d.ProductID == plinthID {
			assert.Equal(t, 1, d.Quantity, "trigger quantity 5 must still resolve to 1")
		}
	}
}

func TestResolveDependenciesNoEdges(t *testing.T) {
	e := testEngine()

	got, err := e.ResolveDependencies(wallCabinetID, 2)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResolveDependenciesMalformedFormulaIsError(t *testing.T) {
	products := testProducts()
	deps := []model.ProductDependency{{
		ID: uuid.New(), ProductID: baseCabinetID, RequiredProductID: hingeSetID,
		IsAutomatic: true, QuantityFormula: "qty %% 2",
	}}
	e := New(catalog.NewSnapshot(products, testProcessings(), nil, deps))

	_, err := e.ResolveDependencies(baseCabinetID, 4)
	assert.Error(t, err, "a malformed formula is a configuration error, not a fallback")
}

func TestResolveDependenciesIsNonRecursive(t *testing.T) {
	// plinth → hinge edge added on top of the base-cabinet edges; resolving
	// the base cabinet must not chase through the plinth.
	deps := append(testDependencies(), model.ProductDependency{
		ID: uuid.New(), ProductID: plinthID, RequiredProductID: hingeSetID,
		IsAutomatic: true, QuantityFormula: "1",
	})
	e := New(catalog.NewSnapshot(testProducts(), testProcessings(), nil, deps))

	got, err := e.ResolveDependencies(baseCabinetID, 1)
	require.NoError(t, err)
	assert.Len(t, got, 2, "only direct edges of the triggering product")
}
